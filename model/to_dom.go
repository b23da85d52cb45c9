package model

import (
	"io"
	"log/slog"
	"slices"
	"sort"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToDOM builds the outer element for a node or mark. The content of the
// node is rendered into the deepest first descendant of the returned
// element.
type ToDOM = func(NodeOrMark) *html.Node

// NodeOrMark is implemented by Node and Mark, so that a ToDOM function can be
// shared between them.
type NodeOrMark interface {
	GetAttrs([]string) []html.Attribute
}

// GetAttrs returns the markup attributes of the node, in key order. When
// selectedAttrs is not nil, only those attributes are returned. Attributes
// with a ToDOM hook in their spec are rendered by that hook.
func (n *Node) GetAttrs(selectedAttrs []string) []html.Attribute {
	return renderAttrs(n.Attrs, n.Type.Spec.Attrs, selectedAttrs)
}

// GetAttrs returns the markup attributes of the mark, in key order.
func (m *Mark) GetAttrs(selectedAttrs []string) []html.Attribute {
	return renderAttrs(m.Attrs, m.Type.Spec.Attrs, selectedAttrs)
}

func renderAttrs(values map[string]interface{}, specs map[string]*AttributeSpec, selected []string) []html.Attribute {
	keys := make([]string, 0, len(values))
	for key := range values {
		if selected == nil || slices.Contains(selected, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	result := []html.Attribute{}
	for _, key := range keys {
		if spec, ok := specs[key]; ok && spec.ToDOM != nil {
			result = append(result, spec.ToDOM(values[key])...)
			continue
		}
		result = addAttr(key, values[key], result)
	}
	return result
}

func addAttr(key string, value interface{}, attrs []html.Attribute) []html.Attribute {
	attr := html.Attribute{Key: key}
	switch v := value.(type) {
	case int:
		attr.Val = strconv.Itoa(v)
	case string:
		attr.Val = v
	case bool:
		attr.Val = strconv.FormatBool(v)
	default:
		return attrs
	}
	return append(attrs, attr)
}

// Element creates an element node with the given attributes and children.
func Element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
	for _, child := range children {
		node.AppendChild(child)
	}
	return node
}

// tag renders a node or mark as a single element carrying the given
// attributes, or all of them when attrs is nil.
func tag(a atom.Atom, attrs ...string) ToDOM {
	return func(n NodeOrMark) *html.Node {
		return Element(a, n.GetAttrs(attrs))
	}
}

func codeBlockToDOM(NodeOrMark) *html.Node {
	return Element(atom.Pre, nil, Element(atom.Code, nil))
}

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func headingToDOM(n NodeOrMark) *html.Node {
	level := 1
	for _, a := range n.GetAttrs([]string{"level"}) {
		if l, err := strconv.Atoi(a.Val); err == nil && l >= 1 && l <= len(headingAtoms) {
			level = l
		}
	}
	return Element(headingAtoms[level-1], nil)
}

var (
	defaultToDOM = map[string]ToDOM{
		"paragraph":       tag(atom.P),
		"blockquote":      tag(atom.Blockquote),
		"horizontal_rule": tag(atom.Hr),
		"image":           tag(atom.Img, "src", "alt", "title"),
		"hard_break":      tag(atom.Br),
		"code_block":      codeBlockToDOM,
		"heading":         headingToDOM,
	}
	defaultMarkToDOM = map[string]ToDOM{
		"link":   tag(atom.A, "href", "title"),
		"em":     tag(atom.Em),
		"strong": tag(atom.Strong),
		"code":   tag(atom.Code),
	}
)

// AddDefaultToDOM fills in the default ToDOM function of the node and mark
// types that don't define their own.
func AddDefaultToDOM(schema *Schema) *Schema {
	for _, n := range schema.Nodes {
		if n.Spec.ToDOM == nil {
			if fn, ok := defaultToDOM[n.Name]; ok {
				n.Spec.ToDOM = fn
			}
		}
	}
	for _, m := range schema.Marks {
		if m.Spec.ToDOM == nil {
			if fn, ok := defaultMarkToDOM[m.Name]; ok {
				m.Spec.ToDOM = fn
			}
		}
	}
	return schema
}

// DOMSerializer renders documents as HTML. Node and mark types without a
// ToDOM function are skipped.
type DOMSerializer struct {
	Nodes map[string]ToDOM
	Marks map[string]ToDOM
}

// DOMSerializerFromSchema uses the ToDOM functions of the schema specs.
func DOMSerializerFromSchema(schema *Schema) *DOMSerializer {
	return &DOMSerializer{
		Nodes: nodesFromSchema(schema),
		Marks: marksFromSchema(schema),
	}
}

// SerializeFragment appends the HTML of fragment to target, or to a new
// document node when target is nil.
func (d *DOMSerializer) SerializeFragment(fragment *Fragment, target *html.Node) *html.Node {
	if target == nil {
		target = &html.Node{Type: html.DocumentNode}
	}
	type activeMark struct {
		mark *Mark
		top  *html.Node
	}
	var active []activeMark
	top := target
	fragment.ForEach(func(node *Node, offset, index int) {
		if len(active) > 0 || len(node.Marks) > 0 {
			keep, rendered := 0, 0
			for keep < len(active) && rendered < len(node.Marks) {
				next := node.Marks[rendered]
				if d.Marks[next.Type.Name] == nil {
					rendered++
					continue
				}
				if !next.Eq(active[keep].mark) || (next.Type.Spec.Spanning != nil && !*next.Type.Spec.Spanning) {
					break
				}
				keep++
				rendered++
			}
			for keep < len(active) {
				n := len(active)
				top, active = active[n-1].top, active[:n-1]
			}
			for rendered < len(node.Marks) {
				add := node.Marks[rendered]
				rendered++
				if markDOM := d.serializeMark(add); markDOM != nil {
					active = append(active, activeMark{mark: add, top: top})
					top.AppendChild(markDOM)
					top = markDOM
				}
			}
		}
		if child := d.SerializeNode(node); child != nil {
			top.AppendChild(child)
		}
	})
	return target
}

func (d *DOMSerializer) serializeMark(mark *Mark) *html.Node {
	toDOM := d.Marks[mark.Type.Name]
	if toDOM == nil {
		return nil
	}
	return toDOM(mark)
}

// SerializeNode renders a single node with its content.
func (d *DOMSerializer) SerializeNode(node *Node) *html.Node {
	domFn := d.Nodes[node.Type.Name]
	if domFn == nil {
		slog.Debug("no DOM serializer for node type", "type", node.Type.Name)
		return nil
	}
	topNode := domFn(node)
	contentNode := topNode
	for contentNode.FirstChild != nil {
		contentNode = contentNode.FirstChild
	}
	d.SerializeFragment(node.Content, contentNode)
	return topNode
}

// Render serializes the fragment and writes the resulting HTML to w.
func (d *DOMSerializer) Render(fragment *Fragment, w io.Writer) error {
	return html.Render(w, d.SerializeFragment(fragment, nil))
}

// nodesFromSchema collects the node ToDOM functions, adding one for text.
func nodesFromSchema(schema *Schema) map[string]ToDOM {
	result := make(map[string]ToDOM)
	for _, n := range schema.Nodes {
		result[n.Name] = n.Spec.ToDOM
	}
	if result["text"] == nil {
		result["text"] = func(n NodeOrMark) *html.Node {
			node, _ := n.(*Node)
			return &html.Node{Type: html.TextNode, Data: *node.Text}
		}
	}
	return result
}

func marksFromSchema(schema *Schema) map[string]ToDOM {
	result := make(map[string]ToDOM)
	for _, m := range schema.Marks {
		result[m.Name] = m.Spec.ToDOM
	}
	return result
}
