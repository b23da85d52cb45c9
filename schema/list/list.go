// Package list exports the list item block contents of the schema: numbered
// list items, which carry their position in a run of items and the tier
// that selects how that position is displayed, and bullet list items.
//
// List items are flat: nesting is expressed by the level attribute of
// consecutive items, not by wrapping them in list nodes.
package list

import (
	"strconv"
	"strings"

	"github.com/dstotijn/go-notion"
	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/numeral"
	"github.com/shodgson/prosemirror-numbering/schema/basic"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node type names.
const (
	NumberedListItem = "numberedListItem"
	BulletListItem   = "bulletListItem"
)

// Markup attributes of the block content wrapper.
const (
	AttrContentType = "data-content-type"
	AttrIndex       = "data-index"
	AttrLevel       = "data-level"
	AttrNumChar     = "data-num-char"
)

// Base CSS classes of the block content wrapper and of the element holding
// the inline content.
const (
	BlockContentClass  = "blockContent"
	InlineContentClass = "inlineContent"
)

// Options are extra DOM attributes for the rendered list items.
type Options struct {
	// Added to the class of the block content wrapper.
	BlockContentClass string
	// Added to the class of the <p> holding the inline content.
	InlineContentClass string
}

func mergeOptions(opts []Options) Options {
	var merged Options
	for _, o := range opts {
		if o.BlockContentClass != "" {
			merged.BlockContentClass = o.BlockContentClass
		}
		if o.InlineContentClass != "" {
			merged.InlineContentClass = o.InlineContentClass
		}
	}
	return merged
}

// mergeClasses joins CSS classes, skipping empty ones.
func mergeClasses(classes ...string) string {
	var result []string
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			result = append(result, c)
		}
	}
	return strings.Join(result, " ")
}

// contentElement returns the element carrying the block content type: the
// element itself, or the parent of its inline content element.
func contentElement(dom *html.Node) *html.Node {
	if _, ok := basic.DOMAttr(dom, AttrContentType); ok {
		return dom
	}
	if dom != nil && dom.Parent != nil {
		if _, ok := basic.DOMAttr(dom.Parent, AttrContentType); ok {
			return dom.Parent
		}
	}
	return nil
}

// positiveInt parses a value that should hold an integer >= 1.
func positiveInt(value interface{}) (int, bool) {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n < 1 {
		return 0, false
	}
	return n, true
}

func parseIndex(dom *html.Node) interface{} {
	v, ok := basic.DOMAttr(contentElement(dom), AttrIndex)
	if !ok {
		return nil
	}
	if n, ok := positiveInt(v); ok {
		return n
	}
	return nil
}

func renderIndex(value interface{}) []html.Attribute {
	n, ok := positiveInt(value)
	if !ok {
		return nil
	}
	return []html.Attribute{{Key: AttrIndex, Val: strconv.Itoa(n)}}
}

func parseLevel(dom *html.Node) interface{} {
	v, ok := basic.DOMAttr(contentElement(dom), AttrLevel)
	if !ok {
		return nil
	}
	if n, ok := positiveInt(v); ok {
		return strconv.Itoa(n)
	}
	return nil
}

func renderLevel(value interface{}) []html.Attribute {
	n, ok := positiveInt(value)
	if !ok {
		n = 1
	}
	return []html.Attribute{{Key: AttrLevel, Val: strconv.Itoa(n)}}
}

func levelAttr() *model.AttributeSpec {
	return &model.AttributeSpec{Default: "1", ParseDOM: parseLevel, ToDOM: renderLevel}
}

// Index returns the position of a numbered list item in its run, as last
// computed by the indexing pass. It is false when the item has not been
// numbered yet, or holds a malformed value.
func Index(node *model.Node) (int, bool) {
	return positiveInt(node.Attrs["index"])
}

// Level returns the tier of a list item. Missing or malformed levels are
// tier 1.
func Level(node *model.Node) int {
	if n, ok := positiveInt(node.Attrs["level"]); ok {
		return n
	}
	return 1
}

// Label returns the text displayed in front of a numbered list item. Items
// that are not numbered yet are labelled as the first of their run.
func Label(node *model.Node) string {
	index, ok := Index(node)
	if !ok {
		index = 1
	}
	return numeral.Format(index, Level(node))
}

// IsListItem tells whether a node is one of the list item types.
func IsListItem(node *model.Node) bool {
	name := node.Type.Name
	return name == NumberedListItem || name == BulletListItem
}

// NotionDepth is the nesting depth of a block for Notion export: list items
// nest by their level, other blocks are top level.
func NotionDepth(node *model.Node) int {
	if IsListItem(node) {
		return Level(node)
	}
	return 1
}

// parentHasContentType matches elements whose parent is the block content
// wrapper of the given type.
func parentHasContentType(name string) func(dom *html.Node) (map[string]interface{}, bool) {
	return func(dom *html.Node) (map[string]interface{}, bool) {
		if dom.Parent == nil {
			return nil, false
		}
		v, ok := basic.DOMAttr(dom.Parent, AttrContentType)
		if !ok || v != name {
			return nil, false
		}
		return map[string]interface{}{}, true
	}
}

// parentIs matches elements whose parent has the given tag.
func parentIs(a atom.Atom) func(dom *html.Node) (map[string]interface{}, bool) {
	return func(dom *html.Node) (map[string]interface{}, bool) {
		if dom.Parent == nil || dom.Parent.Type != html.ElementNode || dom.Parent.Data != a.String() {
			return nil, false
		}
		return map[string]interface{}{}, true
	}
}

func blockContentDOM(name string, opts Options, extra func(*model.Node) []html.Attribute) model.ToDOM {
	return func(n model.NodeOrMark) *html.Node {
		attrs := []html.Attribute{
			{Key: "class", Val: mergeClasses(BlockContentClass, opts.BlockContentClass)},
			{Key: AttrContentType, Val: name},
		}
		attrs = append(attrs, n.GetAttrs(nil)...)
		if node, ok := n.(*model.Node); ok && extra != nil {
			attrs = append(attrs, extra(node)...)
		}
		inline := model.Element(atom.P, []html.Attribute{
			{Key: "class", Val: mergeClasses(InlineContentClass, opts.InlineContentClass)},
		})
		return model.Element(atom.Div, attrs, inline)
	}
}

func numberedListItem(opts Options) *model.NodeSpec {
	return &model.NodeSpec{
		Key:     NumberedListItem,
		Content: "inline*",
		Attrs: map[string]*model.AttributeSpec{
			"index": {Default: nil, ParseDOM: parseIndex, ToDOM: renderIndex},
			"level": levelAttr(),
		},
		ParseDOM: []*model.ParseRule{
			// Generic HTML lists, as pasted from other applications.
			{Tag: "li", GetAttrs: parentIs(atom.Ol)},
			// Our own block markup.
			{Tag: "p", Priority: 300, GetAttrs: parentHasContentType(NumberedListItem)},
		},
		ToDOM: blockContentDOM(NumberedListItem, opts, func(node *model.Node) []html.Attribute {
			return []html.Attribute{{Key: AttrNumChar, Val: Label(node)}}
		}),
		ToNotion: func(node *model.Node) *notion.Block {
			return &notion.Block{
				Type:             notion.BlockTypeNumberedListItem,
				NumberedListItem: &notion.RichTextBlock{Text: model.NotionRichText(node)},
			}
		},
	}
}

func bulletListItem(opts Options) *model.NodeSpec {
	return &model.NodeSpec{
		Key:     BulletListItem,
		Content: "inline*",
		Attrs: map[string]*model.AttributeSpec{
			"level": levelAttr(),
		},
		ParseDOM: []*model.ParseRule{
			{Tag: "li", GetAttrs: parentIs(atom.Ul)},
			{Tag: "p", Priority: 300, GetAttrs: parentHasContentType(BulletListItem)},
		},
		ToDOM: blockContentDOM(BulletListItem, opts, nil),
		ToNotion: func(node *model.Node) *notion.Block {
			return &notion.Block{
				Type:             notion.BlockTypeBulletedListItem,
				BulletedListItem: &notion.RichTextBlock{Text: model.NotionRichText(node)},
			}
		},
	}
}

func add(obj *model.NodeSpec, props model.NodeSpec) *model.NodeSpec {
	if props.Content != "" {
		obj.Content = props.Content
	}
	if props.Group != "" {
		obj.Group = props.Group
	}
	return obj
}

// AddListNodes is a convenience function for adding the list item node types
// to the nodes of a schema, as "numberedListItem" and "bulletListItem".
//
// listGroup can be given to assign a group name to the list item node types,
// for example "block".
func AddListNodes(nodes []*model.NodeSpec, listGroup string, opts ...Options) []*model.NodeSpec {
	o := mergeOptions(opts)
	return append(
		nodes,
		add(numberedListItem(o), model.NodeSpec{Group: listGroup}),
		add(bulletListItem(o), model.NodeSpec{Group: listGroup}),
	)
}

// NewSchema returns the basic schema extended with the list item nodes.
func NewSchema(opts ...Options) (*model.Schema, error) {
	nodes := make([]*model.NodeSpec, 0, len(basic.Nodes)+2)
	// The paragraph must stay the first textblock, as the default one.
	nodes = append(nodes, basic.Nodes...)
	nodes = AddListNodes(nodes, "block", opts...)
	schema, err := model.NewSchema(&model.SchemaSpec{Nodes: nodes, Marks: basic.Marks})
	if err != nil {
		return nil, err
	}
	model.AddDefaultToDOM(schema)
	model.AddDefaultToNotion(schema)
	return schema, nil
}
