// Package builder provides helpers to write test documents concisely.
//
// Strings passed to node builders may contain tags like "<a>", which are
// removed from the text and whose document positions are reported in the
// Tag map of the built node.
package builder

import (
	"regexp"

	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/schema/list"
)

// Spec describes a builder: "nodeType" or "markType" names the type, the
// other entries are attributes.
type Spec map[string]interface{}

// Tag maps tag names to positions.
type Tag map[string]int

// NodeWithTag is a built node with the positions of its tags.
type NodeWithTag struct {
	*model.Node
	Tag Tag
}

// Flat is inline content built by a mark builder.
type Flat struct {
	Nodes []*model.Node
	Tag   Tag
}

// NodeBuilder builds a node from attribute maps, strings, nodes and marked
// content.
type NodeBuilder func(args ...interface{}) NodeWithTag

// MarkBuilder applies a mark to strings and nodes.
type MarkBuilder func(args ...interface{}) Flat

var tagRegexp = regexp.MustCompile(`<(\w+)>`)

func flatten(schema *model.Schema, args []interface{}) (map[string]interface{}, []*model.Node, Tag) {
	var attrs map[string]interface{}
	var nodes []*model.Node
	tag := Tag{}
	pos := 0
	for _, arg := range args {
		switch arg := arg.(type) {
		case map[string]interface{}:
			if attrs == nil {
				attrs = map[string]interface{}{}
			}
			for k, v := range arg {
				attrs[k] = v
			}
		case string:
			at := 0
			out := ""
			for _, m := range tagRegexp.FindAllStringSubmatchIndex(arg, -1) {
				out += arg[at:m[0]]
				tag[arg[m[2]:m[3]]] = pos + len(out)
				at = m[1]
			}
			out += arg[at:]
			if out != "" {
				nodes = append(nodes, schema.Text(out))
				pos += len(out)
			}
		case NodeWithTag:
			for k, v := range arg.Tag {
				if arg.IsText() || arg.IsLeaf() {
					tag[k] = pos + v
				} else {
					tag[k] = pos + v + 1
				}
			}
			nodes = append(nodes, arg.Node)
			pos += arg.NodeSize()
		case *model.Node:
			nodes = append(nodes, arg)
			pos += arg.NodeSize()
		case NodeBuilder:
			n := arg()
			nodes = append(nodes, n.Node)
			pos += n.NodeSize()
		case Flat:
			for k, v := range arg.Tag {
				tag[k] = pos + v
			}
			for _, n := range arg.Nodes {
				nodes = append(nodes, n)
				pos += n.NodeSize()
			}
		}
	}
	return attrs, nodes, tag
}

func mergeAttrs(base, extra map[string]interface{}) map[string]interface{} {
	if len(base) == 0 {
		return extra
	}
	result := map[string]interface{}{}
	for k, v := range base {
		result[k] = v
	}
	for k, v := range extra {
		result[k] = v
	}
	return result
}

// Block creates a builder function for nodes of the given type.
func Block(typ *model.NodeType, attrs map[string]interface{}) NodeBuilder {
	return func(args ...interface{}) NodeWithTag {
		extra, nodes, tag := flatten(typ.Schema, args)
		node, err := typ.Create(mergeAttrs(attrs, extra), model.FragmentFromArray(nodes), nil)
		if err != nil {
			panic(err)
		}
		return NodeWithTag{Node: node, Tag: tag}
	}
}

// Mark creates a builder function for marks of the given type.
func Mark(typ *model.MarkType, attrs map[string]interface{}) MarkBuilder {
	return func(args ...interface{}) Flat {
		extra, nodes, tag := flatten(typ.Schema, args)
		mark := typ.Create(mergeAttrs(attrs, extra))
		for i, n := range nodes {
			nodes[i] = n.Mark(mark.AddToSet(n.Marks))
		}
		return Flat{Nodes: nodes, Tag: tag}
	}
}

// Builders returns a builder for every node and mark type of the schema,
// under its name, plus the builders described by names.
func Builders(schema *model.Schema, names map[string]Spec) map[string]interface{} {
	result := map[string]interface{}{"schema": schema}
	for name, typ := range schema.Nodes {
		result[name] = Block(typ, nil)
	}
	for name, typ := range schema.Marks {
		result[name] = Mark(typ, nil)
	}
	for name, spec := range names {
		attrs := map[string]interface{}{}
		for k, v := range spec {
			if k != "nodeType" && k != "markType" {
				attrs[k] = v
			}
		}
		if typeName, ok := spec["nodeType"].(string); ok {
			result[name] = Block(schema.Nodes[typeName], attrs)
		} else if typeName, ok := spec["markType"].(string); ok {
			result[name] = Mark(schema.Marks[typeName], attrs)
		}
	}
	return result
}

var testSchema = mustSchema()

func mustSchema() *model.Schema {
	schema, err := list.NewSchema()
	if err != nil {
		panic(err)
	}
	return schema
}

var out = Builders(testSchema, map[string]Spec{
	"p":   {"nodeType": "paragraph"},
	"pre": {"nodeType": "code_block"},
	"h1":  {"nodeType": "heading", "level": 1},
	"h2":  {"nodeType": "heading", "level": 2},
	"li":  {"nodeType": list.NumberedListItem},
	"li2": {"nodeType": list.NumberedListItem, "level": "2"},
	"li3": {"nodeType": list.NumberedListItem, "level": "3"},
	"bl":  {"nodeType": list.BulletListItem},
	"br":  {"nodeType": "hard_break"},
	"img": {"nodeType": "image", "src": "img.png"},
	"hr":  {"nodeType": "horizontal_rule"},
	"a":   {"markType": "link", "href": "foo"},
})

// Builders for the list schema.
var (
	Schema     = out["schema"].(*model.Schema)
	Doc        = out["doc"].(NodeBuilder)
	P          = out["p"].(NodeBuilder)
	Blockquote = out["blockquote"].(NodeBuilder)
	Pre        = out["pre"].(NodeBuilder)
	H1         = out["h1"].(NodeBuilder)
	H2         = out["h2"].(NodeBuilder)
	Li         = out["li"].(NodeBuilder)
	Li2        = out["li2"].(NodeBuilder)
	Li3        = out["li3"].(NodeBuilder)
	Bl         = out["bl"].(NodeBuilder)
	Br         = out["br"].(NodeBuilder)
	Img        = out["img"].(NodeBuilder)
	Hr         = out["hr"].(NodeBuilder)
	A          = out["a"].(MarkBuilder)
	Em         = out["em"].(MarkBuilder)
	Strong     = out["strong"].(MarkBuilder)
	Code       = out["code"].(MarkBuilder)
)
