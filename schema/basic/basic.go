// Package basic defines a basic document schema, whose elements can be
// reused in other schemas.
package basic

import (
	"strconv"

	"github.com/shodgson/prosemirror-numbering/model"
	"golang.org/x/net/html"
)

var (
	empty = ""
	falsy = false

	headingAttrs = map[string]*model.AttributeSpec{
		"level": {Default: 1},
	}
	imageAttrs = map[string]*model.AttributeSpec{
		"src":   {},
		"alt":   {Default: nil},
		"title": {Default: nil},
	}
	linkAttrs = map[string]*model.AttributeSpec{
		"href":  {},
		"title": {Default: nil},
	}
)

// DOMAttr returns the value of the named attribute of a DOM element.
func DOMAttr(dom *html.Node, key string) (string, bool) {
	if dom == nil {
		return "", false
	}
	for _, a := range dom.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// readAttrs copies the given DOM attributes, when present, into an
// attribute map.
func readAttrs(keys ...string) func(dom *html.Node) (map[string]interface{}, bool) {
	return func(dom *html.Node) (map[string]interface{}, bool) {
		attrs := map[string]interface{}{}
		for _, key := range keys {
			if v, ok := DOMAttr(dom, key); ok {
				attrs[key] = v
			}
		}
		return attrs, true
	}
}

func headingRule(level int) *model.ParseRule {
	return &model.ParseRule{
		Tag: "h" + strconv.Itoa(level),
		GetAttrs: func(*html.Node) (map[string]interface{}, bool) {
			return map[string]interface{}{"level": level}, true
		},
	}
}

// Nodes are the specs for the nodes defined in this schema.
var Nodes = []*model.NodeSpec{
	// The top level document node.
	{Key: "doc", Content: "block+"},

	// A plain paragraph textblock. Represented in the DOM as a <p> element.
	{Key: "paragraph", Content: "inline*", Group: "block",
		ParseDOM: []*model.ParseRule{{Tag: "p"}}},

	// A blockquote (<blockquote>) wrapping one or more blocks.
	{Key: "blockquote", Content: "block+", Group: "block",
		ParseDOM: []*model.ParseRule{{Tag: "blockquote"}}},

	// A horizontal rule (<hr>).
	{Key: "horizontal_rule", Group: "block",
		ParseDOM: []*model.ParseRule{{Tag: "hr"}}},

	// A heading textblock, with a level attribute that should hold the number
	// 1 to 6. Parsed and serialized as <h1> to <h6> elements.
	{Key: "heading", Content: "inline*", Group: "block", Attrs: headingAttrs,
		ParseDOM: []*model.ParseRule{
			headingRule(1), headingRule(2), headingRule(3),
			headingRule(4), headingRule(5), headingRule(6),
		}},

	// A code listing. Disallows marks or non-text inline nodes by default.
	// Represented as a <pre> element with a <code> element inside of it.
	{Key: "code_block", Content: "text*", Marks: &empty, Group: "block", Code: true,
		ParseDOM: []*model.ParseRule{{Tag: "pre"}}},

	// The text node.
	{Key: "text", Group: "inline"},

	// An inline image (<img>) node. Supports src, alt, and title attributes.
	{Key: "image", Group: "inline", Inline: true, Attrs: imageAttrs,
		ParseDOM: []*model.ParseRule{{Tag: "img", GetAttrs: func(dom *html.Node) (map[string]interface{}, bool) {
			if _, ok := DOMAttr(dom, "src"); !ok {
				return nil, false
			}
			return readAttrs("src", "alt", "title")(dom)
		}}}},

	// A hard line break, represented in the DOM as <br>.
	{Key: "hard_break", Group: "inline", Inline: true,
		ParseDOM: []*model.ParseRule{{Tag: "br"}}},
}

// Marks are the specs for the marks in the schema.
var Marks = []*model.MarkSpec{
	// A link. Has href and title attributes. Rendered and parsed as an <a>
	// element.
	{Key: "link", Attrs: linkAttrs, Inclusive: &falsy,
		ParseDOM: []*model.ParseRule{{Tag: "a", GetAttrs: func(dom *html.Node) (map[string]interface{}, bool) {
			if _, ok := DOMAttr(dom, "href"); !ok {
				return nil, false
			}
			return readAttrs("href", "title")(dom)
		}}}},

	// An emphasis mark. Rendered as an <em> element. Parse rules also match
	// <i>.
	{Key: "em", ParseDOM: []*model.ParseRule{{Tag: "em"}, {Tag: "i"}}},

	// A strong mark. Rendered as <strong>, parse rules also match <b>.
	{Key: "strong", ParseDOM: []*model.ParseRule{{Tag: "strong"}, {Tag: "b"}}},

	// Code font mark. Represented as a <code> element.
	{Key: "code", ParseDOM: []*model.ParseRule{{Tag: "code"}}},
}

// Schema roughly corresponds to the document schema used by CommonMark,
// minus the list elements, which are defined in the list package.
//
// To reuse elements from this schema, extend or read from its Nodes and
// Marks.
var Schema = mustSchema()

func mustSchema() *model.Schema {
	schema, err := model.NewSchema(&model.SchemaSpec{Nodes: Nodes, Marks: Marks})
	if err != nil {
		panic(err)
	}
	model.AddDefaultToDOM(schema)
	model.AddDefaultToNotion(schema)
	return schema
}
