package model

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// ParseRule describes how to turn a DOM element into a node or a mark.
type ParseRule struct {
	// The element name this rule matches, like "p" or "li".
	Tag string
	// Rules are tried in order of descending priority. Rules with the same
	// priority are tried in the order in which they appear in the schema.
	// Defaults to 50.
	Priority int
	// Computes the attributes for the node or mark created by this rule.
	// When it returns false, the rule doesn't match the element.
	GetAttrs func(dom *html.Node) (map[string]interface{}, bool)
	// When true, the element and its content are dropped.
	Ignore bool
}

const defaultPriority = 50

type schemaRule struct {
	*ParseRule
	node  *NodeType
	mark  *MarkType
	order int
}

func (r *schemaRule) priority() int {
	if r.Priority == 0 {
		return defaultPriority
	}
	return r.Priority
}

// ignoredTags are never turned into document content.
var ignoredTags = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "template": true,
}

// listTags close the textblock they appear in, so that their items end up
// as siblings of it.
var listTags = map[string]bool{"ol": true, "ul": true}

// A DOMParser is responsible for parsing an HTML document into a document
// node, using the parse rules of a schema.
type DOMParser struct {
	Schema *Schema

	rules []*schemaRule
}

// DOMParserFromSchema constructs a DOM parser using the parsing rules listed
// in a schema's node and mark specs.
func DOMParserFromSchema(schema *Schema) *DOMParser {
	var rules []*schemaRule
	for _, ms := range schema.Spec.Marks {
		for _, rule := range ms.ParseDOM {
			rules = append(rules, &schemaRule{ParseRule: rule, mark: schema.Marks[ms.Key], order: len(rules)})
		}
	}
	for _, ns := range schema.Spec.Nodes {
		for _, rule := range ns.ParseDOM {
			rules = append(rules, &schemaRule{ParseRule: rule, node: schema.Nodes[ns.Key], order: len(rules)})
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].priority() > rules[j].priority()
	})
	return &DOMParser{Schema: schema, rules: rules}
}

// Parse parses a document from the content of a DOM node.
func (p *DOMParser) Parse(dom *html.Node) (*Node, error) {
	state := &parseState{parser: p}
	top := p.Schema.TopNodeType()
	state.stack = []*parseContext{{typ: top}}
	state.addAll(dom)
	for len(state.stack) > 1 {
		state.closeTop()
	}
	root := state.stack[0]
	frag := FragmentFromArray(root.content)
	doc, err := top.Create(root.attrs, frag, nil)
	if err != nil {
		doc, err = top.CreateAndFill(root.attrs, frag)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", top.Name, err)
	}
	return doc, nil
}

// matchTag finds the first rule matching the element, with the attributes
// it computes.
func (p *DOMParser) matchTag(dom *html.Node) (*schemaRule, map[string]interface{}) {
	for _, rule := range p.rules {
		if rule.Tag != dom.Data {
			continue
		}
		var attrs map[string]interface{}
		if rule.GetAttrs != nil {
			var ok bool
			if attrs, ok = rule.GetAttrs(dom); !ok {
				continue
			}
		}
		var specs map[string]*AttributeSpec
		if rule.node != nil {
			specs = rule.node.Spec.Attrs
		} else {
			specs = rule.mark.Spec.Attrs
		}
		for name, spec := range specs {
			if spec.ParseDOM == nil {
				continue
			}
			if v := spec.ParseDOM(dom); v != nil {
				if attrs == nil {
					attrs = map[string]interface{}{}
				}
				attrs[name] = v
			}
		}
		return rule, attrs
	}
	return nil, nil
}

// defaultTextblock returns the first textblock type that can be placed in a
// node of the given type, used to wrap loose inline content.
func (p *DOMParser) defaultTextblock(parent *NodeType) *NodeType {
	for _, typ := range p.Schema.nodeTypesInOrder() {
		if typ.IsTextblock() && parent.AllowsChild(typ) {
			return typ
		}
	}
	return nil
}

type parseContext struct {
	typ      *NodeType
	attrs    map[string]interface{}
	content  []*Node
	implicit bool
}

func (c *parseContext) endsWithSpace() bool {
	if len(c.content) == 0 {
		return true
	}
	last := c.content[len(c.content)-1]
	if !last.IsText() {
		return last.Type.Name == "hard_break"
	}
	return strings.HasSuffix(*last.Text, " ")
}

type parseState struct {
	parser *DOMParser
	stack  []*parseContext
	marks  []*Mark
}

func (s *parseState) top() *parseContext {
	return s.stack[len(s.stack)-1]
}

func (s *parseState) addAll(parent *html.Node) {
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		s.addDOM(child)
	}
}

func (s *parseState) addDOM(dom *html.Node) {
	switch dom.Type {
	case html.TextNode:
		s.addText(dom.Data)
	case html.ElementNode:
		s.addElement(dom)
	case html.DocumentNode:
		s.addAll(dom)
	}
}

func (s *parseState) addElement(dom *html.Node) {
	if ignoredTags[dom.Data] {
		return
	}
	rule, attrs := s.parser.matchTag(dom)
	switch {
	case rule == nil:
		if listTags[dom.Data] && s.top().typ.IsTextblock() {
			s.closeTop()
		}
		s.addAll(dom)
	case rule.Ignore:
	case rule.mark != nil:
		saved := s.marks
		s.marks = rule.mark.Create(attrs).AddToSet(s.marks)
		s.addAll(dom)
		s.marks = saved
	case rule.node.IsLeaf():
		s.insertNode(NewNode(rule.node, rule.node.computeAttrs(attrs), nil, nil))
	case rule.node.IsTextblock() && s.top().typ.IsTextblock() && !s.top().implicit:
		// A textblock nested in another one is merged into its parent.
		s.addAll(dom)
	default:
		ctx := s.openNode(rule.node, attrs)
		if ctx == nil {
			s.addAll(dom)
			return
		}
		s.addAll(dom)
		s.closeNode(ctx)
	}
}

// findPlace makes sure the top of the stack can hold a node of the given
// type, closing contexts or opening an implicit textblock as needed.
func (s *parseState) findPlace(typ *NodeType) bool {
	for {
		top := s.top()
		if top.typ.AllowsChild(typ) {
			return true
		}
		if typ.IsInline() {
			if top.typ.InlineContent() {
				return false
			}
			tb := s.parser.defaultTextblock(top.typ)
			if tb == nil {
				return false
			}
			s.stack = append(s.stack, &parseContext{typ: tb, attrs: tb.computeAttrs(nil), implicit: true})
			continue
		}
		if len(s.stack) == 1 {
			return false
		}
		s.closeTop()
	}
}

func (s *parseState) openNode(typ *NodeType, attrs map[string]interface{}) *parseContext {
	if !s.findPlace(typ) {
		slog.Debug("dropping node that doesn't fit", "type", typ.Name)
		return nil
	}
	ctx := &parseContext{typ: typ, attrs: typ.computeAttrs(attrs)}
	s.stack = append(s.stack, ctx)
	return ctx
}

// closeNode closes the contexts up to and including ctx, if it is still
// open.
func (s *parseState) closeNode(ctx *parseContext) {
	for i := len(s.stack) - 1; i > 0; i-- {
		if s.stack[i] == ctx {
			for len(s.stack) > i {
				s.closeTop()
			}
			return
		}
	}
}

func (s *parseState) closeTop() {
	ctx := s.top()
	s.stack = s.stack[:len(s.stack)-1]
	if ctx.typ.InlineContent() && !ctx.typ.Spec.Code {
		trimTrailingSpace(ctx)
	}
	if ctx.implicit && len(ctx.content) == 0 {
		return
	}
	node := s.build(ctx)
	if node == nil {
		return
	}
	parent := s.top()
	parent.content = append(parent.content, node)
}

func (s *parseState) build(ctx *parseContext) *Node {
	frag := FragmentFromArray(ctx.content)
	node, err := ctx.typ.Create(ctx.attrs, frag, nil)
	if err != nil {
		node, err = ctx.typ.CreateAndFill(ctx.attrs, frag)
	}
	if err != nil {
		slog.Debug("dropping invalid node", "type", ctx.typ.Name, "error", err)
		return nil
	}
	return node
}

func (s *parseState) insertNode(node *Node) {
	if !s.findPlace(node.Type) {
		slog.Debug("dropping node that doesn't fit", "type", node.Type.Name)
		return
	}
	top := s.top()
	if node.IsInline() {
		node = node.Mark(s.allowedMarks(top.typ))
	}
	top.content = append(top.content, node)
}

func (s *parseState) allowedMarks(typ *NodeType) []*Mark {
	var marks []*Mark
	for _, m := range s.marks {
		if typ.AllowsMarkType(m.Type) {
			marks = append(marks, m)
		}
	}
	return MarkSetFrom(marks)
}

func (s *parseState) addText(text string) {
	top := s.top()
	if !top.typ.InlineContent() && strings.TrimSpace(text) == "" {
		return
	}
	textType := s.parser.Schema.Nodes["text"]
	if !s.findPlace(textType) {
		return
	}
	top = s.top()
	if !top.typ.Spec.Code {
		text = collapseWhitespace(text)
		if top.endsWithSpace() {
			text = strings.TrimLeft(text, " ")
		}
	}
	if text == "" {
		return
	}
	node := NewTextNode(textType, nil, text, s.allowedMarks(top.typ))
	if n := len(top.content); n > 0 && top.content[n-1].IsText() && top.content[n-1].SameMarkup(node) {
		last := top.content[n-1]
		top.content[n-1] = last.WithText(*last.Text + text)
		return
	}
	top.content = append(top.content, node)
}

func collapseWhitespace(text string) string {
	var b strings.Builder
	space := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func trimTrailingSpace(ctx *parseContext) {
	n := len(ctx.content)
	if n == 0 || !ctx.content[n-1].IsText() {
		return
	}
	last := ctx.content[n-1]
	trimmed := strings.TrimRight(*last.Text, " ")
	if trimmed == "" {
		ctx.content = ctx.content[:n-1]
		return
	}
	ctx.content[n-1] = last.WithText(trimmed)
}
