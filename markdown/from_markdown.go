package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/schema/list"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// NodeMapperFunc converts a Markdown AST node. It is called once when
// entering the node and once when leaving it.
type NodeMapperFunc func(state *ParserState, node ast.Node, entering bool) (ast.WalkStatus, error)

// NodeMapper maps Markdown AST node kinds to their converters. Nodes whose
// kind has no converter are transparent: their children are converted in
// place.
type NodeMapper map[ast.NodeKind]NodeMapperFunc

type parseEntry struct {
	typ     *model.NodeType
	attrs   map[string]interface{}
	content []*model.Node
}

// ParserState is the state of a Markdown document being converted to a
// document node.
type ParserState struct {
	Schema *model.Schema
	Source []byte

	stack  []*parseEntry
	marks  []*model.Mark
	opened map[ast.Node]int
}

// ParseMarkdown parses Markdown source with a goldmark parser and converts
// the result to a document of the given schema.
func ParseMarkdown(p parser.Parser, mapper NodeMapper, source []byte, schema *model.Schema) (*model.Node, error) {
	root := p.Parse(text.NewReader(source))
	state := &ParserState{
		Schema: schema,
		Source: source,
		stack:  []*parseEntry{{typ: schema.TopNodeType()}},
		opened: map[ast.Node]int{},
	}
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fn, ok := mapper[n.Kind()]; ok {
			return fn(state, n, entering)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := state.CloseTo(1); err != nil {
		return nil, err
	}
	top := state.stack[0]
	return top.typ.CreateAndFill(top.attrs, model.FragmentFromArray(top.content))
}

func (s *ParserState) top() *parseEntry {
	return s.stack[len(s.stack)-1]
}

// InTextblock tells whether inline content is being collected.
func (s *ParserState) InTextblock() bool {
	return s.top().typ.InlineContent()
}

// OpenNode starts a node of the given type for the AST node n. Its content
// is collected until n is left.
func (s *ParserState) OpenNode(n ast.Node, name string, attrs map[string]interface{}) error {
	typ, err := s.Schema.NodeType(name)
	if err != nil {
		return err
	}
	if typ.IsBlock() {
		if err := s.closeTextblocks(); err != nil {
			return err
		}
	}
	s.opened[n] = len(s.stack)
	s.stack = append(s.stack, &parseEntry{typ: typ, attrs: attrs})
	return nil
}

// CloseNode closes the node opened for n, and everything opened inside it.
func (s *ParserState) CloseNode(n ast.Node) error {
	depth, ok := s.opened[n]
	if !ok {
		return nil
	}
	delete(s.opened, n)
	return s.CloseTo(depth)
}

// CloseTo closes the open nodes until depth of them remain.
func (s *ParserState) CloseTo(depth int) error {
	for len(s.stack) > depth && len(s.stack) > 1 {
		entry := s.top()
		s.stack = s.stack[:len(s.stack)-1]
		node, err := entry.typ.Create(entry.attrs, model.FragmentFromArray(entry.content), nil)
		if err != nil {
			node, err = entry.typ.CreateAndFill(entry.attrs, model.FragmentFromArray(entry.content))
		}
		if err != nil {
			return fmt.Errorf("markdown: %w", err)
		}
		parent := s.top()
		parent.content = append(parent.content, node)
	}
	return nil
}

// closeTextblocks closes the open text blocks, so that block content can be
// added.
func (s *ParserState) closeTextblocks() error {
	depth := len(s.stack)
	for depth > 1 && s.stack[depth-1].typ.InlineContent() {
		depth--
	}
	return s.CloseTo(depth)
}

// AddNode adds a leaf node to the current node.
func (s *ParserState) AddNode(name string, attrs map[string]interface{}) error {
	typ, err := s.Schema.NodeType(name)
	if err != nil {
		return err
	}
	if typ.IsBlock() {
		if err := s.closeTextblocks(); err != nil {
			return err
		}
	}
	node, err := typ.Create(attrs, nil, nil)
	if err != nil {
		return err
	}
	if node.IsInline() {
		node = node.Mark(s.marks)
	}
	s.top().content = append(s.top().content, node)
	return nil
}

// AddText adds text with the active marks to the current node.
func (s *ParserState) AddText(value string) {
	if value == "" {
		return
	}
	s.top().content = append(s.top().content, s.Schema.Text(value, s.marks...))
}

// OpenMark adds a mark to the set of active marks.
func (s *ParserState) OpenMark(mark *model.Mark) {
	s.marks = mark.AddToSet(s.marks)
}

// CloseMark removes a mark from the set of active marks.
func (s *ParserState) CloseMark(mark *model.Mark) {
	s.marks = mark.RemoveFromSet(s.marks)
}

// listLevel is the number of lists containing n.
func listLevel(n ast.Node) int {
	level := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == ast.KindList {
			level++
		}
	}
	return level
}

// segmentsText joins the lines of a block.
func segmentsText(lines *text.Segments, source []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(source))
	}
	return b.String()
}

// inlineText returns the text content of inline nodes.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
		case *ast.String:
			b.Write(c.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}

func textblock(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, state.CloseNode(n)
	}
	if state.InTextblock() && len(state.top().content) == 0 {
		// The first paragraph of a list item is the item itself.
		return ast.WalkContinue, nil
	}
	return ast.WalkContinue, state.OpenNode(n, "paragraph", nil)
}

func codeBlock(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if err := state.OpenNode(n, "code_block", nil); err != nil {
		return ast.WalkStop, err
	}
	state.AddText(strings.TrimSuffix(segmentsText(n.Lines(), state.Source), "\n"))
	return ast.WalkSkipChildren, state.CloseNode(n)
}

func emphasisMark(state *ParserState, n *ast.Emphasis) *model.Mark {
	if n.Level >= 2 {
		return state.Schema.Mark("strong")
	}
	return state.Schema.Mark("em")
}

// DefaultNodeMapper converts CommonMark to the list schema: ordered lists
// become numbered list items and bullet lists bullet list items, whose
// level is the nesting depth of their list.
var DefaultNodeMapper = NodeMapper{
	ast.KindParagraph: textblock,
	ast.KindTextBlock: textblock,
	ast.KindHeading: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, state.CloseNode(n)
		}
		level := n.(*ast.Heading).Level
		return ast.WalkContinue, state.OpenNode(n, "heading", map[string]interface{}{"level": level})
	},
	ast.KindBlockquote: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, state.CloseNode(n)
		}
		return ast.WalkContinue, state.OpenNode(n, "blockquote", nil)
	},
	ast.KindList: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			// Nested lists follow the item containing them.
			return ast.WalkContinue, state.closeTextblocks()
		}
		return ast.WalkContinue, nil
	},
	ast.KindListItem: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, state.CloseNode(n)
		}
		name := list.BulletListItem
		if l, ok := n.Parent().(*ast.List); ok && l.IsOrdered() {
			name = list.NumberedListItem
		}
		attrs := map[string]interface{}{"level": strconv.Itoa(listLevel(n))}
		return ast.WalkContinue, state.OpenNode(n, name, attrs)
	},
	ast.KindThematicBreak: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		return ast.WalkSkipChildren, state.AddNode("horizontal_rule", nil)
	},
	ast.KindCodeBlock: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		return codeBlock(state, n, entering)
	},
	ast.KindFencedCodeBlock: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		return codeBlock(state, n, entering)
	},
	ast.KindHTMLBlock: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		return ast.WalkSkipChildren, nil
	},
	ast.KindText: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		t := n.(*ast.Text)
		state.AddText(string(t.Segment.Value(state.Source)))
		switch {
		case t.HardLineBreak():
			return ast.WalkContinue, state.AddNode("hard_break", nil)
		case t.SoftLineBreak():
			state.AddText("\n")
		}
		return ast.WalkContinue, nil
	},
	ast.KindString: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			state.AddText(string(n.(*ast.String).Value))
		}
		return ast.WalkContinue, nil
	},
	ast.KindEmphasis: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		mark := emphasisMark(state, n.(*ast.Emphasis))
		if entering {
			state.OpenMark(mark)
		} else {
			state.CloseMark(mark)
		}
		return ast.WalkContinue, nil
	},
	ast.KindCodeSpan: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		mark := state.Schema.Mark("code")
		state.OpenMark(mark)
		state.AddText(inlineText(n, state.Source))
		state.CloseMark(mark)
		return ast.WalkSkipChildren, nil
	},
	ast.KindLink: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		link := n.(*ast.Link)
		attrs := map[string]interface{}{"href": string(link.Destination)}
		if len(link.Title) > 0 {
			attrs["title"] = string(link.Title)
		}
		mark := state.Schema.Mark("link", attrs)
		if entering {
			state.OpenMark(mark)
		} else {
			state.CloseMark(mark)
		}
		return ast.WalkContinue, nil
	},
	ast.KindAutoLink: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link := n.(*ast.AutoLink)
		url := string(link.URL(state.Source))
		mark := state.Schema.Mark("link", map[string]interface{}{"href": url})
		state.OpenMark(mark)
		state.AddText(string(link.Label(state.Source)))
		state.CloseMark(mark)
		return ast.WalkSkipChildren, nil
	},
	ast.KindImage: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img := n.(*ast.Image)
		attrs := map[string]interface{}{
			"src": string(img.Destination),
			"alt": inlineText(n, state.Source),
		}
		if len(img.Title) > 0 {
			attrs["title"] = string(img.Title)
		}
		return ast.WalkSkipChildren, state.AddNode("image", attrs)
	},
	ast.KindRawHTML: func(state *ParserState, n ast.Node, entering bool) (ast.WalkStatus, error) {
		return ast.WalkSkipChildren, nil
	},
}
