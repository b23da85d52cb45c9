package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/schema/list"
)

// NodeFunc writes a block or inline node. parent and index locate the node
// inside its parent.
type NodeFunc func(state *SerializerState, node, parent *model.Node, index int)

// MarkFunc returns the syntax opening or closing a mark at the given child
// of parent.
type MarkFunc func(state *SerializerState, mark *model.Mark, parent *model.Node, index int) string

// Delimiter is a MarkFunc for marks written with fixed syntax.
func Delimiter(syntax string) MarkFunc {
	return func(*SerializerState, *model.Mark, *model.Node, int) string { return syntax }
}

// MarkSpec describes how a mark is written.
type MarkSpec struct {
	Open  MarkFunc
	Close MarkFunc
	// Mixable marks may be opened and closed in any order relative to other
	// mixable marks, as in `**a *b***` and `*a **b***`.
	Mixable bool
	// ExpelEnclosingWhitespace moves whitespace at the edges of the marked
	// text outside the mark, since CommonMark emphasis can't enclose it.
	ExpelEnclosingWhitespace bool
	// NoEscape marks have their text written as is. They must be the
	// innermost mark.
	NoEscape bool
}

// Options tune the output of a Serializer.
type Options struct {
	// TightLists renders consecutive list items without a blank line
	// between them.
	TightLists bool
}

// Serializer writes documents as CommonMark.
type Serializer struct {
	Nodes map[string]NodeFunc
	Marks map[string]MarkSpec
}

// NewSerializer creates a serializer from functions for each node type and
// the syntax of each mark type.
func NewSerializer(nodes map[string]NodeFunc, marks map[string]MarkSpec) *Serializer {
	return &Serializer{Nodes: nodes, Marks: marks}
}

// Serialize returns the content of doc as Markdown.
func (s *Serializer) Serialize(doc *model.Node, opts ...Options) string {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	state := newSerializerState(s, o)
	state.RenderContent(doc)
	return state.out.String()
}

// DefaultSerializer writes documents of the builtin schema, with numbered
// and bulleted list items.
var DefaultSerializer = NewSerializer(map[string]NodeFunc{
	"blockquote": func(state *SerializerState, node, _ *model.Node, _ int) {
		state.WrapBlock("> ", "", node, func() { state.RenderContent(node) })
	},
	"code_block":      writeCodeBlock,
	"heading":         writeHeading,
	"horizontal_rule": writeRule,
	"paragraph": func(state *SerializerState, node, _ *model.Node, _ int) {
		state.RenderInline(node)
		state.CloseBlock(node)
	},
	list.NumberedListItem: func(state *SerializerState, node, _ *model.Node, _ int) {
		n, ok := list.Index(node)
		if !ok {
			n = 1
		}
		state.RenderListItem(node, fmt.Sprintf("%d. ", n))
	},
	list.BulletListItem: func(state *SerializerState, node, _ *model.Node, _ int) {
		state.RenderListItem(node, "* ")
	},
	"image":      writeImage,
	"hard_break": writeHardBreak,
	"text": func(state *SerializerState, node, _ *model.Node, _ int) {
		state.Text(*node.Text, !state.inAutolink)
	},
}, map[string]MarkSpec{
	"em":     {Open: Delimiter("*"), Close: Delimiter("*"), Mixable: true, ExpelEnclosingWhitespace: true},
	"strong": {Open: Delimiter("**"), Close: Delimiter("**"), Mixable: true, ExpelEnclosingWhitespace: true},
	"link":   {Open: openLink, Close: closeLink, Mixable: true},
	"code":   {Open: openCode, Close: closeCode, NoEscape: true},
})

var fenceRegexp = regexp.MustCompile("`{3,}")

func writeCodeBlock(state *SerializerState, node, _ *model.Node, _ int) {
	text := node.TextContent()
	fence := "```"
	for _, run := range fenceRegexp.FindAllString(text, -1) {
		if len(run) >= len(fence) {
			fence = run + "`"
		}
	}
	params, _ := node.Attrs["params"].(string)
	state.Write(fence + params + "\n")
	state.Text(text, false)
	state.EnsureNewLine()
	state.Write(fence)
	state.CloseBlock(node)
}

func writeHeading(state *SerializerState, node, _ *model.Node, _ int) {
	level := 1
	switch v := node.Attrs["level"].(type) {
	case int:
		level = v
	case int64:
		level = int(v)
	case float64:
		level = int(v)
	}
	state.Write(strings.Repeat("#", level) + " ")
	state.RenderInline(node)
	state.CloseBlock(node)
}

func writeRule(state *SerializerState, node, _ *model.Node, _ int) {
	markup, ok := node.Attrs["markup"].(string)
	if !ok {
		markup = "---"
	}
	state.Write(markup)
	state.CloseBlock(node)
}

var (
	parenEscaper = strings.NewReplacer("(", `\(`, ")", `\)`)
	hrefEscaper  = strings.NewReplacer("(", `\(`, ")", `\)`, `"`, `\"`)
)

// titleSuffix renders an optional link or image title.
func titleSuffix(attrs map[string]interface{}) string {
	title, _ := attrs["title"].(string)
	if title == "" {
		return ""
	}
	return ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

func writeImage(state *SerializerState, node, _ *model.Node, _ int) {
	alt, _ := node.Attrs["alt"].(string)
	src, _ := node.Attrs["src"].(string)
	state.Write(fmt.Sprintf("![%s](%s)%s", state.Esc(alt, false), parenEscaper.Replace(src), titleSuffix(node.Attrs)))
}

// writeHardBreak only writes a break when something other than more breaks
// follows it in the block.
func writeHardBreak(state *SerializerState, node, parent *model.Node, index int) {
	for i := index; i < parent.ChildCount(); i++ {
		if child := parent.MaybeChild(i); child != nil && child.Type != node.Type {
			state.Write("\\\n")
			return
		}
	}
}

func openLink(state *SerializerState, mark *model.Mark, parent *model.Node, index int) string {
	state.inAutolink = isAutolink(mark, parent, index)
	if state.inAutolink {
		return "<"
	}
	return "["
}

func closeLink(state *SerializerState, mark *model.Mark, _ *model.Node, _ int) string {
	if state.inAutolink {
		state.inAutolink = false
		return ">"
	}
	href, _ := mark.Attrs["href"].(string)
	return "](" + hrefEscaper.Replace(href) + titleSuffix(mark.Attrs) + ")"
}

// isAutolink tells whether a link can be written as <href>: it has no title
// and covers exactly one text node reading its href.
func isAutolink(link *model.Mark, parent *model.Node, index int) bool {
	if _, ok := link.Attrs["title"].(string); ok {
		return false
	}
	href, _ := link.Attrs["href"].(string)
	if !strings.Contains(href, ":") {
		return false
	}
	content := parent.MaybeChild(index)
	if content == nil {
		return true
	}
	if !content.IsText() || *content.Text != href || content.Marks[len(content.Marks)-1] != link {
		return false
	}
	next := parent.MaybeChild(index + 1)
	return next == nil || !link.IsInSet(next.Marks)
}

func openCode(_ *SerializerState, _ *model.Mark, parent *model.Node, index int) string {
	return codeTicks(parent.MaybeChild(index), false)
}

func closeCode(_ *SerializerState, _ *model.Mark, parent *model.Node, index int) string {
	return codeTicks(parent.MaybeChild(index-1), true)
}

// codeTicks returns a backtick run longer than any run inside node, padded
// with a space on the inner side when node holds backticks itself.
func codeTicks(node *model.Node, closing bool) string {
	longest := 0
	if node != nil && node.IsText() {
		run := 0
		for _, r := range *node.Text {
			if r != '`' {
				run = 0
				continue
			}
			run++
			longest = max(longest, run)
		}
	}
	ticks := strings.Repeat("`", longest+1)
	switch {
	case longest == 0:
		return ticks
	case closing:
		return " " + ticks
	default:
		return ticks + " "
	}
}
