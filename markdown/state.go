package markdown

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/schema/list"
)

// SerializerState accumulates output while a document is serialized. Node
// and mark functions write through it.
type SerializerState struct {
	nodes map[string]NodeFunc
	marks map[string]MarkSpec
	opts  Options

	out    strings.Builder
	last   byte
	delim  string
	closed *model.Node

	inAutolink   bool
	atBlockStart bool

	// Marker widths of the list items that deeper items nest under, one per
	// level. Any block other than a list item clears it.
	listWidths []int
}

func newSerializerState(s *Serializer, opts Options) *SerializerState {
	return &SerializerState{nodes: s.Nodes, marks: s.Marks, opts: opts}
}

func (s *SerializerState) put(str string) {
	if str == "" {
		return
	}
	s.out.WriteString(str)
	s.last = str[len(str)-1]
}

func (s *SerializerState) atBlank() bool {
	return s.out.Len() == 0 || s.last == '\n'
}

// flushClose ends the pending closed block with lines blank lines between
// it and what follows.
func (s *SerializerState) flushClose(lines int) {
	if s.closed == nil {
		return
	}
	s.EnsureNewLine()
	blank := strings.TrimRightFunc(s.delim, unicode.IsSpace) + "\n"
	for i := 1; i < lines; i++ {
		s.put(blank)
	}
	s.closed = nil
}

// EnsureNewLine ends the current line unless it is already empty.
func (s *SerializerState) EnsureNewLine() {
	if !s.atBlank() {
		s.put("\n")
	}
}

// Write closes any pending block and starts the line with the current
// delimiter before writing content unescaped.
func (s *SerializerState) Write(content string) {
	s.flushClose(2)
	if s.delim != "" && s.atBlank() {
		s.put(s.delim)
	}
	s.put(content)
}

// CloseBlock marks node as finished. The separating blank line is written
// lazily, when the next block starts.
func (s *SerializerState) CloseBlock(node *model.Node) {
	s.closed = node
}

// WrapBlock renders a block whose lines are all prefixed by delim. The first
// line gets first instead when it isn't empty.
func (s *SerializerState) WrapBlock(delim, first string, node *model.Node, render func()) {
	saved := s.delim
	if first == "" {
		first = delim
	}
	s.Write(first)
	s.delim += delim
	render()
	s.delim = saved
	s.CloseBlock(node)
}

// Text writes text line by line, escaping Markdown syntax when escape is
// set.
func (s *SerializerState) Text(text string, escape bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		s.Write("")
		switch {
		case escape:
			s.put(s.Esc(line, s.atBlockStart))
		default:
			if strings.HasPrefix(line, "[") && s.endsWithBang() {
				s.escapeBang()
			}
			s.put(line)
		}
		if i < len(lines)-1 {
			s.put("\n")
		}
	}
}

var bangRegexp = regexp.MustCompile(`(^|[^\\])!$`)

// endsWithBang reports an unescaped "!" at the end of the output, which
// would turn a following link into an image.
func (s *SerializerState) endsWithBang() bool {
	return s.last == '!' && bangRegexp.MatchString(s.out.String())
}

func (s *SerializerState) escapeBang() {
	str := s.out.String()
	s.out.Reset()
	s.out.WriteString(str[:len(str)-1])
	s.put(`\!`)
}

// Render writes a single node with the function registered for its type.
func (s *SerializerState) Render(node, parent *model.Node, index int) {
	if node.IsBlock() && !list.IsListItem(node) {
		s.listWidths = nil
	}
	if render, ok := s.nodes[node.Type.Name]; ok {
		render(s, node, parent, index)
	}
}

// RenderContent writes the children of parent as blocks.
func (s *SerializerState) RenderContent(parent *model.Node) {
	parent.ForEach(func(child *model.Node, _, i int) {
		s.Render(child, parent, i)
	})
}

// RenderListItem writes a list item starting with marker, indented by the
// markers of the items it nests under.
func (s *SerializerState) RenderListItem(node *model.Node, marker string) {
	if s.closed != nil && list.IsListItem(s.closed) {
		lines := 2
		if s.opts.TightLists {
			lines = 1
		}
		s.flushClose(lines)
	}
	parents := min(list.Level(node)-1, len(s.listWidths))
	indent := 0
	for _, w := range s.listWidths[:parents] {
		indent += w
	}
	widths := append(s.listWidths[:parents:parents], len(marker))

	s.Write(strings.Repeat(" ", indent) + marker)
	s.RenderInline(node)
	s.CloseBlock(node)
	s.listWidths = widths
}

// RenderInline writes the inline content of parent, opening and closing
// marks as the text runs change.
func (s *SerializerState) RenderInline(parent *model.Node) {
	r := inlineRun{state: s, parent: parent}
	s.atBlockStart = true
	parent.ForEach(func(child *model.Node, _, i int) {
		r.step(child, i)
	})
	r.step(nil, parent.ChildCount())
	s.atBlockStart = false
}

// inlineRun tracks the marks open while the children of a textblock are
// written.
type inlineRun struct {
	state    *SerializerState
	parent   *model.Node
	active   []*model.Mark
	trailing string
}

var edgeSpaceRegexp = regexp.MustCompile(`^(\s*)(.*?)(\s*)$`)

func (r *inlineRun) step(node *model.Node, index int) {
	s := r.state
	var marks []*model.Mark
	if node != nil {
		marks = node.Marks
		if node.Type.Name == "hard_break" {
			marks = r.breakMarks(marks, index)
		}
	}

	leading := r.trailing
	r.trailing = ""
	if node != nil && node.IsText() && r.expels(marks, index) {
		parts := edgeSpaceRegexp.FindStringSubmatch(*node.Text)
		if parts != nil && (parts[1] != "" || parts[3] != "") {
			leading += parts[1]
			r.trailing = parts[3]
			if parts[2] != "" {
				node = node.WithText(parts[2])
			} else {
				node = nil
				marks = r.active
			}
		}
	}

	var inner *model.Mark
	noEscape := false
	if len(marks) > 0 {
		inner = marks[len(marks)-1]
		noEscape = s.marks[inner.Type.Name].NoEscape
	}
	wanted := len(marks)
	if noEscape {
		wanted--
	}
	marks = r.reorder(marks)

	keep := 0
	for keep < min(len(marks), len(r.active)) && marks[keep].Eq(r.active[keep]) {
		keep++
	}
	for len(r.active) > keep {
		top := r.active[len(r.active)-1]
		s.Text(s.markSyntax(top, false, r.parent, index), false)
		r.active = r.active[:len(r.active)-1]
	}
	if leading != "" {
		s.Text(leading, true)
	}
	if node == nil {
		return
	}
	for len(r.active) < wanted {
		add := marks[len(r.active)]
		r.active = append(r.active, add)
		s.Text(s.markSyntax(add, true, r.parent, index), false)
	}
	if noEscape && node.IsText() {
		s.Text(s.markSyntax(inner, true, r.parent, index)+*node.Text+
			s.markSyntax(inner, false, r.parent, index+1), false)
		return
	}
	s.Render(node, r.parent, index)
}

// breakMarks drops the marks a hard break would be the last node of, so no
// mark closes right after a newline.
func (r *inlineRun) breakMarks(marks []*model.Mark, index int) []*model.Mark {
	next := r.parent.MaybeChild(index + 1)
	if next == nil {
		return nil
	}
	var kept []*model.Mark
	for _, m := range marks {
		if !m.IsInSet(next.Marks) {
			continue
		}
		if !next.IsText() || strings.TrimSpace(*next.Text) != "" {
			kept = append(kept, m)
		}
	}
	return kept
}

// expels tells whether a mark starting or ending at the text node at index
// needs its enclosing whitespace moved out.
func (r *inlineRun) expels(marks []*model.Mark, index int) bool {
	for _, mark := range marks {
		if !r.state.marks[mark.Type.Name].ExpelEnclosingWhitespace || mark.IsInSet(r.active) {
			continue
		}
		next := r.parent.MaybeChild(index + 1)
		if next == nil || !mark.IsInSet(next.Marks) {
			return true
		}
	}
	return false
}

// reorder moves a mixable mark that is already open to the position it has
// among the active marks, so that it doesn't need to be closed and opened
// again.
func (r *inlineRun) reorder(marks []*model.Mark) []*model.Mark {
	mixable := func(m *model.Mark) bool { return r.state.marks[m.Type.Name].Mixable }
	for i, mark := range marks {
		if !mixable(mark) {
			break
		}
		for j, other := range r.active {
			if !mixable(other) {
				break
			}
			if !mark.Eq(other) {
				continue
			}
			moved := make([]*model.Mark, 0, len(marks))
			if i > j {
				moved = append(moved, marks[:j]...)
				moved = append(moved, mark)
				moved = append(moved, marks[j:i]...)
				moved = append(moved, marks[i+1:]...)
			} else {
				moved = append(moved, marks[:i]...)
				if i != j {
					moved = append(moved, marks[i+1:j]...)
				}
				moved = append(moved, mark)
				moved = append(moved, marks[j:]...)
			}
			marks = moved
			break
		}
	}
	return marks
}

func (s *SerializerState) markSyntax(mark *model.Mark, open bool, parent *model.Node, index int) string {
	spec := s.marks[mark.Type.Name]
	fn := spec.Close
	if open {
		fn = spec.Open
	}
	if fn == nil {
		return ""
	}
	return fn(s, mark, parent, index)
}

var (
	inlineSyntax    = regexp.MustCompile("([`*\\\\~\\[\\]])")
	underscoreEdges = regexp.MustCompile(`(\b_)|(_\b)`)
	blockSyntax     = regexp.MustCompile(`^([#\-*+>])`)
	orderedMarker   = regexp.MustCompile(`(\s*\d+)\.`)
)

// Esc escapes Markdown syntax in str. With startOfLine it also escapes what
// would start a heading, quote or list.
func (s *SerializerState) Esc(str string, startOfLine bool) string {
	str = inlineSyntax.ReplaceAllString(str, `\$1`)
	str = underscoreEdges.ReplaceAllString(str, `\_`)
	if startOfLine {
		str = blockSyntax.ReplaceAllString(str, `\$1`)
		str = orderedMarker.ReplaceAllString(str, `$1\.`)
	}
	return str
}
