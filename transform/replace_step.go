package transform

import "github.com/shodgson/prosemirror-numbering/model"

// ReplaceStep replaces the range From..To of the document with a slice.
//
// With Structure set, the step only applies when the range holds nothing
// but closing and opening tokens, so that a rebased step can't overwrite
// content it didn't know about.
type ReplaceStep struct {
	From      int
	To        int
	Slice     *model.Slice
	Structure bool
}

// NewReplaceStep creates a replace step. The slice must fit the range: the
// depths have to line up and the open sides of the slice must join the
// nodes around the range.
func NewReplaceStep(from, to int, slice *model.Slice, structure ...bool) *ReplaceStep {
	return &ReplaceStep{From: from, To: to, Slice: slice, Structure: len(structure) > 0 && structure[0]}
}

func (s *ReplaceStep) Apply(doc *model.Node) StepResult {
	if s.Structure && hasContentBetween(doc, s.From, s.To) {
		return Fail("Structure replace would overwrite content")
	}
	return FromReplace(doc, s.From, s.To, s.Slice)
}

func (s *ReplaceStep) GetMap() *StepMap {
	return NewStepMap([]int{s.From, s.To - s.From, s.Slice.Size()})
}

// Invert returns nil when the range can't be sliced out of doc.
func (s *ReplaceStep) Invert(doc *model.Node) Step {
	removed, err := doc.Slice(s.From, s.To)
	if err != nil {
		return nil
	}
	return NewReplaceStep(s.From, s.From+s.Slice.Size(), removed)
}

func (s *ReplaceStep) Map(mapping Mappable) Step {
	from := mapping.MapResult(s.From, 1)
	to := mapping.MapResult(s.To, -1)
	if from.Deleted && to.Deleted {
		return nil
	}
	return NewReplaceStep(from.Pos, max(from.Pos, to.Pos), s.Slice)
}

// Merge joins two adjacent replacements of closed content, such as
// consecutive typing or deletions.
func (s *ReplaceStep) Merge(other Step) (Step, bool) {
	next, ok := other.(*ReplaceStep)
	if !ok || next.Structure || s.Structure {
		return nil, false
	}
	switch {
	case s.From+s.Slice.Size() == next.From && s.Slice.OpenStart == 0 && next.Slice.OpenEnd == 0:
		return NewReplaceStep(s.From, s.To+next.To-next.From, concatSlices(s.Slice, next.Slice)), true
	case next.To == s.From && next.Slice.OpenStart == 0 && s.Slice.OpenEnd == 0:
		return NewReplaceStep(next.From, s.To, concatSlices(next.Slice, s.Slice)), true
	}
	return nil, false
}

// concatSlices puts the content of b after that of a.
func concatSlices(a, b *model.Slice) *model.Slice {
	if a.Size()+b.Size() == 0 {
		return model.EmptySlice
	}
	return model.NewSlice(a.Content.Append(b.Content), a.OpenStart, b.OpenEnd)
}

// ReplaceAroundStep replaces From..To with a slice, but keeps the content
// of GapFrom..GapTo, moving it into the slice at Insert. It changes the
// markup around content without touching the content itself, as when a
// paragraph becomes a numbered list item.
type ReplaceAroundStep struct {
	From      int
	To        int
	GapFrom   int
	GapTo     int
	Slice     *model.Slice
	Insert    int
	Structure bool
}

// NewReplaceAroundStep creates a replace-around step. structure has the
// same meaning as for ReplaceStep.
func NewReplaceAroundStep(from, to, gapFrom, gapTo int, slice *model.Slice, insert int, structure bool) *ReplaceAroundStep {
	return &ReplaceAroundStep{
		From:      from,
		To:        to,
		GapFrom:   gapFrom,
		GapTo:     gapTo,
		Slice:     slice,
		Insert:    insert,
		Structure: structure,
	}
}

func (s *ReplaceAroundStep) Apply(doc *model.Node) StepResult {
	if s.Structure && (hasContentBetween(doc, s.From, s.GapFrom) || hasContentBetween(doc, s.GapTo, s.To)) {
		return Fail("Structure gap-replace would overwrite content")
	}
	gap, err := doc.Slice(s.GapFrom, s.GapTo)
	if err != nil {
		return Fail(err.Error())
	}
	if gap.OpenStart != 0 || gap.OpenEnd != 0 {
		return Fail("Gap is not a flat range")
	}
	filled := s.Slice.InsertAt(s.Insert, gap.Content)
	if filled == nil {
		return Fail("Content does not fit in gap")
	}
	return FromReplace(doc, s.From, s.To, filled)
}

func (s *ReplaceAroundStep) GetMap() *StepMap {
	return NewStepMap([]int{
		s.From, s.GapFrom - s.From, s.Insert,
		s.GapTo, s.To - s.GapTo, s.Slice.Size() - s.Insert,
	})
}

func (s *ReplaceAroundStep) Invert(doc *model.Node) Step {
	old, err := doc.Slice(s.From, s.To)
	if err != nil {
		return nil
	}
	around, err := old.RemoveBetween(s.GapFrom-s.From, s.GapTo-s.From)
	if err != nil {
		return nil
	}
	gap := s.GapTo - s.GapFrom
	return NewReplaceAroundStep(
		s.From, s.From+s.Slice.Size()+gap,
		s.From+s.Insert, s.From+s.Insert+gap,
		around, s.GapFrom-s.From, s.Structure)
}

func (s *ReplaceAroundStep) Map(mapping Mappable) Step {
	from := mapping.MapResult(s.From, 1)
	to := mapping.MapResult(s.To, -1)
	gapFrom := mapping.Map(s.GapFrom, -1)
	gapTo := mapping.Map(s.GapTo, 1)
	if (from.Deleted && to.Deleted) || gapFrom < from.Pos || gapTo > to.Pos {
		return nil
	}
	return NewReplaceAroundStep(from.Pos, to.Pos, gapFrom, gapTo, s.Slice, s.Insert, s.Structure)
}

func (s *ReplaceAroundStep) Merge(Step) (Step, bool) {
	return nil, false
}

var (
	_ Step = (*ReplaceStep)(nil)
	_ Step = (*ReplaceAroundStep)(nil)
)

// hasContentBetween tells whether from..to holds more than the end tokens
// of the nodes around from followed by the start tokens of the nodes after
// them.
func hasContentBetween(doc *model.Node, from, to int) bool {
	rfrom, err := doc.Resolve(from)
	if err != nil {
		return true
	}
	dist := to - from
	depth := rfrom.Depth
	// Closing tokens.
	for ; dist > 0 && depth > 0 && rfrom.IndexAfter(depth) == rfrom.Node(depth).ChildCount(); depth-- {
		dist--
	}
	// Opening tokens.
	next := rfrom.Node(depth).MaybeChild(rfrom.IndexAfter(depth))
	for ; dist > 0; dist-- {
		if next == nil || next.IsLeaf() {
			return true
		}
		next = next.FirstChild()
	}
	return false
}
