package model

import "fmt"

// Slice is a piece cut out of a larger document. Besides its content, it
// records how many nodes are open (cut through) on each side.
type Slice struct {
	Content *Fragment
	// Depth of the open nodes at the start of the content.
	OpenStart int
	// Depth of the open nodes at the end of the content.
	OpenEnd int
}

// NewSlice creates a slice. With a non-zero open depth, the fragment must
// hold nodes at least that deep on that side. Open nodes don't have to
// satisfy the content expression of their type, as long as their content is
// a valid start, end or middle for it.
func NewSlice(content *Fragment, openStart, openEnd int) *Slice {
	return &Slice{Content: content, OpenStart: openStart, OpenEnd: openEnd}
}

// EmptySlice is the slice with no content.
var EmptySlice = NewSlice(EmptyFragment, 0, 0)

var errNonFlatRange = &ReplaceError{Message: "Removing non-flat range"}

// Size is the size the slice adds when inserted into a document.
func (s *Slice) Size() int {
	return s.Content.Size - s.OpenStart - s.OpenEnd
}

// InsertAt returns a copy of the slice with fragment inserted at pos, or nil
// when pos can't be resolved in the slice.
func (s *Slice) InsertAt(pos int, fragment *Fragment) *Slice {
	content, err := insertFragment(s.Content, pos+s.OpenStart, fragment)
	if err != nil {
		return nil
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd)
}

// RemoveBetween returns a copy of the slice without the content between
// from and to, which must lie in the same parent.
func (s *Slice) RemoveBetween(from, to int) (*Slice, error) {
	content, err := removeFlat(s.Content, from+s.OpenStart, to+s.OpenStart)
	if err != nil {
		return nil, err
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd), nil
}

// Eq tells whether both slices have the same content and open depths.
func (s *Slice) Eq(other *Slice) bool {
	return s.OpenStart == other.OpenStart && s.OpenEnd == other.OpenEnd && s.Content.Eq(other.Content)
}

func (s *Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Content, s.OpenStart, s.OpenEnd)
}

// insertFragment inserts insert at pos, descending into the child that
// contains pos when it doesn't fall between two children.
func insertFragment(content *Fragment, pos int, insert *Fragment) (*Fragment, error) {
	index, offset, err := content.findIndex(pos)
	if err != nil {
		return nil, err
	}
	child := content.MaybeChild(index)
	if offset == pos || child == nil || child.IsText() {
		return content.Cut(0, pos).Append(insert).Append(content.Cut(pos)), nil
	}
	inner, err := insertFragment(child.Content, pos-offset-1, insert)
	if err != nil {
		return nil, err
	}
	return content.ReplaceChild(index, child.Copy(inner)), nil
}

// removeFlat removes the content between from and to, which must both be
// positions in the same node.
func removeFlat(content *Fragment, from, to int) (*Fragment, error) {
	index, offset, err := content.findIndex(from)
	if err != nil {
		return nil, err
	}
	indexTo, offsetTo, err := content.findIndex(to)
	if err != nil {
		return nil, err
	}
	child := content.MaybeChild(index)
	if offset == from || child == nil || child.IsText() {
		if offsetTo != to {
			if last := content.MaybeChild(indexTo); last == nil || !last.IsText() {
				return nil, errNonFlatRange
			}
		}
		return content.Cut(0, from).Append(content.Cut(to)), nil
	}
	if index != indexTo {
		return nil, errNonFlatRange
	}
	inner, err := removeFlat(child.Content, from-offset-1, to-offset-1)
	if err != nil {
		return nil, err
	}
	return content.ReplaceChild(index, child.Copy(inner)), nil
}
