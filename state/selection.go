package state

import (
	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/transform"
)

// Selection is a text selection between two document positions. The anchor
// is the side that stays put, the head is the side that moves.
type Selection struct {
	Anchor int
	Head   int
}

// Cursor returns an empty selection at pos.
func Cursor(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// AtStart returns a cursor at the first position of the document where text
// can be typed, or 0 when there is none.
func AtStart(doc *model.Node) Selection {
	pos := 0
	found := false
	doc.Descendants(func(node *model.Node, p int, _ *model.Node, _ int) bool {
		if found {
			return false
		}
		if node.InlineContent() {
			pos = p + 1
			found = true
			return false
		}
		return true
	})
	return Cursor(pos)
}

// From returns the lower bound of the selection.
func (s Selection) From() int {
	if s.Anchor < s.Head {
		return s.Anchor
	}
	return s.Head
}

// To returns the upper bound of the selection.
func (s Selection) To() int {
	if s.Anchor > s.Head {
		return s.Anchor
	}
	return s.Head
}

// Empty is true when the selection is a cursor.
func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

// Map maps the selection through a mapping.
func (s Selection) Map(mapping transform.Mappable) Selection {
	return Selection{Anchor: mapping.Map(s.Anchor), Head: mapping.Map(s.Head)}
}

// clamp keeps the selection inside the document.
func (s Selection) clamp(doc *model.Node) Selection {
	limit := doc.Content.Size
	c := func(pos int) int {
		if pos < 0 {
			return 0
		}
		if pos > limit {
			return limit
		}
		return pos
	}
	return Selection{Anchor: c(s.Anchor), Head: c(s.Head)}
}
