package model

import (
	"cmp"
	"slices"
)

// Mark is extra information attached to inline content, such as emphasis
// or a link target. Marks are created through a Schema.
type Mark struct {
	Type  *MarkType
	Attrs map[string]interface{}
}

// NoMarks is the empty mark set.
var NoMarks = []*Mark{}

// AddToSet returns a mark set with m added at the position its rank gives
// it. Marks excluded by m are dropped. The set is returned unchanged when
// it holds m already or a mark excluding it.
func (m *Mark) AddToSet(set []*Mark) []*Mark {
	out := make([]*Mark, 0, len(set)+1)
	placed := false
	for _, other := range set {
		switch {
		case m.Eq(other):
			return set
		case m.Type.Excludes(other.Type):
			continue
		case other.Type.Excludes(m.Type):
			return set
		}
		if !placed && other.Type.Rank > m.Type.Rank {
			out = append(out, m)
			placed = true
		}
		out = append(out, other)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// RemoveFromSet returns set without m.
func (m *Mark) RemoveFromSet(set []*Mark) []*Mark {
	i := slices.IndexFunc(set, m.Eq)
	if i < 0 {
		return set
	}
	return slices.Delete(slices.Clone(set), i, i+1)
}

// IsInSet tells whether set holds a mark equal to m.
func (m *Mark) IsInSet(set []*Mark) bool {
	return slices.ContainsFunc(set, m.Eq)
}

// Eq compares type and attributes.
func (m *Mark) Eq(other *Mark) bool {
	return m == other || (m.Type == other.Type && attrsEqual(m.Attrs, other.Attrs))
}

// SameMarkSet tells whether two mark sets hold equal marks in the same
// order.
func SameMarkSet(a, b []*Mark) bool {
	return slices.EqualFunc(a, b, (*Mark).Eq)
}

// MarkSetFrom sorts marks by rank into a mark set.
func MarkSetFrom(marks []*Mark) []*Mark {
	switch len(marks) {
	case 0:
		return NoMarks
	case 1:
		return marks
	}
	set := slices.Clone(marks)
	slices.SortStableFunc(set, func(a, b *Mark) int {
		return cmp.Compare(a.Type.Rank, b.Type.Rank)
	})
	return set
}
