package transform_test

import (
	"testing"

	. "github.com/shodgson/prosemirror-numbering/transform"
	"github.com/stretchr/testify/assert"
)

func TestStepMapMap(t *testing.T) {
	// an insertion of 4 at 2, then a deletion of 3 at 10
	sm := NewStepMap([]int{2, 0, 4, 10, 3, 0})

	// positions before the change stay
	assert.Equal(t, 1, sm.Map(1))
	// positions at an insertion move with assoc
	assert.Equal(t, 6, sm.Map(2))
	assert.Equal(t, 2, sm.Map(2, -1))
	// positions after an insertion shift
	assert.Equal(t, 9, sm.Map(5))
	// positions in a deletion collapse
	assert.Equal(t, 14, sm.Map(11))
	assert.Equal(t, 14, sm.Map(13))
	// positions after a deletion shift back
	assert.Equal(t, 16, sm.Map(15))
}

func TestStepMapMapResult(t *testing.T) {
	sm := NewStepMap([]int{2, 4, 0})

	assert.True(t, sm.MapResult(3).Deleted)
	// a position on the edge of a deletion is deleted when assoc points into it
	assert.True(t, sm.MapResult(2).Deleted)
	assert.False(t, sm.MapResult(2, -1).Deleted)
	assert.True(t, sm.MapResult(6, -1).Deleted)
	assert.False(t, sm.MapResult(6).Deleted)
	assert.Equal(t, 2, sm.MapResult(6).Pos)
	assert.Equal(t, 4, sm.MapResult(8).Pos)
}

func TestStepMapInvert(t *testing.T) {
	sm := NewStepMap([]int{2, 0, 4})
	inv := sm.Invert()
	for _, pos := range []int{0, 1, 2, 8, 20} {
		assert.Equal(t, pos, inv.Map(sm.Map(pos, -1), -1), "pos %d", pos)
	}
	assert.Equal(t, "-[2 0 4]", inv.String())
}

func TestMapping(t *testing.T) {
	m := NewMapping(NewStepMap([]int{2, 0, 2}), NewStepMap([]int{4, 2, 0}))

	// goes through every map
	assert.Equal(t, 4, m.Map(3))
	assert.Equal(t, 7, m.Map(7))
	assert.True(t, m.MapResult(3).Deleted)

	// can be sliced
	assert.Equal(t, 5, m.Slice(0, 1).Map(3))
	assert.Equal(t, 4, m.Slice(1).Map(5))

	// can be extended
	m.AppendMapping(NewMapping(NewStepMap([]int{0, 0, 10})))
	assert.Len(t, m.Maps, 3)
	assert.Equal(t, 17, m.Map(7))
}
