package transform

import "fmt"

// Mappable is implemented by things positions can be mapped through: single
// step maps and whole mappings.
type Mappable interface {
	// Map moves pos through the changes. assoc, -1 or 1 (the default),
	// tells which side of content inserted at pos it sticks to.
	Map(pos int, assoc ...int) int
	// MapResult is like Map, but also reports whether the content around
	// pos was deleted. With content deleted on one side only, pos counts as
	// deleted when assoc points to that side.
	MapResult(pos int, assoc ...int) *MapResult
}

// MapResult is a mapped position.
type MapResult struct {
	Pos     int
	Deleted bool
}

func assocOf(assoc []int) int {
	if len(assoc) > 0 {
		return assoc[0]
	}
	return 1
}

// StepMap describes the ranges a step replaced as flat triples of start,
// old size and new size.
type StepMap struct {
	Ranges   []int
	Inverted bool
}

// EmptyStepMap is the map of a step that doesn't move any position.
var EmptyStepMap = NewStepMap(nil)

// NewStepMap creates a map from [start, oldSize, newSize] triples.
func NewStepMap(ranges []int, inverted ...bool) *StepMap {
	return &StepMap{Ranges: ranges, Inverted: len(inverted) > 0 && inverted[0]}
}

// sizes returns the sizes of the range at i in the mapped direction.
func (sm *StepMap) sizes(i int) (oldSize, newSize int) {
	if sm.Inverted {
		return sm.Ranges[i+2], sm.Ranges[i+1]
	}
	return sm.Ranges[i+1], sm.Ranges[i+2]
}

func (sm *StepMap) MapResult(pos int, assoc ...int) *MapResult {
	r := sm.mapPos(pos, assocOf(assoc))
	return &r
}

func (sm *StepMap) Map(pos int, assoc ...int) int {
	return sm.mapPos(pos, assocOf(assoc)).Pos
}

func (sm *StepMap) mapPos(pos, assoc int) MapResult {
	shift := 0
	for i := 0; i+2 < len(sm.Ranges); i += 3 {
		start := sm.Ranges[i]
		if sm.Inverted {
			start -= shift
		}
		if start > pos {
			break
		}
		oldSize, newSize := sm.sizes(i)
		end := start + oldSize
		if pos > end {
			shift += newSize - oldSize
			continue
		}
		side := assoc
		if oldSize > 0 && pos == start {
			side = 1
		} else if oldSize > 0 && pos == end {
			side = -1
		}
		mapped := start + shift
		if side >= 0 {
			mapped += newSize
		}
		edge := end
		if assoc < 0 {
			edge = start
		}
		return MapResult{Pos: mapped, Deleted: pos != edge}
	}
	return MapResult{Pos: pos + shift}
}

// Invert returns the map from the changed document back to the original.
func (sm *StepMap) Invert() *StepMap {
	return NewStepMap(sm.Ranges, !sm.Inverted)
}

func (sm *StepMap) String() string {
	if sm.Inverted {
		return fmt.Sprintf("-%v", sm.Ranges)
	}
	return fmt.Sprint(sm.Ranges)
}

// Mapping chains step maps, applied in order.
type Mapping struct {
	Maps []*StepMap
}

// NewMapping creates a mapping through maps.
func NewMapping(maps ...*StepMap) *Mapping {
	return &Mapping{Maps: maps}
}

// AppendMap adds a map at the end.
func (m *Mapping) AppendMap(sm *StepMap) {
	m.Maps = append(m.Maps, sm)
}

// AppendMapping adds the maps of other at the end.
func (m *Mapping) AppendMapping(other *Mapping) {
	m.Maps = append(m.Maps, other.Maps...)
}

// Slice returns a mapping through the maps from index from up to to, or to
// the end.
func (m *Mapping) Slice(from int, to ...int) *Mapping {
	end := len(m.Maps)
	if len(to) > 0 {
		end = to[0]
	}
	return NewMapping(m.Maps[from:end]...)
}

func (m *Mapping) Map(pos int, assoc ...int) int {
	for _, sm := range m.Maps {
		pos = sm.Map(pos, assoc...)
	}
	return pos
}

func (m *Mapping) MapResult(pos int, assoc ...int) *MapResult {
	a := assocOf(assoc)
	result := MapResult{Pos: pos}
	for _, sm := range m.Maps {
		r := sm.mapPos(result.Pos, a)
		result.Pos = r.Pos
		result.Deleted = result.Deleted || r.Deleted
	}
	return &result
}

var (
	_ Mappable = (*StepMap)(nil)
	_ Mappable = (*Mapping)(nil)
)
