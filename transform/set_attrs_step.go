package transform

import (
	"maps"

	"github.com/shodgson/prosemirror-numbering/model"
)

// SetAttrsStep merges Attrs into the attributes of the node at Pos. It
// leaves the content and marks of the node alone and moves no positions,
// which is what the list indexing relies on to renumber items without
// disturbing the selection.
type SetAttrsStep struct {
	Pos   int
	Attrs map[string]interface{}
}

// NewSetAttrsStep creates a step setting attrs on the node at pos.
func NewSetAttrsStep(pos int, attrs map[string]interface{}) *SetAttrsStep {
	return &SetAttrsStep{Pos: pos, Attrs: attrs}
}

// mergeAttrs returns the attributes of base overridden by those of over.
func mergeAttrs(base, over map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(over))
	maps.Copy(merged, base)
	maps.Copy(merged, over)
	return merged
}

func (s *SetAttrsStep) Apply(doc *model.Node) StepResult {
	node := doc.NodeAt(s.Pos)
	if node == nil || node.IsText() {
		return Fail("No node at given position")
	}
	updated, err := node.Type.Create(mergeAttrs(node.Attrs, s.Attrs), node.Content, node.Marks)
	if err != nil {
		return Fail(err.Error())
	}
	return FromReplace(doc, s.Pos, s.Pos+node.NodeSize(), model.NewSlice(model.FragmentFrom(updated), 0, 0))
}

func (s *SetAttrsStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert restores the previous values of the attributes this step sets.
func (s *SetAttrsStep) Invert(doc *model.Node) Step {
	previous := make(map[string]interface{}, len(s.Attrs))
	node := doc.NodeAt(s.Pos)
	for key := range s.Attrs {
		if node != nil {
			previous[key] = node.Attrs[key]
		} else {
			previous[key] = nil
		}
	}
	return NewSetAttrsStep(s.Pos, previous)
}

func (s *SetAttrsStep) Map(mapping Mappable) Step {
	mapped := mapping.MapResult(s.Pos, 1)
	if mapped.Deleted {
		return nil
	}
	return NewSetAttrsStep(mapped.Pos, s.Attrs)
}

// Merge folds a later update of the same node into this one.
func (s *SetAttrsStep) Merge(other Step) (Step, bool) {
	if next, ok := other.(*SetAttrsStep); ok && next.Pos == s.Pos {
		return NewSetAttrsStep(s.Pos, mergeAttrs(s.Attrs, next.Attrs)), true
	}
	return nil, false
}

var _ Step = (*SetAttrsStep)(nil)
