package transform

import (
	"fmt"

	"github.com/shodgson/prosemirror-numbering/model"
)

// TransformError is returned when a step can't be applied to the current
// document of a transform.
type TransformError struct {
	Message string
}

func (e *TransformError) Error() string {
	return e.Message
}

// Transform is an abstraction for building up and tracking an array of
// steps representing a document transformation.
//
// Since documents are persistent, a failing step leaves the transform (and
// every document it has produced so far) untouched.
type Transform struct {
	// The current document (the result of applying the steps in the
	// transform).
	Doc *model.Node
	// The steps in this transform.
	Steps []Step
	// The documents before each of the steps.
	Docs []*model.Node
	// A mapping with the maps for each of the steps in this transform.
	Mapping *Mapping
}

// NewTransform creates a transform that starts with the given document.
func NewTransform(doc *model.Node) *Transform {
	return &Transform{Doc: doc, Mapping: NewMapping()}
}

// Before returns the starting document.
func (t *Transform) Before() *model.Node {
	if len(t.Docs) > 0 {
		return t.Docs[0]
	}
	return t.Doc
}

// Step applies a new step in this transform, saving the result. Returns an
// error when the step fails.
func (t *Transform) Step(step Step) error {
	return t.MaybeStep(step).Err()
}

// MaybeStep tries to apply a step in this transformation, ignoring it if it
// fails. Returns the step result.
func (t *Transform) MaybeStep(step Step) StepResult {
	result := step.Apply(t.Doc)
	if result.Failed == "" {
		t.AddStep(step, result.Doc)
	}
	return result
}

// DocChanged is true when the document has been changed (when there are any
// steps).
func (t *Transform) DocChanged() bool {
	return len(t.Steps) > 0
}

// AddStep records a step that was already applied, producing doc.
func (t *Transform) AddStep(step Step, doc *model.Node) {
	t.Docs = append(t.Docs, t.Doc)
	t.Steps = append(t.Steps, step)
	t.Mapping.AppendMap(step.GetMap())
	t.Doc = doc
}

// Replace replaces the part of the document between from and to with the
// given slice.
func (t *Transform) Replace(from, to int, slice ...*model.Slice) error {
	s := model.EmptySlice
	if len(slice) > 0 && slice[0] != nil {
		s = slice[0]
	}
	if from == to && s.Size() == 0 {
		return nil
	}
	return t.Step(NewReplaceStep(from, to, s))
}

// ReplaceWith replaces the given range with the given content.
func (t *Transform) ReplaceWith(from, to int, content *model.Fragment) error {
	return t.Replace(from, to, model.NewSlice(content, 0, 0))
}

// Delete deletes the content between the given positions.
func (t *Transform) Delete(from, to int) error {
	return t.Replace(from, to, model.EmptySlice)
}

// Insert inserts the given content at the given position.
func (t *Transform) Insert(pos int, content *model.Fragment) error {
	return t.ReplaceWith(pos, pos, content)
}

// InsertText inserts text at pos with the marks found at that position.
// When to is given, the range between pos and to is replaced.
func (t *Transform) InsertText(text string, from int, to ...int) error {
	end := from
	if len(to) > 0 {
		end = to[0]
	}
	if text == "" {
		return t.Delete(from, end)
	}
	rfrom, err := t.Doc.Resolve(from)
	if err != nil {
		return err
	}
	node := t.Doc.Type.Schema.Text(text, rfrom.Marks()...)
	return t.ReplaceWith(from, end, model.FragmentFrom(node))
}

// SetNodeMarkup changes the type and attributes of the node directly after
// pos, keeping its content. When typ is nil, the node's existing type is
// preserved.
func (t *Transform) SetNodeMarkup(pos int, typ *model.NodeType, attrs map[string]interface{}, marks ...[]*model.Mark) error {
	node := t.Doc.NodeAt(pos)
	if node == nil || node.IsText() {
		return &TransformError{Message: fmt.Sprintf("No node at given position %d", pos)}
	}
	if typ == nil {
		typ = node.Type
	}
	m := node.Marks
	if len(marks) > 0 && marks[0] != nil {
		m = marks[0]
	}
	newNode := typ.CreateUnchecked(attrs, nil, m)
	if node.IsLeaf() {
		return t.ReplaceWith(pos, pos+node.NodeSize(), model.FragmentFrom(newNode))
	}
	if !typ.ValidContent(node.Content) {
		return &TransformError{Message: fmt.Sprintf("Invalid content for node type %s", typ.Name)}
	}
	return t.Step(NewReplaceAroundStep(pos, pos+node.NodeSize(), pos+1, pos+node.NodeSize()-1,
		model.NewSlice(model.FragmentFrom(newNode), 0, 0), 1, true))
}

// SetNodeAttrs merges the given attributes into those of the node at pos.
func (t *Transform) SetNodeAttrs(pos int, attrs map[string]interface{}) error {
	return t.Step(NewSetAttrsStep(pos, attrs))
}
