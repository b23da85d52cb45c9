// Package transform records document changes as steps. Steps can be
// applied, inverted and mapped through the changes of other steps, which
// lets the list item indexing run as a separate, composable edit.
package transform

import "github.com/shodgson/prosemirror-numbering/model"

// Step is an atomic change to a document. Its positions only make sense in
// the document it was created for.
type Step interface {
	// Apply returns the changed document, or a failed result when the step
	// doesn't fit doc.
	Apply(doc *model.Node) StepResult
	// GetMap describes how the step moves positions.
	GetMap() *StepMap
	// Invert returns the step undoing this one. doc is the document before
	// the step.
	Invert(doc *model.Node) Step
	// Map returns the step with its positions moved through mapping, or nil
	// when the content it applies to was deleted.
	Map(mapping Mappable) Step
	// Merge combines this step with other, applied right after it.
	Merge(other Step) (Step, bool)
}

// StepResult holds either the document produced by a step or the reason it
// failed.
type StepResult struct {
	Doc    *model.Node
	Failed string
}

// OK is a successful result.
func OK(doc *model.Node) StepResult {
	return StepResult{Doc: doc}
}

// Fail is a failed result.
func Fail(message string) StepResult {
	return StepResult{Failed: message}
}

// Err returns the failure as a *TransformError, or nil.
func (r StepResult) Err() error {
	if r.Failed == "" {
		return nil
	}
	return &TransformError{Message: r.Failed}
}

// FromReplace applies Node.Replace, turning its error into a failed result.
func FromReplace(doc *model.Node, from, to int, slice *model.Slice) StepResult {
	replaced, err := doc.Replace(from, to, slice)
	if err != nil {
		return Fail(err.Error())
	}
	return OK(replaced)
}
