package state

import "github.com/shodgson/prosemirror-numbering/transform"

// MetaAppendedTransaction is the metadata key set on transactions appended
// by plugins, holding the root transaction.
const MetaAppendedTransaction = "appendedTransaction"

// Transaction is an editor state transaction, which can be applied to a
// state to create an updated state. It is a transform, tracking the
// selection alongside the document changes, with room for metadata.
type Transaction struct {
	*transform.Transform

	selection    Selection
	selectionSet bool
	meta         map[string]interface{}
}

func newTransaction(state *EditorState) *Transaction {
	return &Transaction{
		Transform: transform.NewTransform(state.Doc),
		selection: state.Selection,
		meta:      map[string]interface{}{},
	}
}

// Selection returns the transaction's current selection. This defaults to
// the editor selection mapped through the steps in the transaction.
func (tr *Transaction) Selection() Selection {
	if tr.selectionSet {
		return tr.selection
	}
	return tr.selection.Map(tr.Mapping)
}

// SetSelection updates the transaction's current selection.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	tr.selection = sel
	tr.selectionSet = true
	return tr
}

// SelectionSet is true when the selection was explicitly set.
func (tr *Transaction) SelectionSet() bool {
	return tr.selectionSet
}

// ReplaceSelectionWith replaces the selection with the given text, leaving
// the cursor after it.
func (tr *Transaction) ReplaceSelectionWith(text string) error {
	sel := tr.Selection()
	return tr.InsertText(text, sel.From(), sel.To())
}

// SetMeta stores a metadata property in this transaction.
func (tr *Transaction) SetMeta(key string, value interface{}) *Transaction {
	tr.meta[key] = value
	return tr
}

// GetMeta retrieves a metadata property for a given key.
func (tr *Transaction) GetMeta(key string) interface{} {
	return tr.meta[key]
}
