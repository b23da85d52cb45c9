package indexing

import (
	"log/slog"

	"github.com/shodgson/prosemirror-numbering/state"
)

// PluginKey identifies the indexing plugin.
const PluginKey = "numberedListIndexing"

// Plugin returns a state plugin that renumbers the numbered list items after
// every transaction changing the document. The renumbering is appended to
// the transactions, so the state returned by EditorState.Apply is always
// numbered.
func Plugin() *state.Plugin {
	return &state.Plugin{
		Key:               PluginKey,
		AppendTransaction: appendTransaction,
	}
}

func appendTransaction(trs []*state.Transaction, oldState, newState *state.EditorState) *state.Transaction {
	changed := false
	for _, tr := range trs {
		if tr.DocChanged() {
			changed = true
			break
		}
	}
	if !changed || oldState.Doc.Content.FindDiffStart(newState.Doc.Content) == nil {
		return nil
	}
	updates := Recompute(newState.Doc)
	if len(updates) == 0 {
		return nil
	}
	tr := newState.Tr()
	if err := Apply(tr.Transform, updates); err != nil {
		slog.Warn("renumbering failed", "error", err)
		return nil
	}
	slog.Debug("renumbered list items", "updates", len(updates))
	return tr
}
