// Package state implements the editor state: a document, a selection and
// the plugins that observe and extend every transaction applied to them.
package state

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shodgson/prosemirror-numbering/model"
)

// Plugin bundles functionality that can be added to an editor state.
type Plugin struct {
	// Key identifies the plugin in logs.
	Key string
	// AppendTransaction allows the plugin to append another transaction to
	// be applied after the given array of transactions. When another plugin
	// appends a transaction after this was called, it is called again with
	// the new state and new transactions, but only the transactions it
	// hasn't seen before.
	AppendTransaction func(trs []*Transaction, oldState, newState *EditorState) *Transaction
	// HandleTextInput is called when text is typed over the range from..to.
	// Returning a transaction claims the input, and the transaction is
	// applied instead of the default insertion.
	HandleTextInput func(state *EditorState, from, to int, text string) *Transaction
}

// Config is used to create a new editor state.
type Config struct {
	// The schema to use. Only needed when Doc is nil.
	Schema *model.Schema
	// The starting document.
	Doc *model.Node
	// A valid selection in the document. Defaults to the start of the
	// document.
	Selection *Selection
	// The plugins that should be active in this state.
	Plugins []*Plugin
}

// EditorState is the state of an editor. It is persistent: applying a
// transaction returns a new state.
type EditorState struct {
	// The current document.
	Doc *model.Node
	// The selection.
	Selection Selection
	// The plugins that are active in this state.
	Plugins []*Plugin
}

// Create a new state.
func Create(config Config) (*EditorState, error) {
	doc := config.Doc
	if doc == nil {
		if config.Schema == nil {
			return nil, errors.New("Required config field 'schema' missing")
		}
		var err error
		doc, err = config.Schema.TopNodeType().CreateAndFill()
		if err != nil {
			return nil, fmt.Errorf("create default document: %w", err)
		}
	}
	sel := AtStart(doc)
	if config.Selection != nil {
		sel = config.Selection.clamp(doc)
	}
	return &EditorState{Doc: doc, Selection: sel, Plugins: config.Plugins}, nil
}

// Schema returns the schema of the state's document.
func (s *EditorState) Schema() *model.Schema {
	return s.Doc.Type.Schema
}

// Tr starts a transaction from this state.
func (s *EditorState) Tr() *Transaction {
	return newTransaction(s)
}

// Apply applies the given transaction to produce a new state.
func (s *EditorState) Apply(tr *Transaction) (*EditorState, error) {
	state, _, err := s.ApplyTransaction(tr)
	return state, err
}

// ApplyTransaction is a verbose variant of Apply that returns the precise
// transactions that were applied (which might be influenced by the
// AppendTransaction hook of plugins) along with the new state.
func (s *EditorState) ApplyTransaction(rootTr *Transaction) (*EditorState, []*Transaction, error) {
	trs := []*Transaction{rootTr}
	newState, err := s.applyInner(rootTr)
	if err != nil {
		return nil, nil, err
	}
	type seenState struct {
		state *EditorState
		n     int
	}
	var seen []seenState
	for {
		haveNew := false
		for i, plugin := range s.Plugins {
			if plugin.AppendTransaction == nil {
				continue
			}
			n, oldState := 0, s
			if seen != nil {
				n, oldState = seen[i].n, seen[i].state
			}
			var tr *Transaction
			if n < len(trs) {
				tr = plugin.AppendTransaction(trs[n:], oldState, newState)
			}
			if tr != nil {
				tr.SetMeta(MetaAppendedTransaction, rootTr)
				if seen == nil {
					seen = make([]seenState, len(s.Plugins))
					for j := range s.Plugins {
						if j < i {
							seen[j] = seenState{state: newState, n: len(trs)}
						} else {
							seen[j] = seenState{state: s, n: 0}
						}
					}
				}
				trs = append(trs, tr)
				newState, err = newState.applyInner(tr)
				if err != nil {
					return nil, nil, fmt.Errorf("plugin %s: %w", plugin.Key, err)
				}
				slog.Debug("appended transaction", "plugin", plugin.Key, "steps", len(tr.Steps))
				haveNew = true
			}
			if seen != nil {
				seen[i] = seenState{state: newState, n: len(trs)}
			}
		}
		if !haveNew {
			return newState, trs, nil
		}
	}
}

func (s *EditorState) applyInner(tr *Transaction) (*EditorState, error) {
	if tr.Before() != s.Doc {
		return nil, errors.New("Applying a mismatched transaction")
	}
	return &EditorState{
		Doc:       tr.Doc,
		Selection: tr.Selection().clamp(tr.Doc),
		Plugins:   s.Plugins,
	}, nil
}

// InsertText simulates typing text over the current selection. Plugins get
// a chance to handle the input first; otherwise the text is inserted and the
// cursor placed after it.
func (s *EditorState) InsertText(text string) (*EditorState, error) {
	from, to := s.Selection.From(), s.Selection.To()
	for _, plugin := range s.Plugins {
		if plugin.HandleTextInput == nil {
			continue
		}
		if tr := plugin.HandleTextInput(s, from, to, text); tr != nil {
			return s.Apply(tr)
		}
	}
	tr := s.Tr()
	if err := tr.InsertText(text, from, to); err != nil {
		return nil, err
	}
	tr.SetSelection(Cursor(from + len(text)))
	return s.Apply(tr)
}
