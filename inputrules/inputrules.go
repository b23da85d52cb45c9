// Package inputrules implements rules that transform the document as the
// user types, such as turning "1. " at the start of a paragraph into a
// numbered list item.
package inputrules

import (
	"log/slog"
	"regexp"

	"github.com/shodgson/prosemirror-numbering/state"
)

// maxMatch is how far back before the cursor rules look for a match.
const maxMatch = 500

// Handler is called when a rule matches. start and end delimit the matched
// text in the document, without the text being typed (which isn't inserted
// yet). Returning nil means the rule doesn't apply after all.
type Handler func(st *state.EditorState, match []string, start, end int) *state.Transaction

// InputRule is a regular expression that, when matched against the text
// before the cursor (including the text being typed), runs a handler.
type InputRule struct {
	// Find should end with $, so that it only matches text directly before
	// the cursor.
	Find    *regexp.Regexp
	Handler Handler
}

// New creates an input rule.
func New(find *regexp.Regexp, handler Handler) *InputRule {
	return &InputRule{Find: find, Handler: handler}
}

// Run tries the rules against the text typed over from..to and returns the
// transaction of the first handler that accepts it, or nil.
func Run(st *state.EditorState, from, to int, text string, rules []*InputRule) *state.Transaction {
	rfrom, err := st.Doc.Resolve(from)
	if err != nil {
		return nil
	}
	parent := rfrom.Parent()
	if parent.Type.Spec.Code || !parent.InlineContent() {
		return nil
	}
	start := rfrom.ParentOffset - maxMatch
	if start < 0 {
		start = 0
	}
	textBefore := parent.TextBetween(start, rfrom.ParentOffset, "", "\ufffc") + text
	for _, rule := range rules {
		match := rule.Find.FindStringSubmatch(textBefore)
		if match == nil {
			continue
		}
		matchStart := from - (len(match[0]) - len(text))
		if tr := rule.Handler(st, match, matchStart, to); tr != nil {
			slog.Debug("input rule matched", "rule", rule.Find.String(), "from", matchStart, "to", to)
			return tr
		}
	}
	return nil
}

// Plugin returns a state plugin that runs the given rules on text input.
func Plugin(rules ...*InputRule) *state.Plugin {
	return &state.Plugin{
		Key: "inputrules",
		HandleTextInput: func(st *state.EditorState, from, to int, text string) *state.Transaction {
			return Run(st, from, to, text, rules)
		},
	}
}
