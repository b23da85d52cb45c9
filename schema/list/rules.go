package list

import (
	"log/slog"
	"regexp"

	"github.com/shodgson/prosemirror-numbering/inputrules"
	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/state"
)

var (
	numberedMarker = regexp.MustCompile(`^\d+\.\s$`)
	bulletMarker   = regexp.MustCompile(`^\s*[-+*]\s$`)
)

// blockTypeRule returns an input rule that turns the text block in which the
// marker was typed into a node of the given type, and removes the marker.
// The marker must start the block.
func blockTypeRule(find *regexp.Regexp, typ *model.NodeType) *inputrules.InputRule {
	return inputrules.New(find, func(st *state.EditorState, match []string, start, end int) *state.Transaction {
		rstart, err := st.Doc.Resolve(start)
		if err != nil || rstart.ParentOffset != 0 || !rstart.Parent().IsTextblock() {
			return nil
		}
		pos, err := rstart.Before()
		if err != nil {
			return nil
		}
		tr := st.Tr()
		// Both edits land in the same transaction, or none does.
		if err := tr.SetNodeMarkup(pos, typ, nil); err != nil {
			slog.Debug("can't convert block", "type", typ.Name, "error", err)
			return nil
		}
		if err := tr.Delete(tr.Mapping.Map(start), tr.Mapping.Map(end)); err != nil {
			slog.Debug("can't remove list marker", "error", err)
			return nil
		}
		return tr
	})
}

// NumberedListRule converts a text block starting with a number followed by
// a dot and a space into a numbered list item. The typed number is
// discarded: the item is numbered by its position in its run.
func NumberedListRule(typ *model.NodeType) *inputrules.InputRule {
	return blockTypeRule(numberedMarker, typ)
}

// BulletListRule converts a text block starting with -, + or * followed by
// a space into a bullet list item.
func BulletListRule(typ *model.NodeType) *inputrules.InputRule {
	return blockTypeRule(bulletMarker, typ)
}

// InputRules returns the list input rules for the list item types found in
// the schema.
func InputRules(schema *model.Schema) []*inputrules.InputRule {
	var rules []*inputrules.InputRule
	if typ, ok := schema.Nodes[NumberedListItem]; ok {
		rules = append(rules, NumberedListRule(typ))
	}
	if typ, ok := schema.Nodes[BulletListItem]; ok {
		rules = append(rules, BulletListRule(typ))
	}
	return rules
}
