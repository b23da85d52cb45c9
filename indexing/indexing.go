// Package indexing keeps the index attribute of numbered list items in step
// with their position in the document.
//
// A run is a maximal sequence of sibling numbered list items sharing the
// same level. Within each run, items are numbered 1..N in document order.
// Any other sibling block, or a change of level, ends the run.
package indexing

import (
	"fmt"

	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/schema/list"
	"github.com/shodgson/prosemirror-numbering/transform"
)

// Update is a change of the index of the numbered list item at Pos.
type Update struct {
	Pos   int
	Index int
}

// Recompute walks the document and returns the index updates needed for
// every numbered list item to hold its position in its run. Items already
// holding the right value are skipped, so a numbered document yields no
// updates.
func Recompute(doc *model.Node) []Update {
	var updates []Update
	recompute(doc, 0, &updates)
	return updates
}

// recompute numbers the children of parent, whose content starts at start.
func recompute(parent *model.Node, start int, updates *[]Update) {
	counters := map[int]int{}
	prevTier := 0
	parent.ForEach(func(child *model.Node, offset, _ int) {
		pos := start + offset
		if child.Type.Name != list.NumberedListItem {
			if prevTier != 0 {
				counters[prevTier] = 0
				prevTier = 0
			}
			if !child.IsLeaf() && !child.InlineContent() {
				recompute(child, pos+1, updates)
			}
			return
		}
		tier := list.Level(child)
		if prevTier != 0 && prevTier != tier {
			counters[prevTier] = 0
		}
		counters[tier]++
		prevTier = tier
		if current, ok := child.Attrs["index"].(int); ok && current == counters[tier] {
			return
		}
		*updates = append(*updates, Update{Pos: pos, Index: counters[tier]})
	})
}

// Apply adds the steps setting the updated indexes to a transform.
func Apply(tr *transform.Transform, updates []Update) error {
	for _, u := range updates {
		if err := tr.SetNodeAttrs(u.Pos, map[string]interface{}{"index": u.Index}); err != nil {
			return fmt.Errorf("set index of item at %d: %w", u.Pos, err)
		}
	}
	return nil
}

// Normalize returns the document with all its numbered list items indexed.
func Normalize(doc *model.Node) (*model.Node, error) {
	updates := Recompute(doc)
	if len(updates) == 0 {
		return doc, nil
	}
	tr := transform.NewTransform(doc)
	if err := Apply(tr, updates); err != nil {
		return nil, err
	}
	return tr.Doc, nil
}
