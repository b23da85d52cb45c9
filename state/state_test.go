package state_test

import (
	"testing"

	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/state"
	"github.com/shodgson/prosemirror-numbering/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	doc        = builder.Doc
	p          = builder.P
	blockquote = builder.Blockquote
	hr         = builder.Hr
	li         = builder.Li
)

func TestCreate(t *testing.T) {
	st, err := state.Create(state.Config{Schema: builder.Schema})
	require.NoError(t, err)
	assert.True(t, st.Doc.Eq(doc(p()).Node), "%s", st.Doc)
	assert.Equal(t, state.Cursor(1), st.Selection)
	assert.Same(t, builder.Schema, st.Schema())

	_, err = state.Create(state.Config{})
	assert.Error(t, err)

	sel := state.Selection{Anchor: 2, Head: 40}
	st, err = state.Create(state.Config{Doc: doc(p("abc")).Node, Selection: &sel})
	require.NoError(t, err)
	assert.Equal(t, state.Selection{Anchor: 2, Head: 5}, st.Selection)
}

func TestAtStart(t *testing.T) {
	assert.Equal(t, state.Cursor(1), state.AtStart(doc(p("x")).Node))
	assert.Equal(t, state.Cursor(2), state.AtStart(doc(blockquote(p("x"))).Node))
	assert.Equal(t, state.Cursor(2), state.AtStart(doc(hr, p("x")).Node))
	assert.Equal(t, state.Cursor(0), state.AtStart(doc(hr).Node))
}

func TestSelection(t *testing.T) {
	sel := state.Selection{Anchor: 7, Head: 3}
	assert.Equal(t, 3, sel.From())
	assert.Equal(t, 7, sel.To())
	assert.False(t, sel.Empty())
	assert.True(t, state.Cursor(4).Empty())
}

func TestApply(t *testing.T) {
	st, err := state.Create(state.Config{Doc: doc(p("ab")).Node})
	require.NoError(t, err)

	tr := st.Tr()
	require.NoError(t, tr.InsertText("xy", 1))
	assert.Equal(t, state.Cursor(3), tr.Selection())
	assert.False(t, tr.SelectionSet())

	next, err := st.Apply(tr)
	require.NoError(t, err)
	assert.True(t, next.Doc.Eq(doc(p("xyab")).Node), "%s", next.Doc)
	assert.Equal(t, state.Cursor(3), next.Selection)

	// The transaction was started from another document.
	_, err = next.Apply(tr)
	assert.Error(t, err)
}

func TestMeta(t *testing.T) {
	st, err := state.Create(state.Config{Doc: doc(p("ab")).Node})
	require.NoError(t, err)
	tr := st.Tr()
	assert.Nil(t, tr.GetMeta("foo"))
	tr.SetMeta("foo", 42)
	assert.Equal(t, 42, tr.GetMeta("foo"))
}

func TestReplaceSelectionWith(t *testing.T) {
	sel := state.Selection{Anchor: 4, Head: 2}
	st, err := state.Create(state.Config{Doc: doc(p("abcd")).Node, Selection: &sel})
	require.NoError(t, err)

	tr := st.Tr()
	require.NoError(t, tr.ReplaceSelectionWith("x"))
	assert.True(t, tr.Doc.Eq(doc(p("axd")).Node), "%s", tr.Doc)
}

func TestInsertText(t *testing.T) {
	sel := state.Selection{Anchor: 2, Head: 4}
	st, err := state.Create(state.Config{Doc: doc(p("abcd")).Node, Selection: &sel})
	require.NoError(t, err)

	next, err := st.InsertText("x")
	require.NoError(t, err)
	assert.True(t, next.Doc.Eq(doc(p("axd")).Node), "%s", next.Doc)
	assert.Equal(t, state.Cursor(3), next.Selection)
}

func TestHandleTextInput(t *testing.T) {
	var calls []string
	upper := &state.Plugin{
		Key: "upper",
		HandleTextInput: func(st *state.EditorState, from, to int, text string) *state.Transaction {
			calls = append(calls, text)
			if text != "a" {
				return nil
			}
			tr := st.Tr()
			if err := tr.InsertText("A", from, to); err != nil {
				return nil
			}
			return tr
		},
	}
	st, err := state.Create(state.Config{Doc: doc(p()).Node, Plugins: []*state.Plugin{upper}})
	require.NoError(t, err)

	st, err = st.InsertText("a")
	require.NoError(t, err)
	st, err = st.InsertText("b")
	require.NoError(t, err)
	assert.True(t, st.Doc.Eq(doc(p("Ab")).Node), "%s", st.Doc)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestAppendTransaction(t *testing.T) {
	var seen []int
	// Appends a paragraph to documents of two blocks.
	grow := &state.Plugin{
		Key: "grow",
		AppendTransaction: func(trs []*state.Transaction, _, newState *state.EditorState) *state.Transaction {
			seen = append(seen, len(trs))
			if newState.Doc.ChildCount() != 2 {
				return nil
			}
			tr := newState.Tr()
			if err := tr.Insert(newState.Doc.Content.Size, model.FragmentFrom(p("end").Node)); err != nil {
				return nil
			}
			return tr
		},
	}
	var observed []int
	watch := &state.Plugin{
		Key: "watch",
		AppendTransaction: func(trs []*state.Transaction, _, _ *state.EditorState) *state.Transaction {
			observed = append(observed, len(trs))
			return nil
		},
	}
	st, err := state.Create(state.Config{Doc: doc(p("a")).Node, Plugins: []*state.Plugin{grow, watch}})
	require.NoError(t, err)

	tr := st.Tr()
	require.NoError(t, tr.Insert(3, model.FragmentFrom(li("b").Node)))
	next, trs, err := st.ApplyTransaction(tr)
	require.NoError(t, err)

	require.Len(t, trs, 2)
	assert.Same(t, tr, trs[0])
	assert.Same(t, tr, trs[1].GetMeta(state.MetaAppendedTransaction))
	assert.Nil(t, trs[0].GetMeta(state.MetaAppendedTransaction))
	assert.True(t, next.Doc.Eq(doc(p("a"), li("b"), p("end")).Node), "%s", next.Doc)

	// grow is not shown its own transaction; watch sees both at once.
	assert.Equal(t, []int{1}, seen)
	assert.Equal(t, []int{2}, observed)
}
