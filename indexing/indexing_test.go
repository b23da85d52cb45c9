package indexing_test

import (
	"testing"

	"github.com/shodgson/prosemirror-numbering/indexing"
	"github.com/shodgson/prosemirror-numbering/state"
	"github.com/shodgson/prosemirror-numbering/test/builder"
	"github.com/shodgson/prosemirror-numbering/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attrs = map[string]interface{}

var (
	doc        = builder.Doc
	p          = builder.P
	blockquote = builder.Blockquote
	h1         = builder.H1
	li         = builder.Li
	li2        = builder.Li2
	li3        = builder.Li3
	bl         = builder.Bl
)

func idx(n int) attrs {
	return attrs{"index": n}
}

func TestRecompute(t *testing.T) {
	check := func(d builder.NodeWithTag, expected []indexing.Update, msg string) {
		assert.Equal(t, expected, indexing.Recompute(d.Node), msg)
	}

	check(doc(li("a"), li("b"), li("c")),
		[]indexing.Update{{Pos: 0, Index: 1}, {Pos: 3, Index: 2}, {Pos: 6, Index: 3}},
		"numbers a run")

	check(doc(li(idx(1), "a"), li(idx(2), "b")),
		nil,
		"leaves a numbered run alone")

	check(doc(li(idx(1), "a"), li(idx(1), "b")),
		[]indexing.Update{{Pos: 3, Index: 2}},
		"only updates stale items")

	check(doc(li("a"), p("x"), li("b")),
		[]indexing.Update{{Pos: 0, Index: 1}, {Pos: 6, Index: 1}},
		"a paragraph breaks a run")

	check(doc(li("a"), bl("x"), li("b")),
		[]indexing.Update{{Pos: 0, Index: 1}, {Pos: 6, Index: 1}},
		"a bullet item breaks a run")

	check(doc(li("a"), li2("b"), li2("c"), li("d")),
		[]indexing.Update{{Pos: 0, Index: 1}, {Pos: 3, Index: 1}, {Pos: 6, Index: 2}, {Pos: 9, Index: 1}},
		"a tier change breaks a run")

	check(doc(li2("a"), li3("b"), li2("c")),
		[]indexing.Update{{Pos: 0, Index: 1}, {Pos: 3, Index: 1}, {Pos: 6, Index: 1}},
		"returning to a tier starts a new run")

	check(doc(blockquote(li("a"), li("b")), li("c")),
		[]indexing.Update{{Pos: 1, Index: 1}, {Pos: 4, Index: 2}, {Pos: 8, Index: 1}},
		"numbers nested runs separately")

	check(doc(li(attrs{"index": "2"}, "a"), li(attrs{"index": 2.0}, "b")),
		[]indexing.Update{{Pos: 0, Index: 1}, {Pos: 3, Index: 2}},
		"replaces malformed indexes")

	check(doc(p("x"), h1("y")),
		nil,
		"ignores documents without numbered items")
}

func TestNormalize(t *testing.T) {
	d := doc(li("a"), li("b"), li2("c"), bl("d"), li("e")).Node
	numbered, err := indexing.Normalize(d)
	require.NoError(t, err)

	expected := doc(li(idx(1), "a"), li(idx(2), "b"), li2(idx(1), "c"), bl("d"), li(idx(1), "e")).Node
	assert.True(t, numbered.Eq(expected), "%s != %s", numbered, expected)

	again, err := indexing.Normalize(numbered)
	require.NoError(t, err)
	assert.Same(t, numbered, again)
	assert.Empty(t, indexing.Recompute(numbered))
}

func TestApply(t *testing.T) {
	d := doc(li("a"), li("b")).Node
	tr := transform.NewTransform(d)
	require.NoError(t, indexing.Apply(tr, indexing.Recompute(d)))
	assert.Len(t, tr.Steps, 2)
	assert.Equal(t, 1, tr.Doc.FirstChild().Attrs["index"])
	assert.Equal(t, 2, tr.Doc.LastChild().Attrs["index"])
	assert.Equal(t, "1", tr.Doc.LastChild().Attrs["level"])

	tr = transform.NewTransform(d)
	err := indexing.Apply(tr, []indexing.Update{{Pos: 1, Index: 1}})
	assert.Error(t, err)
}

func newState(t *testing.T, d builder.NodeWithTag) *state.EditorState {
	t.Helper()
	st, err := state.Create(state.Config{Doc: d.Node, Plugins: []*state.Plugin{indexing.Plugin()}})
	require.NoError(t, err)
	return st
}

func TestPluginRenumbersAfterEdit(t *testing.T) {
	st := newState(t, doc(li("a"), li("b")))

	tr := st.Tr()
	require.NoError(t, tr.InsertText("x", 2))
	next, trs, err := st.ApplyTransaction(tr)
	require.NoError(t, err)

	require.Len(t, trs, 2)
	assert.Same(t, tr, trs[1].GetMeta(state.MetaAppendedTransaction))
	expected := doc(li(idx(1), "ax"), li(idx(2), "b")).Node
	assert.True(t, next.Doc.Eq(expected), "%s != %s", next.Doc, expected)
}

func TestPluginJoinsRuns(t *testing.T) {
	st := newState(t, doc(li(idx(1), "a"), p("x"), li(idx(1), "b")))

	tr := st.Tr()
	require.NoError(t, tr.Delete(3, 6))
	next, err := st.Apply(tr)
	require.NoError(t, err)

	expected := doc(li(idx(1), "a"), li(idx(2), "b")).Node
	assert.True(t, next.Doc.Eq(expected), "%s != %s", next.Doc, expected)
}

func TestPluginSkipsUnchangedDocs(t *testing.T) {
	st := newState(t, doc(li("a"), li("b")))

	tr := st.Tr()
	tr.SetSelection(state.Cursor(4))
	next, trs, err := st.ApplyTransaction(tr)
	require.NoError(t, err)
	assert.Len(t, trs, 1)
	assert.Same(t, st.Doc, next.Doc)
	assert.Equal(t, 4, next.Selection.Head)
}

func TestPluginIsIdempotent(t *testing.T) {
	st := newState(t, doc(li(idx(1), "a"), li(idx(2), "b")))

	tr := st.Tr()
	require.NoError(t, tr.InsertText("x", 5))
	_, trs, err := st.ApplyTransaction(tr)
	require.NoError(t, err)
	assert.Len(t, trs, 1)
}
