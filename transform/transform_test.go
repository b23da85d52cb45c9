package transform_test

import (
	"testing"

	"github.com/shodgson/prosemirror-numbering/schema/list"
	. "github.com/shodgson/prosemirror-numbering/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformSetNodeMarkup(t *testing.T) {
	numbered := schema.Nodes[list.NumberedListItem]

	// turns a paragraph into a list item, keeping its content
	tr := NewTransform(doc(p("x"), p("foo", em("bar"))).Node)
	require.NoError(t, tr.SetNodeMarkup(3, numbered, nil))
	assert.True(t, tr.Doc.Eq(doc(p("x"), li("foo", em("bar"))).Node), "%s", tr.Doc)
	// leaves positions in place
	assert.Equal(t, 5, tr.Mapping.Map(5))

	// sets attributes along with the type
	tr = NewTransform(doc(p("foo")).Node)
	require.NoError(t, tr.SetNodeMarkup(0, numbered, map[string]interface{}{"level": "2"}))
	assert.True(t, tr.Doc.Eq(doc(li2("foo")).Node), "%s", tr.Doc)

	// keeps the type when none is given
	tr = NewTransform(doc(li("foo")).Node)
	require.NoError(t, tr.SetNodeMarkup(0, nil, map[string]interface{}{"index": 4}))
	assert.Equal(t, 4, tr.Doc.FirstChild().Attrs["index"])

	// refuses content the new type can't hold
	tr = NewTransform(doc(p("foo")).Node)
	assert.Error(t, tr.SetNodeMarkup(0, schema.Nodes["blockquote"], nil))
	assert.False(t, tr.DocChanged())

	// refuses text positions
	assert.Error(t, tr.SetNodeMarkup(1, numbered, nil))
}

func TestTransformDelete(t *testing.T) {
	before := doc(p("1. <a>foo"))
	tr := NewTransform(before.Node)
	require.NoError(t, tr.Delete(1, before.Tag["a"]))
	assert.True(t, tr.Doc.Eq(doc(p("foo")).Node))
	assert.Equal(t, 1, tr.Mapping.Map(before.Tag["a"]))
	assert.Equal(t, 1, tr.Mapping.Map(2))
	assert.Same(t, before.Node, tr.Before())

	// deleting nothing adds no step
	tr = NewTransform(before.Node)
	require.NoError(t, tr.Delete(2, 2))
	assert.False(t, tr.DocChanged())
}

func TestTransformInsertText(t *testing.T) {
	// inherits the marks at the insertion point
	d := doc(p(em("fo<a>o")))
	tr := NewTransform(d.Node)
	require.NoError(t, tr.InsertText("x", d.Tag["a"]))
	assert.True(t, tr.Doc.Eq(doc(p(em("foxo"))).Node), "%s", tr.Doc)

	// replaces a range
	d = doc(p("a<a>bc<b>d"))
	tr = NewTransform(d.Node)
	require.NoError(t, tr.InsertText("X", d.Tag["a"], d.Tag["b"]))
	assert.True(t, tr.Doc.Eq(doc(p("aXd")).Node), "%s", tr.Doc)

	// deletes when the text is empty
	tr = NewTransform(d.Node)
	require.NoError(t, tr.InsertText("", d.Tag["a"], d.Tag["b"]))
	assert.True(t, tr.Doc.Eq(doc(p("ad")).Node), "%s", tr.Doc)
}

func TestTransformFailedStep(t *testing.T) {
	d := doc(p("foo"))
	tr := NewTransform(d.Node)
	err := tr.Delete(2, 20)
	var terr *TransformError
	assert.ErrorAs(t, err, &terr)
	assert.False(t, tr.DocChanged())
	assert.Same(t, d.Node, tr.Doc)
}

func TestTransformSteps(t *testing.T) {
	d := doc(li("a"), li("b"), bl("c"))
	tr := NewTransform(d.Node)
	require.NoError(t, tr.SetNodeAttrs(0, map[string]interface{}{"index": 1}))
	require.NoError(t, tr.SetNodeAttrs(3, map[string]interface{}{"index": 2}))
	require.NoError(t, tr.InsertText("z", 7))
	assert.Len(t, tr.Steps, 3)
	assert.Len(t, tr.Docs, 3)
	assert.Same(t, d.Node, tr.Docs[0])
	assert.True(t, tr.Doc.Eq(doc(
		li(map[string]interface{}{"index": 1}, "a"),
		li(map[string]interface{}{"index": 2}, "b"),
		bl("zc"),
	).Node), "%s", tr.Doc)
}
