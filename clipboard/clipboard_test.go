package clipboard_test

import (
	"bytes"
	"testing"

	"github.com/shodgson/prosemirror-numbering/clipboard"
	"github.com/shodgson/prosemirror-numbering/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attrs = map[string]interface{}

var (
	schema = builder.Schema
	doc    = builder.Doc
	p      = builder.P
	li     = builder.Li
	li2    = builder.Li2
	bl     = builder.Bl
	strong = builder.Strong
)

func idx(n int) attrs {
	return attrs{"index": n}
}

func TestParseHTML(t *testing.T) {
	parse := func(markup string, expected builder.NodeWithTag, msg string) {
		actual, err := clipboard.ParseHTMLString(schema, markup)
		if assert.NoError(t, err, msg) {
			assert.True(t, actual.Eq(expected.Node), "%s: %s != %s", msg, actual, expected)
		}
	}

	parse("<ol><li>A</li><li>B</li></ol>",
		doc(li(idx(1), "A"), li(idx(2), "B")),
		"numbers pasted ordered lists")

	parse("<ol start=\"5\"><li>A</li></ol><p>x</p><ol><li>B</li></ol>",
		doc(li(idx(1), "A"), p("x"), li(idx(1), "B")),
		"restarts numbering after other blocks")

	parse("<ul><li>A</li></ul>",
		doc(bl("A")),
		"reads bullet lists")

	parse("<div><p>x</p></div>",
		doc(p("x")),
		"reads paragraphs in generic wrappers")

	parse(`<div data-content-type="numberedListItem" data-index="9" data-level="2"><p>A</p></div>`+
		`<div data-content-type="numberedListItem" data-index="9" data-level="2"><p>B</p></div>`,
		doc(li2(idx(1), "A"), li2(idx(2), "B")),
		"renumbers pasted block markup")

	parse(`<div data-content-type="numberedListItem" data-level="2 onclick"><p>A</p></div>`,
		doc(li(idx(1), "A")),
		"drops attributes that are not plain numbers")

	parse("<p>Plain <b>bold</b></p><script>alert(1)</script>",
		doc(p("Plain ", strong("bold"))),
		"drops scripts")

	parse(`<p onclick="alert(1)">x</p><iframe src="http://example.com"></iframe>`,
		doc(p("x")),
		"drops unsafe markup")
}

func TestSerialize(t *testing.T) {
	d := doc(li(idx(1), "A"), bl("B")).Node

	out, err := clipboard.SerializeString(schema, d)
	require.NoError(t, err)
	assert.Equal(t,
		`<div class="blockContent" data-content-type="numberedListItem" data-index="1" data-level="1" data-num-char="1"><p class="inlineContent">A</p></div>`+
			`<div class="blockContent" data-content-type="bulletListItem" data-level="1"><p class="inlineContent">B</p></div>`,
		out)

	buf := new(bytes.Buffer)
	require.NoError(t, clipboard.Serialize(schema, d, buf))
	assert.Equal(t, out, buf.String())
}

func TestRoundTrip(t *testing.T) {
	d := doc(li(idx(1), "A"), li(idx(2), "B"), li2(idx(1), "C"), p("D"), li(idx(1), "E")).Node

	out, err := clipboard.SerializeString(schema, d)
	require.NoError(t, err)
	back, err := clipboard.ParseHTMLString(schema, out)
	require.NoError(t, err)
	assert.True(t, back.Eq(d), "%s != %s", back, d)
}
