package model_test

import (
	"testing"

	. "github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSlice(t *testing.T) {
	cases := []struct {
		name               string
		doc, expected      builder.NodeWithTag
		openStart, openEnd int
	}{
		{"half a paragraph",
			doc(p("hello<b> world")),
			doc(p("hello")), 0, 1},
		{"to the end of a paragraph",
			doc(p("hello<b>")),
			doc(p("hello")), 0, 1},
		{"leaves off extra content",
			doc(p("hello<b> world"), p("rest")),
			doc(p("hello")), 0, 1},
		{"preserves styles",
			doc(p("hello ", em("WOR<b>LD"))),
			doc(p("hello ", em("WOR"))), 0, 1},
		{"multiple blocks",
			doc(p("a"), p("b<b>")),
			doc(p("a"), p("b")), 0, 1},
		{"to a top-level position",
			doc(p("a"), "<b>", p("b")),
			doc(p("a")), 0, 0},
		{"to a deep position",
			doc(blockquote(li("a"), li("b<b>"))),
			doc(blockquote(li("a"), li("b"))), 0, 2},
		{"everything after a position",
			doc(p("hello<a> world")),
			doc(p(" world")), 1, 0},
		{"from the start of a textblock",
			doc(p("<a>hello")),
			doc(p("hello")), 1, 0},
		{"leaves off extra content before",
			doc(p("foo"), p("bar<a>baz")),
			doc(p("baz")), 1, 0},
		{"preserves styles after cut",
			doc(p("a sentence with an ", em("emphasized ", a("li<a>nk")), " in it")),
			doc(p(em(a("nk")), " in it")), 1, 0},
		{"preserves styles started after cut",
			doc(p("a ", em("sentence"), " wi<a>th ", em("text"), " in it")),
			doc(p("th ", em("text"), " in it")), 1, 0},
		{"from a top-level position",
			doc(p("a"), "<a>", p("b")),
			doc(p("b")), 0, 0},
		{"from a deep position",
			doc(blockquote(li("a"), li("<a>b"))),
			doc(blockquote(li("b"))), 2, 0},
		{"part of a text node",
			doc(p("hell<a>o wo<b>rld")),
			p("o wo"), 0, 0},
		{"across paragraphs",
			doc(p("on<a>e"), p("t<b>wo")),
			doc(p("e"), p("t")), 1, 1},
		{"part of marked text",
			doc(p("here's noth<a>ing and ", em("here's e<b>m"))),
			p("ing and ", em("here's e")), 0, 0},
		{"across different depths",
			doc(blockquote(li("hello"), li("wo<a>rld"), li("x")), p(em("bo<b>o"))),
			doc(blockquote(li("rld"), li("x")), p(em("bo"))), 2, 1},
		{"between deeply nested nodes",
			doc(blockquote(p("foo<a>bar"), blockquote(li("a"), li("b"), "<b>", li("c")), p("d"))),
			blockquote(p("bar"), blockquote(li("a"), li("b"))), 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var slice *Slice
			var err error
			if b, ok := c.doc.Tag["b"]; ok {
				slice, err = c.doc.Slice(c.doc.Tag["a"], b)
			} else {
				slice, err = c.doc.Slice(c.doc.Tag["a"])
			}
			require.NoError(t, err)
			assert.True(t, slice.Content.Eq(c.expected.Content), "%s != %s", slice.Content, c.expected.Content)
			assert.Equal(t, c.openStart, slice.OpenStart)
			assert.Equal(t, c.openEnd, slice.OpenEnd)
		})
	}
}
