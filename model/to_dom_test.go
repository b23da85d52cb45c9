package model_test

import (
	"bytes"
	"testing"

	. "github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOMSerializer(t *testing.T) {
	serializer := DOMSerializerFromSchema(schema)

	cases := []struct {
		name     string
		doc      builder.NodeWithTag
		expected string
	}{
		{"simple node",
			doc(p("hello")),
			"<p>hello</p>"},
		{"a line break",
			doc(p("hi", br, "there")),
			"<p>hi<br/>there</p>"},
		{"an image",
			doc(p("hi", imageWithAttrs("x", "img.png"), "there")),
			`<p>hi<img alt="x" src="img.png"/>there</p>`},
		{"simple marks",
			doc(p(em("emphasis"))),
			"<p><em>emphasis</em></p>"},
		{"links",
			doc(p("a ", a("link"), " here")),
			`<p>a <a href="foo">link</a> here</p>`},
		{"a blockquote",
			doc(blockquote(p("hello"), p("bye"))),
			"<blockquote><p>hello</p><p>bye</p></blockquote>"},
		{"a nested blockquote",
			doc(blockquote(blockquote(blockquote(p("he said"))), p("i said"))),
			"<blockquote><blockquote><blockquote><p>he said</p></blockquote></blockquote><p>i said</p></blockquote>"},
		{"headings",
			doc(h1("one"), h2("two"), p("text")),
			"<h1>one</h1><h2>two</h2><p>text</p>"},
		{"inline code",
			doc(p("text and ", code("code that is ", em("emphasized"), "..."))),
			"<p>text and <code>code that is </code><em><code>emphasized</code></em><code>...</code></p>"},
		{"a code block",
			doc(blockquote(pre("some code")), p("and")),
			"<blockquote><pre><code>some code</code></pre></blockquote><p>and</p>"},
		{"leaf nodes in marks",
			doc(p(em("hi", br, "x"))),
			"<p><em>hi<br/>x</em></p>"},
		{"not collapse non-breaking spaces",
			doc(p("\u00a0 \u00a0hello\u00a0")),
			"<p>\u00a0 \u00a0hello\u00a0</p>"},
		{"a numbered list item",
			doc(li(map[string]interface{}{"index": 1}, "A")),
			`<div class="blockContent" data-content-type="numberedListItem" data-index="1" data-level="1" data-num-char="1"><p class="inlineContent">A</p></div>`},
		{"label second tier items with letters",
			doc(li(map[string]interface{}{"index": 28, "level": "2"}, "B")),
			`<div class="blockContent" data-content-type="numberedListItem" data-index="28" data-level="2" data-num-char="ab"><p class="inlineContent">B</p></div>`},
		{"label third tier items with roman numerals",
			doc(li(map[string]interface{}{"index": 4, "level": "3"}, "C")),
			`<div class="blockContent" data-content-type="numberedListItem" data-index="4" data-level="3" data-num-char="IV"><p class="inlineContent">C</p></div>`},
		{"omit the index of an item not numbered yet",
			doc(li("D")),
			`<div class="blockContent" data-content-type="numberedListItem" data-level="1" data-num-char="1"><p class="inlineContent">D</p></div>`},
		{"a bullet list item",
			doc(bl("E", strong("!"))),
			`<div class="blockContent" data-content-type="bulletListItem" data-level="1"><p class="inlineContent">E<strong>!</strong></p></div>`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, serializer.Render(c.doc.Content, buf))
			assert.Equal(t, c.expected, buf.String())
		})
	}
}

func imageWithAttrs(alt string, src string) *Node {
	attrs := map[string]interface{}{"alt": alt, "src": src}
	image, err := schema.Node("image", attrs)
	if err != nil {
		return nil
	}
	return image
}
