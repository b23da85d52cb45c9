package model_test

import (
	"encoding/json"
	"testing"

	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, v interface{}) interface{} {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var raw interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestJSONNode(t *testing.T) {
	roundTrip := func(d builder.NodeWithTag) {
		node, err := model.NodeFromJSON(schema, decodeJSON(t, d.ToJSON()))
		if assert.NoError(t, err) {
			assert.True(t, node.Eq(d.Node), "%s != %s", node, d)
		}
	}

	// can serialize a simple node
	roundTrip(doc(p("foo")))

	// can serialize marks
	roundTrip(doc(p("foo", em("bar", strong("baz")), " ", a("x"))))

	// can serialize inline leaf nodes
	roundTrip(doc(p("foo", em(img, "bar"))))

	// can serialize block leaf nodes
	roundTrip(doc(p("a"), hr(), p("b"), h2("c")))

	// can serialize nested nodes
	roundTrip(doc(blockquote(p("a"), blockquote(li("b")))))

	// can serialize numbered list items
	roundTrip(doc(
		li(map[string]interface{}{"index": 1}, "one"),
		li(map[string]interface{}{"index": 1, "level": "2"}, "nested"),
		li("unnumbered"),
		bl("bullet"),
	))
}

func TestJSONListItemAttrs(t *testing.T) {
	obj := li(map[string]interface{}{"index": 3, "level": "2"}, "x").ToJSON()
	attrs := obj["attrs"].(map[string]interface{})
	assert.Equal(t, 3, attrs["index"])
	assert.Equal(t, "2", attrs["level"])

	raw := decodeJSON(t, obj)
	node, err := model.NodeFromJSON(schema, raw)
	require.NoError(t, err)
	assert.Equal(t, 3, node.Attrs["index"])
	assert.Equal(t, "2", node.Attrs["level"])
}

func TestJSONErrors(t *testing.T) {
	bad := func(input string) {
		var raw interface{}
		require.NoError(t, json.Unmarshal([]byte(input), &raw))
		_, err := model.NodeFromJSON(schema, raw)
		assert.Error(t, err, input)
	}

	// rejects unknown node types
	bad(`{"type": "unicorn"}`)
	// rejects empty text nodes
	bad(`{"type": "doc", "content": [{"type": "paragraph", "content": [{"type": "text", "text": ""}]}]}`)
	// rejects unknown marks
	bad(`{"type": "text", "text": "x", "marks": [{"type": "blink"}]}`)
	// rejects invalid content
	bad(`{"type": "doc", "content": [{"type": "text", "text": "loose"}]}`)
	// rejects non-objects
	bad(`[1, 2]`)
}

func TestJSONSlice(t *testing.T) {
	d := doc(p("on<a>e"), li("t<b>wo"))
	slice, err := d.Slice(d.Tag["a"], d.Tag["b"])
	require.NoError(t, err)
	back, err := model.SliceFromJSON(schema, decodeJSON(t, slice.ToJSON()))
	require.NoError(t, err)
	assert.True(t, back.Eq(slice), "%s != %s", back, slice)
	assert.Equal(t, 1, back.OpenStart)
	assert.Equal(t, 1, back.OpenEnd)
}
