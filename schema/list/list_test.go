package list_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dstotijn/go-notion"
	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/schema/basic"
	"github.com/shodgson/prosemirror-numbering/schema/list"
	"github.com/shodgson/prosemirror-numbering/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type attrs = map[string]interface{}

var (
	doc = builder.Doc
	p   = builder.P
	li  = builder.Li
	li2 = builder.Li2
	li3 = builder.Li3
	bl  = builder.Bl
)

func render(t *testing.T, schema *model.Schema, node *model.Node) string {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, model.DOMSerializerFromSchema(schema).Render(node.Content, buf))
	return buf.String()
}

func parse(t *testing.T, markup string) *model.Node {
	t.Helper()
	dom, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	node, err := model.DOMParserFromSchema(builder.Schema).Parse(dom)
	require.NoError(t, err)
	return node
}

func TestNodeDefaults(t *testing.T) {
	node := li("x").Node
	assert.Nil(t, node.Attrs["index"])
	assert.Equal(t, "1", node.Attrs["level"])

	bullet := bl("x").Node
	assert.Equal(t, "1", bullet.Attrs["level"])
	_, hasIndex := bullet.Attrs["index"]
	assert.False(t, hasIndex)
}

func TestIndex(t *testing.T) {
	_, ok := list.Index(li("x").Node)
	assert.False(t, ok)

	for _, value := range []interface{}{3, 3.0, "3", " 3 "} {
		n, ok := list.Index(li(attrs{"index": value}, "x").Node)
		assert.True(t, ok, "%#v", value)
		assert.Equal(t, 3, n, "%#v", value)
	}

	for _, value := range []interface{}{0, -2, 2.5, "two", ""} {
		_, ok := list.Index(li(attrs{"index": value}, "x").Node)
		assert.False(t, ok, "%#v", value)
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 1, list.Level(li("x").Node))
	assert.Equal(t, 2, list.Level(li2("x").Node))
	assert.Equal(t, 3, list.Level(li3("x").Node))
	assert.Equal(t, 4, list.Level(bl(attrs{"level": "4"}, "x").Node))
	assert.Equal(t, 1, list.Level(li(attrs{"level": "deep"}, "x").Node))
	assert.Equal(t, 1, list.Level(li(attrs{"level": "0"}, "x").Node))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "1", list.Label(li("x").Node))
	assert.Equal(t, "7", list.Label(li(attrs{"index": 7}, "x").Node))
	assert.Equal(t, "a", list.Label(li2("x").Node))
	assert.Equal(t, "z", list.Label(li2(attrs{"index": 26}, "x").Node))
	assert.Equal(t, "aa", list.Label(li2(attrs{"index": 27}, "x").Node))
	assert.Equal(t, "I", list.Label(li3("x").Node))
	assert.Equal(t, "IV", list.Label(li3(attrs{"index": 4}, "x").Node))
	assert.Equal(t, "XIV", list.Label(li(attrs{"index": 14, "level": "5"}, "x").Node))
}

func TestIsListItem(t *testing.T) {
	assert.True(t, list.IsListItem(li("x").Node))
	assert.True(t, list.IsListItem(bl("x").Node))
	assert.False(t, list.IsListItem(p("x").Node))
}

func TestNotionDepth(t *testing.T) {
	assert.Equal(t, 1, list.NotionDepth(p("x").Node))
	assert.Equal(t, 1, list.NotionDepth(li("x").Node))
	assert.Equal(t, 3, list.NotionDepth(li3("x").Node))
	assert.Equal(t, 2, list.NotionDepth(bl(attrs{"level": "2"}, "x").Node))
}

func TestRender(t *testing.T) {
	assert.Equal(t,
		`<div class="blockContent" data-content-type="numberedListItem" data-index="2" data-level="1" data-num-char="2"><p class="inlineContent">x</p></div>`,
		render(t, builder.Schema, doc(li(attrs{"index": 2}, "x")).Node))

	// A malformed index is left out, and the item labelled as a first one.
	assert.Equal(t,
		`<div class="blockContent" data-content-type="numberedListItem" data-level="2" data-num-char="a"><p class="inlineContent">x</p></div>`,
		render(t, builder.Schema, doc(li2(attrs{"index": "nope"}, "x")).Node))
}

func TestRenderOptions(t *testing.T) {
	schema, err := list.NewSchema(list.Options{BlockContentClass: "bn-block", InlineContentClass: " bn-inline "})
	require.NoError(t, err)

	node, err := schema.Node(list.NumberedListItem, attrs{"index": 3}, schema.Text("x"))
	require.NoError(t, err)
	d, err := schema.Node("doc", nil, node)
	require.NoError(t, err)

	assert.Equal(t,
		`<div class="blockContent bn-block" data-content-type="numberedListItem" data-index="3" data-level="1" data-num-char="3"><p class="inlineContent bn-inline">x</p></div>`,
		render(t, schema, d))
}

func TestParseGenericLists(t *testing.T) {
	actual := parse(t, "<ol><li>A</li><li>B</li></ol><ul><li>C</li></ul>")
	expected := doc(li("A"), li("B"), bl("C"))
	assert.True(t, actual.Eq(expected.Node), "%s != %s", actual, expected)
}

func TestParseOwnMarkup(t *testing.T) {
	actual := parse(t,
		`<div data-content-type="numberedListItem" data-index="3" data-level="2"><p>A</p></div>`+
			`<div data-content-type="bulletListItem" data-level="3"><p>B</p></div>`+
			`<div data-content-type="paragraph"><p>C</p></div>`)
	expected := doc(li2(attrs{"index": 3}, "A"), bl(attrs{"level": "3"}, "B"), p("C"))
	assert.True(t, actual.Eq(expected.Node), "%s != %s", actual, expected)
}

func TestParseRoundTrip(t *testing.T) {
	original := doc(li(attrs{"index": 1}, "A"), li(attrs{"index": 2}, "B"), li2(attrs{"index": 1}, "C"), bl("D"), p("E")).Node
	markup := render(t, builder.Schema, original)
	actual := parse(t, markup)
	assert.True(t, actual.Eq(original), "%s != %s", actual, original)
}

func TestAddListNodes(t *testing.T) {
	nodes := []*model.NodeSpec{
		{Key: "doc", Content: "(paragraph | item)+"},
	}
	nodes = append(nodes, basic.Nodes[1:]...)
	nodes = list.AddListNodes(nodes, "item")
	schema, err := model.NewSchema(&model.SchemaSpec{Nodes: nodes, Marks: basic.Marks})
	require.NoError(t, err)

	assert.Equal(t, "item", schema.Nodes[list.NumberedListItem].Spec.Group)
	assert.Equal(t, "item", schema.Nodes[list.BulletListItem].Spec.Group)
	item, err := schema.Nodes[list.NumberedListItem].CreateAndFill()
	require.NoError(t, err)
	_, err = schema.Node("doc", nil, item)
	assert.NoError(t, err)
}

func TestNotionBlocks(t *testing.T) {
	serializer := model.NotionSerializerFromSchema(builder.Schema)

	block := serializer.SerializeNode(li(attrs{"index": 2}, "A").Node)
	require.NotNil(t, block)
	assert.Equal(t, notion.BlockTypeNumberedListItem, block.Type)
	require.NotNil(t, block.NumberedListItem)
	require.Len(t, block.NumberedListItem.Text, 1)
	assert.Equal(t, "A", block.NumberedListItem.Text[0].PlainText)

	block = serializer.SerializeNode(bl("B").Node)
	require.NotNil(t, block)
	assert.Equal(t, notion.BlockTypeBulletedListItem, block.Type)
	require.NotNil(t, block.BulletedListItem)
}

func TestInputRules(t *testing.T) {
	rules := list.InputRules(builder.Schema)
	require.Len(t, rules, 2)
	assert.True(t, rules[0].Find.MatchString("1. "))
	assert.True(t, rules[0].Find.MatchString("42. "))
	assert.False(t, rules[0].Find.MatchString("1."))
	assert.False(t, rules[0].Find.MatchString("a1. "))
	assert.True(t, rules[1].Find.MatchString("* "))
	assert.True(t, rules[1].Find.MatchString("- "))
	assert.False(t, rules[1].Find.MatchString("-- "))

	assert.Empty(t, list.InputRules(basic.Schema))
}
