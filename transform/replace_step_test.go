package transform_test

import (
	"testing"

	"github.com/shodgson/prosemirror-numbering/model"
	. "github.com/shodgson/prosemirror-numbering/transform"
	"github.com/stretchr/testify/assert"
)

func TestReplaceAround(t *testing.T) {
	testDoc := doc(p("Ma super note")).Node

	slice := model.NewSlice(model.FragmentFrom(h1().Node), 0, 0)
	step := NewReplaceAroundStep(0, 15, 1, 14, slice, 1, true)

	result := step.Apply(testDoc)
	if assert.Empty(t, result.Failed) {
		assert.True(t, result.Doc.Eq(doc(h1("Ma super note")).Node))
	}

	inverted := step.Invert(testDoc)
	back := inverted.Apply(result.Doc)
	if assert.Empty(t, back.Failed) {
		assert.True(t, back.Doc.Eq(testDoc))
	}
}

func TestReplaceTwice(t *testing.T) {
	yes := func(from1, to1 int, txt1, expected1 string, from2, to2 int, txt2, expected2 string) {
		testDoc := doc(p("Numéro")).Node

		slice1 := model.EmptySlice
		if txt1 != "" {
			slice1 = model.NewSlice(model.FragmentFrom(schema.Text(txt1)), 0, 0)
		}
		step1 := NewReplaceStep(from1, to1, slice1)
		result := step1.Apply(testDoc)
		if !assert.Empty(t, result.Failed) {
			return
		}
		assert.Equal(t, expected1, result.Doc.TextContent())

		slice2 := model.EmptySlice
		if txt2 != "" {
			slice2 = model.NewSlice(model.FragmentFrom(schema.Text(txt2)), 0, 0)
		}
		step2 := NewReplaceStep(from2, to2, slice2)
		result = step2.Apply(result.Doc)
		if assert.Empty(t, result.Failed) {
			assert.Equal(t, expected2, result.Doc.TextContent())
		}
	}

	// Double backspace
	yes(7, 8, "", "Numér", 6, 7, "", "Numé")

	// Positions count bytes, so an emoji takes 4 of them
	yes(2, 2, "👥", "N👥uméro", 6, 6, "🔎", "N👥🔎uméro")
}

func TestReplaceStructure(t *testing.T) {
	testDoc := doc(p("a"), p("b")).Node

	// joins blocks when nothing but their boundary is replaced
	step := NewReplaceStep(2, 4, model.EmptySlice, true)
	result := step.Apply(testDoc)
	if assert.Empty(t, result.Failed) {
		assert.True(t, result.Doc.Eq(doc(p("ab")).Node))
	}

	// refuses to overwrite content
	step = NewReplaceStep(1, 4, model.EmptySlice, true)
	assert.NotEmpty(t, step.Apply(testDoc).Failed)
}
