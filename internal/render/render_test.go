package render

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shodgson/prosemirror-numbering/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T, cfg config.RenderConfig) *Renderer {
	t.Helper()
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func convert(t *testing.T, r *Renderer, from, to Format, input string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Convert(from, to, []byte(input), &buf))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"html": HTML, "HTM": HTML, "md": Markdown, "markdown": Markdown,
		"json": JSON, "notion": Notion,
	} {
		got, err := ParseFormat(name)
		assert.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseFormat("docx")
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, Markdown, FormatOf("notes.md"))
	assert.Equal(t, JSON, FormatOf("/tmp/doc.JSON"))
	assert.Equal(t, HTML, FormatOf("page.html"))
	assert.Equal(t, HTML, FormatOf("page.notion"))
	assert.Equal(t, HTML, FormatOf(""))
}

func TestMarkdownToHTML(t *testing.T) {
	r := newRenderer(t, config.RenderConfig{})
	out := convert(t, r, Markdown, HTML, "1. one\n2. two\n\n* x\n")
	assert.Equal(t,
		`<div class="blockContent" data-content-type="numberedListItem" data-index="1" data-level="1" data-num-char="1"><p class="inlineContent">one</p></div>`+
			`<div class="blockContent" data-content-type="numberedListItem" data-index="2" data-level="1" data-num-char="2"><p class="inlineContent">two</p></div>`+
			`<div class="blockContent" data-content-type="bulletListItem" data-level="1"><p class="inlineContent">x</p></div>`,
		out)
}

func TestHTMLClasses(t *testing.T) {
	r := newRenderer(t, config.RenderConfig{BlockContentClass: "bn-block", InlineContentClass: "bn-inline"})
	out := convert(t, r, HTML, HTML, "<ol><li>A</li></ol>")
	assert.Equal(t,
		`<div class="blockContent bn-block" data-content-type="numberedListItem" data-index="1" data-level="1" data-num-char="1"><p class="inlineContent bn-inline">A</p></div>`,
		out)
}

func TestHTMLToMarkdown(t *testing.T) {
	r := newRenderer(t, config.RenderConfig{})
	assert.Equal(t, "1. A\n\n2. B\n", convert(t, r, HTML, Markdown, "<ol><li>A</li><li>B</li></ol>"))

	r = newRenderer(t, config.RenderConfig{TightLists: true})
	assert.Equal(t, "1. A\n2. B\n", convert(t, r, HTML, Markdown, "<ol><li>A</li><li>B</li></ol>"))
}

func TestJSON(t *testing.T) {
	r := newRenderer(t, config.RenderConfig{})
	input := `{"type":"doc","content":[
		{"type":"numberedListItem","attrs":{"level":"2"},"content":[{"type":"text","text":"a"}]},
		{"type":"numberedListItem","attrs":{"level":"2","index":7},"content":[{"type":"text","text":"b"}]}
	]}`
	out := convert(t, r, JSON, JSON, input)

	var decoded struct {
		Content []struct {
			Attrs map[string]interface{} `json:"attrs"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Content, 2)
	assert.Equal(t, 1.0, decoded.Content[0].Attrs["index"])
	assert.Equal(t, 2.0, decoded.Content[1].Attrs["index"])
	assert.Equal(t, "2", decoded.Content[1].Attrs["level"])

	_, err := r.Read(JSON, []byte("{"))
	assert.Error(t, err)
}

func TestNotion(t *testing.T) {
	r := newRenderer(t, config.RenderConfig{})
	out := convert(t, r, Markdown, Notion, "1. a\n   1. b\n2. c\n")

	var blocks []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	assert.Len(t, blocks, 2)
	assert.Contains(t, out, "numbered_list_item")

	_, err := r.Read(Notion, []byte("[]"))
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("1. a\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() error {
			calls.Add(1)
			return nil
		})
	}()

	// The watcher starts asynchronously: keep writing until it notices.
	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("1. a\n", 2)), 0o644))
		time.Sleep(200 * time.Millisecond)
	}
	assert.NotZero(t, calls.Load())

	// Writes to other files are ignored.
	time.Sleep(300 * time.Millisecond)
	seen := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, seen, calls.Load())

	cancel()
	assert.NoError(t, <-done)
}
