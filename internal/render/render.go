// Package render converts documents between the formats supported by the
// blocknum command, renumbering their list items on the way.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shodgson/prosemirror-numbering/clipboard"
	"github.com/shodgson/prosemirror-numbering/indexing"
	"github.com/shodgson/prosemirror-numbering/internal/config"
	"github.com/shodgson/prosemirror-numbering/markdown"
	"github.com/shodgson/prosemirror-numbering/model"
	"github.com/shodgson/prosemirror-numbering/schema/list"
	"github.com/yuin/goldmark"
)

// Format is a document format.
type Format string

// Supported formats. Notion is output only.
const (
	HTML     Format = "html"
	Markdown Format = "markdown"
	JSON     Format = "json"
	Notion   Format = "notion"
)

// ParseFormat checks a format name. "md" is accepted for Markdown.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "html", "htm":
		return HTML, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "notion":
		return Notion, nil
	}
	return "", fmt.Errorf("unknown format %q", name)
}

// FormatOf guesses the format of a file from its extension, defaulting to
// HTML.
func FormatOf(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil && f != Notion {
		return f
	}
	return HTML
}

// Renderer reads and writes documents of one schema.
type Renderer struct {
	Schema *model.Schema
	Config config.RenderConfig
}

// New creates a renderer for the list schema configured by cfg.
func New(cfg config.RenderConfig) (*Renderer, error) {
	schema, err := list.NewSchema(list.Options{
		BlockContentClass:  cfg.BlockContentClass,
		InlineContentClass: cfg.InlineContentClass,
	})
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return &Renderer{Schema: schema, Config: cfg}, nil
}

// Read parses a document and numbers its list items.
func (r *Renderer) Read(format Format, data []byte) (*model.Node, error) {
	var doc *model.Node
	var err error
	switch format {
	case HTML:
		return clipboard.ParseHTML(r.Schema, bytes.NewReader(data))
	case Markdown:
		doc, err = markdown.ParseMarkdown(goldmark.DefaultParser(), markdown.DefaultNodeMapper, data, r.Schema)
	case JSON:
		var raw interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		doc, err = model.NodeFromJSON(r.Schema, raw)
	default:
		return nil, fmt.Errorf("can't read %s documents", format)
	}
	if err != nil {
		return nil, err
	}
	return indexing.Normalize(doc)
}

// Write outputs a document.
func (r *Renderer) Write(format Format, doc *model.Node, w io.Writer) error {
	switch format {
	case HTML:
		return clipboard.Serialize(r.Schema, doc, w)
	case Markdown:
		out := markdown.DefaultSerializer.Serialize(doc, markdown.Options{TightLists: r.Config.TightLists})
		_, err := io.WriteString(w, out+"\n")
		return err
	case JSON:
		return writeJSON(w, doc.ToJSON())
	case Notion:
		serializer := model.NotionSerializerFromSchema(r.Schema)
		serializer.Depth = list.NotionDepth
		return writeJSON(w, serializer.SerializePage(doc.Content))
	}
	return fmt.Errorf("can't write %s documents", format)
}

// Convert reads a document in one format and writes it in another.
func (r *Renderer) Convert(from, to Format, data []byte, w io.Writer) error {
	doc, err := r.Read(from, data)
	if err != nil {
		return err
	}
	return r.Write(to, doc, w)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
