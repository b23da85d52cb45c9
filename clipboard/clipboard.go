// Package clipboard converts documents from and to the HTML exchanged
// through copy and paste.
package clipboard

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shodgson/prosemirror-numbering/indexing"
	"github.com/shodgson/prosemirror-numbering/model"
	"golang.org/x/net/html"
)

// ParseHTML reads pasted HTML into a document of the given schema. The HTML
// is sanitized first, and the numbered list items of the result are indexed.
func ParseHTML(schema *model.Schema, r io.Reader) (*model.Node, error) {
	clean := Policy.SanitizeReader(r)
	dom, err := html.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc, err := model.DOMParserFromSchema(schema).Parse(dom)
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed pasted html", "blocks", doc.ChildCount())
	return indexing.Normalize(doc)
}

// ParseHTMLString is ParseHTML on a string.
func ParseHTMLString(schema *model.Schema, s string) (*model.Node, error) {
	return ParseHTML(schema, strings.NewReader(s))
}

// Serialize writes the content of a document as HTML.
func Serialize(schema *model.Schema, doc *model.Node, w io.Writer) error {
	return model.DOMSerializerFromSchema(schema).Render(doc.Content, w)
}

// SerializeString returns the content of a document as HTML.
func SerializeString(schema *model.Schema, doc *model.Node) (string, error) {
	var b strings.Builder
	if err := Serialize(schema, doc, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
