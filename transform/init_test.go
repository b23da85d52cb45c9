package transform_test

import "github.com/shodgson/prosemirror-numbering/test/builder"

var (
	schema     = builder.Schema
	doc        = builder.Doc
	p          = builder.P
	h1         = builder.H1
	blockquote = builder.Blockquote
	li         = builder.Li
	li2        = builder.Li2
	bl         = builder.Bl
	em         = builder.Em
	img        = builder.Img
)
