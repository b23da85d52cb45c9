package model

import (
	"log/slog"

	"github.com/dstotijn/go-notion"
)

// ToNotionBlock converts a block node to a Notion block. Children of the
// returned block are filled in by the serializer.
type ToNotionBlock = func(*Node) *notion.Block

// NotionSerializer converts documents to Notion blocks.
type NotionSerializer struct {
	// The node serialization functions.
	Nodes map[string]ToNotionBlock
	// Depth returns the nesting depth of a block, 1 being the top level. A
	// block deeper than the one before it becomes one of its children. When
	// nil, all blocks are top level.
	Depth func(*Node) int
}

// NotionRichText converts the inline content of a textblock to Notion rich
// text.
func NotionRichText(n *Node) []notion.RichText {
	result := []notion.RichText{}
	n.ForEach(func(node *Node, offset, index int) {
		var text string
		switch {
		case node.IsText():
			text = *node.Text
		case node.Type.Name == "hard_break":
			text = "\n"
		default:
			return
		}
		rt := notion.RichText{
			Type:      notion.RichTextTypeText,
			PlainText: text,
			Text:      &notion.Text{Content: text},
		}
		annotations := &notion.Annotations{}
		annotated := false
		for _, m := range node.Marks {
			switch m.Type.Name {
			case "em":
				annotations.Italic = true
				annotated = true
			case "strong":
				annotations.Bold = true
				annotated = true
			case "code":
				annotations.Code = true
				annotated = true
			case "link":
				if href, ok := m.Attrs["href"].(string); ok {
					rt.Text.Link = &notion.Link{URL: href}
				}
			}
		}
		if annotated {
			rt.Annotations = annotations
		}
		result = append(result, rt)
	})
	return result
}

func defaultParagraphBlockGenerator() ToNotionBlock {
	return func(n *Node) *notion.Block {
		return &notion.Block{
			Type:      notion.BlockTypeParagraph,
			Paragraph: &notion.RichTextBlock{Text: NotionRichText(n)},
		}
	}
}

func defaultHeadingBlockGenerator() ToNotionBlock {
	return func(n *Node) *notion.Block {
		heading := &notion.Heading{Text: NotionRichText(n)}
		level, _ := n.Attrs["level"].(int)
		switch level {
		case 0, 1:
			return &notion.Block{Type: notion.BlockTypeHeading1, Heading1: heading}
		case 2:
			return &notion.Block{Type: notion.BlockTypeHeading2, Heading2: heading}
		default:
			return &notion.Block{Type: notion.BlockTypeHeading3, Heading3: heading}
		}
	}
}

func defaultCodeBlockGenerator() ToNotionBlock {
	return func(n *Node) *notion.Block {
		text := n.TextContent()
		return &notion.Block{
			Type: notion.BlockTypeParagraph,
			Paragraph: &notion.RichTextBlock{Text: []notion.RichText{{
				Type:        notion.RichTextTypeText,
				Annotations: &notion.Annotations{Code: true},
				PlainText:   text,
				Text:        &notion.Text{Content: text},
			}}},
		}
	}
}

// Default ToNotion functions
var defaultToNotion = map[string]ToNotionBlock{
	"paragraph":  defaultParagraphBlockGenerator(),
	"heading":    defaultHeadingBlockGenerator(),
	"code_block": defaultCodeBlockGenerator(),
}

// AddDefaultToNotion fills in the default ToNotion function of the node
// types that don't define their own.
func AddDefaultToNotion(schema *Schema) *Schema {
	for _, n := range schema.Nodes {
		if n.Spec.ToNotion == nil {
			if fn, ok := defaultToNotion[n.Name]; ok {
				n.Spec.ToNotion = fn
			}
		}
	}
	return schema
}

// NotionSerializerFromSchema builds a serializer using the ToNotion
// functions in a schema's node specs.
func NotionSerializerFromSchema(schema *Schema) *NotionSerializer {
	nodes := make(map[string]ToNotionBlock)
	for _, n := range schema.Nodes {
		if n.Spec.ToNotion != nil {
			nodes[n.Name] = n.Spec.ToNotion
		}
	}
	return &NotionSerializer{Nodes: nodes}
}

// SerializeNode converts a single block to a Notion block, or returns nil
// when its type has no serializer.
func (s *NotionSerializer) SerializeNode(node *Node) *notion.Block {
	fn := s.Nodes[node.Type.Name]
	if fn == nil {
		slog.Debug("no Notion serializer for node type", "type", node.Type.Name)
		return nil
	}
	return fn(node)
}

type notionEntry struct {
	block    *notion.Block
	depth    int
	children []*notionEntry
}

// SerializePage converts the blocks of a fragment to the children of a
// Notion page, nesting them according to Depth.
func (s *NotionSerializer) SerializePage(fragment *Fragment) []notion.Block {
	var roots []*notionEntry
	var stack []*notionEntry
	fragment.ForEach(func(node *Node, offset, index int) {
		block := s.SerializeNode(node)
		if block == nil {
			return
		}
		depth := 1
		if s.Depth != nil {
			depth = s.Depth(node)
		}
		entry := &notionEntry{block: block, depth: depth}
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 && notionContainer(stack[len(stack)-1].block) != nil {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, entry)
		} else {
			roots = append(roots, entry)
		}
		stack = append(stack, entry)
	})
	return flattenNotion(roots)
}

func flattenNotion(entries []*notionEntry) []notion.Block {
	result := make([]notion.Block, 0, len(entries))
	for _, e := range entries {
		block := *e.block
		if len(e.children) > 0 {
			notionContainer(&block).Children = flattenNotion(e.children)
			block.HasChildren = true
		}
		result = append(result, block)
	}
	return result
}

// notionContainer returns the part of a block that can hold children.
func notionContainer(block *notion.Block) *notion.RichTextBlock {
	switch block.Type {
	case notion.BlockTypeParagraph:
		return block.Paragraph
	case notion.BlockTypeBulletedListItem:
		return block.BulletedListItem
	case notion.BlockTypeNumberedListItem:
		return block.NumberedListItem
	case notion.BlockTypeToggle:
		return block.Toggle
	}
	return nil
}
