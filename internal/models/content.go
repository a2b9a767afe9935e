package models

import (
	"bytes"
	"encoding/json"
)

// ContentKind tags which variant of Content is populated.
type ContentKind string

const (
	ContentText   ContentKind = "text"
	ContentBlocks ContentKind = "blocks"
	ContentOpaque ContentKind = "opaque"
)

// Content is a tagged variant over the shapes a provider or a persisted
// message payload may take: a bare string, a list of typed ContentBlocks,
// or an arbitrary JSON payload preserved verbatim for forward compatibility.
type Content struct {
	Kind   ContentKind     `json:"kind"`
	Text_  string          `json:"text,omitempty"`
	Blocks []ContentBlock  `json:"blocks,omitempty"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// NewTextContent builds a Text-variant Content.
func NewTextContent(text string) Content {
	return Content{Kind: ContentText, Text_: text}
}

// NewBlocksContent builds a Blocks-variant Content.
func NewBlocksContent(blocks []ContentBlock) Content {
	return Content{Kind: ContentBlocks, Blocks: blocks}
}

// NewOpaqueContent builds an Opaque-variant Content, preserving raw bytes.
func NewOpaqueContent(raw json.RawMessage) Content {
	return Content{Kind: ContentOpaque, Raw: raw}
}

// Text extracts a flat text summary by pattern-matching on the variant; it
// never inspects Go runtime types, and falls back to "" for Opaque payloads
// it cannot summarize.
func (c Content) Text() string {
	switch c.Kind {
	case ContentText:
		return c.Text_
	case ContentBlocks:
		var buf bytes.Buffer
		for _, b := range c.Blocks {
			var text string
			switch b.Kind {
			case BlockText:
				text = b.Text
			case BlockToolResult:
				text = b.ToolContent
			default:
				continue
			}
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(text)
		}
		return buf.String()
	default:
		return ""
	}
}

// BlockKind tags which variant of ContentBlock is populated.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
)

// ContentBlock is a tagged variant over the block shapes a provider response
// or tool dispatch may produce.
type ContentBlock struct {
	Kind BlockKind `json:"kind"`

	// Text
	Text string `json:"text,omitempty"`

	// ToolUse
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// ToolResult
	ToolUseID    string `json:"toolUseId,omitempty"`
	ToolContent  string `json:"toolContent,omitempty"`
	IsError      bool   `json:"isError,omitempty"`
}

// NewTextBlock builds a Text-variant ContentBlock.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

// NewToolUseBlock builds a ToolUse-variant ContentBlock.
func NewToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Kind: BlockToolUse, ID: id, Name: name, Input: input}
}

// NewToolResultBlock builds a ToolResult-variant ContentBlock.
func NewToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Kind: BlockToolResult, ToolUseID: toolUseID, ToolContent: content, IsError: isError}
}
