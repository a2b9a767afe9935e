package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTextVariant(t *testing.T) {
	c := NewTextContent("hello")
	assert.Equal(t, "hello", c.Text())
}

func TestContentBlocksVariantJoinsTextAndToolResultBlocks(t *testing.T) {
	c := NewBlocksContent([]ContentBlock{
		NewTextBlock("first"),
		NewToolUseBlock("id1", "write_file", nil),
		NewToolResultBlock("id1", "second", false),
	})
	assert.Equal(t, "first\nsecond", c.Text())
}

func TestContentOpaqueVariantTextFallsBackToEmpty(t *testing.T) {
	c := NewOpaqueContent(json.RawMessage(`{"anything":true}`))
	assert.Equal(t, "", c.Text())
}

func TestContentBlockToolResultCarriesIsError(t *testing.T) {
	b := NewToolResultBlock("id1", "Error: boom", true)
	assert.True(t, b.IsError)
	assert.Equal(t, "Error: boom", b.ToolContent)
	assert.Equal(t, "id1", b.ToolUseID)
}

func TestContentRoundTripsThroughJSON(t *testing.T) {
	original := NewBlocksContent([]ContentBlock{
		NewToolUseBlock("id1", "read_file", json.RawMessage(`{"path":"a.go"}`)),
		NewToolResultBlock("id1", "contents of a.go", false),
	})
	data, err := json.Marshal(original)
	assert.NoError(t, err)

	var restored Content
	assert.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, original, restored)
}
