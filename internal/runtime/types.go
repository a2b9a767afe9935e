// Package runtime implements the Agent Runtime: the iterative tool-calling
// loop that drives one conversation against an LLM provider until it
// reaches an end_turn, an error, or its iteration budget.
//
// The provider/tool contracts here are new relative to the teacher, which
// invokes the claude CLI as a subprocess per task rather than running an
// in-process tool loop; the shape of request/response handling (timeout
// context, rate-limit-aware retry, raw-output-to-structured-content
// parsing) is grounded on internal/claude/invoker.go's Invoke/ParseResponse
// and internal/agent/invoker.go's Invoke/ParseClaudeOutput.
package runtime

import (
	"context"

	"github.com/harrison/kobold/internal/models"
)

// StopReason is the provider's signal for why it stopped generating.
type StopReason string

const (
	StopToolUse       StopReason = "tool_use"
	StopEndTurn       StopReason = "end_turn"
	StopError         StopReason = "error"
	StopNotConfigured StopReason = "NotConfigured"
)

// Response is what a Provider returns for one SendMessage call.
type Response struct {
	StopReason   StopReason
	Content      []models.ContentBlock
	ErrorMessage string
	TokensUsed   int
}

// Provider is the LLM capability the runtime drives.
type Provider interface {
	SendMessage(ctx context.Context, conversation []models.Message, tools []Tool, systemPrompt string) (*Response, error)
}

// StreamChunk is one piece of incremental text from a streaming response.
type StreamChunk struct {
	Text string
}

// StreamingProvider is an optional capability; not every Provider supports it.
type StreamingProvider interface {
	SendMessageStreaming(ctx context.Context, conversation []models.Message, tools []Tool, systemPrompt string) (<-chan StreamChunk, *Response, error)
}

// Tool is an external capability invokable by name from within the loop.
type Tool interface {
	Name() string
	Execute(ctx context.Context, workingDirectory string, input []byte) (string, error)
}

// AgentOptions configures one Run of the loop.
type AgentOptions struct {
	WorkingDirectory        string
	Verbose                 bool
	MaxIterations           int
	EnableStreaming         bool
	StreamingFallbackToSync bool
	ModelDepth              string
}

// ProgressType classifies one progress callback emission.
type ProgressType string

const (
	ProgressInfo            ProgressType = "info"
	ProgressWarning         ProgressType = "warning"
	ProgressError           ProgressType = "error"
	ProgressToolCall        ProgressType = "tool_call"
	ProgressToolResult      ProgressType = "tool_result"
	ProgressAssistant       ProgressType = "assistant"
	ProgressAssistantStream ProgressType = "assistant_stream"
	ProgressAssistantFinal  ProgressType = "assistant_final"
)

// ProgressFunc receives loop progress. The runtime calls it synchronously
// on the loop's goroutine, so the loop waits for each call to return; a nil
// ProgressFunc is a no-op.
type ProgressFunc func(kind ProgressType, content string)

func emit(fn ProgressFunc, kind ProgressType, content string) {
	if fn == nil {
		return
	}
	fn(kind, content)
}
