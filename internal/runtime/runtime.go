package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/kobold/internal/models"
)

// ToolResult is the concrete record populated at tool-dispatch time. The
// design note it replaces is "runtime reflection to peek at anonymous
// tool-result objects": isError is a plain field here, never inferred by
// type-sniffing the result value at render time.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

func isErrorResult(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "error:")
}

func toolByName(tools []Tool, name string) Tool {
	for _, t := range tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Run drives the synchronous iterative tool-calling loop described in
// spec §4.8. conversation is the seed (normally a single user message
// carrying the task). Run returns the full conversation, including every
// assistant/tool message appended along the way, plus the StopReason the
// loop actually ended on (StopEndTurn for a clean finish, StopError/
// StopNotConfigured for a provider-level failure folded into the
// transcript rather than a Go error, or "" when the loop exhausted its
// iteration budget). Only a transport-level failure from provider.SendMessage
// itself is surfaced as a Go error; a provider's own error response is data,
// not a Go-level failure, so callers must inspect the returned StopReason
// to tell a completed step from a failed one.
func Run(ctx context.Context, provider Provider, tools []Tool, systemPrompt string, conversation []models.Message, opts AgentOptions, progress ProgressFunc) ([]models.Message, StopReason, error) {
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 1
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		select {
		case <-ctx.Done():
			return conversation, "", ctx.Err()
		default:
		}

		emit(progress, ProgressInfo, fmt.Sprintf("iteration %d", iteration))

		resp, err := provider.SendMessage(ctx, conversation, tools, systemPrompt)
		if err != nil {
			emit(progress, ProgressError, err.Error())
			return conversation, "", err
		}

		conversation = append(conversation, models.Message{
			Role:    models.RoleAssistant,
			Content: models.NewBlocksContent(resp.Content),
		})

		switch resp.StopReason {
		case StopToolUse:
			results, allFailed := dispatchTools(ctx, tools, opts.WorkingDirectory, resp.Content, progress)
			conversation = append(conversation, toolResultMessage(results))

			if iteration >= maxIterations {
				emit(progress, ProgressWarning, "max iterations reached")
				return conversation, "", nil
			}
			if allFailed {
				emit(progress, ProgressWarning, "All tool executions failed")
			}
			continue

		case StopEndTurn:
			for _, b := range resp.Content {
				if b.Kind == models.BlockText {
					emit(progress, ProgressAssistantFinal, b.Text)
				}
			}
			return conversation, StopEndTurn, nil

		case StopError:
			conversation = ensureErrorText(conversation, resp.ErrorMessage, "provider error")
			emit(progress, ProgressError, resp.ErrorMessage)
			return conversation, StopError, nil

		case StopNotConfigured:
			conversation = ensureErrorText(conversation, resp.ErrorMessage, "provider not configured")
			emit(progress, ProgressError, resp.ErrorMessage)
			return conversation, StopNotConfigured, nil

		default:
			emit(progress, ProgressWarning, fmt.Sprintf("unrecognized stop reason %q", resp.StopReason))
			return conversation, "", nil
		}
	}

	emit(progress, ProgressWarning, "max iterations reached")
	return conversation, "", nil
}

// dispatchTools executes every tool_use block in declared order, emitting
// tool_call/tool_result callbacks, and reports whether every result was an
// error (case-insensitive "Error:" prefix).
func dispatchTools(ctx context.Context, tools []Tool, workingDirectory string, blocks []models.ContentBlock, progress ProgressFunc) ([]ToolResult, bool) {
	var results []ToolResult
	for _, b := range blocks {
		if b.Kind != models.BlockToolUse {
			continue
		}

		emit(progress, ProgressToolCall, b.Name)

		var content string
		tool := toolByName(tools, b.Name)
		if tool == nil {
			content = "Error: unknown tool " + b.Name
		} else {
			out, err := tool.Execute(ctx, workingDirectory, b.Input)
			if err != nil {
				content = "Error: " + err.Error()
			} else {
				content = out
			}
		}

		res := ToolResult{ToolUseID: b.ID, Content: content, IsError: isErrorResult(content)}
		results = append(results, res)
		emit(progress, ProgressToolResult, content)
	}

	allFailed := len(results) > 0
	for _, r := range results {
		if !r.IsError {
			allFailed = false
			break
		}
	}
	return results, allFailed
}

func toolResultMessage(results []ToolResult) models.Message {
	blocks := make([]models.ContentBlock, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, models.NewToolResultBlock(r.ToolUseID, r.Content, r.IsError))
	}
	return models.Message{Role: models.RoleUser, Content: models.NewBlocksContent(blocks)}
}

// ensureErrorText guarantees the just-appended assistant message carries a
// text block describing the error, synthesizing one if the provider didn't
// supply any text content.
func ensureErrorText(conversation []models.Message, errMsg, fallback string) []models.Message {
	if len(conversation) == 0 {
		return conversation
	}
	last := &conversation[len(conversation)-1]
	for _, b := range last.Content.Blocks {
		if b.Kind == models.BlockText {
			return conversation
		}
	}
	msg := errMsg
	if msg == "" {
		msg = fallback
	}
	last.Content.Blocks = append(last.Content.Blocks, models.NewTextBlock(msg))
	return conversation
}

// RunWithStreaming prefers SendMessageStreaming when opts.EnableStreaming
// and the provider supports it, treating the accumulated chunk text as an
// end_turn response (streaming does not support tool calls). On a
// streaming error it falls back to the synchronous loop when
// opts.StreamingFallbackToSync is set, else returns the error.
func RunWithStreaming(ctx context.Context, provider Provider, tools []Tool, systemPrompt string, conversation []models.Message, opts AgentOptions, progress ProgressFunc) ([]models.Message, error) {
	streaming, ok := provider.(StreamingProvider)
	if !opts.EnableStreaming || !ok {
		conv, _, err := Run(ctx, provider, tools, systemPrompt, conversation, opts, progress)
		return conv, err
	}

	chunks, resp, err := streaming.SendMessageStreaming(ctx, conversation, tools, systemPrompt)
	if err != nil {
		if opts.StreamingFallbackToSync {
			emit(progress, ProgressWarning, "streaming failed, falling back to sync: "+err.Error())
			conv, _, runErr := Run(ctx, provider, tools, systemPrompt, conversation, opts, progress)
			return conv, runErr
		}
		return conversation, err
	}

	var text strings.Builder
	if chunks != nil {
		for c := range chunks {
			text.WriteString(c.Text)
			emit(progress, ProgressAssistantStream, c.Text)
		}
	}

	accumulated := text.String()
	if resp == nil {
		resp = &Response{StopReason: StopEndTurn, Content: []models.ContentBlock{models.NewTextBlock(accumulated)}}
	} else if len(resp.Content) == 0 && accumulated != "" {
		resp.Content = []models.ContentBlock{models.NewTextBlock(accumulated)}
	}

	conversation = append(conversation, models.Message{
		Role:    models.RoleAssistant,
		Content: models.NewBlocksContent(resp.Content),
	})
	for _, b := range resp.Content {
		if b.Kind == models.BlockText {
			emit(progress, ProgressAssistantFinal, b.Text)
		}
	}
	return conversation, nil
}
