// Package providers supplies the one in-repo runtime.Provider
// implementation: a subprocess adapter that shells out to a configured
// model-provider CLI and exchanges a small JSON envelope over stdin/stdout.
// Model-provider HTTP clients are out of scope; this package is the
// grounded stand-in for that external collaborator, shaped after the
// teacher's internal/agent/invoker.go Invoke (exec.CommandContext,
// captured stdout/stderr, JSON-decoded response) and
// internal/claude/invoker.go's SetCleanEnv/timeout handling.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/harrison/kobold/internal/models"
	"github.com/harrison/kobold/internal/runtime"
)

// wireRequest is the envelope written to the subprocess's stdin.
type wireRequest struct {
	SystemPrompt string           `json:"systemPrompt"`
	Conversation []models.Message `json:"conversation"`
	ToolNames    []string         `json:"toolNames"`
}

// wireResponse is the envelope a conforming subprocess writes to stdout.
type wireResponse struct {
	StopReason   string                `json:"stopReason"`
	Content      []models.ContentBlock `json:"content"`
	ErrorMessage string                `json:"errorMessage"`
	TokensUsed   int                   `json:"tokensUsed"`
}

// Subprocess invokes Command with Args for every SendMessage call, passing
// the conversation as JSON on stdin and decoding a wireResponse from
// stdout. One Subprocess is bound to a single named provider (its Name
// field feeds the circuit breaker and error classifier).
type Subprocess struct {
	Name    string
	Command string
	Args    []string
	Timeout time.Duration
}

// New returns a Subprocess provider. A zero Timeout uses spec §5's default
// 600s per-provider request timeout.
func New(name, command string, args []string, timeout time.Duration) *Subprocess {
	if timeout <= 0 {
		timeout = 600 * time.Second
	}
	return &Subprocess{Name: name, Command: command, Args: args, Timeout: timeout}
}

// SendMessage implements runtime.Provider.
func (s *Subprocess) SendMessage(ctx context.Context, conversation []models.Message, tools []runtime.Tool, systemPrompt string) (*runtime.Response, error) {
	req := wireRequest{SystemPrompt: systemPrompt, Conversation: conversation, ToolNames: toolNames(tools)}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", s.Name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s: request timed out after %s", s.Name, s.Timeout)
	}
	if runErr != nil {
		msg := stderr.String()
		if msg == "" {
			msg = runErr.Error()
		}
		return nil, fmt.Errorf("%s: %s", s.Name, msg)
	}

	var resp wireResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", s.Name, err)
	}

	return &runtime.Response{
		StopReason:   runtime.StopReason(resp.StopReason),
		Content:      resp.Content,
		ErrorMessage: resp.ErrorMessage,
		TokensUsed:   resp.TokensUsed,
	}, nil
}

func toolNames(tools []runtime.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name())
	}
	return names
}
