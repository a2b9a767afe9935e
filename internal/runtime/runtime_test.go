package runtime

import (
	"context"
	"testing"

	"github.com/harrison/kobold/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	responses []*Response
	calls     int
}

func (p *scriptedProvider) SendMessage(ctx context.Context, conversation []models.Message, tools []Tool, systemPrompt string) (*Response, error) {
	r := p.responses[p.calls]
	p.calls++
	return r, nil
}

type fakeTool struct {
	name   string
	result string
}

func (f *fakeTool) Name() string { return f.name }
func (f *fakeTool) Execute(ctx context.Context, workingDirectory string, input []byte) (string, error) {
	return f.result, nil
}

func TestRunS1HappyPathSingleToolCall(t *testing.T) {
	provider := &scriptedProvider{responses: []*Response{
		{StopReason: StopToolUse, Content: []models.ContentBlock{
			models.NewToolUseBlock("tu1", "write_file", nil),
		}},
		{StopReason: StopEndTurn, Content: []models.ContentBlock{models.NewTextBlock("Done")}},
	}}
	tools := []Tool{&fakeTool{name: "write_file", result: "OK: wrote /w/a.txt"}}

	var events []string
	progress := func(kind ProgressType, content string) {
		events = append(events, string(kind)+":"+content)
	}

	seed := []models.Message{{Role: models.RoleUser, Content: models.NewTextContent("task")}}
	conv, stop, err := Run(context.Background(), provider, tools, "sys", seed, AgentOptions{MaxIterations: 5}, progress)
	require.NoError(t, err)
	assert.Equal(t, StopEndTurn, stop)

	require.Len(t, conv, 4)
	assert.Equal(t, models.RoleUser, conv[0].Role)
	assert.Equal(t, models.RoleAssistant, conv[1].Role)
	require.Len(t, conv[1].Content.Blocks, 1)
	assert.Equal(t, models.BlockToolUse, conv[1].Content.Blocks[0].Kind)
	assert.Equal(t, models.RoleUser, conv[2].Role)
	require.Len(t, conv[2].Content.Blocks, 1)
	assert.Equal(t, models.BlockToolResult, conv[2].Content.Blocks[0].Kind)
	assert.Equal(t, "OK: wrote /w/a.txt", conv[2].Content.Blocks[0].ToolContent)
	assert.False(t, conv[2].Content.Blocks[0].IsError)
	assert.Equal(t, models.RoleAssistant, conv[3].Role)
	assert.Equal(t, "Done", conv[3].Content.Text())

	assert.Contains(t, events, "info:iteration 1")
	assert.Contains(t, events, "tool_call:write_file")
	assert.Contains(t, events, "tool_result:OK: wrote /w/a.txt")
	assert.Contains(t, events, "info:iteration 2")
	assert.Contains(t, events, "assistant_final:Done")
}

func TestRunS2AllToolsFailOneFinalChance(t *testing.T) {
	provider := &scriptedProvider{responses: []*Response{
		{StopReason: StopToolUse, Content: []models.ContentBlock{
			models.NewToolUseBlock("tu1", "read_file", nil),
			models.NewToolUseBlock("tu2", "write_file", nil),
		}},
		{StopReason: StopEndTurn, Content: []models.ContentBlock{models.NewTextBlock("Sorry, cannot proceed")}},
	}}
	tools := []Tool{
		&fakeTool{name: "read_file", result: "Error: file not found"},
		&fakeTool{name: "write_file", result: "Error: permission denied"},
	}

	var events []string
	progress := func(kind ProgressType, content string) {
		events = append(events, string(kind)+":"+content)
	}

	seed := []models.Message{{Role: models.RoleUser, Content: models.NewTextContent("task")}}
	conv, stop, err := Run(context.Background(), provider, tools, "sys", seed, AgentOptions{MaxIterations: 5}, progress)
	require.NoError(t, err)
	assert.Equal(t, StopEndTurn, stop)

	assert.Contains(t, events, "warning:All tool executions failed")
	last := conv[len(conv)-1]
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.Equal(t, "Sorry, cannot proceed", last.Content.Text())
}

func TestRunMaxIterationsReachedEmitsWarning(t *testing.T) {
	provider := &scriptedProvider{responses: []*Response{
		{StopReason: StopToolUse, Content: []models.ContentBlock{models.NewToolUseBlock("tu1", "noop", nil)}},
	}}
	tools := []Tool{&fakeTool{name: "noop", result: "OK"}}

	var events []string
	progress := func(kind ProgressType, content string) {
		events = append(events, string(kind)+":"+content)
	}

	seed := []models.Message{{Role: models.RoleUser, Content: models.NewTextContent("task")}}
	_, stop, err := Run(context.Background(), provider, tools, "sys", seed, AgentOptions{MaxIterations: 1}, progress)
	require.NoError(t, err)
	assert.Equal(t, StopReason(""), stop)
	assert.Contains(t, events, "warning:max iterations reached")
}

func TestRunUnknownToolSynthesizesErrorResult(t *testing.T) {
	provider := &scriptedProvider{responses: []*Response{
		{StopReason: StopToolUse, Content: []models.ContentBlock{models.NewToolUseBlock("tu1", "missing_tool", nil)}},
		{StopReason: StopEndTurn, Content: []models.ContentBlock{models.NewTextBlock("done")}},
	}}
	seed := []models.Message{{Role: models.RoleUser, Content: models.NewTextContent("task")}}
	conv, _, err := Run(context.Background(), provider, nil, "sys", seed, AgentOptions{MaxIterations: 5}, nil)
	require.NoError(t, err)

	toolMsg := conv[2]
	require.Len(t, toolMsg.Content.Blocks, 1)
	assert.True(t, toolMsg.Content.Blocks[0].IsError)
	assert.Contains(t, toolMsg.Content.Blocks[0].ToolContent, "missing_tool")
}

func TestRunErrorStopReasonSynthesizesTextBlock(t *testing.T) {
	provider := &scriptedProvider{responses: []*Response{
		{StopReason: StopError, Content: nil, ErrorMessage: "rate limited"},
	}}
	seed := []models.Message{{Role: models.RoleUser, Content: models.NewTextContent("task")}}
	conv, stop, err := Run(context.Background(), provider, nil, "sys", seed, AgentOptions{MaxIterations: 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, StopError, stop)

	last := conv[len(conv)-1]
	assert.Equal(t, "rate limited", last.Content.Text())
}

func TestRunWithStreamingFallsBackToSyncOnError(t *testing.T) {
	provider := &fallbackStreamProvider{
		syncResp: &Response{StopReason: StopEndTurn, Content: []models.ContentBlock{models.NewTextBlock("ok via sync")}},
	}
	seed := []models.Message{{Role: models.RoleUser, Content: models.NewTextContent("task")}}

	var warned bool
	progress := func(kind ProgressType, content string) {
		if kind == ProgressWarning {
			warned = true
		}
	}

	conv, err := RunWithStreaming(context.Background(), provider, nil, "sys", seed, AgentOptions{MaxIterations: 3, EnableStreaming: true, StreamingFallbackToSync: true}, progress)
	require.NoError(t, err)
	assert.True(t, warned)
	assert.Equal(t, "ok via sync", conv[len(conv)-1].Content.Text())
}

type fallbackStreamProvider struct {
	syncResp *Response
}

func (p *fallbackStreamProvider) SendMessage(ctx context.Context, conversation []models.Message, tools []Tool, systemPrompt string) (*Response, error) {
	return p.syncResp, nil
}

func (p *fallbackStreamProvider) SendMessageStreaming(ctx context.Context, conversation []models.Message, tools []Tool, systemPrompt string) (<-chan StreamChunk, *Response, error) {
	return nil, nil, assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "stream unavailable" }
