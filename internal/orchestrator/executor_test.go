package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/kobold/internal/models"
	"github.com/harrison/kobold/internal/runtime"
)

type stubProvider struct {
	resp *runtime.Response
	err  error
}

func (s *stubProvider) SendMessage(ctx context.Context, conversation []models.Message, tools []runtime.Tool, systemPrompt string) (*runtime.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func TestExecuteStepMarksCompletedOnEndTurn(t *testing.T) {
	e := &Executor{
		Provider: &stubProvider{resp: &runtime.Response{
			StopReason: runtime.StopEndTurn,
			Content:    []models.ContentBlock{models.NewTextBlock("all done")},
		}},
		Options: runtime.AgentOptions{MaxIterations: 3},
	}

	step := models.Step{Index: 1, Title: "write readme", Description: "add a readme"}
	out, err := e.ExecuteStep(context.Background(), "proj", step)

	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, out.Status)
	assert.Equal(t, "all done", out.Output)
	assert.NotNil(t, out.StartedAt)
	assert.NotNil(t, out.CompletedAt)
}

func TestExecuteStepMarksFailedOnProviderError(t *testing.T) {
	e := &Executor{
		Provider: &stubProvider{err: errors.New("401 unauthorized")},
		Options:  runtime.AgentOptions{MaxIterations: 3},
	}

	step := models.Step{Index: 1, Title: "t", Description: "d"}
	out, err := e.ExecuteStep(context.Background(), "proj", step)

	require.Error(t, err)
	assert.Equal(t, models.StepFailed, out.Status)
	assert.Contains(t, out.Output, "401 unauthorized")
}

func TestExecuteStepMarksFailedOnProviderStopError(t *testing.T) {
	e := &Executor{
		Provider: &stubProvider{resp: &runtime.Response{
			StopReason:   runtime.StopError,
			ErrorMessage: "invalid api key",
		}},
		Options: runtime.AgentOptions{MaxIterations: 3},
	}

	step := models.Step{Index: 1, Title: "t", Description: "d"}
	out, err := e.ExecuteStep(context.Background(), "proj", step)

	require.NoError(t, err)
	assert.Equal(t, models.StepFailed, out.Status)
	assert.Contains(t, out.Output, "invalid api key")
}

// flakyProvider fails with a transient error the first N calls, then
// succeeds, exercising Executor's retry loop.
type flakyProvider struct {
	failuresLeft int
	ok           *runtime.Response
}

func (f *flakyProvider) SendMessage(ctx context.Context, conversation []models.Message, tools []runtime.Tool, systemPrompt string) (*runtime.Response, error) {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return &runtime.Response{StopReason: runtime.StopError, ErrorMessage: "503 service unavailable"}, nil
	}
	return f.ok, nil
}

func TestExecuteStepRetriesTransientFailureThenCompletes(t *testing.T) {
	e := &Executor{
		Provider: &flakyProvider{
			failuresLeft: 1,
			ok: &runtime.Response{
				StopReason: runtime.StopEndTurn,
				Content:    []models.ContentBlock{models.NewTextBlock("recovered")},
			},
		},
		Options:      runtime.AgentOptions{MaxIterations: 3},
		ProviderName: "openai",
		MaxAttempts:  2,
	}

	step := models.Step{Index: 1, Title: "t", Description: "d"}
	out, err := e.ExecuteStep(context.Background(), "proj", step)

	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, out.Status)
	assert.Equal(t, "recovered", out.Output)
}
