// Package orchestrator adapts the Agent Runtime's conversation loop to the
// Scheduler's StepExecutor contract: one Step becomes one conversation, and
// the loop's final transcript becomes the step's recorded output.
package orchestrator

import (
	"context"
	"time"

	"github.com/harrison/kobold/internal/circuit"
	"github.com/harrison/kobold/internal/models"
	"github.com/harrison/kobold/internal/runtime"
	"github.com/harrison/kobold/internal/scheduler"
)

// Executor runs a single Plan Step through runtime.Run against a fixed
// Provider/Tools/system prompt, satisfying internal/scheduler.StepExecutor.
// A StopError/StopNotConfigured outcome is retried (subject to Breaker and
// MaxAttempts) using the same classify-then-backoff policy as
// internal/scheduler.Decide/Backoff, rather than being silently recorded as
// a completed step.
type Executor struct {
	Provider     runtime.Provider
	Tools        []runtime.Tool
	SystemPrompt string
	Options      runtime.AgentOptions
	Progress     runtime.ProgressFunc

	// ProviderName identifies this Executor's provider to the Breaker.
	ProviderName string
	Breaker      *circuit.Breaker
	// MaxAttempts bounds retries of a transient provider failure; <= 0
	// means a single attempt with no retry.
	MaxAttempts int
}

// ExecuteStep runs step.Title+step.Description as the opening user turn
// and records the loop's outcome onto a copy of step.
func (e *Executor) ExecuteStep(ctx context.Context, projectID string, step models.Step) (models.Step, error) {
	started := time.Now()
	step.StartedAt = &started
	step.Status = models.StepInProgress

	conversation := []models.Message{
		{Role: models.RoleUser, Content: models.NewTextContent(step.Title + "\n\n" + step.Description)},
	}

	maxAttempts := e.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var messages []models.Message
	var stop runtime.StopReason
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		messages, stop, err = runtime.Run(ctx, e.Provider, e.Tools, e.SystemPrompt, conversation, e.Options, e.Progress)
		if err == nil && stop != runtime.StopError && stop != runtime.StopNotConfigured {
			break
		}

		failureText := providerFailureText(err, messages)
		// ProviderNotConfigured is a setup defect, not a flaky call: it is
		// not classified as transient by internal/classify, so Decide
		// always returns ActionStepFailed for it without ever needing to
		// special-case the stop reason here, but it still counts toward
		// the breaker like any other recorded failure.
		action := scheduler.Decide(e.Breaker, e.ProviderName, failureText)
		if action != scheduler.ActionRetry || attempt >= maxAttempts {
			break
		}
		if waitErr := scheduler.Wait(ctx, attempt); waitErr != nil {
			err = waitErr
			break
		}
	}

	completed := time.Now()
	step.CompletedAt = &completed

	if err != nil {
		step.Status = models.StepFailed
		step.Output = err.Error()
		return step, err
	}
	if stop == runtime.StopError || stop == runtime.StopNotConfigured {
		step.Status = models.StepFailed
		step.Output = providerFailureText(nil, messages)
		return step, nil
	}

	step.Status = models.StepCompleted
	if len(messages) > 0 {
		step.Output = messages[len(messages)-1].Content.Text()
	}
	return step, nil
}

// providerFailureText extracts the message to classify/record for a failed
// attempt: the Go error if there was one (a transport failure), else the
// text of the loop's last message (the provider's own error response).
func providerFailureText(err error, messages []models.Message) string {
	if err != nil {
		return err.Error()
	}
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content.Text()
}
