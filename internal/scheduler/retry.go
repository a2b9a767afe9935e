package scheduler

import (
	"context"
	"math/rand"
	"time"

	"github.com/harrison/kobold/internal/classify"
	"github.com/harrison/kobold/internal/circuit"
)

const (
	backoffBase = 1 * time.Second
	backoffCap  = 60 * time.Second
)

// RetryAction names what the caller should do after a failed provider
// call, per spec §4.9's retry policy.
type RetryAction string

const (
	ActionRetry      RetryAction = "retry"
	ActionStepFailed RetryAction = "step_failed"
)

// Decide classifies errMessage (C1) and records the failure against the
// breaker, returning whether the caller should retry or fail the step.
// Transient errors retry (subject to the breaker still permitting it);
// Permanent and Unknown errors fail the step, though both still count
// toward the circuit-breaker threshold.
func Decide(breaker *circuit.Breaker, provider, errMessage string) RetryAction {
	category := classify.Classify(errMessage)
	if breaker != nil {
		breaker.RecordFailure(provider)
	}

	if category != classify.Transient {
		return ActionStepFailed
	}
	if breaker != nil && !breaker.CanRetry(provider) {
		return ActionStepFailed
	}
	return ActionRetry
}

// Backoff computes the exponential-with-jitter delay for the given
// (1-indexed) retry attempt: base 1s, doubling per attempt, capped at 60s,
// with up to 50% positive jitter to avoid thundering-herd retries.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := backoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= backoffCap {
			d = backoffCap
			break
		}
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 2))
	total := d + jitter
	if total > backoffCap {
		total = backoffCap
	}
	return total
}

// Wait blocks for the backoff duration of attempt, honoring ctx
// cancellation.
func Wait(ctx context.Context, attempt int) error {
	select {
	case <-time.After(Backoff(attempt)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
