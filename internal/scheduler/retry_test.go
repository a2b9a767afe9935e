package scheduler

import (
	"testing"
	"time"

	"github.com/harrison/kobold/internal/circuit"
	"github.com/harrison/kobold/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDecideTransientRetriesWhileBreakerClosed(t *testing.T) {
	breaker := circuit.NewDefault()
	action := Decide(breaker, "openai", "HTTP 503 service unavailable")
	assert.Equal(t, ActionRetry, action)
}

func TestDecidePermanentFailsStepButStillRecordsFailure(t *testing.T) {
	breaker := circuit.NewDefault()
	action := Decide(breaker, "openai", "401 unauthorized")
	assert.Equal(t, ActionStepFailed, action)
	// One permanent failure is below the default threshold, but it must
	// still have been recorded against the breaker.
	assert.Equal(t, models.CircuitClosed, breaker.GetState("openai"))
	breaker.RecordFailure("openai")
	breaker.RecordFailure("openai")
	assert.Equal(t, models.CircuitOpen, breaker.GetState("openai"))
}

func TestDecideTransientFailsStepOnceBreakerOpens(t *testing.T) {
	breaker := circuit.NewDefault()
	var last RetryAction
	for i := 0; i < 5; i++ {
		last = Decide(breaker, "openai", "HTTP 503 service unavailable")
	}
	assert.Equal(t, ActionStepFailed, last)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	assert.LessOrEqual(t, Backoff(1), 2*time.Second)
	assert.GreaterOrEqual(t, Backoff(1), 1*time.Second)

	d := Backoff(10)
	assert.LessOrEqual(t, d, 60*time.Second)
}
