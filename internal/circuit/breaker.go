// Package circuit implements the per-provider circuit breaker gating
// retries across shared model endpoints. It is grounded on the teacher's
// general state-enum-with-String()-method idiom (ErrorCategory in
// internal/executor/patterns.go, ExecutionPhase in
// internal/executor/errors.go) and the wait-until-window-reopens retry flow
// of internal/budget/waiter.go, adapted from a remote-imposed window to a
// local one: wait until openDuration elapses.
package circuit

import (
	"strings"
	"sync"
	"time"

	"github.com/harrison/kobold/internal/models"
)

const (
	defaultFailureThreshold = 3
	defaultOpenDuration     = 10 * time.Minute
	defaultResetAfterSucc   = 5 * time.Minute
)

// Config overrides the breaker's default thresholds.
type Config struct {
	FailureThreshold   int
	OpenDuration       time.Duration
	ResetAfterSuccess  time.Duration
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:  defaultFailureThreshold,
		OpenDuration:      defaultOpenDuration,
		ResetAfterSuccess: defaultResetAfterSucc,
	}
}

// Breaker tracks one ProviderCircuit per lowercased provider name.
type Breaker struct {
	mu       sync.Mutex
	cfg      Config
	circuits map[string]*models.ProviderCircuit
}

// New constructs a Breaker with the given configuration.
func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg, circuits: make(map[string]*models.ProviderCircuit)}
}

// NewDefault constructs a Breaker with DefaultConfig.
func NewDefault() *Breaker {
	return New(DefaultConfig())
}

func normalize(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func (b *Breaker) circuitLocked(provider string) *models.ProviderCircuit {
	c, ok := b.circuits[provider]
	if !ok {
		c = &models.ProviderCircuit{Provider: provider, State: models.CircuitClosed}
		b.circuits[provider] = c
	}
	return c
}

// RecordFailure registers a failed call against provider.
func (b *Breaker) RecordFailure(provider string) {
	provider = normalize(provider)
	if provider == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuitLocked(provider)
	now := time.Now()
	c.ConsecutiveFailures++
	c.LastFailureAt = &now

	switch c.State {
	case models.CircuitClosed:
		if c.ConsecutiveFailures >= b.cfg.FailureThreshold {
			c.State = models.CircuitOpen
			c.OpenedAt = &now
		}
	case models.CircuitHalfOpen:
		c.State = models.CircuitOpen
		c.OpenedAt = &now
	}
}

// RecordSuccess resets provider's circuit to Closed.
func (b *Breaker) RecordSuccess(provider string) {
	provider = normalize(provider)
	if provider == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuitLocked(provider)
	c.ConsecutiveFailures = 0
	c.State = models.CircuitClosed
	c.OpenedAt = nil
}

// CanRetry advances provider's timers and reports whether a call may be
// attempted now.
func (b *Breaker) CanRetry(provider string) bool {
	provider = normalize(provider)
	if provider == "" {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuitLocked(provider)
	now := time.Now()

	if c.State == models.CircuitOpen && c.OpenedAt != nil && now.Sub(*c.OpenedAt) >= b.cfg.OpenDuration {
		c.State = models.CircuitHalfOpen
	}
	if c.State == models.CircuitClosed && c.LastFailureAt != nil && now.Sub(*c.LastFailureAt) >= b.cfg.ResetAfterSuccess {
		c.ConsecutiveFailures = 0
	}
	return c.State != models.CircuitOpen
}

// GetState returns provider's current circuit state.
func (b *Breaker) GetState(provider string) models.CircuitState {
	provider = normalize(provider)
	b.mu.Lock()
	defer b.mu.Unlock()
	if provider == "" {
		return models.CircuitClosed
	}
	return b.circuitLocked(provider).State
}

// Reset forces provider's circuit back to Closed.
func (b *Breaker) Reset(provider string) {
	provider = normalize(provider)
	if provider == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.circuits, provider)
}

// ResetAll clears every tracked provider's circuit.
func (b *Breaker) ResetAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.circuits = make(map[string]*models.ProviderCircuit)
}
