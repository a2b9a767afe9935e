// Package kerrors defines the concrete error taxonomy from the error
// handling design: small structs implementing error + Unwrap, with
// package-level Is* predicates, grounded on the teacher's
// internal/executor/errors.go (TaskError/ExecutionError/TimeoutError).
package kerrors

import (
	"errors"
	"fmt"
)

// maxPreviewLen truncates a detailed message for user-visible previews.
const maxPreviewLen = 500

func truncate(s string) string {
	if len(s) <= maxPreviewLen {
		return s
	}
	return s[:maxPreviewLen]
}

// ConfigError reports a missing/invalid configuration fact: a missing
// project, a missing path, an invalid sandbox mode, an unknown agent type.
// Fatal to the operation; never retried.
type ConfigError struct {
	Kind    string // e.g. "missing_project", "invalid_sandbox_mode"
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error (%s): %s", e.Kind, truncate(e.Message))
}

func NewConfigError(kind, message string) *ConfigError {
	return &ConfigError{Kind: kind, Message: message}
}

// ProviderErrorKind distinguishes the three provider-error shapes the
// scheduler treats differently.
type ProviderErrorKind string

const (
	ProviderTransient    ProviderErrorKind = "transient"
	ProviderPermanent    ProviderErrorKind = "permanent"
	ProviderNotConfigured ProviderErrorKind = "not_configured"
)

// ProviderError wraps a failure from the model-provider layer, tagged by
// kind so the Scheduler and Circuit Breaker can branch without re-running
// classification.
type ProviderError struct {
	Kind     ProviderErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s error (%s): %s", e.Provider, e.Kind, truncate(e.Message))
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(kind ProviderErrorKind, provider, message string, cause error) *ProviderError {
	return &ProviderError{Kind: kind, Provider: provider, Message: message, Err: cause}
}

// ToolError reports a tool invocation whose result began with "Error:". It
// does not terminate the agent directly; the runtime feeds it back to the
// model.
type ToolError struct {
	ToolName string
	Message  string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s error: %s", e.ToolName, truncate(e.Message))
}

func NewToolError(toolName, message string) *ToolError {
	return &ToolError{ToolName: toolName, Message: message}
}

// PersistenceError reports a disk/serialization failure in the WAL, plan
// store, or planning-context layer.
type PersistenceError struct {
	Op      string // e.g. "wal_append", "plan_save", "context_persist"
	Path    string
	Err     error
}

func (e *PersistenceError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return truncate(msg)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(op, path string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Path: path, Err: cause}
}

// ErrCancelled is returned when a cancellation signal terminates an
// operation. Terminal; never retried.
var ErrCancelled = errors.New("cancelled")

// UnknownError wraps anything that does not fit the taxonomy above. It is
// classified permanent by default (spec §7).
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string { return truncate(e.Err.Error()) }
func (e *UnknownError) Unwrap() error  { return e.Err }

func NewUnknownError(cause error) *UnknownError { return &UnknownError{Err: cause} }

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsProviderTransient reports whether err is a *ProviderError tagged
// transient.
func IsProviderTransient(err error) bool {
	var e *ProviderError
	return errors.As(err, &e) && e.Kind == ProviderTransient
}

// IsProviderPermanent reports whether err is a *ProviderError tagged
// permanent.
func IsProviderPermanent(err error) bool {
	var e *ProviderError
	return errors.As(err, &e) && e.Kind == ProviderPermanent
}

// IsProviderNotConfigured reports whether err is a *ProviderError tagged
// not-configured.
func IsProviderNotConfigured(err error) bool {
	var e *ProviderError
	return errors.As(err, &e) && e.Kind == ProviderNotConfigured
}

// IsToolError reports whether err is, or wraps, a *ToolError.
func IsToolError(err error) bool {
	var e *ToolError
	return errors.As(err, &e)
}

// IsPersistenceError reports whether err is, or wraps, a *PersistenceError.
func IsPersistenceError(err error) bool {
	var e *PersistenceError
	return errors.As(err, &e)
}

// IsCancelled reports whether err is, or wraps, ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
