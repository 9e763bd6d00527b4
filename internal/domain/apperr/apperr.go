// Package apperr defines the engine's structured error taxonomy. Every
// public operation surfaces one of these kinds; batch orchestrators use the
// kind to decide whether to continue or abort.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind uint8

const (
	// KindUnknown is the zero value for errors from outside the taxonomy.
	KindUnknown Kind = iota
	// KindInvalidInput rejects a request before any state change.
	KindInvalidInput
	// KindNotFound marks a missing account, arrangement or schedule row.
	KindNotFound
	// KindConflictingState marks an operation that is illegal in the
	// aggregate's current state.
	KindConflictingState
	// KindIdempotentReplay is the non-error "already applied" outcome for a
	// resubmitted external reference.
	KindIdempotentReplay
	// KindBenchmarkUnavailable marks a floating-rate reset with no benchmark
	// publication on or before the as-of date.
	KindBenchmarkUnavailable
	// KindFLDGExhausted marks a claim against a zero FLDG balance.
	KindFLDGExhausted
	// KindTransient marks a retryable infrastructure failure.
	KindTransient
	// KindFatal marks an invariant violation detected during reconciliation.
	// Never swallowed; aborts the unit of work and poisons the batch.
	KindFatal
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindInvalidInput:         "invalid_input",
	KindNotFound:             "not_found",
	KindConflictingState:     "conflicting_state",
	KindIdempotentReplay:     "idempotent_replay",
	KindBenchmarkUnavailable: "benchmark_unavailable",
	KindFLDGExhausted:        "fldg_exhausted",
	KindTransient:            "transient",
	KindFatal:                "fatal",
}

// String returns the kind's wire name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is a structured engine error with kind, message and optional entity
// reference and remediation hint.
type Error struct {
	Kind   Kind
	Msg    string
	Entity string
	Hint   string
	Err    error
}

// Error renders the kind, entity and message.
func (e *Error) Error() string {
	switch {
	case e.Entity != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Entity, e.Msg, e.Err)
	case e.Entity != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Entity, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WithEntity returns a copy carrying the offending entity reference.
func (e *Error) WithEntity(entity string) *Error {
	out := *e
	out.Entity = entity
	return &out
}

// WithHint returns a copy carrying a remediation hint.
func (e *Error) WithHint(hint string) *Error {
	out := *e
	out.Hint = hint
	return &out
}

// KindOf extracts the kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsFatal reports whether the error must abort a batch.
func IsFatal(err error) bool {
	return IsKind(err, KindFatal)
}
