package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or processor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Ranking and generation cannot run without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrNoHTMLPart indicates a message body has no decodable text/html leaf.
	ErrNoHTMLPart = errors.New("no html part")

	// ErrUnparsableRanking indicates the ranking oracle returned text that
	// does not hold a valid priority object. Always recovered by fallback tiers.
	ErrUnparsableRanking = errors.New("unparsable ranking output")

	// ErrDeliveryNotConfigured indicates no delivery target or channel is set.
	ErrDeliveryNotConfigured = errors.New("delivery target not configured")

	// Authentication Errors.

	// ErrAuthRequired indicates the source requires a cached token but none exists.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ErrorKind classifies a pipeline failure by how it must be handled.
type ErrorKind string

const (
	// KindSourceFetch is a per-message fetch or decode failure. Skipped and counted.
	KindSourceFetch ErrorKind = "source_fetch"
	// KindSourceList is a listing failure. Fatal for the run.
	KindSourceList ErrorKind = "source_list"
	// KindOracleParse is an unusable ranking reply. Recovered by fallback tiers.
	KindOracleParse ErrorKind = "oracle_parse"
	// KindOracleCall is a failed ranking or generation call. Fatal for the run.
	KindOracleCall ErrorKind = "oracle_call"
	// KindDeliveryTarget is a rejected post. Fatal for the run.
	KindDeliveryTarget ErrorKind = "delivery_target"
	// KindPersistence is a failed artifact or record write. Never reported as success.
	KindPersistence ErrorKind = "persistence"
)

// Recoverable reports whether errors of this kind are absorbed by the run.
func (k ErrorKind) Recoverable() bool {
	return k == KindSourceFetch || k == KindOracleParse
}

// StageError attaches the failing stage and error kind to an underlying error.
// State is set for delivery failures and records how far the post sequence got.
type StageError struct {
	Stage string
	Kind  ErrorKind
	State DeliveryState
	Err   error
}

// NewStageError wraps err for the given stage and kind.
func NewStageError(stage string, kind ErrorKind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("%s (%s, reached %s): %v", e.Stage, e.Kind, e.State, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err, or "" if err is not a StageError.
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// DestinationError is a machine-readable rejection from the delivery target.
// Hint carries an operator-facing remediation when the code is a known one.
type DestinationError struct {
	Code string
	Hint string
}

// Error implements the error interface.
func (e *DestinationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("destination rejected post: %s (%s)", e.Code, e.Hint)
	}
	return "destination rejected post: " + e.Code
}

// Remediable reports whether the operator can fix the rejection without a code change.
func (e *DestinationError) Remediable() bool {
	return e.Hint != ""
}
