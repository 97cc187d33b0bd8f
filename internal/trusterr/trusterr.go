package trusterr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"trustgate/internal/types"
)

// FetchKind categorizes a provider fetch failure per the engine's taxonomy.
type FetchKind string

const (
	FetchNotFound     FetchKind = "not_found"
	FetchRateLimited  FetchKind = "rate_limited"
	FetchTimeout      FetchKind = "timeout"
	FetchUnauthorized FetchKind = "unauthorized"
)

// FetchError is a per-source failure. NotFound and Unauthorized are permanent;
// RateLimited and Timeout are transient and retried inside the provider
// client before this error ever surfaces.
type FetchError struct {
	*errbuilder.ErrBuilder
	Source types.Source
	Kind   FetchKind
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("[%s/%s] %s", e.Source, e.Kind, e.ErrBuilder.Msg)
}

func (e *FetchError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// Transient reports whether retrying the fetch could succeed.
func (e *FetchError) Transient() bool {
	return e.Kind == FetchRateLimited || e.Kind == FetchTimeout
}

func newFetch(source types.Source, kind FetchKind, code errbuilder.ErrCode, msg string, cause error) *FetchError {
	builder := errbuilder.New().
		WithCode(code).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &FetchError{
		ErrBuilder: builder,
		Source:     source,
		Kind:       kind,
	}
}

// NewNotFound marks a reference that does not exist on the provider.
func NewNotFound(source types.Source, msg string, cause error) *FetchError {
	return newFetch(source, FetchNotFound, errbuilder.CodeNotFound, msg, cause)
}

// NewRateLimited marks a provider 429-equivalent response.
func NewRateLimited(source types.Source, msg string, cause error) *FetchError {
	return newFetch(source, FetchRateLimited, errbuilder.CodeResourceExhausted, msg, cause)
}

// NewTimeout marks a provider call that exceeded its deadline.
func NewTimeout(source types.Source, msg string, cause error) *FetchError {
	return newFetch(source, FetchTimeout, errbuilder.CodeDeadlineExceeded, msg, cause)
}

// NewUnauthorized marks a rejected credential.
func NewUnauthorized(source types.Source, msg string, cause error) *FetchError {
	return newFetch(source, FetchUnauthorized, errbuilder.CodeUnauthenticated, msg, cause)
}

// JudgeError is a failure of the text-judgment client. Metric evaluators
// absorb it into an undefined value, never propagate it.
type JudgeError struct {
	*errbuilder.ErrBuilder
}

func (e *JudgeError) Error() string {
	return fmt.Sprintf("[judge] %s", e.ErrBuilder.Msg)
}

func (e *JudgeError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewJudgeError wraps a text-judgment client failure.
func NewJudgeError(msg string, cause error) *JudgeError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &JudgeError{ErrBuilder: builder}
}

// FatalReferenceError means the mandatory model reference could not be
// resolved at all. It is the only error that fails a whole evaluation; every
// other failure degrades into an absent section or an undefined metric.
type FatalReferenceError struct {
	*errbuilder.ErrBuilder
	Reference types.ArtifactReference
}

func (e *FatalReferenceError) Error() string {
	return fmt.Sprintf("[fatal] %s", e.ErrBuilder.Msg)
}

func (e *FatalReferenceError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewFatalReference marks an evaluation that cannot be scored.
func NewFatalReference(ref types.ArtifactReference, msg string, cause error) *FatalReferenceError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &FatalReferenceError{
		ErrBuilder: builder,
		Reference:  ref,
	}
}

// IsFatalReference reports whether err (or anything it wraps) is a
// FatalReferenceError.
func IsFatalReference(err error) bool {
	var fatal *FatalReferenceError
	return errors.As(err, &fatal)
}

// IsNotFound reports whether err is a permanent not-found fetch failure.
func IsNotFound(err error) bool {
	var fetch *FetchError
	return errors.As(err, &fetch) && fetch.Kind == FetchNotFound
}

// IsRetryable reports whether the resilience layer should retry err.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var fetch *FetchError
	if errors.As(err, &fetch) {
		return fetch.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout")
}

// RetryDelay returns the backoff hint for err at the given attempt, used by
// the resilience layer on top of its own exponential schedule.
func RetryDelay(err error, attempt int) time.Duration {
	var fetch *FetchError
	if errors.As(err, &fetch) && fetch.Kind == FetchRateLimited {
		return time.Duration(attempt*attempt) * time.Second
	}
	return time.Duration(100*attempt) * time.Millisecond
}
