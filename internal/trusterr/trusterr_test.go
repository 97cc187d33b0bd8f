package trusterr

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgate/internal/types"
)

func TestFetchErrorKinds(t *testing.T) {
	tests := []struct {
		name      string
		err       *FetchError
		kind      FetchKind
		transient bool
	}{
		{
			name:      "not found is permanent",
			err:       NewNotFound(types.SourceModel, "gone", nil),
			kind:      FetchNotFound,
			transient: false,
		},
		{
			name:      "unauthorized is permanent",
			err:       NewUnauthorized(types.SourceCode, "bad token", nil),
			kind:      FetchUnauthorized,
			transient: false,
		},
		{
			name:      "rate limited is transient",
			err:       NewRateLimited(types.SourceCode, "429", nil),
			kind:      FetchRateLimited,
			transient: true,
		},
		{
			name:      "timeout is transient",
			err:       NewTimeout(types.SourceDataset, "deadline", nil),
			kind:      FetchTimeout,
			transient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.transient, tt.err.Transient())
			assert.Equal(t, tt.transient, IsRetryable(tt.err))
		})
	}
}

func TestFetchErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewTimeout(types.SourceModel, "hub unreachable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "model")
	assert.Contains(t, err.Error(), "hub unreachable")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil", err: nil, retryable: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, retryable: true},
		{name: "canceled", err: context.Canceled, retryable: false},
		{name: "connection refused text", err: errors.New("dial: connection refused"), retryable: true},
		{name: "plain error", err: errors.New("parse failure"), retryable: false},
		{name: "wrapped transient fetch", err: fmt.Errorf("wrap: %w", NewRateLimited(types.SourceCode, "429", nil)), retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestRetryDelayGrowsForRateLimits(t *testing.T) {
	err := NewRateLimited(types.SourceCode, "429", nil)
	assert.Equal(t, time.Second, RetryDelay(err, 1))
	assert.Equal(t, 4*time.Second, RetryDelay(err, 2))
	assert.Greater(t, RetryDelay(err, 2), RetryDelay(errors.New("x"), 2))
}

func TestFatalReference(t *testing.T) {
	ref := types.ArtifactReference{ModelURL: "https://huggingface.co/org/m"}
	fatal := NewFatalReference(ref, "unresolvable", NewNotFound(types.SourceModel, "404", nil))

	require.True(t, IsFatalReference(fatal))
	assert.True(t, IsFatalReference(fmt.Errorf("wrap: %w", fatal)))
	assert.False(t, IsFatalReference(errors.New("other")))
	assert.True(t, IsNotFound(fatal), "wrapped not-found stays detectable")
	assert.Equal(t, ref, fatal.Reference)
}

func TestJudgeErrorIsNotRetryableFetch(t *testing.T) {
	err := NewJudgeError("bad reply", nil)
	assert.False(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "judge")
}
