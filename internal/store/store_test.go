package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgate/internal/metrics"
	"trustgate/internal/runner"
	"trustgate/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleOutcome(modelURL string, status runner.Status, score float64) runner.Outcome {
	outcome := runner.Outcome{
		Ref:    types.ArtifactReference{ModelURL: modelURL, Name: "sample"},
		Status: status,
	}
	if status != runner.StatusFailed {
		outcome.Report = &runner.Report{
			Ref:      outcome.Ref,
			NetScore: score,
			Results:  map[metrics.Kind]metrics.Result{},
		}
	} else {
		outcome.Error = "model reference could not be resolved"
	}
	return outcome
}

func TestStoreSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveOutcome(ctx, sampleOutcome("https://huggingface.co/org/m", runner.StatusCompleted, 0.82))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "https://huggingface.co/org/m", rec.ModelURL)
	assert.Equal(t, runner.StatusCompleted, rec.Status)
	require.NotNil(t, rec.NetScore)
	assert.InDelta(t, 0.82, *rec.NetScore, 1e-9)

	var report runner.Report
	require.NoError(t, json.Unmarshal(rec.Report, &report))
	assert.InDelta(t, 0.82, report.NetScore, 1e-9)
}

func TestStoreFailedOutcomeHasNoScore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveOutcome(ctx, sampleOutcome("https://huggingface.co/org/bad", runner.StatusFailed, 0))
	require.NoError(t, err)

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Nil(t, rec.NetScore)
	assert.Empty(t, rec.Report)
	assert.Contains(t, rec.Error, "could not be resolved")
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.Get(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStoreListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SaveOutcome(ctx, sampleOutcome("https://huggingface.co/org/a", runner.StatusRejected, 0.3))
	require.NoError(t, err)
	_, err = s.SaveOutcome(ctx, sampleOutcome("https://huggingface.co/org/b", runner.StatusCompleted, 0.7))
	require.NoError(t, err)

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestStoreLatestForModel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	modelURL := "https://huggingface.co/org/m"
	_, err := s.SaveOutcome(ctx, sampleOutcome(modelURL, runner.StatusRejected, 0.4))
	require.NoError(t, err)
	_, err = s.SaveOutcome(ctx, sampleOutcome(modelURL, runner.StatusCompleted, 0.6))
	require.NoError(t, err)

	rec, err := s.LatestForModel(ctx, modelURL)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.NetScore)
}
