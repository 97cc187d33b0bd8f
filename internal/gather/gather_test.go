package gather

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgate/internal/trusterr"
	"trustgate/internal/types"
)

type stubHub struct {
	model      *types.ModelInfo
	modelErr   error
	dataset    *types.DatasetInfo
	datasetErr error
}

func (s *stubHub) FetchModel(_ context.Context, repoID, _ string) (*types.ModelInfo, error) {
	if s.modelErr != nil {
		return nil, s.modelErr
	}
	return s.model, nil
}

func (s *stubHub) FetchDataset(_ context.Context, repoID, _ string) (*types.DatasetInfo, error) {
	if s.datasetErr != nil {
		return nil, s.datasetErr
	}
	return s.dataset, nil
}

type stubCode struct {
	info *types.CodeInfo
	err  error
	urls []string
}

func (s *stubCode) Fetch(_ context.Context, codeURL, _ string) (*types.CodeInfo, error) {
	s.urls = append(s.urls, codeURL)
	if s.err != nil {
		return nil, s.err
	}
	return s.info, nil
}

func TestGatherRejectsInvalidReference(t *testing.T) {
	g := New(&stubCode{}, &stubHub{}, nil)
	_, err := g.Gather(context.Background(), types.ArtifactReference{})
	require.Error(t, err)
	assert.True(t, trusterr.IsFatalReference(err))
}

func TestGatherModelFailureIsFatal(t *testing.T) {
	hub := &stubHub{modelErr: trusterr.NewNotFound(types.SourceModel, "no such model", nil)}
	g := New(&stubCode{}, hub, nil)

	_, err := g.Gather(context.Background(), types.ArtifactReference{
		ModelURL: "https://huggingface.co/org/missing",
	})
	require.Error(t, err)
	assert.True(t, trusterr.IsFatalReference(err))
}

func TestGatherOptionalFailuresDegrade(t *testing.T) {
	hub := &stubHub{
		model:      &types.ModelInfo{ID: "org/m"},
		datasetErr: trusterr.NewNotFound(types.SourceDataset, "gone", nil),
	}
	code := &stubCode{err: errors.New("connection refused")}
	g := New(code, hub, nil)

	snapshot, err := g.Gather(context.Background(), types.ArtifactReference{
		ModelURL:   "https://huggingface.co/org/m",
		DatasetURL: "https://huggingface.co/datasets/org/d",
		CodeURL:    "https://github.com/org/r",
	})
	require.NoError(t, err, "optional source failures never fail the evaluation")
	require.NotNil(t, snapshot.Model)
	assert.Nil(t, snapshot.Dataset)
	assert.Nil(t, snapshot.Code)
	assert.Contains(t, snapshot.Failures[types.SourceDataset], "gone")
	assert.Contains(t, snapshot.Failures[types.SourceCode], "connection refused")
}

func TestGatherAllSourcesPresent(t *testing.T) {
	hub := &stubHub{
		model:   &types.ModelInfo{ID: "org/m"},
		dataset: &types.DatasetInfo{ID: "org/d"},
	}
	code := &stubCode{info: &types.CodeInfo{FullName: "org/r"}}
	g := New(code, hub, nil)

	snapshot, err := g.Gather(context.Background(), types.ArtifactReference{
		ModelURL:   "https://huggingface.co/org/m",
		DatasetURL: "https://huggingface.co/datasets/org/d",
		CodeURL:    "https://github.com/org/r",
	})
	require.NoError(t, err)
	assert.NotNil(t, snapshot.Model)
	assert.NotNil(t, snapshot.Dataset)
	assert.NotNil(t, snapshot.Code)
	assert.Nil(t, snapshot.Failures)
}

func TestGatherFallsBackToCardCodeLink(t *testing.T) {
	hub := &stubHub{
		model: &types.ModelInfo{ID: "org/m", CodeRepo: "https://github.com/org/training-code"},
	}
	code := &stubCode{info: &types.CodeInfo{FullName: "org/training-code"}}
	g := New(code, hub, nil)

	snapshot, err := g.Gather(context.Background(), types.ArtifactReference{
		ModelURL: "https://huggingface.co/org/m",
	})
	require.NoError(t, err)
	require.NotNil(t, snapshot.Code)
	assert.Equal(t, []string{"https://github.com/org/training-code"}, code.urls)
}
