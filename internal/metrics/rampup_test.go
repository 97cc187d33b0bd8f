package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgate/internal/types"
)

type stubJudge struct {
	score   float64
	err     error
	prompts []string
}

func (s *stubJudge) Judge(_ context.Context, prompt string) (float64, error) {
	s.prompts = append(s.prompts, prompt)
	return s.score, s.err
}

const richReadme = "# My Model\n\n" +
	"## Installation\n\npip install mymodel\n\n" +
	"## Quick Start\n\n```python\nfrom mymodel import load\nload()\n```\n\n" +
	"## API Reference\n\nSee from_pretrained for details.\n"

func TestRampUpUndefinedWithoutText(t *testing.T) {
	judge := &stubJudge{score: 0.8}
	result := RampUpTime{Judge: judge}.Evaluate(context.Background(), &types.Model{})
	assert.False(t, result.Defined())
	assert.Empty(t, judge.prompts, "no judge call without text")
}

func TestRampUpUndefinedWithoutJudge(t *testing.T) {
	model := &types.Model{Model: &types.ModelInfo{CardText: richReadme}}
	result := RampUpTime{}.Evaluate(context.Background(), model)
	assert.False(t, result.Defined())
}

func TestRampUpJudgeFailureIsUndefined(t *testing.T) {
	model := &types.Model{Model: &types.ModelInfo{CardText: richReadme}}
	judge := &stubJudge{err: errors.New("upstream 500")}
	result := RampUpTime{Judge: judge}.Evaluate(context.Background(), model)
	assert.False(t, result.Defined())
	assert.Contains(t, result.Details["reason"], "clarity judgment failed")
}

func TestRampUpBlendsStructureAndClarity(t *testing.T) {
	model := &types.Model{Model: &types.ModelInfo{CardText: richReadme}}
	judge := &stubJudge{score: 0.8}

	result := RampUpTime{Judge: judge}.Evaluate(context.Background(), model)
	require.True(t, result.Defined())

	// All four structural sections present: 0.5*1.0 + 0.5*0.8.
	assert.InDelta(t, 0.9, *result.Value, 1e-9)
	assert.Len(t, judge.prompts, 1)
	assert.Contains(t, judge.prompts[0], "STRICT JSON")
}

func TestRampUpSparseReadme(t *testing.T) {
	model := &types.Model{Model: &types.ModelInfo{CardText: "A model."}}
	judge := &stubJudge{score: 0.2}

	result := RampUpTime{Judge: judge}.Evaluate(context.Background(), model)
	require.True(t, result.Defined())
	assert.InDelta(t, 0.1, *result.Value, 1e-9)
}
