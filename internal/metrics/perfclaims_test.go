package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgate/internal/types"
)

func TestPerformanceClaimsUndefinedCases(t *testing.T) {
	tests := []struct {
		name  string
		eval  PerformanceClaims
		model *types.Model
	}{
		{
			name:  "no text",
			eval:  PerformanceClaims{Judge: &stubJudge{score: 0.9}},
			model: &types.Model{},
		},
		{
			name:  "no judge",
			eval:  PerformanceClaims{},
			model: &types.Model{Model: &types.ModelInfo{CardText: "Accuracy 98%"}},
		},
		{
			name:  "judge failure",
			eval:  PerformanceClaims{Judge: &stubJudge{err: errors.New("quota")}},
			model: &types.Model{Model: &types.ModelInfo{CardText: "Accuracy 98%"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.eval.Evaluate(context.Background(), tt.model)
			assert.False(t, result.Defined())
		})
	}
}

func TestPerformanceClaimsUsesJudgeVerdict(t *testing.T) {
	judge := &stubJudge{score: 0.7}
	model := &types.Model{Model: &types.ModelInfo{CardText: "GLUE score 89.2, beats BERT baseline."}}

	result := PerformanceClaims{Judge: judge}.Evaluate(context.Background(), model)
	require.True(t, result.Defined())
	assert.InDelta(t, 0.7, *result.Value, 1e-9)
	require.Len(t, judge.prompts, 1)
	assert.Contains(t, judge.prompts[0], "GLUE score 89.2")
}

func TestPerformanceClaimsTruncatesLongText(t *testing.T) {
	judge := &stubJudge{score: 0.5}
	model := &types.Model{Model: &types.ModelInfo{
		CardText: strings.Repeat("benchmark ", 2000),
	}}

	result := PerformanceClaims{Judge: judge}.Evaluate(context.Background(), model)
	require.True(t, result.Defined())
	require.Len(t, judge.prompts, 1)
	assert.Contains(t, judge.prompts[0], "[truncated]")
}
