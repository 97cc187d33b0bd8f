package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgate/internal/types"
)

func TestDatasetAndCodeUndefinedWithoutSections(t *testing.T) {
	result := DatasetAndCode{}.Evaluate(context.Background(), &types.Model{
		Model: &types.ModelInfo{CardText: "trained on ImageNet"},
	})
	assert.False(t, result.Defined())
}

func TestDatasetAndCode(t *testing.T) {
	tests := []struct {
		name     string
		model    *types.Model
		expected float64
	}{
		{
			name: "both sections populated",
			model: &types.Model{
				Dataset: &types.DatasetInfo{ID: "squad"},
				Code:    &types.CodeInfo{FullName: "org/repo"},
			},
			expected: 1.0,
		},
		{
			name: "dataset only",
			model: &types.Model{
				Dataset: &types.DatasetInfo{ID: "squad"},
			},
			expected: 0.6,
		},
		{
			name: "code only with bare card",
			model: &types.Model{
				Code:  &types.CodeInfo{FullName: "org/repo"},
				Model: &types.ModelInfo{CardText: "A model."},
			},
			expected: 0.4,
		},
		{
			name: "code section plus dataset signals in the card",
			model: &types.Model{
				Code: &types.CodeInfo{FullName: "org/repo"},
				Model: &types.ModelInfo{
					CardText: "Trained on SQuAD. See huggingface.co/datasets/squad for data.",
				},
			},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DatasetAndCode{}.Evaluate(context.Background(), tt.model)
			require.True(t, result.Defined())
			assert.InDelta(t, tt.expected, *result.Value, 1e-9)
		})
	}
}
