package metrics

import (
	"context"

	"trustgate/internal/types"
)

// Reviewedness is the fraction of merged changes that received at least one
// approving review.
type Reviewedness struct{}

func (Reviewedness) Kind() Kind { return KindReviewedness }

func (Reviewedness) Evaluate(_ context.Context, m *types.Model) Result {
	if m.Code == nil {
		return undefined(KindReviewedness, "no code section populated")
	}
	pulls := m.Code.Pulls
	if pulls.MergedTotal == 0 {
		return undefined(KindReviewedness, "no merged pull requests")
	}

	fraction := float64(pulls.MergedReviewed) / float64(pulls.MergedTotal)
	return scored(KindReviewedness, fraction, map[string]any{
		"merged_total":    pulls.MergedTotal,
		"merged_reviewed": pulls.MergedReviewed,
	})
}
