package metrics

import (
	"context"

	"trustgate/internal/types"
)

// BusFactor measures how concentrated the project's contribution history is.
// The score is the normalized inverse Herfindahl index of contributor commit
// shares: 0 when one contributor holds every commit, approaching 1 as commits
// spread evenly across many contributors.
type BusFactor struct{}

func (BusFactor) Kind() Kind { return KindBusFactor }

func (BusFactor) Evaluate(_ context.Context, m *types.Model) Result {
	if m.Code == nil || len(m.Code.Contributors) == 0 {
		return undefined(KindBusFactor, "no contributor data")
	}

	total := 0
	active := 0
	for _, c := range m.Code.Contributors {
		if c.Commits > 0 {
			total += c.Commits
			active++
		}
	}
	if total == 0 || active == 0 {
		return undefined(KindBusFactor, "no commits recorded")
	}

	details := map[string]any{"contributors": active, "commits": total}
	if active == 1 {
		details["top_share"] = 1.0
		return scored(KindBusFactor, 0, details)
	}

	hhi := 0.0
	topShare := 0.0
	for _, c := range m.Code.Contributors {
		if c.Commits <= 0 {
			continue
		}
		share := float64(c.Commits) / float64(total)
		hhi += share * share
		if share > topShare {
			topShare = share
		}
	}

	// (1-hhi)/(1-1/n) is 1 for a perfectly even spread and falls toward 0
	// as commits concentrate.
	n := float64(active)
	score := (1 - hhi) / (1 - 1/n)

	details["hhi"] = hhi
	details["top_share"] = topShare
	return scored(KindBusFactor, score, details)
}
