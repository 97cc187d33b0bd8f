package metrics

import (
	"context"
	"sort"

	"trustgate/internal/types"
)

// SizeBands are the per-platform weight-size ceilings in megabytes. A model
// at or under A scores 1.0, then 0.6 under B, 0.3 under C, 0.1 under D and 0
// beyond.
type SizeBands struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
	C float64 `yaml:"c" json:"c"`
	D float64 `yaml:"d" json:"d"`
}

// SizeCeilings maps deployment platform to its size bands.
type SizeCeilings map[string]SizeBands

// DefaultSizeCeilings covers the supported deployment tiers from constrained
// devices up to cloud servers.
func DefaultSizeCeilings() SizeCeilings {
	return SizeCeilings{
		"raspberry_pi": {A: 200, B: 500, C: 1500, D: 2000},
		"jetson_nano":  {A: 400, B: 1500, C: 4000, D: 6000},
		"desktop_pc":   {A: 2000, B: 7000, C: 20000, D: 40000},
		"aws_server":   {A: 40000, B: 60000, C: 120000, D: 240000},
	}
}

// SizeScore rates deployability of the model's weight files against the
// per-platform ceilings; the overall score is the mean of the platform
// sub-scores.
type SizeScore struct {
	Ceilings SizeCeilings
}

func (SizeScore) Kind() Kind { return KindSizeScore }

func (s SizeScore) Evaluate(_ context.Context, m *types.Model) Result {
	if m.Model == nil || len(m.Model.WeightBytes) == 0 {
		return undefined(KindSizeScore, "no weight size data")
	}
	ceilings := s.Ceilings
	if len(ceilings) == 0 {
		ceilings = DefaultSizeCeilings()
	}

	sizeMB := float64(m.Model.TotalWeightBytes()) / (1024 * 1024)

	platforms := make([]string, 0, len(ceilings))
	for name := range ceilings {
		platforms = append(platforms, name)
	}
	sort.Strings(platforms)

	sub := make(map[string]any, len(platforms))
	sum := 0.0
	for _, name := range platforms {
		score := sizeBand(sizeMB, ceilings[name])
		sub[name] = score
		sum += score
	}

	return scored(KindSizeScore, sum/float64(len(platforms)), map[string]any{
		"size_mb":         sizeMB,
		"platform_scores": sub,
	})
}

func sizeBand(sizeMB float64, b SizeBands) float64 {
	switch {
	case sizeMB <= b.A:
		return 1.0
	case sizeMB <= b.B:
		return 0.6
	case sizeMB <= b.C:
		return 0.3
	case sizeMB <= b.D:
		return 0.1
	default:
		return 0.0
	}
}
