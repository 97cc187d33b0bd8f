// Package metrics holds the catalog of artifact quality evaluators and the
// weighted aggregation that turns their results into one net score.
package metrics

import (
	"context"
	"time"

	"trustgate/internal/types"
)

// Kind is one enumerated category of quality/trust measurement.
type Kind string

const (
	KindBusFactor         Kind = "bus_factor"
	KindRampUpTime        Kind = "ramp_up_time"
	KindSizeScore         Kind = "size_score"
	KindLicense           Kind = "license"
	KindPerformanceClaims Kind = "performance_claims"
	KindDatasetAndCode    Kind = "dataset_and_code_score"
	KindDatasetQuality    Kind = "dataset_quality"
	KindCodeQuality       Kind = "code_quality"
	KindReproducibility   Kind = "reproducibility"
	KindReviewedness      Kind = "reviewedness"
)

// AllKinds lists every metric kind in the catalog, in a stable order.
func AllKinds() []Kind {
	return []Kind{
		KindBusFactor,
		KindRampUpTime,
		KindSizeScore,
		KindLicense,
		KindPerformanceClaims,
		KindDatasetAndCode,
		KindDatasetQuality,
		KindCodeQuality,
		KindReproducibility,
		KindReviewedness,
	}
}

// Result is one metric's outcome. A nil Value is a first-class "undefined"
// state (data insufficient or evaluation failed), distinct from a computed 0.
type Result struct {
	Kind    Kind           `json:"metric_kind"`
	Value   *float64       `json:"value"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// Defined reports whether the metric produced a value.
func (r Result) Defined() bool {
	return r.Value != nil
}

// Evaluator computes one metric from an immutable Model snapshot. It never
// returns an error: internal failures (provider data problems, judge errors)
// are absorbed into an undefined value with a details entry naming the cause.
type Evaluator interface {
	Kind() Kind
	Evaluate(ctx context.Context, m *types.Model) Result
}

// Judge is the text-judgment capability used by LLM-backed metrics. It is
// injected so tests can supply deterministic stand-ins. Implementations must
// be safe for concurrent use.
type Judge interface {
	Judge(ctx context.Context, prompt string) (float64, error)
}

// scored builds a defined result with the value clamped to [0,1].
func scored(kind Kind, value float64, details map[string]any) Result {
	v := clamp01(value)
	return Result{Kind: kind, Value: &v, Details: details}
}

// undefined builds an undefined result carrying the reason.
func undefined(kind Kind, reason string) Result {
	return Result{Kind: kind, Details: map[string]any{"reason": reason}}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
