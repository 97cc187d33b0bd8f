package metrics

import (
	"fmt"
	"math"
)

// Weights maps metric kind to its share of the net score. A valid table sums
// to 1.0.
type Weights map[Kind]float64

// DefaultWeights is the documented weight table. License and performance
// claims carry the most weight; size and reviewedness the least.
func DefaultWeights() Weights {
	return Weights{
		KindLicense:           0.15,
		KindPerformanceClaims: 0.15,
		KindDatasetQuality:    0.12,
		KindCodeQuality:       0.12,
		KindRampUpTime:        0.10,
		KindBusFactor:         0.10,
		KindDatasetAndCode:    0.08,
		KindReproducibility:   0.08,
		KindSizeScore:         0.05,
		KindReviewedness:      0.05,
	}
}

// Validate checks that every cataloged kind has a weight and that the table
// sums to 1.0 within floating tolerance.
func (w Weights) Validate() error {
	sum := 0.0
	for _, kind := range AllKinds() {
		weight, ok := w[kind]
		if !ok {
			return fmt.Errorf("weight table missing metric %q", kind)
		}
		if weight < 0 {
			return fmt.Errorf("weight for %q is negative", kind)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weight table sums to %v, want 1.0", sum)
	}
	return nil
}

// Aggregate combines metric results into the composite net score. An
// undefined metric contributes 0 to the weighted sum; it is not dropped from
// the denominator, so missing data always pulls the composite down. The
// computation is pure and order-independent.
func Aggregate(results map[Kind]Result, weights Weights) float64 {
	net := 0.0
	for kind, weight := range weights {
		r, ok := results[kind]
		if !ok || !r.Defined() {
			continue
		}
		net += weight * *r.Value
	}
	return clamp01(net)
}
