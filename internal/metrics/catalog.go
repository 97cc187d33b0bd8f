package metrics

// Catalog builds the full evaluator set. The judge is injected into the
// LLM-backed metrics; nil ceilings fall back to the documented defaults.
// Adding a metric means adding it here, to AllKinds, and to the weight table;
// aggregation logic never changes.
func Catalog(judge Judge, ceilings SizeCeilings) []Evaluator {
	return []Evaluator{
		BusFactor{},
		RampUpTime{Judge: judge},
		SizeScore{Ceilings: ceilings},
		License{},
		PerformanceClaims{Judge: judge},
		DatasetAndCode{},
		DatasetQuality{},
		CodeQuality{},
		Reproducibility{},
		Reviewedness{},
	}
}
