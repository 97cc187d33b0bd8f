package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds in-process counters for the evaluation pipeline.
type Metrics struct {
	EvaluationsTotal     int64
	EvaluationsCompleted int64
	EvaluationsRejected  int64
	EvaluationsFailed    int64
	MetricTimeouts       int64
	StartTime            time.Time

	evaluationTimes []time.Duration
	timesMutex      sync.RWMutex

	providerCalls  map[string]int64
	providerErrors map[string]int64
	providerMutex  sync.RWMutex
}

// NewMetrics creates a metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		evaluationTimes: make([]time.Duration, 0, 1000),
		providerCalls:   make(map[string]int64),
		providerErrors:  make(map[string]int64),
	}
}

// RecordEvaluation records one finished evaluation by outcome status.
func (m *Metrics) RecordEvaluation(status string, duration time.Duration) {
	atomic.AddInt64(&m.EvaluationsTotal, 1)
	switch status {
	case "completed":
		atomic.AddInt64(&m.EvaluationsCompleted, 1)
	case "rejected":
		atomic.AddInt64(&m.EvaluationsRejected, 1)
	case "failed":
		atomic.AddInt64(&m.EvaluationsFailed, 1)
	}

	// Keep the last 1000 samples for percentiles.
	m.timesMutex.Lock()
	m.evaluationTimes = append(m.evaluationTimes, duration)
	if len(m.evaluationTimes) > 1000 {
		m.evaluationTimes = m.evaluationTimes[1:]
	}
	m.timesMutex.Unlock()
}

// IncrementMetricTimeout counts one evaluator timing out.
func (m *Metrics) IncrementMetricTimeout() {
	atomic.AddInt64(&m.MetricTimeouts, 1)
}

// RecordProviderCall counts one upstream metadata call.
func (m *Metrics) RecordProviderCall(provider string, success bool) {
	m.providerMutex.Lock()
	defer m.providerMutex.Unlock()
	m.providerCalls[provider]++
	if !success {
		m.providerErrors[provider]++
	}
}

// Percentile returns the pth percentile of recorded evaluation durations.
func (m *Metrics) Percentile(p float64) time.Duration {
	m.timesMutex.RLock()
	defer m.timesMutex.RUnlock()
	if len(m.evaluationTimes) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(m.evaluationTimes))
	copy(sorted, m.evaluationTimes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}

// GetStats returns a snapshot suitable for a stats endpoint.
func (m *Metrics) GetStats() map[string]any {
	m.providerMutex.RLock()
	calls := make(map[string]int64, len(m.providerCalls))
	for k, v := range m.providerCalls {
		calls[k] = v
	}
	errs := make(map[string]int64, len(m.providerErrors))
	for k, v := range m.providerErrors {
		errs[k] = v
	}
	m.providerMutex.RUnlock()

	return map[string]any{
		"evaluations_total":     atomic.LoadInt64(&m.EvaluationsTotal),
		"evaluations_completed": atomic.LoadInt64(&m.EvaluationsCompleted),
		"evaluations_rejected":  atomic.LoadInt64(&m.EvaluationsRejected),
		"evaluations_failed":    atomic.LoadInt64(&m.EvaluationsFailed),
		"metric_timeouts":       atomic.LoadInt64(&m.MetricTimeouts),
		"provider_calls":        calls,
		"provider_errors":       errs,
		"p50_ms":                m.Percentile(50).Milliseconds(),
		"p95_ms":                m.Percentile(95).Milliseconds(),
		"uptime_seconds":        int64(time.Since(m.StartTime).Seconds()),
	}
}
