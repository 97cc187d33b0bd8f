// Package runner executes the metric catalog against gathered artifact
// snapshots and aggregates the results into an admission decision.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"trustgate/internal/metrics"
	"trustgate/internal/trusterr"
	"trustgate/internal/types"
)

// MinNetScore is the admission cutoff. Artifacts scoring below it are
// rejected by callers that gate on the composite.
const MinNetScore = 0.5

// Mode selects how the metric catalog is executed. Both modes produce
// identical metric values and net score for the same snapshot; only the
// latency accounting differs.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeConcurrent Mode = "concurrent"
)

// Status classifies one batch entry's outcome.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// Report is the full result of one evaluation.
type Report struct {
	Ref          types.ArtifactReference         `json:"ref"`
	Results      map[metrics.Kind]metrics.Result `json:"results"`
	NetScore     float64                         `json:"net_score"`
	TotalLatency time.Duration                   `json:"total_latency"`
	Failures     map[types.Source]string         `json:"failures,omitempty"`
}

// Admitted reports whether the artifact clears the admission cutoff.
func (r *Report) Admitted() bool {
	return r.NetScore >= MinNetScore
}

// Outcome is one entry of a batch run, in input order.
type Outcome struct {
	Ref    types.ArtifactReference `json:"ref"`
	Status Status                  `json:"status"`
	Report *Report                 `json:"report,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

// Fetcher assembles the metadata snapshot for a reference.
type Fetcher interface {
	Gather(ctx context.Context, ref types.ArtifactReference) (*types.Model, error)
}

// MetricsRecorder receives pipeline counter events.
type MetricsRecorder interface {
	IncrementMetricTimeout()
}

// Runner drives evaluations end to end.
type Runner struct {
	gatherer    Fetcher
	evaluators  []metrics.Evaluator
	weights     metrics.Weights
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
	recorder    MetricsRecorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetricTimeout bounds each evaluator; on expiry the metric comes back
// undefined instead of stalling the evaluation.
func WithMetricTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithBatchConcurrency caps how many batch entries evaluate at once.
func WithBatchConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetricsRecorder counts pipeline events, such as evaluator timeouts,
// on the given recorder.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

func New(gatherer Fetcher, evaluators []metrics.Evaluator, weights metrics.Weights, opts ...Option) (*Runner, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weight table: %w", err)
	}
	r := &Runner{
		gatherer:    gatherer,
		evaluators:  evaluators,
		weights:     weights,
		timeout:     30 * time.Second,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Score gathers the snapshot for ref and runs the full catalog over it.
func (r *Runner) Score(ctx context.Context, ref types.ArtifactReference, mode Mode) (*Report, error) {
	snapshot, err := r.gatherer.Gather(ctx, ref)
	if err != nil {
		return nil, err
	}
	report := r.Run(ctx, snapshot, mode)
	r.logger.Info("evaluation finished",
		"model_url", ref.ModelURL,
		"net_score", report.NetScore,
		"admitted", report.Admitted(),
		"mode", mode,
		"total_latency", report.TotalLatency,
	)
	return report, nil
}

// Run executes every evaluator against an already gathered snapshot. The
// snapshot is treated as read-only, which is what makes the two modes
// equivalent in everything except latency accounting: sequential total
// latency is the sum of per-metric latencies, concurrent is wall clock.
func (r *Runner) Run(ctx context.Context, m *types.Model, mode Mode) *Report {
	results := make(map[metrics.Kind]metrics.Result, len(r.evaluators))

	start := time.Now()
	if mode == ModeConcurrent {
		type indexed struct {
			idx int
			res metrics.Result
		}
		ch := make(chan indexed, len(r.evaluators))
		for i, ev := range r.evaluators {
			go func(i int, ev metrics.Evaluator) {
				ch <- indexed{idx: i, res: r.runOne(ctx, ev, m)}
			}(i, ev)
		}
		for range r.evaluators {
			got := <-ch
			results[got.res.Kind] = got.res
		}
	} else {
		for _, ev := range r.evaluators {
			res := r.runOne(ctx, ev, m)
			results[res.Kind] = res
		}
	}

	report := &Report{
		Ref:      m.Ref,
		Results:  results,
		NetScore: metrics.Aggregate(results, r.weights),
		Failures: m.Failures,
	}
	if mode == ModeConcurrent {
		report.TotalLatency = time.Since(start)
	} else {
		for _, res := range results {
			report.TotalLatency += res.Latency
		}
	}
	return report
}

// runOne executes a single evaluator under the metric timeout. A timeout or
// panic degrades to an undefined result; it never disturbs other metrics.
func (r *Runner) runOne(ctx context.Context, ev metrics.Evaluator, m *types.Model) metrics.Result {
	evalCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan metrics.Result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- metrics.Result{
					Kind:    ev.Kind(),
					Details: map[string]any{"reason": fmt.Sprintf("evaluator panicked: %v", p)},
				}
			}
		}()
		done <- ev.Evaluate(evalCtx, m)
	}()

	var res metrics.Result
	select {
	case res = <-done:
	case <-evalCtx.Done():
		res = metrics.Result{
			Kind:    ev.Kind(),
			Details: map[string]any{"reason": "evaluation timed out"},
		}
		r.logger.Warn("metric timed out", "metric", ev.Kind(), "timeout", r.timeout)
		if r.recorder != nil {
			r.recorder.IncrementMetricTimeout()
		}
	}
	res.Latency = time.Since(start)
	return res
}

// RunBatch evaluates each reference and returns outcomes in input order. A
// fatal reference failure marks that entry failed; the rest of the batch is
// unaffected.
func (r *Runner) RunBatch(ctx context.Context, refs []types.ArtifactReference, mode Mode) []Outcome {
	outcomes := make([]Outcome, len(refs))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(r.concurrency)
	for i, ref := range refs {
		grp.Go(func() error {
			outcomes[i] = r.evaluateOne(grpCtx, ref, mode)
			return nil
		})
	}
	_ = grp.Wait()

	return outcomes
}

func (r *Runner) evaluateOne(ctx context.Context, ref types.ArtifactReference, mode Mode) Outcome {
	report, err := r.Score(ctx, ref, mode)
	if err != nil {
		if trusterr.IsFatalReference(err) || trusterr.IsNotFound(err) {
			r.logger.Error("evaluation failed", "model_url", ref.ModelURL, "error", err)
		}
		return Outcome{Ref: ref, Status: StatusFailed, Error: err.Error()}
	}
	status := StatusRejected
	if report.Admitted() {
		status = StatusCompleted
	}
	return Outcome{Ref: ref, Status: status, Report: report}
}
