package cohort

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"github.com/google/uuid"

	"github.com/clinbench/goldtruth/internal/measure"
)

// RunIDGenerator generates identifiers for evaluation runs.
// Implemented by UUIDv7Generator (production) and FixedRunID (tests).
type RunIDGenerator interface {
	NewRunID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run identifiers.
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewRunID returns a new UUIDv7 as a hyphenated string.
func (UUIDv7Generator) NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedRunID always returns itself. For deterministic tests.
type FixedRunID string

func (f FixedRunID) NewRunID() string { return string(f) }

// Skip records a patient that could not be evaluated. Malformed records
// are surfaced, never swallowed, and never halt the rest of the cohort.
type Skip struct {
	PatientID string
	Reason    string
}

// Result is the outcome of one cohort run.
type Result struct {
	RunID    string
	Verdicts []measure.Verdict
	Skips    []Skip
}

// Runner evaluates a cohort against one measure and period.
//
// Evaluations are independent and share only the read-only registry
// inside the evaluator, so the cohort is fanned out across workers with
// no locking. Output ordering is deterministic regardless of worker
// interleaving: verdicts and skips are sorted by patient ID.
type Runner struct {
	eval    *measure.Evaluator
	period  measure.Period
	workers int
	idGen   RunIDGenerator
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the worker count. Defaults to GOMAXPROCS.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRunIDGenerator overrides the run ID generator.
func WithRunIDGenerator(g RunIDGenerator) RunnerOption {
	return func(r *Runner) { r.idGen = g }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner for the given evaluator and period.
func NewRunner(eval *measure.Evaluator, period measure.Period, opts ...RunnerOption) *Runner {
	r := &Runner{
		eval:    eval,
		period:  period,
		workers: runtime.GOMAXPROCS(0),
		idGen:   UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates every patient in the cohort. A malformed record becomes
// a Skip with the construction error as the reason. Cancellation stops
// feeding work; patients already picked up still complete.
func (r *Runner) Run(ctx context.Context, patients []PatientInput) (Result, error) {
	res := Result{RunID: r.idGen.NewRunID()}

	// Per-index slots: workers never share a slot, so no locking.
	verdicts := make([]*measure.Verdict, len(patients))
	skips := make([]*Skip, len(patients))

	workers := r.workers
	if workers > len(patients) {
		workers = len(patients)
	}

	indexes := make(chan int)
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := range indexes {
				r.evaluateOne(i, patients[i], verdicts, skips)
			}
		}()
	}

feed:
	for i := range patients {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	for w := 0; w < workers; w++ {
		<-done
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	for i := range patients {
		switch {
		case skips[i] != nil:
			res.Skips = append(res.Skips, *skips[i])
		case verdicts[i] != nil:
			res.Verdicts = append(res.Verdicts, *verdicts[i])
		}
	}
	sort.Slice(res.Verdicts, func(i, j int) bool {
		return res.Verdicts[i].PatientID < res.Verdicts[j].PatientID
	})
	sort.Slice(res.Skips, func(i, j int) bool {
		return res.Skips[i].PatientID < res.Skips[j].PatientID
	})

	r.logger.Info("cohort run complete",
		"run_id", res.RunID,
		"measure", r.eval.Definition().ID,
		"period_end", r.period.End.ISO(),
		"patients", len(patients),
		"verdicts", len(res.Verdicts),
		"skips", len(res.Skips),
	)

	return res, nil
}

func (r *Runner) evaluateOne(i int, in PatientInput, verdicts []*measure.Verdict, skips []*Skip) {
	p, err := Build(in)
	if err != nil {
		r.logger.Warn("skipping malformed patient record", "patient_id", in.ID, "reason", err.Error())
		skips[i] = &Skip{PatientID: in.ID, Reason: err.Error()}
		return
	}
	v := r.eval.Evaluate(p, r.period)
	verdicts[i] = &v
}
