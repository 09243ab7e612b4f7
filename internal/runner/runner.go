// Package runner replays a suite step by step against a document, timing
// each step and stopping at the first failure.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pinchtab/todobench/internal/logging"
	"github.com/pinchtab/todobench/internal/suite"
)

// ErrAborted is returned when the context ends between steps.
var ErrAborted = errors.New("runner: aborted")

// Observer is told about every step as it runs.
type Observer interface {
	StepStarted(index int, step suite.Step)
	StepFinished(result StepResult)
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int           `json:"index" yaml:"index"`
	Name     string        `json:"name" yaml:"name"`
	Phase    string        `json:"phase" yaml:"phase"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report summarizes a run. Remaining is -1 when the document could not be
// counted after the run.
type Report struct {
	Suite     string        `json:"suite" yaml:"suite"`
	Items     int           `json:"items" yaml:"items"`
	Planned   int           `json:"planned" yaml:"planned"`
	StartedAt time.Time     `json:"startedAt" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Steps     []StepResult  `json:"steps" yaml:"steps"`
	Failed    *StepResult   `json:"failed,omitempty" yaml:"failed,omitempty"`
	Aborted   bool          `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	Remaining int           `json:"remaining" yaml:"remaining"`
}

// Completed is the number of steps that finished without error.
func (r *Report) Completed() int {
	if r.Failed != nil {
		return len(r.Steps) - 1
	}
	return len(r.Steps)
}

// Runner executes suites one step at a time.
type Runner struct {
	logger      *slog.Logger
	observer    Observer
	metrics     *Metrics
	limit       int
	stepTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger configures the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers a per-step observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

// WithMetrics records step timings into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLimit stops the run after k steps. Zero means no limit.
func WithLimit(k int) Option {
	return func(r *Runner) {
		r.limit = k
	}
}

// WithStepTimeout bounds each step.
func WithStepTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.stepTimeout = d
	}
}

func New(opts ...Option) *Runner {
	r := &Runner{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves the suite's facts on doc and executes its steps in order.
// When the document has no facts nothing runs and suite.ErrNoFacts is
// returned with a nil report. Otherwise the report is always returned, also
// alongside an error.
func (r *Runner) Run(ctx context.Context, doc suite.Document, s suite.Suite) (*Report, error) {
	facts, err := s.GetFacts(ctx, doc)
	if err != nil {
		r.logger.Warn("suite cannot run", "suite", s.Name, "err", err)
		return nil, err
	}

	steps := s.Steps
	if r.limit > 0 && r.limit < len(steps) {
		steps = steps[:r.limit]
	}

	rep := &Report{
		Suite:     s.Name,
		Items:     s.Items,
		Planned:   len(steps),
		StartedAt: time.Now(),
		Steps:     make([]StepResult, 0, len(steps)),
		Remaining: -1,
	}
	r.logger.Info("run started", "suite", s.Name, "steps", len(steps))

	runErr := r.runSteps(ctx, facts, steps, rep)
	rep.Duration = time.Since(rep.StartedAt)

	if n, err := suite.CountEntries(context.WithoutCancel(ctx), doc); err == nil {
		rep.Remaining = n
	} else {
		r.logger.Debug("count entries failed", "err", err)
	}

	result := "ok"
	switch {
	case rep.Aborted:
		result = "aborted"
	case runErr != nil:
		result = "failed"
	}
	r.metrics.observeRun(result)
	r.logger.Info("run finished",
		"suite", s.Name,
		"result", result,
		"completed", rep.Completed(),
		"dur", rep.Duration,
		"remaining", rep.Remaining,
	)
	return rep, runErr
}

func (r *Runner) runSteps(ctx context.Context, facts *suite.Facts, steps []suite.Step, rep *Report) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			rep.Aborted = true
			return fmt.Errorf("%w before step %d %q: %w", ErrAborted, i, step.Name, err)
		}
		if r.observer != nil {
			r.observer.StepStarted(i, step)
		}

		res, err := r.runStep(ctx, facts, i, step)
		rep.Steps = append(rep.Steps, res)
		r.metrics.observeStep(res)
		if r.observer != nil {
			r.observer.StepFinished(res)
		}

		if err != nil {
			rep.Failed = &rep.Steps[len(rep.Steps)-1]
			r.logger.Error("step failed", "index", i, "name", step.Name, "err", err)
			return fmt.Errorf("step %d %q: %w", i, step.Name, err)
		}
		r.logger.Debug("step finished", "index", i, "name", step.Name, "dur", res.Duration)
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, facts *suite.Facts, i int, step suite.Step) (StepResult, error) {
	stepCtx := ctx
	if r.stepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, r.stepTimeout)
		defer cancel()
	}

	start := time.Now()
	err := step.Work.Do(stepCtx, facts)
	res := StepResult{
		Index:    i,
		Name:     step.Name,
		Phase:    step.Phase(),
		Duration: time.Since(start),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res, err
}
