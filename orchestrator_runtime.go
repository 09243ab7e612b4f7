package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pinchtab/todobench/internal/browser"
	"github.com/pinchtab/todobench/internal/logging"
	"github.com/pinchtab/todobench/internal/runner"
	"github.com/pinchtab/todobench/internal/suite"
)

var (
	errRunCancelled = errors.New("run cancelled")
	errRunFinished  = errors.New("run already finished")
	errBadLaunch    = errors.New("invalid launch request")
)

// Launch starts a run in the background. The target URL stays locked until
// the run ends; a second launch against it fails with errTargetLocked.
func (o *Orchestrator) Launch(req LaunchRequest) (Run, error) {
	req.URL = o.target(req.URL)
	if req.URL == "" {
		return Run{}, fmt.Errorf("%w: url required", errBadLaunch)
	}
	if req.Items < 0 {
		return Run{}, fmt.Errorf("%w: items must be >= 0, got %d", errBadLaunch, req.Items)
	}
	if req.Items == 0 {
		req.Items = o.cfg.Items
	}
	if req.Pointer == "" {
		req.Pointer = o.cfg.Pointer
	}
	driver, err := o.driverFor(req.Pointer)
	if err != nil {
		return Run{}, fmt.Errorf("%w: %w", errBadLaunch, err)
	}

	id := uuid.NewString()
	if err := o.locks.Lock(req.URL, id, o.cfg.Timeout); err != nil {
		return Run{}, err
	}

	base, cancelCause := context.WithCancelCause(context.Background())
	ctx, cancelTimeout := context.WithTimeout(base, o.cfg.Timeout)

	run := &Run{
		ID:        id,
		URL:       req.URL,
		Items:     req.Items,
		Pointer:   req.Pointer,
		Status:    statusStarting,
		StartedAt: time.Now(),
		cancel:    func() { cancelCause(errRunCancelled) },
		logBuf:    newRingBuffer(64 * 1024),
		done:      make(chan struct{}),
	}

	o.mu.Lock()
	o.runs[id] = run
	snap := run.snapshot()
	o.mu.Unlock()

	o.logger.Info("run launched", "id", id, "url", req.URL, "items", req.Items)

	o.wg.Add(1)
	go func() {
		defer cancelCause(nil)
		defer cancelTimeout()
		o.execute(ctx, run, driver)
	}()

	return snap, nil
}

// target resolves a requested URL against the configured default.
func (o *Orchestrator) target(url string) string {
	if url == "" {
		return o.cfg.URL
	}
	return url
}

// driverFor returns the orchestrator's driver, switched to pointer when it
// drives Chrome.
func (o *Orchestrator) driverFor(pointer string) (Driver, error) {
	p, err := browser.ParsePointer(pointer)
	if err != nil {
		return nil, err
	}
	cd, ok := o.driver.(*chromeDriver)
	if !ok || cd.opts.Pointer == p {
		return o.driver, nil
	}
	c := *cd
	c.opts.Pointer = p
	return &c, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, driver Driver) {
	defer o.wg.Done()
	defer close(run.done)
	defer func() {
		if err := o.locks.Unlock(run.URL, run.ID); err != nil {
			o.logger.Warn("unlock failed", "id", run.ID, "err", err)
		}
	}()

	level, err := logging.ParseLevel(o.cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	runLog := logging.NewWriter(run.logBuf, level, o.cfg.LogFormat).With("run", run.ID)

	o.setStatus(run, statusRunning)

	page, err := driver.Open(ctx, run.URL)
	if err != nil {
		o.finish(ctx, run, nil, err)
		return
	}
	defer page.Close()

	if info, err := page.Info(); err == nil {
		o.mu.Lock()
		run.Tab = &info
		o.mu.Unlock()
	} else {
		runLog.Debug("tab info unavailable", "err", err)
	}

	r := runner.New(
		runner.WithLogger(runLog),
		runner.WithMetrics(o.metrics),
		runner.WithStepTimeout(o.cfg.StepTimeout),
	)
	rep, err := r.Run(page.Context(), page.Document(), suite.New(run.Items).Only(o.cfg.Only...))
	o.finish(ctx, run, rep, err)
}

func (o *Orchestrator) setStatus(run *Run, status string) {
	o.mu.Lock()
	run.Status = status
	o.mu.Unlock()
}

func (o *Orchestrator) finish(ctx context.Context, run *Run, rep *runner.Report, err error) {
	now := time.Now()

	o.mu.Lock()
	run.Report = rep
	run.FinishedAt = &now
	switch {
	case err == nil:
		run.Status = statusDone
	case errors.Is(context.Cause(ctx), errRunCancelled):
		run.Status = statusCancelled
		run.Error = err.Error()
	default:
		run.Status = statusFailed
		run.Error = err.Error()
	}
	status := run.Status
	o.mu.Unlock()

	if err != nil {
		o.logger.Warn("run ended", "id", run.ID, "status", status, "err", err)
		return
	}
	o.logger.Info("run ended", "id", run.ID, "status", status, "dur", now.Sub(run.StartedAt))
}

// Cancel stops a run that has not finished yet.
func (o *Orchestrator) Cancel(id string) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	run, ok := o.runs[id]
	if !ok {
		return fmt.Errorf("%w: %q", errRunNotFound, id)
	}
	if run.finished() {
		return fmt.Errorf("%w: %q is %s", errRunFinished, id, run.Status)
	}
	run.cancel()
	return nil
}
