package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pinchtab/todobench/internal/config"
	"github.com/pinchtab/todobench/internal/logging"
	"github.com/pinchtab/todobench/internal/runner"
)

var errRunNotFound = errors.New("run not found")

// NewOrchestrator returns an orchestrator that opens pages with driver and
// fills unset launch fields from cfg.
func NewOrchestrator(driver Driver, cfg config.Config, metrics *runner.Metrics, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		runs:    make(map[string]*Run),
		driver:  driver,
		cfg:     cfg,
		metrics: metrics,
		locks:   newLockManager(),
		logger:  logger,
	}
}

// List returns every run, oldest first.
func (o *Orchestrator) List() []Run {
	o.mu.RLock()
	defer o.mu.RUnlock()

	result := make([]Run, 0, len(o.runs))
	for _, run := range o.runs {
		result = append(result, run.snapshot())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result
}

// Get returns a copy of one run.
func (o *Orchestrator) Get(id string) (Run, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	run, ok := o.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("%w: %q", errRunNotFound, id)
	}
	return run.snapshot(), nil
}

// Logs returns the tail of a run's log.
func (o *Orchestrator) Logs(id string) (string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	run, ok := o.runs[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", errRunNotFound, id)
	}
	return run.logBuf.String(), nil
}

// Wait blocks until the run has finished.
func (o *Orchestrator) Wait(id string) error {
	o.mu.RLock()
	run, ok := o.runs[id]
	o.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", errRunNotFound, id)
	}
	<-run.done
	return nil
}

// Shutdown cancels every unfinished run and waits for them to exit.
func (o *Orchestrator) Shutdown() {
	o.mu.RLock()
	for id, run := range o.runs {
		if !run.finished() {
			o.logger.Info("cancelling run", "id", id)
			run.cancel()
		}
	}
	o.mu.RUnlock()
	o.wg.Wait()
}
