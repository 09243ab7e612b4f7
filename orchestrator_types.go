package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pinchtab/todobench/internal/browser"
	"github.com/pinchtab/todobench/internal/config"
	"github.com/pinchtab/todobench/internal/runner"
)

// Run states.
const (
	statusStarting  = "starting"
	statusRunning   = "running"
	statusDone      = "done"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
)

// Orchestrator runs suites in the background for the serve command, one
// browser tab per run.
type Orchestrator struct {
	runs    map[string]*Run
	driver  Driver
	cfg     config.Config
	metrics *runner.Metrics
	locks   *lockManager
	logger  *slog.Logger
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

// Run is one background suite run.
type Run struct {
	ID         string           `json:"id"`
	URL        string           `json:"url"`
	Items      int              `json:"items"`
	Pointer    string           `json:"pointer"`
	Status     string           `json:"status"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt *time.Time       `json:"finishedAt,omitempty"`
	Error      string           `json:"error,omitempty"`
	Tab        *browser.TabInfo `json:"tab,omitempty"`
	Report     *runner.Report   `json:"report,omitempty"`

	cancel context.CancelFunc
	logBuf *ringBuffer
	done   chan struct{}
}

// LaunchRequest is the body of POST /runs. Zero fields take the server's
// configuration.
type LaunchRequest struct {
	URL     string `json:"url"`
	Items   int    `json:"items"`
	Pointer string `json:"pointer"`
}

func (r *Run) finished() bool {
	switch r.Status {
	case statusDone, statusFailed, statusCancelled:
		return true
	}
	return false
}

// snapshot copies the exported fields for callers outside the lock.
func (r *Run) snapshot() Run {
	c := *r
	c.cancel = nil
	c.logBuf = nil
	c.done = nil
	return c
}

type ringBuffer struct {
	mu   sync.Mutex
	data []byte
	max  int
}

func newRingBuffer(max int) *ringBuffer {
	return &ringBuffer{max: max, data: make([]byte, 0, max)}
}

func (rb *ringBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.data = append(rb.data, p...)
	if len(rb.data) > rb.max {
		rb.data = rb.data[len(rb.data)-rb.max:]
	}
	return len(p), nil
}

func (rb *ringBuffer) String() string {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return string(rb.data)
}
