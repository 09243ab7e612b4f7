package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinchtab/todobench/internal/dom"
	"github.com/pinchtab/todobench/internal/suite"
)

type recorder struct {
	started  []string
	finished []StepResult
}

func (r *recorder) StepStarted(i int, s suite.Step) { r.started = append(r.started, s.Name) }
func (r *recorder) StepFinished(res StepResult)     { r.finished = append(r.finished, res) }

func newApp() (*dom.Document, *dom.TodoApp) {
	doc := dom.NewDocument()
	return doc, dom.MountTodoApp(doc)
}

func TestRunCompletesSuite(t *testing.T) {
	doc, app := newApp()
	rec := &recorder{}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := New(WithObserver(rec), WithMetrics(m), WithStepTimeout(time.Second))
	rep, err := r.Run(context.Background(), doc, suite.New(3))
	require.NoError(t, err)

	assert.Equal(t, suite.Name, rep.Suite)
	assert.Equal(t, 12, rep.Planned)
	assert.Equal(t, 12, rep.Completed())
	assert.Nil(t, rep.Failed)
	assert.Zero(t, rep.Remaining)
	assert.Zero(t, app.Len())

	require.Len(t, rec.started, 12)
	assert.Equal(t, "Inputing 0", rec.started[0])
	assert.Equal(t, "Removing 2", rec.started[11])
	assert.Equal(t, "Checking", rec.finished[6].Phase)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Steps.WithLabelValues("Removing", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
}

func TestRunWithoutFactsRunsNothing(t *testing.T) {
	doc := dom.NewDocument()
	rec := &recorder{}

	rep, err := New(WithObserver(rec)).Run(context.Background(), doc, suite.New(2))
	assert.ErrorIs(t, err, suite.ErrNoFacts)
	assert.Nil(t, rep)
	assert.Empty(t, rec.started)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	doc, _ := newApp()

	// Removing before anything exists: the first click has no target.
	s := suite.New(2).Only("Removing")
	rep, err := New().Run(context.Background(), doc, s)
	require.Error(t, err)
	assert.ErrorIs(t, err, suite.ErrNoElement)

	require.Len(t, rep.Steps, 1)
	require.NotNil(t, rep.Failed)
	assert.Equal(t, "Removing 0", rep.Failed.Name)
	assert.NotEmpty(t, rep.Failed.Error)
	assert.Zero(t, rep.Completed())
}

func TestRunLimit(t *testing.T) {
	doc, app := newApp()

	rep, err := New(WithLimit(4)).Run(context.Background(), doc, suite.New(5))
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Planned)
	assert.Len(t, rep.Steps, 4)
	assert.Equal(t, 2, app.Len())
	assert.Equal(t, 2, rep.Remaining)
}

type cancelAfter struct {
	n      int
	cancel context.CancelFunc
	seen   int
}

func (c *cancelAfter) StepStarted(int, suite.Step) {}
func (c *cancelAfter) StepFinished(StepResult) {
	c.seen++
	if c.seen == c.n {
		c.cancel()
	}
}

func TestRunAbortsBetweenSteps(t *testing.T) {
	doc, _ := newApp()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rep, err := New(WithObserver(&cancelAfter{n: 3, cancel: cancel})).Run(ctx, doc, suite.New(4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAborted))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, rep.Aborted)
	assert.Len(t, rep.Steps, 3)
	assert.Equal(t, 1, rep.Remaining, "remaining is counted even after abort")
}

func TestRunEmptySuite(t *testing.T) {
	doc, _ := newApp()
	rep, err := New().Run(context.Background(), doc, suite.New(0))
	require.NoError(t, err)
	assert.Empty(t, rep.Steps)
	assert.Zero(t, rep.Remaining)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeStep(StepResult{Phase: "Inputing"})
		m.observeRun("ok")
	})
}
