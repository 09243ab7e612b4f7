// Package suite holds the TodoMVC add/complete/delete interaction suite: the
// facts a run needs from the page and the ordered list of named steps.
//
// Steps are data. A harness walks them in order, so it can report, time or
// stop at any named step.
package suite

import (
	"context"
	"fmt"
	"strings"
)

// DefaultItems is the number of todos the shipped suite creates.
const DefaultItems = 100

// Name of the suite as reported by harnesses.
const Name = "AddCompleteDelete"

// Facts is what every step works against. It is built once per run by
// GetFacts and is not modified afterwards.
type Facts struct {
	Doc   Document
	Input Element
}

// GetFacts locates the new-todo input. It returns ErrNoFacts when the
// document has none; other errors come from the document itself.
func GetFacts(ctx context.Context, doc Document) (*Facts, error) {
	els, err := doc.ElementsByClassName(ctx, ClassNewTodo)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", ClassNewTodo, err)
	}
	if len(els) == 0 {
		return nil, ErrNoFacts
	}
	return &Facts{Doc: doc, Input: els[0]}, nil
}

// Work is the unit a step performs.
type Work interface {
	Do(ctx context.Context, f *Facts) error
}

// Step pairs a label with its work.
type Step struct {
	Name string
	Work Work
}

// Phase returns the verb of the step name ("Inputing", "Checking", ...).
func (s Step) Phase() string {
	if i := strings.IndexByte(s.Name, ' '); i >= 0 {
		return s.Name[:i]
	}
	return s.Name
}

// InputTodo types the label for entry Number into the tracked input.
type InputTodo struct {
	Number int
}

// Label is the value written into the input.
func (w InputTodo) Label() string {
	return fmt.Sprintf("Nom Nom %d", w.Number)
}

func (w InputTodo) Do(ctx context.Context, f *Facts) error {
	return SimulateInput(ctx, f.Input, w.Label())
}

// PressEnter submits the tracked input.
type PressEnter struct{}

func (PressEnter) Do(ctx context.Context, f *Facts) error {
	return SimulateEnter(ctx, f.Input)
}

// Click activates the Index-th element of Class.
type Click struct {
	Class string
	Index int
}

func (w Click) Do(ctx context.Context, f *Facts) error {
	return SimulateClick(ctx, f.Doc, w.Class, w.Index)
}

// AddCompleteDeleteSteps builds the step list for n todos: every entry is
// typed and entered, then every entry is checked, then the list is drained
// by always removing the first entry. The passes never interleave.
func AddCompleteDeleteSteps(n int) []Step {
	if n <= 0 {
		return []Step{}
	}
	steps := make([]Step, 0, 4*n)

	for i := 0; i < n; i++ {
		steps = append(steps,
			Step{Name: fmt.Sprintf("Inputing %d", i), Work: InputTodo{Number: i}},
			Step{Name: fmt.Sprintf("Entering %d", i), Work: PressEnter{}},
		)
	}
	for i := 0; i < n; i++ {
		steps = append(steps, Step{Name: fmt.Sprintf("Checking %d", i), Work: Click{Class: ClassToggle, Index: i}})
	}
	// Each removal shifts the rest up, so index 0 drains from the front.
	for i := 0; i < n; i++ {
		steps = append(steps, Step{Name: fmt.Sprintf("Removing %d", i), Work: Click{Class: ClassDestroy, Index: 0}})
	}
	return steps
}

// Suite is a named, ready-to-run step list.
type Suite struct {
	Name  string
	Items int
	Steps []Step
}

// New returns the add/complete/delete suite for items todos.
func New(items int) Suite {
	if items < 0 {
		items = 0
	}
	return Suite{Name: Name, Items: items, Steps: AddCompleteDeleteSteps(items)}
}

// GetFacts is the suite's facts accessor.
func (s Suite) GetFacts(ctx context.Context, doc Document) (*Facts, error) {
	return GetFacts(ctx, doc)
}

// Only keeps the steps whose phase is one of phases, preserving order.
// With no phases the suite is returned unchanged.
func (s Suite) Only(phases ...string) Suite {
	if len(phases) == 0 {
		return s
	}
	keep := make(map[string]bool, len(phases))
	for _, p := range phases {
		keep[strings.ToLower(strings.TrimSpace(p))] = true
	}
	out := s
	out.Steps = make([]Step, 0, len(s.Steps))
	for _, st := range s.Steps {
		if keep[strings.ToLower(st.Phase())] {
			out.Steps = append(out.Steps, st)
		}
	}
	return out
}
