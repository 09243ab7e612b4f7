package suite

import (
	"context"
	"errors"
	"fmt"
)

// Class names the suite relies on. They match the TodoMVC markup.
const (
	ClassNewTodo = "new-todo"
	ClassToggle  = "toggle"
	ClassDestroy = "destroy"
)

// EnterKeyCode is the legacy keyCode/which value for the Return key.
const EnterKeyCode = 13

var (
	// ErrNoFacts means the document has no new-todo input, so the suite
	// cannot run against it.
	ErrNoFacts = errors.New("suite: no new-todo input in document")

	// ErrNoElement is wrapped by IndexError when a step addresses an element
	// that does not exist.
	ErrNoElement = errors.New("suite: element not found")
)

// Document is the page the suite drives. Elements are returned in document
// order, like getElementsByClassName.
type Document interface {
	ElementsByClassName(ctx context.Context, class string) ([]Element, error)
}

// Element is a live handle to a node in a Document.
type Element interface {
	// SetValue assigns the element's value property without firing events.
	SetValue(ctx context.Context, value string) error
	// DispatchEvent delivers ev with the element as target.
	DispatchEvent(ctx context.Context, ev Event) error
	// Click runs the element's native activation behaviour.
	Click(ctx context.Context) error
}

// Event describes a synthetic notification. Key and KeyCode are only set for
// keyboard events.
type Event struct {
	Type       string `json:"type"`
	Bubbles    bool   `json:"bubbles"`
	Cancelable bool   `json:"cancelable"`
	Key        string `json:"key,omitempty"`
	KeyCode    int    `json:"keyCode,omitempty"`
}

// InputEvent returns the bubbling, cancelable "input" notification.
func InputEvent() Event {
	return Event{Type: "input", Bubbles: true, Cancelable: true}
}

// EnterKeyEvent returns a bubbling, cancelable "keydown" for the Return key.
func EnterKeyEvent() Event {
	return Event{
		Type:       "keydown",
		Bubbles:    true,
		Cancelable: true,
		Key:        "Enter",
		KeyCode:    EnterKeyCode,
	}
}

// IndexError reports a click on a position past the end of a class's
// element collection.
type IndexError struct {
	Class string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("suite: %q[%d] out of range (have %d)", e.Class, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrNoElement }

// SimulateInput sets the element's value and fires one "input" event so
// listening view models observe the change.
func SimulateInput(ctx context.Context, el Element, value string) error {
	if err := el.SetValue(ctx, value); err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	if err := el.DispatchEvent(ctx, InputEvent()); err != nil {
		return fmt.Errorf("dispatch input: %w", err)
	}
	return nil
}

// SimulateEnter fires one Enter "keydown" at the element.
func SimulateEnter(ctx context.Context, el Element) error {
	if err := el.DispatchEvent(ctx, EnterKeyEvent()); err != nil {
		return fmt.Errorf("dispatch keydown: %w", err)
	}
	return nil
}

// SimulateClick activates the index-th element of class. There is no retry:
// a missing element is an *IndexError.
func SimulateClick(ctx context.Context, doc Document, class string, index int) error {
	els, err := doc.ElementsByClassName(ctx, class)
	if err != nil {
		return fmt.Errorf("query %q: %w", class, err)
	}
	if index < 0 || index >= len(els) {
		return &IndexError{Class: class, Index: index, Len: len(els)}
	}
	if err := els[index].Click(ctx); err != nil {
		return fmt.Errorf("click %q[%d]: %w", class, index, err)
	}
	return nil
}

// CountEntries returns how many todo entries the document currently shows.
// Every entry carries exactly one toggle.
func CountEntries(ctx context.Context, doc Document) (int, error) {
	els, err := doc.ElementsByClassName(ctx, ClassToggle)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}
