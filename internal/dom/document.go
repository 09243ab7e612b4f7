// Package dom is a small in-memory stand-in for a browser document: a tree of
// elements with class lookup, bubbling event dispatch and native click
// activation. It implements suite.Document so the suite can run without a
// browser.
//
// A Document is not safe for concurrent use, the same as a real page.
package dom

import (
	"context"
	"slices"

	"github.com/pinchtab/todobench/internal/suite"
)

// Listener handles an event delivered to an element.
type Listener func(ev *Event)

// Event is a dispatched notification.
type Event struct {
	suite.Event

	Target        *Element
	CurrentTarget *Element

	defaultPrevented bool
	stopped          bool
}

// PreventDefault cancels the default action if the event is cancelable.
func (ev *Event) PreventDefault() {
	if ev.Cancelable {
		ev.defaultPrevented = true
	}
}

// DefaultPrevented reports whether a listener cancelled the event.
func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors.
func (ev *Event) StopPropagation() { ev.stopped = true }

// Document owns an element tree rooted at Body.
type Document struct {
	body *Element
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.body = d.CreateElement("body")
	return d
}

// Body is the root element.
func (d *Document) Body() *Element { return d.body }

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string, classes ...string) *Element {
	return &Element{
		doc:       d,
		Tag:       tag,
		classes:   slices.Clone(classes),
		listeners: make(map[string][]Listener),
	}
}

// GetElementsByClassName returns attached elements carrying class, in
// document order.
func (d *Document) GetElementsByClassName(class string) []*Element {
	var out []*Element
	var walk func(el *Element)
	walk = func(el *Element) {
		if el.HasClass(class) {
			out = append(out, el)
		}
		for _, c := range el.children {
			walk(c)
		}
	}
	walk(d.body)
	return out
}

// ElementsByClassName implements suite.Document.
func (d *Document) ElementsByClassName(ctx context.Context, class string) ([]suite.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found := d.GetElementsByClassName(class)
	out := make([]suite.Element, len(found))
	for i, el := range found {
		out[i] = el
	}
	return out, nil
}

// Element is a node in a Document.
type Element struct {
	doc *Document

	Tag     string
	Type    string
	Value   string
	Checked bool
	Text    string

	classes   []string
	parent    *Element
	children  []*Element
	listeners map[string][]Listener
}

// HasClass reports whether the element carries class.
func (el *Element) HasClass(class string) bool {
	return slices.Contains(el.classes, class)
}

// SetClass adds or removes class.
func (el *Element) SetClass(class string, on bool) {
	has := el.HasClass(class)
	switch {
	case on && !has:
		el.classes = append(el.classes, class)
	case !on && has:
		el.classes = slices.DeleteFunc(el.classes, func(c string) bool { return c == class })
	}
}

// Classes returns a copy of the class list.
func (el *Element) Classes() []string { return slices.Clone(el.classes) }

// Parent returns the parent element, nil when detached or the root.
func (el *Element) Parent() *Element { return el.parent }

// Children returns a copy of the child list.
func (el *Element) Children() []*Element { return slices.Clone(el.children) }

// AppendChild attaches child as the last child, detaching it first if needed.
func (el *Element) AppendChild(child *Element) *Element {
	child.Remove()
	child.parent = el
	el.children = append(el.children, child)
	return child
}

// Remove detaches the element from its parent.
func (el *Element) Remove() {
	p := el.parent
	if p == nil {
		return
	}
	p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == el })
	el.parent = nil
}

// AddEventListener registers fn for events of type typ.
func (el *Element) AddEventListener(typ string, fn Listener) {
	el.listeners[typ] = append(el.listeners[typ], fn)
}

// Dispatch delivers ev to the element and, if it bubbles, to each ancestor.
// It reports false when a listener prevented the default action.
func (el *Element) Dispatch(ev suite.Event) bool {
	e := &Event{Event: ev, Target: el}

	path := []*Element{el}
	if ev.Bubbles {
		for p := el.parent; p != nil; p = p.parent {
			path = append(path, p)
		}
	}
	for _, node := range path {
		e.CurrentTarget = node
		for _, fn := range slices.Clone(node.listeners[ev.Type]) {
			fn(e)
		}
		if e.stopped {
			break
		}
	}
	return !e.defaultPrevented
}

// Activate performs a user click: checkboxes flip first, then a bubbling
// "click" is dispatched, and a cancelled click restores the checkbox.
func (el *Element) Activate() {
	checkbox := el.Tag == "input" && el.Type == "checkbox"
	if checkbox {
		el.Checked = !el.Checked
	}
	ok := el.Dispatch(suite.Event{Type: "click", Bubbles: true, Cancelable: true})
	if checkbox && !ok {
		el.Checked = !el.Checked
	}
}

// SetValue implements suite.Element.
func (el *Element) SetValue(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el.Value = value
	return nil
}

// DispatchEvent implements suite.Element.
func (el *Element) DispatchEvent(ctx context.Context, ev suite.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el.Dispatch(ev)
	return nil
}

// Click implements suite.Element.
func (el *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el.Activate()
	return nil
}
