package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/pinchtab/todobench/internal/suite"
)

// objectGroup holds every remote object the document hands out so a session
// can release them in one call.
const objectGroup = "todobench"

// Pointer selects how clicks are delivered.
type Pointer int

const (
	// PointerNative calls element.click() in the page.
	PointerNative Pointer = iota
	// PointerMouse moves a real mouse to the element and presses it.
	PointerMouse
)

// ParsePointer maps "native"/"mouse" to a Pointer.
func ParsePointer(s string) (Pointer, error) {
	switch s {
	case "", "native":
		return PointerNative, nil
	case "mouse":
		return PointerMouse, nil
	}
	return PointerNative, fmt.Errorf("browser: unknown pointer %q", s)
}

// Document is a suite.Document backed by the page of a chromedp context.
// Every ctx passed to it must derive from that chromedp context.
type Document struct {
	pointer Pointer
}

// NewDocument returns a document using pointer for clicks.
func NewDocument(pointer Pointer) *Document {
	return &Document{pointer: pointer}
}

// ElementsByClassName implements suite.Document. The collection is
// snapshotted into an array so the handles stay stable for the caller.
func (d *Document) ElementsByClassName(ctx context.Context, class string) ([]suite.Element, error) {
	expr := fmt.Sprintf("Array.from(document.getElementsByClassName(%s))", jsString(class))

	var els []suite.Element
	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			arr, exc, err := runtime.Evaluate(expr).WithObjectGroup(objectGroup).Do(ctx)
			if err != nil {
				return err
			}
			if exc != nil {
				return exc
			}
			if arr.ObjectID == "" {
				return nil
			}
			defer func() { _ = runtime.ReleaseObject(arr.ObjectID).Do(ctx) }()

			props, _, _, exc, err := runtime.GetProperties(arr.ObjectID).WithOwnProperties(true).Do(ctx)
			if err != nil {
				return err
			}
			if exc != nil {
				return exc
			}
			els = d.collect(props)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return els, nil
}

func (d *Document) collect(props []*runtime.PropertyDescriptor) []suite.Element {
	type indexed struct {
		i  int
		id runtime.RemoteObjectID
	}
	var found []indexed
	for _, p := range props {
		i, err := strconv.Atoi(p.Name)
		if err != nil || p.Value == nil || p.Value.ObjectID == "" {
			continue
		}
		found = append(found, indexed{i, p.Value.ObjectID})
	}
	sort.Slice(found, func(a, b int) bool { return found[a].i < found[b].i })

	els := make([]suite.Element, len(found))
	for k, f := range found {
		els[k] = &element{doc: d, id: f.id}
	}
	return els
}

type element struct {
	doc *Document
	id  runtime.RemoteObjectID
}

func (e *element) call(ctx context.Context, fn string) error {
	return chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, exc, err := runtime.CallFunctionOn(fn).WithObjectID(e.id).Do(ctx)
			if err != nil {
				return err
			}
			if exc != nil {
				return exc
			}
			return nil
		}),
	)
}

func (e *element) SetValue(ctx context.Context, value string) error {
	return e.call(ctx, fmt.Sprintf("function() { this.value = %s; }", jsString(value)))
}

func (e *element) DispatchEvent(ctx context.Context, ev suite.Event) error {
	return e.call(ctx, dispatchSource(ev))
}

// dispatchSource is the function declaration that builds a plain Event, copies
// the key fields onto it and dispatches it on this.
func dispatchSource(ev suite.Event) string {
	init := fmt.Sprintf(`{"bubbles":%s,"cancelable":%s}`, jsBool(ev.Bubbles), jsBool(ev.Cancelable))
	var b strings.Builder
	fmt.Fprintf(&b, "function() {\n\tvar ev = new Event(%s, %s);\n", jsString(ev.Type), init)
	if ev.Key != "" {
		fmt.Fprintf(&b, "\tev.key = %s;\n", jsString(ev.Key))
	}
	if ev.KeyCode != 0 {
		fmt.Fprintf(&b, "\tev.keyCode = %d; ev.which = %d;\n", ev.KeyCode, ev.KeyCode)
	}
	b.WriteString("\tthis.dispatchEvent(ev);\n}")
	return b.String()
}

func (e *element) Click(ctx context.Context) error {
	if e.doc.pointer == PointerMouse {
		return e.mouseClick(ctx)
	}
	return e.call(ctx, "function() { this.click(); }")
}

func (e *element) mouseClick(ctx context.Context) error {
	var box *dom.BoxModel
	if err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := dom.ScrollIntoViewIfNeeded().WithObjectID(e.id).Do(ctx); err != nil {
				return err
			}
			var err error
			box, err = dom.GetBoxModel().WithObjectID(e.id).Do(ctx)
			return err
		}),
	); err != nil {
		return err
	}
	x, y, err := boxCenter(box)
	if err != nil {
		return err
	}
	return humanClick(ctx, x, y)
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func jsBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
