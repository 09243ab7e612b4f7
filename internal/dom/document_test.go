package dom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinchtab/todobench/internal/suite"
)

func TestGetElementsByClassNameDocumentOrder(t *testing.T) {
	doc := NewDocument()
	a := doc.Body().AppendChild(doc.CreateElement("div", "x"))
	inner := a.AppendChild(doc.CreateElement("span", "x", "y"))
	b := doc.Body().AppendChild(doc.CreateElement("div", "x"))

	got := doc.GetElementsByClassName("x")
	require.Len(t, got, 3)
	assert.Same(t, a, got[0])
	assert.Same(t, inner, got[1])
	assert.Same(t, b, got[2])

	inner.Remove()
	assert.Len(t, doc.GetElementsByClassName("x"), 2)
	assert.Empty(t, doc.GetElementsByClassName("y"))
}

func TestDispatchBubbles(t *testing.T) {
	doc := NewDocument()
	parent := doc.Body().AppendChild(doc.CreateElement("div"))
	child := parent.AppendChild(doc.CreateElement("button"))

	var order []string
	child.AddEventListener("click", func(ev *Event) { order = append(order, "child") })
	parent.AddEventListener("click", func(ev *Event) {
		assert.Same(t, child, ev.Target)
		assert.Same(t, parent, ev.CurrentTarget)
		order = append(order, "parent")
	})

	child.Dispatch(suite.Event{Type: "click", Bubbles: true})
	assert.Equal(t, []string{"child", "parent"}, order)

	order = nil
	child.Dispatch(suite.Event{Type: "click"})
	assert.Equal(t, []string{"child"}, order)
}

func TestStopPropagation(t *testing.T) {
	doc := NewDocument()
	child := doc.Body().AppendChild(doc.CreateElement("button"))

	child.AddEventListener("click", func(ev *Event) { ev.StopPropagation() })
	doc.Body().AddEventListener("click", func(ev *Event) { t.Fatal("event escaped") })

	child.Dispatch(suite.Event{Type: "click", Bubbles: true})
}

func TestPreventDefaultNeedsCancelable(t *testing.T) {
	doc := NewDocument()
	el := doc.Body().AppendChild(doc.CreateElement("input"))

	var prevented []bool
	el.AddEventListener("keydown", func(ev *Event) {
		ev.PreventDefault()
		prevented = append(prevented, ev.DefaultPrevented())
	})

	assert.True(t, el.Dispatch(suite.Event{Type: "keydown"}))
	assert.False(t, el.Dispatch(suite.Event{Type: "keydown", Cancelable: true}))
	assert.Equal(t, []bool{false, true}, prevented)
}

func TestClassList(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("li", "a")

	el.SetClass("completed", true)
	el.SetClass("completed", true)
	assert.Equal(t, []string{"a", "completed"}, el.Classes())

	el.SetClass("a", false)
	assert.Equal(t, []string{"completed"}, el.Classes())

	// The returned slice is a copy.
	el.Classes()[0] = "x"
	assert.True(t, el.HasClass("completed"))
}

func TestActivateCheckbox(t *testing.T) {
	doc := NewDocument()
	box := doc.Body().AppendChild(doc.CreateElement("input", "toggle"))
	box.Type = "checkbox"

	require.NoError(t, box.Click(context.Background()))
	assert.True(t, box.Checked)

	box.AddEventListener("click", func(ev *Event) { ev.PreventDefault() })
	box.Activate()
	assert.True(t, box.Checked, "cancelled click must restore state")
}

func TestCancelledContext(t *testing.T) {
	doc := NewDocument()
	el := doc.Body().AppendChild(doc.CreateElement("input", "new-todo"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := doc.ElementsByClassName(ctx, "new-todo")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, el.SetValue(ctx, "x"), context.Canceled)
	assert.ErrorIs(t, el.Click(ctx), context.Canceled)
}

func TestTodoApp(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument()
	app := MountTodoApp(doc)
	input := app.Input()

	// Enter with an empty draft is ignored.
	require.NoError(t, input.DispatchEvent(ctx, suite.EnterKeyEvent()))
	assert.Zero(t, app.Len())

	for _, title := range []string{"milk", "  eggs  "} {
		require.NoError(t, suite.SimulateInput(ctx, input, title))
		require.NoError(t, suite.SimulateEnter(ctx, input))
	}
	require.Equal(t, 2, app.Len())
	assert.Equal(t, "eggs", app.Todos()[1].Title)
	assert.Empty(t, input.Value)

	require.NoError(t, suite.SimulateClick(ctx, doc, suite.ClassToggle, 1))
	assert.True(t, app.Todos()[1].Completed)
	li := doc.GetElementsByClassName(suite.ClassToggle)[1].Parent().Parent()
	assert.True(t, li.HasClass("completed"))
	view := li.Children()
	require.Len(t, view, 1)
	var tags []string
	for _, c := range view[0].Children() {
		tags = append(tags, c.Tag)
	}
	assert.Equal(t, []string{"input", "label", "button"}, tags)

	require.NoError(t, suite.SimulateClick(ctx, doc, suite.ClassDestroy, 0))
	require.Equal(t, 1, app.Len())
	assert.Equal(t, "eggs", app.Todos()[0].Title)
	assert.Len(t, doc.GetElementsByClassName(suite.ClassDestroy), 1)
}
