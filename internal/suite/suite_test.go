package suite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinchtab/todobench/internal/dom"
	"github.com/pinchtab/todobench/internal/suite"
)

func TestAddCompleteDeleteStepsCount(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, suite.DefaultItems} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			steps := suite.AddCompleteDeleteSteps(n)
			assert.Len(t, steps, 4*n)
		})
	}
}

func TestAddCompleteDeleteStepsEmpty(t *testing.T) {
	steps := suite.AddCompleteDeleteSteps(0)
	require.NotNil(t, steps)
	assert.Empty(t, steps)
	assert.Empty(t, suite.AddCompleteDeleteSteps(-3))
}

func TestAddCompleteDeleteStepsOrder(t *testing.T) {
	var names []string
	for _, s := range suite.AddCompleteDeleteSteps(2) {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Inputing 0", "Entering 0",
		"Inputing 1", "Entering 1",
		"Checking 0", "Checking 1",
		"Removing 0", "Removing 1",
	}, names)
}

func TestStepTargets(t *testing.T) {
	steps := suite.AddCompleteDeleteSteps(5)

	var checking, removing int
	for _, s := range steps {
		switch s.Phase() {
		case "Checking":
			c, ok := s.Work.(suite.Click)
			require.True(t, ok, "%s work is %T", s.Name, s.Work)
			assert.Equal(t, suite.ClassToggle, c.Class)
			assert.Equal(t, fmt.Sprintf("Checking %d", c.Index), s.Name)
			checking++
		case "Removing":
			c, ok := s.Work.(suite.Click)
			require.True(t, ok, "%s work is %T", s.Name, s.Work)
			assert.Equal(t, suite.Click{Class: suite.ClassDestroy, Index: 0}, c)
			removing++
		case "Inputing":
			in, ok := s.Work.(suite.InputTodo)
			require.True(t, ok)
			assert.Equal(t, fmt.Sprintf("Inputing %d", in.Number), s.Name)
		case "Entering":
			assert.IsType(t, suite.PressEnter{}, s.Work)
		default:
			t.Fatalf("unexpected step %q", s.Name)
		}
	}
	assert.Equal(t, 5, checking)
	assert.Equal(t, 5, removing)
}

func TestGetFacts(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		doc := dom.NewDocument()
		doc.Body().AppendChild(doc.CreateElement("input", "edit"))

		facts, err := suite.GetFacts(ctx, doc)
		assert.Nil(t, facts)
		assert.ErrorIs(t, err, suite.ErrNoFacts)
	})

	t.Run("present", func(t *testing.T) {
		doc := dom.NewDocument()
		input := doc.Body().AppendChild(doc.CreateElement("input", suite.ClassNewTodo))
		doc.Body().AppendChild(doc.CreateElement("input", suite.ClassNewTodo))

		facts, err := suite.New(3).GetFacts(ctx, doc)
		require.NoError(t, err)
		assert.Same(t, doc, facts.Doc.(*dom.Document))
		assert.Same(t, input, facts.Input.(*dom.Element))
	})
}

func TestInputTodoFiresOneInputEvent(t *testing.T) {
	ctx := context.Background()
	doc := dom.NewDocument()
	input := doc.Body().AppendChild(doc.CreateElement("input", suite.ClassNewTodo))

	var seen []string
	input.AddEventListener("input", func(ev *dom.Event) {
		assert.True(t, ev.Bubbles)
		assert.True(t, ev.Cancelable)
		seen = append(seen, ev.Target.Value)
	})

	facts, err := suite.GetFacts(ctx, doc)
	require.NoError(t, err)

	steps := suite.AddCompleteDeleteSteps(4)
	require.Equal(t, "Inputing 3", steps[6].Name)
	require.NoError(t, steps[6].Work.Do(ctx, facts))

	assert.Equal(t, "Nom Nom 3", input.Value)
	assert.Equal(t, []string{"Nom Nom 3"}, seen)
}

func TestPressEnterFiresOneKeydown(t *testing.T) {
	ctx := context.Background()
	doc := dom.NewDocument()
	input := doc.Body().AppendChild(doc.CreateElement("input", suite.ClassNewTodo))

	var codes []int
	doc.Body().AddEventListener("keydown", func(ev *dom.Event) {
		assert.Equal(t, "Enter", ev.Key)
		assert.Same(t, input, ev.Target)
		codes = append(codes, ev.KeyCode)
	})

	facts, err := suite.GetFacts(ctx, doc)
	require.NoError(t, err)
	require.NoError(t, suite.PressEnter{}.Do(ctx, facts))

	assert.Equal(t, []int{suite.EnterKeyCode}, codes)
}

func TestClickOutOfRange(t *testing.T) {
	ctx := context.Background()
	doc := dom.NewDocument()
	dom.MountTodoApp(doc)

	facts, err := suite.GetFacts(ctx, doc)
	require.NoError(t, err)

	err = suite.Click{Class: suite.ClassDestroy, Index: 0}.Do(ctx, facts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, suite.ErrNoElement))

	var idx *suite.IndexError
	require.ErrorAs(t, err, &idx)
	assert.Equal(t, suite.ClassDestroy, idx.Class)
	assert.Zero(t, idx.Len)
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	doc := dom.NewDocument()
	app := dom.MountTodoApp(doc)

	facts, err := suite.GetFacts(ctx, doc)
	require.NoError(t, err)

	const n = 3
	steps := suite.AddCompleteDeleteSteps(n)
	for i, s := range steps {
		require.NoError(t, s.Work.Do(ctx, facts), s.Name)

		switch i {
		case 2*n - 1:
			require.Equal(t, n, app.Len())
			assert.Equal(t, "Nom Nom 0", app.Todos()[0].Title)
			assert.Equal(t, "Nom Nom 2", app.Todos()[2].Title)
		case 3*n - 1:
			for _, todo := range app.Todos() {
				assert.True(t, todo.Completed, todo.Title)
			}
		}
	}

	assert.Zero(t, app.Len())
	remaining, err := suite.CountEntries(ctx, doc)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestOnly(t *testing.T) {
	s := suite.New(2).Only("inputing", "Entering")
	require.Len(t, s.Steps, 4)
	assert.Equal(t, "Inputing 0", s.Steps[0].Name)
	assert.Equal(t, "Entering 1", s.Steps[3].Name)

	assert.Len(t, suite.New(2).Only().Steps, 8)
}
