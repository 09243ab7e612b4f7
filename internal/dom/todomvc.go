package dom

import (
	"strings"

	"github.com/pinchtab/todobench/internal/suite"
)

// Todo is one entry in a TodoApp.
type Todo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TodoApp is a TodoMVC view model wired to a Document. It keeps a draft from
// "input" events on .new-todo, commits it on an Enter keydown, and reacts to
// clicks on .toggle and .destroy through one delegated listener on the list.
type TodoApp struct {
	doc   *Document
	input *Element
	list  *Element

	draft  string
	todos  []*Todo
	rows   map[*Element]*Todo
	nextID int
}

// MountTodoApp renders the app shell into doc's body.
func MountTodoApp(doc *Document) *TodoApp {
	app := &TodoApp{doc: doc, rows: make(map[*Element]*Todo)}

	section := doc.Body().AppendChild(doc.CreateElement("section", "todoapp"))
	header := section.AppendChild(doc.CreateElement("header", "header"))
	app.input = header.AppendChild(doc.CreateElement("input", suite.ClassNewTodo))
	app.input.Type = "text"

	mainSection := section.AppendChild(doc.CreateElement("section", "main"))
	app.list = mainSection.AppendChild(doc.CreateElement("ul", "todo-list"))

	app.input.AddEventListener("input", func(ev *Event) {
		app.draft = ev.Target.Value
	})
	app.input.AddEventListener("keydown", app.onKeyDown)
	app.list.AddEventListener("click", app.onListClick)
	return app
}

// Input returns the new-todo element.
func (app *TodoApp) Input() *Element { return app.input }

// Todos returns a snapshot of the current entries.
func (app *TodoApp) Todos() []Todo {
	out := make([]Todo, len(app.todos))
	for i, t := range app.todos {
		out[i] = *t
	}
	return out
}

// Len returns the number of entries.
func (app *TodoApp) Len() int { return len(app.todos) }

func (app *TodoApp) onKeyDown(ev *Event) {
	if ev.KeyCode != suite.EnterKeyCode && ev.Key != "Enter" {
		return
	}
	ev.PreventDefault()

	title := strings.TrimSpace(app.draft)
	if title == "" {
		return
	}
	app.add(title)
	app.draft = ""
	app.input.Value = ""
}

func (app *TodoApp) add(title string) {
	t := &Todo{ID: app.nextID, Title: title}
	app.nextID++
	app.todos = append(app.todos, t)

	doc := app.doc
	li := doc.CreateElement("li")
	view := li.AppendChild(doc.CreateElement("div", "view"))
	toggle := view.AppendChild(doc.CreateElement("input", suite.ClassToggle))
	toggle.Type = "checkbox"
	label := view.AppendChild(doc.CreateElement("label"))
	label.Text = title
	view.AppendChild(doc.CreateElement("button", suite.ClassDestroy))

	app.list.AppendChild(li)
	app.rows[li] = t
}

func (app *TodoApp) onListClick(ev *Event) {
	li := app.rowOf(ev.Target)
	if li == nil {
		return
	}
	t := app.rows[li]

	switch {
	case ev.Target.HasClass(suite.ClassToggle):
		t.Completed = ev.Target.Checked
		li.SetClass("completed", t.Completed)
	case ev.Target.HasClass(suite.ClassDestroy):
		li.Remove()
		delete(app.rows, li)
		for i, other := range app.todos {
			if other == t {
				app.todos = append(app.todos[:i], app.todos[i+1:]...)
				break
			}
		}
	}
}

func (app *TodoApp) rowOf(el *Element) *Element {
	for n := el; n != nil; n = n.Parent() {
		if _, ok := app.rows[n]; ok {
			return n
		}
	}
	return nil
}
