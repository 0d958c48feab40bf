// Package view turns a task list into a description of what to draw:
// rows, their controls and the list state. It draws nothing itself.
package view

import (
	"strings"
	"unicode"

	"github.com/idilsaglam/todosync/internal/model"
)

// State is what the list area currently shows.
type State int

const (
	StateLoading State = iota
	StateEmpty
	StateFailed
	StateReady
)

const (
	LoadingMessage = "Loading tasks..."
	EmptyMessage   = "No tasks available."
	FailedMessage  = "Error loading tasks. Please refresh the page."
)

// ControlKind identifies a per-row control.
type ControlKind int

const (
	ControlEdit ControlKind = iota
	ControlToggleDone
	ControlDelete
)

func (k ControlKind) String() string {
	switch k {
	case ControlEdit:
		return "edit"
	case ControlToggleDone:
		return "done"
	case ControlDelete:
		return "delete"
	}
	return "unknown"
}

// Control is a button on a row. It carries the id of its task.
type Control struct {
	Kind   ControlKind
	TaskID model.ID
	Label  string
}

// Row is one drawn task.
type Row struct {
	TaskID    model.ID
	Title     string // display-safe
	Raw       string // title as stored by the backend
	Completed bool
	Controls  []Control
}

// Control returns the row's control of the given kind.
func (r Row) Control(kind ControlKind) Control {
	for _, c := range r.Controls {
		if c.Kind == kind {
			return c
		}
	}
	return Control{Kind: kind, TaskID: r.TaskID}
}

// List is the full description of the list area.
type List struct {
	State   State
	Message string
	Rows    []Row
}

// Loading is shown while the list is being fetched.
func Loading() List { return List{State: StateLoading, Message: LoadingMessage} }

// Failed is shown when the list could not be fetched.
func Failed() List { return List{State: StateFailed, Message: FailedMessage} }

// ToggleLabel is the label of the toggle-done control.
func ToggleLabel(completed bool) string {
	if completed {
		return "Mark as undone"
	}
	return "Mark as done"
}

// Render describes tasks. The whole list is rebuilt on every call.
func Render(tasks []model.Task) List {
	if len(tasks) == 0 {
		return List{State: StateEmpty, Message: EmptyMessage}
	}
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, Row{
			TaskID:    t.ID,
			Title:     DisplayTitle(t.Title),
			Raw:       t.Title,
			Completed: t.Completed,
			Controls: []Control{
				{Kind: ControlEdit, TaskID: t.ID, Label: "Edit"},
				{Kind: ControlToggleDone, TaskID: t.ID, Label: ToggleLabel(t.Completed)},
				{Kind: ControlDelete, TaskID: t.ID, Label: "Delete"},
			},
		})
	}
	return List{State: StateReady, Rows: rows}
}

// Row returns the row for id.
func (l List) Row(id model.ID) (Row, bool) {
	for _, r := range l.Rows {
		if r.TaskID.Equal(id) {
			return r, true
		}
	}
	return Row{}, false
}

// DisplayTitle decodes the stored (HTML-escaped) title and drops control
// characters so a title cannot move the cursor or recolor the terminal.
func DisplayTitle(stored string) string {
	s := model.UnescapeHTML(stored)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return s
}

// Handlers receive control activations routed by Dispatch.
type Handlers[T any] struct {
	Edit       func(Row) T
	ToggleDone func(Row) T
	Delete     func(Row) T
}

// Dispatch routes an activated control to its handler. It is the single
// listener for every row, so nothing is rebound after a redraw. ok is
// false when the control no longer matches a drawn row.
func Dispatch[T any](l List, c Control, h Handlers[T]) (out T, ok bool) {
	row, found := l.Row(c.TaskID)
	if !found {
		return out, false
	}
	var fn func(Row) T
	switch c.Kind {
	case ControlEdit:
		fn = h.Edit
	case ControlToggleDone:
		fn = h.ToggleDone
	case ControlDelete:
		fn = h.Delete
	}
	if fn == nil {
		return out, false
	}
	return fn(row), true
}
