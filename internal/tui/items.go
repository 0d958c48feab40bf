package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/view"
)

// rowItem adapts a rendered row to bubbles/list.Item.
type rowItem struct {
	row view.Row
}

func (i rowItem) Title() string       { return i.row.Title }
func (i rowItem) Description() string { return "" }
func (i rowItem) FilterValue() string { return i.row.Title }

func toItems(l view.List) []list.Item {
	items := make([]list.Item, 0, len(l.Rows))
	for _, r := range l.Rows {
		items = append(items, rowItem{row: r})
	}
	return items
}

// editingMark replaces the controls of the row open in the editor.
const editingMark = "✎ editing"

// rowDelegate draws one row per line: checkbox, title and the row's
// controls. The selected row shows which control enter will press.
type rowDelegate struct {
	styles  Styles
	control int                // focused control on the selected row
	busy    func(view.Row) bool // row has a request in flight
	editing model.ID            // row open in the editor, zero when none
	spinner string
}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	s := d.styles
	selected := index == m.Index()

	box := s.Muted.Render(s.BoxUnchecked)
	title := it.row.Title
	if it.row.Completed {
		box = s.Success.Render(s.BoxChecked)
		title = s.Done.Render(title)
	}

	prefix := "  "
	if selected {
		prefix = s.Selected.Render("> ")
	}
	if !d.editing.IsZero() && it.row.TaskID.Equal(d.editing) {
		fmt.Fprintf(w, "%s%s %s  %s", prefix, box, title, s.Muted.Render(editingMark))
		return
	}

	busy := d.busy != nil && d.busy(it.row)
	controls := make([]string, 0, len(it.row.Controls))
	for i, c := range it.row.Controls {
		label := "[" + c.Label + "]"
		switch {
		case busy:
			label = s.Muted.Render(label)
		case selected && i == d.control:
			label = s.Focused.Render(label)
		default:
			label = s.Control.Render(label)
		}
		controls = append(controls, label)
	}
	if busy {
		controls = append(controls, d.spinner)
	}

	fmt.Fprintf(w, "%s%s %s  %s", prefix, box, title, strings.Join(controls, " "))
}
