// Package tui is the interactive task list. It owns the drawn state and
// runs every command handler as a tea.Cmd; handlers report back through
// Port, which turns app.UI calls into program messages.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todosync/internal/app"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/view"
)

// editorHeight is the height of the bordered edit bar: two content lines
// plus the border.
const editorHeight = 4

// Model is the bubbletea model of the task list.
type Model struct {
	ctx    context.Context
	ctrl   *app.Controller
	keys   keyMap
	styles Styles
	now    func() time.Time

	list    view.List
	l       list.Model
	control int
	busy    map[app.Busy]bool

	input    textinput.Model
	inputOn  bool
	editor   textinput.Model
	edit     *app.EditSession
	alert    string
	confirm  *confirmMsg
	spin     spinner.Model
	help     help.Model
	width    int
	height   int
	quitting bool
}

// New creates the model. Handlers run with ctx.
func New(ctx context.Context, ctrl *app.Controller, theme string) Model {
	styles := NewStyles(theme)

	l := list.New(nil, rowDelegate{styles: styles}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)
	l.Styles.PaginationStyle = styles.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	l.DisableQuitKeybindings()

	in := textinput.New()
	in.Prompt = "+ "
	in.Placeholder = "New task title..."
	in.CharLimit = 200

	ed := textinput.New()
	ed.Prompt = "> "
	ed.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Accent

	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		keys:   defaultKeys(),
		styles: styles,
		now:    time.Now,
		list:   view.Loading(),
		l:      l,
		busy:   make(map[app.Busy]bool),
		input:  in,
		editor: ed,
		spin:   sp,
		help:   help.New(),
		width:  80,
		height: 24,
	}
	m.resize()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.mount())
}

// run wraps a handler call as a command.
func (m Model) run(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return doneMsg{err: fn(ctx)} }
}

func (m Model) mount() tea.Cmd {
	ctrl := m.ctrl
	return m.run(func(ctx context.Context) error {
		_, err := ctrl.Mount(ctx)
		return err
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case listMsg:
		m.showList(msg.list)
		return m, nil

	case busyMsg:
		if msg.on {
			m.busy[msg.busy] = true
		} else {
			delete(m.busy, msg.busy)
		}
		return m, nil

	case clearInputMsg:
		m.input.SetValue("")
		return m, nil

	case alertMsg:
		m.alert = msg.text
		return m, nil

	case confirmMsg:
		// one prompt at a time; a second request is declined
		if m.confirm != nil {
			msg.reply <- false
			return m, nil
		}
		m.confirm = &msg
		return m, nil

	case doneMsg:
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.l, cmd = m.l.Update(msg)
	return m, cmd
}

// showList replaces the drawn list. A redraw closes any open editor and
// drops row busy markers; the add control keeps its own.
func (m *Model) showList(l view.List) {
	m.list = l
	if cmd := m.l.SetItems(toItems(l)); cmd != nil {
		// an active filter is re-applied now, not on a later message,
		// so the redrawn list is never drawn empty
		if matches, ok := cmd().(list.FilterMatchesMsg); ok {
			m.l, _ = m.l.Update(matches)
		}
	}
	for b := range m.busy {
		if b.Kind != app.BusyAdd {
			delete(m.busy, b)
		}
	}
	m.closeEditor()
	m.control = 0
}

func (m *Model) resize() {
	h := m.height - 8
	if m.edit != nil {
		h -= editorHeight
	}
	if h < 3 {
		h = 3
	}
	m.l.SetSize(m.width-4, h)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// the alert must be acknowledged before anything else
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	if m.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			m.answer(true)
		case "n", "N", "esc":
			m.answer(false)
		}
		return m, nil
	}

	if m.edit != nil {
		return m.editKey(msg)
	}
	if m.inputOn {
		return m.inputKey(msg)
	}
	if m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.inputOn = true
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Reload):
		return m, m.mount()
	case key.Matches(msg, m.keys.HelpKey):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.control = (m.control + 1) % 3
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.control = (m.control + 2) % 3
		return m, nil
	case key.Matches(msg, m.keys.Press):
		return m.press(m.selectedControl(view.ControlKind(m.control)))
	case key.Matches(msg, m.keys.Edit):
		return m.press(m.selectedControl(view.ControlEdit))
	case key.Matches(msg, m.keys.Toggle):
		return m.press(m.selectedControl(view.ControlToggleDone))
	case key.Matches(msg, m.keys.Delete):
		return m.press(m.selectedControl(view.ControlDelete))
	}

	var cmd tea.Cmd
	m.l, cmd = m.l.Update(msg)
	return m, cmd
}

func (m *Model) answer(ok bool) {
	m.confirm.reply <- ok
	m.confirm = nil
}

func (m Model) selectedControl(kind view.ControlKind) (view.Control, bool) {
	it, ok := m.l.SelectedItem().(rowItem)
	if !ok {
		return view.Control{}, false
	}
	return it.row.Control(kind), true
}

// press activates a row control through view.Dispatch.
func (m Model) press(c view.Control, ok bool) (tea.Model, tea.Cmd) {
	if !ok {
		return m, nil
	}
	ctrl := m.ctrl
	cmd, _ := view.Dispatch(m.list, c, view.Handlers[tea.Cmd]{
		Edit: func(r view.Row) tea.Cmd {
			if m.rowBusy(r) {
				return nil
			}
			return m.beginEdit(r)
		},
		ToggleDone: func(r view.Row) tea.Cmd {
			if m.rowBusy(r) {
				return nil
			}
			return m.run(func(ctx context.Context) error { return ctrl.ToggleDone(ctx, r.TaskID) })
		},
		Delete: func(r view.Row) tea.Cmd {
			if m.rowBusy(r) {
				return nil
			}
			return m.run(func(ctx context.Context) error { return ctrl.Delete(ctx, r.TaskID) })
		},
	})
	return m, cmd
}

func (m *Model) beginEdit(r view.Row) tea.Cmd {
	m.edit = app.BeginEdit(r, m.now())
	m.editor.SetValue(m.edit.Value)
	m.editor.CursorEnd()
	m.resize()
	return m.editor.Focus()
}

func (m *Model) closeEditor() {
	if m.edit == nil {
		return
	}
	m.edit = nil
	m.editor.SetValue("")
	m.editor.Blur()
	m.resize()
}

func (m Model) editingID() model.ID {
	if m.edit == nil {
		return model.ID{}
	}
	return m.edit.TaskID
}

func (m Model) rowBusy(r view.Row) bool { return m.idBusy(r.TaskID) }

func (m Model) idBusy(id model.ID) bool {
	for b := range m.busy {
		if b.Kind != app.BusyAdd && b.TaskID.Equal(id) {
			return true
		}
	}
	return false
}

func (m Model) addBusy() bool { return m.busy[app.Busy{Kind: app.BusyAdd}] }

func (m Model) inputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputOn = false
		m.input.Blur()
		return m, nil
	case "enter":
		if m.addBusy() {
			return m, nil
		}
		value, ctrl := m.input.Value(), m.ctrl
		return m, m.run(func(ctx context.Context) error { return ctrl.Add(ctx, value) })
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.idBusy(m.edit.TaskID) {
		return m, nil
	}
	switch m.edit.HandleKey(msg.String()) {
	case app.EditSave:
		session := *m.edit
		ctrl := m.ctrl
		return m, m.run(func(ctx context.Context) error { return ctrl.SaveEdit(ctx, &session) })
	case app.EditCancel:
		m.edit.Cancel()
		m.closeEditor()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.edit.Value = m.editor.Value()
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.edit == nil || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	top := m.editorTop()
	inside := msg.Y >= top && msg.Y < top+editorHeight
	if row, ok := m.editRowLine(); ok && msg.Y == row {
		inside = true
	}
	if m.edit.HandleClick(inside, m.now()) == app.EditCancel && !m.idBusy(m.edit.TaskID) {
		m.edit.Cancel()
		m.closeEditor()
	}
	return m, nil
}

// editorTop is the screen line where the edit bar starts: the frame's top
// border plus everything drawn above the bar.
func (m Model) editorTop() int {
	return 1 + lipgloss.Height(m.body())
}

// editRowLine is the screen line of the row being edited, if it is drawn.
func (m Model) editRowLine() (int, bool) {
	for i, ln := range strings.Split(m.body(), "\n") {
		if strings.Contains(ln, editingMark) {
			return 1 + i, true
		}
	}
	return 0, false
}

func (m Model) header() string {
	s := m.styles
	var done, pending int
	for _, r := range m.list.Rows {
		if r.Completed {
			done++
		} else {
			pending++
		}
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		s.Title.Render("Todos"),
		s.Success.Render("✔"), done,
		s.Pending.Render("•"), pending,
		s.Accent.Render("Total"), len(m.list.Rows),
	)
}

func (m Model) inputLine() string {
	line := m.input.View()
	if m.addBusy() {
		line += " " + m.spin.View()
	} else if !m.inputOn {
		line = m.styles.Muted.Render("press a to add a task")
	}
	return line
}

// body is everything above the edit bar.
func (m Model) body() string {
	parts := []string{m.header(), m.inputLine(), ""}
	switch m.list.State {
	case view.StateReady:
		l := m.l
		l.SetDelegate(rowDelegate{
			styles:  m.styles,
			control: m.control,
			busy:    m.rowBusy,
			editing: m.editingID(),
			spinner: m.spin.View(),
		})
		parts = append(parts, l.View())
	case view.StateLoading:
		parts = append(parts, m.spin.View()+" "+m.list.Message)
	case view.StateFailed:
		parts = append(parts, m.styles.Error.Render(m.list.Message))
	default:
		parts = append(parts, m.styles.Muted.Render(m.list.Message))
	}
	return strings.Join(parts, "\n")
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	content := m.body()

	if m.edit != nil {
		title := "Edit task: " + m.edit.Original
		if m.idBusy(m.edit.TaskID) {
			title += " " + m.spin.View()
		}
		content += "\n" + m.styles.Bar.Render(title+"\n"+m.editor.View())
	}

	switch {
	case m.confirm != nil:
		content += "\n\n" + m.styles.Accent.Render(m.confirm.prompt) + " " + m.styles.Help.Render("[y/n]")
	case m.alert != "":
		content += "\n\n" + m.styles.Error.Render(m.alert) + " " + m.styles.Help.Render("(press any key)")
	}

	content += "\n" + m.help.View(m.keys)
	return m.styles.Frame.Render(content)
}
