// Package app holds the command handlers: Add, Edit, ToggleDone, Delete and
// Mount. Each handler marks its control busy, talks to the task store,
// re-fetches the whole list and hands the redrawn list to the UI. Failures
// are logged and shown to the user as an alert; nothing is retried.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todosync/internal/guard"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/view"
)

// User-facing messages.
const (
	MsgEmptyTitle    = "Title cannot be empty!"
	MsgTaskExisted   = "This task existed!"
	MsgTaskExists    = "This task already exists!"
	MsgAddFailed     = "Error adding task. Please try again."
	MsgUpdateFailed  = "Error updating task. Please try again."
	MsgDeleteFailed  = "Error deleting task. Please try again."
	MsgConfirmDelete = "Are you sure to delete this task?"
)

// ErrDeclined is returned by Delete when the user did not confirm.
var ErrDeclined = errors.New("deletion not confirmed")

// TaskStore is what the handlers need from the store accessor.
type TaskStore interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, title string) (model.Task, error)
	SetCompleted(ctx context.Context, id model.ID) error
	SetTitle(ctx context.Context, id model.ID, title string) error
	Remove(ctx context.Context, id model.ID) error
}

// BusyKind names the control a handler disables while it runs.
type BusyKind int

const (
	BusyAdd BusyKind = iota
	BusyEdit
	BusyToggle
	BusyDelete
)

// Busy identifies a control: the add button, or a row control by task id.
type Busy struct {
	Kind   BusyKind
	TaskID model.ID
}

// UI is the display the handlers drive. Implementations must be safe to
// call from the goroutine a handler runs on.
type UI interface {
	// ShowList replaces the whole list area.
	ShowList(l view.List)
	SetBusy(b Busy, on bool)
	// ClearInput empties the new-task input.
	ClearInput()
	// Alert shows a message the user must acknowledge.
	Alert(msg string)
	// Confirm asks a yes/no question and waits for the answer.
	Confirm(ctx context.Context, prompt string) bool
}

// Controller runs the command handlers.
type Controller struct {
	store  TaskStore
	ui     UI
	logger *log.Logger
}

// New creates a Controller. A nil logger discards diagnostics.
func New(store TaskStore, ui UI, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{store: store, ui: ui, logger: logger}
}

// Mount fetches the list and draws it. On failure the list area shows the
// load error and the error is returned.
func (c *Controller) Mount(ctx context.Context) ([]model.Task, error) {
	c.ui.ShowList(view.Loading())
	tasks, err := c.store.List(ctx)
	if err != nil {
		c.logger.Error("load tasks", "err", err)
		c.ui.ShowList(view.Failed())
		return nil, err
	}
	c.logger.Debug("loaded tasks", "count", len(tasks))
	c.ui.ShowList(view.Render(tasks))
	return tasks, nil
}

func (c *Controller) remount(ctx context.Context) {
	_, _ = c.Mount(ctx)
}

// fail logs a transport failure and alerts the user.
func (c *Controller) fail(op, msg string, err error, kv ...any) error {
	c.logger.Error(op, append(kv, "err", err)...)
	c.ui.Alert(msg)
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Controller) reject(title string, cause error, msg string) error {
	c.ui.Alert(msg)
	return &guard.ValidationError{Title: title, Err: cause}
}

// isDuplicate checks the title both as typed and as it will be stored,
// since stored titles are HTML-escaped.
func isDuplicate(tasks []model.Task, title string, exclude model.ID) bool {
	return guard.IsDuplicateTitle(tasks, title, exclude) ||
		guard.IsDuplicateTitle(tasks, model.EscapeHTML(title), exclude)
}

// Add creates a task from the new-task input.
func (c *Controller) Add(ctx context.Context, input string) error {
	c.ui.SetBusy(Busy{Kind: BusyAdd}, true)
	defer c.ui.SetBusy(Busy{Kind: BusyAdd}, false)

	title := strings.TrimSpace(input)
	if title == "" {
		return c.reject(input, guard.ErrEmptyTitle, MsgEmptyTitle)
	}

	tasks, err := c.store.List(ctx)
	if err != nil {
		return c.fail("add task", MsgAddFailed, err)
	}
	if isDuplicate(tasks, title, model.ID{}) {
		return c.reject(title, guard.ErrDuplicateTitle, MsgTaskExisted)
	}

	created, err := c.store.Create(ctx, title)
	if err != nil {
		return c.fail("add task", MsgAddFailed, err)
	}
	c.logger.Debug("task added", "id", created.ID)

	c.ui.ClearInput()
	c.remount(ctx)
	return nil
}

// SaveEdit writes the edited title of an open edit session.
func (c *Controller) SaveEdit(ctx context.Context, s *EditSession) error {
	title := strings.TrimSpace(s.Value)
	if title == "" {
		return c.reject(s.Value, guard.ErrEmptyTitle, MsgEmptyTitle)
	}

	busy := Busy{Kind: BusyEdit, TaskID: s.TaskID}
	c.ui.SetBusy(busy, true)
	defer c.ui.SetBusy(busy, false)

	tasks, err := c.store.List(ctx)
	if err != nil {
		return c.fail("update task", MsgUpdateFailed, err, "id", s.TaskID)
	}
	if isDuplicate(tasks, title, s.TaskID) {
		return c.reject(title, guard.ErrDuplicateTitle, MsgTaskExists)
	}

	if err := c.store.SetTitle(ctx, s.TaskID, title); err != nil {
		return c.fail("update task", MsgUpdateFailed, err, "id", s.TaskID)
	}
	c.logger.Debug("task renamed", "id", s.TaskID)

	c.remount(ctx)
	return nil
}

// ToggleDone flips the completed flag of a task. On success the busy
// control is not released here: the remount replaces it.
func (c *Controller) ToggleDone(ctx context.Context, id model.ID) error {
	busy := Busy{Kind: BusyToggle, TaskID: id}
	c.ui.SetBusy(busy, true)

	if err := c.store.SetCompleted(ctx, id); err != nil {
		c.ui.SetBusy(busy, false)
		return c.fail("toggle task", MsgUpdateFailed, err, "id", id)
	}
	c.logger.Debug("task toggled", "id", id)

	c.remount(ctx)
	return nil
}

// Delete removes a task after the user confirms.
func (c *Controller) Delete(ctx context.Context, id model.ID) error {
	if !c.ui.Confirm(ctx, MsgConfirmDelete) {
		return ErrDeclined
	}

	busy := Busy{Kind: BusyDelete, TaskID: id}
	c.ui.SetBusy(busy, true)

	if err := c.store.Remove(ctx, id); err != nil {
		// no remount follows, so release the control here
		c.ui.SetBusy(busy, false)
		return c.fail("delete task", MsgDeleteFailed, err, "id", id)
	}
	c.logger.Debug("task deleted", "id", id)

	c.remount(ctx)
	return nil
}
