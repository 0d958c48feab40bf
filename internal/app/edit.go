package app

import (
	"time"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/view"
)

// ClickOutsideDelay is how long after an edit starts before a click outside
// the row cancels it, so the click that opened the editor does not close it.
const ClickOutsideDelay = 100 * time.Millisecond

// EditAction is what an input event asks the edit session to do.
type EditAction int

const (
	EditNone EditAction = iota
	EditSave
	EditCancel
)

// EditSession is an open inline editor on one row.
type EditSession struct {
	TaskID   model.ID
	Original string // display title when the edit started
	Value    string // current editor contents

	initial string
	started time.Time
}

// BeginEdit opens an editor on row. The editor starts with the decoded
// title so saving does not escape it twice.
func BeginEdit(row view.Row, now time.Time) *EditSession {
	value := model.UnescapeHTML(row.Raw)
	return &EditSession{
		TaskID:   row.TaskID,
		Original: row.Title,
		Value:    value,
		initial:  value,
		started:  now,
	}
}

// HandleKey maps a key to an action: enter saves, esc cancels.
func (s *EditSession) HandleKey(key string) EditAction {
	switch key {
	case "enter":
		return EditSave
	case "esc":
		return EditCancel
	}
	return EditNone
}

// HandleClick maps a click to an action. Clicks inside the editing row do
// nothing; a click outside cancels once the session is armed.
func (s *EditSession) HandleClick(insideRow bool, now time.Time) EditAction {
	if insideRow || !s.Armed(now) {
		return EditNone
	}
	return EditCancel
}

// Armed reports whether clicks outside the row now cancel the edit.
func (s *EditSession) Armed(now time.Time) bool {
	return now.Sub(s.started) >= ClickOutsideDelay
}

// Cancel restores the original title. Nothing is written.
func (s *EditSession) Cancel() string {
	s.Value = s.initial
	return s.Original
}
