// Package guard holds the client-side title checks run before a write.
// They are advisory: nothing stops another client from writing the same
// title between the check and the write.
package guard

import (
	"errors"
	"strings"

	"github.com/idilsaglam/todosync/internal/model"
)

var (
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrDuplicateTitle = errors.New("task already exists")
)

// ValidationError is a rejected title. No write is attempted.
type ValidationError struct {
	Title string
	Err   error
}

func (e *ValidationError) Error() string { return e.Err.Error() + ": " + e.Title }
func (e *ValidationError) Unwrap() error { return e.Err }

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// IsDuplicateTitle reports whether any task other than excludeID has the
// candidate title, ignoring case and surrounding whitespace. A zero
// excludeID excludes nothing.
func IsDuplicateTitle(tasks []model.Task, candidate string, excludeID model.ID) bool {
	want := normalize(candidate)
	for _, t := range tasks {
		if !excludeID.IsZero() && t.ID.Equal(excludeID) {
			continue
		}
		if normalize(t.Title) == want {
			return true
		}
	}
	return false
}

// ValidateTitle rejects empty and duplicate titles.
func ValidateTitle(tasks []model.Task, candidate string, excludeID model.ID) error {
	if strings.TrimSpace(candidate) == "" {
		return &ValidationError{Title: candidate, Err: ErrEmptyTitle}
	}
	if IsDuplicateTitle(tasks, candidate, excludeID) {
		return &ValidationError{Title: candidate, Err: ErrDuplicateTitle}
	}
	return nil
}
