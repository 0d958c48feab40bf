// Package backend is the reference /todos server's storage contract.
// Implementations live in sqlitestore and jsonstore; httpapi serves them.
package backend

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/idilsaglam/todosync/internal/model"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Repository stores task records. Records keep any extra fields a client
// sent; only id, title and completed are interpreted.
type Repository interface {
	// List returns every task in creation order.
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	// Create stores t, assigning an id when t has none.
	Create(ctx context.Context, t model.Task) (model.Task, error)
	// Update replaces the record with t's id.
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a time-ordered UUID (v7), falling back to a random v4.
func NewID() model.ID {
	id, err := uuid.NewV7()
	if err != nil {
		return model.StringID(uuid.NewString())
	}
	return model.StringID(id.String())
}
