// Package store is the task store accessor: list, create, update and
// delete operations on the remote /todos collection.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/transport"
)

// CollectionPath is the REST resource holding tasks.
const CollectionPath = "/todos"

// UpdateMode selects how single-field updates reach the backend.
type UpdateMode string

const (
	// ModeReplace reads the record and PUTs it back whole with one field
	// changed. A concurrent change between the read and the write is lost.
	ModeReplace UpdateMode = "replace"

	// ModePatch sends only the changed field with PATCH.
	ModePatch UpdateMode = "patch"
)

// ParseUpdateMode validates a configured mode. Empty means ModeReplace.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch UpdateMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeReplace:
		return ModeReplace, nil
	case ModePatch:
		return ModePatch, nil
	}
	return "", fmt.Errorf("unknown update mode %q (want replace or patch)", s)
}

// Adapter is the HTTP client contract the store needs.
// *transport.Client implements it.
type Adapter interface {
	Get(ctx context.Context, path string) (transport.Response, error)
	Post(ctx context.Context, path string, body any) (transport.Response, error)
	Put(ctx context.Context, path string, body any) (transport.Response, error)
	Patch(ctx context.Context, path string, body any) (transport.Response, error)
	Delete(ctx context.Context, path string) (transport.Response, error)
}

// Store wraps an Adapter with task operations. It keeps no task state.
type Store struct {
	api  Adapter
	mode UpdateMode
}

// New creates a Store. An empty mode means ModeReplace.
func New(api Adapter, mode UpdateMode) *Store {
	if mode == "" {
		mode = ModeReplace
	}
	return &Store{api: api, mode: mode}
}

// Mode returns the update strategy in use.
func (s *Store) Mode() UpdateMode { return s.mode }

func itemPath(id model.ID) string {
	return CollectionPath + "/" + url.PathEscape(id.String())
}

// List fetches the full collection.
func (s *Store) List(ctx context.Context) ([]model.Task, error) {
	resp, err := s.api.Get(ctx, CollectionPath)
	if err != nil {
		return nil, err
	}
	var tasks []model.Task
	if err := resp.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Get fetches one task.
func (s *Store) Get(ctx context.Context, id model.ID) (model.Task, error) {
	resp, err := s.api.Get(ctx, itemPath(id))
	if err != nil {
		return model.Task{}, err
	}
	var task model.Task
	if err := resp.Decode(&task); err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

// Create escapes title and posts a new pending task. It returns the record
// the backend assigned.
func (s *Store) Create(ctx context.Context, title string) (model.Task, error) {
	body := model.Task{Title: model.EscapeHTML(title), Completed: false}
	resp, err := s.api.Post(ctx, CollectionPath, body)
	if err != nil {
		return model.Task{}, err
	}
	var created model.Task
	if len(resp.Data) == 0 {
		return body, nil
	}
	if err := resp.Decode(&created); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// SetCompleted inverts the completed flag of a task.
func (s *Store) SetCompleted(ctx context.Context, id model.ID) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.mode == ModePatch {
		_, err = s.api.Patch(ctx, itemPath(id), map[string]any{"completed": !current.Completed})
		return err
	}
	current.Completed = !current.Completed
	_, err = s.api.Put(ctx, itemPath(id), current)
	return err
}

// SetTitle replaces the title of a task. The title is escaped here.
func (s *Store) SetTitle(ctx context.Context, id model.ID, title string) error {
	title = model.EscapeHTML(title)
	if s.mode == ModePatch {
		_, err := s.api.Patch(ctx, itemPath(id), map[string]any{"title": title})
		return err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	current.Title = title
	_, err = s.api.Put(ctx, itemPath(id), current)
	return err
}

// Remove deletes a task.
func (s *Store) Remove(ctx context.Context, id model.ID) error {
	_, err := s.api.Delete(ctx, itemPath(id))
	return err
}
