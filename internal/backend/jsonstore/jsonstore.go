// Package jsonstore keeps the reference server's tasks in a single JSON
// file. Human-readable and portable; one process at a time.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/idilsaglam/todosync/internal/backend"
	"github.com/idilsaglam/todosync/internal/model"
)

// Store is a backend.Repository over one JSON file. Every write rewrites
// the file through a temp file and rename.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open creates a Store at path. The file is created on first write.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{path: path}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() ([]model.Task, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Task{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(b) == 0 {
		return []model.Task{}, nil
	}
	var tasks []model.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return tasks, nil
}

func (s *Store) save(tasks []model.Task) error {
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

func indexOf(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID.String() == id {
			return i
		}
	}
	return -1
}

func (s *Store) List(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.load()
	if err != nil {
		return model.Task{}, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return model.Task{}, backend.ErrNotFound
	}
	return tasks[i], nil
}

func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.load()
	if err != nil {
		return model.Task{}, err
	}
	if t.ID.IsZero() {
		t.ID = backend.NewID()
	}
	if indexOf(tasks, t.ID.String()) >= 0 {
		return model.Task{}, fmt.Errorf("task %s already exists", t.ID)
	}
	if err := s.save(append(tasks, t)); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.load()
	if err != nil {
		return model.Task{}, err
	}
	i := indexOf(tasks, t.ID.String())
	if i < 0 {
		return model.Task{}, backend.ErrNotFound
	}
	tasks[i] = t
	if err := s.save(tasks); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return backend.ErrNotFound
	}
	return s.save(append(tasks[:i], tasks[i+1:]...))
}

func (s *Store) Close() error { return nil }
