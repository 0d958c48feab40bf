// Package sqlitestore keeps the reference server's tasks in SQLite
// (modernc.org/sqlite, no cgo).
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/idilsaglam/todosync/internal/backend"
	"github.com/idilsaglam/todosync/internal/model"
)

// The whole record is kept in body so fields the server does not model
// survive; title and completed are mirrored for querying.
const schemaSQL = `CREATE TABLE IF NOT EXISTS todos (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

// Store is a backend.Repository over a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection: serializes writers and keeps :memory: a single database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func decode(body string) (model.Task, error) {
	var t model.Task
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return model.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return t, nil
}

func (s *Store) List(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM todos ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t, err := decode(body)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM todos WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, backend.ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("query task: %w", err)
	}
	return decode(body)
}

func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if t.ID.IsZero() {
		t.ID = backend.NewID()
	}
	body, err := json.Marshal(t)
	if err != nil {
		return model.Task{}, fmt.Errorf("encode task: %w", err)
	}
	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO todos (id, title, completed, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Title, t.Completed, string(body), ts, ts)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, t model.Task) (model.Task, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return model.Task{}, fmt.Errorf("encode task: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, completed = ?, body = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Completed, string(body), now(), t.ID.String())
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Task{}, backend.ErrNotFound
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return backend.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
