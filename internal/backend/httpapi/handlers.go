// Package httpapi serves the /todos REST contract the client speaks:
// GET/POST /todos and GET/PUT/PATCH/DELETE /todos/{id}, with successful
// bodies wrapped in a {"data": ...} envelope.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/todosync/internal/backend"
	"github.com/idilsaglam/todosync/internal/model"
)

const maxBodyBytes = 1 << 20

// Option configures the router.
type Option func(*api)

// WithLogger logs each request and storage failures.
func WithLogger(l *log.Logger) Option { return func(a *api) { a.logger = l } }

// WithoutEnvelope returns bare bodies instead of {"data": ...}.
func WithoutEnvelope() Option { return func(a *api) { a.envelope = false } }

type api struct {
	repo     backend.Repository
	logger   *log.Logger
	envelope bool
}

// NewRouter returns the HTTP handler for repo.
func NewRouter(repo backend.Repository, opts ...Option) http.Handler {
	a := &api{repo: repo, envelope: true}
	for _, o := range opts {
		o(a)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if a.logger != nil {
		r.Use(a.logRequests)
	}

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", a.handleList)
		r.Post("/", a.handleCreate)
		r.Get("/{id}", a.handleGet)
		r.Put("/{id}", a.handleReplace)
		r.Patch("/{id}", a.handlePatch)
		r.Delete("/{id}", a.handleDelete)
	})
	return r
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start),
			"req_id", middleware.GetReqID(r.Context()))
	})
}

func (a *api) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.repo.List(r.Context())
	if err != nil {
		a.storageError(w, "list", err)
		return
	}
	a.writeData(w, http.StatusOK, tasks)
}

func (a *api) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := a.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.storageError(w, "get", err)
		return
	}
	a.writeData(w, http.StatusOK, t)
}

func (a *api) handleCreate(w http.ResponseWriter, r *http.Request) {
	raw, ok := a.decodeValidated(w, r, createSchema)
	if !ok {
		return
	}
	delete(raw, "id")
	t, err := toTask(raw)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := a.repo.Create(r.Context(), t)
	if err != nil {
		a.storageError(w, "create", err)
		return
	}
	a.writeData(w, http.StatusCreated, created)
}

// handleReplace stores the body as the whole record. The id always comes
// from the path.
func (a *api) handleReplace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	raw, ok := a.decodeValidated(w, r, replaceSchema)
	if !ok {
		return
	}
	current, err := a.repo.Get(r.Context(), id)
	if err != nil {
		a.storageError(w, "replace", err)
		return
	}
	delete(raw, "id")
	t, err := toTask(raw)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = current.ID
	updated, err := a.repo.Update(r.Context(), t)
	if err != nil {
		a.storageError(w, "replace", err)
		return
	}
	a.writeData(w, http.StatusOK, updated)
}

// handlePatch merges the body's fields into the stored record.
func (a *api) handlePatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	patch, ok := a.decodeValidated(w, r, patchSchema)
	if !ok {
		return
	}
	current, err := a.repo.Get(r.Context(), id)
	if err != nil {
		a.storageError(w, "patch", err)
		return
	}
	b, err := json.Marshal(current)
	if err != nil {
		a.storageError(w, "patch", err)
		return
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		a.storageError(w, "patch", err)
		return
	}
	for k, v := range patch {
		if k != "id" {
			merged[k] = v
		}
	}
	t, err := toTask(merged)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = current.ID
	updated, err := a.repo.Update(r.Context(), t)
	if err != nil {
		a.storageError(w, "patch", err)
		return
	}
	a.writeData(w, http.StatusOK, updated)
}

func (a *api) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.storageError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeValidated reads a JSON object body and checks it against schema.
// On failure it has already written a 400.
func (a *api) decodeValidated(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema) (map[string]json.RawMessage, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	if err := validate(schema, doc); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	return raw, true
}

func toTask(fields map[string]json.RawMessage) (model.Task, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return model.Task{}, err
	}
	var t model.Task
	if err := json.Unmarshal(b, &t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (a *api) storageError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, backend.ErrNotFound) {
		writeErrorJSON(w, http.StatusNotFound, "Task not found")
		return
	}
	if a.logger != nil {
		a.logger.Error("storage", "op", op, "err", err)
	}
	writeErrorJSON(w, http.StatusInternalServerError, "Internal error")
}

func (a *api) writeData(w http.ResponseWriter, status int, v any) {
	if a.envelope {
		v = map[string]any{"data": v}
	}
	writeJSON(w, status, v)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes a JSON error response
func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
