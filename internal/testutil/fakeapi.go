// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/idilsaglam/todosync/internal/transport"
)

// Call is one request seen by FakeAPI.
type Call struct {
	Method string
	Path   string
	Body   map[string]any // nil for requests without a body
}

// FakeAPI is an in-memory /todos backend implementing store.Adapter.
// Records are kept as generic JSON objects so tests can see exactly what
// the client wrote. Ids are numbers assigned from 1.
type FakeAPI struct {
	mu      sync.Mutex
	records []map[string]any
	nextID  int
	calls   []Call

	// Error injection: a method ("GET", "POST", ...) mapped to an error
	// returned instead of performing the request.
	Errs map[string]error
}

// NewFakeAPI creates an empty FakeAPI.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{nextID: 1, Errs: make(map[string]error)}
}

// Seed adds a record as-is. Numeric ids advance the id counter.
func (f *FakeAPI) Seed(rec map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := toInt(rec["id"]); ok && n >= f.nextID {
		f.nextID = n + 1
	}
	f.records = append(f.records, clone(rec))
}

// AddTask seeds a task with the next numeric id and returns the id.
func (f *FakeAPI) AddTask(title string, completed bool) int {
	f.mu.Lock()
	id := f.nextID
	f.mu.Unlock()
	f.Seed(map[string]any{"id": id, "title": title, "completed": completed})
	return id
}

// Record returns a copy of the stored record with the given id.
func (f *FakeAPI) Record(id string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	return clone(f.records[i]), true
}

// Len returns the number of stored records.
func (f *FakeAPI) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// Calls returns every request seen so far.
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the requests with the given method.
func (f *FakeAPI) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded requests.
func (f *FakeAPI) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeAPI) Get(ctx context.Context, path string) (transport.Response, error) {
	return f.do(http.MethodGet, path, nil)
}

func (f *FakeAPI) Post(ctx context.Context, path string, body any) (transport.Response, error) {
	return f.do(http.MethodPost, path, body)
}

func (f *FakeAPI) Put(ctx context.Context, path string, body any) (transport.Response, error) {
	return f.do(http.MethodPut, path, body)
}

func (f *FakeAPI) Patch(ctx context.Context, path string, body any) (transport.Response, error) {
	return f.do(http.MethodPatch, path, body)
}

func (f *FakeAPI) Delete(ctx context.Context, path string) (transport.Response, error) {
	return f.do(http.MethodDelete, path, nil)
}

func (f *FakeAPI) do(method, path string, body any) (transport.Response, error) {
	var obj map[string]any
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return transport.Response{}, &transport.TransportError{Method: method, Path: path, Err: err}
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return transport.Response{}, &transport.TransportError{Method: method, Path: path, Err: err}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Path: path, Body: obj})

	if err := f.Errs[method]; err != nil {
		return transport.Response{}, &transport.TransportError{Method: method, Path: path, Err: err}
	}

	notFound := func() (transport.Response, error) {
		return transport.Response{}, &transport.TransportError{Method: method, Path: path, Status: http.StatusNotFound, Err: transport.ErrStatus}
	}

	rest, ok := strings.CutPrefix(path, "/todos")
	if !ok {
		return notFound()
	}
	id := strings.TrimPrefix(rest, "/")

	switch {
	case id == "" && method == http.MethodGet:
		return f.respond(http.StatusOK, f.records)
	case id == "" && method == http.MethodPost:
		rec := clone(obj)
		rec["id"] = f.nextID
		f.nextID++
		f.records = append(f.records, rec)
		return f.respond(http.StatusCreated, rec)
	case id == "":
		return notFound()
	}

	i := f.indexLocked(id)
	if i < 0 {
		return notFound()
	}
	switch method {
	case http.MethodGet:
		return f.respond(http.StatusOK, f.records[i])
	case http.MethodPut:
		rec := clone(obj)
		rec["id"] = f.records[i]["id"]
		f.records[i] = rec
		return f.respond(http.StatusOK, rec)
	case http.MethodPatch:
		for k, v := range obj {
			if k != "id" {
				f.records[i][k] = v
			}
		}
		return f.respond(http.StatusOK, f.records[i])
	case http.MethodDelete:
		f.records = append(f.records[:i], f.records[i+1:]...)
		return transport.Response{Status: http.StatusNoContent}, nil
	}
	return notFound()
}

func (f *FakeAPI) respond(status int, v any) (transport.Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return transport.Response{}, err
	}
	return transport.Response{Status: status, Data: b}, nil
}

func (f *FakeAPI) indexLocked(id string) int {
	for i, rec := range f.records {
		if fmt.Sprint(rec["id"]) == id {
			return i
		}
	}
	return -1
}

func clone(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
