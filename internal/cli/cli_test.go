package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todosync/internal/app"
	"github.com/idilsaglam/todosync/internal/backend/httpapi"
	"github.com/idilsaglam/todosync/internal/backend/jsonstore"
	"github.com/idilsaglam/todosync/internal/guard"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/view"
)

type harness struct {
	t    *testing.T
	repo *jsonstore.Store
	url  string
	dir  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo, err := jsonstore.Open(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, err)
	srv := httptest.NewServer(httpapi.NewRouter(repo))
	t.Cleanup(srv.Close)
	return &harness{t: t, repo: repo, url: srv.URL, dir: t.TempDir()}
}

func (h *harness) seed(id int64, title string, completed bool) {
	h.t.Helper()
	_, err := h.repo.Create(context.Background(), model.Task{ID: model.NumberID(id), Title: title, Completed: completed})
	require.NoError(h.t, err)
}

func (h *harness) task(id string) (model.Task, error) {
	return h.repo.Get(context.Background(), id)
}

// run executes the command line against the harness backend.
func (h *harness) run(stdin string, args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	args = append(args, "--config-dir", h.dir, "--base-url", h.url)
	code = Execute(context.Background(), args, Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut})
	return code, out.String(), errOut.String()
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	code := Execute(context.Background(), []string{"version"}, Streams{In: strings.NewReader(""), Out: &out, Err: &out})
	assert.Equal(t, 0, code)
	assert.Equal(t, "todo "+Version+"\n", out.String())
}

func TestListPanel(t *testing.T) {
	h := newHarness(t)
	h.seed(1, "Buy milk", false)
	h.seed(2, "Tom &amp; Jerry", true)

	code, out, _ := h.run("", "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Todos  ✔ 1  • 1  Total 2")
	assert.Contains(t, out, "#1 ☐ Buy milk")
	assert.Contains(t, out, "#2 ☑ Tom & Jerry")
}

func TestListGrouped(t *testing.T) {
	h := newHarness(t)
	h.seed(1, "Buy milk", false)

	code, out, _ := h.run("", "ls", "--group")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Done")
	assert.Contains(t, out, "(none)")
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t)
	code, out, _ := h.run("", "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, view.EmptyMessage)
}

func TestListJSON(t *testing.T) {
	h := newHarness(t)
	h.seed(1, "Buy milk", false)

	code, out, _ := h.run("", "ls", "--json")
	require.Equal(t, 0, code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, float64(1), got[0]["id"])
	assert.Equal(t, "Buy milk", got[0]["title"])
}

func TestListBackendDown(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	var out, errOut bytes.Buffer
	code := Execute(context.Background(),
		[]string{"ls", "--config-dir", t.TempDir(), "--base-url", url},
		Streams{In: strings.NewReader(""), Out: &out, Err: &errOut})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), view.FailedMessage)
}

func TestAdd(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("", "add", "Walk", "&", "talk")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "added")

	tasks, err := h.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Walk &amp; talk", tasks[0].Title)
	assert.False(t, tasks[0].Completed)
}

func TestAddRejected(t *testing.T) {
	h := newHarness(t)
	h.seed(1, "Buy milk", false)

	code, _, errOut := h.run("", "add", "Buy milk")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, app.MsgTaskExisted)
	assert.Equal(t, 1, strings.Count(errOut, app.MsgTaskExisted), "alerted once, not reprinted")

	code, _, errOut = h.run("", "add", "   ")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, app.MsgEmptyTitle)

	tasks, err := h.repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"add"},
		{"done"},
		{"rm", "1", "2"},
		{"ls", "extra"},
		{"ls", "--bogus"},
		{"ls", "--update-mode", "merge"},
		{"ls", "--timeout", "soon"},
	} {
		code, _, errOut := h.run("", args...)
		assert.Equal(t, 2, code, "%v", args)
		assert.NotEmpty(t, errOut, "%v", args)
	}
}

func TestDone(t *testing.T) {
	h := newHarness(t)
	h.seed(1, "Buy milk", false)

	code, out, _ := h.run("", "done", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "toggled")

	got, err := h.task("1")
	require.NoError(t, err)
	assert.True(t, got.Completed)

	code, _, _ = h.run("", "done", "1", "--update-mode", "patch")
	require.Equal(t, 0, code)
	got, err = h.task("1")
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestDoneMissingTask(t *testing.T) {
	h := newHarness(t)

	code, _, errOut := h.run("", "done", "99")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, app.MsgUpdateFailed)
	assert.Contains(t, errOut, "todo ls")
}

func TestEdit(t *testing.T) {
	h := newHarness(t)
	h.seed(1, "Buy milk", false)
	h.seed(2, "Walk dog", false)

	code, out, _ := h.run("", "edit", "1", "Buy", "oat", "milk")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "updated")
	got, err := h.task("1")
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Title)

	code, _, errOut := h.run("", "edit", "1", "Walk dog")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, app.MsgTaskExists)
}

func TestRemove(t *testing.T) {
	for _, tc := range []struct {
		name    string
		stdin   string
		args    []string
		removed bool
	}{
		{"declined", "n\n", nil, false},
		{"no answer", "", nil, false},
		{"confirmed", "y\n", nil, true},
		{"yes flag", "", []string{"--yes"}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.seed(1, "Buy milk", false)

			code, _, errOut := h.run(tc.stdin, append([]string{"rm", "1"}, tc.args...)...)
			assert.Equal(t, 0, code)
			if tc.args == nil {
				assert.Contains(t, errOut, app.MsgConfirmDelete)
			}

			_, err := h.task("1")
			if tc.removed {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Contains(t, errOut, "not deleted")
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("", "config", "init")
	require.Equal(t, 0, code)
	path := filepath.Join(h.dir, "config.toml")
	assert.Contains(t, out, path)
	_, err := os.Stat(path)
	require.NoError(t, err)

	code, _, _ = h.run("", "config", "init")
	assert.Equal(t, 1, code, "existing file needs --force")
	code, _, _ = h.run("", "config", "init", "--force")
	assert.Equal(t, 0, code)

	code, out, _ = h.run("", "config", "show", "--theme", "neon")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `theme = "neon"`)
	assert.Contains(t, out, fmt.Sprintf("base_url = %q", h.url))
}

func TestConfigFileIsRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("update_mode = \"patch\"\n"), 0o644))

	var out bytes.Buffer
	code := Execute(context.Background(), []string{"config", "show", "--config-dir", dir}, Streams{In: strings.NewReader(""), Out: &out, Err: &out})
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), `update_mode = "patch"`)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 0, ExitCode(app.ErrDeclined))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(usageError(errors.New("bad"))))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("add: %w", &guard.ValidationError{Err: guard.ErrEmptyTitle})))
	assert.Equal(t, 2, ExitCode(reported(&guard.ValidationError{Err: guard.ErrEmptyTitle})))
}
