package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(NewViper(), t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
base_url = "https://api.example.com"
timeout = "5s"
update_mode = "patch"

[serve]
addr = ":8080"
store = "json"
`)

	cfg, err := Load(NewViper(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "patch", cfg.UpdateMode)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Equal(t, "json", cfg.Serve.Store)
	assert.Equal(t, "classic", cfg.Theme)

	d, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `theme = "neon"`)
	t.Setenv("TODO_THEME", "mono")
	t.Setenv("TODO_SERVE_ADDR", "127.0.0.1:9999")

	cfg, err := Load(NewViper(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, "mono", cfg.Theme)
	assert.Equal(t, "127.0.0.1:9999", cfg.Serve.Addr)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	_, err := Load(NewViper(), t.TempDir(), filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"base_url":    `base_url = "ftp://x"`,
		"timeout":     `timeout = "soon"`,
		"update_mode": `update_mode = "merge"`,
		"theme":       `theme = "pink"`,
		"log_format":  `log_format = "xml"`,
		"serve.store": "[serve]\nstore = \"postgres\"",
	}
	for key, doc := range tests {
		t.Run(key, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, FileName), doc)
			_, err := Load(NewViper(), dir, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv(DirEnv, "/custom")
	assert.Equal(t, "/custom", DefaultDir())

	t.Setenv(DirEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", AppName), DefaultDir())
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "todo")
	path, err := WriteDefault(dir, false)
	require.NoError(t, err)

	_, err = WriteDefault(dir, false)
	assert.Error(t, err, "existing file is not overwritten")
	_, err = WriteDefault(dir, true)
	assert.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := Decode(f)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	loaded, err := Load(NewViper(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Default()))
	out := buf.String()
	assert.Contains(t, out, `base_url = "http://localhost:3000"`)
	assert.Contains(t, out, "[serve]")
	assert.Contains(t, out, `addr = ":3000"`)
}

func TestStorePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/d", "todos.db"), cfg.StorePath("/d"))
	cfg.Serve.Store = "json"
	assert.Equal(t, filepath.Join("/d", "todos.json"), cfg.StorePath("/d"))
	cfg.Serve.Path = "/elsewhere.json"
	assert.Equal(t, "/elsewhere.json", cfg.StorePath("/d"))
}

func TestLoadDotEnv(t *testing.T) {
	const key = "TODOSYNC_DOTENV_PROBE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, key+"=from-dotenv\n")

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-dotenv", os.Getenv(key))
}
