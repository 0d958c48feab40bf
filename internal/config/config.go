// Package config resolves the client and server settings: built-in
// defaults, then config.toml in the config directory, then TODO_*
// environment variables (a .env file is loaded first), then command-line
// flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the configuration directory name.
	AppName = "todo"

	// FileName is the configuration file inside the config directory.
	FileName = "config.toml"

	// EnvPrefix prefixes every environment override, e.g. TODO_BASE_URL.
	EnvPrefix = "TODO"

	// DirEnv overrides the configuration directory.
	DirEnv = "TODO_CONFIG_DIR"
)

// Config keys.
const (
	KeyBaseURL    = "base_url"
	KeyTimeout    = "timeout"
	KeyUpdateMode = "update_mode"
	KeyTheme      = "theme"
	KeyLogLevel   = "log_level"
	KeyLogFormat  = "log_format"
	KeyLogFile    = "log_file"
	KeyServeAddr  = "serve.addr"
	KeyServeStore = "serve.store"
	KeyServePath  = "serve.path"
)

// Themes lists the accepted theme names.
var Themes = []string{"classic", "neon", "mono"}

// Config is the effective configuration.
type Config struct {
	BaseURL    string `toml:"base_url"`
	Timeout    string `toml:"timeout"`
	UpdateMode string `toml:"update_mode"`
	Theme      string `toml:"theme"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`
	LogFile    string `toml:"log_file"`

	Serve ServeConfig `toml:"serve"`
}

// ServeConfig configures the reference backend started by `todo serve`.
type ServeConfig struct {
	Addr  string `toml:"addr"`
	Store string `toml:"store"` // sqlite or json
	Path  string `toml:"path"`  // database or JSON file; empty means the config dir
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:    "http://localhost:3000",
		Timeout:    "0s",
		UpdateMode: "replace",
		Theme:      "classic",
		LogLevel:   "info",
		LogFormat:  "text",
		Serve: ServeConfig{
			Addr:  ":3000",
			Store: "sqlite",
		},
	}
}

// DefaultDir returns the configuration directory: $TODO_CONFIG_DIR, else
// $XDG_CONFIG_HOME/todo, else $HOME/.config/todo.
func DefaultDir() string {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// NewViper creates a viper instance with defaults and environment binding
// but no file read yet. Flags are bound on it by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyUpdateMode, d.UpdateMode)
	v.SetDefault(KeyTheme, d.Theme)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyServeAddr, d.Serve.Addr)
	v.SetDefault(KeyServeStore, d.Serve.Store)
	v.SetDefault(KeyServePath, d.Serve.Path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and returns the effective Config.
// When file is empty, config.toml is looked up in dir and a missing file is
// not an error. An explicit file must exist.
func Load(v *viper.Viper, dir, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("toml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromViper copies the resolved values out of v.
func FromViper(v *viper.Viper) Config {
	return Config{
		BaseURL:    v.GetString(KeyBaseURL),
		Timeout:    v.GetString(KeyTimeout),
		UpdateMode: v.GetString(KeyUpdateMode),
		Theme:      v.GetString(KeyTheme),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
		LogFile:    v.GetString(KeyLogFile),
		Serve: ServeConfig{
			Addr:  v.GetString(KeyServeAddr),
			Store: v.GetString(KeyServeStore),
			Path:  v.GetString(KeyServePath),
		},
	}
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s: want an http(s) URL, got %q", KeyBaseURL, c.BaseURL)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	switch strings.ToLower(c.UpdateMode) {
	case "", "replace", "patch":
	default:
		return fmt.Errorf("%s: want replace or patch, got %q", KeyUpdateMode, c.UpdateMode)
	}
	if !validTheme(c.Theme) {
		return fmt.Errorf("%s: want one of %s, got %q", KeyTheme, strings.Join(Themes, ", "), c.Theme)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("%s: want text, json or logfmt, got %q", KeyLogFormat, c.LogFormat)
	}
	switch c.Serve.Store {
	case "sqlite", "json":
	default:
		return fmt.Errorf("%s: want sqlite or json, got %q", KeyServeStore, c.Serve.Store)
	}
	return nil
}

func validTheme(name string) bool {
	if name == "" {
		return true
	}
	for _, t := range Themes {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// RequestTimeout parses Timeout. Zero means no timeout.
func (c Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: want a duration such as 5s, got %q", KeyTimeout, c.Timeout)
	}
	return d, nil
}

// StorePath returns the reference backend storage path, defaulting to a
// file in dir named after the store kind.
func (c Config) StorePath(dir string) string {
	if c.Serve.Path != "" {
		return c.Serve.Path
	}
	if c.Serve.Store == "json" {
		return filepath.Join(dir, "todos.json")
	}
	return filepath.Join(dir, "todos.db")
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Decode parses a TOML document over the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to dir/config.toml. An
// existing file is left alone unless force is set. It returns the path.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return path, fmt.Errorf("stat config file: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return path, fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, "# todo client and reference server configuration\n\n"); err != nil {
		return path, err
	}
	if err := Encode(f, Default()); err != nil {
		return path, fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}
