package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idilsaglam/todosync/internal/config"
	"github.com/idilsaglam/todosync/internal/logging"
	"github.com/idilsaglam/todosync/internal/store"
	"github.com/idilsaglam/todosync/internal/transport"
	"github.com/idilsaglam/todosync/internal/ui"
)

// annotation marking commands that run without loading the config.
const skipConfig = "skip-config"

// flagKeys binds command-line flags to config keys.
var flagKeys = map[string]string{
	config.KeyBaseURL:    "base-url",
	config.KeyTimeout:    "timeout",
	config.KeyUpdateMode: "update-mode",
	config.KeyTheme:      "theme",
	config.KeyLogLevel:   "log-level",
	config.KeyLogFormat:  "log-format",
	config.KeyLogFile:    "log-file",
	config.KeyServeAddr:  "addr",
	config.KeyServeStore: "store",
	config.KeyServePath:  "path",
}

type rootFlags struct {
	configDir  string
	configFile string
	color      bool
	noColor    bool
}

// session is the state shared by the commands of one invocation.
type session struct {
	streams Streams
	flags   rootFlags

	dir      string
	v        *viper.Viper
	cfg      config.Config
	logger   *log.Logger
	closeLog func() error
	printer  *ui.Printer
}

// NewRootCmd creates the top-level todo command with its subcommands.
func NewRootCmd(s Streams) *cobra.Command {
	root, _ := newRoot(s)
	return root
}

func newRoot(s Streams) (*cobra.Command, *session) {
	ss := &session{streams: s}

	root := &cobra.Command{
		Use:   "todo",
		Short: "A terminal client for a REST todo backend",
		Long: `todo keeps a task list on a REST backend exposing /todos.

Run without arguments for the interactive list, or use the subcommands
from scripts.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return ss.setup(cmd, interactive(cmd))
		},
		RunE: ss.runTUI,
	}
	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error { return usageError(err) })

	pf := root.PersistentFlags()
	pf.StringVar(&ss.flags.configDir, "config-dir", "", "configuration directory (default: $TODO_CONFIG_DIR or ~/.config/todo)")
	pf.StringVar(&ss.flags.configFile, "config", "", "configuration file (default: <config-dir>/config.toml)")
	pf.String("base-url", "", "backend base URL")
	pf.Duration("timeout", 0, "per-request timeout, 0 for none")
	pf.String("update-mode", "", "how updates are sent: replace or patch")
	pf.String("theme", "", "color theme: classic, neon or mono")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text, json or logfmt")
	pf.String("log-file", "", "append logs to this file")
	pf.BoolVar(&ss.flags.color, "color", false, "force colored output")
	pf.BoolVar(&ss.flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newTUICmd(ss),
		newListCmd(ss),
		newAddCmd(ss),
		newEditCmd(ss),
		newDoneCmd(ss),
		newRemoveCmd(ss),
		newServeCmd(ss),
		newConfigCmd(ss),
		newVersionCmd(),
	)
	return root, ss
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func interactive(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

// setup resolves configuration, logging and output for cmd. Interactive
// commands own the terminal, so their logs go to log_file or nowhere.
func (ss *session) setup(cmd *cobra.Command, interactive bool) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	ss.dir = ss.resolveDir()
	if err := config.LoadDotEnv(filepath.Join(ss.dir, ".env")); err != nil {
		return err
	}

	ss.v = config.NewViper()
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := ss.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	cfg, err := config.Load(ss.v, ss.dir, ss.flags.configFile)
	if err != nil {
		return usageError(err)
	}
	ss.cfg = cfg

	var fallback io.Writer = ss.streams.Err
	if interactive {
		fallback = nil
	}
	logger, closeLog, err := logging.Open(fallback, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Prefix: "todo",
	})
	if err != nil {
		return err
	}
	ss.logger, ss.closeLog = logger, closeLog

	ss.printer = ui.NewPrinter(ss.streams.Out, ss.streams.Err, ui.ThemeByName(cfg.Theme), ss.flags.color, ss.flags.noColor)
	return nil
}

// close releases the log file, if one was opened.
func (ss *session) close() error {
	if ss.closeLog == nil {
		return nil
	}
	return ss.closeLog()
}

// resolveDir picks the configuration directory without reading it.
func (ss *session) resolveDir() string {
	if ss.flags.configDir != "" {
		return ss.flags.configDir
	}
	return config.DefaultDir()
}

// taskStore builds the store accessor for the configured backend.
func (ss *session) taskStore() (*store.Store, error) {
	timeout, err := ss.cfg.RequestTimeout()
	if err != nil {
		return nil, usageError(err)
	}
	client, err := transport.New(ss.cfg.BaseURL,
		transport.WithTimeout(timeout),
		transport.WithLogger(ss.logger))
	if err != nil {
		return nil, usageError(err)
	}
	mode, err := store.ParseUpdateMode(ss.cfg.UpdateMode)
	if err != nil {
		return nil, usageError(err)
	}
	return store.New(client, mode), nil
}
