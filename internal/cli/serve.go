package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todosync/internal/backend"
	"github.com/idilsaglam/todosync/internal/backend/httpapi"
	"github.com/idilsaglam/todosync/internal/backend/jsonstore"
	"github.com/idilsaglam/todosync/internal/backend/sqlitestore"
)

func newServeCmd(ss *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local /todos backend",
		Long: `serve runs a backend speaking the same REST contract the client uses,
storing tasks in SQLite or a JSON file under the configuration directory.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, path, err := ss.openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			ln, err := net.Listen("tcp", ss.cfg.Serve.Addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			ss.logger.Info("serving", "addr", ln.Addr().String(), "store", ss.cfg.Serve.Store, "path", path)
			ss.printer.OK("listening on " + ln.Addr().String())

			err = httpapi.Serve(cmd.Context(), ln, httpapi.NewRouter(repo, httpapi.WithLogger(ss.logger)))
			ss.logger.Info("stopped")
			return err
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :3000)")
	cmd.Flags().String("store", "", "storage engine: sqlite or json")
	cmd.Flags().String("path", "", "storage file (default: <config-dir>/todos.db or todos.json)")
	return cmd
}

// openRepository opens the configured storage engine.
func (ss *session) openRepository() (backend.Repository, string, error) {
	path := ss.cfg.StorePath(ss.dir)
	var (
		repo backend.Repository
		err  error
	)
	switch ss.cfg.Serve.Store {
	case "json":
		repo, err = jsonstore.Open(path)
	default:
		repo, err = sqlitestore.Open(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("open %s store: %w", ss.cfg.Serve.Store, err)
	}
	return repo, path, nil
}
