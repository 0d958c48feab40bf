package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todosync/internal/app"
)

// Options configure Run.
type Options struct {
	Theme  string
	Logger *log.Logger
	// ProgramOptions are appended to the defaults (alt screen, mouse).
	ProgramOptions []tea.ProgramOption
}

// Run starts the interactive list against st and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, st app.TaskStore, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	port := &Port{}
	ctrl := app.New(st, port, opts.Logger)
	m := New(ctx, ctrl, opts.Theme)

	popts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, opts.ProgramOptions...)
	p := tea.NewProgram(m, popts...)
	port.send = p.Send

	_, err := p.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
