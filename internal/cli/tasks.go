package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todosync/internal/app"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/transport"
	"github.com/idilsaglam/todosync/internal/tui"
	"github.com/idilsaglam/todosync/internal/ui"
	"github.com/idilsaglam/todosync/internal/view"
)

// lineUI is the app.UI of the one-shot commands: alerts become failure
// lines and confirmations are read from the input stream.
type lineUI struct {
	printer   *ui.Printer
	in        io.Reader
	assumeYes bool

	list    view.List
	alerted bool
}

func (u *lineUI) ShowList(l view.List)   { u.list = l }
func (u *lineUI) SetBusy(app.Busy, bool) {}
func (u *lineUI) ClearInput()            {}

func (u *lineUI) Alert(msg string) {
	u.alerted = true
	u.printer.Fail(msg)
}

func (u *lineUI) Confirm(ctx context.Context, prompt string) bool {
	if u.assumeYes {
		return true
	}
	fmt.Fprintf(u.printer.Err, "%s [y/N] ", prompt)

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(u.in).ReadString('\n')
		answer <- line
	}()
	select {
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	case <-ctx.Done():
		return false
	}
}

// controller wires a handler set to the configured backend.
func (ss *session) controller(u *lineUI) (*app.Controller, error) {
	st, err := ss.taskStore()
	if err != nil {
		return nil, err
	}
	return app.New(st, u, ss.logger), nil
}

func (ss *session) lineUI(assumeYes bool) *lineUI {
	return &lineUI{printer: ss.printer, in: ss.streams.In, assumeYes: assumeYes}
}

// done finishes a one-shot command. Errors the handler already alerted on
// are not printed again.
func (ss *session) done(u *lineUI, err error, okMsg string) error {
	if err == nil {
		ss.printer.OK(okMsg)
		return nil
	}
	var te *transport.TransportError
	if errors.As(err, &te) && te.Status == http.StatusNotFound {
		ss.printer.Hint("Hint: run `todo ls` to see task ids")
	}
	if u.alerted {
		return reported(err)
	}
	return err
}

func (ss *session) runTUI(cmd *cobra.Command, args []string) error {
	st, err := ss.taskStore()
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), st, tui.Options{Theme: ss.cfg.Theme, Logger: ss.logger})
}

func newTUICmd(ss *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list (default)",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  ss.runTUI,
	}
}

func newListCmd(ss *session) *cobra.Command {
	var group, asJSON bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Print the task list",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ss.lineUI(false)
			ctrl, err := ss.controller(u)
			if err != nil {
				return err
			}
			tasks, err := ctrl.Mount(cmd.Context())
			if err != nil {
				ss.printer.Fail(u.list.Message)
				return reported(err)
			}
			if asJSON {
				if tasks == nil {
					tasks = []model.Task{}
				}
				enc := json.NewEncoder(ss.streams.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}
			ss.printer.Panel(listLines(ss.printer, u.list, group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw records as JSON")
	return cmd
}

// listLines builds the ls panel: header, progress bar and rows.
func listLines(p *ui.Printer, l view.List, group bool) []string {
	t := p.Theme
	var done, pending int
	for _, r := range l.Rows {
		if r.Completed {
			done++
		} else {
			pending++
		}
	}
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		p.C(t.Title, "Todos"),
		p.C(t.Success, t.SymDone), done,
		p.C(t.Pending, t.SymUnchecked), pending,
		p.C(t.Accent, "Total"), len(l.Rows),
	)

	lines := []string{header, p.C(t.Muted, ui.ProgressBar(done, done+pending, 28)), ""}
	switch {
	case l.State != view.StateReady:
		lines = append(lines, p.C(t.Muted, l.Message))
	case group:
		lines = append(lines, groupLines(p, l.Rows)...)
	default:
		lines = append(lines, rowLines(p, l.Rows)...)
	}
	lines = append(lines, "", p.C(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	return lines
}

func rowLines(p *ui.Printer, rows []view.Row) []string {
	idw := 0
	for _, r := range rows {
		if n := len(r.TaskID.String()); n > idw {
			idw = n
		}
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		id := fmt.Sprintf("#%-*s", idw, r.TaskID)
		box, color := p.Theme.BoxUnchecked, p.Theme.Muted
		if r.Completed {
			box, color = p.Theme.BoxChecked, p.Theme.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s", p.C(ui.Dim, id), p.C(color, box), ui.Truncate(r.Title, 80)))
	}
	return out
}

func groupLines(p *ui.Printer, rows []view.Row) []string {
	var pend, done []view.Row
	for _, r := range rows {
		if r.Completed {
			done = append(done, r)
		} else {
			pend = append(pend, r)
		}
	}
	section := func(name string, rs []view.Row) []string {
		lines := []string{p.C(p.Theme.Accent, name)}
		if len(rs) == 0 {
			return append(lines, p.C(p.Theme.Muted, "(none)"))
		}
		return append(lines, rowLines(p, rs)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

func newAddCmd(ss *session) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task (the title can be several words)",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ss.lineUI(false)
			ctrl, err := ss.controller(u)
			if err != nil {
				return err
			}
			return ss.done(u, ctrl.Add(cmd.Context(), strings.Join(args, " ")), "added")
		},
	}
}

func newEditCmd(ss *session) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <title...>",
		Short: "Rename a task",
		Args:  usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u := ss.lineUI(false)
			ctrl, err := ss.controller(u)
			if err != nil {
				return err
			}
			s := &app.EditSession{TaskID: id, Value: strings.Join(args[1:], " ")}
			return ss.done(u, ctrl.SaveEdit(cmd.Context(), s), "updated")
		},
	}
}

func newDoneCmd(ss *session) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle the completed flag of a task",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u := ss.lineUI(false)
			ctrl, err := ss.controller(u)
			if err != nil {
				return err
			}
			return ss.done(u, ctrl.ToggleDone(cmd.Context(), id), "toggled")
		},
	}
}

func newRemoveCmd(ss *session) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task after confirmation",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u := ss.lineUI(yes)
			ctrl, err := ss.controller(u)
			if err != nil {
				return err
			}
			err = ctrl.Delete(cmd.Context(), id)
			if errors.Is(err, app.ErrDeclined) {
				ss.printer.Hint("not deleted")
				return nil
			}
			return ss.done(u, err, "removed")
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func parseID(arg string) (model.ID, error) {
	id := model.ParseID(arg)
	if id.IsZero() {
		return model.ID{}, usageError(errors.New("task id cannot be empty"))
	}
	return id, nil
}
