// Package ui prints plain, themed output for the non-interactive commands.
package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

// Dim is the escape for de-emphasized text such as row numbers.
const Dim = "\033[2m"

// IsTerminal reports whether w is a character device.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Printer writes themed lines. Results go to Out, failures to Err.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Theme Theme

	color bool
}

// NewPrinter creates a Printer. Color is used when forced, or when out is
// a terminal and the theme is not monochrome; disable wins over force.
func NewPrinter(out, errOut io.Writer, theme Theme, force, disable bool) *Printer {
	color := force || IsTerminal(out)
	if disable || theme.NoColor {
		color = false
	}
	return &Printer{Out: out, Err: errOut, Theme: theme, color: color}
}

// C wraps s in color when color output is on.
func (p *Printer) C(color, s string) string {
	if !p.color || color == "" {
		return s
	}
	return color + s + reset
}

func (p *Printer) OK(msg string)   { fmt.Fprintln(p.Out, p.C(p.Theme.Success, symCheck+" "+msg)) }
func (p *Printer) Fail(msg string) { fmt.Fprintln(p.Err, p.C(p.Theme.Error, symCross+" "+msg)) }

// Hint prints a muted follow-up line under a failure.
func (p *Printer) Hint(msg string) { fmt.Fprintln(p.Err, p.C(p.Theme.Muted, msg)) }
