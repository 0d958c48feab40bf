package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todosync/internal/app"
	"github.com/idilsaglam/todosync/internal/view"
)

// Messages delivered from handler goroutines to the model.
type listMsg struct{ list view.List }

type busyMsg struct {
	busy app.Busy
	on   bool
}

type clearInputMsg struct{}

type alertMsg struct{ text string }

type confirmMsg struct {
	prompt string
	reply  chan<- bool
}

// doneMsg ends a handler command. Failures were already alerted.
type doneMsg struct{ err error }

// Port implements app.UI by posting messages to the running program.
type Port struct {
	send func(tea.Msg)
}

// NewPort creates a Port posting through send, usually (*tea.Program).Send.
func NewPort(send func(tea.Msg)) *Port { return &Port{send: send} }

func (p *Port) ShowList(l view.List)        { p.send(listMsg{list: l}) }
func (p *Port) SetBusy(b app.Busy, on bool) { p.send(busyMsg{busy: b, on: on}) }
func (p *Port) ClearInput()                 { p.send(clearInputMsg{}) }
func (p *Port) Alert(msg string)            { p.send(alertMsg{text: msg}) }

// Confirm shows a yes/no prompt and blocks until it is answered or ctx ends.
func (p *Port) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)
	p.send(confirmMsg{prompt: prompt, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}
