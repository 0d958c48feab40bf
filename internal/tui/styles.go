package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the lipgloss palette for one theme.
type Styles struct {
	Title    lipgloss.Style
	Success  lipgloss.Style
	Pending  lipgloss.Style
	Accent   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Help     lipgloss.Style
	Control  lipgloss.Style
	Focused  lipgloss.Style
	Frame    lipgloss.Style
	Bar      lipgloss.Style

	BoxChecked   string
	BoxUnchecked string
}

// NewStyles builds the styles for a theme name (classic, neon, mono).
func NewStyles(theme string) Styles {
	s := Styles{
		Title:    lipgloss.NewStyle().Bold(true),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:    lipgloss.NewStyle().Faint(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Control:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Focused:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		Bar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		BoxChecked:   "☑",
		BoxUnchecked: "☐",
	}

	switch strings.ToLower(theme) {
	case "neon":
		s.Title = s.Title.Foreground(lipgloss.Color("13"))
		s.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		s.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		s.Focused = s.Focused.Foreground(lipgloss.Color("13"))
		s.Frame = s.Frame.BorderForeground(lipgloss.Color("13"))
		s.BoxChecked, s.BoxUnchecked = "◼", "◻"
	case "mono":
		plain := lipgloss.NewStyle()
		s.Success, s.Pending, s.Accent, s.Control = plain, plain, plain, plain
		s.Error = plain.Bold(true)
		s.Focused = plain.Bold(true).Underline(true)
		s.Frame = plain.Border(lipgloss.NormalBorder()).Padding(0, 1)
		s.Bar = plain.Border(lipgloss.NormalBorder()).Padding(0, 1)
		s.BoxChecked, s.BoxUnchecked = "[x]", "[ ]"
	}
	return s
}
