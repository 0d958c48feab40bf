package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
	assert.Equal(t, "█████ 100%", ProgressBar(3, 3, 5))
}

func TestPanelAlignsColoredLines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &out, ThemeByName("classic"), true, false)
	p.Panel([]string{p.C(p.Theme.Title, "Todos"), "longer line"})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "┌"+strings.Repeat("─", 13)+"┐", lines[0])
	assert.Equal(t, "│ longer line │", lines[2])
	assert.Equal(t, visibleWidth(lines[1]), visibleWidth(lines[2]))
}

func TestMonoDisablesColor(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, ThemeByName("mono"), true, false)
	p.OK("added")
	p.Fail("nope")

	assert.Equal(t, "✔ added\n", out.String())
	assert.Equal(t, "✖ nope\n", errOut.String())
	assert.NotContains(t, errOut.String(), "\033[")
}

func TestColorOnlyWhenForcedOrTerminal(t *testing.T) {
	var out bytes.Buffer
	plain := NewPrinter(&out, &out, ThemeByName("neon"), false, false)
	assert.Equal(t, "x", plain.C(fgRed, "x"))

	forced := NewPrinter(&out, &out, ThemeByName("neon"), true, false)
	assert.Equal(t, fgRed+"x"+reset, forced.C(fgRed, "x"))

	disabled := NewPrinter(&out, &out, ThemeByName("neon"), true, true)
	assert.Equal(t, "x", disabled.C(fgRed, "x"))
}

func TestThemeByName(t *testing.T) {
	assert.Equal(t, "classic", ThemeByName("").Name)
	assert.Equal(t, "neon", ThemeByName("NEON").Name)
	assert.Equal(t, "[x]", ThemeByName("mono").BoxChecked)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
}
