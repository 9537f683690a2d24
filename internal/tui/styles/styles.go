// Package styles holds the lipgloss palette and styles for the terminal shell.
package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Foreground colors stay readable on a black terminal and on Panel.
var (
	Accent  = lipgloss.Color("#A78BFA")
	Go      = lipgloss.Color("#10B981")
	Caution = lipgloss.Color("#F59E0B")
	Danger  = lipgloss.Color("#F87171")
	Dim     = lipgloss.Color("#9CA3AF")
	Panel   = lipgloss.Color("#1F2937")
	Ink     = lipgloss.Color("#F9FAFB")
	Frame   = lipgloss.Color("#6B7280")
	Idle    = lipgloss.Color("#60A5FA")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	Primary = fg(Accent)
	Warning = fg(Caution)
	Muted   = fg(Dim)

	ErrorMsg   = fg(Danger).Bold(true)
	SuccessMsg = fg(Go).Bold(true)
	WarningMsg = fg(Caution).Bold(true)

	Header = fg(Accent).Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Frame).
		MarginBottom(1)

	// Camera area, live and paused.
	Viewport       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Frame).Padding(0, 1)
	ViewportPaused = Viewport.BorderForeground(Idle).Foreground(Dim)

	Button = fg(Ink).Background(Accent).Bold(true).Padding(0, 2).MarginRight(1)
	Toast  = fg(Ink).Background(Panel).Padding(0, 1)

	Dialog      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Accent).Padding(1, 2)
	DialogFatal = Dialog.Border(lipgloss.DoubleBorder()).BorderForeground(Danger)

	HelpBar = fg(Dim).MarginTop(1)
	HelpKey = fg(Go).Bold(true)
)

type badge struct {
	color lipgloss.Color
	icon  string
}

var badges = map[string]badge{
	"camera_running": {Go, "●"},
	"camera_stopped": {Idle, "⏸"},
	"init_app":       {Caution, "◌"},
	"init_engine":    {Caution, "◌"},
	"init_ar":        {Caution, "◌"},
	"init_tracker":   {Caution, "◌"},
	"inited":         {Caution, "✓"},
	"stalled":        {Danger, "⏱"},
	"fatal":          {Danger, "✗"},
}

var unknownBadge = badge{Dim, "○"}

func lookup(state string) badge {
	if b, ok := badges[state]; ok {
		return b
	}
	return unknownBadge
}

// StateColor returns the color for a lifecycle state name.
func StateColor(state string) lipgloss.Color { return lookup(state).color }

// StateIcon returns the icon for a lifecycle state name.
func StateIcon(state string) string { return lookup(state).icon }

// StateBadge renders an icon and state name in the state's color.
func StateBadge(state string) string {
	b := lookup(state)
	return fg(b.color).Render(b.icon + " " + state)
}

// ARGB converts 0..255 components to a lipgloss color. Alpha is ignored;
// terminals have no translucency.
func ARGB(_, red, green, blue int) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", clamp(red), clamp(green), clamp(blue)))
}

func clamp(v int) int {
	return max(0, min(255, v))
}
