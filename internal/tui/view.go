package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/invisiboga/internal/overlay"
	"github.com/Iron-Ham/invisiboga/internal/tui/styles"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// frameCounter is implemented by render.Loop.
type frameCounter interface {
	Frames() int64
}

// View renders the current UI state.
func (m Model) View() string {
	u := m.ui
	if u.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Header.Render(fmt.Sprintf("invisiboga  %s", styles.StateBadge(u.stateName()))))
	b.WriteString("\n")

	switch {
	case u.fatalReason != "":
		b.WriteString(m.renderFatal())
	case u.loading:
		b.WriteString(m.fit(fmt.Sprintf("%s %s", m.spinner.View(), u.loadingText)))
		b.WriteString("\n")
		if u.stateName() == "stalled" {
			b.WriteString(styles.WarningMsg.Render("Initialization stalled. Press t to retry."))
			b.WriteString("\n")
		}
	case u.overlay != nil:
		b.WriteString(m.renderViewport())
		b.WriteString("\n")
		b.WriteString(m.renderOverlay(u.overlay))
	}

	if u.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.fit(styles.ErrorMsg.Render(u.notice)))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderFatal() string {
	body := styles.ErrorMsg.Render("Error") + "\n\n" + m.ui.fatalReason + "\n\n" +
		styles.Muted.Render("Press enter to exit.")
	return styles.DialogFatal.Render(body)
}

func (m Model) renderViewport() string {
	u := m.ui
	status := "camera running"
	style := styles.Viewport
	if u.paused {
		status = "paused"
		style = styles.ViewportPaused
	}
	if fc, ok := u.surface.(frameCounter); ok {
		status = fmt.Sprintf("%s · frame %d", status, fc.Frames())
	}

	width := m.width - 4
	if width < 20 {
		width = 40
	}
	return style.Width(width).Render(status)
}

func (m Model) renderOverlay(ov *overlay.Overlay) string {
	var b strings.Builder

	if ov.Visible(uibridge.ViewPlayerText) {
		color := lipgloss.Color(ov.PlayerColor().Hex())
		b.WriteString(m.fit(lipgloss.NewStyle().Bold(true).Foreground(color).Render(ov.PlayerText())))
		b.WriteString("\n")
	}

	buttons := []struct {
		view  string
		key   string
		label string
	}{
		{uibridge.ViewDiceButton, "d", "Roll dice"},
		{uibridge.ViewNextButton, "n", "Next player"},
		{uibridge.ViewRestartButton, "r", "Restart"},
	}
	var row []string
	for _, btn := range buttons {
		if ov.Visible(btn.view) {
			row = append(row, styles.Button.Render(fmt.Sprintf("[%s] %s", btn.key, btn.label)))
		}
	}
	if len(row) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	for _, t := range ov.Toasts() {
		b.WriteString(m.fit(styles.Toast.Render(t.Text)))
		b.WriteString("\n")
	}

	if ov.Confirming() {
		b.WriteString(styles.Dialog.Render(overlay.RestartPrompt + "  " + styles.HelpKey.Render("y") + "/" + styles.HelpKey.Render("n")))
		b.WriteString("\n")
	}
	return b.String()
}

// fit truncates a rendered line to the terminal width. Before the first
// WindowSizeMsg the width is unknown and lines are left alone.
func (m Model) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return ansi.Truncate(line, m.width, "…")
}

func (m Model) renderHelp() string {
	keys := []struct{ key, desc string }{
		{"p", "pause"},
		{"d", "dice"},
		{"n", "next"},
		{"r", "restart"},
		{"mouse", "touch"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, styles.HelpKey.Render(k.key)+" "+k.desc)
	}
	return styles.HelpBar.Render(strings.Join(parts, "  "))
}
