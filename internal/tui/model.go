package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/invisiboga/internal/engine"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/tui/styles"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// refreshInterval is how often the view is redrawn so toasts expire and the
// frame counter moves.
const refreshInterval = 250 * time.Millisecond

// Messages

type createMsg struct{}
type quitMsg struct{}
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the Bubble Tea model. Its Update loop is the UI thread: the
// lifecycle controller, the overlay and every posted function run there.
type Model struct {
	ui      *ui
	spinner spinner.Model
	logger  *logging.Logger

	width  int
	height int
}

func newModel(u *ui, logger *logging.Logger) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Primary
	if logger == nil {
		logger = logging.NopLogger()
	}
	return Model{ui: u, spinner: s, logger: logger}
}

// Init starts the spinner and fires the application created trigger.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return createMsg{} },
		tick(),
	)
}

// Update handles one message on the UI thread.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg.fn()
		return m, m.quitIfExiting()

	case createMsg:
		m.ui.ctrl.Create()
		return m, m.quitIfExiting()

	case quitMsg:
		return m.quit()

	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tea.MouseMsg:
		m.ui.ctrl.Touch(touchAction(msg), float32(msg.X), float32(msg.Y))
		return m, nil

	case tea.FocusMsg:
		m.resume()
		return m, nil

	case tea.BlurMsg:
		m.pause()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// quitIfExiting turns an exit requested by the controller into program
// shutdown.
func (m Model) quitIfExiting() tea.Cmd {
	if !m.ui.quitting {
		return nil
	}
	m.ui.ctrl.Destroy()
	return tea.Quit
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.ui.quitting = true
	m.ui.ctrl.Destroy()
	return m, tea.Quit
}

func (m Model) pause() {
	if m.ui.paused {
		return
	}
	m.ui.paused = true
	m.ui.ctrl.Pause()
}

func (m Model) resume() {
	if !m.ui.paused {
		return
	}
	m.ui.paused = false
	m.ui.ctrl.Resume()
}

func (m Model) click(view string) {
	if m.ui.overlay == nil {
		return
	}
	if err := m.ui.overlay.Click(view); err != nil {
		m.logger.Warn("overlay click failed", "view", view, "error", err)
		m.ui.notice = err.Error()
	}
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	u := m.ui
	key := msg.String()

	// The fatal dialog swallows every key; acknowledging it exits.
	if u.ack != nil {
		switch key {
		case "enter", "esc", "q", "ctrl+c", " ":
			ack := u.ack
			u.ack = nil
			ack()
			if !u.quitting {
				return m.quit()
			}
			return m, m.quitIfExiting()
		}
		return m, nil
	}

	if key == "ctrl+c" || key == "q" {
		return m.quit()
	}

	if u.overlay != nil && u.overlay.Confirming() {
		var err error
		switch key {
		case "y", "enter":
			err = u.overlay.ConfirmRestart(true)
		case "n", "esc":
			err = u.overlay.ConfirmRestart(false)
		}
		if err != nil {
			m.logger.Warn("restart failed", "error", err)
			u.notice = err.Error()
		}
		return m, nil
	}

	u.notice = ""
	switch key {
	case "p":
		if u.paused {
			m.resume()
		} else {
			m.pause()
		}
	case "d":
		m.click(uibridge.ViewDiceButton)
	case "n":
		m.click(uibridge.ViewNextButton)
	case "r":
		m.click(uibridge.ViewRestartButton)
	case "t":
		if !u.ctrl.Retry() {
			u.notice = "nothing to retry"
		}
	}
	return m, nil
}

// touchAction maps a terminal mouse event to the engine's touch code.
func touchAction(msg tea.MouseMsg) engine.TouchAction {
	if tea.MouseEvent(msg).IsWheel() {
		return engine.TouchUnknown
	}
	switch msg.Action {
	case tea.MouseActionPress:
		return engine.TouchDown
	case tea.MouseActionMotion:
		return engine.TouchMove
	case tea.MouseActionRelease:
		return engine.TouchUp
	default:
		return engine.TouchUnknown
	}
}
