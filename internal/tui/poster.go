package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/invisiboga/internal/looper"
)

// runMsg carries a function posted to the UI thread.
type runMsg struct{ fn func() }

// poster hands functions to the Bubble Tea update loop, which is the UI
// thread of the interactive app.
//
// tea.Program.Send blocks until the update loop takes the message, so every
// send happens on a pump goroutine. Post itself never blocks, which keeps
// the render thread and task workers from stalling behind a busy Update.
type poster struct {
	pump *looper.Looper
	send func(tea.Msg)
}

func newPoster(send func(tea.Msg)) *poster {
	return &poster{pump: looper.New(), send: send}
}

// Post implements task.Poster and uibridge.Poster.
func (p *poster) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	return p.pump.Post(func() { p.send(runMsg{fn: fn}) })
}

func (p *poster) run(ctx context.Context) {
	_ = p.pump.Run(ctx)
}

// stop refuses further posts and returns how many were discarded.
func (p *poster) stop() int {
	return p.pump.Stop()
}
