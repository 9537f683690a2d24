package tui

import (
	"github.com/Iron-Ham/invisiboga/internal/lifecycle"
	"github.com/Iron-Ham/invisiboga/internal/overlay"
)

// ui is the state shared by every copy of the Model. Only the update loop
// touches it.
type ui struct {
	ctrl *lifecycle.Controller

	loading     bool
	loadingText string

	fatalReason string
	ack         func()

	surface lifecycle.Surface
	overlay *overlay.Overlay

	paused   bool
	quitting bool
	exitCode int
	notice   string
}

var _ lifecycle.Chrome = (*ui)(nil)

func (u *ui) ShowLoading(text string) {
	u.loading = true
	u.loadingText = text
}

func (u *ui) DismissLoading() {
	u.loading = false
}

func (u *ui) ShowFatal(reason string, ack func()) {
	u.loading = false
	u.fatalReason = reason
	u.ack = ack
}

func (u *ui) Attach(surface lifecycle.Surface, ov *overlay.Overlay) {
	u.surface = surface
	u.overlay = ov
}

// exit is the controller's exit hook. The process exit code is returned
// from App.Run once the program has shut down.
func (u *ui) exit(code int) {
	u.exitCode = code
	u.quitting = true
}

// stateName is the label shown in the header.
func (u *ui) stateName() string {
	switch {
	case u.fatalReason != "":
		return "fatal"
	case u.ctrl == nil:
		return "uninited"
	}
	if _, stalled := u.ctrl.Stalled(); stalled {
		return "stalled"
	}
	return u.ctrl.State().String()
}
