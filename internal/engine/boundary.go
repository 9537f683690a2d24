package engine

import (
	"fmt"

	"github.com/Iron-Ham/invisiboga/internal/errors"
	"github.com/Iron-Ham/invisiboga/internal/texture"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// Progress codes reported by Boundary.Init.
const (
	InitGenericFailure    = -1
	InitDeviceUnsupported = -2
	InitNoNetwork         = -3
)

// HostContext is what the engine may query from the host during Init.
type HostContext interface {
	TextureCount() int
	// Texture returns the texture at index i, or nil if i is out of range.
	Texture(i int) *texture.Texture
}

// Boundary is the set of calls into the native engine.
type Boundary interface {
	// Init performs one bring-up step: <0 on failure, 0..99 in progress,
	// 100 when done.
	Init(host HostContext) int
	// LoadData performs one data-set loading step with the same codes.
	LoadData() int
	// CreateSession is called once after Init succeeded.
	CreateSession(width, height int)
	// PostInit is called once when the application is fully initialized.
	PostInit()
	StartCamera()
	StopCamera()
	// Touch forwards a pointer event unmodified.
	Touch(action TouchAction, x, y float32)
	// RenderFrame draws one frame. UI changes the engine wants are sent
	// through ui and never applied directly.
	RenderFrame(ui uibridge.Sender) error
	NextButtonClick()
	DiceButtonClick()
	Restart()
	OnPause()
	OnResume()
	// Teardown is called once on application destroy, before Deinit.
	Teardown()
	// Deinit releases engine-wide resources.
	Deinit()
}

// TouchAction is the pointer action code understood by the engine.
type TouchAction int

const (
	TouchUnknown TouchAction = -1
	TouchDown    TouchAction = 0
	TouchMove    TouchAction = 1
	TouchUp      TouchAction = 2
	TouchCancel  TouchAction = 3
)

// String returns the action name.
func (a TouchAction) String() string {
	switch a {
	case TouchDown:
		return "down"
	case TouchMove:
		return "move"
	case TouchUp:
		return "up"
	case TouchCancel:
		return "cancel"
	case TouchUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ClassifyInitFailure maps a failing Init progress value to the fatal-init
// error shown to the user.
func ClassifyInitFailure(code int) *errors.InitError {
	switch code {
	case InitDeviceUnsupported:
		return errors.NewInitError(errors.InitCauseDeviceUnsupported, code)
	case InitNoNetwork:
		return errors.NewInitError(errors.InitCauseNoNetwork, code)
	default:
		return errors.NewInitError(errors.InitCauseGeneric, code)
	}
}
