package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Iron-Ham/invisiboga/internal/errors"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// Handle is the live engine session. It is created after engine bring-up
// succeeded and released on application teardown. Every call made after
// Release fails with errors.ErrSessionReleased instead of reaching the
// engine. Teardown refuses later calls the same way.
//
// Calls hold a read lock for their duration so Release waits for in-flight
// frames and loading steps to return.
type Handle struct {
	id       string
	boundary Boundary

	mu       sync.RWMutex
	released bool
	torndown bool
	created  bool
}

// NewHandle creates a live session handle for b with a fresh session ID.
func NewHandle(b Boundary) *Handle {
	if b == nil {
		panic("engine: Boundary must not be nil")
	}
	return &Handle{
		id:       uuid.NewString(),
		boundary: b,
	}
}

// ID returns the session ID.
func (h *Handle) ID() string { return h.id }

// Live reports whether the session is neither torn down nor released.
func (h *Handle) Live() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.released && !h.torndown
}

func (h *Handle) call(op string, fn func()) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.released || h.torndown {
		return errors.NewSessionError(op, errors.ErrSessionReleased).WithSessionID(h.id)
	}
	fn()
	return nil
}

// CreateSession creates the native session with the given screen size.
// Only the first call reaches the engine.
func (h *Handle) CreateSession(width, height int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return errors.NewSessionError("create session", errors.ErrSessionReleased).WithSessionID(h.id)
	}
	if h.created {
		return errors.NewSessionError("create session", errors.New("session already created")).WithSessionID(h.id)
	}
	h.created = true
	h.boundary.CreateSession(width, height)
	return nil
}

// LoadData performs one data-set loading step. It reports
// InitGenericFailure once the session is released so a polling worker
// stops.
func (h *Handle) LoadData() int {
	progress := InitGenericFailure
	_ = h.call("load data", func() { progress = h.boundary.LoadData() })
	return progress
}

// PostInit runs the engine's post-initialization hook.
func (h *Handle) PostInit() error {
	return h.call("post init", h.boundary.PostInit)
}

// StartCamera starts the camera.
func (h *Handle) StartCamera() error {
	return h.call("start camera", h.boundary.StartCamera)
}

// StopCamera stops the camera.
func (h *Handle) StopCamera() error {
	return h.call("stop camera", h.boundary.StopCamera)
}

// Touch forwards a pointer event.
func (h *Handle) Touch(action TouchAction, x, y float32) error {
	return h.call("touch", func() { h.boundary.Touch(action, x, y) })
}

// RenderFrame draws one frame.
func (h *Handle) RenderFrame(ui uibridge.Sender) error {
	var err error
	if callErr := h.call("render frame", func() { err = h.boundary.RenderFrame(ui) }); callErr != nil {
		return callErr
	}
	return err
}

// NextButtonClick forwards the overlay's next button.
func (h *Handle) NextButtonClick() error {
	return h.call("next button", h.boundary.NextButtonClick)
}

// DiceButtonClick forwards the overlay's dice button.
func (h *Handle) DiceButtonClick() error {
	return h.call("dice button", h.boundary.DiceButtonClick)
}

// Restart forwards a confirmed restart.
func (h *Handle) Restart() error {
	return h.call("restart", h.boundary.Restart)
}

// Teardown tears the engine down once no call is in flight. Later calls
// other than Release fail.
func (h *Handle) Teardown() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released || h.torndown {
		return errors.NewSessionError("teardown", errors.ErrSessionReleased).WithSessionID(h.id)
	}
	h.torndown = true
	h.boundary.Teardown()
	return nil
}

// Release ends the session and calls Deinit on the engine. It returns
// false if the session was already released.
func (h *Handle) Release() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return false
	}
	h.released = true
	h.boundary.Deinit()
	return true
}
