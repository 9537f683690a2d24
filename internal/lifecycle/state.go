package lifecycle

import "fmt"

// State is the application lifecycle state. The zero value is
// StateUninited.
type State int

const (
	StateUninited State = iota
	StateInitApp
	StateInitEngine
	StateInitAR
	StateInitTracker
	StateInited
	// StateCameraRunning is entered via the start camera action.
	StateCameraRunning
	// StateCameraStopped is entered via the stop camera action.
	StateCameraStopped
)

// States returns every valid state in declaration order.
func States() []State {
	return []State{
		StateUninited,
		StateInitApp,
		StateInitEngine,
		StateInitAR,
		StateInitTracker,
		StateInited,
		StateCameraRunning,
		StateCameraStopped,
	}
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return s >= StateUninited && s <= StateCameraStopped
}

// String returns the snake-case state name.
func (s State) String() string {
	switch s {
	case StateUninited:
		return "uninited"
	case StateInitApp:
		return "init_app"
	case StateInitEngine:
		return "init_engine"
	case StateInitAR:
		return "init_ar"
	case StateInitTracker:
		return "init_tracker"
	case StateInited:
		return "inited"
	case StateCameraRunning:
		return "camera_running"
	case StateCameraStopped:
		return "camera_stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EntryAction describes the action that runs when s is entered.
func (s State) EntryAction() string {
	switch s {
	case StateInitApp:
		return "show loading, load textures, record screen size"
	case StateInitEngine:
		return "launch engine bring-up"
	case StateInitAR:
		return "create engine session, build render surface and overlay"
	case StateInitTracker:
		return "launch data-set loading"
	case StateInited:
		return "post-init hook, attach views, dismiss loading"
	case StateCameraRunning:
		return "start camera"
	case StateCameraStopped:
		return "stop camera"
	default:
		return ""
	}
}

// Async reports whether entering s waits for a staged task.
func (s State) Async() bool {
	return s == StateInitEngine || s == StateInitTracker
}

// NeedsSession reports whether entering s calls into the engine session,
// which only exists once StateInitAR has been entered.
func (s State) NeedsSession() bool {
	return s >= StateInitTracker && s.Valid()
}
