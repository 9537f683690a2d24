package event

import "time"

// Event is the interface that all events implement.
type Event interface {
	// EventType returns a "category.action" identifier.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeStateChanged = "lifecycle.state_changed"
	TypeFatalInit    = "lifecycle.fatal_init"
	TypeStalled      = "lifecycle.stalled"
	TypeTaskFinished = "task.finished"
	TypeCamera       = "camera.toggled"
	TypeTeardown     = "engine.torn_down"
)

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// StateChangedEvent is emitted after the controller changes state and
// before the new state's action runs.
type StateChangedEvent struct {
	baseEvent
	From string
	To   string
}

// NewStateChangedEvent creates a StateChangedEvent.
func NewStateChangedEvent(from, to string) StateChangedEvent {
	return StateChangedEvent{baseEvent: newBaseEvent(TypeStateChanged), From: from, To: to}
}

// TaskFinishedEvent is emitted on the UI thread when a staged task result
// has been delivered to the controller.
type TaskFinishedEvent struct {
	baseEvent
	Stage        string
	Succeeded    bool
	Cancelled    bool
	LastProgress int
	Elapsed      time.Duration
}

// NewTaskFinishedEvent creates a TaskFinishedEvent.
func NewTaskFinishedEvent(stage string, succeeded, cancelled bool, lastProgress int, elapsed time.Duration) TaskFinishedEvent {
	return TaskFinishedEvent{
		baseEvent:    newBaseEvent(TypeTaskFinished),
		Stage:        stage,
		Succeeded:    succeeded,
		Cancelled:    cancelled,
		LastProgress: lastProgress,
		Elapsed:      elapsed,
	}
}

// FatalInitEvent is emitted when engine bring-up fails and the fatal
// dialog is shown.
type FatalInitEvent struct {
	baseEvent
	Cause  string
	Code   int
	Reason string
}

// NewFatalInitEvent creates a FatalInitEvent.
func NewFatalInitEvent(cause string, code int, reason string) FatalInitEvent {
	return FatalInitEvent{baseEvent: newBaseEvent(TypeFatalInit), Cause: cause, Code: code, Reason: reason}
}

// StageStalledEvent is emitted when a staged task could not be launched.
// The controller stays in State until something else moves it.
type StageStalledEvent struct {
	baseEvent
	State string
	Stage string
	Err   error
}

// NewStageStalledEvent creates a StageStalledEvent.
func NewStageStalledEvent(state, stage string, err error) StageStalledEvent {
	return StageStalledEvent{baseEvent: newBaseEvent(TypeStalled), State: state, Stage: stage, Err: err}
}

// CameraEvent is emitted after the camera was started or stopped.
type CameraEvent struct {
	baseEvent
	Running bool
	Err     error
}

// NewCameraEvent creates a CameraEvent.
func NewCameraEvent(running bool, err error) CameraEvent {
	return CameraEvent{baseEvent: newBaseEvent(TypeCamera), Running: running, Err: err}
}

// TeardownEvent is emitted once when the application is destroyed.
type TeardownEvent struct {
	baseEvent
	CancelledTasks int
	SessionID      string
}

// NewTeardownEvent creates a TeardownEvent.
func NewTeardownEvent(cancelled int, sessionID string) TeardownEvent {
	return TeardownEvent{baseEvent: newBaseEvent(TypeTeardown), CancelledTasks: cancelled, SessionID: sessionID}
}
