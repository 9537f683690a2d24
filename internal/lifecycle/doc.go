// Package lifecycle implements the application lifecycle controller: the
// state machine that brings the AR engine up in stages, starts and stops
// the camera on pause and resume, and tears everything down on destroy.
//
// # States
//
//	UNINITED -> INIT_APP -> INIT_ENGINE ~> INIT_AR -> INIT_TRACKER ~> INITED -> CAMERA_RUNNING <-> CAMERA_STOPPED
//
// "->" transitions chain synchronously inside AdvanceTo. "~>" transitions
// wait for a staged background task: engine bring-up for INIT_ENGINE and
// data-set loading for INIT_TRACKER. CAMERA_RUNNING and CAMERA_STOPPED are
// entered through their side-effecting action (start camera, stop camera).
//
// # Failure Handling
//
//   - Engine bring-up failure is fatal. The chrome shows a cause-specific
//     message and the process exits with status 1 once the user
//     acknowledges it.
//   - Data-set loading failure is logged; the controller still reaches
//     INITED.
//   - A task that cannot be launched leaves the controller stalled in the
//     current state. The stall is logged, published as a lifecycle.stalled
//     event and visible through Stalled; Retry re-runs the stage.
//   - Advancing to an unknown state panics with *errors.DefectError.
//
// # Threading
//
// The Controller is not safe for concurrent use. Every method must run on
// the UI thread: a looper.Looper, or the Bubble Tea update loop. Task
// results are marshalled back onto that thread by the task runner.
package lifecycle
