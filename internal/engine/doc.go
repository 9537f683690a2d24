// Package engine defines the boundary to the native AR engine and the
// session handle the lifecycle controller owns.
//
// The engine itself, including camera access, tracking, rendering and game
// logic, lives outside this module. Boundary lists every call that crosses
// into it. Handle wraps a Boundary once engine bring-up has succeeded and
// guarantees that no session call reaches the engine after the session has
// been released.
//
// Threading:
//   - Init and LoadData are polled from task worker goroutines.
//   - RenderFrame is called from the render goroutine.
//   - Every other method is called from the UI thread.
package engine
