// Package event provides a pub-sub bus that lets the lifecycle controller
// report what it is doing without knowing who is listening.
//
// The TUI, the headless console, the metrics collector and the tests all
// observe the controller through this bus.
//
// # Event Types
//
// Event types follow the pattern "category.action":
//   - lifecycle.state_changed: [StateChangedEvent]
//   - lifecycle.fatal_init: [FatalInitEvent]
//   - lifecycle.stalled: [StageStalledEvent]
//   - task.finished: [TaskFinishedEvent]
//   - camera.toggled: [CameraEvent]
//   - engine.torn_down: [TeardownEvent]
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers are called synchronously on the
// publishing goroutine and protected against panics.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeStateChanged, func(e event.Event) {
//	    changed := e.(event.StateChangedEvent)
//	    fmt.Println(changed.From, "->", changed.To)
//	})
package event
