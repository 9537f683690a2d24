// Package task runs cancelable, progress-polled background operations.
//
// A StagedTask exposes a single Poll step. The Runner calls Poll repeatedly
// on a dedicated worker goroutine while the reported progress is in [0,100)
// and the task has not been cancelled. The loop ends when progress reaches
// 100 (complete), drops below 0 (failure), or cancellation is observed
// between two polls. An in-flight Poll is never preempted.
//
// The final Result is handed to the UI thread through a Poster and
// delivered exactly once. A cancelled task never reports success.
//
// # Usage
//
//	runner := task.NewRunner(uiLooper, task.WithLogger(logger))
//	defer runner.Close()
//
//	h, err := runner.Launch(ctx, "engine-init", task.PollFunc(engine.Init),
//	    func(res task.Result) {
//	        // runs on the UI thread
//	    })
package task
