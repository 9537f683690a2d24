package task

import (
	"time"

	"github.com/Iron-Ham/invisiboga/internal/metrics"
)

// Progress bounds reported by a StagedTask.
const (
	// ProgressComplete ends the poll loop with success.
	ProgressComplete = 100
	// ProgressFailed is the conventional failure value and the value
	// recorded when Poll panics.
	ProgressFailed = -1
)

// StagedTask is one progress-polled background operation.
type StagedTask interface {
	// Poll performs one step and returns progress: <0 on unrecoverable
	// failure, 0..99 while in progress, 100 on completion.
	Poll() int
}

// PollFunc adapts an ordinary function to StagedTask.
type PollFunc func() int

// Poll calls f.
func (f PollFunc) Poll() int { return f() }

// Poster hands a function to the UI thread. Post reports false when the
// UI thread has been torn down and fn will never run.
type Poster interface {
	Post(fn func()) bool
}

// Result is the terminal outcome of one task invocation. It is immutable
// once delivered.
type Result struct {
	// Name is the name given at launch.
	Name string
	// Succeeded is true when the task was not cancelled and its last
	// progress value was positive.
	Succeeded bool
	// LastProgress is the value returned by the final Poll.
	LastProgress int
	// Cancelled is true when cancellation was observed at loop exit.
	Cancelled bool
	// Polls counts Poll invocations.
	Polls int
	// Elapsed is the wall time spent in the poll loop.
	Elapsed time.Duration
	// Err holds the recovered panic, if Poll panicked.
	Err error
}

// Outcome returns a short label for logging and metrics:
// "succeeded", "failed", "cancelled" or "panicked".
func (r Result) Outcome() string {
	switch {
	case r.Err != nil:
		return metrics.OutcomePanicked
	case r.Cancelled:
		return metrics.OutcomeCancelled
	case r.Succeeded:
		return metrics.OutcomeSucceeded
	default:
		return metrics.OutcomeFailed
	}
}

// inProgress reports whether the loop should poll again for value p.
func inProgress(p int) bool {
	return p >= 0 && p < ProgressComplete
}
