package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/invisiboga/internal/errors"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
)

// Runner runs StagedTasks on worker goroutines, one goroutine per task, and
// marshals each Result onto the UI thread through its Poster.
type Runner struct {
	poster  Poster
	logger  *logging.Logger
	metrics *metrics.Metrics

	wg conc.WaitGroup

	mu     sync.Mutex
	closed bool
	active map[*Handle]struct{}
}

// NewRunner creates a Runner that delivers results through poster.
//
// poster must be non-nil. Passing nil will panic early to surface wiring
// bugs immediately.
func NewRunner(poster Poster, opts ...Option) *Runner {
	if poster == nil {
		panic("task: Poster must not be nil")
	}

	cfg := &config{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}

	return &Runner{
		poster:  poster,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		active:  make(map[*Handle]struct{}),
	}
}

// Handle controls one launched task.
type Handle struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}

	delivered atomic.Bool
	result    Result // written before done is closed
}

// Name returns the name given at launch.
func (h *Handle) Name() string { return h.name }

// Cancel requests cooperative cancellation. The worker observes it before
// its next Poll; an in-flight Poll runs to completion.
func (h *Handle) Cancel() { h.cancel() }

// Done returns a channel closed when the poll loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Result returns the task result once the poll loop has exited.
func (h *Handle) Result() (Result, bool) {
	select {
	case <-h.done:
		return h.result, true
	default:
		return Result{}, false
	}
}

// Finished reports whether the poll loop has exited.
func (h *Handle) Finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Delivered reports whether the result callback has run on the UI thread.
func (h *Handle) Delivered() bool { return h.delivered.Load() }

// Launch starts t on a new worker goroutine and returns immediately.
//
// The task is cancelled when ctx is done, when Cancel is called on the
// returned Handle, or when the runner is closed. done receives the Result
// on the UI thread exactly once; if the UI thread is already gone the
// result is logged and dropped.
//
// Launch fails with a *errors.LaunchError when t or done is nil, or when
// the runner has been closed.
func (r *Runner) Launch(ctx context.Context, name string, t StagedTask, done func(Result)) (*Handle, error) {
	if t == nil {
		return nil, errors.NewLaunchError(name, fmt.Errorf("nil task"))
	}
	if done == nil {
		return nil, errors.NewLaunchError(name, fmt.Errorf("nil result callback"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.NewLaunchError(name, errors.ErrRunnerClosed)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.active[h] = struct{}{}

	r.wg.Go(func() {
		defer cancel()
		r.run(taskCtx, h, t, done)
	})

	r.logger.WithStage(name).Debug("staged task launched")
	return h, nil
}

func (r *Runner) run(ctx context.Context, h *Handle, t StagedTask, done func(Result)) {
	log := r.logger.WithStage(h.name)
	res := Result{Name: h.name}
	start := time.Now()

	var pc panics.Catcher
	pc.Try(func() {
		for {
			res.LastProgress = t.Poll()
			res.Polls++
			if !inProgress(res.LastProgress) || ctx.Err() != nil {
				return
			}
		}
	})

	res.Elapsed = time.Since(start)
	res.Cancelled = ctx.Err() != nil
	if rec := pc.Recovered(); rec != nil {
		res.LastProgress = ProgressFailed
		res.Err = rec.AsError()
		log.Error("staged task panicked", "polls", res.Polls, "panic", rec.String())
	}
	res.Succeeded = !res.Cancelled && res.Err == nil && res.LastProgress > 0

	h.result = res
	close(h.done)

	r.mu.Lock()
	delete(r.active, h)
	r.mu.Unlock()

	r.metrics.RecordTask(h.name, res.Outcome(), res.Elapsed)
	log.Debug("staged task finished",
		"outcome", res.Outcome(),
		"last_progress", res.LastProgress,
		"polls", res.Polls,
		"elapsed", res.Elapsed.String())

	deliver := func() {
		if !h.delivered.CompareAndSwap(false, true) {
			return
		}
		done(res)
	}
	if !r.poster.Post(deliver) {
		log.Warn("staged task result dropped: UI thread gone", "outcome", res.Outcome())
	}
}

// Active returns the number of tasks whose poll loop is still running.
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// CancelAll cancels every running task without waiting for them and
// returns how many were cancelled. The runner keeps accepting launches.
func (r *Runner) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for h := range r.active {
		h.cancel()
	}
	return len(r.active)
}

// Close refuses further launches, cancels running tasks and waits for their
// worker goroutines to exit. It is safe to call multiple times.
//
// Close must not be called from the UI thread while a Poster that blocks
// on the UI thread is in use.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	for h := range r.active {
		h.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}
