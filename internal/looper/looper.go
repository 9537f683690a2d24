// Package looper provides a sequenced FIFO executor that turns the goroutine
// calling Run into the application's UI thread.
//
// Work is handed to the UI thread with Post (fire and forget) or Sync (wait
// for completion). Posted functions run one at a time, in the order they were
// posted, so anything they touch needs no further locking as long as it is
// only touched from posted functions.
//
// # Usage
//
//	l := looper.New()
//	go func() {
//	    l.Post(func() { controller.Create() })
//	}()
//	err := l.Run(ctx) // blocks until ctx is done or Stop is called
package looper

import (
	"context"
	"sync"
)

// Looper is a single-consumer FIFO of functions.
type Looper struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{} // buffered(1); signals a non-empty queue
	quit chan struct{} // closed by Stop
}

// New creates an idle Looper. Nothing runs until Run is called.
func New() *Looper {
	return &Looper{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

// Post enqueues fn to run on the UI thread. It never blocks. It returns false
// if the looper has been stopped, in which case fn will never run.
func (l *Looper) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Sync posts fn and blocks until it has run. It returns false if the looper
// stopped before fn could run.
//
// Sync must not be called from the UI thread itself; doing so deadlocks.
func (l *Looper) Sync(fn func()) bool {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}

	select {
	case <-done:
		return true
	case <-l.quit:
		// fn may have been the last thing to run before Stop.
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// Run executes posted functions on the calling goroutine until ctx is done
// or Stop is called. A panic in a posted function is not recovered; it
// crashes the UI thread the same way it would on any other UI toolkit.
//
// Run returns ctx.Err() when the context ended the loop and nil after Stop.
func (l *Looper) Run(ctx context.Context) error {
	for {
		if fn, ok := l.next(); ok {
			fn()
			continue
		}

		select {
		case <-l.wake:
		case <-l.quit:
			return nil
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		}
	}
}

func (l *Looper) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Stop permanently tears the looper down. Pending functions are discarded
// and their count is returned. Later calls return 0.
func (l *Looper) Stop() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return 0
	}
	l.stopped = true
	dropped := len(l.queue)
	l.queue = nil
	close(l.quit)
	return dropped
}

// Stopped reports whether Stop has been called.
func (l *Looper) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Pending returns the number of functions waiting to run.
func (l *Looper) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Done returns a channel that is closed once the looper is stopped.
func (l *Looper) Done() <-chan struct{} {
	return l.quit
}
