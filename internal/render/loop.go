// Package render runs the render thread: a goroutine that asks the engine
// for one frame at a time, paced by a token-bucket limiter.
//
// The engine receives the UI message bridge as its sink on every frame and
// must never touch UI state directly.
package render

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/Iron-Ham/invisiboga/internal/errors"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 30

// FrameSource draws one frame. engine.Handle implements it.
type FrameSource interface {
	RenderFrame(ui uibridge.Sender) error
}

// Option configures a Loop.
type Option func(*Loop)

// WithFPS sets the frame rate limit. Non-positive values keep DefaultFPS.
func WithFPS(fps int) Option {
	return func(l *Loop) {
		if fps > 0 {
			l.fps = fps
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records frames and frame errors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// Loop is the render thread.
type Loop struct {
	source  FrameSource
	sink    uibridge.Sender
	fps     int
	logger  *logging.Logger
	metrics *metrics.Metrics

	frames atomic.Int64

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	paused  bool
	resumed chan struct{} // closed on Resume while paused
	wg      sync.WaitGroup
}

// NewLoop creates a stopped Loop.
func NewLoop(source FrameSource, sink uibridge.Sender, opts ...Option) *Loop {
	if source == nil {
		panic("render: FrameSource must not be nil")
	}
	if sink == nil {
		panic("render: Sender must not be nil")
	}
	l := &Loop{
		source: source,
		sink:   sink,
		fps:    DefaultFPS,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the render goroutine. It returns immediately.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return fmt.Errorf("render: already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.started = true

	limiter := rate.NewLimiter(rate.Limit(l.fps), 1)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(ctx, limiter)
	}()

	l.logger.Debug("render loop started", "fps", l.fps)
	return nil
}

func (l *Loop) run(ctx context.Context, limiter *rate.Limiter) {
	for {
		if wait := l.pausedCh(); wait != nil {
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		err := l.source.RenderFrame(l.sink)
		l.frames.Add(1)
		l.metrics.RecordFrame(err)
		switch {
		case errors.Is(err, errors.ErrSessionReleased):
			l.logger.Debug("render loop stopping: engine session released")
			return
		case err != nil:
			l.logger.Warn("frame failed", "error", err)
		}
	}
}

// pausedCh returns the channel to wait on while paused, or nil.
func (l *Loop) pausedCh() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.paused {
		return nil
	}
	return l.resumed
}

// Pause stops producing frames until Resume. The goroutine stays alive.
func (l *Loop) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paused {
		return
	}
	l.paused = true
	l.resumed = make(chan struct{})
}

// Resume continues producing frames after Pause.
func (l *Loop) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.paused {
		return
	}
	l.paused = false
	close(l.resumed)
}

// Paused reports whether the loop is paused.
func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// Stop cancels the render goroutine and waits for the current frame to
// finish. It is safe to call multiple times and before Start.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return
	}
	l.cancel()
	l.mu.Unlock()

	l.wg.Wait()
}

// Frames returns the number of frames rendered so far.
func (l *Loop) Frames() int64 {
	return l.frames.Load()
}
