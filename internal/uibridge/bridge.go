package uibridge

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
)

// Poster hands a function to the UI thread.
type Poster interface {
	Post(fn func()) bool
}

// Sender is the producer side of the bridge.
type Sender interface {
	Send(msg Message)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(Message)

// Send calls f.
func (f SenderFunc) Send(msg Message) { f(msg) }

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger for the bridge.
func WithLogger(logger *logging.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics records applied and dropped messages.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// Bridge is an unbounded FIFO drained on the UI thread.
type Bridge struct {
	poster  Poster
	applier Applier
	logger  *logging.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	queue     []Message
	scheduled bool // a drain is posted and has not finished
	closed    bool
}

// New creates a Bridge that applies messages to applier on the UI thread
// reached through poster.
//
// poster and applier must be non-nil. Passing nil will panic early to
// surface wiring bugs immediately.
func New(poster Poster, applier Applier, opts ...Option) *Bridge {
	if poster == nil {
		panic("uibridge: Poster must not be nil")
	}
	if applier == nil {
		panic("uibridge: Applier must not be nil")
	}

	b := &Bridge{
		poster:  poster,
		applier: applier,
		logger:  logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Send enqueues msg. It is safe to call from any goroutine. After Close,
// messages are discarded.
func (b *Bridge) Send(msg Message) {
	if msg == nil {
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Debug("ui message dropped after close", "message", msg.String())
		b.metrics.RecordBridgeDropped(1)
		return
	}
	b.queue = append(b.queue, msg)
	if b.scheduled {
		b.mu.Unlock()
		return
	}
	b.scheduled = true
	b.mu.Unlock()

	b.schedule()
}

// schedule posts a drain. It must be called without b.mu held because a
// Poster may run fn synchronously.
func (b *Bridge) schedule() {
	if b.poster.Post(b.drain) {
		return
	}
	n := b.Close()
	b.logger.Warn("ui thread gone, bridge closed", "dropped", n)
}

// drain applies the messages that were pending when it started, then
// reposts itself if producers added more meanwhile.
func (b *Bridge) drain() {
	b.mu.Lock()
	budget := len(b.queue)
	b.mu.Unlock()

	for range budget {
		msg, ok := b.pop()
		if !ok {
			return
		}
		b.apply(msg)
	}

	b.mu.Lock()
	if b.closed || len(b.queue) == 0 {
		b.scheduled = false
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.schedule()
}

func (b *Bridge) pop() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || len(b.queue) == 0 {
		b.scheduled = false
		return nil, false
	}
	msg := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return msg, true
}

// apply is best effort; a panicking Applier is logged and the drain moves
// on to the next message.
func (b *Bridge) apply(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("ui message apply panicked",
				"message", msg.String(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	msg.apply(b.applier)
	b.metrics.RecordBridgeApplied(msg.Kind())
}

// Close discards pending messages and makes later sends no-ops. It returns
// the number of discarded messages. Later calls return 0.
func (b *Bridge) Close() int {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0
	}
	b.closed = true
	n := len(b.queue)
	b.queue = nil
	b.mu.Unlock()

	b.metrics.RecordBridgeDropped(n)
	if n > 0 {
		b.logger.Debug("pending ui messages discarded", "count", n)
	}
	return n
}

// Pending returns the number of messages not yet applied.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Closed reports whether Close has been called.
func (b *Bridge) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
