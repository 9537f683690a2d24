// Package console is the headless UI collaborator. It plays the chrome the
// lifecycle controller drives and mirrors engine UI messages as text lines,
// which makes a run observable without a terminal UI.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Iron-Ham/invisiboga/internal/event"
	"github.com/Iron-Ham/invisiboga/internal/lifecycle"
	"github.com/Iron-Ham/invisiboga/internal/overlay"
	"github.com/Iron-Ham/invisiboga/internal/tui/styles"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// Option configures a Console.
type Option func(*Console)

// WithAutoAck acknowledges fatal dialogs as soon as they are shown.
// It is on by default.
func WithAutoAck(auto bool) Option {
	return func(c *Console) { c.autoAck = auto }
}

// Console writes UI activity to a writer, one line per change.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	autoAck bool

	loading bool
	overlay *overlay.Overlay
	surface lifecycle.Surface
	ack     func()
}

var (
	_ lifecycle.Chrome = (*Console)(nil)
	_ uibridge.Applier = (*Console)(nil)
)

// New creates a Console writing to w.
func New(w io.Writer, opts ...Option) *Console {
	if w == nil {
		panic("console: writer must not be nil")
	}
	c := &Console{w: w, autoAck: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Printf writes one formatted line.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format+"\n", args...)
}

// ShowLoading implements lifecycle.Chrome.
func (c *Console) ShowLoading(text string) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	c.Printf("%s %s", styles.Warning.Render("…"), text)
}

// DismissLoading implements lifecycle.Chrome.
func (c *Console) DismissLoading() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
	c.Printf("%s ready", styles.SuccessMsg.Render("✓"))
}

// ShowFatal implements lifecycle.Chrome. With auto-ack the dialog is
// acknowledged immediately; otherwise Acknowledge does it.
func (c *Console) ShowFatal(reason string, ack func()) {
	c.Printf("%s", styles.DialogFatal.Render(styles.ErrorMsg.Render("Error")+"\n"+reason))

	c.mu.Lock()
	auto := c.autoAck
	if !auto {
		c.ack = ack
	}
	c.mu.Unlock()

	if auto && ack != nil {
		ack()
	}
}

// Acknowledge acknowledges a pending fatal dialog. It reports whether one
// was pending. It must run on the UI thread.
func (c *Console) Acknowledge() bool {
	c.mu.Lock()
	ack := c.ack
	c.ack = nil
	c.mu.Unlock()

	if ack == nil {
		return false
	}
	ack()
	return true
}

// Attach implements lifecycle.Chrome.
func (c *Console) Attach(surface lifecycle.Surface, ov *overlay.Overlay) {
	c.mu.Lock()
	c.surface = surface
	c.overlay = ov
	c.mu.Unlock()
	c.Printf("%s surface attached", styles.Primary.Render("▣"))
}

// Overlay returns the attached overlay, or nil.
func (c *Console) Overlay() *overlay.Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay
}

// Loading reports whether the loading indicator is shown.
func (c *Console) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ShowView implements uibridge.Applier.
func (c *Console) ShowView(name string) { c.Printf("  ui show %s", name) }

// HideView implements uibridge.Applier.
func (c *Console) HideView(name string) { c.Printf("  ui hide %s", name) }

// ShowToast implements uibridge.Applier.
func (c *Console) ShowToast(text string, d uibridge.DurationClass) {
	c.Printf("  ui toast[%s] %s", d, styles.Toast.Render(text))
}

// SetPlayerText implements uibridge.Applier.
func (c *Console) SetPlayerText(text string) { c.Printf("  ui player %q", text) }

// SetPlayerTextColor implements uibridge.Applier.
func (c *Console) SetPlayerTextColor(alpha, red, green, blue int) {
	color := styles.ARGB(alpha, red, green, blue)
	c.Printf("  ui player color %s", string(color))
}

// Follow prints lifecycle events published on bus. It returns the
// subscription IDs.
func (c *Console) Follow(bus *event.Bus) []string {
	return []string{
		bus.Subscribe(event.TypeStateChanged, func(e event.Event) {
			sc := e.(event.StateChangedEvent)
			c.Printf("%s → %s", styles.Muted.Render(sc.From), styles.StateBadge(sc.To))
		}),
		bus.Subscribe(event.TypeTaskFinished, func(e event.Event) {
			tf := e.(event.TaskFinishedEvent)
			c.Printf("  task %s finished: succeeded=%t cancelled=%t last=%d in %s",
				tf.Stage, tf.Succeeded, tf.Cancelled, tf.LastProgress, tf.Elapsed.Round(time.Millisecond))
		}),
		bus.Subscribe(event.TypeStalled, func(e event.Event) {
			st := e.(event.StageStalledEvent)
			c.Printf("%s stalled in %s: %v", styles.StateBadge("stalled"), st.State, st.Err)
		}),
		bus.Subscribe(event.TypeCamera, func(e event.Event) {
			ce := e.(event.CameraEvent)
			c.Printf("  camera running=%t", ce.Running)
		}),
		bus.Subscribe(event.TypeTeardown, func(e event.Event) {
			td := e.(event.TeardownEvent)
			c.Printf("%s torn down (cancelled tasks: %d)", styles.Muted.Render("■"), td.CancelledTasks)
		}),
	}
}
