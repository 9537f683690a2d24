// Package overlay is the view model for the controls drawn above the render
// surface: the dice, next and restart buttons, the current-player label and
// transient toasts.
//
// Overlay implements uibridge.Applier, so engine-originated UI changes land
// here after crossing the message bridge. Button clicks go the other way,
// into the engine through Natives. All methods must be called on the UI
// thread.
package overlay

import (
	"fmt"
	"slices"
	"time"

	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// Default toast durations.
const (
	DefaultToastShort = 2 * time.Second
	DefaultToastLong  = 3500 * time.Millisecond
)

// RestartPrompt is the question asked before a restart.
const RestartPrompt = "Restart the game?"

// Natives receives button clicks. engine.Handle implements it.
type Natives interface {
	NextButtonClick() error
	DiceButtonClick() error
	Restart() error
}

// Views returns every view the overlay manages, in display order.
func Views() []string {
	return []string{
		uibridge.ViewPlayerText,
		uibridge.ViewDiceButton,
		uibridge.ViewNextButton,
		uibridge.ViewRestartButton,
	}
}

// Color is an ARGB colour with 0..255 components.
type Color struct {
	Alpha, Red, Green, Blue int
}

// Hex returns "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", clamp(c.Red), clamp(c.Green), clamp(c.Blue))
}

func clamp(v int) int {
	return max(0, min(255, v))
}

// Toast is a transient notification.
type Toast struct {
	Text     string
	Duration uibridge.DurationClass
	Until    time.Time
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Overlay) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithToastDurations overrides how long short and long toasts stay visible.
// Non-positive values keep the defaults.
func WithToastDurations(short, long time.Duration) Option {
	return func(o *Overlay) {
		if short > 0 {
			o.toastShort = short
		}
		if long > 0 {
			o.toastLong = long
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Overlay) { o.now = now }
}

// Overlay holds the overlay state. It starts in the reset state with every
// view hidden.
type Overlay struct {
	natives    Natives
	logger     *logging.Logger
	now        func() time.Time
	toastShort time.Duration
	toastLong  time.Duration

	visible     map[string]bool
	playerText  string
	playerColor Color
	toasts      []Toast
	confirming  bool
}

var _ uibridge.Applier = (*Overlay)(nil)

// New creates an Overlay that forwards clicks to natives.
func New(natives Natives, opts ...Option) *Overlay {
	if natives == nil {
		panic("overlay: Natives must not be nil")
	}
	o := &Overlay{
		natives:     natives,
		logger:      logging.NopLogger(),
		now:         time.Now,
		toastShort:  DefaultToastShort,
		toastLong:   DefaultToastLong,
		visible:     make(map[string]bool),
		playerColor: Color{Alpha: 255, Red: 255, Green: 255, Blue: 255},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.Reset()
	return o
}

func known(name string) bool {
	return slices.Contains(Views(), name)
}

func (o *Overlay) setVisible(name string, v bool) {
	if !known(name) {
		o.logger.Warn("unknown overlay view", "view", name)
		return
	}
	o.logger.Debug("overlay view visibility", "view", name, "visible", v)
	o.visible[name] = v
}

// ShowView implements uibridge.Applier.
func (o *Overlay) ShowView(name string) { o.setVisible(name, true) }

// HideView implements uibridge.Applier.
func (o *Overlay) HideView(name string) { o.setVisible(name, false) }

// ShowToast implements uibridge.Applier.
func (o *Overlay) ShowToast(text string, d uibridge.DurationClass) {
	span := o.toastShort
	if d == uibridge.ToastLong {
		span = o.toastLong
	}
	o.toasts = append(o.toasts, Toast{Text: text, Duration: d, Until: o.now().Add(span)})
}

// SetPlayerText implements uibridge.Applier.
func (o *Overlay) SetPlayerText(text string) {
	o.playerText = text
}

// SetPlayerTextColor implements uibridge.Applier.
func (o *Overlay) SetPlayerTextColor(alpha, red, green, blue int) {
	o.playerColor = Color{Alpha: alpha, Red: red, Green: green, Blue: blue}
}

// Reset hides the dice, next and restart buttons and the player label.
func (o *Overlay) Reset() {
	for _, name := range Views() {
		o.visible[name] = false
	}
}

// Visible reports whether the named view is shown.
func (o *Overlay) Visible(name string) bool {
	return o.visible[name]
}

// PlayerText returns the current player label.
func (o *Overlay) PlayerText() string { return o.playerText }

// PlayerColor returns the current player label colour.
func (o *Overlay) PlayerColor() Color { return o.playerColor }

// Toasts returns the toasts that have not expired yet, oldest first, and
// forgets expired ones.
func (o *Overlay) Toasts() []Toast {
	now := o.now()
	o.toasts = slices.DeleteFunc(o.toasts, func(t Toast) bool {
		return !now.Before(t.Until)
	})
	return slices.Clone(o.toasts)
}

// Confirming reports whether the restart confirmation is open.
func (o *Overlay) Confirming() bool { return o.confirming }

// Click handles a click on the named button. The dice and next buttons
// forward to the engine and hide themselves. The restart button opens the
// confirmation; see ConfirmRestart. Clicks on hidden buttons and while the
// confirmation is open are ignored.
func (o *Overlay) Click(name string) error {
	if o.confirming || !o.visible[name] {
		o.logger.Debug("overlay click ignored", "view", name, "confirming", o.confirming)
		return nil
	}

	switch name {
	case uibridge.ViewDiceButton:
		o.visible[name] = false
		return o.natives.DiceButtonClick()
	case uibridge.ViewNextButton:
		o.visible[name] = false
		return o.natives.NextButtonClick()
	case uibridge.ViewRestartButton:
		o.confirming = true
		return nil
	default:
		return fmt.Errorf("view %q is not a button", name)
	}
}

// ConfirmRestart answers the restart confirmation. On yes the overlay is
// reset and the engine restarts; on no the dialog just closes.
func (o *Overlay) ConfirmRestart(yes bool) error {
	if !o.confirming {
		return nil
	}
	o.confirming = false
	if !yes {
		return nil
	}
	o.Reset()
	return o.natives.Restart()
}
