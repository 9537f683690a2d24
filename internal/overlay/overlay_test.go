package overlay

import (
	"errors"
	"testing"
	"time"

	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

type mockNatives struct {
	next, dice, restart int
	err                 error
}

func (m *mockNatives) NextButtonClick() error { m.next++; return m.err }
func (m *mockNatives) DiceButtonClick() error { m.dice++; return m.err }
func (m *mockNatives) Restart() error         { m.restart++; return m.err }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func showAll(o *Overlay) {
	for _, v := range Views() {
		o.ShowView(v)
	}
}

func TestNew_StartsReset(t *testing.T) {
	o := New(&mockNatives{})
	for _, v := range Views() {
		if o.Visible(v) {
			t.Errorf("%s visible after New", v)
		}
	}
	if o.Confirming() {
		t.Error("confirmation open after New")
	}
}

func TestApplier(t *testing.T) {
	o := New(&mockNatives{})

	uibridge.Apply(o, uibridge.ShowView{Name: uibridge.ViewDiceButton})
	uibridge.Apply(o, uibridge.SetPlayerText{Text: "Player 2"})
	uibridge.Apply(o, uibridge.SetPlayerTextColor{Alpha: 255, Red: 231, Green: 76, Blue: 60})

	if !o.Visible(uibridge.ViewDiceButton) {
		t.Error("dice button should be visible")
	}
	if o.PlayerText() != "Player 2" {
		t.Errorf("PlayerText() = %q", o.PlayerText())
	}
	if got := o.PlayerColor().Hex(); got != "#e74c3c" {
		t.Errorf("PlayerColor().Hex() = %s, want #e74c3c", got)
	}

	uibridge.Apply(o, uibridge.HideView{Name: uibridge.ViewDiceButton})
	if o.Visible(uibridge.ViewDiceButton) {
		t.Error("dice button should be hidden")
	}

	// Unknown views are ignored.
	o.ShowView("mysteryView")
	if o.Visible("mysteryView") {
		t.Error("unknown view became visible")
	}
}

func TestColor_HexClamps(t *testing.T) {
	if got := (Color{Red: 300, Green: -5, Blue: 16}).Hex(); got != "#ff0010" {
		t.Errorf("Hex() = %s, want #ff0010", got)
	}
}

func TestToasts_Expire(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	o := New(&mockNatives{}, WithClock(clock.now), WithToastDurations(time.Second, 3*time.Second))

	o.ShowToast("short", uibridge.ToastShort)
	o.ShowToast("long", uibridge.ToastLong)

	if got := o.Toasts(); len(got) != 2 {
		t.Fatalf("Toasts() = %d entries, want 2", len(got))
	}

	clock.advance(time.Second)
	got := o.Toasts()
	if len(got) != 1 || got[0].Text != "long" {
		t.Fatalf("after 1s Toasts() = %+v, want [long]", got)
	}

	clock.advance(2 * time.Second)
	if got := o.Toasts(); len(got) != 0 {
		t.Errorf("after 3s Toasts() = %+v, want none", got)
	}
}

func TestClick_DiceAndNextHideThemselves(t *testing.T) {
	tests := []struct {
		button   string
		wantDice int
		wantNext int
	}{
		{uibridge.ViewDiceButton, 1, 0},
		{uibridge.ViewNextButton, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.button, func(t *testing.T) {
			n := &mockNatives{}
			o := New(n)
			o.ShowView(tt.button)

			if err := o.Click(tt.button); err != nil {
				t.Fatalf("Click() error = %v", err)
			}
			if n.dice != tt.wantDice || n.next != tt.wantNext {
				t.Errorf("natives dice=%d next=%d, want %d/%d", n.dice, n.next, tt.wantDice, tt.wantNext)
			}
			if o.Visible(tt.button) {
				t.Error("button should hide itself after click")
			}

			// Hidden now, so a second click is ignored.
			_ = o.Click(tt.button)
			if n.dice+n.next != 1 {
				t.Error("click on hidden button reached the engine")
			}
		})
	}
}

func TestClick_PropagatesEngineError(t *testing.T) {
	n := &mockNatives{err: errors.New("session released")}
	o := New(n)
	o.ShowView(uibridge.ViewDiceButton)
	if err := o.Click(uibridge.ViewDiceButton); err == nil {
		t.Error("expected engine error")
	}
}

func TestClick_NotAButton(t *testing.T) {
	o := New(&mockNatives{})
	o.ShowView(uibridge.ViewPlayerText)
	if err := o.Click(uibridge.ViewPlayerText); err == nil {
		t.Error("clicking the player label should fail")
	}
}

func TestRestart_Confirmed(t *testing.T) {
	n := &mockNatives{}
	o := New(n)
	showAll(o)

	if err := o.Click(uibridge.ViewRestartButton); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if !o.Confirming() {
		t.Fatal("restart should ask for confirmation")
	}
	if n.restart != 0 {
		t.Fatal("restart reached the engine before confirmation")
	}

	// Other buttons are blocked while the dialog is open.
	_ = o.Click(uibridge.ViewDiceButton)
	if n.dice != 0 {
		t.Error("dice click went through while confirming")
	}

	if err := o.ConfirmRestart(true); err != nil {
		t.Fatalf("ConfirmRestart() error = %v", err)
	}
	if n.restart != 1 {
		t.Errorf("Restart called %d times, want 1", n.restart)
	}
	for _, v := range Views() {
		if o.Visible(v) {
			t.Errorf("%s still visible after confirmed restart", v)
		}
	}
	if o.Confirming() {
		t.Error("confirmation still open")
	}
}

func TestRestart_Declined(t *testing.T) {
	n := &mockNatives{}
	o := New(n)
	showAll(o)

	_ = o.Click(uibridge.ViewRestartButton)
	if err := o.ConfirmRestart(false); err != nil {
		t.Fatalf("ConfirmRestart() error = %v", err)
	}
	if n.restart != 0 {
		t.Error("declined restart reached the engine")
	}
	if !o.Visible(uibridge.ViewDiceButton) {
		t.Error("declining must not reset the overlay")
	}

	// Answering without an open dialog does nothing.
	if err := o.ConfirmRestart(true); err != nil || n.restart != 0 {
		t.Error("ConfirmRestart without dialog should be a no-op")
	}
}

func TestNew_NilNativesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil)
}
