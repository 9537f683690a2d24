package uibridge

import "fmt"

// View names known to the overlay.
const (
	ViewDiceButton    = "diceButton"
	ViewNextButton    = "nextButton"
	ViewRestartButton = "restartButton"
	ViewPlayerText    = "currentPlayerTextView"
)

// Message kinds.
const (
	KindShowView           = "show_view"
	KindHideView           = "hide_view"
	KindShowToast          = "show_toast"
	KindSetPlayerText      = "set_player_text"
	KindSetPlayerTextColor = "set_player_text_color"
)

// DurationClass selects how long a toast stays on screen.
type DurationClass int

const (
	ToastShort DurationClass = iota
	ToastLong
)

// String returns "short" or "long".
func (d DurationClass) String() string {
	if d == ToastLong {
		return "long"
	}
	return "short"
}

// Applier is the UI collaborator surface. Its methods are only ever called
// on the UI thread.
type Applier interface {
	ShowView(name string)
	HideView(name string)
	ShowToast(text string, duration DurationClass)
	SetPlayerText(text string)
	SetPlayerTextColor(alpha, red, green, blue int)
}

// Message is a UI mutation request. The set of variants is closed.
type Message interface {
	Kind() string
	String() string
	apply(Applier)
}

// ShowView makes the named view visible.
type ShowView struct{ Name string }

func (ShowView) Kind() string      { return KindShowView }
func (m ShowView) String() string  { return fmt.Sprintf("show_view(%s)", m.Name) }
func (m ShowView) apply(a Applier) { a.ShowView(m.Name) }

// HideView hides the named view.
type HideView struct{ Name string }

func (HideView) Kind() string      { return KindHideView }
func (m HideView) String() string  { return fmt.Sprintf("hide_view(%s)", m.Name) }
func (m HideView) apply(a Applier) { a.HideView(m.Name) }

// ShowToast shows a transient notification.
type ShowToast struct {
	Text     string
	Duration DurationClass
}

func (ShowToast) Kind() string { return KindShowToast }
func (m ShowToast) String() string {
	return fmt.Sprintf("show_toast(%q, %s)", m.Text, m.Duration)
}
func (m ShowToast) apply(a Applier) { a.ShowToast(m.Text, m.Duration) }

// SetPlayerText replaces the current player label.
type SetPlayerText struct{ Text string }

func (SetPlayerText) Kind() string      { return KindSetPlayerText }
func (m SetPlayerText) String() string  { return fmt.Sprintf("set_player_text(%q)", m.Text) }
func (m SetPlayerText) apply(a Applier) { a.SetPlayerText(m.Text) }

// SetPlayerTextColor sets the ARGB colour of the player label. Components
// are 0..255.
type SetPlayerTextColor struct {
	Alpha, Red, Green, Blue int
}

func (SetPlayerTextColor) Kind() string { return KindSetPlayerTextColor }
func (m SetPlayerTextColor) String() string {
	return fmt.Sprintf("set_player_text_color(%d,%d,%d,%d)", m.Alpha, m.Red, m.Green, m.Blue)
}
func (m SetPlayerTextColor) apply(a Applier) {
	a.SetPlayerTextColor(m.Alpha, m.Red, m.Green, m.Blue)
}

// Apply applies msg to a directly. Only the UI thread may call it.
func Apply(a Applier, msg Message) {
	msg.apply(a)
}

// ApplierFuncs is an Applier assembled from optional functions. Nil fields
// ignore their message.
type ApplierFuncs struct {
	Show        func(name string)
	Hide        func(name string)
	Toast       func(text string, duration DurationClass)
	PlayerText  func(text string)
	PlayerColor func(alpha, red, green, blue int)
}

func (f ApplierFuncs) ShowView(name string) {
	if f.Show != nil {
		f.Show(name)
	}
}

func (f ApplierFuncs) HideView(name string) {
	if f.Hide != nil {
		f.Hide(name)
	}
}

func (f ApplierFuncs) ShowToast(text string, duration DurationClass) {
	if f.Toast != nil {
		f.Toast(text, duration)
	}
}

func (f ApplierFuncs) SetPlayerText(text string) {
	if f.PlayerText != nil {
		f.PlayerText(text)
	}
}

func (f ApplierFuncs) SetPlayerTextColor(alpha, red, green, blue int) {
	if f.PlayerColor != nil {
		f.PlayerColor(alpha, red, green, blue)
	}
}

// Tee returns an Applier that applies every message to each non-nil a in
// order.
func Tee(appliers ...Applier) Applier {
	var out tee
	for _, a := range appliers {
		if a != nil {
			out = append(out, a)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

type tee []Applier

func (t tee) ShowView(name string) {
	for _, a := range t {
		a.ShowView(name)
	}
}

func (t tee) HideView(name string) {
	for _, a := range t {
		a.HideView(name)
	}
}

func (t tee) ShowToast(text string, duration DurationClass) {
	for _, a := range t {
		a.ShowToast(text, duration)
	}
}

func (t tee) SetPlayerText(text string) {
	for _, a := range t {
		a.SetPlayerText(text)
	}
}

func (t tee) SetPlayerTextColor(alpha, red, green, blue int) {
	for _, a := range t {
		a.SetPlayerTextColor(alpha, red, green, blue)
	}
}
