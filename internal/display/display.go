// Package display reports the screen metrics the engine session is
// created with.
package display

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Size is a screen size in engine units. In the terminal UI one unit is
// one character cell.
type Size struct {
	Width  int
	Height int
}

// String returns "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Source reports the current screen size.
type Source interface {
	Size() (Size, error)
}

// Fixed is a Source with a constant size.
type Fixed Size

// Size implements Source.
func (f Fixed) Size() (Size, error) {
	s := Size(f)
	if !s.Valid() {
		return Size{}, fmt.Errorf("invalid fixed screen size %s", s)
	}
	return s, nil
}

// DefaultSize is used when nothing better is known.
var DefaultSize = Size{Width: 80, Height: 24}

// Terminal reads the size of the terminal attached to a file descriptor.
type Terminal struct {
	FD int
}

// Stdout returns a Terminal for the process's standard output.
func Stdout() Terminal {
	return Terminal{FD: int(os.Stdout.Fd())}
}

// Size implements Source.
func (t Terminal) Size() (Size, error) {
	if !term.IsTerminal(t.FD) {
		return Size{}, fmt.Errorf("fd %d is not a terminal", t.FD)
	}
	w, h, err := term.GetSize(t.FD)
	if err != nil {
		return Size{}, fmt.Errorf("get terminal size: %w", err)
	}
	return Size{Width: w, Height: h}, nil
}

// Chain tries each source in turn and returns the first valid size.
type Chain []Source

// Size implements Source. It falls back to DefaultSize when every source
// fails, so it never returns an error.
func (c Chain) Size() (Size, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if s, err := src.Size(); err == nil && s.Valid() {
			return s, nil
		}
	}
	return DefaultSize, nil
}

// Resolve builds the usual source: the configured size when both values
// are positive, then the terminal, then DefaultSize.
func Resolve(width, height int) Source {
	var chain Chain
	if width > 0 && height > 0 {
		chain = append(chain, Fixed{Width: width, Height: height})
	}
	return append(chain, Stdout())
}
