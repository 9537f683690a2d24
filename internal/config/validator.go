package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/invisiboga/internal/logging"
)

// ValidationError is one rejected config field.
type ValidationError struct {
	Field   string // dotted key, e.g. "render.fps"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is every problem Validate found, in field order.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err)
	}
	return sb.String()
}

// Progress bounds accepted in engine scripts.
const (
	MinProgress = -3
	MaxProgress = 100
)

// Frame rate bounds.
const (
	MinFPS = 1
	MaxFPS = 240
)

// ValidLogLevels returns the accepted logging.level values, lower-cased.
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, l := range levels {
		levels[i] = strings.ToLower(l)
	}
	return levels
}

type checks []ValidationError

func (c *checks) fail(field string, value any, format string, args ...any) {
	*c = append(*c, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (c *checks) script(field string, script []int) {
	if len(script) == 0 {
		c.fail(field, script, "must contain at least one progress value")
		return
	}
	for i, v := range script {
		if v < MinProgress || v > MaxProgress {
			c.fail(fmt.Sprintf("%s[%d]", field, i), v, "must be between %d and %d", MinProgress, MaxProgress)
		}
	}
}

// Validate returns every invalid value in c. A nil result means c is usable.
func (c *Config) Validate() []ValidationError {
	var v checks

	v.script("engine.init_script", c.Engine.InitScript)
	v.script("engine.load_script", c.Engine.LoadScript)
	if c.Engine.StepDelay < 0 {
		v.fail("engine.step_delay", c.Engine.StepDelay, "must be non-negative")
	}

	if c.Assets.Dir != "" && strings.TrimSpace(c.Assets.Manifest) == "" {
		v.fail("assets.manifest", c.Assets.Manifest, "must be set when assets.dir is set")
	}
	if strings.ContainsRune(c.Assets.Dir, '\x00') {
		v.fail("assets.dir", c.Assets.Dir, "path contains invalid null character")
	}

	if c.Screen.Width < 0 {
		v.fail("screen.width", c.Screen.Width, "must be non-negative (0 = detect)")
	}
	if c.Screen.Height < 0 {
		v.fail("screen.height", c.Screen.Height, "must be non-negative (0 = detect)")
	}

	if c.Render.FPS < MinFPS || c.Render.FPS > MaxFPS {
		v.fail("render.fps", c.Render.FPS, "must be between %d and %d", MinFPS, MaxFPS)
	}

	if c.UI.ToastShort <= 0 {
		v.fail("ui.toast_short", c.UI.ToastShort, "must be positive")
	}
	if c.UI.ToastLong < c.UI.ToastShort {
		v.fail("ui.toast_long", c.UI.ToastLong, "must not be shorter than ui.toast_short")
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		v.fail("logging.level", c.Logging.Level, "must be one of: %s", strings.Join(ValidLogLevels(), ", "))
	}

	return v
}
