// Package term decides whether console output is colored and wraps text in
// ANSI color sequences.
//
// The logger calls [Configure] once at startup. Level tags and the banner
// then go through [Paint], which returns its input unchanged when colors
// are off, so callers never test the mode themselves. The log file is
// always written without colors.
package term

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/data-bridge/bridgeflow/internal/config"
)

// Color is an ANSI SGR sequence.
type Color string

// Colors used by the level tags and the banner.
const (
	Red     Color = "\033[1;91m"
	Green   Color = "\033[1;92m"
	Yellow  Color = "\033[1;93m"
	Blue    Color = "\033[1;94m"
	Magenta Color = "\033[1;95m"
	Cyan    Color = "\033[1;96m"
)

const reset = "\033[0m"

var enabled atomic.Bool

// Wrap returns s between c and the reset sequence, regardless of the mode.
func (c Color) Wrap(s string) string {
	if c == "" || s == "" {
		return s
	}
	return string(c) + s + reset
}

// Configure resolves mode against stdout and the environment.
func Configure(mode config.ColorMode) {
	enabled.Store(Resolve(mode, os.Stdout, os.Getenv))
}

// Enabled reports whether colors are on.
func Enabled() bool { return enabled.Load() }

// Paint wraps s in c when colors are on.
func Paint(c Color, s string) string {
	if !Enabled() {
		return s
	}
	return c.Wrap(s)
}

// Resolve reports whether mode turns colors on for out. Auto needs a TTY,
// an empty NO_COLOR (https://no-color.org) and a TERM other than "dumb".
func Resolve(mode config.ColorMode, out *os.File, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return IsTerminal(out) &&
		getenv("NO_COLOR") == "" &&
		strings.ToLower(getenv("TERM")) != "dumb"
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
