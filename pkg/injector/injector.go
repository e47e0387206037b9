// Package injector provides platform-abstracted keystroke emission: the
// backspace(n)/emit(text) primitives the stream processor drives to keep
// whatever text field has focus in sync with the model's output.
package injector

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

// DefaultRateHz is the keystroke rate used when config does not specify
// one (~5ms per keystroke).
const DefaultRateHz = 200

// Injector is the capability set the stream processor needs. Variants:
// X11 (xdotool), macOS (CG event tap), Windows (SendInput), and a no-op
// used in tests or whenever the platform can't be driven.
type Injector interface {
	// Backspace emits n BackSpace keystrokes. n == 0 is a no-op. Negative n
	// is a programming error and panics.
	Backspace(n int)
	// Emit types text at the current cursor position, pressing Return for
	// each interior newline.
	Emit(text string)
}

// delay returns the inter-keystroke pause for the given rate in
// keystrokes/second, falling back to DefaultRateHz when rateHz <= 0.
func delay(rateHz int) time.Duration {
	if rateHz <= 0 {
		rateHz = DefaultRateHz
	}
	return time.Second / time.Duration(rateHz)
}

// splitLines splits text on interior newlines the way emit() must: each
// line is typed, then (except after the last line) a Return is pressed.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// New selects an injector implementation for the current process: a no-op
// whenever running under `go test` or with XSCRIBE_TEST_MODE set, otherwise
// the platform-specific implementation returned by newPlatform (see
// xdotool.go / darwin.go / windows.go, selected by build tag).
func New(rateHz int) Injector {
	if testModeActive() {
		logger.Debug(logger.CategoryInjector, "test mode detected, using no-op injector")
		return NoOp{}
	}
	return newPlatform(rateHz)
}

func testModeActive() bool {
	if testing.Testing() {
		return true
	}
	return strings.EqualFold(os.Getenv("XSCRIBE_TEST_MODE"), "true")
}
