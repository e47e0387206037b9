//go:build linux || freebsd

package injector

import (
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

// xdotoolInjector shells out to xdotool, mirroring the teacher's
// internal/clipboard exec-fallback pattern and the original Python
// XdotoolKeyboardInjector.
type xdotoolInjector struct {
	delayMs int
}

func newPlatform(rateHz int) Injector {
	d := delay(rateHz)
	ms := int(d / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return &xdotoolInjector{delayMs: ms}
}

func (x *xdotoolInjector) Backspace(n int) {
	if n < 0 {
		panic("injector: negative backspace count")
	}
	if n == 0 {
		return
	}
	cmd := exec.Command("xdotool", "key",
		"--delay", strconv.Itoa(x.delayMs),
		"--repeat", strconv.Itoa(n),
		"BackSpace")
	if out, err := cmd.CombinedOutput(); err != nil {
		logger.Error(logger.CategoryInjector, "xdotool backspace failed: %v (%s)", err, strings.TrimSpace(string(out)))
	}
}

func (x *xdotoolInjector) Emit(text string) {
	if text == "" {
		return
	}
	lines := splitLines(text)
	for i, line := range lines {
		if line != "" {
			cmd := exec.Command("xdotool", "type", "--delay", strconv.Itoa(x.delayMs), line)
			if out, err := cmd.CombinedOutput(); err != nil {
				logger.Error(logger.CategoryInjector, "xdotool type failed: %v (%s)", err, strings.TrimSpace(string(out)))
				clipboardFallback(line)
			}
		}
		if i < len(lines)-1 {
			if out, err := exec.Command("xdotool", "key", "Return").CombinedOutput(); err != nil {
				logger.Error(logger.CategoryInjector, "xdotool Return failed: %v (%s)", err, strings.TrimSpace(string(out)))
			}
		}
	}
}
