//go:build darwin

package injector

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

static void postKeyEvent(CGKeyCode keyCode, bool keyDown) {
	CGEventRef event = CGEventCreateKeyboardEvent(NULL, keyCode, keyDown);
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
}

static void postUnicodeString(const UniChar *chars, UniCharCount length) {
	CGEventRef event = CGEventCreateKeyboardEvent(NULL, 0, true);
	CGEventKeyboardSetUnicodeString(event, length, chars);
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);

	CGEventRef up = CGEventCreateKeyboardEvent(NULL, 0, false);
	CGEventPost(kCGHIDEventTap, up);
	CFRelease(up);
}

static int accessibilityTrusted() {
	return AXIsProcessTrusted() ? 1 : 0;
}
*/
import "C"

import (
	"sync"
	"time"
	"unsafe"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

// kVKDelete is the macOS virtual keycode for the Delete/BackSpace key.
const kVKDelete = C.CGKeyCode(0x33)
const kVKReturn = C.CGKeyCode(0x24)

// macInjector drives a CoreGraphics event tap. Requires the accessibility
// permission; if it is not granted the first call logs a one-shot
// instructional message, after which Backspace does nothing and Emit
// puts its text on the clipboard instead.
type macInjector struct {
	delay time.Duration

	once       sync.Once
	permission bool
}

func newPlatform(rateHz int) Injector {
	return &macInjector{delay: delay(rateHz)}
}

func (m *macInjector) checkPermission() bool {
	m.once.Do(func() {
		m.permission = C.accessibilityTrusted() != 0
		if !m.permission {
			logger.Error(logger.CategoryInjector,
				"accessibility permission not granted; grant it in System Settings > Privacy & Security > Accessibility to enable dictation output")
		}
	})
	return m.permission
}

func (m *macInjector) Backspace(n int) {
	if n < 0 {
		panic("injector: negative backspace count")
	}
	if n == 0 {
		return
	}
	if !m.checkPermission() {
		return
	}
	for i := 0; i < n; i++ {
		C.postKeyEvent(kVKDelete, true)
		C.postKeyEvent(kVKDelete, false)
		time.Sleep(m.delay)
	}
}

func (m *macInjector) Emit(text string) {
	if text == "" {
		return
	}
	if !m.checkPermission() {
		clipboardFallback(text)
		return
	}
	lines := splitLines(text)
	for i, line := range lines {
		if line != "" {
			m.emitUnicode(line)
		}
		if i < len(lines)-1 {
			C.postKeyEvent(kVKReturn, true)
			C.postKeyEvent(kVKReturn, false)
			time.Sleep(m.delay)
		}
	}
}

func (m *macInjector) emitUnicode(s string) {
	runes := []rune(s)
	units := make([]C.UniChar, 0, len(runes))
	for _, r := range runes {
		// UTF-16 encode; CGEventKeyboardSetUnicodeString takes UniChar
		// (UTF-16 code units), so surrogate pairs are handled per rune.
		start := len(units)
		if r > 0xFFFF {
			r -= 0x10000
			units = append(units, C.UniChar(0xD800+(r>>10)), C.UniChar(0xDC00+(r&0x3FF)))
		} else {
			units = append(units, C.UniChar(r))
		}
		C.postUnicodeString((*C.UniChar)(unsafe.Pointer(&units[start])), C.UniCharCount(len(units)-start))
		time.Sleep(m.delay)
	}
}
