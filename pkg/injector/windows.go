//go:build windows

package injector

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

const (
	inputKeyboard     = 1
	keyEventFKeyUp    = 0x0002
	keyEventFUnicode  = 0x0004
	keyEventFScancode = 0x0008
	vkBack            = 0x08
	vkReturn          = 0x0D
)

// keyboardInput mirrors the Win32 KEYBDINPUT/INPUT union layout for the
// keyboard case, padded to match INPUT's union size on amd64.
type keyboardInput struct {
	inputType uint32
	_         uint32
	wVK       uint16
	wScan     uint16
	dwFlags   uint32
	time      uint32
	dwExtraInfo uintptr
	padding     uint64
}

var (
	user32       = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

// winInjector drives SendInput with Unicode scan codes, following the
// teacher's pattern of wrapping a narrow OS surface behind the shared
// Injector interface.
type winInjector struct {
	delay time.Duration
}

func newPlatform(rateHz int) Injector {
	return &winInjector{delay: delay(rateHz)}
}

func (w *winInjector) sendKey(vk uint16, down bool) bool {
	flags := uint32(0)
	if !down {
		flags |= keyEventFKeyUp
	}
	in := keyboardInput{
		inputType: inputKeyboard,
		wVK:       vk,
		dwFlags:   flags,
	}
	sent, _, _ := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), uintptr(unsafe.Sizeof(in)))
	return sent != 0
}

func (w *winInjector) sendUnicode(r rune, down bool) bool {
	flags := keyEventFUnicode
	if !down {
		flags |= keyEventFKeyUp
	}
	in := keyboardInput{
		inputType: inputKeyboard,
		wScan:     uint16(r),
		dwFlags:   uint32(flags),
	}
	sent, _, _ := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), uintptr(unsafe.Sizeof(in)))
	return sent != 0
}

func (w *winInjector) Backspace(n int) {
	if n < 0 {
		panic("injector: negative backspace count")
	}
	for i := 0; i < n; i++ {
		w.sendKey(vkBack, true)
		w.sendKey(vkBack, false)
		time.Sleep(w.delay)
	}
	if n > 0 {
		logger.Debug(logger.CategoryInjector, "SendInput backspace(%d)", n)
	}
}

func (w *winInjector) Emit(text string) {
	if text == "" {
		return
	}
	lines := splitLines(text)
	for i, line := range lines {
		failed := false
		for _, r := range line {
			ok1 := w.sendUnicode(r, true)
			ok2 := w.sendUnicode(r, false)
			if !ok1 || !ok2 {
				failed = true
			}
			time.Sleep(w.delay)
		}
		if failed {
			logger.Error(logger.CategoryInjector, "SendInput reported a dropped keystroke for line %q", line)
			clipboardFallback(line)
		}
		if i < len(lines)-1 {
			w.sendKey(vkReturn, true)
			w.sendKey(vkReturn, false)
			time.Sleep(w.delay)
		}
	}
}
