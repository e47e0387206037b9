package injector

import "github.com/jeff-barlow-spady/xscribe/pkg/logger"

// NoOp is the keystroke injector used under test and whenever no platform
// backend is available. It never touches the OS.
type NoOp struct{}

// Backspace implements Injector.
func (NoOp) Backspace(n int) {
	if n < 0 {
		panic("injector: negative backspace count")
	}
	logger.Debug(logger.CategoryInjector, "noop backspace(%d)", n)
}

// Emit implements Injector.
func (NoOp) Emit(text string) {
	logger.Debug(logger.CategoryInjector, "noop emit(%q)", text)
}
