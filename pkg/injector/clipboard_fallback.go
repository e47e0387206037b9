package injector

import (
	"sync"

	"github.com/jeff-barlow-spady/xscribe/internal/clipboard"
	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

var clipboardNoticeOnce sync.Once

// clipboardFallback puts text on the system clipboard so the user can
// manually paste it when keystroke injection is unavailable — e.g. the
// macOS accessibility permission was denied, or xdotool isn't
// installed. Logged once per process so a long recording doesn't spam
// the log with repeated instructions.
func clipboardFallback(text string) {
	if text == "" {
		return
	}
	if err := clipboard.AppendText(text); err != nil {
		logger.Error(logger.CategoryInjector, "clipboard fallback failed: %v", err)
		return
	}
	clipboardNoticeOnce.Do(func() {
		logger.Warning(logger.CategoryInjector,
			"keystroke injection unavailable; dictated text is being appended to the clipboard instead — paste manually")
	})
}
