//go:build windows

package router

import (
	"os"
	"os/signal"
)

// registerSignals on Windows only has Ctrl+C/Ctrl+Break to work with —
// SIGUSR1/SIGUSR2/SIGHUP have no Windows equivalent, so mode-switch and
// signal-stop are keyboard/tray-only on this platform.
func registerSignals() (chan os.Signal, func(os.Signal) signalAction) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt)

	classify := func(sig os.Signal) signalAction {
		if sig == os.Interrupt {
			return actionInterrupt
		}
		return actionNone
	}
	return ch, classify
}
