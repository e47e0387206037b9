// Package trayui drives the OS system tray icon: start/stop recording
// from a menu click, a mode submenu listing the available modes, and a
// red icon while a recording is active.
package trayui

import (
	"fmt"
	"log"
	"sync"

	"fyne.io/systray"

	"github.com/jeff-barlow-spady/xscribe/pkg/resources"
)

// Tray owns the system tray icon and menu.
type Tray struct {
	mu sync.Mutex

	isRunning   bool
	isRecording bool
	modes       []string
	modeItems   map[string]*systray.MenuItem

	mStartStop *systray.MenuItem
	mAbout     *systray.MenuItem
	mQuit      *systray.MenuItem

	onStartStop func()
	onModePick  func(mode string)
	onAbout     func()
	onQuit      func()
}

// New returns a Tray offering modes as menu entries; modes may be
// empty if only one mode is configured.
func New(modes []string) *Tray {
	return &Tray{
		modes:     modes,
		modeItems: make(map[string]*systray.MenuItem),
		onStartStop: func() {
			log.Println("start/stop clicked (no handler registered)")
		},
		onAbout: func() { log.Println("about clicked (no handler registered)") },
		onQuit:  func() { log.Println("quit clicked (no handler registered)") },
	}
}

// SetCallbacks wires the tray's menu actions. onModePick may be nil if
// there is only one mode.
func (t *Tray) SetCallbacks(onStartStop func(), onModePick func(mode string), onAbout func(), onQuit func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStartStop = onStartStop
	t.onModePick = onModePick
	t.onAbout = onAbout
	t.onQuit = onQuit
}

// Start initializes the tray icon. Safe to call once; a second call is
// a no-op.
func (t *Tray) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return
	}
	go systray.Run(t.onReady, t.onExit)
	t.isRunning = true
}

// Stop removes the tray icon.
func (t *Tray) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isRunning {
		return
	}
	systray.Quit()
	t.isRunning = false
}

// SetRecordingState updates the menu label and icon tint.
func (t *Tray) SetRecordingState(recording bool) {
	t.mu.Lock()
	t.isRecording = recording
	t.mu.Unlock()

	if t.mStartStop == nil {
		return
	}

	if recording {
		t.mStartStop.SetTitle("Stop Recording")
	} else {
		t.mStartStop.SetTitle("Start Recording")
	}

	iconFn := resources.GetIconData
	if recording {
		iconFn = resources.GetRedIconData
	}
	if iconBytes, err := iconFn(); err == nil && len(iconBytes) > 0 {
		systray.SetIcon(iconBytes)
	} else if err != nil {
		log.Printf("failed to update tray icon: %v", err)
	}
}

func (t *Tray) onReady() {
	iconBytes, err := resources.GetIconData()
	if err != nil {
		log.Println("failed to load tray icon:", err)
		iconBytes = []byte{}
	}
	systray.SetIcon(iconBytes)
	systray.SetTitle("xscribe")
	systray.SetTooltip("xscribe voice dictation")

	t.mStartStop = systray.AddMenuItem("Start Recording", "Start/stop push-to-talk recording")

	if len(t.modes) > 1 {
		modeMenu := systray.AddMenuItem("Mode", "Switch instruction mode")
		for _, mode := range t.modes {
			item := modeMenu.AddSubMenuItem(mode, fmt.Sprintf("Switch to %s mode", mode))
			t.modeItems[mode] = item
			go t.watchModeItem(mode, item)
		}
	}

	systray.AddSeparator()
	t.mAbout = systray.AddMenuItem("About", "About xscribe")
	t.mQuit = systray.AddMenuItem("Quit", "Quit xscribe")

	go func() {
		for {
			select {
			case <-t.mStartStop.ClickedCh:
				if t.onStartStop != nil {
					t.onStartStop()
				}
			case <-t.mAbout.ClickedCh:
				if t.onAbout != nil {
					t.onAbout()
				}
			case <-t.mQuit.ClickedCh:
				if t.onQuit != nil {
					t.onQuit()
				}
				return
			}
		}
	}()
}

func (t *Tray) watchModeItem(mode string, item *systray.MenuItem) {
	for range item.ClickedCh {
		if t.onModePick != nil {
			t.onModePick(mode)
		}
	}
}

func (t *Tray) onExit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.isRunning = false
}
