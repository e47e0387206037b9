// Package router is the input coordinator: it translates keyboard
// trigger events, POSIX signals, and system tray requests into start/
// stop/abort calls on a recording Controller, exactly one of which is
// ever active at a time.
package router

import (
	"os/signal"

	"github.com/jeff-barlow-spady/xscribe/pkg/hotkey"
	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
	"github.com/jeff-barlow-spady/xscribe/pkg/session"
)

type signalAction int

const (
	actionNone signalAction = iota
	actionModeSwitch1
	actionModeSwitch2
	actionStopRecording
	actionInterrupt
)

// Controller is the recording lifecycle the router drives. Exactly one
// of Start/Stop/Abort is ever in flight per recording.
type Controller interface {
	StartRecording(origin session.Origin, mode session.Mode)
	StopRecording()
	AbortRecording()
	CurrentRecording() (session.Recording, bool)
}

// Config holds the router's static wiring: the keyboard trigger
// combination and which mode each POSIX mode-switch signal selects.
type Config struct {
	Trigger     hotkey.Config
	SIGUSR1Mode session.Mode
	SIGUSR2Mode session.Mode
	OnInterrupt func()
}

// Router owns the keyboard hook and signal listener goroutines. Not safe
// for concurrent Start/Stop calls.
type Router struct {
	ctrl Controller
	cfg  Config
	hk   *hotkey.Detector

	stopSignals chan struct{}
}

// New returns a Router driving ctrl.
func New(ctrl Controller, cfg Config) *Router {
	return &Router{
		ctrl:        ctrl,
		cfg:         cfg,
		hk:          hotkey.NewDetector(cfg.Trigger),
		stopSignals: make(chan struct{}),
	}
}

// Start begins listening for keyboard, signal, and (implicitly, via
// StartFromTray/StopFromTray) tray input.
func (r *Router) Start() error {
	if err := r.hk.Start(hotkey.Callbacks{
		OnTriggerDown: r.onTriggerDown,
		OnTriggerUp:   r.onTriggerUp,
		OnOtherKey:    r.onOtherKey,
	}); err != nil {
		return err
	}
	go r.listenSignals()
	return nil
}

// Stop tears down the keyboard hook and signal listener.
func (r *Router) Stop() {
	r.hk.Stop()
	close(r.stopSignals)
}

func (r *Router) onTriggerDown() {
	if _, active := r.ctrl.CurrentRecording(); active {
		return
	}
	logger.Debug(logger.CategorySession, "trigger key down, starting keyboard recording")
	r.ctrl.StartRecording(session.OriginKeyboard, "")
}

func (r *Router) onTriggerUp() {
	rec, active := r.ctrl.CurrentRecording()
	if !active || rec.Origin != session.OriginKeyboard {
		return
	}
	logger.Debug(logger.CategorySession, "trigger key up, stopping keyboard recording")
	r.ctrl.StopRecording()
}

func (r *Router) onOtherKey() {
	rec, active := r.ctrl.CurrentRecording()
	if !active || !rec.ShouldAbortOnKeystroke() {
		return
	}
	logger.Debug(logger.CategorySession, "other key pressed during keyboard recording, aborting")
	r.ctrl.AbortRecording()
}

// StartFromTray starts a tray-origin recording. Safe to call from the
// tray UI's own goroutine.
func (r *Router) StartFromTray() {
	if _, active := r.ctrl.CurrentRecording(); active {
		return
	}
	r.ctrl.StartRecording(session.OriginTray, "")
}

// StopFromTray stops whatever recording is active, if any.
func (r *Router) StopFromTray() {
	if _, active := r.ctrl.CurrentRecording(); active {
		r.ctrl.StopRecording()
	}
}

func (r *Router) listenSignals() {
	sigCh, classify := registerSignals()
	for {
		select {
		case <-r.stopSignals:
			signal.Stop(sigCh)
			return
		case sig := <-sigCh:
			r.handleSignal(classify(sig))
		}
	}
}

func (r *Router) handleSignal(action signalAction) {
	switch action {
	case actionModeSwitch1:
		logger.Info(logger.CategorySession, "signal requested mode %q", r.cfg.SIGUSR1Mode)
		r.ctrl.StartRecording(session.OriginSignal, r.cfg.SIGUSR1Mode)
	case actionModeSwitch2:
		logger.Info(logger.CategorySession, "signal requested mode %q", r.cfg.SIGUSR2Mode)
		r.ctrl.StartRecording(session.OriginSignal, r.cfg.SIGUSR2Mode)
	case actionStopRecording:
		if _, active := r.ctrl.CurrentRecording(); active {
			r.ctrl.StopRecording()
		}
	case actionInterrupt:
		logger.Info(logger.CategorySession, "interrupt received, shutting down")
		if r.cfg.OnInterrupt != nil {
			r.cfg.OnInterrupt()
		}
	}
}
