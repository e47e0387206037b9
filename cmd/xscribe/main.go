// Package main is the entry point for xscribe, a push-to-talk voice
// dictation daemon: hold a hotkey, speak, and the model's streamed reply
// is typed into whatever text field has focus.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/jeff-barlow-spady/xscribe/config"
	"github.com/jeff-barlow-spady/xscribe/pkg/audio"
	"github.com/jeff-barlow-spady/xscribe/pkg/coordinator"
	"github.com/jeff-barlow-spady/xscribe/pkg/hotkey"
	"github.com/jeff-barlow-spady/xscribe/pkg/injector"
	"github.com/jeff-barlow-spady/xscribe/pkg/instructions"
	"github.com/jeff-barlow-spady/xscribe/pkg/localstt"
	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
	"github.com/jeff-barlow-spady/xscribe/pkg/modelclient"
	"github.com/jeff-barlow-spady/xscribe/pkg/router"
	"github.com/jeff-barlow-spady/xscribe/pkg/scheduler"
	"github.com/jeff-barlow-spady/xscribe/pkg/session"
	"github.com/jeff-barlow-spady/xscribe/pkg/streamproc"
	"github.com/jeff-barlow-spady/xscribe/pkg/trayui"
	"github.com/jeff-barlow-spady/xscribe/pkg/tui"
)

// App wires every package's runtime pieces together and is the
// router.Controller and coordinator.ModeSwitcher implementation driving
// the whole recording lifecycle.
type App struct {
	cfg      *config.Config
	composer *instructions.Composer
	provider modelclient.Provider
	localTr  localstt.Transcriber // nil when the provider accepts raw audio

	recorder *audio.Recorder
	proc     *streamproc.Processor
	coord    *coordinator.Coordinator
	sched    *scheduler.Scheduler
	rtr      *router.Router
	tray     *trayui.Tray
	statusUI *tui.StatusUI

	modeMu sync.Mutex
	mode   string
	modes  []string

	recMu     sync.Mutex
	recording *session.Recording
	samples   []float32
}

// New builds an App from cfg. The caller still needs to call Start.
func New(cfg *config.Config) (*App, error) {
	composer := instructions.New()
	modes, err := composer.AvailableModes()
	if err != nil {
		return nil, fmt.Errorf("discover instruction modes: %w", err)
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("no instruction modes found")
	}

	if appDir, err := config.GetAppDir(); err == nil {
		userModes, err := instructions.LoadUserModes(filepath.Join(appDir, "modes.yaml"))
		if err != nil {
			logger.Warning(logger.CategoryApp, "failed to load user modes: %v", err)
		} else if len(userModes) > 0 {
			if err := composer.RegisterUserModes(userModes); err != nil {
				logger.Warning(logger.CategoryApp, "failed to register user modes: %v", err)
			} else {
				modes, _ = composer.AvailableModes()
			}
		}
	}
	mode := cfg.Mode
	if !containsString(modes, mode) {
		mode = modes[0]
	}

	provider, localTr, err := buildProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("build model provider: %w", err)
	}

	recorder, err := audio.NewRecorder(audio.Config{
		SampleRate:      float64(cfg.AudioSampleRate),
		Channels:        cfg.AudioChannels,
		FramesPerBuffer: cfg.AudioBufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init audio recorder: %w", err)
	}

	inj := injector.New(cfg.KeystrokeRateHz)
	if cfg.TestMode {
		inj = injector.NoOp{}
	}
	proc := streamproc.New(inj)

	app := &App{
		cfg:      cfg,
		composer: composer,
		provider: provider,
		localTr:  localTr,
		recorder: recorder,
		proc:     proc,
		mode:     mode,
		modes:    modes,
	}

	app.coord = coordinator.New(proc, app, cfg.ResetStateEachResponse)
	app.sched = scheduler.New(app.coord, app.onTurnComplete)

	app.rtr = router.New(app, router.Config{
		Trigger:     hotkey.Config{Modifiers: hotkeyModifiers(cfg), Key: cfg.HotKeyKey},
		SIGUSR1Mode: session.Mode(cfg.SIGUSR1Mode),
		SIGUSR2Mode: session.Mode(cfg.SIGUSR2Mode),
		OnInterrupt: app.shutdown,
	})

	app.tray = trayui.New(modes)
	app.tray.SetCallbacks(app.onTrayStartStop, app.onTrayModePick, app.onTrayAbout, app.onTrayQuit)

	if cfg.TerminalMode {
		app.statusUI = tui.NewStatusUI(hotkeyString(cfg))
		app.statusUI.SetMode(mode)
	}

	return app, nil
}

func hotkeyModifiers(cfg *config.Config) []string {
	var mods []string
	if cfg.HotKeyCtrl {
		mods = append(mods, "ctrl")
	}
	if cfg.HotKeyShift {
		mods = append(mods, "shift")
	}
	if cfg.HotKeyAlt {
		mods = append(mods, "alt")
	}
	return mods
}

func hotkeyString(cfg *config.Config) string {
	s := ""
	for _, m := range hotkeyModifiers(cfg) {
		s += m + "+"
	}
	return s + cfg.HotKeyKey
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// buildProvider returns the configured modelclient.Provider, plus a
// localstt.Transcriber when the provider has no native audio modality
// and recordings must be transcribed on-device first.
func buildProvider(cfg *config.Config) (modelclient.Provider, localstt.Transcriber, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		p, err := modelclient.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil

	case config.ProviderAnthropic:
		p, err := modelclient.NewAnthropicProvider(cfg.AnthropicAPIKey, sdk.Model(cfg.AnthropicModel), 4096)
		if err != nil {
			return nil, nil, err
		}
		sttCfg := localstt.DefaultConfig()
		if cfg.LocalSTTModelSize != "" {
			sttCfg.ModelSize = localstt.ModelSize(cfg.LocalSTTModelSize)
		}
		if cfg.LocalSTTModelPath != "" {
			sttCfg.ModelPath = cfg.LocalSTTModelPath
		}
		tr, err := localstt.New(sttCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("anthropic provider requires local transcription: %w", err)
		}
		return p, tr, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// SwitchMode implements coordinator.ModeSwitcher.
func (a *App) SwitchMode(name string) bool {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if !containsString(a.modes, name) {
		return false
	}
	a.mode = name
	a.updateModeDisplay(name)
	return true
}

func (a *App) currentMode() string {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) updateModeDisplay(mode string) {
	if a.statusUI != nil {
		a.statusUI.SetMode(mode)
	}
}

// StartRecording implements router.Controller.
func (a *App) StartRecording(origin session.Origin, mode session.Mode) {
	if mode != "" && string(mode) != a.currentMode() {
		if a.SwitchMode(string(mode)) {
			a.coord.ResetAllState()
		} else {
			logger.Warning(logger.CategorySession, "ignoring start request for unknown mode %q", mode)
		}
	}

	rec := session.NewRecording(origin)

	a.recMu.Lock()
	a.samples = a.samples[:0]
	a.recording = &rec
	a.recMu.Unlock()

	if err := a.recorder.Start(a.onAudioChunk); err != nil {
		logger.Error(logger.CategoryAudio, "failed to start recording: %v", err)
		a.recMu.Lock()
		a.recording = nil
		a.recMu.Unlock()
		return
	}

	a.setRecordingState(true)
	logger.Info(logger.CategorySession, "recording started (origin=%s, mode=%s)", origin, a.currentMode())
}

// StopRecording implements router.Controller: it ends capture and, if the
// recording passes validation, hands it to the model provider.
func (a *App) StopRecording() {
	rec, samples, ok := a.endRecording()
	if !ok {
		return
	}

	duration := time.Since(rec.StartedAt)
	if err := audio.Validate(audio.DefaultValidationConfig(), samples, float64(a.cfg.AudioSampleRate), duration); err != nil {
		logger.Debug(logger.CategorySession, "recording rejected: %v", err)
		return
	}

	a.dispatchTurn(rec, samples)
}

// AbortRecording implements router.Controller: it ends capture and
// discards whatever was captured without invoking the model.
func (a *App) AbortRecording() {
	if _, _, ok := a.endRecording(); ok {
		logger.Info(logger.CategorySession, "recording aborted")
	}
}

// CurrentRecording implements router.Controller.
func (a *App) CurrentRecording() (session.Recording, bool) {
	a.recMu.Lock()
	defer a.recMu.Unlock()
	if a.recording == nil {
		return session.Recording{}, false
	}
	return *a.recording, true
}

func (a *App) endRecording() (session.Recording, []float32, bool) {
	a.recMu.Lock()
	if a.recording == nil {
		a.recMu.Unlock()
		return session.Recording{}, nil, false
	}
	rec := *a.recording
	samples := make([]float32, len(a.samples))
	copy(samples, a.samples)
	a.recording = nil
	a.recMu.Unlock()

	if err := a.recorder.Stop(); err != nil {
		logger.Error(logger.CategoryAudio, "failed to stop recording: %v", err)
	}
	a.setRecordingState(false)
	return rec, samples, true
}

func (a *App) onAudioChunk(samples []float32) {
	a.recMu.Lock()
	a.samples = append(a.samples, samples...)
	a.recMu.Unlock()

	level := audio.CalculateLevel(samples)
	if a.statusUI != nil {
		a.statusUI.UpdateAudioLevel(level)
	}
}

func (a *App) setRecordingState(recording bool) {
	a.tray.SetRecordingState(recording)
	if a.statusUI != nil {
		a.statusUI.SetRecordingState(recording)
	}
}

// dispatchTurn builds the model request for one finished recording and
// streams its reply through the scheduler.
func (a *App) dispatchTurn(rec session.Recording, samples []float32) {
	mode := a.currentMode()
	systemPrompt, err := a.composer.Compose(mode, string(a.cfg.Provider))
	if err != nil {
		logger.Error(logger.CategoryModel, "failed to compose instructions for mode %q: %v", mode, err)
		return
	}

	snapshot := modelclient.ConversationSnapshot{
		XMLMarkup:    a.coord.CurrentXML(),
		RenderedText: a.coord.CurrentText(),
		SampleRateHz: a.cfg.AudioSampleRate,
	}

	req := modelclient.Request{
		SystemPrompt: systemPrompt,
		Snapshot:     snapshot,
	}

	if a.localTr != nil {
		text, err := a.localTr.Transcribe(samples)
		if err != nil {
			logger.Error(logger.CategoryLocalSTT, "local transcription failed: %v", err)
			return
		}
		req.Text = text
	} else {
		wavBytes, err := audio.EncodeWAV(samples, a.cfg.AudioSampleRate)
		if err != nil {
			logger.Error(logger.CategoryAudio, "failed to encode recording: %v", err)
			return
		}
		req.Audio = &modelclient.AudioInput{
			PCM:          wavBytes,
			SampleRateHz: a.cfg.AudioSampleRate,
			MimeType:     "audio/wav",
		}
	}

	ps := session.NewProcessing(rec, session.Mode(mode), snapshot)
	a.sched.Submit(ps)
	go a.runProvider(ps, req)
}

func (a *App) runProvider(ps *session.Processing, req modelclient.Request) {
	ctx := context.Background()
	stream, err := a.provider.Stream(ctx, req)
	if err != nil {
		logger.Error(logger.CategoryModel, "model stream failed to start: %v", err)
		ps.Fail(err)
		return
	}
	defer stream.Close()

	var received strings.Builder
	for {
		chunk, err := stream.Recv()
		if err != nil {
			if err != io.EOF {
				logger.Error(logger.CategoryModel, "model stream ended in error: %v", err)
				ps.Fail(err)
				return
			}
			ps.Complete()
			return
		}
		ps.Push(chunk.Text)
		if a.cfg.EarlyTerminateOnXMLClose {
			received.WriteString(chunk.Text)
			if strings.Contains(received.String(), "</xml>") {
				ps.Complete()
				return
			}
		}
	}
}

func (a *App) onTurnComplete(rec session.Recording, text string) {
	if a.statusUI != nil {
		a.statusUI.UpdateText(text)
	}
	logger.Info(logger.CategorySession, "turn complete (origin=%s), %d chars rendered", rec.Origin, len(text))

	if a.cfg.Once {
		a.shutdown()
	}
}

func (a *App) onTrayStartStop() {
	if _, active := a.CurrentRecording(); active {
		a.rtr.StopFromTray()
	} else {
		a.rtr.StartFromTray()
	}
}

func (a *App) onTrayModePick(mode string) {
	if a.SwitchMode(mode) {
		a.coord.ResetAllState()
		logger.Info(logger.CategorySession, "mode switched to %q from tray", mode)
	}
}

func (a *App) onTrayAbout() {
	logger.Info(logger.CategoryApp, "xscribe: push-to-talk voice dictation")
}

func (a *App) onTrayQuit() {
	a.shutdown()
}

var shutdownOnce sync.Once

func (a *App) shutdown() {
	shutdownOnce.Do(func() {
		logger.Info(logger.CategoryApp, "shutting down")
		a.rtr.Stop()
		a.sched.Stop()
		a.tray.Stop()
		if a.statusUI != nil {
			a.statusUI.Stop()
		}
		if a.localTr != nil {
			a.localTr.Close()
		}
		a.recorder.Terminate()
		os.Exit(0)
	})
}

// Start launches the router, scheduler, tray, and (if enabled) terminal UI.
func (a *App) Start() error {
	a.sched.Start()
	if err := a.rtr.Start(); err != nil {
		return fmt.Errorf("start input router: %w", err)
	}
	a.tray.Start()

	if a.statusUI != nil {
		go func() {
			for range a.statusUI.ToggleRequests() {
				a.onTrayStartStop()
			}
		}()
		a.statusUI.Start()
	}

	return nil
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	once := flag.Bool("once", false, "process exactly one recording then exit")
	terminal := flag.Bool("terminal", false, "show the terminal status UI instead of the system tray only")
	provider := flag.String("provider", "", "override the configured model provider (anthropic|openai)")
	flag.Parse()

	logger.Initialize()
	if *debug {
		logger.SetLevel(logger.LevelDebug)
	}
	logger.Info(logger.CategoryApp, "starting xscribe")

	if err := config.LoadConfig(); err != nil {
		logger.Warning(logger.CategoryApp, "failed to load config, using defaults: %v", err)
	}
	cfg := config.Current
	cfg.Once = cfg.Once || *once
	cfg.TerminalMode = cfg.TerminalMode || *terminal
	if *provider != "" {
		cfg.Provider = config.Provider(*provider)
	}
	if cfg.AnthropicAPIKey == "" {
		cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	app, err := New(cfg)
	if err != nil {
		logger.Error(logger.CategoryApp, "failed to initialize application: %v", err)
		os.Exit(1)
	}
	cfg.AvailableModes = app.modes

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		app.shutdown()
	}()

	if err := app.Start(); err != nil {
		logger.Error(logger.CategoryApp, "failed to start application: %v", err)
		os.Exit(1)
	}

	select {}
}
