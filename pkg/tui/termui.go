// Package tui implements the terminal status view: a live look at
// recording state, active mode, and the text xscribe is currently
// injecting, useful when running headless or debugging the injector.
package tui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const banner = `
 ██╗  ██╗███████╗ ██████╗██████╗ ██╗██████╗ ███████╗
 ╚██╗██╔╝██╔════╝██╔════╝██╔══██╗██║██╔══██╗██╔════╝
  ╚███╔╝ ███████╗██║     ██████╔╝██║██████╔╝█████╗
  ██╔██╗ ╚════██║██║     ██╔══██╗██║██╔══██╗██╔══╝
 ██╔╝ ██╗███████║╚██████╗██║  ██║██║██████╔╝███████╗
 ╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝╚═════╝ ╚══════╝
           voice-to-keystrokes
`

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61E3FA")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(1, 2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A9B1D6"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ECE6A")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7768E"))

	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7AA2F7")).
			Padding(1, 2)

	logFrameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#A9B1D6")).
			Padding(0, 1)
)

// StatusModel is the bubbletea model backing the status view.
type StatusModel struct {
	mu sync.Mutex

	spinner     spinner.Model
	audioLevels []float32
	text        string
	mode        string
	isRecording bool
	status      string
	errMsg      string
	width       int
	height      int
	ready       bool
	hotkeyStr   string

	logLines    []string
	logScroll   int
	maxLogLines int
	maxLogHist  int

	toggleCh chan struct{}
}

// NewStatusModel returns a model bound to hotkeyStr, the human-readable
// description of the push-to-talk trigger shown in the help line.
func NewStatusModel(hotkeyStr string) StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A"))

	return StatusModel{
		spinner:     s,
		audioLevels: make([]float32, 20),
		hotkeyStr:   hotkeyStr,
		status:      "idle",
		maxLogLines: 10,
		maxLogHist:  500,
		toggleCh:    make(chan struct{}, 1),
	}
}

func (m *StatusModel) Init() tea.Cmd {
	return tea.Batch(spinner.Tick, tea.EnterAltScreen, tickEvery(time.Second/10))
}

type tickMsg time.Time

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tickMsg:
		return m, tickEvery(time.Second / 10)
	}
	return m, nil
}

func (m *StatusModel) handleKey(key string) tea.Cmd {
	switch key {
	case "ctrl+c", "q":
		return tea.Quit
	case " ", "r":
		select {
		case m.toggleCh <- struct{}{}:
		default:
		}
	case "up":
		if m.logScroll < len(m.logLines)-m.maxLogLines {
			m.logScroll++
		}
	case "down":
		if m.logScroll > 0 {
			m.logScroll--
		}
	case "pgup":
		m.logScroll = clamp(m.logScroll+m.maxLogLines, 0, maxScroll(len(m.logLines), m.maxLogLines))
	case "pgdown":
		m.logScroll = clamp(m.logScroll-m.maxLogLines, 0, maxScroll(len(m.logLines), m.maxLogLines))
	case "home":
		m.logScroll = 0
	case "end":
		m.logScroll = maxScroll(len(m.logLines), m.maxLogLines)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxScroll(total, pageSize int) int {
	if total-pageSize < 0 {
		return 0
	}
	return total - pageSize
}

// UpdateText sets the currently rendered dictation text.
func (m *StatusModel) UpdateText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

// UpdateAudioLevel pushes a new mic level sample into the display's
// rolling history.
func (m *StatusModel) UpdateAudioLevel(level float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.audioLevels[1:], m.audioLevels)
	m.audioLevels[0] = level
}

// SetRecordingState updates whether a recording is currently active.
func (m *StatusModel) SetRecordingState(recording bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRecording = recording
	if recording {
		m.status = "recording"
	} else {
		m.status = "idle"
	}
}

// SetMode updates the active instruction mode shown in the status line.
func (m *StatusModel) SetMode(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
}

// SetError sets the most recent error message, if any.
func (m *StatusModel) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = err
}

// AddLogLine appends a line to the scrollback.
func (m *StatusModel) AddLogLine(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logLines = append([]string{line}, m.logLines...)
	if len(m.logLines) > m.maxLogHist {
		m.logLines = m.logLines[:m.maxLogHist]
	}
}

func (m *StatusModel) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ready {
		return "initializing..."
	}

	var s strings.Builder
	s.WriteString(bannerStyle.Render(banner))

	spin := ""
	if m.isRecording {
		spin = m.spinner.View() + " "
	}
	s.WriteString("\n" + statusStyle.Render(fmt.Sprintf("%sstatus: %s  mode: %s", spin, m.status, m.mode)))

	help := fmt.Sprintf("trigger: %s | space/r toggles | q quits | ↑/↓ scroll logs", m.hotkeyStr)
	s.WriteString("\n" + infoStyle.Render(help))

	s.WriteString("\n\n" + renderAudioLevels(m.audioLevels, m.isRecording))

	text := m.text
	if text == "" {
		text = "(nothing dictated yet)"
	}
	s.WriteString("\n\n" + frameStyle.Width(m.width-4).Render(text))

	if m.errMsg != "" {
		s.WriteString("\n\n" + errorStyle.Render("error: "+m.errMsg))
	}

	if len(m.logLines) > 0 {
		s.WriteString("\n\n" + logFrameStyle.Render(m.renderLogWindow()))
	}

	return s.String()
}

func (m *StatusModel) renderLogWindow() string {
	var b strings.Builder
	if m.logScroll > 0 {
		pages := (len(m.logLines)-1)/m.maxLogLines + 1
		fmt.Fprintf(&b, "activity (page %d/%d):\n", m.logScroll+1, pages)
	} else {
		b.WriteString("activity:\n")
	}

	start := m.logScroll
	end := clamp(start+m.maxLogLines, start, len(m.logLines))
	if start > 0 {
		b.WriteString("↑ more above ↑\n")
	}
	for i, line := range m.logLines[start:end] {
		marker := "• "
		if i == 0 && start == 0 {
			marker = "→ "
		}
		b.WriteString(marker + line + "\n")
	}
	if end < len(m.logLines) {
		b.WriteString("↓ more below ↓\n")
	}
	return b.String()
}

func renderAudioLevels(levels []float32, recording bool) string {
	base := "#555555"
	if recording {
		base = "#7AA2F7"
	}

	const width = 30
	var s strings.Builder
	s.WriteString("level: [")
	for i := 0; i < width; i++ {
		threshold := 1 - float32(i)/float32(width)
		level := levels[i%len(levels)]

		char, color := " ", base
		if level >= threshold {
			char, color = "█", colorForLevel(level)
		}
		s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(char))
	}
	s.WriteString("]")
	return s.String()
}

func colorForLevel(level float32) string {
	switch {
	case level > 0.8:
		return "#F7768E"
	case level > 0.5:
		return "#FF9E64"
	case level > 0.3:
		return "#E0AF68"
	default:
		return "#9ECE6A"
	}
}

// StatusUI runs the status view as a bubbletea program.
type StatusUI struct {
	program  *tea.Program
	model    *StatusModel
	logCh    chan string
	toggleCh chan struct{}
}

// NewStatusUI constructs the program; call Start or RunBlocking to run it.
func NewStatusUI(hotkeyStr string) *StatusUI {
	model := NewStatusModel(hotkeyStr)
	ui := &StatusUI{
		program:  tea.NewProgram(&model),
		model:    &model,
		logCh:    make(chan string, 16),
		toggleCh: model.toggleCh,
	}

	go func() {
		for line := range ui.logCh {
			ui.model.AddLogLine(line)
			ui.program.Send(tea.Tick(0, func(time.Time) tea.Msg { return nil }))
		}
	}()

	return ui
}

// Start runs the UI in a background goroutine.
func (u *StatusUI) Start() {
	go func() {
		if err := u.program.Start(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			u.AddLog("status UI error: " + err.Error())
		}
	}()
}

// RunBlocking runs the UI on the calling goroutine.
func (u *StatusUI) RunBlocking() error {
	if err := u.program.Start(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// Stop terminates the UI.
func (u *StatusUI) Stop() { u.program.Quit() }

// UpdateText sets the currently rendered dictation text.
func (u *StatusUI) UpdateText(text string) { u.model.UpdateText(text) }

// UpdateAudioLevel pushes a new mic level sample.
func (u *StatusUI) UpdateAudioLevel(level float32) { u.model.UpdateAudioLevel(level) }

// SetRecordingState updates whether a recording is active.
func (u *StatusUI) SetRecordingState(recording bool) { u.model.SetRecordingState(recording) }

// SetMode updates the displayed active mode.
func (u *StatusUI) SetMode(mode string) { u.model.SetMode(mode) }

// SetError sets the most recent error message.
func (u *StatusUI) SetError(err string) { u.model.SetError(err) }

// AddLog appends a line to the scrollback, dropping it if the internal
// channel is full rather than blocking the caller.
func (u *StatusUI) AddLog(line string) {
	select {
	case u.logCh <- line:
	default:
	}
}

// ToggleRequests returns the channel that receives a value each time the
// user presses space or 'r' to toggle recording from the terminal.
func (u *StatusUI) ToggleRequests() <-chan struct{} { return u.toggleCh }

// LogSink is anything that can receive a single log line.
type LogSink interface {
	AddLog(line string)
}

// LogWriter is an io.Writer that splits written bytes into lines and
// forwards each complete line to a LogSink — used to let pkg/logger
// feed this status view without a direct dependency between them.
type LogWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	sink LogSink
}

func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.buf.Write(p)
	if w.sink == nil {
		return n, err
	}

	data := w.buf.String()
	lines := strings.Split(data, "\n")
	if len(lines) <= 1 {
		return n, err
	}

	for _, line := range lines[:len(lines)-1] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			w.sink.AddLog(trimmed)
		}
	}

	w.buf.Reset()
	if last := lines[len(lines)-1]; last != "" {
		w.buf.WriteString(last)
	}
	return n, err
}

// SetSink sets the LogSink lines are forwarded to.
func (w *LogWriter) SetSink(sink LogSink) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sink = sink
}
