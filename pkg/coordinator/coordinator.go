// Package coordinator sits between the raw text chunks a model streams
// back and the numbered-segment stream processor: it watches for the
// model's control vocabulary — <mode>name</mode> and <reset/> — embedded
// in the same stream, and only ever forwards the content inside <update>
// onward to pkg/streamproc.
package coordinator

import (
	"regexp"
	"strings"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
	"github.com/jeff-barlow-spady/xscribe/pkg/streamproc"
)

// modeTagPattern has no backreference, so the standard library's RE2
// engine handles it fine — unlike the numbered segment tags in
// pkg/streamproc, which need the hand-rolled scanner.
var modeTagPattern = regexp.MustCompile(`<mode>(\w+)</mode>`)

const updateOpenTag = "<update>"

// ModeSwitcher validates and applies a mode change requested mid-stream.
// It returns false (and leaves the current mode unchanged) if name is not
// a recognized mode.
type ModeSwitcher interface {
	SwitchMode(name string) bool
}

// Coordinator tracks one response's streaming state: the raw buffer used
// to detect control tags, and the position already forwarded to the
// segment processor so each chunk only streams new content.
type Coordinator struct {
	proc *streamproc.Processor
	mode ModeSwitcher

	resetEachResponse bool

	buf           string
	updateSeen    bool
	lastUpdatePos int
}

// New returns a Coordinator driving proc. mode may be nil, in which case
// <mode> tags are logged and ignored. resetEachResponse mirrors the
// config flag that clears all segment state after every completed turn.
func New(proc *streamproc.Processor, mode ModeSwitcher, resetEachResponse bool) *Coordinator {
	return &Coordinator{
		proc:              proc,
		mode:              mode,
		resetEachResponse: resetEachResponse,
	}
}

// ResetStreamingState clears this response's buffer/position tracking,
// called once at the start of every new streaming response.
func (c *Coordinator) ResetStreamingState() {
	c.buf = ""
	c.updateSeen = false
	c.lastUpdatePos = 0
	if c.resetEachResponse {
		c.proc.Reset()
	}
}

// ResetAllState clears both the segment processor's rendered state and
// this response's streaming bookkeeping — used on an explicit <reset/>
// from the model or a mode switch.
func (c *Coordinator) ResetAllState() {
	c.proc.Reset()
	c.ResetStreamingState()
}

// ProcessStreamingChunk feeds one raw chunk of the model's reply through
// control-tag detection before handing any <update> content to the
// segment processor.
func (c *Coordinator) ProcessStreamingChunk(chunk string) {
	combined := c.buf + chunk
	if strings.Contains(combined, "<mode>") {
		if m := modeTagPattern.FindStringSubmatch(combined); m != nil {
			newMode := m[1]
			if c.handleModeChange(newMode) {
				c.buf = ""
				c.updateSeen = false
				c.lastUpdatePos = 0
				return
			}
		}
	}

	c.buf = combined

	if idx := strings.LastIndex(c.buf, "<reset"); idx != -1 {
		if end := strings.IndexByte(c.buf[idx:], '>'); end != -1 {
			remainder := c.buf[idx+end+1:]
			c.ResetAllState()
			c.buf = remainder
		}
	}

	if strings.Contains(c.buf, updateOpenTag) {
		if !c.updateSeen {
			c.updateSeen = true
			idx := strings.Index(c.buf, updateOpenTag)
			c.lastUpdatePos = idx + len(updateOpenTag)
		}
		if c.lastUpdatePos < len(c.buf) {
			newContent := c.buf[c.lastUpdatePos:]
			if newContent != "" {
				c.proc.ProcessChunk(newContent)
				c.lastUpdatePos = len(c.buf)
			}
		}
	}
}

func (c *Coordinator) handleModeChange(newMode string) bool {
	if c.mode == nil {
		logger.Warning(logger.CategorySession, "mode change to %q requested but no mode switcher configured", newMode)
		return false
	}
	if !c.mode.SwitchMode(newMode) {
		logger.Warning(logger.CategorySession, "rejected unrecognized mode %q", newMode)
		return false
	}
	c.ResetAllState()
	logger.Info(logger.CategorySession, "mode switched to %q", newMode)
	return true
}

// CompleteStream finalizes the response through the processor's
// EndStream: an unfinished tag left in its buffer is discarded, and
// segments past the last one emitted in this batch are typed out.
func (c *Coordinator) CompleteStream() {
	c.proc.EndStream()
}

// CurrentText returns the text the segment processor currently believes
// is on screen.
func (c *Coordinator) CurrentText() string {
	return c.proc.Rendered()
}

// CurrentXML returns the segment processor's current state as <id>body</id>
// markup, the xml_markup half of a ConversationSnapshot.
func (c *Coordinator) CurrentXML() string {
	return c.proc.XML()
}
