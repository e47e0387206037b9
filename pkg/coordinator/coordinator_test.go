package coordinator

import (
	"testing"

	"github.com/jeff-barlow-spady/xscribe/pkg/injector"
	"github.com/jeff-barlow-spady/xscribe/pkg/streamproc"
)

type fakeMode struct {
	valid   map[string]bool
	current string
}

func (f *fakeMode) SwitchMode(name string) bool {
	if !f.valid[name] {
		return false
	}
	f.current = name
	return true
}

func newTestCoordinator(mode ModeSwitcher, resetEachResponse bool) *Coordinator {
	proc := streamproc.New(injector.NoOp{})
	return New(proc, mode, resetEachResponse)
}

func TestUpdateTagGatesForwardedContent(t *testing.T) {
	c := newTestCoordinator(nil, false)
	c.ResetStreamingState()
	c.ProcessStreamingChunk("preamble text <update><1>hello</1>")
	c.ProcessStreamingChunk("<2> world</2></update>")
	c.CompleteStream()
	if got := c.CurrentText(); got != "hello world" {
		t.Fatalf("text = %q, want %q", got, "hello world")
	}
}

func TestContentBeforeUpdateTagNeverForwarded(t *testing.T) {
	c := newTestCoordinator(nil, false)
	c.ResetStreamingState()
	c.ProcessStreamingChunk("<1>leaked</1><update><1>kept</1></update>")
	c.CompleteStream()
	if got := c.CurrentText(); got != "kept" {
		t.Fatalf("text = %q, want %q", got, "kept")
	}
}

func TestModeSwitchResetsAndStopsContentProcessing(t *testing.T) {
	m := &fakeMode{valid: map[string]bool{"formal": true}}
	c := newTestCoordinator(m, false)
	c.ResetStreamingState()
	c.ProcessStreamingChunk("<update><1>first</1></update>")
	if got := c.CurrentText(); got != "first" {
		t.Fatalf("precondition text = %q", got)
	}
	c.ProcessStreamingChunk("<mode>formal</mode>")
	if m.current != "formal" {
		t.Fatalf("mode not applied, got %q", m.current)
	}
	if got := c.CurrentText(); got != "" {
		t.Fatalf("expected state cleared after mode switch, got %q", got)
	}
}

func TestUnrecognizedModeIsIgnored(t *testing.T) {
	m := &fakeMode{valid: map[string]bool{"formal": true}}
	c := newTestCoordinator(m, false)
	c.ResetStreamingState()
	c.ProcessStreamingChunk("<update><1>first</1></update>")
	c.ProcessStreamingChunk("<mode>bogus</mode>")
	if m.current != "" {
		t.Fatalf("unexpected mode applied: %q", m.current)
	}
}

func TestExplicitResetTagClearsState(t *testing.T) {
	c := newTestCoordinator(nil, false)
	c.ResetStreamingState()
	c.ProcessStreamingChunk("<update><1>before</1></update>")
	c.ProcessStreamingChunk("<reset/><update><1>after</1></update>")
	c.CompleteStream()
	if got := c.CurrentText(); got != "after" {
		t.Fatalf("text = %q, want %q", got, "after")
	}
}

func TestResetEachResponseClearsBetweenTurns(t *testing.T) {
	c := newTestCoordinator(nil, true)
	c.ResetStreamingState()
	c.ProcessStreamingChunk("<update><1>turn one</1></update>")
	c.CompleteStream()
	if got := c.CurrentText(); got != "turn one" {
		t.Fatalf("turn one text = %q", got)
	}

	c.ResetStreamingState()
	if got := c.CurrentText(); got != "" {
		t.Fatalf("expected cleared state at start of next turn, got %q", got)
	}
	c.ProcessStreamingChunk("<update><1>turn two</1></update>")
	c.CompleteStream()
	if got := c.CurrentText(); got != "turn two" {
		t.Fatalf("turn two text = %q", got)
	}
}
