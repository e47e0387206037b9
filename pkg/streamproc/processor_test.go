package streamproc

import (
	"strings"
	"testing"

	"github.com/jeff-barlow-spady/xscribe/pkg/injector"
)

// recorder is a test Injector that records every backspace/emit call so
// assertions can check both the final rendered text and the exact
// keystroke sequence that produced it.
type recorder struct {
	screen []rune
	calls  []string
}

func (r *recorder) Backspace(n int) {
	if n < 0 {
		panic("negative backspace")
	}
	r.calls = append(r.calls, "bs:"+itoa(n))
	if n > len(r.screen) {
		n = len(r.screen)
	}
	r.screen = r.screen[:len(r.screen)-n]
}

func (r *recorder) Emit(text string) {
	r.calls = append(r.calls, "emit:"+text)
	r.screen = append(r.screen, []rune(text)...)
}

func (r *recorder) text() string {
	return string(r.screen)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

var _ injector.Injector = (*recorder)(nil)

func TestSingleChunkSingleSegment(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>hello</1>")
	p.EndStream()
	if got := p.Rendered(); got != "hello" {
		t.Fatalf("rendered = %q, want %q", got, "hello")
	}
	if got := rec.text(); got != "hello" {
		t.Fatalf("screen = %q, want %q", got, "hello")
	}
}

func TestTagSplitAcrossChunks(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>hel")
	p.ProcessChunk("lo</1")
	p.ProcessChunk(">")
	p.EndStream()
	if got := p.Rendered(); got != "hello" {
		t.Fatalf("rendered = %q, want %q", got, "hello")
	}
}

func TestSegmentGrowsInPlace(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>hel</1>")
	p.ProcessChunk("<1>hello</1>")
	p.EndStream()
	if got := p.Rendered(); got != "hello" {
		t.Fatalf("rendered = %q, want %q", got, "hello")
	}
	if got := rec.text(); got != "hello" {
		t.Fatalf("screen = %q, want %q", got, "hello")
	}
}

func TestMultipleSegmentsAppendInOrder(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>Hello, </1><2>world.</2>")
	p.EndStream()
	if got := p.Rendered(); got != "Hello, world." {
		t.Fatalf("rendered = %q", got)
	}
	if got := rec.text(); got != "Hello, world." {
		t.Fatalf("screen = %q", got)
	}
}

// TestRevisionOfEarlierSegmentRewindsAndReplays covers the backspace +
// gap-fill contract: revising an already-emitted earlier segment forces a
// backspace back to its start, then a full replay of everything from
// there forward — even segments that did not themselves change.
func TestRevisionOfEarlierSegmentRewindsAndReplays(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>Hello, </1><2>world.</2>")
	if got := rec.text(); got != "Hello, world." {
		t.Fatalf("precondition: screen = %q", got)
	}
	p.ProcessChunk("<1>Hi, </1>")
	p.EndStream()
	want := "Hi, world."
	if got := p.Rendered(); got != want {
		t.Fatalf("rendered = %q, want %q", got, want)
	}
	if got := rec.text(); got != want {
		t.Fatalf("screen = %q, want %q", got, want)
	}
}

// TestEmptyBodyIsTombstone: a segment that the model revises down to an
// empty string must vanish from the render, not retain stale text.
func TestEmptyBodyIsTombstone(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>Hello</1><2> world</2>")
	p.ProcessChunk("<2></2>")
	p.EndStream()
	if got := p.Rendered(); got != "Hello" {
		t.Fatalf("rendered = %q, want %q", got, "Hello")
	}
	if got := rec.text(); got != "Hello" {
		t.Fatalf("screen = %q, want %q", got, "Hello")
	}
}

// TestOnlyOneBackspacePassPerBatchUnlessRewound: within a single batch,
// forward-only growth of new, higher-numbered segments must not trigger
// a redundant backspace once the batch's first one has already happened.
func TestOnlyOneBackspacePassPerBatchUnlessRewound(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>a</1>")
	p.ProcessChunk("<2>b</2>")
	p.ProcessChunk("<3>c</3>")
	p.EndStream()

	backspaces := 0
	for _, c := range rec.calls {
		if strings.HasPrefix(c, "bs:") && c != "bs:0" {
			backspaces++
		}
	}
	if backspaces != 0 {
		t.Fatalf("expected zero backspaces for pure forward growth, got %d (calls=%v)", backspaces, rec.calls)
	}
	if got := p.Rendered(); got != "abc" {
		t.Fatalf("rendered = %q", got)
	}
}

func TestResetClearsStateBetweenTurns(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>leftover</1>")
	p.EndStream()
	p.Reset()
	rec.screen = nil
	p.ProcessChunk("<1>fresh</1>")
	p.EndStream()
	if got := p.Rendered(); got != "fresh" {
		t.Fatalf("rendered = %q, want %q", got, "fresh")
	}
}

func TestIncompleteTrailingTagDiscardedAtEndOfStream(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>done</1><2>never closed")
	p.EndStream()
	if got := p.Rendered(); got != "done" {
		t.Fatalf("rendered = %q, want %q", got, "done")
	}
}

func TestXMLEntitiesAreUnescaped(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>Tom &amp; Jerry &lt;3 &quot;friends&quot;</1>")
	p.EndStream()
	want := `Tom & Jerry <3 "friends"`
	if got := p.Rendered(); got != want {
		t.Fatalf("rendered = %q, want %q", got, want)
	}
}

func TestMismatchedCloseTagIDIsNotConsumed(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<1>partial</2>")
	p.EndStream()
	// </2> never matches <1>'s open tag, so nothing ever completes; the
	// stream ends with the buffer discarded rather than a spurious render.
	if got := p.Rendered(); got != "" {
		t.Fatalf("rendered = %q, want empty", got)
	}
}

// TestGapFillBoundedByIDNotByStoreMax: mid-batch gap-fill must stop at the
// update's own id, not silently race ahead through whatever the store
// already holds beyond it — those trailing segments are not yet known to
// be final for this batch and are only flushed once, at end_stream.
func TestGapFillBoundedByIDNotByStoreMax(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.ProcessChunk("<10>The </10><20>quick </20><30>brown </30><40>fox </40>")
	rec.calls = nil

	p.ProcessChunk("<20>fast </20>")
	p.ProcessChunk("<40>dog </40>")
	p.EndStream()

	want := []string{"bs:16", "emit:fast ", "emit:brown ", "emit:dog "}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", rec.calls, want)
		}
	}

	const final = "The fast brown dog "
	if got := p.Rendered(); got != final {
		t.Fatalf("rendered = %q, want %q", got, final)
	}
	if got := rec.text(); got != final {
		t.Fatalf("screen = %q, want %q", got, final)
	}
}

func TestScreenMatchesEmittedPrefixPerChunkAndFullRenderAtEnd(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	chunks := []string{
		"<1>The quick</1>",
		"<2> brown fox</2>",
		"<1>A quick</1>",
		"<3> jumps.</3>",
		"<2> red fox</2>",
	}
	for _, c := range chunks {
		p.ProcessChunk(c)
		if got, want := rec.text(), p.store.RenderPrefixUntil(p.store.LastEmittedID+1); got != want {
			t.Fatalf("after chunk %q: screen = %q, store render through last emitted segment = %q", c, got, want)
		}
	}
	p.EndStream()
	if got, want := rec.text(), p.Rendered(); got != want {
		t.Fatalf("final: screen = %q, store render = %q", got, want)
	}
}
