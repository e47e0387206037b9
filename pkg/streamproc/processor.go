// Package streamproc incrementally parses a model's streamed XML reply —
// a sequence of <N>body</N> segment tags, chunk boundaries falling
// anywhere including mid-tag — and drives a keystroke injector so the
// user's focused text field mirrors the model's evolving output.
//
// Go's regexp package is RE2-based and cannot express the numbered tag's
// open/close backreference (<(\d+)>(.*?)</\1>), so matching is a
// hand-rolled scan (scanner.go) rather than regexp. Every other piece of
// this package follows the teacher's and the pack's idioms; this one is
// deliberately stdlib because no regexp engine in the ecosystem changes
// that constraint.
package streamproc

import (
	"strings"

	"github.com/jeff-barlow-spady/xscribe/pkg/injector"
	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
	"github.com/jeff-barlow-spady/xscribe/pkg/segment"
)

// Processor turns a stream of raw model-output chunks into keystrokes. It
// is not safe for concurrent use — the scheduler's single output worker is
// its only caller for the lifetime of one processing session.
type Processor struct {
	store *segment.Store
	inj   injector.Injector
	buf   []byte
}

// New returns a Processor that drives inj.
func New(inj injector.Injector) *Processor {
	return &Processor{
		store: segment.New(),
		inj:   inj,
	}
}

// Reset clears all accumulated buffer and segment state, starting a fresh
// conversation turn. Call it once per RecordingSession, not per chunk.
func (p *Processor) Reset() {
	p.buf = p.buf[:0]
	p.store.Reset(nil)
}

// ProcessChunk appends raw to the pending buffer, extracts every complete
// <N>body</N> tag now available, and applies each in order.
func (p *Processor) ProcessChunk(raw string) {
	p.buf = append(p.buf, raw...)
	tags, consumed := scanTags(p.buf)
	for _, t := range tags {
		p.processSingleUpdate(t.id, unescapeXMLEntities(t.body))
	}
	if consumed > 0 {
		p.buf = append(p.buf[:0], p.buf[consumed:]...)
	}
}

// EndStream finalizes the turn. A trailing incomplete tag (one the model
// never closed, or a chunk boundary that was never resolved) is dropped:
// it was never a well-formed update and nothing was ever rendered for it.
//
// If this batch ever backspaced and the store now holds segments past the
// last one emitted — segments no later update touched after the final
// in-batch emission — they are flushed here rather than per-chunk, so a
// not-yet-finalized tail segment is never typed and then erased again.
func (p *Processor) EndStream() {
	if len(p.buf) > 0 {
		logger.Debug(logger.CategoryStream, "end of stream with %d unconsumed buffer bytes, discarding", len(p.buf))
	}
	p.buf = p.buf[:0]

	if p.store.BackspacePerformedInBatch {
		maxID := p.store.MaxID()
		if maxID > p.store.LastEmittedID {
			p.emitRange(p.store.LastEmittedID, maxID)
		}
	}
}

// Rendered returns the text the segment store believes is now on screen.
func (p *Processor) Rendered() string {
	return p.store.Render()
}

// XML returns the <id>body</id> markup for every known segment, the
// xml_markup half of a ConversationSnapshot.
func (p *Processor) XML() string {
	return p.store.RenderXML()
}

// processSingleUpdate applies one fully-parsed (id, text) pair: it decides
// whether this update requires a fresh backspace-to-divergence-point
// before re-emitting, then gap-fills every segment from the last emitted
// point up through id.
func (p *Processor) processSingleUpdate(id int, text string) {
	if p.store.Has(id) && p.store.Get(id) == text {
		return
	}

	// A new backspace pass is needed the first time this batch touches the
	// store, OR whenever an update arrives for a segment at or before the
	// last position we emitted — e.g. the model revises segment 3 after
	// segment 5 was already pushed to the injector. Both cases mean the
	// on-screen text has diverged from the store as of id's position.
	needsBackspace := !p.store.BackspacePerformedInBatch || id <= p.store.LastEmittedID

	if needsBackspace {
		prefix := p.store.RenderPrefixUntil(id)
		current := p.store.Render()
		backspaceCount := len([]rune(current)) - len([]rune(prefix))
		p.store.Upsert(id, text)
		if backspaceCount > 0 {
			p.inj.Backspace(backspaceCount)
		}
		p.store.LastEmittedID = id - 1
		p.store.BackspacePerformedInBatch = true
	} else {
		p.store.Upsert(id, text)
	}

	// Gap-fill only up through id: segments beyond id are not yet known to
	// be final for this batch (the model may still rewrite or add to them
	// before the batch ends) and are flushed later, once, in EndStream.
	if p.store.BackspacePerformedInBatch {
		p.emitRange(p.store.LastEmittedID, id)
	}
}

// emitRange pushes every known segment with ID in (from, to] to the
// injector, one Emit call per segment in ascending order, and advances
// LastEmittedID to the last ID actually emitted (or leaves it unchanged if
// the range was empty).
func (p *Processor) emitRange(from, to int) {
	updates := p.store.EmitRange(from, to)
	for _, u := range updates {
		p.inj.Emit(u.Text)
	}
	if len(updates) > 0 {
		p.store.LastEmittedID = updates[len(updates)-1].ID
	}
}

var xmlEntityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// unescapeXMLEntities decodes the five predefined XML entities in a single
// non-overlapping pass, so "&amp;lt;" decodes to the literal text "&lt;"
// rather than being double-unescaped into "<".
func unescapeXMLEntities(s string) string {
	return xmlEntityReplacer.Replace(s)
}
