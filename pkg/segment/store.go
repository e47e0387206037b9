// Package segment implements the in-memory segment table that backs the
// streaming XML processor: a mapping from model-assigned segment ID to its
// current text, iterable in ascending ID order.
package segment

import (
	"sort"
	"strconv"
	"strings"
)

// Store holds the current segment → text mapping plus the bookkeeping the
// stream processor needs to decide when a batch's first backspace has
// already happened.
//
// Store is not safe for concurrent use; the coordinator is the only caller
// and it is only ever touched by the output-worker goroutine for the
// duration of one session (see pkg/scheduler).
type Store struct {
	text map[int]string

	// LastEmittedID is 0 (nothing emitted) or the ID of the rightmost
	// segment pushed to the keystroke injector so far.
	LastEmittedID int

	// BackspacePerformedInBatch is set the first time a batch mutates a
	// segment. Only Reset clears it; it is not cleared between streaming
	// responses, so in a later response a new backspace pass starts only
	// when an update lands at or before LastEmittedID.
	BackspacePerformedInBatch bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{text: make(map[int]string)}
}

// Reset replaces the store's contents with initial, clears LastEmittedID,
// and clears BackspacePerformedInBatch.
func (s *Store) Reset(initial map[int]string) {
	s.text = make(map[int]string, len(initial))
	for id, body := range initial {
		s.text[id] = body
	}
	s.LastEmittedID = 0
	s.BackspacePerformedInBatch = false
}

// Upsert sets the text for id. An empty string is retained as a tombstone,
// not deleted from the map — it still participates in gap-fill.
func (s *Store) Upsert(id int, text string) {
	s.text[id] = text
}

// Get returns the text for id, or "" if id has never been seen.
func (s *Store) Get(id int) string {
	return s.text[id]
}

// Has reports whether id has ever been upserted, distinguishing "never
// seen" from "seen with empty text".
func (s *Store) Has(id int) bool {
	_, ok := s.text[id]
	return ok
}

// ids returns every known segment ID in ascending order.
func (s *Store) ids() []int {
	ids := make([]int, 0, len(s.text))
	for id := range s.text {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Render concatenates every segment's text in ascending ID order. This is
// the ground truth the keystroke injector must mirror.
func (s *Store) Render() string {
	var out []byte
	for _, id := range s.ids() {
		out = append(out, s.text[id]...)
	}
	return string(out)
}

var xmlEntityEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// RenderXML reconstructs the <id>body</id> markup for every known segment,
// in ascending ID order — the xml_markup half of a conversation snapshot.
func (s *Store) RenderXML() string {
	var sb strings.Builder
	for _, id := range s.ids() {
		sb.WriteByte('<')
		sb.WriteString(strconv.Itoa(id))
		sb.WriteByte('>')
		sb.WriteString(xmlEntityEscaper.Replace(s.text[id]))
		sb.WriteString("</")
		sb.WriteString(strconv.Itoa(id))
		sb.WriteByte('>')
	}
	return sb.String()
}

// RenderPrefixUntil concatenates every segment with ID < id, in ascending
// order. It is the "chunk boundary position" used to compute a backspace
// count.
func (s *Store) RenderPrefixUntil(id int) string {
	var out []byte
	for _, segID := range s.ids() {
		if segID >= id {
			break
		}
		out = append(out, s.text[segID]...)
	}
	return string(out)
}

// EmitRange returns the (id, text) pairs with from < id <= to, in ascending
// order — the gap-fill set for one emission step. Segment IDs that were
// never seen are silently skipped: the store has no entry to emit.
func (s *Store) EmitRange(from, to int) []Update {
	var updates []Update
	for _, id := range s.ids() {
		if id > from && id <= to {
			updates = append(updates, Update{ID: id, Text: s.text[id]})
		}
	}
	return updates
}

// MaxID returns the greatest known segment ID, or 0 if the store is empty.
func (s *Store) MaxID() int {
	max := 0
	for _, id := range s.ids() {
		if id > max {
			max = id
		}
	}
	return max
}

// Update is a single (id, text) pair, as returned by EmitRange.
type Update struct {
	ID   int
	Text string
}
