// Package scheduler runs the two-stage pipeline described by the system's
// concurrency model: any number of model-invocation goroutines may stream
// chunks into their own session concurrently, but exactly one output
// worker drains sessions in submission order, so session N+1's keystrokes
// never interleave with session N's.
package scheduler

import (
	"sync"

	"github.com/jeff-barlow-spady/xscribe/pkg/coordinator"
	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
	"github.com/jeff-barlow-spady/xscribe/pkg/session"
)

// queueDepth bounds how many processing sessions may be queued awaiting
// the output worker before Submit blocks. Recording is serialized by the
// input router (one active recording at a time), so in practice this is
// rarely more than 1-2 deep.
const queueDepth = 8

// Scheduler owns the single Coordinator instance (and, through it, the
// one keystroke injector) and feeds it one processing session at a time.
type Scheduler struct {
	coord *coordinator.Coordinator

	queue chan *session.Processing
	wg    sync.WaitGroup

	onTurnComplete func(recording session.Recording, text string)
}

// New returns a Scheduler driving coord. onTurnComplete, if non-nil, is
// called on the output worker goroutine after each session's stream ends
// and final text has settled — e.g. to log it or persist a
// ConversationSnapshot.
func New(coord *coordinator.Coordinator, onTurnComplete func(session.Recording, string)) *Scheduler {
	return &Scheduler{
		coord:          coord,
		queue:          make(chan *session.Processing, queueDepth),
		onTurnComplete: onTurnComplete,
	}
}

// Start launches the single output worker goroutine. Call once.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.outputWorker()
}

// Submit enqueues a processing session for output. Sessions are drained
// strictly in the order Submit was called, regardless of how many model
// invocations are concurrently streaming into their respective sessions.
func (s *Scheduler) Submit(ps *session.Processing) {
	s.queue <- ps
}

// Stop closes the submission queue and waits for the output worker to
// drain everything already queued.
func (s *Scheduler) Stop() {
	close(s.queue)
	s.wg.Wait()
}

func (s *Scheduler) outputWorker() {
	defer s.wg.Done()
	for ps := range s.queue {
		s.processOneSafely(ps)
	}
}

// processOneSafely guards a single session's output processing against a
// panic. Without this, a panic inside ProcessStreamingChunk — a coordinator
// or segment-store bug tripped by one malformed response — would kill the
// output worker goroutine outright and strand every session still queued
// behind it; draining the queue with the panic caught and logged keeps
// that one session's failure from taking down the rest.
func (s *Scheduler) processOneSafely(ps *session.Processing) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(logger.CategorySession, "session from %s panicked during output processing: %v", ps.Recording.Origin, r)
		}
	}()
	s.processOne(ps)
}

func (s *Scheduler) processOne(ps *session.Processing) {
	s.coord.ResetStreamingState()

	for chunk := range ps.Chunks() {
		s.coord.ProcessStreamingChunk(chunk)
	}
	s.coord.CompleteStream()

	if err := ps.Err(); err != nil {
		logger.Error(logger.CategorySession, "session from %s ended in error: %v", ps.Recording.Origin, err)
	}

	text := s.coord.CurrentText()
	if s.onTurnComplete != nil {
		s.onTurnComplete(ps.Recording, text)
	}
}
