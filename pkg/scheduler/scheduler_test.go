package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/jeff-barlow-spady/xscribe/pkg/coordinator"
	"github.com/jeff-barlow-spady/xscribe/pkg/injector"
	"github.com/jeff-barlow-spady/xscribe/pkg/modelclient"
	"github.com/jeff-barlow-spady/xscribe/pkg/session"
	"github.com/jeff-barlow-spady/xscribe/pkg/streamproc"
)

func newTestScheduler(t *testing.T, results *[]string, mu *sync.Mutex) *Scheduler {
	t.Helper()
	proc := streamproc.New(injector.NoOp{})
	coord := coordinator.New(proc, nil, true)
	sched := New(coord, func(_ session.Recording, text string) {
		mu.Lock()
		*results = append(*results, text)
		mu.Unlock()
	})
	sched.Start()
	return sched
}

// TestOutputOrderMatchesSubmissionOrder drives two sessions concurrently,
// with the second session's model producing its chunks faster than the
// first, and asserts the output worker still finalizes them in submission
// order — never interleaved, never reordered.
func TestOutputOrderMatchesSubmissionOrder(t *testing.T) {
	var mu sync.Mutex
	var results []string
	sched := newTestScheduler(t, &results, &mu)

	first := session.NewProcessing(session.NewRecording(session.OriginKeyboard), "default", modelclient.ConversationSnapshot{})
	second := session.NewProcessing(session.NewRecording(session.OriginSignal), "default", modelclient.ConversationSnapshot{})

	sched.Submit(first)
	sched.Submit(second)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		// second's "model" finishes fast, well before first even starts
		// sending.
		second.Push("<update><1>second</1></update>")
		second.Complete()
	}()
	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		first.Push("<update><1>first</1></update>")
		first.Complete()
	}()
	wg.Wait()

	sched.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 2 || results[0] != "first" || results[1] != "second" {
		t.Fatalf("results = %v, want [first second] (submission order, not completion order)", results)
	}
}

// panicInjector panics on its first Emit call, simulating a bug surfacing
// deep in one session's output processing.
type panicInjector struct {
	panicked bool
}

func (p *panicInjector) Backspace(int) {}
func (p *panicInjector) Emit(string) {
	if !p.panicked {
		p.panicked = true
		panic("boom")
	}
}

// TestPanicInOneSessionDoesNotStrandLaterSessions asserts the testable
// property that a panic inside one session's output processing is caught
// and logged, not left to kill the output worker goroutine and silently
// strand every session still queued behind it.
func TestPanicInOneSessionDoesNotStrandLaterSessions(t *testing.T) {
	var mu sync.Mutex
	var results []string

	proc := streamproc.New(&panicInjector{})
	coord := coordinator.New(proc, nil, true)
	sched := New(coord, func(_ session.Recording, text string) {
		mu.Lock()
		results = append(results, text)
		mu.Unlock()
	})
	sched.Start()

	first := session.NewProcessing(session.NewRecording(session.OriginKeyboard), "default", modelclient.ConversationSnapshot{})
	second := session.NewProcessing(session.NewRecording(session.OriginSignal), "default", modelclient.ConversationSnapshot{})

	sched.Submit(first)
	sched.Submit(second)

	first.Push("<update><1>first</1></update>")
	first.Complete()
	second.Push("<update><1>second</1></update>")
	second.Complete()

	sched.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 1 || results[0] != "second" {
		t.Fatalf("results = %v, want the first session's panic swallowed and the second session still completed", results)
	}
}

func TestSchedulerResetsBetweenSessions(t *testing.T) {
	var mu sync.Mutex
	var results []string
	sched := newTestScheduler(t, &results, &mu)

	a := session.NewProcessing(session.NewRecording(session.OriginTray), "default", modelclient.ConversationSnapshot{})
	sched.Submit(a)
	a.Push("<update><1>alpha</1></update>")
	a.Complete()

	b := session.NewProcessing(session.NewRecording(session.OriginTray), "default", modelclient.ConversationSnapshot{})
	sched.Submit(b)
	b.Push("<update><1>beta</1></update>")
	b.Complete()

	sched.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 2 || results[0] != "alpha" || results[1] != "beta" {
		t.Fatalf("results = %v, want [alpha beta] (no leftover state from session a)", results)
	}
}
