package session

import (
	"errors"
	"testing"
	"time"

	"github.com/jeff-barlow-spady/xscribe/pkg/modelclient"
)

func TestRecordingOriginAbortSemantics(t *testing.T) {
	cases := []struct {
		origin Origin
		want   bool
	}{
		{OriginKeyboard, true},
		{OriginSignal, false},
		{OriginTray, false},
	}
	for _, c := range cases {
		r := NewRecording(c.origin)
		if got := r.ShouldAbortOnKeystroke(); got != c.want {
			t.Errorf("origin %v: ShouldAbortOnKeystroke() = %v, want %v", c.origin, got, c.want)
		}
	}
}

func TestProcessingStreamsChunksAsPushed(t *testing.T) {
	p := NewProcessing(NewRecording(OriginKeyboard), Mode("default"), modelclient.ConversationSnapshot{})
	var received []string
	doneReading := make(chan struct{})
	go func() {
		for c := range p.Chunks() {
			received = append(received, c)
		}
		close(doneReading)
	}()

	p.Push("<1>hel")
	p.Push("lo</1>")
	p.Complete()

	select {
	case <-doneReading:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for consumer to drain")
	}

	if len(received) != 2 || received[0] != "<1>hel" || received[1] != "lo</1>" {
		t.Fatalf("received = %v", received)
	}
	if p.HasError() {
		t.Fatalf("expected no error, got %v", p.Err())
	}
}

func TestProcessingFailDeliversPriorChunksThenError(t *testing.T) {
	p := NewProcessing(NewRecording(OriginSignal), Mode("default"), modelclient.ConversationSnapshot{})
	want := errors.New("boom")

	var received []string
	doneReading := make(chan struct{})
	go func() {
		for c := range p.Chunks() {
			received = append(received, c)
		}
		close(doneReading)
	}()

	p.Push("partial")
	p.Fail(want)

	<-doneReading
	if len(received) != 1 || received[0] != "partial" {
		t.Fatalf("received = %v", received)
	}
	if p.Err() != want {
		t.Fatalf("Err() = %v, want %v", p.Err(), want)
	}
}
