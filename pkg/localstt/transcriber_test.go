//go:build !(cgo && whisper_go)
// +build !cgo !whisper_go

package localstt

import "testing"

func TestNewWithoutBindingsReturnsErrBindingsUnavailable(t *testing.T) {
	_, err := newWhisperTranscriber(DefaultConfig(), "/tmp/does-not-matter.bin")
	if err != ErrBindingsUnavailable {
		t.Fatalf("expected ErrBindingsUnavailable, got %v", err)
	}
}
