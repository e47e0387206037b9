package instructions

import (
	"errors"
	"strings"
	"testing"
)

func TestAvailableModesDiscoversEmbeddedModes(t *testing.T) {
	c := New()
	modes, err := c.AvailableModes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]bool{"dictate": true, "edit": true}
	if len(modes) != len(want) {
		t.Fatalf("expected %d modes, got %v", len(want), modes)
	}
	for _, m := range modes {
		if !want[m] {
			t.Fatalf("unexpected mode %q", m)
		}
	}
}

func TestComposeInjectsCurrentAndAvailableModes(t *testing.T) {
	c := New()
	out, err := c.Compose("dictate", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "dictate") {
		t.Fatalf("expected current mode name in output, got:\n%s", out)
	}
	if !strings.Contains(out, "edit") {
		t.Fatalf("expected other mode name listed in output, got:\n%s", out)
	}
}

func TestComposeResolvesNestedImport(t *testing.T) {
	c := New()
	out, err := c.Compose("dictate", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Keep segments short") {
		t.Fatalf("expected imported provider/common.md content inlined, got:\n%s", out)
	}
}

func TestComposeAppendsProviderAddendumWhenPresent(t *testing.T) {
	c := New()
	out, err := c.Compose("dictate", "anthropic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "already been transcribed") {
		t.Fatalf("expected anthropic provider addendum, got:\n%s", out)
	}
}

func TestComposeIgnoresUnknownProvider(t *testing.T) {
	c := New()
	if _, err := c.Compose("dictate", "does-not-exist"); err != nil {
		t.Fatalf("unexpected error for unknown provider (should be ignored): %v", err)
	}
}

func TestComposeUnknownModeReturnsErrModeNotFound(t *testing.T) {
	c := New()
	_, err := c.Compose("does-not-exist", "")
	if !errors.Is(err, ErrModeNotFound) {
		t.Fatalf("expected ErrModeNotFound for unknown mode, got %v", err)
	}
}
