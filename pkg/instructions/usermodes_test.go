package instructions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadUserModesMissingFileIsNotAnError(t *testing.T) {
	modes, err := LoadUserModes(filepath.Join(t.TempDir(), "modes.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modes != nil {
		t.Fatalf("expected no modes, got %v", modes)
	}
}

func TestLoadUserModesParsesManifest(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "commit.md")
	if err := os.WriteFile(templatePath, []byte("Write a commit message."), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	manifest := filepath.Join(dir, "modes.yaml")
	content := "- name: commit\n  template_path: " + templatePath + "\n"
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	modes, err := LoadUserModes(manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(modes) != 1 || modes[0].Name != "commit" {
		t.Fatalf("expected one mode named commit, got %v", modes)
	}
}

func TestRegisterUserModesAddsToAvailableModesAndCompose(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "commit.md")
	if err := os.WriteFile(templatePath, []byte("Write a terse commit message."), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	c := New()
	if err := c.RegisterUserModes([]UserMode{{Name: "commit", TemplatePath: templatePath}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	modes, err := c.AvailableModes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, m := range modes {
		if m == "commit" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected commit mode in %v", modes)
	}

	out, err := c.Compose("commit", "")
	if err != nil {
		t.Fatalf("unexpected error composing user mode: %v", err)
	}
	if want := "Write a terse commit message."; !strings.Contains(out, want) {
		t.Fatalf("expected %q in composed output, got:\n%s", want, out)
	}
}
