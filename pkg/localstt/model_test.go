package localstt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveModelPathPrefersExplicitPath(t *testing.T) {
	dir := t.TempDir()
	modelFile := filepath.Join(dir, "custom.bin")
	if err := os.WriteFile(modelFile, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Config{ModelSize: ModelTiny, ModelPath: modelFile}
	path, ok := resolveModelPath(cfg)
	if !ok || path != modelFile {
		t.Fatalf("expected explicit path %q, got %q ok=%v", modelFile, path, ok)
	}
}

func TestResolveModelPathFallsBackWhenExplicitPathMissing(t *testing.T) {
	cfg := Config{ModelSize: ModelTiny, ModelPath: "/nonexistent/path.bin"}
	_, ok := resolveModelPath(cfg)
	if ok {
		t.Fatalf("expected resolution to fail when neither explicit nor default path exists")
	}
}

func TestResolveModelPathUnknownSizeFallsBackToTiny(t *testing.T) {
	cfg := Config{ModelSize: ModelSize("not-a-real-size")}
	path, _ := resolveModelPath(cfg)
	if filepath.Base(path) != modelFilenames[ModelTiny] {
		t.Fatalf("expected fallback to tiny model filename, got %q", path)
	}
}
