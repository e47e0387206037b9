package localstt

import (
	"os"
	"path/filepath"
	"runtime"
)

// ModelSize selects a whisper.cpp ggml model.
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
)

// modelFilenames maps a ModelSize to its English-only ggml filename.
var modelFilenames = map[ModelSize]string{
	ModelTiny:   "ggml-tiny.en.bin",
	ModelBase:   "ggml-base.en.bin",
	ModelSmall:  "ggml-small.en.bin",
	ModelMedium: "ggml-medium.en.bin",
}

// Config configures a Transcriber.
type Config struct {
	// ModelSize selects which ggml model to load when ModelPath is empty.
	ModelSize ModelSize
	// ModelPath overrides automatic model resolution: either a model file,
	// or a directory searched for ModelSize's file.
	ModelPath string
	// Language is the whisper language hint; "" auto-detects.
	Language string
	// Threads is the number of CPU threads whisper.cpp should use.
	Threads int
}

// DefaultConfig returns sane defaults: the tiny English model, English
// language hint, and a conservative thread count.
func DefaultConfig() Config {
	return Config{
		ModelSize: ModelTiny,
		Language:  "en",
		Threads:   4,
	}
}

// resolveModelPath returns the model file to load, preferring an
// explicit ModelPath, then a match in the default data directory.
func resolveModelPath(cfg Config) (string, bool) {
	filename, ok := modelFilenames[cfg.ModelSize]
	if !ok {
		filename = modelFilenames[ModelTiny]
	}

	if cfg.ModelPath != "" {
		if info, err := os.Stat(cfg.ModelPath); err == nil {
			if !info.IsDir() {
				return cfg.ModelPath, true
			}
			inDir := filepath.Join(cfg.ModelPath, filename)
			if _, err := os.Stat(inDir); err == nil {
				return inDir, true
			}
		}
	}

	path := filepath.Join(defaultModelDir(), filename)
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return path, false
}

// defaultModelDir returns the platform-conventional data directory for
// downloaded models.
func defaultModelDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "xscribe", "models")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "xscribe", "models")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "xscribe", "models")
	default:
		return filepath.Join(home, ".local", "share", "xscribe", "models")
	}
}
