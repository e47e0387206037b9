// Package config loads and persists xscribe's on-disk configuration: the
// keyboard trigger, injector rate, model provider credentials, and the
// instruction-mode settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Provider selects which model backend drives a recording.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Config holds the application configuration.
type Config struct {
	// Hotkey trigger: Ctrl/Shift/Alt + Key.
	HotKeyCtrl  bool
	HotKeyShift bool
	HotKeyAlt   bool
	HotKeyKey   string

	// Audio capture.
	AudioSampleRate int
	AudioBufferSize int
	AudioChannels   int

	// Model provider.
	Provider        Provider
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string

	// LocalSTTModelSize selects the whisper.cpp model used to transcribe
	// audio locally before handing text-only providers (Anthropic) a
	// transcript instead of raw audio. LocalSTTModelPath, when non-empty,
	// names a model file or a directory holding the selected size's file
	// and is searched before the default per-platform model directory; a
	// model found in neither is downloaded into the default directory.
	LocalSTTModelSize string
	LocalSTTModelPath string

	// Mode is the active instruction template; AvailableModes is the set
	// discovered from the instructions template directory at startup.
	Mode           string
	AvailableModes []string
	SIGUSR1Mode    string
	SIGUSR2Mode    string

	// ResetStateEachResponse, when true, clears SegmentStore and
	// ChunkBuffer after every model response rather than only on
	// <reset/>, mode change, or --once.
	ResetStateEachResponse bool

	// KeystrokeRateHz is the injector's keystrokes/second; 0 uses
	// injector.DefaultRateHz.
	KeystrokeRateHz int

	// EarlyTerminateOnXMLClose stops draining a response stream once the
	// text received so far contains the closing </xml> tag, rather than
	// waiting on the provider to end the stream itself.
	EarlyTerminateOnXMLClose bool

	// Once, when true, processes exactly one recording then exits.
	Once bool

	// TerminalMode selects the bubbletea status UI instead of (or
	// alongside) the system tray icon.
	TerminalMode   bool
	MinimizeToTray bool

	// TestMode forces the no-op injector, so no keystrokes reach the OS.
	// injector.New also picks the no-op injector by itself under `go test`
	// or when XSCRIBE_TEST_MODE=true.
	TestMode bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	modelDir := "./models/"
	if dir, err := GetModelDir(); err == nil {
		modelDir = dir
	}

	return &Config{
		HotKeyCtrl:  true,
		HotKeyShift: true,
		HotKeyAlt:   false,
		HotKeyKey:   "s",

		AudioSampleRate: 16000,
		AudioBufferSize: 1024,
		AudioChannels:   1,

		Provider:       ProviderAnthropic,
		AnthropicModel: "claude-sonnet-4-5",
		OpenAIModel:    "gpt-4o",

		LocalSTTModelSize: "tiny",
		LocalSTTModelPath: modelDir,

		Mode:           "dictate",
		AvailableModes: nil,
		SIGUSR1Mode:    "dictate",
		SIGUSR2Mode:    "edit",

		ResetStateEachResponse:   false,
		KeystrokeRateHz:          200,
		EarlyTerminateOnXMLClose: true,
		Once:                     false,

		TerminalMode:   false,
		MinimizeToTray: false,

		TestMode: false,
	}
}

// Current holds the active configuration.
var Current = DefaultConfig()

// GetAppDir returns the path to xscribe's application directory,
// creating it if necessary.
func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDir := filepath.Join(homeDir, ".xscribe")

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app directory: %w", err)
	}

	return appDir, nil
}

// GetConfigFilePath returns the path to the config file.
func GetConfigFilePath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "config.json"), nil
}

// GetModelDir returns the path to the local whisper model directory.
func GetModelDir() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}

	modelDir := filepath.Join(appDir, "models")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	return modelDir, nil
}

// LoadConfig loads the configuration from the config file, creating it
// with defaults if it doesn't exist yet.
func LoadConfig() error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		Current = DefaultConfig()
		return SaveConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	Current = cfg
	return nil
}

// SaveConfig saves the configuration to the config file.
func SaveConfig() error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(Current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
