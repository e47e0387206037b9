package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.HotKeyCtrl || !cfg.HotKeyShift || cfg.HotKeyAlt {
		t.Error("expected default hotkey to be Ctrl+Shift, no Alt")
	}
	if cfg.HotKeyKey != "s" {
		t.Errorf("expected default HotKeyKey 's', got %q", cfg.HotKeyKey)
	}

	if cfg.AudioSampleRate != 16000 || cfg.AudioChannels != 1 {
		t.Errorf("unexpected audio defaults: %+v", cfg)
	}

	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider anthropic, got %q", cfg.Provider)
	}

	if cfg.Mode != "dictate" {
		t.Errorf("expected default mode 'dictate', got %q", cfg.Mode)
	}
	if cfg.SIGUSR1Mode != "dictate" || cfg.SIGUSR2Mode != "edit" {
		t.Errorf("unexpected default signal modes: %+v", cfg)
	}

	if cfg.ResetStateEachResponse {
		t.Error("expected reset_state_each_response to default false")
	}
	if cfg.KeystrokeRateHz != 200 {
		t.Errorf("expected default keystroke rate 200, got %d", cfg.KeystrokeRateHz)
	}
	if !cfg.EarlyTerminateOnXMLClose {
		t.Error("expected early_terminate_on_xml_close to default true")
	}
}

func TestCurrentConfig(t *testing.T) {
	if Current == nil {
		t.Fatal("Current config should not be nil")
	}
	if Current.HotKeyKey != "s" {
		t.Errorf("expected Current.HotKeyKey 's', got %q", Current.HotKeyKey)
	}
}
