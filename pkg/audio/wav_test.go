package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWavSaveLoad(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "audio_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	wavPath := filepath.Join(tempDir, "test.wav")
	samples := sineWave(0.5, 1600, 16000)

	if err := SaveToWav(samples, wavPath); err != nil {
		t.Fatalf("SaveToWav failed: %v", err)
	}

	loaded, err := LoadFromWav(wavPath)
	if err != nil {
		t.Fatalf("LoadFromWav failed: %v", err)
	}
	if len(loaded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(loaded))
	}
	for i := range samples {
		if math.Abs(float64(loaded[i]-samples[i])) > 0.01 {
			t.Fatalf("sample %d diverged: got %f, want %f", i, loaded[i], samples[i])
		}
	}
}

func TestEncodeWAVProducesRIFFHeader(t *testing.T) {
	samples := sineWave(0.5, 160, 16000)
	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	if len(data) < 44 {
		t.Fatalf("expected at least a 44-byte WAV header, got %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("expected RIFF/WAVE header, got %q/%q", data[0:4], data[8:12])
	}
}

func TestConvertToPCM16ProducesTwoBytesPerSample(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1}
	pcm := ConvertToPCM16(samples)
	if len(pcm) != len(samples)*2 {
		t.Fatalf("expected %d bytes, got %d", len(samples)*2, len(pcm))
	}
}

func TestProcessDspFilters(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3}
	out := ProcessDspFilters(samples)
	if len(out) != len(samples) {
		t.Fatalf("expected passthrough length %d, got %d", len(samples), len(out))
	}
}
