package audio

import (
	"math"
	"testing"
	"time"
)

func sineWave(amplitude float64, n int, sampleRate float64) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(amplitude * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}
	return samples
}

func TestValidateRejectsTooShortRecording(t *testing.T) {
	cfg := DefaultValidationConfig()
	samples := sineWave(0.5, 16000, 16000)
	err := Validate(cfg, samples, 16000, 400*time.Millisecond)
	if err == nil {
		t.Fatal("expected error for too-short recording")
	}
}

func TestValidateRejectsSilence(t *testing.T) {
	cfg := DefaultValidationConfig()
	samples := make([]float32, 16000)
	err := Validate(cfg, samples, 16000, 1*time.Second)
	if err == nil {
		t.Fatal("expected error for silent recording")
	}
}

func TestValidateAcceptsLoudEnoughSpeechLikeAudio(t *testing.T) {
	cfg := DefaultValidationConfig()
	samples := sineWave(0.5, 16000, 16000)
	if err := Validate(cfg, samples, 16000, 1*time.Second); err != nil {
		t.Fatalf("expected valid recording, got error: %v", err)
	}
}

func TestValidateRejectsQuietWithBriefLoudSpike(t *testing.T) {
	cfg := DefaultValidationConfig()
	samples := make([]float32, 16000)
	// A handful of loud samples clears the peak-amplitude check but
	// should still fail the RMS sliding-window check, which looks for
	// sustained loudness rather than an instantaneous spike.
	for i := 0; i < 5; i++ {
		samples[8000+i] = 0.3
	}
	err := Validate(cfg, samples, 16000, 1*time.Second)
	if err == nil {
		t.Fatal("expected brief spike to fail the RMS window check")
	}
}
