package audio

import (
	"fmt"
	"math"
	"time"
)

// ValidationConfig holds the minimum-quality thresholds a finished
// recording must clear before it is worth sending to a model.
type ValidationConfig struct {
	// MinDuration rejects recordings shorter than this.
	MinDuration time.Duration
	// AmplitudeThreshold is the minimum peak sample amplitude, as a
	// fraction of full scale (0-1).
	AmplitudeThreshold float64
	// PeakWindow is both the sliding-window size for the RMS peak scan
	// and the duration it must cover.
	PeakWindow time.Duration
	// PeakWindowThreshold is the minimum RMS amplitude within
	// PeakWindow, as a fraction of full scale (0-1).
	PeakWindowThreshold float64
}

// DefaultValidationConfig mirrors the thresholds a careful push-to-talk
// dictation app uses to reject empty or silent recordings: clips shorter
// than 700 ms, and clips that never rise meaningfully above noise floor.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MinDuration:         700 * time.Millisecond,
		AmplitudeThreshold:  0.03,
		PeakWindow:          500 * time.Millisecond,
		PeakWindowThreshold: 0.01,
	}
}

// Validate reports whether samples (mono float32 PCM in [-1, 1], at
// sampleRate Hz) recorded over duration meets cfg's thresholds. The
// returned error, when non-nil, explains which check failed and is
// meant to be logged, not surfaced to the user.
func Validate(cfg ValidationConfig, samples []float32, sampleRate float64, duration time.Duration) error {
	if duration < cfg.MinDuration {
		return fmt.Errorf("recording too short: %s < %s", duration, cfg.MinDuration)
	}

	peak := peakAmplitude(samples)
	if peak < cfg.AmplitudeThreshold {
		return fmt.Errorf("peak amplitude too low: %.1f%% < %.1f%%",
			peak*100, cfg.AmplitudeThreshold*100)
	}

	windowSize := int(cfg.PeakWindow.Seconds() * sampleRate)
	if windowSize <= 0 || len(samples) < windowSize {
		return fmt.Errorf("recording too short for RMS window analysis (%d samples < %d)",
			len(samples), windowSize)
	}

	peakRMS := peakWindowRMS(samples, windowSize)
	if peakRMS < cfg.PeakWindowThreshold {
		return fmt.Errorf("RMS peak too low: %.1f%% < %.1f%%",
			peakRMS*100, cfg.PeakWindowThreshold*100)
	}

	return nil
}

func peakAmplitude(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		v := math.Abs(float64(s))
		if v > peak {
			peak = v
		}
	}
	return peak
}

// peakWindowRMS scans samples in windowSize-sample steps of
// windowSize/10, returning the highest RMS amplitude found in any
// window.
func peakWindowRMS(samples []float32, windowSize int) float64 {
	step := windowSize / 10
	if step < 1 {
		step = 1
	}

	var peak float64
	for start := 0; start+windowSize <= len(samples); start += step {
		var sumSquares float64
		window := samples[start : start+windowSize]
		for _, s := range window {
			v := float64(s)
			sumSquares += v * v
		}
		rms := math.Sqrt(sumSquares / float64(len(window)))
		if rms > peak {
			peak = rms
		}
	}
	return peak
}
