package audio

import "math"

// CalculateLevel computes the RMS amplitude of samples, as a fraction of
// full scale — the level meter the terminal UI drives off of while a
// recording is in progress.
func CalculateLevel(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}

	var sumSquares float64
	for _, s := range samples {
		v := float64(s)
		sumSquares += v * v
	}

	return float32(math.Sqrt(sumSquares / float64(len(samples))))
}
