package audio

import (
	"math"
	"testing"
)

func TestCalculateLevel(t *testing.T) {
	cases := []struct {
		name     string
		input    []float32
		expected float32
	}{
		{"empty", nil, 0},
		{"silence", []float32{0, 0, 0, 0}, 0},
		{"constant amplitude", []float32{0.5, 0.5, 0.5, 0.5}, 0.5},
		{"varying amplitude", []float32{0, 1, 0, -1}, float32(math.Sqrt(0.5))},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CalculateLevel(c.input)
			if math.Abs(float64(got-c.expected)) > 0.0001 {
				t.Errorf("expected %f, got %f", c.expected, got)
			}
		})
	}
}
