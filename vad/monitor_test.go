package vad

import (
	"math"
	"testing"
)

func constantFrame(value int16, n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = value
	}
	return samples
}

func TestRMS(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		if got := RMS(nil); got != 0 {
			t.Errorf("RMS(nil) = %f, want 0", got)
		}
	})

	t.Run("Constant", func(t *testing.T) {
		got := RMS(constantFrame(1000, 256))
		if math.Abs(got-1000) > 1e-9 {
			t.Errorf("RMS = %f, want 1000", got)
		}
	})

	t.Run("SignInsensitive", func(t *testing.T) {
		samples := []int16{500, -500, 500, -500}
		got := RMS(samples)
		if math.Abs(got-500) > 1e-9 {
			t.Errorf("RMS = %f, want 500", got)
		}
	})
}

func TestClassify(t *testing.T) {
	m := NewMonitor(500)

	cases := []struct {
		name    string
		samples []int16
		want    State
	}{
		{"Silence", constantFrame(10, 128), Silence},
		{"Speech", constantFrame(2000, 128), Speech},
		{"ExactThreshold", constantFrame(500, 128), Speech},
		{"JustBelow", constantFrame(499, 128), Silence},
		{"Empty", nil, Silence},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Classify(tc.samples); got != tc.want {
				t.Errorf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEmptyFrameIsSilenceAtZeroThreshold(t *testing.T) {
	m := NewMonitor(0)
	if got := m.Classify(nil); got != Silence {
		t.Errorf("Classify(nil) = %v, want Silence", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	m := NewMonitor(500)
	frame := constantFrame(700, 128)
	first := m.Classify(frame)
	for i := 0; i < 10; i++ {
		if got := m.Classify(frame); got != first {
			t.Fatalf("classification changed between calls: %v then %v", first, got)
		}
	}
}
