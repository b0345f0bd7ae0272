// Package vad classifies audio frames as speech or silence by amplitude.
package vad

import "math"

// State is the classification of a single frame.
type State int

const (
	Silence State = iota
	Speech
)

func (s State) String() string {
	if s == Speech {
		return "speech"
	}
	return "silence"
}

// Monitor classifies frames against a fixed RMS amplitude threshold,
// expressed in int16 sample units. Classification is a pure function of
// the samples and the threshold so it can be tested without hardware.
type Monitor struct {
	threshold float64
}

// NewMonitor creates a monitor with the given RMS threshold.
func NewMonitor(threshold float64) *Monitor {
	return &Monitor{threshold: threshold}
}

// Classify returns Speech when the frame's RMS amplitude meets the
// threshold. An empty frame is silence regardless of the threshold.
func (m *Monitor) Classify(samples []int16) State {
	if len(samples) == 0 {
		return Silence
	}
	if RMS(samples) >= m.threshold {
		return Speech
	}
	return Silence
}

// RMS computes the root-mean-square amplitude of the samples.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
