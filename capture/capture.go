package capture

import (
	"context"
	"time"
)

// Frame is one fixed-duration chunk of mono PCM samples pulled from the
// input device. Frames are immutable once emitted: the Samples slice is
// owned by the receiver and never reused by the source.
type Frame struct {
	Seq       int
	Samples   []int16
	Duration  time.Duration
	Timestamp time.Time
}

// Source yields consecutive fixed-duration frames from an input device.
// The frame channel is closed on stop or device failure; after it closes,
// Err reports whether the stream ended because of a device error.
type Source interface {
	Start(ctx context.Context) (<-chan Frame, error)
	Stop() error
	Err() error
}

// Device describes one audio input device.
type Device struct {
	Index             int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	DefaultSampleRate float64
}
