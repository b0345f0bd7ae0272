package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

// PortAudioSource records mono 16-bit PCM from a PortAudio input device.
// A source is single-use per Start/Stop cycle; the session controller is
// its only owner while recording.
type PortAudioSource struct {
	deviceIndex  int
	sampleRate   int
	frameSamples int
	logger       *log.Logger

	mu      sync.Mutex
	running bool
	err     error
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewPortAudioSource creates a source. deviceIndex < 0 selects the default
// input device. frameDuration determines how many samples each frame holds.
func NewPortAudioSource(deviceIndex, sampleRate int, frameDuration time.Duration, logger *log.Logger) *PortAudioSource {
	samples := int(float64(sampleRate) * frameDuration.Seconds())
	return &PortAudioSource{
		deviceIndex:  deviceIndex,
		sampleRate:   sampleRate,
		frameSamples: samples,
		logger:       logger,
	}
}

// Start opens the device and begins emitting frames. The returned channel
// closes when the context is canceled, Stop is called, or the device fails.
func (s *PortAudioSource) Start(ctx context.Context) (<-chan Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, fmt.Errorf("capture already running")
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	dev, err := s.resolveDevice()
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}

	in := make([]int16, s.frameSamples)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(s.sampleRate),
		FramesPerBuffer: s.frameSamples,
	}
	stream, err := portaudio.OpenStream(params, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start stream on %q: %w", dev.Name, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	frames := make(chan Frame)
	s.running = true
	s.err = nil
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Debug("capture started",
		"device", dev.Name,
		"rate", s.sampleRate,
		"frame_samples", s.frameSamples)

	go s.readLoop(runCtx, stream, in, frames)
	return frames, nil
}

func (s *PortAudioSource) readLoop(ctx context.Context, stream *portaudio.Stream, in []int16, frames chan<- Frame) {
	defer func() {
		_ = stream.Stop()
		_ = stream.Close()
		_ = portaudio.Terminate()
		close(frames)
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(s.done)
	}()

	frameDur := time.Duration(float64(time.Second) * float64(s.frameSamples) / float64(s.sampleRate))
	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := stream.Read(); err != nil {
			// Overflow just means we were late picking up a buffer.
			if err == portaudio.InputOverflowed {
				continue
			}
			s.mu.Lock()
			s.err = fmt.Errorf("stream read: %w", err)
			s.mu.Unlock()
			s.logger.Error("capture device failed", "error", err)
			return
		}

		samples := make([]int16, len(in))
		copy(samples, in)
		frame := Frame{
			Seq:       seq,
			Samples:   samples,
			Duration:  frameDur,
			Timestamp: time.Now(),
		}
		seq++

		select {
		case frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the capture and blocks until the device is released.
func (s *PortAudioSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Err reports the device error that ended the stream, if any.
func (s *PortAudioSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *PortAudioSource) resolveDevice() (*portaudio.DeviceInfo, error) {
	if s.deviceIndex < 0 {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		return dev, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if s.deviceIndex >= len(devices) {
		return nil, fmt.Errorf("device index %d out of range (%d devices)", s.deviceIndex, len(devices))
	}
	dev := devices[s.deviceIndex]
	if dev.MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %q has no input channels", dev.Name)
	}
	return dev, nil
}

// ListDevices enumerates the available input devices.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var devices []Device
	for i, info := range infos {
		if info.MaxInputChannels < 1 {
			continue
		}
		host := ""
		if info.HostApi != nil {
			host = info.HostApi.Name
		}
		devices = append(devices, Device{
			Index:             i,
			Name:              info.Name,
			HostAPI:           host,
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}
	return devices, nil
}
