// Package snd converts captured PCM into the WAV payload providers expect.
package snd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Clip is a finalized mono recording: the session buffer flattened into
// one sample slice.
type Clip struct {
	SampleRate int
	Samples    []int16
}

// Duration reports the clip length.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) * float64(len(c.Samples)) / float64(c.SampleRate))
}

// EncodeWAV renders the clip as a 16-bit mono PCM WAV file in memory.
func EncodeWAV(clip Clip) ([]byte, error) {
	if len(clip.Samples) == 0 {
		return nil, fmt.Errorf("cannot encode empty clip")
	}
	if clip.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", clip.SampleRate)
	}

	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, clip.SampleRate, 16, 1, 1)

	data := make([]int, len(clip.Samples))
	for i, s := range clip.Samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: clip.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav close: %w", err)
	}
	return ws.buf, nil
}

// ProbeFile validates an existing WAV file and reports its sample rate
// and duration.
func ProbeFile(path string) (int, time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return 0, 0, fmt.Errorf("%s is not a valid WAV file", path)
	}
	dur, err := dec.Duration()
	if err != nil {
		return 0, 0, fmt.Errorf("read duration of %s: %w", path, err)
	}
	return int(dec.SampleRate), dur, nil
}

// DecodeFile reads a mono 16-bit WAV file into a clip.
func DecodeFile(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return Clip{}, fmt.Errorf("%s is not a valid WAV file", path)
	}
	if dec.NumChans != 1 {
		return Clip{}, fmt.Errorf("%s has %d channels, only mono is supported", path, dec.NumChans)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("decode %s: %w", path, err)
	}
	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = int16(s)
	}
	return Clip{SampleRate: int(dec.SampleRate), Samples: samples}, nil
}

// memWriteSeeker satisfies the encoder's io.WriteSeeker so the WAV header
// can be patched up without a temp file.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (w *memWriteSeeker) Write(p []byte) (int, error) {
	if need := w.pos + len(p); need > len(w.buf) {
		grown := make([]byte, need)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
	return len(p), nil
}

func (w *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(w.pos) + offset
	case io.SeekEnd:
		pos = int64(len(w.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	w.pos = int(pos)
	return pos, nil
}
