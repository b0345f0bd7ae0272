package snd

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

func TestClipDuration(t *testing.T) {
	clip := Clip{SampleRate: 16000, Samples: make([]int16, 16000)}
	if got := clip.Duration(); got != time.Second {
		t.Errorf("Duration = %v, want 1s", got)
	}

	empty := Clip{SampleRate: 16000}
	if got := empty.Duration(); got != 0 {
		t.Errorf("empty clip duration = %v, want 0", got)
	}
}

func TestEncodeWAV(t *testing.T) {
	t.Run("RejectsEmpty", func(t *testing.T) {
		if _, err := EncodeWAV(Clip{SampleRate: 16000}); err == nil {
			t.Fatal("expected error for empty clip")
		}
	})

	t.Run("RejectsBadRate", func(t *testing.T) {
		if _, err := EncodeWAV(Clip{SampleRate: 0, Samples: []int16{1}}); err == nil {
			t.Fatal("expected error for zero sample rate")
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		samples := make([]int16, 3200)
		for i := range samples {
			samples[i] = int16(i % 1000)
		}
		data, err := EncodeWAV(Clip{SampleRate: 16000, Samples: samples})
		if err != nil {
			t.Fatalf("EncodeWAV failed: %v", err)
		}

		if !bytes.HasPrefix(data, []byte("RIFF")) {
			t.Errorf("missing RIFF magic")
		}
		if !bytes.Contains(data[:12], []byte("WAVE")) {
			t.Errorf("missing WAVE magic")
		}

		dec := wav.NewDecoder(bytes.NewReader(data))
		dec.ReadInfo()
		if !dec.IsValidFile() {
			t.Fatal("encoded data is not a valid WAV file")
		}
		if dec.SampleRate != 16000 {
			t.Errorf("sample rate = %d, want 16000", dec.SampleRate)
		}
		if dec.NumChans != 1 {
			t.Errorf("channels = %d, want 1", dec.NumChans)
		}
		if dec.BitDepth != 16 {
			t.Errorf("bit depth = %d, want 16", dec.BitDepth)
		}

		buf, err := dec.FullPCMBuffer()
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(buf.Data) != len(samples) {
			t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
		}
		for i, want := range samples {
			if int16(buf.Data[i]) != want {
				t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], want)
			}
		}
	})
}
