package stt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/voxtype/voxtype/snd"
)

func testClip() snd.Clip {
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(i % 800)
	}
	return snd.Clip{SampleRate: 16000, Samples: samples}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestWhisperTranscribe(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPrompt string
		var gotFile bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/audio/transcriptions" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			gotPrompt = r.FormValue("prompt")
			if _, _, err := r.FormFile("file"); err == nil {
				gotFile = true
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"text":"hello there"}`))
		}))
		defer server.Close()

		tr := NewWhisperTranscriber("test-key", discardLogger(), WithBaseURL(server.URL+"/v1"))
		res, err := tr.Transcribe(context.Background(), testClip(), "Lorville, Xi'an (Zee-an)")
		if err != nil {
			t.Fatalf("Transcribe failed: %v", err)
		}
		if res.Text != "hello there" {
			t.Errorf("text = %q, want %q", res.Text, "hello there")
		}
		if res.Provider != "openai" {
			t.Errorf("provider = %q", res.Provider)
		}
		if gotPrompt != "Lorville, Xi'an (Zee-an)" {
			t.Errorf("prompt = %q, hint not forwarded", gotPrompt)
		}
		if !gotFile {
			t.Error("audio file missing from request")
		}
	})

	t.Run("ProviderError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
		}))
		defer server.Close()

		tr := NewWhisperTranscriber("bad-key", discardLogger(), WithBaseURL(server.URL+"/v1"))
		_, err := tr.Transcribe(context.Background(), testClip(), "")
		if err == nil {
			t.Fatal("expected error")
		}
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("expected *RequestError, got %T: %v", err, err)
		}
		if reqErr.Provider != "openai" {
			t.Errorf("provider = %q", reqErr.Provider)
		}
	})

	t.Run("EmptyClipRejectedLocally", func(t *testing.T) {
		tr := NewWhisperTranscriber("key", discardLogger(), WithBaseURL("http://invalid.localhost/v1"))
		_, err := tr.Transcribe(context.Background(), snd.Clip{SampleRate: 16000}, "")
		if err == nil {
			t.Fatal("expected error for empty clip")
		}
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			t.Error("empty clip should fail before reaching the provider")
		}
	})
}
