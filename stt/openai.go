package stt

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/voxtype/voxtype/snd"
)

// WhisperTranscriber sends clips to the OpenAI audio transcription API.
// The vocabulary hint rides in the prompt parameter, which Whisper uses
// to bias spelling toward the listed terms.
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
	logger   *log.Logger
}

// WhisperOption adjusts the transcriber at construction.
type WhisperOption func(*whisperSettings)

type whisperSettings struct {
	baseURL  string
	model    string
	language string
}

// WithBaseURL points the client at an alternate endpoint. Used for tests
// and self-hosted Whisper-compatible servers.
func WithBaseURL(url string) WhisperOption {
	return func(s *whisperSettings) { s.baseURL = url }
}

// WithModel overrides the default whisper-1 model.
func WithModel(model string) WhisperOption {
	return func(s *whisperSettings) { s.model = model }
}

// WithLanguage fixes the transcription language instead of autodetecting.
func WithLanguage(lang string) WhisperOption {
	return func(s *whisperSettings) { s.language = lang }
}

// NewWhisperTranscriber creates the OpenAI-backed transcriber.
func NewWhisperTranscriber(apiKey string, logger *log.Logger, opts ...WhisperOption) *WhisperTranscriber {
	settings := whisperSettings{model: openai.Whisper1}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg := openai.DefaultConfig(apiKey)
	if settings.baseURL != "" {
		cfg.BaseURL = settings.baseURL
	}

	return &WhisperTranscriber{
		client:   openai.NewClientWithConfig(cfg),
		model:    settings.model,
		language: settings.language,
		logger:   logger,
	}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, clip snd.Clip, hint string) (Result, error) {
	wavData, err := snd.EncodeWAV(clip)
	if err != nil {
		return Result{}, fmt.Errorf("encode clip: %w", err)
	}

	w.logger.Debug("uploading clip",
		"model", w.model,
		"duration", clip.Duration().Round(time.Millisecond),
		"bytes", len(wavData),
		"hint_len", len(hint))

	start := time.Now()
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "recording.wav",
		Reader:   bytes.NewReader(wavData),
		Prompt:   hint,
		Language: w.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return Result{}, &RequestError{Provider: "openai", Err: err}
	}

	w.logger.Debug("transcription received",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"chars", len(resp.Text))

	return Result{Text: resp.Text, Provider: "openai"}, nil
}
