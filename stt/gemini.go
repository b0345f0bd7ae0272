package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/voxtype/voxtype/snd"
)

const geminiSystemPrompt = `Transcribe this dictated audio as accurately as possible, with good grammar and punctuation. Reply with the transcription only, no commentary.`

// GeminiTranscriber uploads clips to the Gemini file API and asks a
// generative model to transcribe them. Slower than a dedicated speech
// endpoint but useful where a Google key is the only one at hand.
type GeminiTranscriber struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *log.Logger
}

// NewGeminiTranscriber creates the Gemini-backed transcriber.
func NewGeminiTranscriber(ctx context.Context, apiKey, modelName string, logger *log.Logger) (*GeminiTranscriber, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	model := client.GenerativeModel(modelName)
	model.GenerationConfig.SetTemperature(0.1)
	model.GenerationConfig.SetTopP(1.0)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(geminiSystemPrompt)},
	}

	return &GeminiTranscriber{client: client, model: model, logger: logger}, nil
}

// Close releases the underlying API client.
func (g *GeminiTranscriber) Close() error {
	return g.client.Close()
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, clip snd.Clip, hint string) (Result, error) {
	wavData, err := snd.EncodeWAV(clip)
	if err != nil {
		return Result{}, fmt.Errorf("encode clip: %w", err)
	}

	g.logger.Debug("uploading clip",
		"duration", clip.Duration().Round(time.Millisecond),
		"bytes", len(wavData))

	file, err := g.client.UploadFile(ctx, "", bytes.NewReader(wavData), &genai.UploadFileOptions{
		MIMEType: "audio/wav",
	})
	if err != nil {
		return Result{}, &RequestError{Provider: "gemini", Err: fmt.Errorf("upload: %w", err)}
	}
	defer func() {
		if err := g.client.DeleteFile(ctx, file.Name); err != nil {
			g.logger.Warn("failed to delete uploaded clip", "file", file.Name, "error", err)
		}
	}()

	parts := []genai.Part{
		genai.FileData{URI: file.URI, MIMEType: "audio/wav"},
	}
	if hint != "" {
		parts = append(parts, genai.Text("Domain vocabulary that may occur: "+hint))
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return Result{}, &RequestError{Provider: "gemini", Err: err}
	}

	return Result{Text: responseText(resp), Provider: "gemini"}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
