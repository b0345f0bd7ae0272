// Package config resolves the tool's settings from config file, flags,
// and environment through viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved configuration.
type Config struct {
	// Provider selects the transcription backend: "openai" or "gemini".
	Provider     string
	OpenAIAPIKey string
	// OpenAIBaseURL points at a Whisper-compatible endpoint; empty means
	// the official API.
	OpenAIBaseURL string
	GeminiAPIKey  string
	Model         string
	Language      string

	Hotkey      string
	DeviceIndex int
	SampleRate  int
	// FrameDuration is how much audio each classification window holds.
	// Short enough that silence is noticed within one timeout, long
	// enough to amortize the level computation.
	FrameDurationMS  int
	SilenceThreshold float64
	// SilenceTimeoutSec is the continuous silence, in seconds, that ends
	// a recording.
	SilenceTimeoutSec float64
	// MinRecordingSec is the shortest recording worth sending out.
	MinRecordingSec float64

	VocabularyPath   string
	VocabularyBudget int

	// PasteCommand is run after the transcript lands on the clipboard,
	// e.g. "xdotool key ctrl+v". Empty leaves pasting to the user.
	PasteCommand string
}

// SetDefaults installs defaults into viper. Called once before flags and
// config files are merged in.
func SetDefaults() {
	viper.SetDefault("provider", "openai")
	viper.SetDefault("model", "")
	viper.SetDefault("language", "")
	viper.SetDefault("hotkey", "ctrl+shift+space")
	viper.SetDefault("audio_device_index", -1)
	viper.SetDefault("sample_rate", 16000)
	viper.SetDefault("frame_duration_ms", 200)
	viper.SetDefault("silence_threshold", 500)
	viper.SetDefault("silence_timeout", 1.0)
	viper.SetDefault("min_recording", 0.5)
	viper.SetDefault("vocabulary_file", "")
	viper.SetDefault("vocabulary_budget", 224)
	viper.SetDefault("paste_command", "")
}

// FromViper materializes and validates the configuration.
func FromViper() (Config, error) {
	cfg := Config{
		Provider:          viper.GetString("provider"),
		OpenAIAPIKey:      viper.GetString("openai_api_key"),
		OpenAIBaseURL:     viper.GetString("openai_base_url"),
		GeminiAPIKey:      viper.GetString("gemini_api_key"),
		Model:             viper.GetString("model"),
		Language:          viper.GetString("language"),
		Hotkey:            viper.GetString("hotkey"),
		DeviceIndex:       viper.GetInt("audio_device_index"),
		SampleRate:        viper.GetInt("sample_rate"),
		FrameDurationMS:   viper.GetInt("frame_duration_ms"),
		SilenceThreshold:  viper.GetFloat64("silence_threshold"),
		SilenceTimeoutSec: viper.GetFloat64("silence_timeout"),
		MinRecordingSec:   viper.GetFloat64("min_recording"),
		VocabularyPath:    viper.GetString("vocabulary_file"),
		VocabularyBudget:  viper.GetInt("vocabulary_budget"),
		PasteCommand:      viper.GetString("paste_command"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside a
// recording session.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai_api_key is required for the openai provider")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini_api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("provider must be openai or gemini, got %q", c.Provider)
	}

	if c.Hotkey == "" {
		return fmt.Errorf("hotkey cannot be empty")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.FrameDurationMS < 10 || c.FrameDurationMS > 1000 {
		return fmt.Errorf("frame_duration_ms must be between 10 and 1000, got %d", c.FrameDurationMS)
	}
	// At zero every frame meets the threshold, classifies as speech, and
	// the silence timeout can never fire.
	if c.SilenceThreshold <= 0 {
		return fmt.Errorf("silence_threshold must be positive, got %f", c.SilenceThreshold)
	}
	if c.MinRecordingSec < 0 {
		return fmt.Errorf("min_recording cannot be negative, got %f", c.MinRecordingSec)
	}
	if c.VocabularyBudget <= 0 {
		return fmt.Errorf("vocabulary_budget must be positive, got %d", c.VocabularyBudget)
	}
	return nil
}

// FrameDuration returns the classification window as a duration.
func (c *Config) FrameDuration() time.Duration {
	return time.Duration(c.FrameDurationMS) * time.Millisecond
}

// SilenceTimeout returns the silence timeout as a duration.
func (c *Config) SilenceTimeout() time.Duration {
	return time.Duration(c.SilenceTimeoutSec * float64(time.Second))
}

// MinRecording returns the minimum recording length as a duration.
func (c *Config) MinRecording() time.Duration {
	return time.Duration(c.MinRecordingSec * float64(time.Second))
}
