package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)
}

func TestFromViperDefaults(t *testing.T) {
	resetViper(t)
	viper.Set("openai_api_key", "sk-test")

	cfg, err := FromViper()
	if err != nil {
		t.Fatalf("FromViper failed: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.SampleRate != 16000 {
		t.Errorf("sample_rate = %d", cfg.SampleRate)
	}
	if cfg.SilenceTimeout() != time.Second {
		t.Errorf("silence timeout = %v", cfg.SilenceTimeout())
	}
	if cfg.FrameDuration() != 200*time.Millisecond {
		t.Errorf("frame duration = %v", cfg.FrameDuration())
	}
	if cfg.MinRecording() != 500*time.Millisecond {
		t.Errorf("min recording = %v", cfg.MinRecording())
	}
	if cfg.VocabularyBudget != 224 {
		t.Errorf("vocabulary budget = %d", cfg.VocabularyBudget)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Provider:          "openai",
			OpenAIAPIKey:      "sk-test",
			Hotkey:            "ctrl+shift+space",
			SampleRate:        16000,
			FrameDurationMS:   200,
			SilenceThreshold:  500,
			SilenceTimeoutSec: 1,
			MinRecordingSec:   0.5,
			VocabularyBudget:  224,
		}
	}

	t.Run("Valid", func(t *testing.T) {
		cfg := base()
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("MissingOpenAIKey", func(t *testing.T) {
		cfg := base()
		cfg.OpenAIAPIKey = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("GeminiNeedsGeminiKey", func(t *testing.T) {
		cfg := base()
		cfg.Provider = "gemini"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error without gemini key")
		}
		cfg.GeminiAPIKey = "g-test"
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		cfg := base()
		cfg.Provider = "whispercpp"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("ZeroSilenceThreshold", func(t *testing.T) {
		// At threshold 0 every frame would classify as speech and the
		// silence timeout could never fire.
		cfg := base()
		cfg.SilenceThreshold = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("BadFrameDuration", func(t *testing.T) {
		cfg := base()
		cfg.FrameDurationMS = 5
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("EmptyHotkey", func(t *testing.T) {
		cfg := base()
		cfg.Hotkey = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})
}

func TestZeroSilenceTimeoutAllowed(t *testing.T) {
	resetViper(t)
	viper.Set("openai_api_key", "sk-test")
	viper.Set("silence_timeout", 0)

	cfg, err := FromViper()
	if err != nil {
		t.Fatalf("FromViper failed: %v", err)
	}
	if cfg.SilenceTimeout() != 0 {
		t.Errorf("silence timeout = %v, want 0", cfg.SilenceTimeout())
	}
}
