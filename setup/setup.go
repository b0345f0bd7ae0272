package setup

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// RunSetup interactively collects provider credentials and the hotkey and
// writes them to the config file.
func RunSetup(logger *log.Logger) {
	logger.Info("starting voxtype setup")

	provider := viper.GetString("provider")
	openAIKey := viper.GetString("openai_api_key")
	geminiKey := viper.GetString("gemini_api_key")
	combo := viper.GetString("hotkey")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription provider").
				Options(
					huh.NewOption("OpenAI Whisper", "openai"),
					huh.NewOption("Google Gemini", "gemini"),
				).
				Value(&provider),
			huh.NewInput().
				Title("OpenAI API key (leave empty if unused)").
				Value(&openAIKey),
			huh.NewInput().
				Title("Gemini API key (leave empty if unused)").
				Value(&geminiKey),
			huh.NewInput().
				Title("Global hotkey").
				Description("e.g. ctrl+shift+space").
				Value(&combo),
		),
	)

	if err := form.Run(); err != nil {
		logger.Fatal("setup aborted", "error", err)
	}

	viper.Set("provider", provider)
	viper.Set("openai_api_key", openAIKey)
	viper.Set("gemini_api_key", geminiKey)
	viper.Set("hotkey", combo)

	if err := viper.SafeWriteConfig(); err != nil {
		if err := viper.WriteConfig(); err != nil {
			logger.Fatal("error saving configuration", "error", err)
		}
	}

	logger.Info("setup completed")
}
