package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/voxtype/voxtype/capture"
	"github.com/voxtype/voxtype/config"
	"github.com/voxtype/voxtype/hotkey"
	"github.com/voxtype/voxtype/inject"
	"github.com/voxtype/voxtype/session"
	"github.com/voxtype/voxtype/setup"
	"github.com/voxtype/voxtype/snd"
	"github.com/voxtype/voxtype/stt"
	"github.com/voxtype/voxtype/txt"
	"github.com/voxtype/voxtype/vad"
	"github.com/voxtype/voxtype/vocab"
)

var (
	logger     *log.Logger
	micLogger  *log.Logger
	keyLogger  *log.Logger
	sttLogger  *log.Logger
	putLogger  *log.Logger
	vocbLogger *log.Logger
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("provider", "", "Transcription provider (openai or gemini)")
	rootCmd.PersistentFlags().String("openai-api-key", "", "OpenAI API key")
	rootCmd.PersistentFlags().String("gemini-api-key", "", "Gemini API key")
	rootCmd.PersistentFlags().String("model", "", "Override the provider's default model")
	rootCmd.PersistentFlags().String("language", "", "Fix the transcription language instead of autodetecting")
	rootCmd.PersistentFlags().String("hotkey", "", "Global key combination, e.g. ctrl+shift+space")
	rootCmd.PersistentFlags().Int("device", -1, "Audio input device index (-1 = default device)")
	rootCmd.PersistentFlags().Int("sample-rate", 16000, "Capture sample rate in Hz")
	rootCmd.PersistentFlags().Float64("silence-threshold", 500, "RMS amplitude below which a frame counts as silence")
	rootCmd.PersistentFlags().Float64("silence-timeout", 1.0, "Seconds of continuous silence that stop a recording")
	rootCmd.PersistentFlags().String("vocab", "", "Vocabulary file biasing the transcription")
	rootCmd.PersistentFlags().String("paste-command", "", "Command run after the transcript is on the clipboard")

	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("openai_api_key", rootCmd.PersistentFlags().Lookup("openai-api-key"))
	viper.BindPFlag("gemini_api_key", rootCmd.PersistentFlags().Lookup("gemini-api-key"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("language"))
	viper.BindPFlag("hotkey", rootCmd.PersistentFlags().Lookup("hotkey"))
	viper.BindPFlag("audio_device_index", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("sample_rate", rootCmd.PersistentFlags().Lookup("sample-rate"))
	viper.BindPFlag("silence_threshold", rootCmd.PersistentFlags().Lookup("silence-threshold"))
	viper.BindPFlag("silence_timeout", rootCmd.PersistentFlags().Lookup("silence-timeout"))
	viper.BindPFlag("vocabulary_file", rootCmd.PersistentFlags().Lookup("vocab"))
	viper.BindPFlag("paste_command", rootCmd.PersistentFlags().Lookup("paste-command"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(vocabCmd)
	rootCmd.AddCommand(setupCmd)
}

func initConfig() {
	_ = godotenv.Load()

	config.SetDefaults()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.config/voxtype")
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	logger = log.New(os.Stderr)
	if viper.GetBool("debug") {
		logger.SetLevel(log.DebugLevel)
	}

	micLogger = logger.With().WithPrefix("mic")
	keyLogger = logger.With().WithPrefix("key")
	sttLogger = logger.With().WithPrefix("stt")
	putLogger = logger.With().WithPrefix("put")
	vocbLogger = logger.With().WithPrefix("vocab")
}

var rootCmd = &cobra.Command{
	Use:   "voxtype",
	Short: "Hotkey-driven voice typing",
	Long:  "voxtype records speech on a global hotkey, stops on silence, transcribes, and types the result into the focused application.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Listen for the hotkey and type transcripts",
	Run:   runRun,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio input devices",
	Run:   runDevices,
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file.wav>",
	Short: "Transcribe an existing WAV file",
	Args:  cobra.ExactArgs(1),
	Run:   runTranscribeFile,
}

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Show the vocabulary hint that would be sent",
	Run:   runVocab,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively configure providers and the hotkey",
	Run: func(cmd *cobra.Command, args []string) {
		setup.RunSetup(logger)
	},
}

var (
	idleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#27c93f"))
	recordingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f56"))
	busyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffbd2e"))
)

func runRun(cmd *cobra.Command, args []string) {
	cfg, err := config.FromViper()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	combo, err := hotkey.ParseCombo(cfg.Hotkey)
	if err != nil {
		logger.Fatal("invalid hotkey", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hint := vocab.Load(cfg.VocabularyPath, cfg.VocabularyBudget, vocbLogger).Hint()

	transcriber, closeTranscriber, err := newTranscriber(ctx, cfg)
	if err != nil {
		logger.Fatal("cannot create transcriber", "error", err)
	}
	defer closeTranscriber()

	source := capture.NewPortAudioSource(cfg.DeviceIndex, cfg.SampleRate, cfg.FrameDuration(), micLogger)
	monitor := vad.NewMonitor(cfg.SilenceThreshold)
	injector := inject.NewClipboardInjector(cfg.PasteCommand, putLogger)

	ctrl := session.New(session.Config{
		SampleRate:     cfg.SampleRate,
		SilenceTimeout: cfg.SilenceTimeout(),
		MinDuration:    cfg.MinRecording(),
	}, source, monitor, transcriber, injector, hint, logger.With().WithPrefix("rec"))

	ctrl.OnState = func(s session.State) {
		switch s {
		case session.Recording:
			fmt.Println(recordingStyle.Render("● recording — speak now"))
		case session.Finalizing:
			fmt.Println(busyStyle.Render("… transcribing"))
		case session.Idle:
			fmt.Println(idleStyle.Render("○ ready — press " + combo.String()))
		}
	}

	commands := ctrl.Commands()
	dispatcher := hotkey.NewDispatcher(combo, func() {
		select {
		case commands <- session.Toggle:
		default:
			keyLogger.Debug("press already pending, dropped")
		}
	}, keyLogger)

	if err := dispatcher.Start(); err != nil {
		logger.Fatal("hotkey registration failed", "error", err)
	}
	defer dispatcher.Stop()

	logger.Info("voxtype ready",
		"hotkey", combo.String(),
		"provider", cfg.Provider,
		"silence_timeout", cfg.SilenceTimeout())

	if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("session controller failed", "error", err)
	}
	logger.Info("shutting down")
}

func runDevices(cmd *cobra.Command, args []string) {
	devices, err := capture.ListDevices()
	if err != nil {
		logger.Fatal("cannot list devices", "error", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Index", "Name", "Host API", "Channels", "Default Rate"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)

	for _, d := range devices {
		table.Append([]string{
			fmt.Sprintf("%d", d.Index),
			d.Name,
			d.HostAPI,
			fmt.Sprintf("%d", d.MaxInputChannels),
			fmt.Sprintf("%.0f Hz", d.DefaultSampleRate),
		})
	}
	table.Render()
}

func runTranscribeFile(cmd *cobra.Command, args []string) {
	cfg, err := config.FromViper()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	path := args[0]
	rate, duration, err := snd.ProbeFile(path)
	if err != nil {
		logger.Fatal("cannot read audio file", "error", err)
	}
	logger.Info("transcribing file", "path", path, "rate", rate, "duration", duration.Round(time.Millisecond))

	clip, err := snd.DecodeFile(path)
	if err != nil {
		logger.Fatal("cannot decode audio file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hint := vocab.Load(cfg.VocabularyPath, cfg.VocabularyBudget, vocbLogger).Hint()
	transcriber, closeTranscriber, err := newTranscriber(ctx, cfg)
	if err != nil {
		logger.Fatal("cannot create transcriber", "error", err)
	}
	defer closeTranscriber()

	result, err := transcriber.Transcribe(ctx, clip, hint)
	if err != nil {
		logger.Fatal("transcription failed", "error", err)
	}

	fmt.Println(txt.CleanTranscript(result.Text))
}

func runVocab(cmd *cobra.Command, args []string) {
	cfg, err := config.FromViper()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	v := vocab.Load(cfg.VocabularyPath, cfg.VocabularyBudget, vocbLogger)
	hint := v.Hint()
	if hint == "" {
		fmt.Println("(no vocabulary hint)")
		return
	}
	fmt.Println(hint)
	logger.Info("vocabulary hint",
		"terms", len(v.Terms),
		"tokens", v.TokenEstimate(),
		"budget", cfg.VocabularyBudget)
}

func newTranscriber(ctx context.Context, cfg config.Config) (stt.Transcriber, func(), error) {
	switch cfg.Provider {
	case "gemini":
		tr, err := stt.NewGeminiTranscriber(ctx, cfg.GeminiAPIKey, cfg.Model, sttLogger)
		if err != nil {
			return nil, nil, err
		}
		return tr, func() { _ = tr.Close() }, nil
	default:
		opts := []stt.WhisperOption{}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, stt.WithBaseURL(cfg.OpenAIBaseURL))
		}
		if cfg.Model != "" {
			opts = append(opts, stt.WithModel(cfg.Model))
		}
		if cfg.Language != "" {
			opts = append(opts, stt.WithLanguage(cfg.Language))
		}
		return stt.NewWhisperTranscriber(cfg.OpenAIAPIKey, sttLogger, opts...), func() {}, nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
