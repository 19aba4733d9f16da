// Package config assembles the runtime configuration for a pipeline run.
// Values come from the viper config file, FAUNAREEL_* environment
// overrides and a handful of well-known credential variables. The
// resulting Config is built once at startup and passed by reference; no
// component reads viper on its own.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted by the facts and audio factories.
const (
	FactsOpenRouter = "openrouter"
	FactsGemini     = "gemini"
	AudioCoqui      = "coqui"
	AudioOpenAI     = "openai"
)

// Config carries every knob a single pipeline run needs.
type Config struct {
	// Fact generation
	FactsProvider string
	FactsModel    string
	OpenRouterKey string
	GeminiKey     string

	// Speech synthesis
	AudioProvider   string
	TTSModelDefault string
	TTSModelCloning string
	OpenAIKey       string
	OpenAITTSModel  string
	OpenAITTSVoice  string
	SpeakerWAV      string

	// Image sourcing
	UnsplashKey string
	MaxImages   int
	KeepImages  bool

	// Video assembly
	Width  int
	Height int
	FPS    int

	// Delivery
	ChatID          string
	WhatsAppBaseURL string
	WhatsAppSession string

	// Output layout
	AudioDir string
	ImageDir string
	VideoDir string

	// Cache and history
	CacheDir     string
	RefreshCache bool
	HistoryPath  string
	HistoryOff   bool

	// Run behaviour
	MinDuration time.Duration
	LogLevel    string
	LogPretty   bool
}

// SetDefaults registers the built-in defaults with viper. Called once
// before the config file is read.
func SetDefaults() {
	viper.SetDefault("facts.provider", FactsOpenRouter)
	viper.SetDefault("facts.model", "")
	viper.SetDefault("audio.provider", AudioCoqui)
	viper.SetDefault("audio.model_default", "tts_models/en/ljspeech/vits")
	viper.SetDefault("audio.model_cloning", "tts_models/multilingual/multi-dataset/xtts_v2")
	viper.SetDefault("audio.openai_model", "tts-1")
	viper.SetDefault("audio.openai_voice", "alloy")
	viper.SetDefault("image.max", 25)
	viper.SetDefault("video.width", 720)
	viper.SetDefault("video.height", 1280)
	viper.SetDefault("video.fps", 15)
	viper.SetDefault("whatsapp.api_url", "http://127.0.0.1:3000")
	viper.SetDefault("whatsapp.session", "default")
	viper.SetDefault("output.audio_dir", "output_audio")
	viper.SetDefault("output.image_dir", "output_images")
	viper.SetDefault("output.video_dir", "output_video")
	viper.SetDefault("cache.dir", ".cache")
	viper.SetDefault("history.path", "faunareel_history.db")
	viper.SetDefault("run.min_duration", 30)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", true)
}

// Load builds a Config from viper and the environment.
func Load() *Config {
	return &Config{
		FactsProvider: viper.GetString("facts.provider"),
		FactsModel:    viper.GetString("facts.model"),
		OpenRouterKey: keyFromEnvOrConfig("OPENROUTER_API_KEY", "facts.openrouter_key"),
		GeminiKey:     keyFromEnvOrConfig("GEMINI_API_KEY", "facts.gemini_key"),

		AudioProvider:   viper.GetString("audio.provider"),
		TTSModelDefault: viper.GetString("audio.model_default"),
		TTSModelCloning: viper.GetString("audio.model_cloning"),
		OpenAIKey:       keyFromEnvOrConfig("OPENAI_API_KEY", "audio.openai_key"),
		OpenAITTSModel:  viper.GetString("audio.openai_model"),
		OpenAITTSVoice:  viper.GetString("audio.openai_voice"),

		UnsplashKey: keyFromEnvOrConfig("UNSPLASH_ACCESS_KEY", "image.unsplash_key"),
		MaxImages:   viper.GetInt("image.max"),

		Width:  viper.GetInt("video.width"),
		Height: viper.GetInt("video.height"),
		FPS:    viper.GetInt("video.fps"),

		ChatID:          keyFromEnvOrConfig("WHATSAPP_CHAT_ID", "whatsapp.chat_id"),
		WhatsAppBaseURL: viper.GetString("whatsapp.api_url"),
		WhatsAppSession: viper.GetString("whatsapp.session"),

		AudioDir: viper.GetString("output.audio_dir"),
		ImageDir: viper.GetString("output.image_dir"),
		VideoDir: viper.GetString("output.video_dir"),

		CacheDir:    viper.GetString("cache.dir"),
		HistoryPath: viper.GetString("history.path"),

		MinDuration: time.Duration(viper.GetFloat64("run.min_duration") * float64(time.Second)),
		LogLevel:    viper.GetString("log.level"),
		LogPretty:   viper.GetBool("log.pretty"),
	}
}

// keyFromEnvOrConfig prefers the well-known environment variable and
// falls back to the config file entry.
func keyFromEnvOrConfig(envVar, configKey string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return viper.GetString(configKey)
}
