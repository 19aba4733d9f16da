package audio

import (
	"context"
	"fmt"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio generates audio from text and saves it to the specified file
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider string // Provider name: "coqui" or "openai"

	// Coqui-specific settings
	CoquiBinary  string // TTS CLI binary, default "tts"
	ModelDefault string // Model used without voice cloning
	ModelCloning string // Model used when a speaker sample is given
	SpeakerWAV   string // Reference sample for voice cloning (optional)

	// OpenAI-specific settings
	OpenAIKey   string
	OpenAIModel string // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice string // "alloy", "echo", "fable", "onyx", "nova", "shimmer"
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:     "coqui",
		CoquiBinary:  "tts",
		ModelDefault: "tts_models/en/ljspeech/vits",
		ModelCloning: "tts_models/multilingual/multi-dataset/xtts_v2",
		OpenAIModel:  "tts-1",
		OpenAIVoice:  "alloy",
	}
}

// NewProvider creates the appropriate audio provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "", "coqui":
		return NewCoquiProvider(config)

	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		if config.SpeakerWAV != "" {
			return nil, fmt.Errorf("voice cloning requires the coqui provider")
		}
		return NewOpenAIProvider(config)

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}
