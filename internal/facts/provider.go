package facts

import (
	"context"
	"fmt"
)

// Provider defines the interface for fact-generation backends.
type Provider interface {
	// SuggestSubject asks the service for one animal name, avoiding the
	// given previously used subjects.
	SuggestSubject(ctx context.Context, avoid []string) (string, error)

	// Describe returns a single-paragraph narration about the subject.
	Describe(ctx context.Context, subject string) (string, error)

	// Name returns the provider name.
	Name() string
}

// Config holds common configuration for fact providers.
type Config struct {
	Provider string // Provider name: "openrouter" or "gemini"
	Model    string // Model identifier; empty selects the provider default

	OpenRouterKey string
	GeminiKey     string
}

// NewProvider creates the appropriate fact provider based on configuration.
func NewProvider(ctx context.Context, config *Config) (Provider, error) {
	if config == nil {
		return nil, fmt.Errorf("fact provider configuration is required")
	}

	switch config.Provider {
	case "", "openrouter":
		if config.OpenRouterKey == "" {
			return nil, fmt.Errorf("OpenRouter API key is required")
		}
		return NewOpenRouterProvider(config.OpenRouterKey, config.Model), nil

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(ctx, config.GeminiKey, config.Model)

	default:
		return nil, fmt.Errorf("unknown fact provider: %s", config.Provider)
	}
}
