package audio

import (
	"context"
)

// CoquiProvider implements the Provider interface for the Coqui TTS CLI
type CoquiProvider struct {
	coqui *Coqui
}

// NewCoquiProvider creates a new Coqui provider from common configuration
func NewCoquiProvider(config *Config) (Provider, error) {
	coquiConfig := DefaultCoquiConfig()
	if config.CoquiBinary != "" {
		coquiConfig.Binary = config.CoquiBinary
	}
	if config.ModelDefault != "" {
		coquiConfig.ModelDefault = config.ModelDefault
	}
	if config.ModelCloning != "" {
		coquiConfig.ModelCloning = config.ModelCloning
	}
	coquiConfig.SpeakerWAV = config.SpeakerWAV

	coqui, err := NewCoqui(coquiConfig)
	if err != nil {
		return nil, err
	}

	return &CoquiProvider{coqui: coqui}, nil
}

// GenerateAudio synthesizes the narration after cleaning it up
func (p *CoquiProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if err := ValidateNarration(text); err != nil {
		return err
	}
	return p.coqui.GenerateAudio(ctx, CleanNarration(text), outputFile)
}

// Name returns the provider name
func (p *CoquiProvider) Name() string {
	return "coqui"
}

// IsAvailable checks if the TTS CLI is installed
func (p *CoquiProvider) IsAvailable() error {
	return checkCoquiInstalled(p.coqui.config.Binary)
}
