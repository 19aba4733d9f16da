package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// CoquiConfig holds configuration for the Coqui TTS engine
type CoquiConfig struct {
	Binary       string // TTS CLI binary name or path (default: "tts")
	ModelDefault string // Model used for the default voice
	ModelCloning string // Multilingual model used for voice cloning
	SpeakerWAV   string // Reference sample for voice cloning (optional)
	Language     string // Language passed to the cloning model (default: "en")
}

// DefaultCoquiConfig returns the default configuration
func DefaultCoquiConfig() *CoquiConfig {
	return &CoquiConfig{
		Binary:       "tts",
		ModelDefault: "tts_models/en/ljspeech/vits",
		ModelCloning: "tts_models/multilingual/multi-dataset/xtts_v2",
		Language:     "en",
	}
}

// Coqui provides an interface to the locally installed Coqui TTS engine.
// Synthesis runs the CLI synchronously; with a large model the call can
// take minutes on CPU.
type Coqui struct {
	config *CoquiConfig
}

// NewCoqui creates a new Coqui instance with the given configuration
func NewCoqui(config *CoquiConfig) (*Coqui, error) {
	if config == nil {
		config = DefaultCoquiConfig()
	}
	if config.Binary == "" {
		config.Binary = "tts"
	}
	if config.Language == "" {
		config.Language = "en"
	}

	if err := checkCoquiInstalled(config.Binary); err != nil {
		return nil, err
	}

	return &Coqui{config: config}, nil
}

// GenerateAudio synthesizes the given text into outputFile. When a
// speaker sample is configured and exists on disk, the cloning model is
// used and conditioned on it; otherwise the default voice model speaks.
func (c *Coqui) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	args := []string{
		"--text", text,
		"--out_path", outputFile,
	}

	if c.cloningRequested() {
		args = append(args,
			"--model_name", c.config.ModelCloning,
			"--speaker_wav", c.config.SpeakerWAV,
			"--language_idx", c.config.Language,
		)
	} else {
		args = append(args, "--model_name", c.config.ModelDefault)
	}

	cmd := exec.CommandContext(ctx, c.config.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\nOutput: %s", c.config.Binary, err, tail(output, 2048))
	}

	info, err := os.Stat(outputFile)
	if err != nil {
		return fmt.Errorf("%s produced no output file: %w", c.config.Binary, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s produced an empty output file", c.config.Binary)
	}

	return nil
}

// cloningRequested reports whether a usable speaker sample is configured.
func (c *Coqui) cloningRequested() bool {
	if c.config.SpeakerWAV == "" {
		return false
	}
	_, err := os.Stat(c.config.SpeakerWAV)
	return err == nil
}

// checkCoquiInstalled verifies that the TTS CLI is available on the system
func checkCoquiInstalled(binary string) error {
	cmd := exec.Command(binary, "--help")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s is not installed or not in PATH: %w", binary, err)
	}
	return nil
}

// tail returns at most n trailing bytes of process output, enough for the
// actual error without the model download progress noise.
func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return "..." + string(b[len(b)-n:])
}
