package cli

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/okrause/faunareel/internal/config"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "faunareel [subject]" {
		t.Errorf("Expected Use to be 'faunareel [subject]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Animal facts video generator") {
		t.Errorf("Expected Short description to contain 'Animal facts video generator'")
	}

	// Test that flags are set up
	flagTests := []struct {
		name     string
		expected bool
	}{
		{"config", true},
		{"speaker-wav", true},
		{"keep-images", true},
		{"output-resolution", true},
		{"max-images", true},
		{"refresh", true},
		{"clear-cache", true},
		{"no-history", true},
		{"min-duration", true},
	}

	for _, tt := range flagTests {
		t.Run("flag_"+tt.name, func(t *testing.T) {
			var flag *pflag.Flag
			if tt.name == "config" {
				flag = cmd.PersistentFlags().Lookup(tt.name)
			} else {
				flag = cmd.Flags().Lookup(tt.name)
			}
			if flag == nil && tt.expected {
				t.Errorf("Expected flag %s to exist", tt.name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	// Test default values
	resolutionFlag := cmd.Flags().Lookup("output-resolution")
	if resolutionFlag == nil {
		t.Fatal("output-resolution flag not found")
	}
	if resolutionFlag.DefValue != "720x1280" {
		t.Errorf("Expected default resolution to be 720x1280, got %s", resolutionFlag.DefValue)
	}

	maxImagesFlag := cmd.Flags().Lookup("max-images")
	if maxImagesFlag == nil {
		t.Fatal("max-images flag not found")
	}
	if maxImagesFlag.DefValue != "25" {
		t.Errorf("Expected default max-images to be 25, got %s", maxImagesFlag.DefValue)
	}
}

func TestInitConfig(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	viper.Reset()
	InitConfig("")

	// Test environment variable prefix
	os.Setenv("FAUNAREEL_TEST_VAR", "test-value")
	defer os.Unsetenv("FAUNAREEL_TEST_VAR")

	if viper.GetString("test_var") != "test-value" {
		t.Error("Environment variable not properly loaded")
	}

	// Defaults registered by InitConfig
	if viper.GetString("facts.provider") != config.FactsOpenRouter {
		t.Errorf("facts.provider default = %q, want %q", viper.GetString("facts.provider"), config.FactsOpenRouter)
	}
	if viper.GetInt("video.width") != 720 {
		t.Errorf("video.width default = %d, want 720", viper.GetInt("video.width"))
	}
}

func TestBuildConfig(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	viper.Reset()
	config.SetDefaults()

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if err := cmd.ParseFlags([]string{
		"--keep-images",
		"--refresh",
		"--no-history",
		"--speaker-wav", "sample.wav",
		"--output-resolution", "1080x1920",
		"--max-images", "5",
		"--min-duration", "10",
	}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	cfg := BuildConfig(cmd, flags)

	if !cfg.KeepImages {
		t.Error("KeepImages not carried into the config")
	}
	if !cfg.RefreshCache {
		t.Error("Refresh not carried into the config")
	}
	if !cfg.HistoryOff {
		t.Error("NoHistory not carried into the config")
	}
	if cfg.SpeakerWAV != "sample.wav" {
		t.Errorf("SpeakerWAV = %q, want %q", cfg.SpeakerWAV, "sample.wav")
	}
	if cfg.Width != 1080 || cfg.Height != 1920 {
		t.Errorf("resolution = %dx%d, want 1080x1920", cfg.Width, cfg.Height)
	}
	if cfg.MaxImages != 5 {
		t.Errorf("MaxImages = %d, want 5 from the bound flag", cfg.MaxImages)
	}
	if cfg.MinDuration.Seconds() != 10 {
		t.Errorf("MinDuration = %v, want 10s from the bound flag", cfg.MinDuration)
	}
}

func TestBuildConfigDefaultResolution(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	viper.Reset()
	config.SetDefaults()
	viper.Set("video.width", 480)
	viper.Set("video.height", 854)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	// Without the flag, the config file resolution must win
	cfg := BuildConfig(cmd, flags)
	if cfg.Width != 480 || cfg.Height != 854 {
		t.Errorf("resolution = %dx%d, want config file 480x854", cfg.Width, cfg.Height)
	}
}
