package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/okrause/faunareel/internal"
	"codeberg.org/okrause/faunareel/internal/config"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "faunareel [subject]",
		Short: "Animal facts video generator",
		Long: `faunareel turns an animal into a narrated slideshow video.

It asks a language model for a short animal description, downloads
matching photos from Wikimedia Commons (falling back to Unsplash),
narrates the text with a local Coqui TTS voice or OpenAI TTS, and
assembles everything into a vertical video with ffmpeg. The finished
video can be delivered to a WhatsApp chat.

Examples:
  faunareel                          # Pick an animal and build a video
  faunareel "sea otter"              # Build a video for a specific animal
  faunareel --speaker-wav my.wav     # Clone the narration voice from a sample`,
		Args:         cobra.MaximumNArgs(1),
		Version:      internal.Version,
		SilenceUsage: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.faunareel.yaml)")

	// Local flags
	cmd.Flags().StringVar(&flags.SpeakerWAV, "speaker-wav", "", "Reference WAV sample for voice cloning")
	cmd.Flags().BoolVar(&flags.KeepImages, "keep-images", false, "Keep downloaded images after video creation (default: delete)")
	cmd.Flags().Var(&flags.Resolution, "output-resolution", "Output video resolution as WIDTHxHEIGHT")
	cmd.Flags().IntVar(&flags.MaxImages, "max-images", flags.MaxImages, "Maximum number of images to download")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "Bypass cached narrations and image search results")
	cmd.Flags().BoolVar(&flags.ClearCache, "clear-cache", false, "Remove all cached results before the run")
	cmd.Flags().BoolVar(&flags.NoHistory, "no-history", false, "Do not read or record subject history")
	cmd.Flags().Float64Var(&flags.MinDuration, "min-duration", flags.MinDuration, "Minimum narration length in seconds (0 disables the check)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("image.max", cmd.Flags().Lookup("max-images"))
	viper.BindPFlag("run.min_duration", cmd.Flags().Lookup("min-duration"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// API keys commonly live in a .env file; a missing file is fine.
	_ = godotenv.Load()

	config.SetDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in home directory and the working directory
		// with name ".faunareel" (without extension)
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".faunareel")
	}

	// Environment variables
	viper.SetEnvPrefix("FAUNAREEL")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// BuildConfig merges parsed flag values into the loaded configuration.
// Flags bound to viper keys arrive through config.Load; the rest are
// applied here, resolution only when the flag was actually given so the
// config file keeps authority over the default.
func BuildConfig(cmd *cobra.Command, flags *Flags) *config.Config {
	cfg := config.Load()

	cfg.SpeakerWAV = flags.SpeakerWAV
	cfg.KeepImages = flags.KeepImages
	cfg.RefreshCache = flags.Refresh
	cfg.HistoryOff = flags.NoHistory

	if cmd.Flags().Changed("output-resolution") {
		cfg.Width = flags.Resolution.Width
		cfg.Height = flags.Resolution.Height
	}

	return cfg
}
