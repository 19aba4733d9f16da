package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/okrause/faunareel/internal/cache"
	"codeberg.org/okrause/faunareel/internal/cli"
	"codeberg.org/okrause/faunareel/internal/image"
	"codeberg.org/okrause/faunareel/internal/logging"
	"codeberg.org/okrause/faunareel/internal/pipeline"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	cfg := cli.BuildConfig(cmd, flags)
	logging.Init(cfg.LogLevel, cfg.LogPretty)

	// Handle --clear-cache flag
	if flags.ClearCache {
		store, err := cache.New(cfg.CacheDir)
		if err == nil {
			err = store.Clear()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to clear cache: %v\n", err)
		}
	}

	var subject string
	if len(args) > 0 {
		subject = args[0]
	}

	ctx := context.Background()
	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		return advise(err)
	}
	defer p.Close()

	result, err := p.Run(ctx, subject)
	if err != nil {
		return advise(err)
	}

	fmt.Printf("\nDone! Video saved to: %s\n", result.VideoPath)
	if result.DeliveryError != nil {
		fmt.Fprintf(os.Stderr, "Warning: delivery failed: %v\n", result.DeliveryError)
	}
	return nil
}

// advise appends a usage hint to the error classes a user can act on.
func advise(err error) error {
	var confErr *pipeline.ConfigurationError
	var noContentErr *image.NoContentError

	switch {
	case errors.As(err, &confErr):
		return fmt.Errorf("%w (keys can be set in the environment, a .env file or ~/.faunareel.yaml)", err)
	case errors.As(err, &noContentErr):
		return fmt.Errorf("%w (try a more common animal name)", err)
	}
	return err
}
