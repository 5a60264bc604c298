package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/hakim/phishscope/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "phishscope",
	Short: "Phishing risk scoring for URLs and pages",
	Long: `PhishScope scores URLs and captured pages for phishing risk by combining
URL heuristics, SSL posture, third-party reputation lookups, page-text
analysis, and favicon fingerprinting into a single 0-100 score with
human-readable indicators.

Analyses are stored in a local history database so past verdicts can be
reviewed and compared over time.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		skipConfig := map[string]bool{
			"init":    true,
			"check":   true,
			"help":    true,
			"version": true,
		}

		if skipConfig[cmd.Name()] {
			return nil
		}

		loaded, err := config.Load(cfgFile)
		if err != nil {
			// No config file at all: run with defaults. A file that exists
			// but fails to parse or validate is a hard error; scoring must
			// never silently fall back past a broken config.
			var notFound viper.ConfigFileNotFoundError
			if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
				if verbose {
					fmt.Printf("[*] No config file found (%v), using defaults\n", err)
				}
				cfg = config.DefaultConfig()
				return nil
			}
			return fmt.Errorf("failed to load config: %w", err)
		}

		cfg = loaded
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "phishscope.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")

	// Version flag
	rootCmd.Version = "0.1.0-dev"
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
