package main

import (
	"fmt"
	"os"

	"github.com/hakim/phishscope/internal/config"
	"github.com/hakim/phishscope/internal/storage"
	"github.com/spf13/cobra"
)

var (
	initForce bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize phishscope with default configuration",
	Long: `Creates a default configuration file (phishscope.yaml) and sets up the
history database for storing analysis results.

This is typically the first command you run when setting up phishscope.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "phishscope.yaml"
		if initDir != "." {
			configPath = fmt.Sprintf("%s/phishscope.yaml", initDir)
		}

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists at %s. Use --force to overwrite", configPath)
		}

		// Create default config
		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Printf("Created %s with default configuration\n", configPath)

		// Load the config we just created to get paths
		created, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Initialize history database
		store, err := storage.NewStore(created.History.Path, created.History.Retention)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()
		fmt.Printf("Initialized history database: %s\n", created.History.Path)

		// Print success message
		fmt.Println()
		fmt.Println("PhishScope initialized successfully!")
		fmt.Println("Run 'phishscope check' to verify your configuration, then")
		fmt.Println("'phishscope analyze -u <url>' to score your first URL.")
		fmt.Println()
		fmt.Println("Reputation lookups need API keys; add them under providers.reputation")
		fmt.Println("in phishscope.yaml, or set mode to 'simulated' for offline use.")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "output directory")
	rootCmd.AddCommand(initCmd)
}
