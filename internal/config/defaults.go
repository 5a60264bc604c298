package config

import (
	"fmt"
	"os"

	"github.com/hakim/phishscope/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Thresholds: models.Thresholds{
			Safe:       80,
			Suspicious: 60,
			Dangerous:  40,
		},
		Providers: ProvidersConfig{
			Heuristics: ProviderToggle{Enabled: true},
			SSL:        ProviderToggle{Enabled: true},
			Text:       ProviderToggle{Enabled: true},
			Favicon:    ProviderToggle{Enabled: true},
			Reputation: ReputationConfig{
				Enabled: true,
				Mode:    ReputationModeLive,
				// Credentials are empty on purpose: with no service
				// configured the reputation signal reports "no data".
				SafeBrowsing: APICredential{Enabled: false},
				VirusTotal:   APICredential{Enabled: false},
				PhishTank:    APICredential{Enabled: false},
			},
		},
		Heuristics: HeuristicsConfig{
			MaxSubdomains: 3,
			MaxURLLength:  100,
		},
		TrustedDomains: []string{},
		History: HistoryConfig{
			Path:      "phishscope.db",
			Retention: 100,
		},
		AnalysisTimeout: "10s",
	}
}

// WriteDefault writes a default configuration to the specified path
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
