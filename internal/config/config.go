package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hakim/phishscope/internal/models"
	"github.com/spf13/viper"
)

// ErrConfig marks a rejected configuration. A failed update must leave the
// previously valid configuration in effect; Load never returns a Config
// alongside a non-nil error.
var ErrConfig = errors.New("invalid configuration")

// Reputation lookup modes.
const (
	ReputationModeLive      = "live"
	ReputationModeSimulated = "simulated"
)

// Config represents the application configuration. An in-flight analysis
// works against a snapshot taken at call start; a concurrent reconfiguration
// never mixes old and new thresholds within one result.
type Config struct {
	Thresholds     models.Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
	Providers      ProvidersConfig   `mapstructure:"providers" yaml:"providers"`
	Heuristics     HeuristicsConfig  `mapstructure:"heuristics" yaml:"heuristics"`
	TrustedDomains []string          `mapstructure:"trusted_domains" yaml:"trusted_domains"`
	History        HistoryConfig     `mapstructure:"history" yaml:"history"`

	// AnalysisTimeout caps the total wall-clock time of one analysis; slow
	// providers past the deadline are recorded as unchecked.
	AnalysisTimeout string `mapstructure:"analysis_timeout" yaml:"analysis_timeout"`

	// NotifyWebhook, when set, receives a POST for dangerous verdicts.
	NotifyWebhook string `mapstructure:"notify_webhook" yaml:"notify_webhook"`
}

// ProviderToggle enables or disables a single signal provider.
type ProviderToggle struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// APICredential configures one external reputation service.
type APICredential struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
}

// ReputationConfig selects which reputation services are queried.
type ReputationConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Mode is "live" (real API calls) or "simulated" (deterministic stand-ins
	// for demos and tests). Simulated mode must be chosen explicitly.
	Mode         string        `mapstructure:"mode" yaml:"mode"`
	SafeBrowsing APICredential `mapstructure:"safe_browsing" yaml:"safe_browsing"`
	VirusTotal   APICredential `mapstructure:"virustotal" yaml:"virustotal"`
	PhishTank    APICredential `mapstructure:"phishtank" yaml:"phishtank"`
}

// ProvidersConfig toggles the individual signal providers.
type ProvidersConfig struct {
	Heuristics ProviderToggle   `mapstructure:"heuristics" yaml:"heuristics"`
	SSL        ProviderToggle   `mapstructure:"ssl" yaml:"ssl"`
	Text       ProviderToggle   `mapstructure:"text" yaml:"text"`
	Favicon    ProviderToggle   `mapstructure:"favicon" yaml:"favicon"`
	Reputation ReputationConfig `mapstructure:"reputation" yaml:"reputation"`
}

// HeuristicsConfig tunes the URL heuristic provider.
type HeuristicsConfig struct {
	MaxSubdomains int `mapstructure:"max_subdomains" yaml:"max_subdomains"`
	MaxURLLength  int `mapstructure:"max_url_length" yaml:"max_url_length"`
}

// HistoryConfig controls the bbolt-backed analysis history.
type HistoryConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
	// Retention caps how many analyses are kept; oldest are pruned first.
	Retention int `mapstructure:"retention" yaml:"retention"`
}

// Load reads and parses configuration from a YAML file.
// If path is empty, searches for phishscope.yaml in the current directory
// and ~/.config/phishscope/.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("phishscope")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "phishscope"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid. All problems are reported
// at once; any threshold problem makes the whole configuration a ConfigError.
func (c *Config) Validate() error {
	var errs []error

	t := c.Thresholds
	if !t.Ordered() {
		errs = append(errs, fmt.Errorf("%w: thresholds must satisfy safe > suspicious > dangerous (got %d/%d/%d)",
			ErrConfig, t.Safe, t.Suspicious, t.Dangerous))
	}
	if t.Safe > 100 || t.Dangerous < 0 {
		errs = append(errs, fmt.Errorf("%w: thresholds must lie within 0..100", ErrConfig))
	}

	if c.Heuristics.MaxSubdomains <= 0 {
		errs = append(errs, fmt.Errorf("%w: heuristics.max_subdomains must be positive", ErrConfig))
	}
	if c.Heuristics.MaxURLLength <= 0 {
		errs = append(errs, fmt.Errorf("%w: heuristics.max_url_length must be positive", ErrConfig))
	}

	if c.History.Retention <= 0 {
		errs = append(errs, fmt.Errorf("%w: history.retention must be positive", ErrConfig))
	}
	if c.History.Path == "" {
		errs = append(errs, fmt.Errorf("%w: history.path cannot be empty", ErrConfig))
	}

	switch c.Providers.Reputation.Mode {
	case ReputationModeLive, ReputationModeSimulated:
	default:
		errs = append(errs, fmt.Errorf("%w: providers.reputation.mode must be %q or %q",
			ErrConfig, ReputationModeLive, ReputationModeSimulated))
	}

	if c.AnalysisTimeout != "" {
		if _, err := time.ParseDuration(c.AnalysisTimeout); err != nil {
			errs = append(errs, fmt.Errorf("%w: analysis_timeout: %v", ErrConfig, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Timeout returns the parsed analysis timeout, defaulting to 10s.
func (c *Config) Timeout() time.Duration {
	if c.AnalysisTimeout == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(c.AnalysisTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// IsTrusted reports whether the given registrable domain is on the operator
// allow-list. Trusted domains are exempt from scoring.
func (c *Config) IsTrusted(domain string) bool {
	if domain == "" {
		return false
	}
	for _, trusted := range c.TrustedDomains {
		if strings.EqualFold(trusted, domain) {
			return true
		}
	}
	return false
}
