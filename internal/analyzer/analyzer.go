// Package analyzer orchestrates one analysis: extract features once, fan the
// enabled signal providers out concurrently with independent failure
// isolation, join, and hand everything to the scoring engine.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hakim/phishscope/internal/config"
	"github.com/hakim/phishscope/internal/features"
	"github.com/hakim/phishscope/internal/models"
	"github.com/hakim/phishscope/internal/scoring"
	"github.com/hakim/phishscope/internal/signals"
	"github.com/sourcegraph/conc/pool"
)

// invalidURLScore is the fixed neutral fallback when the URL cannot be parsed.
const invalidURLScore = 50

// Analyzer runs analyses against a configuration snapshot and a provider
// registry. Safe for concurrent use: every Analyze call snapshots the
// configuration at its start, so a concurrent Reconfigure never mixes old
// and new thresholds inside one result.
type Analyzer struct {
	mu        sync.RWMutex
	cfg       *config.Config
	providers []signals.Provider

	// OnProviderStart is called immediately before each provider runs.
	OnProviderStart func(name string)
	// OnProviderDone is called after each provider returns (or panics).
	OnProviderDone func(name string, err error, elapsed time.Duration)
}

// New builds an analyzer from a validated configuration and an explicit
// provider registry. Use BuildProviders to derive the registry from config.
func New(cfg *config.Config, providers ...signals.Provider) *Analyzer {
	return &Analyzer{cfg: cfg, providers: providers}
}

// Reconfigure swaps in a new configuration and provider registry. An invalid
// configuration is rejected with an error wrapping config.ErrConfig and the
// prior configuration stays in effect.
func (a *Analyzer) Reconfigure(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", config.ErrConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	providers := BuildProviders(cfg)

	a.mu.Lock()
	a.cfg = cfg
	a.providers = providers
	a.mu.Unlock()

	return nil
}

// BuildProviders constructs the provider registry implied by the
// configuration toggles. Reputation clients are wired per credential;
// simulated clients are used only when the mode says so explicitly.
func BuildProviders(cfg *config.Config) []signals.Provider {
	var providers []signals.Provider

	p := cfg.Providers
	if p.Heuristics.Enabled {
		providers = append(providers,
			signals.NewHeuristicsProvider(cfg.Heuristics.MaxSubdomains, cfg.Heuristics.MaxURLLength))
	}
	if p.SSL.Enabled {
		providers = append(providers, signals.NewSSLProvider(0))
	}
	if p.Text.Enabled {
		providers = append(providers, signals.NewTextProvider())
	}
	if p.Favicon.Enabled {
		providers = append(providers, signals.NewFaviconProvider())
	}
	if p.Reputation.Enabled {
		providers = append(providers, signals.NewReputationProvider(reputationClients(p.Reputation)...))
	}

	return providers
}

func reputationClients(cfg config.ReputationConfig) []signals.ReputationClient {
	if cfg.Mode == config.ReputationModeSimulated {
		return []signals.ReputationClient{
			signals.SimulatedSafeBrowsingClient{},
			signals.SimulatedVirusTotalClient{},
			signals.SimulatedPhishTankClient{},
		}
	}

	var clients []signals.ReputationClient
	if cfg.SafeBrowsing.Enabled && cfg.SafeBrowsing.APIKey != "" {
		clients = append(clients, signals.NewSafeBrowsingClient(cfg.SafeBrowsing.APIKey))
	}
	if cfg.VirusTotal.Enabled && cfg.VirusTotal.APIKey != "" {
		clients = append(clients, signals.NewVirusTotalClient(cfg.VirusTotal.APIKey))
	}
	if cfg.PhishTank.Enabled {
		clients = append(clients, signals.NewPhishTankClient(cfg.PhishTank.APIKey))
	}
	return clients
}

// Analyze is the sole entry point callers use. It never writes to storage;
// persisting the returned record is the caller's responsibility.
//
// Failure semantics: provider errors, panics, and timeouts are recorded as
// omitted signals and scoring proceeds with what completed. Only an
// unparsable URL degrades the whole analysis, to a fixed neutral score with
// an explanatory message.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string, snap *features.PageSnapshot) (*models.AnalysisRecord, error) {
	a.mu.RLock()
	cfg := a.cfg
	providers := a.providers
	a.mu.RUnlock()

	started := time.Now()
	record := models.NewAnalysisRecord(rawURL)
	record.Domain = features.RegistrableDomainOf(rawURL)

	// Operator allow-list: trusted domains are exempt from scoring.
	if cfg.IsTrusted(record.Domain) {
		record.Score = 100
		record.RiskTier = models.TierSafe
		record.Indicators = []models.Indicator{
			{Severity: models.SeveritySafe, Message: "Domain is on the operator trusted list"},
		}
		record.Explanation = fmt.Sprintf(
			"This website has a safety score of 100/100 (Safe). %s is trusted by configuration and exempt from scoring.",
			record.Domain)
		record.Elapsed = time.Since(started)
		return record, nil
	}

	f, err := features.Extract(rawURL, snap)
	if err != nil {
		record.Invalid = true
		record.Score = invalidURLScore
		record.RiskTier = models.TierForScore(invalidURLScore, cfg.Thresholds)
		record.Indicators = []models.Indicator{
			{Severity: models.SeverityMedium, Message: "Error analyzing URL: " + err.Error()},
		}
		record.Explanation = fmt.Sprintf(
			"The URL could not be parsed, so its risk is unknown. Score defaults to %d/100 (%s).",
			invalidURLScore, record.RiskTier)
		record.Elapsed = time.Since(started)
		return record, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	results, outcomes := a.runProviders(runCtx, providers, signals.Target{URL: rawURL, Features: f})

	verdict := scoring.Score(f, results, cfg.Thresholds)

	record.Score = verdict.Score
	record.RiskTier = verdict.RiskTier
	record.Indicators = verdict.Indicators
	record.Explanation = verdict.Explanation
	record.Signals = outcomes
	record.Elapsed = time.Since(started)

	return record, nil
}

// runProviders fans out all providers on a pool and joins them. Each slot in
// the outcome slice is owned by exactly one goroutine, so no locking is
// needed beyond the pool's own join.
func (a *Analyzer) runProviders(ctx context.Context, providers []signals.Provider, target signals.Target) ([]signals.Result, []models.SignalOutcome) {
	checked := make([]signals.Result, len(providers))
	outcomes := make([]models.SignalOutcome, len(providers))

	fanout := pool.New().WithContext(ctx)
	for i, provider := range providers {
		fanout.Go(func(ctx context.Context) error {
			if a.OnProviderStart != nil {
				a.OnProviderStart(provider.Name())
			}

			start := time.Now()
			result, err := runProviderIsolated(ctx, provider, target)
			elapsed := time.Since(start)

			if a.OnProviderDone != nil {
				a.OnProviderDone(provider.Name(), err, elapsed)
			}

			outcome := models.SignalOutcome{Provider: provider.Name()}
			if err != nil {
				outcome.Error = err.Error()
			} else if result != nil {
				checked[i] = result
				outcome.Checked = isChecked(result)
				outcome.Summary = summarize(result)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = fanout.Wait()

	// Compact: scoring only sees results that materialized.
	var results []signals.Result
	for _, r := range checked {
		if r != nil {
			results = append(results, r)
		}
	}
	return results, outcomes
}

// runProviderIsolated guards a provider call with a deferred recover so a
// panicking provider is downgraded to an omitted signal rather than taking
// the whole analysis down.
func runProviderIsolated(ctx context.Context, p signals.Provider, target signals.Target) (result signals.Result, retErr error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			retErr = fmt.Errorf("provider %q panicked: %v", p.Name(), r)
		}
	}()
	return p.Check(ctx, target)
}

func isChecked(r signals.Result) bool {
	switch v := r.(type) {
	case signals.HeuristicsResult:
		return v.Checked
	case signals.SSLResult:
		return v.Checked
	case signals.TextResult:
		return v.Checked
	case signals.ReputationResult:
		return v.Checked
	case signals.FaviconResult:
		return v.Checked
	case signals.ClassifierResult:
		return v.Checked
	default:
		return true
	}
}

// summarize renders a one-line digest of a result for the analysis record.
func summarize(r signals.Result) string {
	switch v := r.(type) {
	case signals.HeuristicsResult:
		var parts []string
		if v.SuspiciousTLD != "" {
			parts = append(parts, "suspicious TLD ."+v.SuspiciousTLD)
		}
		if len(v.Misspellings) > 0 {
			parts = append(parts, fmt.Sprintf("%d brand misspelling(s)", len(v.Misspellings)))
		}
		if v.KeywordHits > 0 {
			parts = append(parts, fmt.Sprintf("%d keyword hit(s)", v.KeywordHits))
		}
		if v.DataURI {
			parts = append(parts, "data URI")
		}
		if len(parts) == 0 {
			return "no URL heuristics fired"
		}
		return strings.Join(parts, ", ")
	case signals.SSLResult:
		if !v.HasSSL {
			return "no SSL"
		}
		return fmt.Sprintf("%s (%s)", v.Level, v.Reason)
	case signals.TextResult:
		return fmt.Sprintf("threat=%s urgency=%s", v.ThreatLevel, v.UrgencyLevel)
	case signals.ReputationResult:
		if !v.Checked {
			return "no reputation data"
		}
		return fmt.Sprintf("reputation=%.0f threat=%t sources=%s",
			v.Reputation, v.ThreatDetected, strings.Join(v.DataSources, ","))
	case signals.FaviconResult:
		if v.MatchesKnownSite {
			return "favicon matches " + v.TargetBrand
		}
		return "no favicon match"
	case signals.ClassifierResult:
		return fmt.Sprintf("classifier score=%d", v.Score)
	default:
		return r.Kind()
	}
}
