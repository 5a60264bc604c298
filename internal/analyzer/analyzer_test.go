package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hakim/phishscope/internal/config"
	"github.com/hakim/phishscope/internal/models"
	"github.com/hakim/phishscope/internal/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider returns a canned result, error, or panic, optionally after
// blocking on the context.
type stubProvider struct {
	name   string
	result signals.Result
	err    error
	panics bool
	block  bool
}

func (p stubProvider) Name() string { return p.name }

func (p stubProvider) Check(ctx context.Context, _ signals.Target) (signals.Result, error) {
	if p.panics {
		panic("stub provider exploded")
	}
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return p.result, p.err
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Providers.Reputation.Enabled = false
	cfg.Providers.SSL.Enabled = false
	cfg.Providers.Favicon.Enabled = false
	return cfg
}

func TestAnalyzeHappyPath(t *testing.T) {
	a := New(testConfig(),
		stubProvider{name: "heuristics", result: signals.HeuristicsResult{Checked: true, KeywordHits: 1}},
		stubProvider{name: "ssl", result: signals.SSLResult{Checked: true, HasSSL: true, Trusted: true, Level: signals.SecurityGood}},
	)

	record, err := a.Analyze(context.Background(), "https://www.example.com/login", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "example.com", record.Domain)
	assert.False(t, record.Invalid)
	// 70 + 10 HTTPS - 5 keywords = 75.
	assert.Equal(t, 75, record.Score)
	assert.Equal(t, models.TierLowRisk, record.RiskTier)
	assert.NotEmpty(t, record.Explanation)
	assert.Positive(t, record.Elapsed)

	require.Len(t, record.Signals, 2)
	for _, outcome := range record.Signals {
		assert.True(t, outcome.Checked, "provider %s", outcome.Provider)
		assert.Empty(t, outcome.Error)
	}
}

func TestAnalyzeProviderFailureIsIsolated(t *testing.T) {
	a := New(testConfig(),
		stubProvider{name: "broken", err: errors.New("service down")},
		stubProvider{name: "heuristics", result: signals.HeuristicsResult{Checked: true}},
	)

	record, err := a.Analyze(context.Background(), "https://example.com/", nil)
	require.NoError(t, err)

	// Score still computed from the surviving provider.
	assert.Equal(t, 80, record.Score)

	byName := signalsByProvider(record.Signals)
	assert.Equal(t, "service down", byName["broken"].Error)
	assert.False(t, byName["broken"].Checked)
	assert.True(t, byName["heuristics"].Checked)
}

func TestAnalyzeProviderPanicIsIsolated(t *testing.T) {
	a := New(testConfig(),
		stubProvider{name: "bomb", panics: true},
		stubProvider{name: "heuristics", result: signals.HeuristicsResult{Checked: true}},
	)

	record, err := a.Analyze(context.Background(), "https://example.com/", nil)
	require.NoError(t, err)

	byName := signalsByProvider(record.Signals)
	assert.Contains(t, byName["bomb"].Error, "panicked")
	assert.Equal(t, 80, record.Score)
}

func TestAnalyzeSlowProviderTimesOut(t *testing.T) {
	cfg := testConfig()
	cfg.AnalysisTimeout = "50ms"

	a := New(cfg,
		stubProvider{name: "slow", block: true},
		stubProvider{name: "heuristics", result: signals.HeuristicsResult{Checked: true}},
	)

	started := time.Now()
	record, err := a.Analyze(context.Background(), "https://example.com/", nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(started), 5*time.Second)

	byName := signalsByProvider(record.Signals)
	assert.NotEmpty(t, byName["slow"].Error)
	assert.True(t, byName["heuristics"].Checked)
}

func TestAnalyzeInvalidURLDegradesGracefully(t *testing.T) {
	a := New(testConfig())

	record, err := a.Analyze(context.Background(), "http://", nil)
	require.NoError(t, err)

	assert.True(t, record.Invalid)
	assert.Equal(t, 50, record.Score)
	assert.Equal(t, models.TierMediumRisk, record.RiskTier)
	require.NotEmpty(t, record.Indicators)
	assert.Contains(t, record.Indicators[0].Message, "Error analyzing URL")
}

func TestAnalyzeTrustedDomainShortCircuits(t *testing.T) {
	cfg := testConfig()
	cfg.TrustedDomains = []string{"example.com"}

	called := false
	a := New(cfg, stubProvider{name: "heuristics", result: signals.HeuristicsResult{Checked: true}})
	a.OnProviderStart = func(string) { called = true }

	record, err := a.Analyze(context.Background(), "https://login.example.com/account", nil)
	require.NoError(t, err)

	assert.Equal(t, 100, record.Score)
	assert.Equal(t, models.TierSafe, record.RiskTier)
	assert.False(t, called, "providers must not run for trusted domains")
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := New(testConfig(),
		stubProvider{name: "heuristics", result: signals.HeuristicsResult{Checked: true, KeywordHits: 2}},
		stubProvider{name: "reputation", result: signals.ReputationResult{Checked: true, Reputation: 40, DataSources: []string{"x"}}},
	)

	first, err := a.Analyze(context.Background(), "https://example.com/", nil)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "https://example.com/", nil)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.RiskTier, second.RiskTier)
	assert.Equal(t, first.Indicators, second.Indicators)
	assert.Equal(t, first.Explanation, second.Explanation)
}

func TestReconfigureRejectsInvalidAndKeepsPrior(t *testing.T) {
	a := New(testConfig(), stubProvider{name: "heuristics", result: signals.HeuristicsResult{Checked: true}})

	bad := config.DefaultConfig()
	bad.Thresholds.Safe = 10

	err := a.Reconfigure(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfig)

	// Prior thresholds still in effect.
	record, err := a.Analyze(context.Background(), "https://example.com/", nil)
	require.NoError(t, err)
	assert.Equal(t, models.TierSafe, record.RiskTier)
}

func TestReconfigureRejectsNil(t *testing.T) {
	a := New(testConfig())
	assert.ErrorIs(t, a.Reconfigure(nil), config.ErrConfig)
}

func TestReconfigureSwapsThresholds(t *testing.T) {
	a := New(testConfig(), stubProvider{name: "heuristics", result: signals.HeuristicsResult{Checked: true}})

	stricter := testConfig()
	stricter.Thresholds = models.Thresholds{Safe: 90, Suspicious: 70, Dangerous: 50}
	require.NoError(t, a.Reconfigure(stricter))

	record, err := a.Analyze(context.Background(), "https://example.com/", nil)
	require.NoError(t, err)
	// Score 80 no longer reaches the stricter safe cutoff.
	assert.Equal(t, models.TierLowRisk, record.RiskTier)
}

func TestBuildProvidersHonorsToggles(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Len(t, BuildProviders(cfg), 5)

	cfg.Providers.Favicon.Enabled = false
	cfg.Providers.Text.Enabled = false
	assert.Len(t, BuildProviders(cfg), 3)
}

func TestReputationClientsSimulatedMode(t *testing.T) {
	cfg := config.DefaultConfig().Providers.Reputation
	cfg.Mode = config.ReputationModeSimulated

	clients := reputationClients(cfg)
	require.Len(t, clients, 3)
}

func TestReputationClientsLiveModeNeedsCredentials(t *testing.T) {
	cfg := config.DefaultConfig().Providers.Reputation
	assert.Empty(t, reputationClients(cfg))

	cfg.SafeBrowsing = config.APICredential{Enabled: true, APIKey: "key"}
	assert.Len(t, reputationClients(cfg), 1)
}

func signalsByProvider(outcomes []models.SignalOutcome) map[string]models.SignalOutcome {
	byName := make(map[string]models.SignalOutcome, len(outcomes))
	for _, o := range outcomes {
		byName[o.Provider] = o
	}
	return byName
}
