package signals

import (
	"context"
	"errors"
	"testing"

	"github.com/hakim/phishscope/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	name    string
	verdict *ReputationVerdict
	err     error
}

func (c fakeClient) Name() string { return c.name }

func (c fakeClient) Lookup(_ context.Context, _ string) (*ReputationVerdict, error) {
	return c.verdict, c.err
}

func reputationTarget(rawURL string) Target {
	return Target{URL: rawURL, Features: &features.URLFeatures{URL: rawURL}}
}

func TestReputationNoClientsReportsNoData(t *testing.T) {
	p := NewReputationProvider()

	result, err := p.Check(context.Background(), reputationTarget("https://example.com/"))
	require.NoError(t, err)
	assert.False(t, result.(ReputationResult).Checked)
}

func TestReputationAggregation(t *testing.T) {
	p := NewReputationProvider(
		fakeClient{name: "a", verdict: &ReputationVerdict{Source: "svc_b", Score: 80}},
		fakeClient{name: "b", verdict: &ReputationVerdict{Source: "svc_a", ThreatDetected: true, Score: 20}},
		fakeClient{name: "c", verdict: &ReputationVerdict{Source: "svc_c", InBlacklist: true, ThreatDetected: true, Score: 10}},
	)

	result, err := p.Check(context.Background(), reputationTarget("https://example.com/"))
	require.NoError(t, err)
	r := result.(ReputationResult)

	assert.True(t, r.Checked)
	assert.True(t, r.ThreatDetected)
	assert.True(t, r.InBlacklist)
	assert.InDelta(t, (80.0+20.0+10.0)/3, r.Reputation, 0.001)
	// Sorted regardless of completion order.
	assert.Equal(t, []string{"svc_a", "svc_b", "svc_c"}, r.DataSources)
}

func TestReputationToleratesFailingClients(t *testing.T) {
	p := NewReputationProvider(
		fakeClient{name: "down", err: errors.New("service unavailable")},
		fakeClient{name: "up", verdict: &ReputationVerdict{Source: "up", Score: 60}},
	)

	result, err := p.Check(context.Background(), reputationTarget("https://example.com/"))
	require.NoError(t, err)
	r := result.(ReputationResult)

	assert.True(t, r.Checked)
	assert.Equal(t, []string{"up"}, r.DataSources)
	assert.InDelta(t, 60, r.Reputation, 0.001)
}

func TestReputationAllClientsFailingReportsNoData(t *testing.T) {
	p := NewReputationProvider(
		fakeClient{name: "down1", err: errors.New("timeout")},
		fakeClient{name: "down2", err: errors.New("refused")},
	)

	result, err := p.Check(context.Background(), reputationTarget("https://example.com/"))
	require.NoError(t, err)
	assert.False(t, result.(ReputationResult).Checked)
}

func TestSimulatedClientsAreDeterministic(t *testing.T) {
	clients := []ReputationClient{
		SimulatedSafeBrowsingClient{},
		SimulatedVirusTotalClient{},
		SimulatedPhishTankClient{},
	}

	for _, client := range clients {
		first, err := client.Lookup(context.Background(), "https://secure-login.example.tk/verify")
		require.NoError(t, err)
		second, err := client.Lookup(context.Background(), "https://secure-login.example.tk/verify")
		require.NoError(t, err)
		assert.Equal(t, first, second, "client %s", client.Name())
	}
}

func TestSimulatedPhishTankNeedsBaitKeyword(t *testing.T) {
	client := SimulatedPhishTankClient{}

	// Without secure/login/verify in the URL a blacklist hit is impossible,
	// whatever the hash bucket says.
	verdict, err := client.Lookup(context.Background(), "https://plain.example.com/about")
	require.NoError(t, err)
	assert.False(t, verdict.InBlacklist)
}
