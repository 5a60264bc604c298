package signals

import (
	"context"
	"testing"

	"github.com/hakim/phishscope/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heuristicsTarget(t *testing.T, rawURL string) Target {
	t.Helper()
	f, err := features.Extract(rawURL, nil)
	require.NoError(t, err)
	return Target{URL: rawURL, Features: f}
}

func TestHeuristicsSuspiciousTLD(t *testing.T) {
	p := NewHeuristicsProvider(0, 0)

	result, err := p.Check(context.Background(), heuristicsTarget(t, "https://example.tk/"))
	require.NoError(t, err)
	h := result.(HeuristicsResult)
	assert.True(t, h.Checked)
	assert.Equal(t, "tk", h.SuspiciousTLD)

	result, err = p.Check(context.Background(), heuristicsTarget(t, "https://example.com/"))
	require.NoError(t, err)
	assert.Empty(t, result.(HeuristicsResult).SuspiciousTLD)
}

func TestHeuristicsTableChecks(t *testing.T) {
	p := NewHeuristicsProvider(0, 0)

	result, err := p.Check(context.Background(), heuristicsTarget(t, "https://paypa1-login.example.xyz/verify"))
	require.NoError(t, err)
	h := result.(HeuristicsResult)

	assert.Equal(t, []string{"paypa1 (paypal)"}, h.Misspellings)
	assert.GreaterOrEqual(t, h.KeywordHits, 2)
	assert.Equal(t, "xyz", h.SuspiciousTLD)
	assert.False(t, h.DataURI)
}

func TestHeuristicsStructuralFlags(t *testing.T) {
	p := NewHeuristicsProvider(3, 100)

	result, err := p.Check(context.Background(), heuristicsTarget(t, "https://a.b.c.d.example.com/"))
	require.NoError(t, err)
	assert.True(t, result.(HeuristicsResult).ExcessiveSubdomains)

	result, err = p.Check(context.Background(), heuristicsTarget(t, "https://www.example.com/"))
	require.NoError(t, err)
	h := result.(HeuristicsResult)
	assert.False(t, h.ExcessiveSubdomains)
	assert.False(t, h.LongURL)
}

func TestHeuristicsDefaults(t *testing.T) {
	p := NewHeuristicsProvider(-1, 0)
	assert.Equal(t, 3, p.MaxSubdomains)
	assert.Equal(t, 100, p.MaxURLLength)
}

func TestHeuristicsDataURI(t *testing.T) {
	p := NewHeuristicsProvider(0, 0)

	result, err := p.Check(context.Background(), heuristicsTarget(t, "data:text/html,<form>login</form>"))
	require.NoError(t, err)
	assert.True(t, result.(HeuristicsResult).DataURI)
}
