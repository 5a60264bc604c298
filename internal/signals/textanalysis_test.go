package signals

import (
	"context"
	"testing"

	"github.com/hakim/phishscope/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textTarget(body string) Target {
	f := &features.URLFeatures{URL: "https://example.com/"}
	if body != "" {
		f.Content = &features.ContentFeatures{BodyText: body}
	}
	return Target{URL: f.URL, Features: f}
}

func TestTextUncheckedWithoutContent(t *testing.T) {
	p := NewTextProvider()

	result, err := p.Check(context.Background(), textTarget(""))
	require.NoError(t, err)
	assert.False(t, result.(TextResult).Checked)
}

func TestTextPhraseAndUrgencyDetection(t *testing.T) {
	p := NewTextProvider()

	body := "Security alert: unusual activity detected. Please verify your account " +
		"immediately or your account has been limited."
	result, err := p.Check(context.Background(), textTarget(body))
	require.NoError(t, err)
	tr := result.(TextResult)

	assert.True(t, tr.Checked)
	// security alert, unusual activity, verify your account, your account has been limited
	assert.Equal(t, 4, tr.SuspiciousCount)
	assert.Equal(t, LevelHigh, tr.ThreatLevel)
	// immediately, alert, unusual activity at minimum
	assert.GreaterOrEqual(t, tr.UrgencyCount, 3)
	assert.Equal(t, LevelHigh, tr.UrgencyLevel)
}

func TestTextLevelBuckets(t *testing.T) {
	assert.Equal(t, LevelLow, threatLevel(0))
	assert.Equal(t, LevelLow, threatLevel(1))
	assert.Equal(t, LevelMedium, threatLevel(2))
	assert.Equal(t, LevelMedium, threatLevel(3))
	assert.Equal(t, LevelHigh, threatLevel(4))

	assert.Equal(t, LevelLow, urgencyLevel(0))
	assert.Equal(t, LevelMedium, urgencyLevel(1))
	assert.Equal(t, LevelMedium, urgencyLevel(2))
	assert.Equal(t, LevelHigh, urgencyLevel(3))
}

func TestTextBrandFirstMatchWins(t *testing.T) {
	p := NewTextProvider()

	result, err := p.Check(context.Background(), textTarget("Sign in to your Google account with Microsoft or PayPal"))
	require.NoError(t, err)
	tr := result.(TextResult)

	require.NotNil(t, tr.Brand)
	assert.Equal(t, "PayPal", tr.Brand.DetectedBrand)
	assert.Equal(t, "medium", tr.Brand.Confidence)
}

func TestTextNoBrand(t *testing.T) {
	p := NewTextProvider()

	result, err := p.Check(context.Background(), textTarget("Welcome to the community gardening forum"))
	require.NoError(t, err)
	tr := result.(TextResult)

	assert.True(t, tr.Checked)
	assert.Nil(t, tr.Brand)
	assert.Equal(t, LevelLow, tr.ThreatLevel)
	assert.Equal(t, LevelLow, tr.UrgencyLevel)
}
