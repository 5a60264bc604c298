package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hakim/phishscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:        "abc-123",
		URL:       "https://paypa1-login.example.tk/verify",
		Domain:    "example.tk",
		Timestamp: time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC),
		Score:     15,
		RiskTier:  models.TierHighRisk,
		Indicators: []models.Indicator{
			{Severity: models.SeverityHigh, Message: "Hostname imitates a well-known brand: paypa1 (paypal)"},
			{Severity: models.SeverityMedium, Message: "Suspicious top-level domain (.tk)"},
			{Severity: models.SeveritySafe, Message: "Site uses secure HTTPS connection"},
		},
		Explanation: "This website has a safety score of 15/100 (High Risk).",
		Signals: []models.SignalOutcome{
			{Provider: "heuristics", Checked: true, Summary: "suspicious TLD .tk, 1 brand misspelling(s)"},
			{Provider: "reputation", Checked: false, Error: "all services unavailable"},
		},
	}
}

func TestRenderAnalysisReport(t *testing.T) {
	body := RenderAnalysisReport(sampleRecord())

	assert.Contains(t, body, "# Phishing Risk Report")
	assert.Contains(t, body, "**URL:** https://paypa1-login.example.tk/verify")
	assert.Contains(t, body, "**Score:** 15/100 | **Risk tier:** High Risk")
	assert.Contains(t, body, "### High risk")
	assert.Contains(t, body, "- Hostname imitates a well-known brand: paypa1 (paypal)")
	assert.Contains(t, body, "### Medium risk")
	assert.Contains(t, body, "### Safety")
	assert.Contains(t, body, "| heuristics | true | suspicious TLD .tk, 1 brand misspelling(s) |")
	assert.Contains(t, body, "| reputation | false | error: all services unavailable |")
}

func TestRenderAnalysisReportEmptySections(t *testing.T) {
	record := sampleRecord()
	record.Indicators = nil
	record.Signals = nil

	body := RenderAnalysisReport(record)
	assert.Contains(t, body, "None recorded.")
	assert.Contains(t, body, "No signal providers ran for this analysis.")
	assert.NotContains(t, body, "### High risk")
}

func TestWriteAnalysisReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, WriteAnalysisReport(sampleRecord(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Phishing Risk Report")
}
