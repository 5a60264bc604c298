package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hakim/phishscope/internal/models"
)

// NotifyConfig configures where to send verdict notifications.
type NotifyConfig struct {
	WebhookURL string // if empty, no notifications
}

// verdictPayload is the JSON body posted to the webhook endpoint.
type verdictPayload struct {
	URL            string  `json:"url"`
	AnalysisID     string  `json:"analysis_id"`
	Score          int     `json:"score"`
	RiskTier       string  `json:"risk_tier"`
	HighCount      int     `json:"high_indicators"`
	MediumCount    int     `json:"medium_indicators"`
	Explanation    string  `json:"explanation"`
	TimestampUnix  int64   `json:"timestamp"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// SendVerdict posts a JSON payload to the webhook URL for risky verdicts
// (Medium Risk and High Risk tiers). Returns nil if WebhookURL is empty or
// the tier is not risky (no-op). Errors are returned but callers should
// treat them as warnings.
func (n *NotifyConfig) SendVerdict(record *models.AnalysisRecord) error {
	if n == nil || n.WebhookURL == "" {
		return nil
	}
	if record.RiskTier != models.TierHighRisk && record.RiskTier != models.TierMediumRisk {
		return nil
	}

	payload := verdictPayload{
		URL:            record.URL,
		AnalysisID:     record.ID,
		Score:          record.Score,
		RiskTier:       string(record.RiskTier),
		HighCount:      models.CountBySeverity(record.Indicators, models.SeverityHigh),
		MediumCount:    models.CountBySeverity(record.Indicators, models.SeverityMedium),
		Explanation:    record.Explanation,
		TimestampUnix:  record.Timestamp.Unix(),
		ElapsedSeconds: record.Elapsed.Seconds(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshaling payload: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(n.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: posting to %s: %w", n.WebhookURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned non-2xx status %d", resp.StatusCode)
	}

	return nil
}
