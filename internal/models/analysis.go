package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Indicator is one human-readable, severity-tagged statement explaining a
// signal that contributed to the score.
type Indicator struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// SignalOutcome records whether a provider produced a usable result for an
// analysis. Failed or timed-out providers appear here with Checked=false so
// the record shows which evidence the score is missing.
type SignalOutcome struct {
	Provider string `json:"provider"`
	Checked  bool   `json:"checked"`
	Error    string `json:"error,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// AnalysisRecord is the aggregate result of one analysis call. It is created
// once per call and never mutated after being returned.
type AnalysisRecord struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	Domain      string          `json:"domain,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Score       int             `json:"score"`
	RiskTier    RiskTier        `json:"risk_tier"`
	Indicators  []Indicator     `json:"indicators,omitempty"`
	Explanation string          `json:"explanation"`
	Signals     []SignalOutcome `json:"signals,omitempty"`
	// Invalid marks analyses where the URL could not be parsed: the score is
	// the fixed neutral fallback, not a computed verdict.
	Invalid bool          `json:"invalid,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

// NewAnalysisRecord creates an analysis record with initialized metadata
func NewAnalysisRecord(url string) *AnalysisRecord {
	return &AnalysisRecord{
		ID:        uuid.New().String(),
		URL:       url,
		Timestamp: time.Now(),
	}
}

// SortIndicators orders indicators high, medium, low, safe. Ordering within
// a severity bucket is preserved so results stay deterministic.
func SortIndicators(indicators []Indicator) {
	sort.SliceStable(indicators, func(i, j int) bool {
		return indicators[i].Severity.Rank() < indicators[j].Severity.Rank()
	})
}

// CountBySeverity returns how many indicators carry the given severity.
func CountBySeverity(indicators []Indicator, sev Severity) int {
	n := 0
	for _, ind := range indicators {
		if ind.Severity == sev {
			n++
		}
	}
	return n
}
