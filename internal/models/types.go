package models

// RiskTier classifies a score into one of four user-facing buckets
type RiskTier string

const (
	TierSafe       RiskTier = "Safe"
	TierLowRisk    RiskTier = "Low Risk"
	TierMediumRisk RiskTier = "Medium Risk"
	TierHighRisk   RiskTier = "High Risk"
)

// Severity represents the severity level of an indicator
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeveritySafe   Severity = "safe"
)

// severityRank orders severities for display: high first, safe last.
var severityRank = map[Severity]int{
	SeverityHigh:   0,
	SeverityMedium: 1,
	SeverityLow:    2,
	SeveritySafe:   3,
}

// Rank returns the display ordering of a severity (lower sorts first).
// Unknown severities sort after safe.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Thresholds holds the three ordered score cutoffs that map a score to a
// risk tier. A valid set satisfies Safe > Suspicious > Dangerous.
type Thresholds struct {
	Safe       int `mapstructure:"safe" json:"safe" yaml:"safe"`
	Suspicious int `mapstructure:"suspicious" json:"suspicious" yaml:"suspicious"`
	Dangerous  int `mapstructure:"dangerous" json:"dangerous" yaml:"dangerous"`
}

// Ordered reports whether the thresholds are strictly descending.
func (t Thresholds) Ordered() bool {
	return t.Safe > t.Suspicious && t.Suspicious > t.Dangerous
}

// TierForScore maps a 0-100 score to a risk tier using the ordered thresholds.
// Same inputs always yield the same tier.
func TierForScore(score int, t Thresholds) RiskTier {
	switch {
	case score >= t.Safe:
		return TierSafe
	case score >= t.Suspicious:
		return TierLowRisk
	case score >= t.Dangerous:
		return TierMediumRisk
	default:
		return TierHighRisk
	}
}
