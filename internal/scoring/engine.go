// Package scoring turns extracted features and gathered signals into a final
// 0-100 score, a risk tier, a severity-ordered indicator list, and a
// human-readable explanation. It is deterministic: identical inputs always
// produce an identical outcome.
package scoring

import (
	"fmt"
	"math"

	"github.com/hakim/phishscope/internal/features"
	"github.com/hakim/phishscope/internal/models"
	"github.com/hakim/phishscope/internal/signals"
)

// baselineScore is the neutral starting point for heuristic accumulation.
const baselineScore = 70

// Outcome is the engine's verdict for one analysis.
type Outcome struct {
	Score       int
	RiskTier    models.RiskTier
	Indicators  []models.Indicator
	Explanation string
}

// Score aggregates features and signal results into an outcome. Absent or
// unchecked signals contribute nothing; they never abort scoring. When a
// classifier signal is present its score replaces the heuristic baseline
// outright rather than being blended in.
func Score(f *features.URLFeatures, results []signals.Result, thresholds models.Thresholds) Outcome {
	bundle := collect(results)

	var score float64
	if bundle.classifier != nil {
		score = float64(bundle.classifier.Score)
	} else {
		score = heuristicScore(f, bundle)
	}

	final := clamp(int(math.Round(score)))
	tier := models.TierForScore(final, thresholds)
	indicators := compileIndicators(f, bundle)
	models.SortIndicators(indicators)

	return Outcome{
		Score:       final,
		RiskTier:    tier,
		Indicators:  indicators,
		Explanation: explain(final, tier, indicators),
	}
}

// bundle groups the checked signal results by kind. The engine reads them
// defensively: any pointer may be nil.
type signalBundle struct {
	heuristics *signals.HeuristicsResult
	ssl        *signals.SSLResult
	text       *signals.TextResult
	reputation *signals.ReputationResult
	favicon    *signals.FaviconResult
	classifier *signals.ClassifierResult
}

func collect(results []signals.Result) signalBundle {
	var b signalBundle
	for _, r := range results {
		switch v := r.(type) {
		case signals.HeuristicsResult:
			if v.Checked {
				b.heuristics = &v
			}
		case signals.SSLResult:
			if v.Checked {
				b.ssl = &v
			}
		case signals.TextResult:
			if v.Checked {
				b.text = &v
			}
		case signals.ReputationResult:
			if v.Checked {
				b.reputation = &v
			}
		case signals.FaviconResult:
			if v.Checked {
				b.favicon = &v
			}
		case signals.ClassifierResult:
			if v.Checked {
				b.classifier = &v
			}
		}
	}
	return b
}

// heuristicScore applies the weighted adjustment table to the baseline.
func heuristicScore(f *features.URLFeatures, b signalBundle) float64 {
	score := float64(baselineScore)
	longURL, manySubdomains := structuralFlags(f, b)

	// URL structure.
	if f.HasIP {
		score -= 15
	}
	if f.HasAtSymbol {
		score -= 10
	}
	if longURL {
		score -= 5
	}
	if manySubdomains {
		score -= 10
	}
	if f.HasHTTPS {
		score += 10
	}

	// Table-driven URL heuristics.
	if b.heuristics != nil {
		h := b.heuristics
		if h.SuspiciousTLD != "" {
			score -= 10
		}
		if len(h.Misspellings) > 0 {
			score -= 30
		}
		if h.DataURI {
			score -= 25
		}
		switch {
		case h.KeywordHits >= 3:
			score -= 15
		case h.KeywordHits > 0:
			score -= 5
		}
	}

	// SSL posture.
	if b.ssl != nil {
		if !b.ssl.HasSSL {
			score -= 15
		}
		switch b.ssl.Level {
		case signals.SecurityPoor:
			score -= 10
		case signals.SecurityExcellent:
			score += 10
		}
		if b.ssl.EV {
			score += 10
		}
	}

	// Favicon fingerprint match means likely brand impersonation.
	if b.favicon != nil && b.favicon.MatchesKnownSite {
		score -= 20
	}

	// Page text.
	if b.text != nil {
		switch b.text.ThreatLevel {
		case signals.LevelHigh:
			score -= 15
		case signals.LevelMedium:
			score -= 7
		}
		if b.text.UrgencyLevel == signals.LevelHigh {
			score -= 10
		}
		if b.text.Brand != nil {
			score -= 15
		}
	}

	// Third-party reputation.
	if b.reputation != nil {
		if b.reputation.ThreatDetected {
			score -= 25
		}
		if b.reputation.InBlacklist {
			score -= 20
		}
		score += b.reputation.Reputation / 10
	}

	return score
}

// structuralFlags resolves the long-URL and subdomain-excess checks. The
// heuristics provider evaluates them against the configured maximums; when it
// ran, its flags govern. The fixed cutoffs (75 chars, 3 subdomains) apply only
// when the provider is disabled or failed.
func structuralFlags(f *features.URLFeatures, b signalBundle) (longURL, manySubdomains bool) {
	if b.heuristics != nil {
		return b.heuristics.LongURL, b.heuristics.ExcessiveSubdomains
	}
	return f.Length > 75, f.Subdomains > 3
}

// compileIndicators emits exactly one indicator per check that fired, at the
// severity implied by that check's weight. Indicators are compiled from all
// signals even when a classifier supplied the score, so the explanation does
// not collapse to a bare number.
func compileIndicators(f *features.URLFeatures, b signalBundle) []models.Indicator {
	var out []models.Indicator
	add := func(sev models.Severity, msg string) {
		out = append(out, models.Indicator{Severity: sev, Message: msg})
	}

	longURL, manySubdomains := structuralFlags(f, b)

	if f.HasIP {
		add(models.SeverityHigh, "URL contains IP address instead of domain name")
	}
	if f.HasAtSymbol {
		add(models.SeverityHigh, "URL contains @ symbol which can be used for deception")
	}
	if longURL {
		add(models.SeverityMedium, "Unusually long URL")
	}
	if manySubdomains {
		add(models.SeverityMedium, "Excessive number of subdomains")
	}

	if b.heuristics != nil {
		h := b.heuristics
		if h.SuspiciousTLD != "" {
			add(models.SeverityMedium, fmt.Sprintf("Suspicious top-level domain (.%s)", h.SuspiciousTLD))
		}
		for _, match := range h.Misspellings {
			add(models.SeverityHigh, fmt.Sprintf("Hostname imitates a well-known brand: %s", match))
		}
		if h.DataURI {
			add(models.SeverityHigh, "Data URI scheme detected (commonly used in phishing)")
		}
		switch {
		case h.KeywordHits >= 3:
			add(models.SeverityMedium, "URL contains multiple suspicious keywords")
		case h.KeywordHits > 0:
			add(models.SeverityMedium, "URL contains potentially suspicious keywords")
		}
	}

	if b.ssl != nil {
		if !b.ssl.HasSSL {
			add(models.SeverityHigh, "Site does not use secure HTTPS connection")
		} else {
			add(models.SeveritySafe, "Site uses secure HTTPS connection")
			if b.ssl.EV {
				add(models.SeveritySafe, "Site uses Extended Validation SSL certificate")
			}
			if !b.ssl.Trusted {
				add(models.SeverityMedium, "Site uses untrusted SSL certificate")
			}
		}
	}

	if b.text != nil {
		switch b.text.ThreatLevel {
		case signals.LevelHigh:
			add(models.SeverityHigh, fmt.Sprintf("Page contains multiple suspicious phrases (%d found)", b.text.SuspiciousCount))
		case signals.LevelMedium:
			add(models.SeverityMedium, fmt.Sprintf("Page contains some suspicious phrases (%d found)", b.text.SuspiciousCount))
		}
		if b.text.UrgencyLevel == signals.LevelHigh {
			add(models.SeverityMedium, "Page uses urgent language to create pressure")
		}
		if b.text.Brand != nil {
			add(models.SeverityHigh, fmt.Sprintf("Possible %s impersonation detected", b.text.Brand.DetectedBrand))
		}
	}

	if b.favicon != nil && b.favicon.MatchesKnownSite && b.favicon.TargetBrand != "" {
		add(models.SeverityHigh, fmt.Sprintf("Favicon similar to %s", b.favicon.TargetBrand))
	}

	if b.reputation != nil {
		if b.reputation.ThreatDetected {
			add(models.SeverityHigh, "Domain flagged by security services as malicious")
		}
		if b.reputation.InBlacklist {
			add(models.SeverityHigh, "Domain appears in known phishing blacklists")
		}
	}

	if b.classifier != nil {
		out = append(out, b.classifier.Indicators...)
	}

	return out
}

// explain renders the templated summary sentence plus the per-tier
// recommendation.
func explain(score int, tier models.RiskTier, indicators []models.Indicator) string {
	text := fmt.Sprintf("This website has a safety score of %d/100 (%s). ", score, tier)

	if n := models.CountBySeverity(indicators, models.SeverityHigh); n > 0 {
		text += fmt.Sprintf("Found %d high-risk indicator%s. ", n, plural(n))
	}
	if n := models.CountBySeverity(indicators, models.SeverityMedium); n > 0 {
		text += fmt.Sprintf("Found %d medium-risk indicator%s. ", n, plural(n))
	}
	if n := models.CountBySeverity(indicators, models.SeveritySafe); n > 0 {
		text += fmt.Sprintf("Found %d safety indicator%s. ", n, plural(n))
	}

	switch tier {
	case models.TierHighRisk:
		text += "We strongly recommend not providing any personal information to this website."
	case models.TierMediumRisk:
		text += "Exercise caution when interacting with this website."
	case models.TierLowRisk:
		text += "This website appears to have some minor issues but is likely legitimate."
	case models.TierSafe:
		text += "This website appears to be legitimate and safe."
	}

	return text
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
