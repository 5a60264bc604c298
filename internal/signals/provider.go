// Package signals defines the pluggable signal providers that gather
// independent pieces of evidence about a URL, and the tagged result types
// the scoring engine consumes. Each provider is independently callable,
// independently timeoutable, and independently failable: one provider's
// error never aborts the others.
package signals

import (
	"context"

	"github.com/hakim/phishscope/internal/features"
	"github.com/hakim/phishscope/internal/models"
)

// Target is the input handed to every provider for one analysis.
type Target struct {
	URL      string
	Features *features.URLFeatures
}

// Result is the tagged union of provider outputs. The scoring engine switches
// on the concrete type; absent or unchecked results reduce confidence but
// never crash scoring.
type Result interface {
	// Kind returns the stable tag identifying the producing signal family.
	Kind() string
}

// Provider produces one signal for a target.
type Provider interface {
	// Name identifies this provider in logs and signal outcomes.
	Name() string

	// Check gathers the signal. It must return within the context deadline
	// or be treated as failed by the orchestrator.
	Check(ctx context.Context, target Target) (Result, error)
}

// Level is a coarse three-step rating used by the text analyzer.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// SecurityLevel rates SSL posture.
type SecurityLevel string

const (
	SecurityPoor      SecurityLevel = "poor"
	SecurityGood      SecurityLevel = "good"
	SecurityExcellent SecurityLevel = "excellent"
)

// HeuristicsResult holds table-driven URL checks that need no network call.
// IP-literal and @-symbol flags live on URLFeatures and are scored from
// there; the length and subdomain checks are evaluated here against the
// configured maximums, and when this result is present they govern scoring
// in place of the engine's fixed cutoffs so nothing is counted twice.
type HeuristicsResult struct {
	Checked bool

	// SuspiciousTLD is the matched TLD, empty when none matched.
	SuspiciousTLD string
	// Misspellings lists brand typo variants found in the hostname.
	Misspellings []string
	// KeywordHits counts known phishing keywords in the full URL.
	KeywordHits int
	// DataURI flags the data: scheme.
	DataURI bool
	// ExcessiveSubdomains is set when the subdomain count exceeds the
	// configured maximum.
	ExcessiveSubdomains bool
	// LongURL is set when the URL exceeds the configured maximum length.
	LongURL bool
}

func (HeuristicsResult) Kind() string { return "heuristics" }

// SSLResult describes the certificate posture of an HTTPS endpoint.
type SSLResult struct {
	Checked bool
	HasSSL  bool
	Issuer  string
	Trusted bool
	EV      bool
	Level   SecurityLevel
	Reason  string
}

func (SSLResult) Kind() string { return "ssl" }

// BrandImpersonation reports a brand whose name patterns appear in page text.
// Confidence is always "medium": the source data supports presence detection,
// not a computed confidence.
type BrandImpersonation struct {
	DetectedBrand string `json:"detected_brand"`
	Confidence    string `json:"confidence"`
}

// TextResult is the output of the page-text analyzer.
type TextResult struct {
	Checked bool

	SuspiciousCount  int
	UrgencyCount     int
	DetectedPhrases  []string
	DetectedPatterns []string
	ThreatLevel      Level
	UrgencyLevel     Level
	Brand            *BrandImpersonation
}

func (TextResult) Kind() string { return "text" }

// ReputationResult aggregates third-party reputation lookups. Checked is
// false when no reputation service is configured: the engine scores that as
// "no data", never as a fabricated verdict.
type ReputationResult struct {
	Checked bool

	ThreatDetected bool
	InBlacklist    bool
	// Reputation is a 0-100 trust score, higher is better.
	Reputation  float64
	DataSources []string
}

func (ReputationResult) Kind() string { return "reputation" }

// FaviconResult reports favicon fingerprint comparison against known brands.
type FaviconResult struct {
	Checked bool

	MatchesKnownSite bool
	SimilarityScore  float64
	TargetBrand      string
}

func (FaviconResult) Kind() string { return "favicon" }

// ClassifierResult is the contract for model-backed providers. When present
// and checked, its score replaces the heuristic baseline outright; the
// indicators it supplies are merged into the final list.
type ClassifierResult struct {
	Checked bool

	Score      int
	Indicators []models.Indicator
}

func (ClassifierResult) Kind() string { return "classifier" }
