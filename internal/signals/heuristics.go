package signals

import (
	"context"
)

// suspiciousTLDs are top-level domains with an outsized share of phishing
// registrations (free or near-free registries).
var suspiciousTLDs = []string{
	"tk", "ml", "ga", "cf", "gq", "xyz", "top", "club", "online", "site",
}

// HeuristicsProvider runs the table-driven URL checks. It performs no I/O
// and never fails; it exists as a provider so it can be toggled and timed
// like every other signal source.
type HeuristicsProvider struct {
	// MaxSubdomains is the subdomain count above which a URL is flagged.
	MaxSubdomains int
	// MaxURLLength is the URL length above which a URL is flagged.
	MaxURLLength int
}

// NewHeuristicsProvider returns a provider with the given tunables.
// Non-positive values fall back to the defaults (3 subdomains, 100 chars).
func NewHeuristicsProvider(maxSubdomains, maxURLLength int) *HeuristicsProvider {
	if maxSubdomains <= 0 {
		maxSubdomains = 3
	}
	if maxURLLength <= 0 {
		maxURLLength = 100
	}
	return &HeuristicsProvider{
		MaxSubdomains: maxSubdomains,
		MaxURLLength:  maxURLLength,
	}
}

func (p *HeuristicsProvider) Name() string { return "heuristics" }

// Check evaluates the URL against the fixed rule tables using the features
// extracted earlier. Pure and side-effect-free.
func (p *HeuristicsProvider) Check(_ context.Context, target Target) (Result, error) {
	f := target.Features

	result := HeuristicsResult{
		Checked:             true,
		Misspellings:        f.MisspellingMatches,
		KeywordHits:         f.SuspiciousKeywordHits,
		DataURI:             f.IsDataURI,
		ExcessiveSubdomains: f.Subdomains > p.MaxSubdomains,
		LongURL:             f.Length > p.MaxURLLength,
	}

	for _, tld := range suspiciousTLDs {
		if f.TLD == tld {
			result.SuspiciousTLD = tld
			break
		}
	}

	return result, nil
}
