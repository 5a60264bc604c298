package signals

import (
	"context"
	"regexp"
	"strings"
)

// suspiciousPhrases are canonical social-engineering hooks, matched
// case-insensitively against the page's visible text.
var suspiciousPhrases = []string{
	"verify your account", "confirm your identity", "account suspended",
	"unusual activity", "security alert", "update your information",
	"limited access", "verify your identity", "your account has been limited",
	"click here immediately", "urgent action required", "login to continue",
	"unauthorized login attempt", "suspicious sign-in activity", "confirm payment",
	"payment declined", "update billing information", "verify credit card",
	"account compromised", "security breach",
}

// urgencyPatterns detect pressure language. Each pattern counts once per page.
var urgencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)urgent`),
	regexp.MustCompile(`(?i)immediately`),
	regexp.MustCompile(`(?i)warning`),
	regexp.MustCompile(`(?i)alert`),
	regexp.MustCompile(`(?i)limited time`),
	regexp.MustCompile(`(?i)expir(e|ed|es|ing)`),
	regexp.MustCompile(`(?i)suspend(ed)?`),
	regexp.MustCompile(`(?i)restricted`),
	regexp.MustCompile(`(?i)blocked`),
	regexp.MustCompile(`(?i)unauthorized`),
	regexp.MustCompile(`(?i)compromised`),
	regexp.MustCompile(`(?i)required action`),
	regexp.MustCompile(`(?i)must verify`),
	regexp.MustCompile(`(?i)within 24 hours`),
	regexp.MustCompile(`(?i)account access`),
	regexp.MustCompile(`(?i)security breach`),
	regexp.MustCompile(`(?i)unusual activity`),
}

// brandPattern pairs a brand name with the regexes that betray its presence.
type brandPattern struct {
	name     string
	patterns []*regexp.Regexp
}

// commonBrands is checked in order; the first matching brand wins.
var commonBrands = []brandPattern{
	{"PayPal", []*regexp.Regexp{regexp.MustCompile(`(?i)paypal`), regexp.MustCompile(`(?i)pay[\s-]?pal`)}},
	{"Apple", []*regexp.Regexp{regexp.MustCompile(`(?i)apple`), regexp.MustCompile(`(?i)icloud`), regexp.MustCompile(`(?i)itunes`)}},
	{"Microsoft", []*regexp.Regexp{regexp.MustCompile(`(?i)microsoft`), regexp.MustCompile(`(?i)office365`), regexp.MustCompile(`(?i)outlook`), regexp.MustCompile(`(?i)onedrive`)}},
	{"Google", []*regexp.Regexp{regexp.MustCompile(`(?i)google`), regexp.MustCompile(`(?i)gmail`), regexp.MustCompile(`(?i)youtube`)}},
	{"Amazon", []*regexp.Regexp{regexp.MustCompile(`(?i)amazon`), regexp.MustCompile(`(?i)\baws\b`)}},
	{"Facebook", []*regexp.Regexp{regexp.MustCompile(`(?i)facebook`), regexp.MustCompile(`(?i)\bfb\s`)}},
	{"Instagram", []*regexp.Regexp{regexp.MustCompile(`(?i)instagram`), regexp.MustCompile(`(?i)insta`)}},
	{"Netflix", []*regexp.Regexp{regexp.MustCompile(`(?i)netflix`)}},
	{"Bank of America", []*regexp.Regexp{regexp.MustCompile(`(?i)bank\s+of\s+america`), regexp.MustCompile(`(?i)bankofamerica`)}},
	{"Chase", []*regexp.Regexp{regexp.MustCompile(`(?i)chase\s+bank`), regexp.MustCompile(`(?i)jpmorgan\s+chase`)}},
	{"Wells Fargo", []*regexp.Regexp{regexp.MustCompile(`(?i)wells\s+fargo`), regexp.MustCompile(`(?i)wellsfargo`)}},
}

// TextProvider scans page text for social-engineering phrases, urgency
// language, and brand impersonation. Pure string work, no I/O.
type TextProvider struct{}

func NewTextProvider() *TextProvider { return &TextProvider{} }

func (p *TextProvider) Name() string { return "text" }

// Check analyzes the snapshot text. Without a page snapshot there is nothing
// to scan, so the signal reports unchecked rather than guessing.
func (p *TextProvider) Check(_ context.Context, target Target) (Result, error) {
	if target.Features.Content == nil || target.Features.Content.BodyText == "" {
		return TextResult{Checked: false}, nil
	}

	text := target.Features.Content.BodyText
	lower := strings.ToLower(text)

	result := TextResult{Checked: true}

	for _, phrase := range suspiciousPhrases {
		if strings.Contains(lower, phrase) {
			result.SuspiciousCount++
			result.DetectedPhrases = append(result.DetectedPhrases, phrase)
		}
	}

	for _, pattern := range urgencyPatterns {
		if pattern.MatchString(lower) {
			result.UrgencyCount++
			result.DetectedPatterns = append(result.DetectedPatterns, trimPattern(pattern))
		}
	}

	result.ThreatLevel = threatLevel(result.SuspiciousCount)
	result.UrgencyLevel = urgencyLevel(result.UrgencyCount)
	result.Brand = detectBrandImpersonation(text)

	return result, nil
}

// threatLevel buckets the suspicious-phrase count: >3 high, 2-3 medium,
// otherwise low.
func threatLevel(count int) Level {
	switch {
	case count > 3:
		return LevelHigh
	case count > 1:
		return LevelMedium
	default:
		return LevelLow
	}
}

// urgencyLevel buckets the urgency-pattern count: >2 high, 1-2 medium,
// otherwise low.
func urgencyLevel(count int) Level {
	switch {
	case count > 2:
		return LevelHigh
	case count > 0:
		return LevelMedium
	default:
		return LevelLow
	}
}

// detectBrandImpersonation returns the first brand whose patterns match the
// text, or nil. First match wins; confidence is fixed at medium.
func detectBrandImpersonation(text string) *BrandImpersonation {
	for _, brand := range commonBrands {
		for _, pattern := range brand.patterns {
			if pattern.MatchString(text) {
				return &BrandImpersonation{
					DetectedBrand: brand.name,
					Confidence:    "medium",
				}
			}
		}
	}
	return nil
}

// trimPattern renders a regexp as a short display token for indicators.
func trimPattern(re *regexp.Regexp) string {
	return strings.TrimPrefix(re.String(), "(?i)")
}
