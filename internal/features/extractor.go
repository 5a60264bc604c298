package features

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrInvalidURL is returned when the input cannot be parsed as a URL.
// Callers should treat it as "unknown risk", not as a fatal condition.
var ErrInvalidURL = errors.New("invalid URL")

// maxBodyText caps the visible-text excerpt taken from a page snapshot.
// Larger documents are truncated, never rejected.
const maxBodyText = 20000

// URLFeatures is the immutable set of structural features derived once per
// analysis. It is created by Extract and only ever read afterwards.
type URLFeatures struct {
	URL    string `json:"url"`
	Scheme string `json:"scheme"`
	Host   string `json:"host"`

	Length       int `json:"length"`
	DomainLength int `json:"domain_length"`
	Subdomains   int `json:"subdomains"`
	Dots         int `json:"dots"`

	HasIP          bool `json:"has_ip"`
	HasAtSymbol    bool `json:"has_at_symbol"`
	HasDoubleSlash bool `json:"has_double_slash"`
	HasHTTPS       bool `json:"has_https"`
	IsDataURI      bool `json:"is_data_uri"`

	TLD               string `json:"tld,omitempty"`
	RegistrableDomain string `json:"registrable_domain,omitempty"`

	// SuspiciousKeywordHits counts how many known phishing keywords appear
	// anywhere in the full URL.
	SuspiciousKeywordHits int `json:"suspicious_keyword_hits"`

	// MisspellingMatches lists brands whose known typo variants appear in the
	// hostname, formatted as "variant (brand)".
	MisspellingMatches []string `json:"misspelling_matches,omitempty"`

	// Content is nil when no page snapshot was supplied.
	Content *ContentFeatures `json:"content,omitempty"`
}

// Extract derives URLFeatures from a raw URL and an optional page snapshot.
// It is a pure function: no network calls, no shared state, safe to call
// concurrently. An unparsable URL yields an error wrapping ErrInvalidURL.
func Extract(rawURL string, snap *PageSnapshot) (*URLFeatures, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	f := &URLFeatures{
		URL:    trimmed,
		Scheme: strings.ToLower(parsed.Scheme),
		Length: len(trimmed),
		Dots:   strings.Count(trimmed, "."),
	}

	if f.Scheme == "data" {
		// Data URIs carry the whole document inline; there is no hostname to
		// inspect, so only the scheme-level flags are meaningful.
		f.IsDataURI = true
		f.SuspiciousKeywordHits = countSuspiciousKeywords(trimmed)
		attachContent(f, snap)
		return f, nil
	}

	if f.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host in %q", ErrInvalidURL, trimmed)
	}

	host := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	f.Host = host
	f.DomainLength = len(host)
	f.HasHTTPS = f.Scheme == "https"
	f.HasIP = net.ParseIP(host) != nil
	f.HasAtSymbol = strings.Contains(trimmed, "@")
	// A second "//" past the scheme separator is a classic redirect trick.
	f.HasDoubleSlash = strings.LastIndex(trimmed, "//") > 8

	if !f.HasIP {
		f.TLD, _ = publicsuffix.PublicSuffix(host)
		f.RegistrableDomain, f.Subdomains = splitRegistrable(host)
	} else {
		f.RegistrableDomain = host
	}

	f.SuspiciousKeywordHits = countSuspiciousKeywords(trimmed)
	f.MisspellingMatches = matchMisspellings(host)

	attachContent(f, snap)
	return f, nil
}

// splitRegistrable returns the registrable domain (eTLD+1) of host and the
// number of labels in front of it. Hosts not covered by the public suffix
// list fall back to treating the last two labels as the registrable domain.
func splitRegistrable(host string) (registrable string, subdomains int) {
	labels := len(strings.Split(host, "."))

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Fallback: domain.tld has zero subdomains.
		registrable = host
		if labels >= 2 {
			parts := strings.Split(host, ".")
			registrable = strings.Join(parts[len(parts)-2:], ".")
		}
		subdomains = labels - 2
		if subdomains < 0 {
			subdomains = 0
		}
		return registrable, subdomains
	}

	subdomains = labels - len(strings.Split(etld1, "."))
	if subdomains < 0 {
		subdomains = 0
	}
	return etld1, subdomains
}

// RegistrableDomainOf extracts the registrable domain from a raw URL for
// indexing and allow-list checks. Returns "" when the URL is unparsable.
func RegistrableDomainOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	if net.ParseIP(host) != nil {
		return host
	}
	registrable, _ := splitRegistrable(host)
	return registrable
}
