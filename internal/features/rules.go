package features

import (
	"sort"
	"strings"
)

// suspiciousKeywords are terms that phishing URLs lean on to look official.
// Matched case-insensitively against the full URL.
var suspiciousKeywords = []string{
	"secure", "account", "login", "signin", "verify", "update", "confirm",
	"banking", "authorize", "authentication", "password", "support",
	"wallet", "security", "pay", "sign-in", "appleid", "confirm-identity",
}

// misspelledDomains maps a brand to typo variants of its domain commonly
// registered by phishers. Matched by substring against the hostname.
var misspelledDomains = map[string][]string{
	"paypal":        {"paypa1l", "paypall", "paypa1", "paypa-l", "payypal"},
	"microsoft":     {"micros0ft", "rnicrosoft", "micrososft", "microsoft-secure"},
	"amazon":        {"arnaz0n", "arnazon", "amazan", "amazonn"},
	"apple":         {"app1e", "appl3", "appie", "apple-id", "apple-secure"},
	"facebook":      {"faceb00k", "faceboook", "facebokk", "facbook"},
	"google":        {"g00gle", "googgle", "gooogle", "goggle"},
	"netflix":       {"netf1ix", "netflixx", "net-flix", "netflixaccount"},
	"instagram":     {"instagran", "lnstagram", "instagrarn"},
	"linkedin":      {"linkedln", "linked-in", "linkedim"},
	"twitter":       {"twltter", "tvvitter", "tvvlter"},
	"outlook":       {"0utlook", "outlooks", "outlook-mail"},
	"chase":         {"chasebank", "chaseonline", "chase-secure"},
	"wellsfargo":    {"wells-fargo", "wellsfargobank", "wellsfargo-secure"},
	"bankofamerica": {"bankofamerica-secure", "bank0famerica", "bancofamerica"},
}

// countSuspiciousKeywords counts distinct known keywords present in the URL.
func countSuspiciousKeywords(rawURL string) int {
	lower := strings.ToLower(rawURL)
	hits := 0
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

// matchMisspellings returns "variant (brand)" for every typo variant found
// in the hostname. One hit per brand is enough.
func matchMisspellings(host string) []string {
	var matches []string
	for brand, variants := range misspelledDomains {
		for _, variant := range variants {
			if strings.Contains(host, variant) {
				matches = append(matches, variant+" ("+brand+")")
				break
			}
		}
	}
	// Map iteration order is random; keep results deterministic.
	sort.Strings(matches)
	return matches
}
