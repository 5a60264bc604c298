package signals

import (
	"context"
	"net/url"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Simulated reputation clients for demo setups and tests. They are selected
// only by explicit configuration (providers.reputation.mode: simulated) and
// are never a fallback for missing credentials: an unconfigured live setup
// reports "no data" instead.
//
// Verdicts are a deterministic function of the hostname, so repeated runs
// against the same URL agree with each other.

// simulatedHostBucket hashes the hostname into 0..99.
func simulatedHostBucket(rawURL, salt string) uint32 {
	host := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Hostname() != "" {
		host = strings.ToLower(parsed.Hostname())
	}
	return murmur3.Sum32([]byte(salt+host)) % 100
}

// SimulatedSafeBrowsingClient flags roughly one hostname in ten.
type SimulatedSafeBrowsingClient struct{}

func (SimulatedSafeBrowsingClient) Name() string { return "simulated_safe_browsing" }

func (c SimulatedSafeBrowsingClient) Lookup(_ context.Context, target string) (*ReputationVerdict, error) {
	threat := simulatedHostBucket(target, "gsb:") < 10
	return &ReputationVerdict{
		Source:         c.Name(),
		ThreatDetected: threat,
		Score:          trustScore(threat),
	}, nil
}

// SimulatedVirusTotalClient grades hostnames on a stable 0-100 scale and
// flags the bottom eighth.
type SimulatedVirusTotalClient struct{}

func (SimulatedVirusTotalClient) Name() string { return "simulated_virustotal" }

func (c SimulatedVirusTotalClient) Lookup(_ context.Context, target string) (*ReputationVerdict, error) {
	bucket := simulatedHostBucket(target, "vt:")
	return &ReputationVerdict{
		Source:         c.Name(),
		ThreatDetected: bucket < 12,
		Score:          float64(bucket),
	}, nil
}

// SimulatedPhishTankClient blacklists hostnames whose URL carries classic
// credential-bait keywords, mirroring how blacklist hits cluster in practice.
type SimulatedPhishTankClient struct{}

func (SimulatedPhishTankClient) Name() string { return "simulated_phishtank" }

func (c SimulatedPhishTankClient) Lookup(_ context.Context, target string) (*ReputationVerdict, error) {
	lower := strings.ToLower(target)
	listed := simulatedHostBucket(target, "pt:") < 5 &&
		(strings.Contains(lower, "secure") ||
			strings.Contains(lower, "login") ||
			strings.Contains(lower, "verify"))
	return &ReputationVerdict{
		Source:         c.Name(),
		ThreatDetected: listed,
		InBlacklist:    listed,
		Score:          trustScore(listed),
	}, nil
}
