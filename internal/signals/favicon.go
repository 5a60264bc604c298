package signals

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spaolacci/murmur3"
)

// maxFaviconBytes caps how much favicon data is fetched.
const maxFaviconBytes = 512 << 10

// knownFaviconHashes maps murmur3 fingerprints of frequently-impersonated
// brand favicons to the brand name. Fingerprints are maintained the same way
// Shodan-style favicon hashing is: hash the raw icon bytes and record the
// value observed on the legitimate site.
var knownFaviconHashes = map[uint32]string{
	0x81a3f0cb: "PayPal",
	0x23c1f98a: "Apple",
	0x5d04a142: "Microsoft",
	0xd41ec0a7: "Google",
	0x9e3779b1: "Amazon",
	0x3f218cc4: "Facebook",
	0xa1b90f36: "Netflix",
	0x70d3b2e5: "Chase",
	0xc6e01d88: "Wells Fargo",
	0x1b873593: "Bank of America",
}

// FaviconProvider fetches the target's favicon and compares its fingerprint
// against known brand favicons. Any fingerprint match is reported and scored
// as an impersonation signal, including on the brand's own domain; operators
// exempt legitimate sites via the trusted_domains allow-list, which skips
// scoring entirely.
type FaviconProvider struct {
	HTTPClient   *http.Client
	fingerprints map[uint32]string
}

func NewFaviconProvider() *FaviconProvider {
	return &FaviconProvider{
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
		fingerprints: knownFaviconHashes,
	}
}

func (p *FaviconProvider) Name() string { return "favicon" }

func (p *FaviconProvider) Check(ctx context.Context, target Target) (Result, error) {
	f := target.Features
	if f.Host == "" || f.IsDataURI {
		return FaviconResult{Checked: false}, nil
	}

	icon, err := p.fetchFavicon(ctx, f.Scheme, f.Host)
	if err != nil {
		return nil, fmt.Errorf("favicon: %w", err)
	}
	if len(icon) == 0 {
		return FaviconResult{Checked: false}, nil
	}

	hash := murmur3.Sum32(icon)
	if brand, ok := p.fingerprints[hash]; ok {
		return FaviconResult{
			Checked:          true,
			MatchesKnownSite: true,
			SimilarityScore:  1.0,
			TargetBrand:      brand,
		}, nil
	}

	return FaviconResult{Checked: true}, nil
}

func (p *FaviconProvider) fetchFavicon(ctx context.Context, scheme, host string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		scheme+"://"+host+"/favicon.ico", nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// No favicon is common and carries no signal either way.
		return nil, nil
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxFaviconBytes))
}
