package signals

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"net"
	"net/url"
	"time"
)

// evPolicyOIDs are certificate policy identifiers that mark Extended
// Validation issuance: the CA/Browser Forum EV policy plus the well-known
// per-CA EV OIDs.
var evPolicyOIDs = []asn1.ObjectIdentifier{
	{2, 23, 140, 1, 1},                       // CA/Browser Forum EV
	{2, 16, 840, 1, 114412, 2, 1},            // DigiCert EV
	{1, 3, 6, 1, 4, 1, 6449, 1, 2, 1, 5, 1},  // Sectigo/Comodo EV
	{1, 3, 6, 1, 4, 1, 4146, 1, 1},           // GlobalSign EV
	{2, 16, 840, 1, 114028, 10, 1, 2},        // Entrust EV
	{1, 3, 6, 1, 4, 1, 34697, 2, 1},          // Trustwave EV
}

// SSLProvider inspects the live certificate chain of an HTTPS endpoint.
// Policy: untrusted chain is poor, extended validation is excellent,
// anything else that completes a handshake is good.
type SSLProvider struct {
	// Timeout bounds the TCP+TLS handshake. Defaults to 5s.
	Timeout time.Duration

	// dial is swapped in tests to avoid real network handshakes.
	dial func(ctx context.Context, addr, serverName string) ([]*x509.Certificate, error)
}

func NewSSLProvider(timeout time.Duration) *SSLProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SSLProvider{Timeout: timeout}
}

func (p *SSLProvider) Name() string { return "ssl" }

// Check connects to the target host and classifies its certificate posture.
// Plain-HTTP and data-URI targets never reach the network: no SSL is itself
// the verdict.
func (p *SSLProvider) Check(ctx context.Context, target Target) (Result, error) {
	f := target.Features

	if !f.HasHTTPS {
		return SSLResult{
			Checked: true,
			HasSSL:  false,
			Level:   SecurityPoor,
			Reason:  "No HTTPS connection",
		}, nil
	}

	addr, err := dialAddr(target.URL)
	if err != nil {
		return nil, fmt.Errorf("ssl: resolving dial address: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	dial := p.dial
	if dial == nil {
		dial = fetchPeerCertificates
	}

	chain, err := dial(dialCtx, addr, f.Host)
	if err != nil {
		return nil, fmt.Errorf("ssl: handshake with %s: %w", addr, err)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("ssl: %s presented no certificates", addr)
	}

	leaf := chain[0]
	trusted := verifyChain(chain, f.Host)
	ev := isExtendedValidation(leaf)
	level, reason := classifyPosture(trusted, ev)

	return SSLResult{
		Checked: true,
		HasSSL:  true,
		Issuer:  leaf.Issuer.CommonName,
		Trusted: trusted,
		EV:      ev,
		Level:   level,
		Reason:  reason,
	}, nil
}

// dialAddr derives host:port from the URL, defaulting to 443.
func dialAddr(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	port := parsed.Port()
	if port == "" {
		port = "443"
	}
	return net.JoinHostPort(parsed.Hostname(), port), nil
}

// fetchPeerCertificates handshakes with verification disabled so the chain
// of an untrusted site can still be inspected; trust is decided separately
// by verifyChain.
func fetchPeerCertificates(ctx context.Context, addr, serverName string) ([]*x509.Certificate, error) {
	dialer := &tls.Dialer{
		Config: &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: true,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.(*tls.Conn).ConnectionState().PeerCertificates, nil
}

// verifyChain checks the presented chain against the system roots and the
// expected hostname.
func verifyChain(chain []*x509.Certificate, host string) bool {
	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}

	_, err := chain[0].Verify(x509.VerifyOptions{
		DNSName:       host,
		Intermediates: intermediates,
	})
	return err == nil
}

// isExtendedValidation reports whether the leaf carries a known EV policy.
func isExtendedValidation(leaf *x509.Certificate) bool {
	for _, policy := range leaf.PolicyIdentifiers {
		for _, ev := range evPolicyOIDs {
			if policy.Equal(ev) {
				return true
			}
		}
	}
	return false
}

// classifyPosture applies the posture policy: untrusted beats everything,
// EV upgrades, the remainder is plain good.
func classifyPosture(trusted, ev bool) (SecurityLevel, string) {
	switch {
	case !trusted:
		return SecurityPoor, "Untrusted certificate"
	case ev:
		return SecurityExcellent, "Extended Validation certificate"
	default:
		return SecurityGood, "Valid HTTPS certificate"
	}
}
