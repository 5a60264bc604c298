package signals

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/hakim/phishscope/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sslTarget(rawURL string, https bool) Target {
	return Target{
		URL: rawURL,
		Features: &features.URLFeatures{
			URL:      rawURL,
			Host:     "example.com",
			HasHTTPS: https,
		},
	}
}

// selfSignedCert issues a throwaway certificate for example.com, optionally
// carrying an EV policy OID.
func selfSignedCert(t *testing.T, ev bool) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "example.com"},
		Issuer:       pkix.Name{CommonName: "Test Issuer"},
		DNSNames:     []string{"example.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	if ev {
		// CreateCertificate marshals Policies, not the deprecated
		// PolicyIdentifiers; parsing fills both on the way back in.
		oid, err := x509.OIDFromInts([]uint64{2, 23, 140, 1, 1})
		require.NoError(t, err)
		template.Policies = []x509.OID{oid}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestSSLNonHTTPSIsPoorWithoutNetwork(t *testing.T) {
	p := NewSSLProvider(0)
	p.dial = func(ctx context.Context, addr, serverName string) ([]*x509.Certificate, error) {
		t.Fatal("dial must not be called for plain HTTP targets")
		return nil, nil
	}

	result, err := p.Check(context.Background(), sslTarget("http://example.com/", false))
	require.NoError(t, err)
	r := result.(SSLResult)

	assert.True(t, r.Checked)
	assert.False(t, r.HasSSL)
	assert.Equal(t, SecurityPoor, r.Level)
	assert.Equal(t, "No HTTPS connection", r.Reason)
}

func TestSSLUntrustedChainIsPoor(t *testing.T) {
	p := NewSSLProvider(time.Second)
	p.dial = func(ctx context.Context, addr, serverName string) ([]*x509.Certificate, error) {
		return []*x509.Certificate{selfSignedCert(t, false)}, nil
	}

	result, err := p.Check(context.Background(), sslTarget("https://example.com/", true))
	require.NoError(t, err)
	r := result.(SSLResult)

	assert.True(t, r.HasSSL)
	assert.False(t, r.Trusted)
	assert.Equal(t, SecurityPoor, r.Level)
	assert.Equal(t, "Untrusted certificate", r.Reason)
}

func TestSSLDialFailure(t *testing.T) {
	p := NewSSLProvider(time.Second)
	p.dial = func(ctx context.Context, addr, serverName string) ([]*x509.Certificate, error) {
		return nil, errors.New("connection refused")
	}

	_, err := p.Check(context.Background(), sslTarget("https://example.com/", true))
	assert.Error(t, err)
}

func TestSSLEmptyChainIsError(t *testing.T) {
	p := NewSSLProvider(time.Second)
	p.dial = func(ctx context.Context, addr, serverName string) ([]*x509.Certificate, error) {
		return nil, nil
	}

	_, err := p.Check(context.Background(), sslTarget("https://example.com/", true))
	assert.Error(t, err)
}

func TestIsExtendedValidation(t *testing.T) {
	assert.True(t, isExtendedValidation(selfSignedCert(t, true)))
	assert.False(t, isExtendedValidation(selfSignedCert(t, false)))
}

func TestClassifyPosture(t *testing.T) {
	level, reason := classifyPosture(false, false)
	assert.Equal(t, SecurityPoor, level)
	assert.Equal(t, "Untrusted certificate", reason)

	level, reason = classifyPosture(false, true)
	assert.Equal(t, SecurityPoor, level)
	assert.NotEmpty(t, reason)

	level, reason = classifyPosture(true, false)
	assert.Equal(t, SecurityGood, level)
	assert.Equal(t, "Valid HTTPS certificate", reason)

	level, reason = classifyPosture(true, true)
	assert.Equal(t, SecurityExcellent, level)
	assert.Equal(t, "Extended Validation certificate", reason)
}

func TestDialAddrDefaultsPort(t *testing.T) {
	addr, err := dialAddr("https://example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "example.com:443", addr)

	addr, err = dialAddr("https://example.com:8443/path")
	require.NoError(t, err)
	assert.Equal(t, "example.com:8443", addr)
}
