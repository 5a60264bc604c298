package signals

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxAPIResponse caps how much of a reputation API response is read.
const maxAPIResponse = 1 << 20

// defaultHTTPClient is shared by the live clients; per-request deadlines come
// from the analysis context.
var defaultHTTPClient = &http.Client{Timeout: 10 * time.Second}

// SafeBrowsingClient queries the Google Safe Browsing v4 threatMatches API.
type SafeBrowsingClient struct {
	APIKey     string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

func NewSafeBrowsingClient(apiKey string) *SafeBrowsingClient {
	return &SafeBrowsingClient{
		APIKey:     apiKey,
		HTTPClient: defaultHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
	}
}

func (c *SafeBrowsingClient) Name() string { return "google_safe_browsing" }

func (c *SafeBrowsingClient) Lookup(ctx context.Context, target string) (*ReputationVerdict, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := map[string]any{
		"client": map[string]string{
			"clientId":      "phishscope",
			"clientVersion": "0.1.0",
		},
		"threatInfo": map[string]any{
			"threatTypes":      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"},
			"platformTypes":    []string{"ANY_PLATFORM"},
			"threatEntryTypes": []string{"URL"},
			"threatEntries":    []map[string]string{{"url": target}},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("safebrowsing: marshaling request: %w", err)
	}

	endpoint := "https://safebrowsing.googleapis.com/v4/threatMatches:find?key=" + url.QueryEscape(c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var response struct {
		Matches []struct {
			ThreatType string `json:"threatType"`
		} `json:"matches"`
	}
	if err := doJSON(c.HTTPClient, req, &response); err != nil {
		return nil, fmt.Errorf("safebrowsing: %w", err)
	}

	threat := len(response.Matches) > 0
	return &ReputationVerdict{
		Source:         c.Name(),
		ThreatDetected: threat,
		Score:          trustScore(threat),
	}, nil
}

// VirusTotalClient queries the VirusTotal v3 URL report endpoint.
type VirusTotalClient struct {
	APIKey     string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

func NewVirusTotalClient(apiKey string) *VirusTotalClient {
	return &VirusTotalClient{
		APIKey:     apiKey,
		HTTPClient: defaultHTTPClient,
		// Public VT keys allow 4 requests a minute.
		limiter: rate.NewLimiter(rate.Every(15*time.Second), 4),
	}
}

func (c *VirusTotalClient) Name() string { return "virustotal" }

func (c *VirusTotalClient) Lookup(ctx context.Context, target string) (*ReputationVerdict, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// VT identifies URLs by the unpadded url-safe base64 of the URL itself.
	id := strings.TrimRight(base64.URLEncoding.EncodeToString([]byte(target)), "=")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.virustotal.com/api/v3/urls/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apikey", c.APIKey)

	var response struct {
		Data struct {
			Attributes struct {
				LastAnalysisStats struct {
					Malicious  int `json:"malicious"`
					Suspicious int `json:"suspicious"`
					Harmless   int `json:"harmless"`
				} `json:"last_analysis_stats"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := doJSON(c.HTTPClient, req, &response); err != nil {
		return nil, fmt.Errorf("virustotal: %w", err)
	}

	stats := response.Data.Attributes.LastAnalysisStats
	threat := stats.Malicious > 0
	return &ReputationVerdict{
		Source:         c.Name(),
		ThreatDetected: threat,
		Score:          trustScore(threat),
	}, nil
}

// PhishTankClient queries the crowd-sourced PhishTank blacklist.
type PhishTankClient struct {
	AppKey     string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

func NewPhishTankClient(appKey string) *PhishTankClient {
	return &PhishTankClient{
		AppKey:     appKey,
		HTTPClient: defaultHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(2), 2),
	}
}

func (c *PhishTankClient) Name() string { return "phishtank" }

func (c *PhishTankClient) Lookup(ctx context.Context, target string) (*ReputationVerdict, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{
		"url":    {target},
		"format": {"json"},
	}
	if c.AppKey != "" {
		form.Set("app_key", c.AppKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://checkurl.phishtank.com/checkurl/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var response struct {
		Results struct {
			InDatabase bool `json:"in_database"`
			Verified   bool `json:"verified"`
			Valid      bool `json:"valid"`
		} `json:"results"`
	}
	if err := doJSON(c.HTTPClient, req, &response); err != nil {
		return nil, fmt.Errorf("phishtank: %w", err)
	}

	listed := response.Results.InDatabase && response.Results.Verified
	return &ReputationVerdict{
		Source:         c.Name(),
		ThreatDetected: listed,
		InBlacklist:    listed,
		Score:          trustScore(listed),
	}, nil
}

// trustScore maps a binary verdict onto the 0-100 trust scale the engine
// expects: flagged URLs score 25, clean ones 75.
func trustScore(threat bool) float64 {
	if threat {
		return 25
	}
	return 75
}

// doJSON executes the request and decodes a JSON body into out, enforcing
// the response size cap and a 2xx status.
func doJSON(client *http.Client, req *http.Request, out any) error {
	if client == nil {
		client = defaultHTTPClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponse))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
