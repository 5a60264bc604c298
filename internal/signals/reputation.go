package signals

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ReputationVerdict is one third-party service's opinion of a URL.
type ReputationVerdict struct {
	Source         string
	ThreatDetected bool
	// InBlacklist marks a hit in a crowd-sourced phishing blacklist, a
	// stronger statement than generic threat detection.
	InBlacklist bool
	// Score is a 0-100 trust rating, higher is better.
	Score float64
}

// ReputationClient looks a URL up in one external reputation service.
type ReputationClient interface {
	Name() string
	Lookup(ctx context.Context, url string) (*ReputationVerdict, error)
}

// ReputationProvider fans a URL out to all configured reputation services
// concurrently and aggregates their verdicts. Individual client failures are
// tolerated; the aggregate is built from whatever responded. With no clients
// configured the signal reports unchecked ("no data") instead of fabricating
// a verdict.
type ReputationProvider struct {
	clients []ReputationClient
}

func NewReputationProvider(clients ...ReputationClient) *ReputationProvider {
	return &ReputationProvider{clients: clients}
}

func (p *ReputationProvider) Name() string { return "reputation" }

func (p *ReputationProvider) Check(ctx context.Context, target Target) (Result, error) {
	if len(p.clients) == 0 {
		return ReputationResult{Checked: false}, nil
	}

	var (
		mu       sync.Mutex
		verdicts []*ReputationVerdict
	)

	// One goroutine per client; a failing client contributes nothing rather
	// than sinking the whole lookup.
	fanout := pool.New().WithContext(ctx)
	for _, client := range p.clients {
		fanout.Go(func(ctx context.Context) error {
			verdict, err := client.Lookup(ctx, target.URL)
			if err != nil || verdict == nil {
				return nil
			}
			mu.Lock()
			verdicts = append(verdicts, verdict)
			mu.Unlock()
			return nil
		})
	}
	_ = fanout.Wait()

	if len(verdicts) == 0 {
		// Every configured service failed: that is an omission, not clean data.
		return ReputationResult{Checked: false}, nil
	}

	return aggregateVerdicts(verdicts), nil
}

// aggregateVerdicts folds per-service verdicts into one signal: any threat
// flags the aggregate, any blacklist hit marks it blacklisted, and the trust
// score is the mean of the services that answered.
func aggregateVerdicts(verdicts []*ReputationVerdict) ReputationResult {
	result := ReputationResult{Checked: true}

	var sum float64
	for _, v := range verdicts {
		if v.ThreatDetected {
			result.ThreatDetected = true
		}
		if v.InBlacklist {
			result.InBlacklist = true
		}
		sum += v.Score
		result.DataSources = append(result.DataSources, v.Source)
	}
	result.Reputation = sum / float64(len(verdicts))

	// Completion order varies; keep the record deterministic.
	sort.Strings(result.DataSources)

	return result
}
