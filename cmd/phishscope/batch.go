package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hakim/phishscope/internal/analyzer"
	"github.com/hakim/phishscope/internal/models"
	"github.com/hakim/phishscope/internal/storage"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze a list of URLs from a file",
	Long: `Analyze every URL listed in a file (one per line, '#' comments allowed)
and persist the results to history.

Analyses run concurrently up to --concurrency. Each URL is fully isolated:
one failing analysis never affects the others.

Examples:
  phishscope batch -f urls.txt
  phishscope batch -f urls.txt --concurrency 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// ── 1. Flags and config ────────────────────────────────────────────────
		listPath, _ := cmd.Flags().GetString("file")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		if cfg == nil {
			return fmt.Errorf("config not loaded. Run 'phishscope init' first to create config")
		}
		if concurrency <= 0 {
			concurrency = 4
		}

		// ── 2. Read the URL list ───────────────────────────────────────────────
		urls, err := readURLList(listPath)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return fmt.Errorf("no URLs found in %s", listPath)
		}
		fmt.Printf("[*] Analyzing %d URL(s) with concurrency %d...\n", len(urls), concurrency)

		// ── 3. Open history store ──────────────────────────────────────────────
		store, err := storage.NewStore(cfg.History.Path, cfg.History.Retention)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer store.Close()

		// ── 4. Fan out ─────────────────────────────────────────────────────────
		a := analyzer.New(cfg, analyzer.BuildProviders(cfg)...)

		var (
			mu       sync.Mutex
			byTier   = map[models.RiskTier]int{}
			failures int
		)

		fanout := pool.New().WithMaxGoroutines(concurrency)
		for _, url := range urls {
			fanout.Go(func() {
				record, err := a.Analyze(context.Background(), url, nil)
				if err != nil {
					mu.Lock()
					failures++
					mu.Unlock()
					fmt.Printf("[!] %s: analysis failed: %v\n", url, err)
					return
				}

				mu.Lock()
				byTier[record.RiskTier]++
				mu.Unlock()

				if err := store.SaveAnalysis(record); err != nil {
					fmt.Printf("[!] Warning: could not save %s: %v\n", url, err)
				}
				fmt.Printf("[+] %-12s %3d/100  %s\n", record.RiskTier, record.Score, url)
			})
		}
		fanout.Wait()

		// ── 5. Summary ─────────────────────────────────────────────────────────
		fmt.Println()
		fmt.Printf("[*] Batch complete: %d analyzed, %d failed\n", len(urls)-failures, failures)
		for _, tier := range []models.RiskTier{models.TierHighRisk, models.TierMediumRisk, models.TierLowRisk, models.TierSafe} {
			if byTier[tier] > 0 {
				fmt.Printf("    %-12s %d\n", tier, byTier[tier])
			}
		}

		return nil
	},
}

// readURLList reads one URL per line, skipping blanks and '#' comments.
func readURLList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL list: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	return urls, nil
}

func init() {
	batchCmd.Flags().StringP("file", "f", "", "file with one URL per line (required)")
	batchCmd.Flags().Int("concurrency", 4, "number of URLs analyzed in parallel")
	batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
