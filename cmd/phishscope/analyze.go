package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hakim/phishscope/internal/analyzer"
	"github.com/hakim/phishscope/internal/features"
	"github.com/hakim/phishscope/internal/models"
	"github.com/hakim/phishscope/internal/notify"
	"github.com/hakim/phishscope/internal/report"
	"github.com/hakim/phishscope/internal/storage"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a URL for phishing risk",
	Long: `Run the full signal pipeline against a single URL and print the verdict.

All enabled signal providers run concurrently; a provider that fails or times
out is recorded as an omitted signal and scoring proceeds with the rest.
Supply a saved HTML file with --page to include page-content signals
(suspicious phrases, urgency language, brand impersonation).

The result is appended to the local history database unless --no-save is set.

Examples:
  phishscope analyze -u https://example.com
  phishscope analyze -u https://paypa1-secure.tk/login --page page.html
  phishscope analyze -u https://example.com --json
  phishscope analyze -u https://example.com --report verdict.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// ── 1. Read all flags ──────────────────────────────────────────────────
		rawURL, _ := cmd.Flags().GetString("url")
		pagePath, _ := cmd.Flags().GetString("page")
		asJSON, _ := cmd.Flags().GetBool("json")
		reportPath, _ := cmd.Flags().GetString("report")
		noSave, _ := cmd.Flags().GetBool("no-save")

		// ── 2. Config check ────────────────────────────────────────────────────
		if cfg == nil {
			return fmt.Errorf("config not loaded. Run 'phishscope init' first to create config")
		}

		// ── 3. Optional page snapshot ──────────────────────────────────────────
		var snap *features.PageSnapshot
		if pagePath != "" {
			html, err := os.ReadFile(pagePath)
			if err != nil {
				return fmt.Errorf("reading page snapshot: %w", err)
			}
			snap = &features.PageSnapshot{HTML: string(html)}
		}

		// ── 4. Run the analysis ────────────────────────────────────────────────
		a := analyzer.New(cfg, analyzer.BuildProviders(cfg)...)
		if verbose {
			a.OnProviderStart = func(name string) {
				fmt.Printf("[*] Running provider %q...\n", name)
			}
			a.OnProviderDone = func(name string, err error, elapsed time.Duration) {
				if err != nil {
					fmt.Printf("[!] Provider %q failed (%s): %v\n", name, elapsed.Round(time.Millisecond), err)
				} else {
					fmt.Printf("[+] Provider %q complete (%s)\n", name, elapsed.Round(time.Millisecond))
				}
			}
		}

		record, err := a.Analyze(context.Background(), rawURL, snap)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if record.Invalid {
			fmt.Printf("[!] Warning: URL could not be parsed, reporting unknown risk\n")
		}

		// ── 5. Print verdict ───────────────────────────────────────────────────
		if asJSON {
			data, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Println(string(data))
		} else {
			printVerdict(record)
		}

		// ── 6. Persist to history ──────────────────────────────────────────────
		if !noSave {
			store, err := storage.NewStore(cfg.History.Path, cfg.History.Retention)
			if err != nil {
				fmt.Printf("[!] Warning: could not open history database: %v\n", err)
			} else {
				defer store.Close()
				if err := store.SaveAnalysis(record); err != nil {
					fmt.Printf("[!] Warning: could not save analysis to history: %v\n", err)
				} else if verbose {
					fmt.Printf("[*] Saved analysis %s to history\n", record.ID)
				}
			}
		}

		// ── 7. Optional markdown report ────────────────────────────────────────
		if reportPath != "" {
			if err := report.WriteAnalysisReport(record, reportPath); err != nil {
				return err
			}
			fmt.Printf("[+] Report written to %s\n", reportPath)
		}

		// ── 8. Webhook notification for risky verdicts ─────────────────────────
		notifier := &notify.NotifyConfig{WebhookURL: cfg.NotifyWebhook}
		if err := notifier.SendVerdict(record); err != nil {
			fmt.Printf("[!] Warning: %v\n", err)
		}

		return nil
	},
}

// printVerdict renders a human-readable verdict in the terminal.
func printVerdict(record *models.AnalysisRecord) {
	const separator = "────────────────────────────────────────────────────────────────────────"

	fmt.Println()
	fmt.Println(separator)
	fmt.Printf("  URL:        %s\n", record.URL)
	fmt.Printf("  Score:      %d/100\n", record.Score)
	fmt.Printf("  Risk tier:  %s\n", record.RiskTier)
	fmt.Println(separator)

	if len(record.Indicators) > 0 {
		fmt.Println("  Indicators:")
		for _, ind := range record.Indicators {
			fmt.Printf("    %s %s\n", severityMarker(ind.Severity), ind.Message)
		}
		fmt.Println(separator)
	}

	fmt.Printf("  %s\n", record.Explanation)
	fmt.Println(separator)

	for _, sig := range record.Signals {
		if sig.Error != "" {
			fmt.Printf("[!] Signal %q omitted: %s\n", sig.Provider, sig.Error)
		} else if !sig.Checked {
			fmt.Printf("[*] Signal %q reported no data\n", sig.Provider)
		}
	}
	fmt.Println()
}

// severityMarker maps a severity to the terminal prefix used in listings.
func severityMarker(sev models.Severity) string {
	switch sev {
	case models.SeverityHigh:
		return "[!!]"
	case models.SeverityMedium:
		return "[! ]"
	case models.SeverityLow:
		return "[  ]"
	case models.SeveritySafe:
		return "[ok]"
	default:
		return "[  ]"
	}
}

func init() {
	analyzeCmd.Flags().StringP("url", "u", "", "URL to analyze (required)")
	analyzeCmd.Flags().String("page", "", "path to a saved HTML snapshot of the page")
	analyzeCmd.Flags().Bool("json", false, "print the full analysis record as JSON")
	analyzeCmd.Flags().String("report", "", "write a markdown report to this path")
	analyzeCmd.Flags().Bool("no-save", false, "do not persist the analysis to history")
	analyzeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(analyzeCmd)
}
