package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hakim/phishscope/internal/models"
	"github.com/hakim/phishscope/internal/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past analysis results",
	Long: `Show analyses stored in the history database, newest first.

With --domain the listing is restricted to a single registrable domain.

Examples:
  phishscope history
  phishscope history --limit 25
  phishscope history --domain paypal-secure.tk --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, _ := cmd.Flags().GetString("domain")
		limit, _ := cmd.Flags().GetInt("limit")
		jsonOut, _ := cmd.Flags().GetBool("json")

		if cfg == nil {
			return fmt.Errorf("config not loaded. Run 'phishscope init' first to create config")
		}
		if limit <= 0 {
			limit = 10
		}

		store, err := storage.NewStore(cfg.History.Path, cfg.History.Retention)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer store.Close()

		var records []*models.AnalysisRecord
		if domain != "" {
			records, err = store.ListAnalyses(domain)
		} else {
			records, err = store.RecentAnalyses(limit)
		}
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if domain != "" && len(records) > limit {
			records = records[:limit]
		}

		if len(records) == 0 {
			fmt.Println("[*] No analyses in history")
			return nil
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		printHistoryTable(records)
		return nil
	},
}

func printHistoryTable(records []*models.AnalysisRecord) {
	fmt.Printf("%-36s  %-20s  %5s  %-12s  %s\n", "ID", "TIME", "SCORE", "TIER", "URL")
	fmt.Println(strings.Repeat("-", 92))
	for _, r := range records {
		url := r.URL
		if len(url) > 50 {
			url = url[:47] + "..."
		}
		fmt.Printf("%-36s  %-20s  %5d  %-12s  %s\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Score,
			r.RiskTier,
			url,
		)
	}
	fmt.Printf("\n[*] %d record(s)\n", len(records))
}

func init() {
	historyCmd.Flags().String("domain", "", "filter by registrable domain")
	historyCmd.Flags().Int("limit", 10, "maximum number of records to show")
	historyCmd.Flags().Bool("json", false, "print records as JSON")
	rootCmd.AddCommand(historyCmd)
}
