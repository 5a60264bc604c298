package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hakim/phishscope/internal/config"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and show provider status",
	Long: `Load and validate the configuration file, then show which signal
providers are active and which reputation services have credentials.

Useful after editing phishscope.yaml to confirm the file still parses
and the thresholds are consistent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Config loading is skipped for this command in the root hook so that a
		// broken file can still be diagnosed here with full error output.
		loaded, err := config.Load(cfgFile)
		if err != nil {
			fmt.Printf("[!] Configuration is invalid:\n    %v\n", err)
			return fmt.Errorf("configuration check failed")
		}
		fmt.Println("[+] Configuration loaded and validated")
		fmt.Printf("    Thresholds: safe >= %d, low risk >= %d, medium risk >= %d\n",
			loaded.Thresholds.Safe, loaded.Thresholds.Suspicious, loaded.Thresholds.Dangerous)
		fmt.Printf("    Analysis timeout: %s\n", loaded.Timeout())
		fmt.Printf("    History: %s (retention %d)\n", loaded.History.Path, loaded.History.Retention)
		if len(loaded.TrustedDomains) > 0 {
			fmt.Printf("    Trusted domains: %d\n", len(loaded.TrustedDomains))
		}

		// Provider table
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Provider\tStatus\tNotes")
		fmt.Fprintln(w, "--------\t------\t-----")

		writeProviderRow(w, "heuristics", loaded.Providers.Heuristics.Enabled,
			fmt.Sprintf("max %d subdomains, max length %d", loaded.Heuristics.MaxSubdomains, loaded.Heuristics.MaxURLLength))
		writeProviderRow(w, "ssl", loaded.Providers.SSL.Enabled, "live TLS handshake")
		writeProviderRow(w, "text", loaded.Providers.Text.Enabled, "needs page content (--page)")
		writeProviderRow(w, "favicon", loaded.Providers.Favicon.Enabled, "fetches /favicon.ico")
		writeProviderRow(w, "reputation", loaded.Providers.Reputation.Enabled,
			fmt.Sprintf("mode %s", loaded.Providers.Reputation.Mode))
		w.Flush()

		// Credential status only matters in live mode
		if loaded.Providers.Reputation.Enabled && loaded.Providers.Reputation.Mode == config.ReputationModeLive {
			fmt.Println()
			fmt.Println("Reputation services:")
			printCredential("Google Safe Browsing", loaded.Providers.Reputation.SafeBrowsing)
			printCredential("VirusTotal", loaded.Providers.Reputation.VirusTotal)
			printCredential("PhishTank", loaded.Providers.Reputation.PhishTank)

			if !hasAnyCredential(loaded) {
				fmt.Println()
				fmt.Println("[!] No reputation service is usable; reputation lookups will report no data.")
				fmt.Println("    Add API keys under providers.reputation, or set mode to 'simulated'.")
			}
		}

		return nil
	},
}

func writeProviderRow(w *tabwriter.Writer, name string, enabled bool, notes string) {
	status := "[-] disabled"
	if enabled {
		status = "[+] enabled"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\n", name, status, notes)
}

func printCredential(name string, cred config.APICredential) {
	switch {
	case !cred.Enabled:
		fmt.Printf("  %-22s disabled\n", name)
	case cred.APIKey == "":
		fmt.Printf("  %-22s enabled, MISSING API KEY\n", name)
	default:
		fmt.Printf("  %-22s ready\n", name)
	}
}

func hasAnyCredential(c *config.Config) bool {
	rep := c.Providers.Reputation
	for _, cred := range []config.APICredential{rep.SafeBrowsing, rep.VirusTotal, rep.PhishTank} {
		if cred.Enabled && cred.APIKey != "" {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
