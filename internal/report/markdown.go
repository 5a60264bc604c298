package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/hakim/phishscope/internal/models"
)

// WriteAnalysisReport generates a markdown report for a single analysis and
// writes it to the specified output path.
func WriteAnalysisReport(record *models.AnalysisRecord, outputPath string) error {
	data := RenderAnalysisReport(record)

	if err := os.WriteFile(outputPath, []byte(data), 0644); err != nil {
		return fmt.Errorf("writing report to %s: %w", outputPath, err)
	}
	return nil
}

// RenderAnalysisReport renders the markdown body for an analysis record.
func RenderAnalysisReport(record *models.AnalysisRecord) string {
	var b strings.Builder

	// Header
	b.WriteString("# Phishing Risk Report\n\n")
	b.WriteString(fmt.Sprintf("**URL:** %s\n", record.URL))
	if record.Domain != "" {
		b.WriteString(fmt.Sprintf("**Domain:** %s\n", record.Domain))
	}
	b.WriteString(fmt.Sprintf("**Date:** %s\n", record.Timestamp.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("**Score:** %d/100 | **Risk tier:** %s\n\n", record.Score, record.RiskTier))

	// Verdict
	b.WriteString("## Verdict\n\n")
	b.WriteString(record.Explanation)
	b.WriteString("\n\n")

	// Indicators grouped by severity
	b.WriteString("## Indicators\n\n")
	if len(record.Indicators) > 0 {
		writeIndicatorSection(&b, "High risk", record.Indicators, models.SeverityHigh)
		writeIndicatorSection(&b, "Medium risk", record.Indicators, models.SeverityMedium)
		writeIndicatorSection(&b, "Low risk", record.Indicators, models.SeverityLow)
		writeIndicatorSection(&b, "Safety", record.Indicators, models.SeveritySafe)
	} else {
		b.WriteString("None recorded.\n\n")
	}

	// Signal coverage
	b.WriteString("## Signals\n\n")
	if len(record.Signals) > 0 {
		b.WriteString("| Provider | Checked | Summary |\n")
		b.WriteString("|----------|---------|--------|\n")
		for _, sig := range record.Signals {
			summary := sig.Summary
			if sig.Error != "" {
				summary = "error: " + sig.Error
			}
			b.WriteString(fmt.Sprintf("| %s | %t | %s |\n", sig.Provider, sig.Checked, summary))
		}
	} else {
		b.WriteString("No signal providers ran for this analysis.\n")
	}
	b.WriteString("\n")

	return b.String()
}

func writeIndicatorSection(b *strings.Builder, title string, indicators []models.Indicator, sev models.Severity) {
	matching := make([]models.Indicator, 0)
	for _, ind := range indicators {
		if ind.Severity == sev {
			matching = append(matching, ind)
		}
	}
	if len(matching) == 0 {
		return
	}

	b.WriteString(fmt.Sprintf("### %s\n\n", title))
	for _, ind := range matching {
		b.WriteString(fmt.Sprintf("- %s\n", ind.Message))
	}
	b.WriteString("\n")
}
