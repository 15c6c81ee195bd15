// Package reporter renders matching run results for people and programs.
//
// Supported output formats:
//   - Console: human-readable sections for terminal display
//   - JSON: structured output for programmatic consumption
//   - CSV: one row per candidate for spreadsheet analysis
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"invoice-matching-service/internal/analytics"
	"invoice-matching-service/internal/matcher"
	"invoice-matching-service/internal/workflow"
)

// OutputFormat selects how a report is rendered.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation.
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Section toggles
	IncludeCandidates      bool `json:"include_candidates"`
	IncludeTopMatches      bool `json:"include_top_matches"`
	IncludeFactorInfluence bool `json:"include_factor_influence"`
	IncludeUnmatched       bool `json:"include_unmatched"`
	IncludeSuggestions     bool `json:"include_suggestions"`
	IncludeParseStats      bool `json:"include_parse_stats"`

	// MaxListItems caps how many entries a console list prints before
	// truncating with a count of the remainder.
	MaxListItems int `json:"max_list_items"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                 FormatConsole,
		IncludeCandidates:      false,
		IncludeTopMatches:      true,
		IncludeFactorInfluence: true,
		IncludeUnmatched:       true,
		IncludeSuggestions:     true,
		IncludeParseStats:      true,
		MaxListItems:           10,
		CSVDelimiter:           ',',
		CSVHeaders:             true,
	}
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxListItems < 1 {
		return fmt.Errorf("max list items must be at least 1, got %d", c.MaxListItems)
	}

	return nil
}

// ReportGenerator renders matching results in the configured format.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator. A nil configuration
// selects the defaults.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders the result to the writer in the configured format.
func (rg *ReportGenerator) GenerateReport(result *workflow.Result, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("matching result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *workflow.Result, writer io.Writer) error {
	fmt.Fprintf(writer, "INVOICE MATCHING REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", result.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration:  %v\n\n", result.Duration)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	rg.printSummary(result.Stats, writer)
	fmt.Fprintf(writer, "\n")

	if result.Stats.TotalCandidates > 0 {
		fmt.Fprintf(writer, "=== MATCH AMBIGUITY ===\n")
		rg.printAmbiguity(result.Candidates, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeFactorInfluence && result.Stats.TotalCandidates > 0 {
		fmt.Fprintf(writer, "=== FACTOR INFLUENCE ===\n")
		rg.printFactorInfluence(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeTopMatches && len(result.TopMatches) > 0 {
		fmt.Fprintf(writer, "=== TOP MATCHES PER INVOICE ===\n")
		rg.printTopMatches(result.TopMatches, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeUnmatched {
		if len(result.UnmatchedInvoiceIDs) > 0 {
			fmt.Fprintf(writer, "=== UNMATCHED INVOICES ===\n")
			rg.printIDList(result.UnmatchedInvoiceIDs, writer)
			fmt.Fprintf(writer, "\n")
		}
		if len(result.UnmatchedTransactionIDs) > 0 {
			fmt.Fprintf(writer, "=== UNMATCHED TRANSACTIONS ===\n")
			rg.printIDList(result.UnmatchedTransactionIDs, writer)
			fmt.Fprintf(writer, "\n")
		}
	}

	if rg.config.IncludeSuggestions && len(result.Suggestions) > 0 {
		fmt.Fprintf(writer, "=== TUNING SUGGESTIONS ===\n")
		for _, suggestion := range result.Suggestions {
			fmt.Fprintf(writer, "  - %s\n", suggestion)
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeParseStats {
		rg.printParseStats(result, writer)
	}

	return nil
}

func (rg *ReportGenerator) generateJSONReport(result *workflow.Result, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rg.filterResultForOutput(result))
}

func (rg *ReportGenerator) generateCSVReport(result *workflow.Result, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Invoice_ID",
			"Transaction_ID",
			"Confidence",
			"Amount_Score",
			"Date_Score",
			"Reference_Score",
			"Amount_Difference",
			"Day_Difference",
			"Amount_Match",
			"Date_In_Window",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, candidate := range result.Candidates {
		record := []string{
			candidate.InvoiceID,
			candidate.TransactionID,
			fmt.Sprintf("%.4f", candidate.Confidence),
			fmt.Sprintf("%.4f", candidate.AmountScore),
			fmt.Sprintf("%.4f", candidate.DateScore),
			fmt.Sprintf("%.4f", candidate.ReferenceScore),
			candidate.Breakdown.AmountDifference.String(),
			strconv.Itoa(candidate.Breakdown.DayDifference),
			strconv.FormatBool(candidate.Breakdown.AmountMatch),
			strconv.FormatBool(candidate.Breakdown.DateInWindow),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write candidate record: %w", err)
		}
	}

	if rg.config.IncludeUnmatched {
		for _, id := range result.UnmatchedInvoiceIDs {
			if err := csvWriter.Write([]string{id, "", "", "", "", "", "", "", "", ""}); err != nil {
				return fmt.Errorf("failed to write unmatched invoice record: %w", err)
			}
		}
		for _, id := range result.UnmatchedTransactionIDs {
			if err := csvWriter.Write([]string{"", id, "", "", "", "", "", "", "", ""}); err != nil {
				return fmt.Errorf("failed to write unmatched transaction record: %w", err)
			}
		}
	}

	return nil
}

// Console section helpers

func (rg *ReportGenerator) printSummary(stats matcher.MatchStatistics, writer io.Writer) {
	fmt.Fprintf(writer, "Candidates:\n")
	fmt.Fprintf(writer, "  Total:  %d\n", stats.TotalCandidates)
	fmt.Fprintf(writer, "  High:   %d (%.1f%%)\n",
		stats.HighConfidence, rg.percentage(stats.HighConfidence, stats.TotalCandidates))
	fmt.Fprintf(writer, "  Medium: %d (%.1f%%)\n",
		stats.MediumConfidence, rg.percentage(stats.MediumConfidence, stats.TotalCandidates))
	fmt.Fprintf(writer, "  Low:    %d (%.1f%%)\n",
		stats.LowConfidence, rg.percentage(stats.LowConfidence, stats.TotalCandidates))

	fmt.Fprintf(writer, "\nAverage Confidence:    %.4f\n", stats.AverageConfidence)
	fmt.Fprintf(writer, "Distinct Invoices:     %d\n", stats.TotalInvoices)
	fmt.Fprintf(writer, "Distinct Transactions: %d\n", stats.TotalTransactions)
}

func (rg *ReportGenerator) printAmbiguity(candidates []*matcher.MatchCandidate, writer io.Writer) {
	oneToOne := analytics.OneToOne(candidates)
	ambiguous := analytics.Ambiguous(candidates)

	fmt.Fprintf(writer, "One-to-one: %d (%.1f%%)\n",
		len(oneToOne), rg.percentage(len(oneToOne), len(candidates)))
	fmt.Fprintf(writer, "Ambiguous:  %d (%.1f%%)\n",
		len(ambiguous), rg.percentage(len(ambiguous), len(candidates)))
}

func (rg *ReportGenerator) printFactorInfluence(result *workflow.Result, writer io.Writer) {
	influence := result.Influence
	fmt.Fprintf(writer, "Amount:    share %.1f%%, avg %.4f (min %.4f, max %.4f)\n",
		influence.Amount.Share*100, influence.Amount.Average, influence.Amount.Min, influence.Amount.Max)
	fmt.Fprintf(writer, "Date:      share %.1f%%, avg %.4f (min %.4f, max %.4f)\n",
		influence.Date.Share*100, influence.Date.Average, influence.Date.Min, influence.Date.Max)
	fmt.Fprintf(writer, "Reference: share %.1f%%, avg %.4f (min %.4f, max %.4f)\n",
		influence.Reference.Share*100, influence.Reference.Average, influence.Reference.Min, influence.Reference.Max)
}

func (rg *ReportGenerator) printTopMatches(topMatches map[string][]*matcher.MatchCandidate, writer io.Writer) {
	invoiceIDs := make([]string, 0, len(topMatches))
	for id := range topMatches {
		invoiceIDs = append(invoiceIDs, id)
	}
	sort.Strings(invoiceIDs)

	for i, invoiceID := range invoiceIDs {
		if i >= rg.config.MaxListItems && len(invoiceIDs) > rg.config.MaxListItems {
			fmt.Fprintf(writer, "... and %d more invoices\n", len(invoiceIDs)-rg.config.MaxListItems)
			break
		}

		fmt.Fprintf(writer, "%s:\n", invoiceID)
		for rank, candidate := range topMatches[invoiceID] {
			fmt.Fprintf(writer, "  %d. %s (confidence %.4f, amount %.2f, date %.2f, reference %.2f)\n",
				rank+1,
				candidate.TransactionID,
				candidate.Confidence,
				candidate.AmountScore,
				candidate.DateScore,
				candidate.ReferenceScore)
		}
	}
}

func (rg *ReportGenerator) printIDList(ids []string, writer io.Writer) {
	for i, id := range ids {
		if i >= rg.config.MaxListItems && len(ids) > rg.config.MaxListItems {
			fmt.Fprintf(writer, "  ... and %d more\n", len(ids)-rg.config.MaxListItems)
			break
		}
		fmt.Fprintf(writer, "  %d. %s\n", i+1, id)
	}
	fmt.Fprintf(writer, "Total: %d\n", len(ids))
}

func (rg *ReportGenerator) printParseStats(result *workflow.Result, writer io.Writer) {
	if result.InvoiceParseStats == nil && result.TransactionParseStats == nil {
		return
	}

	fmt.Fprintf(writer, "=== PARSE STATISTICS ===\n")
	if stats := result.InvoiceParseStats; stats != nil {
		fmt.Fprintf(writer, "Invoices:     %d parsed, %d skipped, %d errors\n",
			stats.RecordsParsed, stats.RecordsSkipped, stats.Errors.Len())
	}
	if stats := result.TransactionParseStats; stats != nil {
		fmt.Fprintf(writer, "Transactions: %d parsed, %d skipped, %d errors\n",
			stats.RecordsParsed, stats.RecordsSkipped, stats.Errors.Len())
	}
}

func (rg *ReportGenerator) percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}

func (rg *ReportGenerator) filterResultForOutput(result *workflow.Result) map[string]interface{} {
	output := map[string]interface{}{
		"stats":           result.Stats,
		"processed_at":    result.ProcessedAt,
		"duration":        result.Duration.String(),
		"one_to_one":      len(analytics.OneToOne(result.Candidates)),
		"ambiguous_count": len(analytics.Ambiguous(result.Candidates)),
	}

	if rg.config.IncludeCandidates {
		output["candidates"] = result.Candidates
	}

	if rg.config.IncludeTopMatches && result.TopMatches != nil {
		output["top_matches"] = result.TopMatches
	}

	if rg.config.IncludeFactorInfluence {
		output["factor_influence"] = result.Influence
	}

	if rg.config.IncludeUnmatched {
		output["unmatched_invoice_ids"] = result.UnmatchedInvoiceIDs
		output["unmatched_transaction_ids"] = result.UnmatchedTransactionIDs
	}

	if rg.config.IncludeSuggestions && len(result.Suggestions) > 0 {
		output["suggestions"] = result.Suggestions
	}

	if rg.config.IncludeParseStats {
		if result.InvoiceParseStats != nil {
			output["invoice_parse_stats"] = result.InvoiceParseStats
		}
		if result.TransactionParseStats != nil {
			output["transaction_parse_stats"] = result.TransactionParseStats
		}
	}

	return output
}

// UpdateConfiguration replaces the report configuration after validation.
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
