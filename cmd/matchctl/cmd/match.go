package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"invoice-matching-service/cmd/matchctl/config"
	"invoice-matching-service/internal/reporter"
	"invoice-matching-service/internal/workflow"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the match command
var (
	invoicesFile     string
	transactionsFile string
	outputFormat     string
	outputFile       string

	exactAmounts    bool
	amountTolerance float64
	dateWindow      int
	minConfidence   float64
	amountWeight    float64
	dateWeight      float64
	referenceWeight float64
	topN            int
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match invoices against payment transactions",
	Long: `Match scores every invoice against every transaction and reports
ranked match candidates.

This command requires:
- An invoice file (CSV format)
- A transaction file (CSV format)

Examples:
  # Basic matching
  matchctl match --invoices invoices.csv --transactions transactions.csv

  # Custom tolerances and confidence bar
  matchctl match --invoices inv.csv --transactions txn.csv \
    --amount-tolerance 0.05 --date-window 14 --min-confidence 0.7

  # JSON report written to a file
  matchctl match --invoices inv.csv --transactions txn.csv \
    --output-format json --output-file report.json

  # Keep the 5 best candidates per invoice
  matchctl match --invoices inv.csv --transactions txn.csv --top-n 5`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	// Required flags
	matchCmd.Flags().StringVarP(&invoicesFile, "invoices", "i", "", "path to invoice CSV file (required)")
	matchCmd.Flags().StringVarP(&transactionsFile, "transactions", "t", "", "path to transaction CSV file (required)")

	// Output flags
	matchCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	matchCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Matching configuration flags
	matchCmd.Flags().BoolVar(&exactAmounts, "exact-amounts", false, "require exactly equal amounts")
	matchCmd.Flags().Float64VarP(&amountTolerance, "amount-tolerance", "a", 0.02, "amount tolerance as a fraction of the invoice amount")
	matchCmd.Flags().IntVarP(&dateWindow, "date-window", "d", 30, "date window in days")
	matchCmd.Flags().Float64VarP(&minConfidence, "min-confidence", "m", 0.5, "minimum confidence for a candidate (0.0-1.0)")
	matchCmd.Flags().Float64Var(&amountWeight, "amount-weight", 0.4, "relative weight of the amount score")
	matchCmd.Flags().Float64Var(&dateWeight, "date-weight", 0.3, "relative weight of the date score")
	matchCmd.Flags().Float64Var(&referenceWeight, "reference-weight", 0.3, "relative weight of the reference score")
	matchCmd.Flags().IntVarP(&topN, "top-n", "n", 3, "candidates kept per invoice")

	matchCmd.MarkFlagRequired("invoices")
	matchCmd.MarkFlagRequired("transactions")

	// Bind flags to viper
	viper.BindPFlag("invoices", matchCmd.Flags().Lookup("invoices"))
	viper.BindPFlag("transactions", matchCmd.Flags().Lookup("transactions"))
	viper.BindPFlag("output-format", matchCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", matchCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("exact-amounts", matchCmd.Flags().Lookup("exact-amounts"))
	viper.BindPFlag("amount-tolerance", matchCmd.Flags().Lookup("amount-tolerance"))
	viper.BindPFlag("date-window", matchCmd.Flags().Lookup("date-window"))
	viper.BindPFlag("min-confidence", matchCmd.Flags().Lookup("min-confidence"))
	viper.BindPFlag("amount-weight", matchCmd.Flags().Lookup("amount-weight"))
	viper.BindPFlag("date-weight", matchCmd.Flags().Lookup("date-weight"))
	viper.BindPFlag("reference-weight", matchCmd.Flags().Lookup("reference-weight"))
	viper.BindPFlag("top-n", matchCmd.Flags().Lookup("top-n"))
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	invoicesFile = viper.GetString("invoices")
	transactionsFile = viper.GetString("transactions")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	exactAmounts = viper.GetBool("exact-amounts")
	amountTolerance = viper.GetFloat64("amount-tolerance")
	dateWindow = viper.GetInt("date-window")
	minConfidence = viper.GetFloat64("min-confidence")
	amountWeight = viper.GetFloat64("amount-weight")
	dateWeight = viper.GetFloat64("date-weight")
	referenceWeight = viper.GetFloat64("reference-weight")
	topN = viper.GetInt("top-n")

	if invoicesFile == "" {
		return fmt.Errorf("invoices file is required")
	}
	if transactionsFile == "" {
		return fmt.Errorf("transactions file is required")
	}

	if err := validateFileExists(invoicesFile, "invoice file"); err != nil {
		return err
	}
	if err := validateFileExists(transactionsFile, "transaction file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if amountTolerance < 0.0 {
		return fmt.Errorf("amount tolerance cannot be negative")
	}
	if dateWindow < 0 {
		return fmt.Errorf("date window cannot be negative")
	}
	if minConfidence < 0.0 || minConfidence > 1.0 {
		return fmt.Errorf("minimum confidence must be between 0.0 and 1.0")
	}
	if topN < 1 {
		return fmt.Errorf("top-n must be at least 1")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting matching run...\n")
		fmt.Fprintf(os.Stderr, "Invoice file: %s\n", invoicesFile)
		fmt.Fprintf(os.Stderr, "Transaction file: %s\n", transactionsFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	runConfig, err := config.CreateRunConfig(config.MatchOptions{
		ExactAmounts:    exactAmounts,
		AmountTolerance: amountTolerance,
		DateWindowDays:  dateWindow,
		MinConfidence:   minConfidence,
		AmountWeight:    amountWeight,
		DateWeight:      dateWeight,
		ReferenceWeight: referenceWeight,
		TopN:            topN,
	})
	if err != nil {
		return fmt.Errorf("failed to create run config: %w", err)
	}

	runner, err := workflow.NewRunner(runConfig)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	result, err := runner.RunFiles(ctx, invoicesFile, transactionsFile)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	reportConfig := config.CreateReportConfig(outputFormat)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nMatching completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Found %d candidates across %d invoices and %d transactions.\n",
			result.Stats.TotalCandidates, result.Stats.TotalInvoices, result.Stats.TotalTransactions)
		fmt.Fprintf(os.Stderr, "Unmatched: %d invoices, %d transactions.\n",
			len(result.UnmatchedInvoiceIDs), len(result.UnmatchedTransactionIDs))
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.Duration)
	}

	return nil
}
