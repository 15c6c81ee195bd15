// Package workflow orchestrates a complete matching run: parse the input
// files, generate ranked match candidates, and derive the statistics and
// tuning analysis the reports are built from.
package workflow

import (
	"context"
	"time"

	"invoice-matching-service/internal/analytics"
	"invoice-matching-service/internal/matcher"
	"invoice-matching-service/internal/models"
	"invoice-matching-service/internal/parsers"
	"invoice-matching-service/pkg/errors"
	"invoice-matching-service/pkg/logger"
)

// Config holds the options for one matching run.
type Config struct {
	Parse    *parsers.ParseConfig    `json:"parse"`
	Matching *matcher.MatchingConfig `json:"matching"`

	// TopN limits candidates kept per invoice; non-positive selects the
	// engine default.
	TopN int `json:"top_n"`

	Logger logger.Logger `json:"-"`
}

// DefaultConfig returns a run configuration with all defaults.
func DefaultConfig() *Config {
	return &Config{
		Parse:    parsers.DefaultParseConfig(),
		Matching: matcher.DefaultMatchingConfig(),
		TopN:     matcher.DefaultTopN,
	}
}

// Result carries everything produced by one matching run.
type Result struct {
	Candidates  []*matcher.MatchCandidate            `json:"candidates"`
	TopMatches  map[string][]*matcher.MatchCandidate `json:"top_matches"`
	Stats       matcher.MatchStatistics              `json:"stats"`
	Influence   analytics.FactorInfluence            `json:"factor_influence"`
	Suggestions []string                             `json:"suggestions,omitempty"`

	UnmatchedInvoiceIDs     []string `json:"unmatched_invoice_ids,omitempty"`
	UnmatchedTransactionIDs []string `json:"unmatched_transaction_ids,omitempty"`

	InvoiceParseStats     *parsers.ParseStats `json:"invoice_parse_stats,omitempty"`
	TransactionParseStats *parsers.ParseStats `json:"transaction_parse_stats,omitempty"`

	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration"`
}

// Runner executes matching runs with a fixed configuration.
type Runner struct {
	config            *Config
	engine            *matcher.MatchingEngine
	invoiceParser     *parsers.InvoiceParser
	transactionParser *parsers.TransactionParser
	log               logger.Logger
}

// NewRunner creates a runner from the given configuration. A nil
// configuration selects the defaults.
func NewRunner(config *Config) (*Runner, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Matching == nil {
		config.Matching = matcher.DefaultMatchingConfig()
	}
	if err := config.Matching.Validate(); err != nil {
		return nil, err
	}

	log := config.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &Runner{
		config:            config,
		engine:            matcher.NewMatchingEngine(config.Matching),
		invoiceParser:     parsers.NewInvoiceParser(config.Parse),
		transactionParser: parsers.NewTransactionParser(config.Parse),
		log:               log.WithComponent("workflow"),
	}, nil
}

// RunFiles parses the two CSV files and runs the matching pipeline on the
// records they contain.
func (r *Runner) RunFiles(ctx context.Context, invoicePath, transactionPath string) (*Result, error) {
	invoices, invoiceStats, err := r.invoiceParser.ParseFile(invoicePath)
	if err != nil {
		return nil, err
	}

	transactions, transactionStats, err := r.transactionParser.ParseFile(transactionPath)
	if err != nil {
		return nil, err
	}

	result, err := r.Run(ctx, invoices, transactions)
	if err != nil {
		return nil, err
	}

	result.InvoiceParseStats = invoiceStats
	result.TransactionParseStats = transactionStats
	return result, nil
}

// Run executes the matching pipeline on already-loaded records.
func (r *Runner) Run(ctx context.Context, invoices []*models.Invoice, transactions []*models.Transaction) (*Result, error) {
	start := time.Now()

	r.log.WithFields(logger.Fields{
		"invoices":     len(invoices),
		"transactions": len(transactions),
	}).Info("Starting matching run")

	if err := ctx.Err(); err != nil {
		return nil, errors.MatchingError("run", err)
	}

	candidates, err := r.engine.GenerateCandidates(invoices, transactions)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.MatchingError("run", err)
	}

	topN := r.config.TopN
	if topN <= 0 {
		topN = matcher.DefaultTopN
	}

	// The candidate list arrives sorted descending, so per-invoice groups
	// built in order stay sorted.
	tracker := logger.NewProgressTracker(r.log, "candidate aggregation", int64(len(candidates)), 0)
	topMatches := make(map[string][]*matcher.MatchCandidate)
	for _, candidate := range candidates {
		group := topMatches[candidate.InvoiceID]
		if len(group) < topN {
			topMatches[candidate.InvoiceID] = append(group, candidate)
		}
		tracker.Increment()
	}
	tracker.Done()

	unmatchedInvoices := unmatchedInvoiceIDs(invoices, candidates)
	unmatchedTransactions := unmatchedTransactionIDs(transactions, candidates)

	result := &Result{
		Candidates:              candidates,
		TopMatches:              topMatches,
		Stats:                   matcher.Summarize(candidates),
		Influence:               analytics.AnalyzeFactorInfluence(candidates),
		UnmatchedInvoiceIDs:     unmatchedInvoices,
		UnmatchedTransactionIDs: unmatchedTransactions,
		ProcessedAt:             start,
		Duration:                time.Since(start),
	}
	result.Suggestions = analytics.TuningSuggestions(candidates, r.config.Matching,
		len(unmatchedInvoices), len(unmatchedTransactions))

	r.log.WithFields(logger.Fields{
		"candidates":             result.Stats.TotalCandidates,
		"high_confidence":        result.Stats.HighConfidence,
		"unmatched_invoices":     len(unmatchedInvoices),
		"unmatched_transactions": len(unmatchedTransactions),
		"duration":               result.Duration.String(),
	}).Info("Matching run complete")

	return result, nil
}

// unmatchedInvoiceIDs returns the IDs of invoices that appear in no
// candidate, preserving input order.
func unmatchedInvoiceIDs(invoices []*models.Invoice, candidates []*matcher.MatchCandidate) []string {
	matched := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		matched[candidate.InvoiceID] = struct{}{}
	}

	var unmatched []string
	for _, invoice := range invoices {
		if _, ok := matched[invoice.ID]; !ok {
			unmatched = append(unmatched, invoice.ID)
		}
	}
	return unmatched
}

// unmatchedTransactionIDs returns the IDs of transactions that appear in no
// candidate, preserving input order.
func unmatchedTransactionIDs(transactions []*models.Transaction, candidates []*matcher.MatchCandidate) []string {
	matched := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		matched[candidate.TransactionID] = struct{}{}
	}

	var unmatched []string
	for _, txn := range transactions {
		if _, ok := matched[txn.ID]; !ok {
			unmatched = append(unmatched, txn.ID)
		}
	}
	return unmatched
}
