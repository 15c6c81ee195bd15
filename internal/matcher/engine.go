package matcher

import (
	"sort"

	"invoice-matching-service/internal/models"

	"github.com/shopspring/decimal"
)

// MatchingEngine scores invoice/transaction pairs and produces ranked
// match candidates. The engine holds no record state: every call receives
// its own inputs and returns freshly allocated output.
type MatchingEngine struct {
	Config *MatchingConfig
}

// NewMatchingEngine creates a new matching engine with the specified
// configuration. A nil configuration selects the defaults.
func NewMatchingEngine(config *MatchingConfig) *MatchingEngine {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	return &MatchingEngine{
		Config: config,
	}
}

// Breakdown explains how a candidate's scores were derived.
type Breakdown struct {
	AmountDifference    decimal.Decimal `json:"amount_difference"`
	DayDifference       int             `json:"day_difference"`
	AmountMatch         bool            `json:"amount_match"`
	DateInWindow        bool            `json:"date_in_window"`
	ReferenceSimilarity float64         `json:"reference_similarity"`
}

// MatchCandidate pairs an invoice with a transaction and carries the
// composed confidence, the three factor scores and their breakdown.
// Candidates are created fresh per run and never mutated downstream.
type MatchCandidate struct {
	InvoiceID      string    `json:"invoice_id"`
	TransactionID  string    `json:"transaction_id"`
	Confidence     float64   `json:"confidence"`
	AmountScore    float64   `json:"amount_score"`
	DateScore      float64   `json:"date_score"`
	ReferenceScore float64   `json:"reference_score"`
	Breakdown      Breakdown `json:"breakdown"`
}

// GenerateCandidates scores every invoice against every transaction and
// returns the candidates whose confidence meets the configured minimum,
// sorted descending by confidence. Empty inputs yield an empty list.
func (me *MatchingEngine) GenerateCandidates(invoices []*models.Invoice, transactions []*models.Transaction) ([]*MatchCandidate, error) {
	if err := me.Config.Validate(); err != nil {
		return nil, err
	}

	var candidates []*MatchCandidate
	for _, invoice := range invoices {
		for _, txn := range transactions {
			candidate := me.scoreMatch(invoice, txn)
			if candidate.Confidence >= me.Config.MinConfidenceScore {
				candidates = append(candidates, candidate)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	return candidates, nil
}

// TopCandidates generates candidates and restricts the output to the n
// highest-confidence candidates per invoice, keyed by invoice ID. A
// non-positive n selects DefaultTopN. Scoring is unchanged: only the
// per-invoice output is truncated.
func (me *MatchingEngine) TopCandidates(invoices []*models.Invoice, transactions []*models.Transaction, n int) (map[string][]*MatchCandidate, error) {
	if n <= 0 {
		n = DefaultTopN
	}

	candidates, err := me.GenerateCandidates(invoices, transactions)
	if err != nil {
		return nil, err
	}

	// The candidate list is already sorted descending, so per-invoice
	// groups built in order stay sorted.
	top := make(map[string][]*MatchCandidate)
	for _, candidate := range candidates {
		group := top[candidate.InvoiceID]
		if len(group) < n {
			top[candidate.InvoiceID] = append(group, candidate)
		}
	}

	return top, nil
}

// scoreMatch computes the full scored candidate for one invoice and one
// transaction.
func (me *MatchingEngine) scoreMatch(invoice *models.Invoice, txn *models.Transaction) *MatchCandidate {
	amountScore, amountMatch, amountDiff := me.scoreAmount(invoice.Amount, txn.Amount)
	dateScore, dateInWindow, dayDiff := me.scoreDate(invoice.Date, txn.Date)
	referenceScore := me.scoreReference(invoice, txn)

	return &MatchCandidate{
		InvoiceID:      invoice.ID,
		TransactionID:  txn.ID,
		Confidence:     me.composeConfidence(amountScore, dateScore, referenceScore),
		AmountScore:    amountScore,
		DateScore:      dateScore,
		ReferenceScore: referenceScore,
		Breakdown: Breakdown{
			AmountDifference:    amountDiff,
			DayDifference:       dayDiff,
			AmountMatch:         amountMatch,
			DateInWindow:        dateInWindow,
			ReferenceSimilarity: referenceScore,
		},
	}
}

// MatchStatistics summarizes a candidate list by confidence bucket.
type MatchStatistics struct {
	TotalCandidates   int     `json:"total_candidates"`
	HighConfidence    int     `json:"high_confidence"`
	MediumConfidence  int     `json:"medium_confidence"`
	LowConfidence     int     `json:"low_confidence"`
	AverageConfidence float64 `json:"average_confidence"`
	TotalInvoices     int     `json:"total_invoices"`
	TotalTransactions int     `json:"total_transactions"`
}

// Bucket boundaries for the confidence statistics.
const (
	HighConfidenceThreshold   = 0.8
	MediumConfidenceThreshold = 0.5
)

// Summarize computes aggregate statistics over a candidate list: counts by
// confidence bucket, the average confidence, and the number of distinct
// invoices and transactions appearing in the list.
func Summarize(candidates []*MatchCandidate) MatchStatistics {
	stats := MatchStatistics{
		TotalCandidates: len(candidates),
	}

	if len(candidates) == 0 {
		return stats
	}

	invoices := make(map[string]struct{})
	transactions := make(map[string]struct{})

	total := 0.0
	for _, candidate := range candidates {
		total += candidate.Confidence
		invoices[candidate.InvoiceID] = struct{}{}
		transactions[candidate.TransactionID] = struct{}{}

		switch {
		case candidate.Confidence >= HighConfidenceThreshold:
			stats.HighConfidence++
		case candidate.Confidence >= MediumConfidenceThreshold:
			stats.MediumConfidence++
		default:
			stats.LowConfidence++
		}
	}

	stats.AverageConfidence = total / float64(len(candidates))
	stats.TotalInvoices = len(invoices)
	stats.TotalTransactions = len(transactions)

	return stats
}

// GetConfiguration returns a copy of the current configuration
func (me *MatchingEngine) GetConfiguration() *MatchingConfig {
	return me.Config.Clone()
}

// UpdateConfiguration replaces the engine configuration after validation.
func (me *MatchingEngine) UpdateConfiguration(config *MatchingConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	me.Config = config.Clone()
	return nil
}
