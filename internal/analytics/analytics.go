// Package analytics provides derived views over a generated candidate
// list: confidence filtering, grouping by invoice or transaction,
// one-to-one versus ambiguous classification, precision/recall metrics,
// factor influence analysis and heuristic tuning suggestions.
//
// Nothing in this package alters scoring; every function is a pure
// read-only view over the candidates it receives.
package analytics

import (
	"fmt"
	"sort"

	"invoice-matching-service/internal/matcher"
)

// FilterByRange returns the candidates whose confidence lies within
// [min, max], both bounds inclusive.
func FilterByRange(candidates []*matcher.MatchCandidate, min, max float64) []*matcher.MatchCandidate {
	filtered := make([]*matcher.MatchCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Confidence >= min && candidate.Confidence <= max {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

// GroupByInvoice maps each invoice ID to its candidates, every group
// sorted descending by confidence.
func GroupByInvoice(candidates []*matcher.MatchCandidate) map[string][]*matcher.MatchCandidate {
	return groupBy(candidates, func(c *matcher.MatchCandidate) string { return c.InvoiceID })
}

// GroupByTransaction maps each transaction ID to its candidates, every
// group sorted descending by confidence.
func GroupByTransaction(candidates []*matcher.MatchCandidate) map[string][]*matcher.MatchCandidate {
	return groupBy(candidates, func(c *matcher.MatchCandidate) string { return c.TransactionID })
}

func groupBy(candidates []*matcher.MatchCandidate, key func(*matcher.MatchCandidate) string) map[string][]*matcher.MatchCandidate {
	groups := make(map[string][]*matcher.MatchCandidate)
	for _, candidate := range candidates {
		k := key(candidate)
		groups[k] = append(groups[k], candidate)
	}

	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Confidence > group[j].Confidence
		})
	}

	return groups
}

// OneToOne returns the candidates whose invoice and transaction each
// appear in exactly one candidate.
func OneToOne(candidates []*matcher.MatchCandidate) []*matcher.MatchCandidate {
	byInvoice := GroupByInvoice(candidates)
	byTransaction := GroupByTransaction(candidates)

	var result []*matcher.MatchCandidate
	for _, candidate := range candidates {
		if len(byInvoice[candidate.InvoiceID]) == 1 && len(byTransaction[candidate.TransactionID]) == 1 {
			result = append(result, candidate)
		}
	}
	return result
}

// Ambiguous returns the candidates whose invoice or transaction appears
// in more than one candidate. Disjoint from OneToOne for any input.
func Ambiguous(candidates []*matcher.MatchCandidate) []*matcher.MatchCandidate {
	byInvoice := GroupByInvoice(candidates)
	byTransaction := GroupByTransaction(candidates)

	var result []*matcher.MatchCandidate
	for _, candidate := range candidates {
		if len(byInvoice[candidate.InvoiceID]) > 1 || len(byTransaction[candidate.TransactionID]) > 1 {
			result = append(result, candidate)
		}
	}
	return result
}

// GroundTruthPair identifies a known-correct invoice/transaction match
// used to evaluate the engine's output.
type GroundTruthPair struct {
	InvoiceID     string `json:"invoice_id"`
	TransactionID string `json:"transaction_id"`
}

// MatchMetrics reports how proposed candidates compare against a ground
// truth set.
type MatchMetrics struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

// Metrics computes precision, recall and F1 of the proposed candidates
// against the ground truth pairs. Each metric is 0 when its denominator
// is 0.
func Metrics(proposed []*matcher.MatchCandidate, groundTruth []GroundTruthPair) MatchMetrics {
	truth := make(map[GroundTruthPair]struct{}, len(groundTruth))
	for _, pair := range groundTruth {
		truth[pair] = struct{}{}
	}

	var metrics MatchMetrics
	seen := make(map[GroundTruthPair]struct{}, len(proposed))
	for _, candidate := range proposed {
		pair := GroundTruthPair{InvoiceID: candidate.InvoiceID, TransactionID: candidate.TransactionID}
		seen[pair] = struct{}{}
		if _, ok := truth[pair]; ok {
			metrics.TruePositives++
		} else {
			metrics.FalsePositives++
		}
	}

	for pair := range truth {
		if _, ok := seen[pair]; !ok {
			metrics.FalseNegatives++
		}
	}

	if metrics.TruePositives+metrics.FalsePositives > 0 {
		metrics.Precision = float64(metrics.TruePositives) / float64(metrics.TruePositives+metrics.FalsePositives)
	}
	if metrics.TruePositives+metrics.FalseNegatives > 0 {
		metrics.Recall = float64(metrics.TruePositives) / float64(metrics.TruePositives+metrics.FalseNegatives)
	}
	if metrics.Precision+metrics.Recall > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
	}

	return metrics
}

// FactorStats describes one scoring factor across a candidate list.
type FactorStats struct {
	Share   float64 `json:"share"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// FactorInfluence reports the relative contribution of each scoring
// factor to the total score mass of a candidate list.
type FactorInfluence struct {
	Amount    FactorStats `json:"amount"`
	Date      FactorStats `json:"date"`
	Reference FactorStats `json:"reference"`
}

// AnalyzeFactorInfluence computes, per factor, the share of the summed
// score across all candidates plus min/max/average. An empty candidate
// list yields an all-zero structure.
func AnalyzeFactorInfluence(candidates []*matcher.MatchCandidate) FactorInfluence {
	if len(candidates) == 0 {
		return FactorInfluence{}
	}

	amount := newFactorAccumulator()
	date := newFactorAccumulator()
	reference := newFactorAccumulator()

	for _, candidate := range candidates {
		amount.add(candidate.AmountScore)
		date.add(candidate.DateScore)
		reference.add(candidate.ReferenceScore)
	}

	total := amount.sum + date.sum + reference.sum
	n := float64(len(candidates))

	return FactorInfluence{
		Amount:    amount.stats(total, n),
		Date:      date.stats(total, n),
		Reference: reference.stats(total, n),
	}
}

type factorAccumulator struct {
	sum float64
	min float64
	max float64
}

func newFactorAccumulator() *factorAccumulator {
	return &factorAccumulator{min: 1.0, max: 0.0}
}

func (a *factorAccumulator) add(score float64) {
	a.sum += score
	if score < a.min {
		a.min = score
	}
	if score > a.max {
		a.max = score
	}
}

func (a *factorAccumulator) stats(total, count float64) FactorStats {
	stats := FactorStats{
		Min:     a.min,
		Max:     a.max,
		Average: a.sum / count,
	}
	if total > 0 {
		stats.Share = a.sum / total
	}
	return stats
}

// TuningSuggestions produces advisory text about possible configuration
// adjustments based on the shape of the results. The suggestions have no
// behavioral effect.
func TuningSuggestions(candidates []*matcher.MatchCandidate, config *matcher.MatchingConfig, unmatchedInvoices, unmatchedTransactions int) []string {
	if config == nil {
		config = matcher.DefaultMatchingConfig()
	}

	var suggestions []string

	if len(candidates) == 0 {
		if unmatchedInvoices > 0 || unmatchedTransactions > 0 {
			suggestions = append(suggestions,
				"no candidates were surfaced; consider lowering the minimum confidence score or widening the date window")
		}
		return suggestions
	}

	influence := AnalyzeFactorInfluence(candidates)

	if influence.Amount.Average < 0.3 {
		suggestions = append(suggestions,
			fmt.Sprintf("average amount score is %.2f; consider relaxing the amount tolerance", influence.Amount.Average))
	}

	if influence.Date.Average < 0.3 {
		suggestions = append(suggestions,
			fmt.Sprintf("average date score is %.2f; consider widening the date window beyond %d days", influence.Date.Average, config.DateWindowDays))
	}

	if influence.Reference.Average < config.ReferenceSimilarityThreshold {
		suggestions = append(suggestions,
			fmt.Sprintf("average reference score %.2f is below the similarity threshold %.2f; reference data may be sparse or noisy",
				influence.Reference.Average, config.ReferenceSimilarityThreshold))
	}

	ambiguous := Ambiguous(candidates)
	if len(ambiguous) > len(candidates)/2 {
		suggestions = append(suggestions,
			fmt.Sprintf("%d of %d candidates are ambiguous; consider raising the minimum confidence score", len(ambiguous), len(candidates)))
	}

	if unmatchedInvoices > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("%d invoices have no candidate; consider relaxing tolerances or reviewing source data", unmatchedInvoices))
	}

	if unmatchedTransactions > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("%d transactions have no candidate; they may belong to records outside this batch", unmatchedTransactions))
	}

	return suggestions
}
