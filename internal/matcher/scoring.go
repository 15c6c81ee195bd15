package matcher

import (
	"math"
	"time"

	"invoice-matching-service/internal/models"
	"invoice-matching-service/internal/textsim"

	"github.com/shopspring/decimal"
)

// referenceFallbackScore is returned when either token set is empty: an
// uninformative default rather than a hard zero.
const referenceFallbackScore = 0.3

// outOfWindowDateScore is the floor for dates outside the configured
// window, kept above zero so far pairs remain rankable.
const outOfWindowDateScore = 0.1

// directSimilarityFactor discounts the raw customer-name/description
// similarity used as a fallback when tokenization misses direct overlap.
const directSimilarityFactor = 0.8

// scoreAmount scores the proximity of an invoice amount and a transaction
// amount. Returns the score in [0, 1], whether the amounts count as a
// match, and the absolute difference.
//
// The tolerated difference is AmountTolerance * invoiceAmount / 100, so a
// tolerance of 0.02 admits a 0.02% difference. Within tolerance the score
// interpolates linearly down from 1; beyond it a halved fallback keeps
// near misses rankable until the difference reaches 50%.
func (me *MatchingEngine) scoreAmount(invoiceAmount, txnAmount decimal.Decimal) (float64, bool, decimal.Decimal) {
	difference := invoiceAmount.Sub(txnAmount).Abs()

	if invoiceAmount.Equal(txnAmount) {
		return 1.0, true, decimal.Zero
	}

	if me.Config.ExactAmountMatch {
		return 0.0, false, difference
	}

	invoice := invoiceAmount.InexactFloat64()
	diff := difference.InexactFloat64()

	percentDiff := diff / invoice * 100.0
	tolerance := me.Config.AmountTolerance * invoice / 100.0

	var score float64
	var match bool
	if diff <= tolerance {
		score = 1.0 - percentDiff/(me.Config.AmountTolerance*100.0)
		match = true
	} else {
		score = 0.5 * (1.0 - percentDiff/50.0)
		match = false
	}

	return math.Max(0.0, score), match, difference
}

// scoreDate scores the proximity of an invoice date and a transaction date.
// Both dates are normalized to local midnight before the whole-day
// difference is taken. Returns the score, whether the transaction falls
// inside the configured window, and the day difference.
func (me *MatchingEngine) scoreDate(invoiceDate, txnDate time.Time) (float64, bool, int) {
	dayDiff := wholeDaysBetween(invoiceDate, txnDate)

	if dayDiff == 0 {
		return 1.0, true, 0
	}

	if dayDiff > me.Config.DateWindowDays {
		return outOfWindowDateScore, false, dayDiff
	}

	score := 1.0 - float64(dayDiff)/float64(me.Config.DateWindowDays)
	return math.Max(0.0, score), true, dayDiff
}

// scoreReference scores the textual overlap between an invoice and a
// transaction. Invoice tokens come from the customer name, reference code
// and description; transaction tokens from its description only. When
// either side yields no tokens the uninformative default applies.
//
// The token comparison is complemented by a discounted direct similarity of
// customer name against transaction description, which rewards strong
// textual overlap that tokenization misses.
func (me *MatchingEngine) scoreReference(invoice *models.Invoice, txn *models.Transaction) float64 {
	invoiceTokens := textsim.ExtractTokens(invoice.ReferenceText())
	txnTokens := textsim.ExtractTokens(txn.Description)

	if len(invoiceTokens) == 0 || len(txnTokens) == 0 {
		return referenceFallbackScore
	}

	tokenScore := textsim.CompareTokenSets(invoiceTokens, txnTokens)
	directScore := directSimilarityFactor * textsim.Similarity(invoice.CustomerName, txn.Description)

	return math.Max(tokenScore, directScore)
}

// composeConfidence combines the three factor scores into one confidence
// value: weights are normalized to sum to 1, the weighted sum is taken and
// the result clamped to [0, 1]. Callers must have validated the config
// (total weight > 0) before scoring.
func (me *MatchingEngine) composeConfidence(amountScore, dateScore, referenceScore float64) float64 {
	total := me.Config.TotalWeight()

	confidence := (amountScore*me.Config.AmountWeight +
		dateScore*me.Config.DateWeight +
		referenceScore*me.Config.ReferenceWeight) / total

	return math.Max(0.0, math.Min(1.0, confidence))
}

// startOfDay truncates a time to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// wholeDaysBetween returns the absolute whole-day difference between two
// dates after midnight normalization. Rounding absorbs DST transitions.
func wholeDaysBetween(a, b time.Time) int {
	diff := startOfDay(a).Sub(startOfDay(b))
	if diff < 0 {
		diff = -diff
	}
	return int(math.Round(diff.Hours() / 24.0))
}
