// Package matcher implements the invoice matching engine: deterministic
// scoring of invoice/transaction pairs and generation of ranked match
// candidates with interpretable confidence scores.
//
// The engine scores every invoice against every transaction on three
// factors - amount proximity, date proximity and textual reference
// similarity - composes them into a weighted confidence score, and retains
// the pairs above a configurable threshold.
//
// Example usage:
//
//	config := matcher.DefaultMatchingConfig()
//	config.DateWindowDays = 14
//
//	engine := matcher.NewMatchingEngine(config)
//	candidates, err := engine.GenerateCandidates(invoices, transactions)
package matcher

import (
	"fmt"

	"invoice-matching-service/pkg/errors"
)

// DefaultTopN is the per-invoice candidate limit used by TopCandidates
// when no explicit limit is given.
const DefaultTopN = 3

// MatchingConfig holds the parameters for candidate generation.
// Weights express the relative importance of each scoring factor and need
// not sum to 1: the confidence composer normalizes them. A zero total
// weight is rejected by Validate.
type MatchingConfig struct {
	// ExactAmountMatch requires invoice and transaction amounts to be equal;
	// any difference scores zero.
	ExactAmountMatch bool `json:"exact_amount_match" mapstructure:"exact_amount_match"`

	// AmountTolerance is the tolerated amount difference as a fraction of
	// the invoice amount (0.02 means 2%).
	AmountTolerance float64 `json:"amount_tolerance" mapstructure:"amount_tolerance"`

	// AmountWeight is the relative weight of the amount score.
	AmountWeight float64 `json:"amount_weight" mapstructure:"amount_weight"`

	// DateWindowDays is the number of days around the invoice date within
	// which a transaction date is considered in-window.
	DateWindowDays int `json:"date_window_days" mapstructure:"date_window_days"`

	// DateWeight is the relative weight of the date score.
	DateWeight float64 `json:"date_weight" mapstructure:"date_weight"`

	// ReferenceSimilarityThreshold is the advisory cutoff below which a
	// reference score is considered weak. It does not alter scoring.
	ReferenceSimilarityThreshold float64 `json:"reference_similarity_threshold" mapstructure:"reference_similarity_threshold"`

	// ReferenceWeight is the relative weight of the reference score.
	ReferenceWeight float64 `json:"reference_weight" mapstructure:"reference_weight"`

	// MinConfidenceScore is the minimum composed confidence for a candidate
	// to be surfaced.
	MinConfidenceScore float64 `json:"min_confidence_score" mapstructure:"min_confidence_score"`
}

// DefaultMatchingConfig returns a configuration with the standard defaults.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		ExactAmountMatch:             false,
		AmountTolerance:              0.02,
		AmountWeight:                 0.4,
		DateWindowDays:               30,
		DateWeight:                   0.3,
		ReferenceSimilarityThreshold: 0.5,
		ReferenceWeight:              0.3,
		MinConfidenceScore:           0.5,
	}
}

// StrictMatchingConfig returns a configuration for strict matching:
// exact amounts, a narrow date window and a high confidence bar.
func StrictMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		ExactAmountMatch:             true,
		AmountTolerance:              0.0,
		AmountWeight:                 0.5,
		DateWindowDays:               7,
		DateWeight:                   0.3,
		ReferenceSimilarityThreshold: 0.6,
		ReferenceWeight:              0.2,
		MinConfidenceScore:           0.8,
	}
}

// RelaxedMatchingConfig returns a configuration for exploratory matching
// with loose tolerances and a low confidence bar.
func RelaxedMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		ExactAmountMatch:             false,
		AmountTolerance:              0.05,
		AmountWeight:                 0.4,
		DateWindowDays:               60,
		DateWeight:                   0.3,
		ReferenceSimilarityThreshold: 0.4,
		ReferenceWeight:              0.3,
		MinConfidenceScore:           0.3,
	}
}

// ConfigOverrides carries partial configuration supplied by a caller.
// Nil fields leave the corresponding default untouched.
type ConfigOverrides struct {
	ExactAmountMatch             *bool    `json:"exact_amount_match,omitempty"`
	AmountTolerance              *float64 `json:"amount_tolerance,omitempty"`
	AmountWeight                 *float64 `json:"amount_weight,omitempty"`
	DateWindowDays               *int     `json:"date_window_days,omitempty"`
	DateWeight                   *float64 `json:"date_weight,omitempty"`
	ReferenceSimilarityThreshold *float64 `json:"reference_similarity_threshold,omitempty"`
	ReferenceWeight              *float64 `json:"reference_weight,omitempty"`
	MinConfidenceScore           *float64 `json:"min_confidence_score,omitempty"`
}

// Merge returns a new configuration: the defaults with every supplied
// override applied. A nil overrides value yields a plain default config.
func (o *ConfigOverrides) Merge() *MatchingConfig {
	config := DefaultMatchingConfig()
	if o == nil {
		return config
	}

	if o.ExactAmountMatch != nil {
		config.ExactAmountMatch = *o.ExactAmountMatch
	}
	if o.AmountTolerance != nil {
		config.AmountTolerance = *o.AmountTolerance
	}
	if o.AmountWeight != nil {
		config.AmountWeight = *o.AmountWeight
	}
	if o.DateWindowDays != nil {
		config.DateWindowDays = *o.DateWindowDays
	}
	if o.DateWeight != nil {
		config.DateWeight = *o.DateWeight
	}
	if o.ReferenceSimilarityThreshold != nil {
		config.ReferenceSimilarityThreshold = *o.ReferenceSimilarityThreshold
	}
	if o.ReferenceWeight != nil {
		config.ReferenceWeight = *o.ReferenceWeight
	}
	if o.MinConfidenceScore != nil {
		config.MinConfidenceScore = *o.MinConfidenceScore
	}

	return config
}

// TotalWeight returns the sum of the three factor weights.
func (mc *MatchingConfig) TotalWeight() float64 {
	return mc.AmountWeight + mc.DateWeight + mc.ReferenceWeight
}

// Validate checks if the matching configuration is valid
func (mc *MatchingConfig) Validate() error {
	if mc.AmountTolerance < 0.0 {
		return errors.ConfigurationError("amount_tolerance", mc.AmountTolerance,
			fmt.Errorf("amount tolerance cannot be negative"))
	}

	if mc.DateWindowDays < 0 {
		return errors.ConfigurationError("date_window_days", mc.DateWindowDays,
			fmt.Errorf("date window days cannot be negative"))
	}

	if mc.AmountWeight < 0.0 || mc.DateWeight < 0.0 || mc.ReferenceWeight < 0.0 {
		return errors.ConfigurationError("weights", mc,
			fmt.Errorf("factor weights cannot be negative"))
	}

	// The composer divides by the total weight.
	if mc.TotalWeight() <= 0.0 {
		return errors.ConfigurationError("weights", mc,
			fmt.Errorf("total factor weight must be greater than zero"))
	}

	if mc.ReferenceSimilarityThreshold < 0.0 || mc.ReferenceSimilarityThreshold > 1.0 {
		return errors.ConfigurationError("reference_similarity_threshold", mc.ReferenceSimilarityThreshold,
			fmt.Errorf("reference similarity threshold must be between 0.0 and 1.0"))
	}

	if mc.MinConfidenceScore < 0.0 || mc.MinConfidenceScore > 1.0 {
		return errors.ConfigurationError("min_confidence_score", mc.MinConfidenceScore,
			fmt.Errorf("minimum confidence score must be between 0.0 and 1.0"))
	}

	return nil
}

// Clone creates a copy of the matching configuration
func (mc *MatchingConfig) Clone() *MatchingConfig {
	if mc == nil {
		return nil
	}

	clone := *mc
	return &clone
}

// String returns a human-readable description of the configuration
func (mc *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{ExactAmount: %t, AmountTolerance: %.4f, DateWindow: %d days, Weights: %.2f/%.2f/%.2f, MinConfidence: %.2f}",
		mc.ExactAmountMatch, mc.AmountTolerance, mc.DateWindowDays,
		mc.AmountWeight, mc.DateWeight, mc.ReferenceWeight, mc.MinConfidenceScore)
}
