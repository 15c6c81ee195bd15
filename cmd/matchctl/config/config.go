// Package config builds the run and report configurations from CLI flags.
package config

import (
	"invoice-matching-service/internal/matcher"
	"invoice-matching-service/internal/parsers"
	"invoice-matching-service/internal/reporter"
	"invoice-matching-service/internal/workflow"
)

// MatchOptions carries the matching parameters collected from CLI flags.
type MatchOptions struct {
	ExactAmounts    bool
	AmountTolerance float64
	DateWindowDays  int
	MinConfidence   float64
	AmountWeight    float64
	DateWeight      float64
	ReferenceWeight float64
	TopN            int
}

// CreateRunConfig builds a workflow configuration from the CLI options.
func CreateRunConfig(options MatchOptions) (*workflow.Config, error) {
	overrides := &matcher.ConfigOverrides{
		ExactAmountMatch:   &options.ExactAmounts,
		AmountTolerance:    &options.AmountTolerance,
		DateWindowDays:     &options.DateWindowDays,
		MinConfidenceScore: &options.MinConfidence,
		AmountWeight:       &options.AmountWeight,
		DateWeight:         &options.DateWeight,
		ReferenceWeight:    &options.ReferenceWeight,
	}

	matchingConfig := overrides.Merge()
	if err := matchingConfig.Validate(); err != nil {
		return nil, err
	}

	return &workflow.Config{
		Parse:    parsers.DefaultParseConfig(),
		Matching: matchingConfig,
		TopN:     options.TopN,
	}, nil
}

// CreateReportConfig builds a report configuration for the output format.
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeCandidates = true
	case "csv":
		config.Format = reporter.FormatCSV
		// CSV carries candidate rows only.
		config.IncludeSuggestions = false
		config.IncludeParseStats = false
	}

	return config
}
