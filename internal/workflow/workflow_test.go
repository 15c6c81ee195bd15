package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"invoice-matching-service/internal/matcher"
	"invoice-matching-service/internal/models"

	"github.com/shopspring/decimal"
)

func sampleInvoices() []*models.Invoice {
	return []*models.Invoice{
		{
			ID:           "INV-001",
			Amount:       decimal.NewFromInt(1000),
			Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			CustomerID:   "CUST-1",
			CustomerName: "Alpha Logistics",
			Reference:    "REF-001",
		},
		{
			ID:           "INV-002",
			Amount:       decimal.NewFromInt(5000),
			Date:         time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			CustomerID:   "CUST-2",
			CustomerName: "Beta Manufacturing",
			Reference:    "REF-002",
		},
	}
}

func sampleTransactions() []*models.Transaction {
	return []*models.Transaction{
		{
			ID:          "TXN-001",
			Amount:      decimal.NewFromInt(1000),
			Date:        time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			Description: "Alpha Logistics REF-001 settlement",
			Source:      "bank",
		},
		{
			ID:          "TXN-002",
			Amount:      decimal.NewFromInt(5000),
			Date:        time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			Description: "Beta Manufacturing REF-002 wire",
			Source:      "bank",
		},
		{
			ID:          "TXN-999",
			Amount:      decimal.NewFromFloat(42.17),
			Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Description: "office supplies",
			Source:      "card",
		},
	}
}

func TestNewRunner(t *testing.T) {
	t.Run("nil config selects defaults", func(t *testing.T) {
		runner, err := NewRunner(nil)
		if err != nil {
			t.Fatalf("NewRunner failed: %v", err)
		}
		if runner == nil {
			t.Fatal("Expected a runner")
		}
	})

	t.Run("invalid matching config rejected", func(t *testing.T) {
		config := DefaultConfig()
		config.Matching.AmountWeight = -1

		if _, err := NewRunner(config); err == nil {
			t.Fatal("Expected error for invalid matching config")
		}
	})
}

func TestRunner_Run(t *testing.T) {
	runner, err := NewRunner(nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	result, err := runner.Run(context.Background(), sampleInvoices(), sampleTransactions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Stats.TotalCandidates != 2 {
		t.Errorf("Expected 2 candidates, got %d", result.Stats.TotalCandidates)
	}
	if len(result.TopMatches["INV-001"]) != 1 {
		t.Errorf("Expected 1 top match for INV-001, got %d", len(result.TopMatches["INV-001"]))
	}
	if len(result.UnmatchedInvoiceIDs) != 0 {
		t.Errorf("Expected no unmatched invoices, got %v", result.UnmatchedInvoiceIDs)
	}
	if len(result.UnmatchedTransactionIDs) != 1 || result.UnmatchedTransactionIDs[0] != "TXN-999" {
		t.Errorf("Expected TXN-999 unmatched, got %v", result.UnmatchedTransactionIDs)
	}
	if result.ProcessedAt.IsZero() {
		t.Error("Expected a processing timestamp")
	}
	if result.Duration < 0 {
		t.Errorf("Expected non-negative duration, got %v", result.Duration)
	}
}

func TestRunner_Run_TopNLimit(t *testing.T) {
	config := DefaultConfig()
	config.Matching = matcher.RelaxedMatchingConfig()
	config.TopN = 1

	runner, err := NewRunner(config)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	invoices := sampleInvoices()[:1]
	transactions := []*models.Transaction{
		{
			ID:          "TXN-A",
			Amount:      decimal.NewFromInt(1000),
			Date:        invoices[0].Date,
			Description: "Alpha Logistics REF-001 settlement",
		},
		{
			ID:          "TXN-B",
			Amount:      decimal.NewFromInt(1002),
			Date:        invoices[0].Date.AddDate(0, 0, 1),
			Description: "Alpha Logistics",
		},
	}

	result, err := runner.Run(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.TopMatches["INV-001"]) != 1 {
		t.Errorf("Expected top matches limited to 1, got %d", len(result.TopMatches["INV-001"]))
	}
	if result.TopMatches["INV-001"][0].TransactionID != "TXN-A" {
		t.Errorf("Expected the best candidate to survive the cut, got %s",
			result.TopMatches["INV-001"][0].TransactionID)
	}
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	runner, err := NewRunner(nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx, sampleInvoices(), sampleTransactions()); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}

func TestRunner_Run_EmptyInputs(t *testing.T) {
	runner, err := NewRunner(nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	result, err := runner.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run failed on empty inputs: %v", err)
	}
	if result.Stats.TotalCandidates != 0 {
		t.Errorf("Expected no candidates, got %d", result.Stats.TotalCandidates)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("Expected no suggestions with nothing unmatched, got %v", result.Suggestions)
	}
}

func TestRunner_RunFiles(t *testing.T) {
	dir := t.TempDir()

	invoicePath := filepath.Join(dir, "invoices.csv")
	invoiceCSV := `id,amount,date,customer_id,customer_name,reference
INV-001,1000.00,2024-01-15,CUST-1,Alpha Logistics,REF-001
`
	if err := os.WriteFile(invoicePath, []byte(invoiceCSV), 0644); err != nil {
		t.Fatalf("Failed to write invoice fixture: %v", err)
	}

	transactionPath := filepath.Join(dir, "transactions.csv")
	transactionCSV := `id,amount,date,description,source
TXN-001,1000.00,2024-01-16,Alpha Logistics REF-001 settlement,bank
`
	if err := os.WriteFile(transactionPath, []byte(transactionCSV), 0644); err != nil {
		t.Fatalf("Failed to write transaction fixture: %v", err)
	}

	runner, err := NewRunner(nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	result, err := runner.RunFiles(context.Background(), invoicePath, transactionPath)
	if err != nil {
		t.Fatalf("RunFiles failed: %v", err)
	}

	if result.Stats.TotalCandidates != 1 {
		t.Fatalf("Expected 1 candidate, got %d", result.Stats.TotalCandidates)
	}
	if result.InvoiceParseStats == nil || result.InvoiceParseStats.RecordsParsed != 1 {
		t.Errorf("Expected invoice parse stats, got %+v", result.InvoiceParseStats)
	}
	if result.TransactionParseStats == nil || result.TransactionParseStats.RecordsParsed != 1 {
		t.Errorf("Expected transaction parse stats, got %+v", result.TransactionParseStats)
	}
}

func TestRunner_RunFiles_MissingFile(t *testing.T) {
	runner, err := NewRunner(nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	_, err = runner.RunFiles(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), "unused.csv")
	if err == nil {
		t.Fatal("Expected error for missing invoice file")
	}
}
