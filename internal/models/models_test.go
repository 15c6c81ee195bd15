package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validInvoice() *Invoice {
	return &Invoice{
		ID:           "INV-001",
		Amount:       decimal.NewFromFloat(1250.50),
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CustomerID:   "CUST-42",
		CustomerName: "Acme Corporation",
		Reference:    "REF-001",
		Description:  "January consulting services",
	}
}

func validTransaction() *Transaction {
	return &Transaction{
		ID:          "TXN-001",
		Amount:      decimal.NewFromFloat(1250.50),
		Date:        time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		Description: "Acme Corporation REF-001 payment",
		Source:      "bank",
	}
}

func TestInvoice_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Invoice)
		wantErr bool
	}{
		{"valid invoice", func(inv *Invoice) {}, false},
		{"empty ID", func(inv *Invoice) { inv.ID = "" }, true},
		{"whitespace ID", func(inv *Invoice) { inv.ID = "   " }, true},
		{"zero amount", func(inv *Invoice) { inv.Amount = decimal.Zero }, true},
		{"negative amount", func(inv *Invoice) { inv.Amount = decimal.NewFromInt(-5) }, true},
		{"zero date", func(inv *Invoice) { inv.Date = time.Time{} }, true},
		{"empty optional fields", func(inv *Invoice) {
			inv.Reference = ""
			inv.Description = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := validInvoice()
			tt.modify(invoice)

			err := invoice.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected valid invoice, got %v", err)
			}
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Transaction)
		wantErr bool
	}{
		{"valid transaction", func(txn *Transaction) {}, false},
		{"empty ID", func(txn *Transaction) { txn.ID = "" }, true},
		{"zero amount", func(txn *Transaction) { txn.Amount = decimal.Zero }, true},
		{"negative amount", func(txn *Transaction) { txn.Amount = decimal.NewFromInt(-10) }, true},
		{"zero date", func(txn *Transaction) { txn.Date = time.Time{} }, true},
		{"empty description allowed", func(txn *Transaction) { txn.Description = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := validTransaction()
			tt.modify(txn)

			err := txn.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected valid transaction, got %v", err)
			}
		})
	}
}

func TestInvoice_ReferenceText(t *testing.T) {
	invoice := validInvoice()
	text := invoice.ReferenceText()

	if text != "Acme Corporation REF-001 January consulting services" {
		t.Errorf("Unexpected reference text: %q", text)
	}

	bare := &Invoice{ID: "INV-002", CustomerName: "Acme Corporation"}
	if got := bare.ReferenceText(); got != "Acme Corporation" {
		t.Errorf("Expected trimmed reference text, got %q", got)
	}
}

func TestInvoice_JSONRoundTrip(t *testing.T) {
	original := validInvoice()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Invoice
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Equals(original) {
		t.Errorf("Round trip mismatch:\noriginal: %s\ndecoded:  %s", original, &decoded)
	}
}

func TestTransaction_JSONRoundTrip(t *testing.T) {
	original := validTransaction()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Transaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Equals(original) {
		t.Errorf("Round trip mismatch:\noriginal: %s\ndecoded:  %s", original, &decoded)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"ISO date", "2024-01-15", false},
		{"RFC3339", "2024-01-15T10:30:00Z", false},
		{"datetime", "2024-01-15 10:30:00", false},
		{"US format", "01/15/2024", false},
		{"padded", "  2024-01-15  ", false},
		{"garbage", "yesterday", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.value)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for %q", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected %q to parse, got %v", tt.value, err)
			}
		})
	}
}
