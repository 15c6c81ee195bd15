// Package models defines the core value objects used throughout the
// invoice matching service: invoices from the accounting side and
// transactions from the payment side.
//
// Both types are caller-owned and immutable by convention: the matching
// engine never mutates records it receives, and every result it produces
// references records only by identifier.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents a financial record awaiting reconciliation.
type Invoice struct {
	ID           string          `json:"id" csv:"id"`
	Amount       decimal.Decimal `json:"amount" csv:"amount"`
	Date         time.Time       `json:"date" csv:"date"`
	CustomerID   string          `json:"customerId" csv:"customer_id"`
	CustomerName string          `json:"customerName" csv:"customer_name"`
	Reference    string          `json:"reference,omitempty" csv:"reference"`
	Description  string          `json:"description,omitempty" csv:"description"`
}

// NewInvoice creates a new Invoice instance
func NewInvoice(id string, amount decimal.Decimal, date time.Time, customerID, customerName string) *Invoice {
	return &Invoice{
		ID:           id,
		Amount:       amount,
		Date:         date,
		CustomerID:   customerID,
		CustomerName: customerName,
	}
}

// Validate performs basic validation on the Invoice.
// Amounts must be strictly positive: percentage-based amount scoring is
// undefined at zero, so a zero amount is rejected here rather than inside
// the scoring functions.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.ID) == "" {
		return fmt.Errorf("invoice ID cannot be empty")
	}

	if !inv.Amount.IsPositive() {
		return fmt.Errorf("invoice amount must be positive, got %s", inv.Amount)
	}

	if inv.Date.IsZero() {
		return fmt.Errorf("invoice date cannot be zero")
	}

	return nil
}

// ReferenceText concatenates the textual fields used for reference matching:
// customer name, reference code and description.
func (inv *Invoice) ReferenceText() string {
	parts := []string{inv.CustomerName, inv.Reference, inv.Description}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// String returns a string representation of the Invoice
func (inv *Invoice) String() string {
	return fmt.Sprintf("Invoice{ID: %s, Amount: %s, Date: %s, Customer: %s}",
		inv.ID, inv.Amount.String(), inv.Date.Format("2006-01-02"), inv.CustomerName)
}

// MarshalJSON implements custom JSON marshaling for Invoice
func (inv *Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
		*Alias
	}{
		Amount: inv.Amount.String(),
		Date:   inv.Date.Format("2006-01-02"),
		Alias:  (*Alias)(inv),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Invoice
func (inv *Invoice) UnmarshalJSON(data []byte) error {
	type Alias Invoice
	aux := &struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
		*Alias
	}{
		Alias: (*Alias)(inv),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	inv.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	inv.Date, err = parseDate(aux.Date)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	return nil
}

// Equals compares two Invoice instances for equality
func (inv *Invoice) Equals(other *Invoice) bool {
	if other == nil {
		return false
	}

	return inv.ID == other.ID &&
		inv.Amount.Equal(other.Amount) &&
		inv.Date.Equal(other.Date) &&
		inv.CustomerID == other.CustomerID &&
		inv.CustomerName == other.CustomerName &&
		inv.Reference == other.Reference &&
		inv.Description == other.Description
}

// Transaction represents a payment record from a bank or payment provider.
type Transaction struct {
	ID          string          `json:"id" csv:"id"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
	Date        time.Time       `json:"date" csv:"date"`
	Description string          `json:"description" csv:"description"`
	Reference   string          `json:"reference,omitempty" csv:"reference"`
	Source      string          `json:"source,omitempty" csv:"source"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(id string, amount decimal.Decimal, date time.Time, description string) *Transaction {
	return &Transaction{
		ID:          id,
		Amount:      amount,
		Date:        date,
		Description: description,
	}
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}

	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", t.Amount)
	}

	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Amount: %s, Date: %s, Source: %s}",
		t.ID, t.Amount.String(), t.Date.Format("2006-01-02"), t.Source)
}

// MarshalJSON implements custom JSON marshaling for Transaction
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
		*Alias
	}{
		Amount: t.Amount.String(),
		Date:   t.Date.Format("2006-01-02"),
		Alias:  (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Transaction
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	t.Date, err = parseDate(aux.Date)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	return nil
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.ID == other.ID &&
		t.Amount.Equal(other.Amount) &&
		t.Date.Equal(other.Date) &&
		t.Description == other.Description &&
		t.Reference == other.Reference &&
		t.Source == other.Source
}

// dateFormats lists the accepted date layouts, tried in order.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

func parseDate(value string) (time.Time, error) {
	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", value)
}

// ParseDate parses a date string using the accepted layouts.
// Shared by the CSV parsers and JSON unmarshaling.
func ParseDate(value string) (time.Time, error) {
	return parseDate(strings.TrimSpace(value))
}
