package parsers

import (
	"io"

	"invoice-matching-service/internal/models"
	"invoice-matching-service/pkg/errors"
	"invoice-matching-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// invoiceColumns are the headers an invoice file must provide.
var invoiceColumns = []string{"id", "amount", "date", "customer_id", "customer_name"}

// invoiceAliases maps common header variants to canonical column names.
var invoiceAliases = map[string]string{
	"invoice_id":     "id",
	"invoice_number": "id",
	"invoice_date":   "date",
	"total":          "amount",
	"total_amount":   "amount",
	"customer":       "customer_name",
	"client_name":    "customer_name",
	"ref":            "reference",
	"reference_code": "reference",
	"memo":           "description",
	"notes":          "description",
}

// InvoiceParser reads invoice records from CSV files.
type InvoiceParser struct {
	base *baseParser
	log  logger.Logger
}

// NewInvoiceParser creates an invoice parser with the given options.
// A nil config uses DefaultParseConfig.
func NewInvoiceParser(config *ParseConfig) *InvoiceParser {
	return &InvoiceParser{
		base: newBaseParser(config),
		log:  logger.GetGlobalLogger().WithComponent("invoice-parser"),
	}
}

// ParseFile reads all invoices from the CSV file at path. Records that fail
// to parse or validate are skipped and recorded in the returned stats; the
// error return is reserved for failures that abort the whole file.
func (p *InvoiceParser) ParseFile(path string) ([]*models.Invoice, *ParseStats, error) {
	file, reader, err := p.base.openFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	if err := p.base.readHeaders(reader, path, invoiceColumns, invoiceAliases); err != nil {
		return nil, nil, err
	}

	stats := &ParseStats{}
	var invoices []*models.Invoice

	for {
		record, err := p.base.readRecord(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Errors.Add(errors.ParseError(errors.CodeInvalidFormat, path, p.base.lineNumber, "", "", err))
			stats.RecordsSkipped++
			continue
		}

		invoice, parseErr := p.parseRecord(record, path)
		if parseErr != nil {
			stats.Errors.Add(parseErr)
			stats.RecordsSkipped++
			continue
		}

		invoices = append(invoices, invoice)
		stats.RecordsParsed++
	}

	p.log.WithFields(logger.Fields{
		"file":    path,
		"parsed":  stats.RecordsParsed,
		"skipped": stats.RecordsSkipped,
	}).Info("Parsed invoice file")

	return invoices, stats, nil
}

func (p *InvoiceParser) parseRecord(record []string, path string) (*models.Invoice, *errors.MatcherError) {
	line := p.base.lineNumber

	amountValue := p.base.field(record, "amount")
	amount, err := decimal.NewFromString(amountValue)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "amount", amountValue, err)
	}

	dateValue := p.base.field(record, "date")
	date, err := models.ParseDate(dateValue)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "date", dateValue, err)
	}

	invoice := &models.Invoice{
		ID:           p.base.field(record, "id"),
		Amount:       amount,
		Date:         date,
		CustomerID:   p.base.field(record, "customer_id"),
		CustomerName: p.base.field(record, "customer_name"),
		Reference:    p.base.field(record, "reference"),
		Description:  p.base.field(record, "description"),
	}

	if err := invoice.Validate(); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "record", invoice.ID, err)
	}

	return invoice, nil
}
