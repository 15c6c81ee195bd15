package parsers

import (
	"io"

	"invoice-matching-service/internal/models"
	"invoice-matching-service/pkg/errors"
	"invoice-matching-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// transactionColumns are the headers a transaction file must provide.
var transactionColumns = []string{"id", "amount", "date", "description"}

// transactionAliases maps common header variants to canonical column names.
var transactionAliases = map[string]string{
	"transaction_id":   "id",
	"txn_id":           "id",
	"transaction_date": "date",
	"posted":           "date",
	"posted_date":      "date",
	"value":            "amount",
	"memo":             "description",
	"narrative":        "description",
	"ref":              "reference",
	"bank":             "source",
	"provider":         "source",
}

// TransactionParser reads transaction records from CSV files.
type TransactionParser struct {
	base *baseParser
	log  logger.Logger
}

// NewTransactionParser creates a transaction parser with the given options.
// A nil config uses DefaultParseConfig.
func NewTransactionParser(config *ParseConfig) *TransactionParser {
	return &TransactionParser{
		base: newBaseParser(config),
		log:  logger.GetGlobalLogger().WithComponent("transaction-parser"),
	}
}

// ParseFile reads all transactions from the CSV file at path, skipping and
// recording invalid records the same way InvoiceParser.ParseFile does.
func (p *TransactionParser) ParseFile(path string) ([]*models.Transaction, *ParseStats, error) {
	file, reader, err := p.base.openFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	if err := p.base.readHeaders(reader, path, transactionColumns, transactionAliases); err != nil {
		return nil, nil, err
	}

	stats := &ParseStats{}
	var transactions []*models.Transaction

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

		txn, parseErr := p.parseRecord(record, path)
		if parseErr != nil {
			stats.Errors.Add(parseErr)
			stats.RecordsSkipped++
			continue
		}

		transactions = append(transactions, txn)
		stats.RecordsParsed++
	}

	p.log.WithFields(logger.Fields{
		"file":    path,
		"parsed":  stats.RecordsParsed,
		"skipped": stats.RecordsSkipped,
	}).Info("Parsed transaction file")

	return transactions, stats, nil
}

func (p *TransactionParser) parseRecord(record []string, path string) (*models.Transaction, *errors.MatcherError) {
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

	txn := &models.Transaction{
		ID:          p.base.field(record, "id"),
		Amount:      amount,
		Date:        date,
		Description: p.base.field(record, "description"),
		Reference:   p.base.field(record, "reference"),
		Source:      p.base.field(record, "source"),
	}

	if err := txn.Validate(); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "record", txn.ID, err)
	}

	return txn, nil
}
