// Package parsers loads invoice and transaction records from CSV files.
//
// Each parser resolves flexible column headers (including common aliases),
// validates every record as it is read, and accumulates per-line errors so
// a single bad row never aborts a whole file.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"invoice-matching-service/pkg/errors"
)

// ParseConfig holds low-level CSV reading options shared by both parsers.
type ParseConfig struct {
	HasHeader        bool `json:"has_header"`
	Delimiter        rune `json:"delimiter"`
	TrimLeadingSpace bool `json:"trim_leading_space"`
	SkipEmptyRows    bool `json:"skip_empty_rows"`
}

// DefaultParseConfig returns the standard CSV reading options.
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
	}
}

// ParseStats accumulates counters and per-line errors for one parse run.
type ParseStats struct {
	RecordsParsed  int         `json:"records_parsed"`
	RecordsSkipped int         `json:"records_skipped"`
	Errors         errors.List `json:"errors"`
}

// HasErrors reports whether any record failed to parse.
func (s *ParseStats) HasErrors() bool {
	return s.Errors.Len() > 0
}

// baseParser wraps a csv.Reader with header resolution and line tracking.
type baseParser struct {
	config     *ParseConfig
	lineNumber int
	columns    map[string]int
}

func newBaseParser(config *ParseConfig) *baseParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	return &baseParser{config: config}
}

// openFile opens path and wraps it in a configured csv.Reader.
func (bp *baseParser) openFile(path string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, nil, errors.FileError(errors.CodeFileUnreadable, path, err)
	}

	reader := csv.NewReader(file)
	reader.Comma = bp.config.Delimiter
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// readHeaders reads the header row and resolves each required column to
// its index, honoring the supplied alias map (alias -> canonical name).
func (bp *baseParser) readHeaders(reader *csv.Reader, path string, required []string, aliases map[string]string) error {
	if !bp.config.HasHeader {
		return errors.ParseError(errors.CodeMissingColumn, path, 0, "headers", "",
			fmt.Errorf("headerless files are not supported"))
	}

	header, err := reader.Read()
	if err != nil {
		return errors.ParseError(errors.CodeInvalidFormat, path, 1, "headers", "", err)
	}
	bp.lineNumber = 1

	bp.columns = make(map[string]int, len(header))
	for i, name := range header {
		canonical := strings.ToLower(strings.TrimSpace(name))
		if resolved, ok := aliases[canonical]; ok {
			canonical = resolved
		}
		bp.columns[canonical] = i
	}

	for _, column := range required {
		if _, ok := bp.columns[column]; !ok {
			return errors.ParseError(errors.CodeMissingColumn, path, 1, column, "", nil)
		}
	}

	return nil
}

// readRecord reads the next data row, skipping empty rows when configured.
// Returns io.EOF at the end of the file.
func (bp *baseParser) readRecord(reader *csv.Reader) ([]string, error) {
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			bp.lineNumber++
			return nil, err
		}
		bp.lineNumber++

		if bp.config.SkipEmptyRows && isEmptyRow(record) {
			continue
		}

		return record, nil
	}
}

// field returns the named column of a record, or "" when absent.
func (bp *baseParser) field(record []string, column string) string {
	index, ok := bp.columns[column]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func isEmptyRow(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
