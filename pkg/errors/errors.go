// Package errors defines the structured error types used across the
// matching service. Every error carries a category, a specific code, an
// optional suggestion for the operator and free-form context, plus a stack
// trace captured at construction time.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category groups errors by the subsystem that raised them.
type Category string

const (
	CategoryFile          Category = "file"
	CategoryParse         Category = "parse"
	CategoryValidation    Category = "validation"
	CategoryConfiguration Category = "configuration"
	CategoryMatching      Category = "matching"
	CategoryInternal      Category = "internal"
)

// Code identifies a specific error within a category.
type Code string

const (
	// File errors
	CodeFileNotFound   Code = "file_not_found"
	CodeFileUnreadable Code = "file_unreadable"

	// Parse errors
	CodeInvalidFormat Code = "invalid_format"
	CodeMissingColumn Code = "missing_column"
	CodeInvalidData   Code = "invalid_data"

	// Validation errors
	CodeInvalidAmount Code = "invalid_amount"
	CodeInvalidDate   Code = "invalid_date"
	CodeMissingField  Code = "missing_field"

	// Configuration errors
	CodeInvalidConfig Code = "invalid_config"

	// Matching errors
	CodeMatchingFailed Code = "matching_failed"

	// Internal errors
	CodeUnexpectedError Code = "unexpected_error"
)

// Context holds free-form key/value details attached to an error.
type Context map[string]interface{}

// MatcherError is the base error type for all application errors.
type MatcherError struct {
	Category   Category          `json:"category"`
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Error implements the error interface
func (e *MatcherError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *MatcherError) Unwrap() error {
	return e.Cause
}

// ExitCode maps the error category to a process exit code.
func (e *MatcherError) ExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryMatching, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *MatcherError) WithContext(key string, value interface{}) *MatcherError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *MatcherError) WithSuggestion(suggestion string) *MatcherError {
	e.Suggestion = suggestion
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new MatcherError with a captured stack trace.
func New(category Category, code Code, message string) *MatcherError {
	return &MatcherError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with category and code context.
func Wrap(err error, category Category, code Code, message string) *MatcherError {
	if err == nil {
		return nil
	}

	return &MatcherError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// FileError creates a file access error for the given path.
func FileError(code Code, path string, err error) *MatcherError {
	message := fmt.Sprintf("file error: %s", path)
	suggestion := "check the file and try again"

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFileUnreadable:
		message = fmt.Sprintf("cannot read file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	}

	result := New(CategoryFile, code, message)
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing error located at a line and column of a file.
func ParseError(code Code, file string, line int, column, value string, err error) *MatcherError {
	message := fmt.Sprintf("parse error in file %s at line %d", file, line)
	suggestion := "check the file format and data integrity"

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s' in file %s", column, file)
		suggestion = "verify the file has all required columns with correct headers"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "correct the data format or remove the invalid entry"
	}

	result := New(CategoryParse, code, message)
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column).
		WithContext("value", value)
}

// ValidationError creates a record validation error for a named field.
func ValidationError(code Code, field string, value interface{}, err error) *MatcherError {
	message := fmt.Sprintf("validation error in field '%s': %v", field, value)
	suggestion := "check the field value and format"

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are positive decimal numbers (e.g. '12.34')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use date format YYYY-MM-DD"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	}

	result := New(CategoryValidation, code, message)
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates an invalid-configuration error for a setting.
func ConfigurationError(setting string, value interface{}, err error) *MatcherError {
	message := fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
	if err != nil {
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, err)
	}

	result := New(CategoryConfiguration, CodeInvalidConfig, message)
	if err != nil {
		result = Wrap(err, CategoryConfiguration, CodeInvalidConfig, message)
	}

	return result.
		WithSuggestion("check the configuration documentation for valid values").
		WithContext("setting", setting).
		WithContext("value", value)
}

// MatchingError creates an error for a failed matching operation.
func MatchingError(operation string, err error) *MatcherError {
	message := fmt.Sprintf("matching failed during %s", operation)

	result := New(CategoryMatching, CodeMatchingFailed, message)
	if err != nil {
		result = Wrap(err, CategoryMatching, CodeMatchingFailed, message)
	}

	return result.
		WithSuggestion("try adjusting matching tolerances or check data quality").
		WithContext("operation", operation)
}

// InternalError creates an error for an unexpected internal failure.
func InternalError(operation string, err error) *MatcherError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	result := New(CategoryInternal, CodeUnexpectedError, message)
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeUnexpectedError, message)
	}

	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// List accumulates multiple errors, typically per-line parse failures.
type List struct {
	Errors []*MatcherError `json:"errors"`
}

// Add appends an error to the list; nil errors are ignored.
func (l *List) Add(err *MatcherError) {
	if err != nil {
		l.Errors = append(l.Errors, err)
	}
}

// Len returns the number of accumulated errors.
func (l *List) Len() int {
	return len(l.Errors)
}

// Error summarizes the accumulated errors.
func (l *List) Error() string {
	switch len(l.Errors) {
	case 0:
		return "no errors"
	case 1:
		return l.Errors[0].Error()
	}

	counts := make(map[Category]int)
	for _, err := range l.Errors {
		counts[err.Category]++
	}

	var parts []string
	for category, count := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", len(l.Errors), strings.Join(parts, ", "))
}

// ErrOrNil returns the list as an error when it is non-empty.
func (l *List) ErrOrNil() error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l
}

// IsMatcherError checks if an error is a MatcherError
func IsMatcherError(err error) bool {
	_, ok := err.(*MatcherError)
	return ok
}

// AsMatcherError extracts a MatcherError from an error chain
func AsMatcherError(err error) (*MatcherError, bool) {
	var matcherErr *MatcherError
	if errors.As(err, &matcherErr) {
		return matcherErr, true
	}
	return nil, false
}
