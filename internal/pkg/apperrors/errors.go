package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the HTTP layer can pick a status code.
type Kind string

// Error kinds
const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindFetch       Kind = "fetch"
	KindParse       Kind = "parse"
	KindSchema      Kind = "schema"
	KindPersistence Kind = "persistence"
)

// Common errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Exam schedule errors
var (
	ErrUnknownExamType = errors.New("unknown exam type")
	ErrTableNotFound   = errors.New("exam table not found")
	ErrInvalidTable    = errors.New("invalid exam table identifier")
)

// Error is an application error tagged with a Kind and the operation that
// produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Error implements error interface
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
}

// Unwrap implements errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// ParseError reports a scraped line (or page) that does not have the shape
// the decoder expects. Line is 1-based and zero when the failure is not tied
// to a single line.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

// Error implements error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
	}
	return e.Reason
}

// NewFetchError wraps a network or HTTP status failure.
func NewFetchError(op string, err error) error {
	return &Error{Kind: KindFetch, Op: op, Err: err}
}

// NewParseError wraps a ParseError.
func NewParseError(op string, perr *ParseError) error {
	return &Error{Kind: KindParse, Op: op, Err: perr}
}

// NewSchemaError reports a table that cannot be provisioned.
func NewSchemaError(op string, err error) error {
	return &Error{Kind: KindSchema, Op: op, Err: err}
}

// NewPersistenceError wraps a failing store operation.
func NewPersistenceError(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// NewValidationError reports a bad request value.
func NewValidationError(op, message string) error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Err: ErrValidationFailed}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(op, message string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: message, Err: ErrResourceNotFound}
}

// KindOf returns the Kind of the outermost *Error in err's chain. Sentinels
// that carry their own meaning are classified even when not wrapped.
func KindOf(err error) (Kind, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, ErrUnknownExamType), errors.Is(err, ErrInvalidTable),
		errors.Is(err, ErrValidationFailed), errors.Is(err, ErrBadRequest):
		return KindValidation, true
	case errors.Is(err, ErrTableNotFound), errors.Is(err, ErrResourceNotFound):
		return KindNotFound, true
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
