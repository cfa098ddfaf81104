package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound            = errors.New("loan not found")
	ErrInvalidLoan             = errors.New("invalid loan")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrConcurrencyConflict     = errors.New("concurrent update")
	ErrInvalidConfiguration    = errors.New("invalid configuration")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound            = "LOAN_NOT_FOUND"
	ErrCodeInvalidLoan             = "INVALID_LOAN"
	ErrCodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	ErrCodeConcurrencyConflict     = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidConfiguration    = "INVALID_CONFIGURATION"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeCacheError              = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInvalidLoan(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoan,
		err.Error(),
		ErrInvalidLoan,
	)
}

// WrapCollaboratorUnavailable marks a failed lookup against the calendar,
// ledger, patron or fee policy stores. Callers may retry.
func WrapCollaboratorUnavailable(collaborator string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCollaboratorUnavailable,
		fmt.Sprintf("%s lookup failed: %v", collaborator, err),
		ErrCollaboratorUnavailable,
	)
}

func WrapConcurrencyConflict(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrencyConflict,
		fmt.Sprintf("Loan with ID %s was modified concurrently", loanID),
		ErrConcurrencyConflict,
	)
}

func WrapInvalidConfiguration(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidConfiguration,
		message,
		ErrInvalidConfiguration,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// IsCode reports whether err carries a BusinessError with the given code.
func IsCode(err error, code string) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Code == code
}
