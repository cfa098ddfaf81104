package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// LoanState is the circulation lifecycle state of a loan
type LoanState string

const (
	LoanStatePending   LoanState = "PENDING"
	LoanStateOnLoan    LoanState = "ON_LOAN"
	LoanStateReturned  LoanState = "RETURNED"
	LoanStateCancelled LoanState = "CANCELLED"
)

// IsTerminal reports whether no further circulation transition is expected.
func (s LoanState) IsTerminal() bool {
	return s == LoanStateReturned || s == LoanStateCancelled
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Loan represents a loan record as read from the circulation store
type Loan struct {
	ID              string    `json:"id" db:"id" validate:"required"`
	State           LoanState `json:"state" db:"state" validate:"required,oneof=PENDING ON_LOAN RETURNED CANCELLED"`
	DueDate         time.Time `json:"due_date" db:"due_date"`
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date" validate:"required"`
	PatronID        string    `json:"patron_id" db:"patron_id"`
	PatronTypeID    string    `json:"patron_type_id" db:"patron_type_id"`
	ItemID          string    `json:"item_id" db:"item_id" validate:"required"`
	LibraryID       string    `json:"library_id" db:"library_id" validate:"required"`
	Notes           string    `json:"notes" db:"notes"`
	ToAnonymize     bool      `json:"to_anonymize" db:"to_anonymize"`
	Version         int       `json:"version" db:"version"`
}

// NewLoan validates the given fields and returns the loan.
func NewLoan(l Loan) (*Loan, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks the required fields of a loan. Anonymized loans no longer
// carry a patron reference; every other loan must.
func (l *Loan) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid loan %q: %w", l.ID, err)
	}
	if !l.ToAnonymize && l.PatronID == "" {
		return fmt.Errorf("invalid loan %q: patron_id is required", l.ID)
	}
	if l.State == LoanStateOnLoan && l.DueDate.IsZero() {
		return fmt.Errorf("invalid loan %q: due_date is required for state %s", l.ID, l.State)
	}
	return nil
}

// Anonymized returns a copy with the personal fields erased. State, dates and
// the item/library/patron type linkage are kept for statistics.
func (l Loan) Anonymized() *Loan {
	l.PatronID = ""
	l.Notes = ""
	l.ToAnonymize = true
	return &l
}

// OverdueWindow returns the due instant and the instant up to which a loan
// accrues overdue days. Overdue days are the calendar days after the date of
// from. ok is false when the loan is not in a state that accrues fees.
func (l *Loan) OverdueWindow(now time.Time) (from, to time.Time, ok bool) {
	switch l.State {
	case LoanStateOnLoan:
		to = now
	case LoanStateReturned:
		to = l.TransactionDate
	default:
		return time.Time{}, time.Time{}, false
	}
	if l.DueDate.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return l.DueDate, to, true
}
