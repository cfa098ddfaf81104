package repository

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPreferenceNotFound is returned for patrons without a stored preference
var ErrPreferenceNotFound = errors.New("patron preference not found")

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListConcluded returns up to limit loans in a terminal state, not yet
	// anonymized, with a transaction date at or before concludedBefore and an
	// ID greater than afterID, ordered by ID
	ListConcluded(ctx context.Context, concludedBefore time.Time, afterID string, limit int) ([]*domain.Loan, error)

	// ListOverdue returns up to limit ON_LOAN loans due before now with an ID
	// greater than afterID, ordered by ID
	ListOverdue(ctx context.Context, now time.Time, afterID string, limit int) ([]*domain.Loan, error)

	// MarkAnonymized writes the redacted loan if the stored version still
	// equals expectedVersion and the loan is not anonymized yet. It reports
	// false when another writer got there first.
	MarkAnonymized(ctx context.Context, loan *domain.Loan, expectedVersion int) (bool, error)
}

// TransactionRepository defines the interface for ledger operations
type TransactionRepository interface {
	// ListByLoanID lists the transactions of a loan, optionally filtered by status
	ListByLoanID(ctx context.Context, loanID string, status string) ([]*domain.Transaction, error)

	// Create records a new transaction
	Create(ctx context.Context, tx *domain.Transaction) error

	// UpdateAmount changes the amount of an open transaction
	UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// PatronRepository defines the interface for patron preference lookups
type PatronRepository interface {
	// GetPreference returns the preference of a patron, ErrPreferenceNotFound
	// when the patron never set one
	GetPreference(ctx context.Context, patronID string) (*domain.PatronPreference, error)
}

// FeePolicyRepository defines the interface for circulation policy lookups
type FeePolicyRepository interface {
	// GetSchedule returns the overdue fee schedule applying to a loan, nil
	// when its policy defines none
	GetSchedule(ctx context.Context, loanID string) (*domain.FeeSchedule, error)
}

// LibraryRepository defines the interface for library calendar lookups
type LibraryRepository interface {
	// GetCalendar returns the opening calendar of a library
	GetCalendar(ctx context.Context, libraryID string) (*domain.LibraryCalendar, error)
}
