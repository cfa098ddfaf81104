package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	customError "github.com/segyhp/circulation-engine/pkg/errors"

	"github.com/jmoiron/sqlx"
)

const loanColumns = `
	id, state, due_date, transaction_date,
	COALESCE(patron_id, '') AS patron_id,
	COALESCE(patron_type_id, '') AS patron_type_id,
	item_id, library_id,
	COALESCE(notes, '') AS notes,
	to_anonymize, version
`

type loanRow struct {
	ID              string       `db:"id"`
	State           string       `db:"state"`
	DueDate         sql.NullTime `db:"due_date"`
	TransactionDate time.Time    `db:"transaction_date"`
	PatronID        string       `db:"patron_id"`
	PatronTypeID    string       `db:"patron_type_id"`
	ItemID          string       `db:"item_id"`
	LibraryID       string       `db:"library_id"`
	Notes           string       `db:"notes"`
	ToAnonymize     bool         `db:"to_anonymize"`
	Version         int          `db:"version"`
}

func (r loanRow) toDomain() *domain.Loan {
	return &domain.Loan{
		ID:              r.ID,
		State:           domain.LoanState(r.State),
		DueDate:         r.DueDate.Time,
		TransactionDate: r.TransactionDate,
		PatronID:        r.PatronID,
		PatronTypeID:    r.PatronTypeID,
		ItemID:          r.ItemID,
		LibraryID:       r.LibraryID,
		Notes:           r.Notes,
		ToAnonymize:     r.ToAnonymize,
		Version:         r.Version,
	}
}

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) GetByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var row loanRow
	err := r.db.GetContext(ctx, &row, query, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(loanID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	loan := row.toDomain()
	if err := loan.Validate(); err != nil {
		return nil, customError.WrapInvalidLoan(err)
	}
	return loan, nil
}

func (r *loanRepository) ListConcluded(ctx context.Context, concludedBefore time.Time, afterID string, limit int) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans
		WHERE state IN ('RETURNED', 'CANCELLED')
		  AND to_anonymize = FALSE
		  AND transaction_date <= $1
		  AND id > $2
		ORDER BY id
		LIMIT $3
	`
	return r.list(ctx, query, concludedBefore, afterID, limit)
}

func (r *loanRepository) ListOverdue(ctx context.Context, now time.Time, afterID string, limit int) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans
		WHERE state = 'ON_LOAN'
		  AND due_date < $1
		  AND id > $2
		ORDER BY id
		LIMIT $3
	`
	return r.list(ctx, query, now, afterID, limit)
}

func (r *loanRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	var rows []loanRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.toDomain())
	}
	return loans, nil
}

func (r *loanRepository) MarkAnonymized(ctx context.Context, loan *domain.Loan, expectedVersion int) (bool, error) {
	query := `
		UPDATE loans
		SET patron_id = NULLIF($3, ''), notes = NULLIF($4, ''), to_anonymize = TRUE,
		    version = version + 1, updated_at = $5
		WHERE id = $1 AND version = $2 AND to_anonymize = FALSE
	`

	result, err := r.db.ExecContext(ctx, query,
		loan.ID,
		expectedVersion,
		loan.PatronID,
		loan.Notes,
		time.Now(),
	)
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}
	return affected == 1, nil
}
