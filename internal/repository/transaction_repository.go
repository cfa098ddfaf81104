package repository

import (
	"context"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	customError "github.com/segyhp/circulation-engine/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) ListByLoanID(ctx context.Context, loanID string, status string) ([]*domain.Transaction, error) {
	query := `
		SELECT id, loan_id, COALESCE(patron_id, '') AS patron_id, type, status, amount, created_at, updated_at
		FROM patron_transactions
		WHERE loan_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at
	`

	var transactions []*domain.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, loanID, status); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return transactions, nil
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO patron_transactions (id, loan_id, patron_id, type, status, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.LoanID,
		tx.PatronID,
		tx.Type,
		tx.Status,
		tx.Amount,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

func (r *transactionRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE patron_transactions
		SET amount = $2, updated_at = $3
		WHERE id = $1 AND status = 'open'
	`

	if _, err := r.db.ExecContext(ctx, query, id, amount, time.Now()); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}
