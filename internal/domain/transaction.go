package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionStatusOpen   = "open"
	TransactionStatusClosed = "closed"
)

const TransactionTypeOverdue = "overdue"

// Transaction is a monetary ledger entry linked to a loan
type Transaction struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	LoanID    string          `json:"loan_id" db:"loan_id"`
	PatronID  string          `json:"patron_id" db:"patron_id"`
	Type      string          `json:"type" db:"type"`
	Status    string          `json:"status" db:"status"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

func (t *Transaction) IsOpen() bool {
	return t.Status == TransactionStatusOpen
}

// PatronPreference holds the data retention settings of a patron
type PatronPreference struct {
	PatronID    string `json:"patron_id" db:"patron_id"`
	KeepHistory bool   `json:"keep_history" db:"keep_history"`
}
