// Package retention decides when a loan record may be anonymized.
//
// A loan is concluded once it reached a terminal state and no open ledger
// transaction references it. A concluded loan younger than the minimum
// retention is always kept; one older than the maximum retention is always
// anonymized; in between, the patron's keep-history preference decides.
package retention

import (
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	customError "github.com/segyhp/circulation-engine/pkg/errors"
)

// Policy holds the retention floor and ceiling.
type Policy struct {
	MinRetention time.Duration
	MaxRetention time.Duration
}

// Validate rejects missing or inconsistent retention durations.
func (p Policy) Validate() error {
	if p.MinRetention <= 0 {
		return customError.WrapInvalidConfiguration("minimum retention must be greater than 0")
	}
	if p.MaxRetention <= 0 {
		return customError.WrapInvalidConfiguration("maximum retention must be greater than 0")
	}
	if p.MinRetention > p.MaxRetention {
		return customError.WrapInvalidConfiguration("minimum retention must not exceed maximum retention")
	}
	return nil
}

// Concluded reports whether a loan is terminal and none of the given
// transactions is still open.
func Concluded(loan *domain.Loan, transactions []*domain.Transaction) bool {
	if !loan.State.IsTerminal() {
		return false
	}
	for _, tx := range transactions {
		if tx.LoanID == loan.ID && tx.IsOpen() {
			return false
		}
	}
	return true
}

// CanAnonymize applies the retention window to a concluded loan.
func (p Policy) CanAnonymize(loan *domain.Loan, concluded bool, pref domain.PatronPreference, now time.Time) bool {
	if !concluded || loan.ToAnonymize {
		return false
	}

	age := now.Sub(loan.TransactionDate)
	switch {
	case age >= p.MaxRetention:
		return true
	case age < p.MinRetention:
		return false
	default:
		return !pref.KeepHistory
	}
}

// CandidateCutoff is the latest transaction date a loan may have to be
// considered at all at instant now.
func (p Policy) CandidateCutoff(now time.Time) time.Time {
	return now.Add(-p.MinRetention)
}
