package service

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	"github.com/segyhp/circulation-engine/internal/repository"
	"github.com/segyhp/circulation-engine/internal/retention"
	customError "github.com/segyhp/circulation-engine/pkg/errors"
)

const defaultPageSize = 100

type RetentionService struct {
	LoanRepo           repository.LoanRepository
	TransactionRepo    repository.TransactionRepository
	PatronRepo         repository.PatronRepository
	policy             retention.Policy
	defaultKeepHistory bool
	pageSize           int
}

// NewRetentionService returns an error when the retention policy is unusable.
func NewRetentionService(
	loanRepo repository.LoanRepository,
	transactionRepo repository.TransactionRepository,
	patronRepo repository.PatronRepository,
	policy retention.Policy,
	defaultKeepHistory bool,
	pageSize int,
) (*RetentionService, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &RetentionService{
		LoanRepo:           loanRepo,
		TransactionRepo:    transactionRepo,
		PatronRepo:         patronRepo,
		policy:             policy,
		defaultKeepHistory: defaultKeepHistory,
		pageSize:           pageSize,
	}, nil
}

// IsConcluded reports whether the loan is terminal with no open transaction.
func (s *RetentionService) IsConcluded(ctx context.Context, loan *domain.Loan) (bool, error) {
	if !loan.State.IsTerminal() {
		return false, nil
	}

	open, err := s.TransactionRepo.ListByLoanID(ctx, loan.ID, domain.TransactionStatusOpen)
	if err != nil {
		return false, customError.WrapCollaboratorUnavailable("ledger", err)
	}
	return retention.Concluded(loan, open), nil
}

// Preference returns the stored preference of a patron, or the configured
// default for patrons who never set one.
func (s *RetentionService) Preference(ctx context.Context, patronID string) (domain.PatronPreference, error) {
	pref, err := s.PatronRepo.GetPreference(ctx, patronID)
	if errors.Is(err, repository.ErrPreferenceNotFound) {
		return domain.PatronPreference{PatronID: patronID, KeepHistory: s.defaultKeepHistory}, nil
	}
	if err != nil {
		return domain.PatronPreference{}, customError.WrapCollaboratorUnavailable("patron preference", err)
	}
	return *pref, nil
}

// CanAnonymize evaluates the loan against the retention policy at now. The
// patron preference is only looked up when the loan age falls between the
// retention floor and ceiling.
func (s *RetentionService) CanAnonymize(ctx context.Context, loan *domain.Loan, now time.Time) (bool, error) {
	if loan.ToAnonymize {
		return false, nil
	}

	concluded, err := s.IsConcluded(ctx, loan)
	if err != nil || !concluded {
		return false, err
	}

	pref := domain.PatronPreference{PatronID: loan.PatronID, KeepHistory: s.defaultKeepHistory}
	age := now.Sub(loan.TransactionDate)
	if age >= s.policy.MinRetention && age < s.policy.MaxRetention {
		if pref, err = s.Preference(ctx, loan.PatronID); err != nil {
			return false, err
		}
	}

	return s.policy.CanAnonymize(loan, concluded, pref, now), nil
}

// Candidates walks the concluded loans page by page and yields those that
// can be anonymized at now. A loan whose evaluation failed is yielded with
// the error so the caller can skip it. A failed page fetch is yielded with a
// nil loan and ends the sequence. Every loan is visited at most once per
// call; calling again starts over against the current state.
func (s *RetentionService) Candidates(ctx context.Context, now time.Time) iter.Seq2[*domain.Loan, error] {
	return func(yield func(*domain.Loan, error) bool) {
		cutoff := s.policy.CandidateCutoff(now)
		afterID := ""

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			page, err := s.LoanRepo.ListConcluded(ctx, cutoff, afterID, s.pageSize)
			if err != nil {
				yield(nil, customError.WrapCollaboratorUnavailable("loan store", err))
				return
			}

			for _, loan := range page {
				afterID = loan.ID

				if err := loan.Validate(); err != nil {
					if !yield(loan, customError.WrapInvalidLoan(err)) {
						return
					}
					continue
				}

				ok, err := s.CanAnonymize(ctx, loan, now)
				if err != nil {
					if !yield(loan, err) {
						return
					}
					continue
				}
				if ok && !yield(loan, nil) {
					return
				}
			}

			if len(page) < s.pageSize {
				return
			}
		}
	}
}
