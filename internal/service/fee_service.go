package service

import (
	"context"
	"log"
	"time"

	"github.com/segyhp/circulation-engine/internal/calendar"
	"github.com/segyhp/circulation-engine/internal/domain"
	"github.com/segyhp/circulation-engine/internal/fees"
	"github.com/segyhp/circulation-engine/internal/metrics"
	"github.com/segyhp/circulation-engine/internal/repository"
	customError "github.com/segyhp/circulation-engine/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FeeService struct {
	LoanRepo        repository.LoanRepository
	PolicyRepo      repository.FeePolicyRepository
	TransactionRepo repository.TransactionRepository
	calendar        calendar.Calendar
	metrics         *metrics.Metrics
	pageSize        int
}

func NewFeeService(
	loanRepo repository.LoanRepository,
	policyRepo repository.FeePolicyRepository,
	transactionRepo repository.TransactionRepository,
	cal calendar.Calendar,
	metrics *metrics.Metrics,
	pageSize int,
) *FeeService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &FeeService{
		LoanRepo:        loanRepo,
		PolicyRepo:      policyRepo,
		TransactionRepo: transactionRepo,
		calendar:        cal,
		metrics:         metrics,
		pageSize:        pageSize,
	}
}

// OverdueFee computes the overdue fee of a loan at now. On-loan items accrue
// until now, returned items until their check-in; other loans owe nothing.
func (s *FeeService) OverdueFee(ctx context.Context, loan *domain.Loan, now time.Time) (*domain.OverdueFeeResponse, error) {
	response := &domain.OverdueFeeResponse{
		LoanID:   loan.ID,
		Amount:   decimal.Zero,
		Accruals: []domain.Accrual{},
	}

	from, to, ok := loan.OverdueWindow(now)
	if !ok || !to.After(from) {
		return response, nil
	}

	schedule, err := s.PolicyRepo.GetSchedule(ctx, loan.ID)
	if err != nil {
		return nil, customError.WrapCollaboratorUnavailable("fee policy", err)
	}
	if schedule == nil {
		return response, nil
	}

	days, err := calendar.OverdueOpenDays(ctx, s.calendar, loan.LibraryID, from, to)
	if err != nil {
		return nil, err
	}

	response.OverdueDays = len(days)
	response.Amount = fees.ComputeFee(len(days), *schedule)
	response.Accruals = fees.Accrue(days, *schedule)
	return response, nil
}

// ChargeOverdueFee records the unpaid part of the overdue fee of a loan on
// the ledger. Closed overdue transactions count as paid; the remainder goes
// to the open overdue transaction, which is updated or created. It returns
// nil when nothing is left to bill.
func (s *FeeService) ChargeOverdueFee(ctx context.Context, loan *domain.Loan, now time.Time) (*domain.Transaction, error) {
	fee, err := s.OverdueFee(ctx, loan, now)
	if err != nil {
		return nil, err
	}
	if !fee.Amount.IsPositive() {
		return nil, nil
	}

	transactions, err := s.TransactionRepo.ListByLoanID(ctx, loan.ID, "")
	if err != nil {
		return nil, customError.WrapCollaboratorUnavailable("ledger", err)
	}

	paid := decimal.Zero
	var open *domain.Transaction
	for _, tx := range transactions {
		if tx.Type != domain.TransactionTypeOverdue {
			continue
		}
		if tx.IsOpen() {
			if open == nil {
				open = tx
			}
			continue
		}
		paid = paid.Add(tx.Amount)
	}

	outstanding := fee.Amount.Sub(paid)
	if !outstanding.IsPositive() {
		// The fee only grows, so an open transaction is already up to date.
		return open, nil
	}

	if open != nil {
		if open.Amount.Equal(outstanding) {
			return open, nil
		}
		if err := s.TransactionRepo.UpdateAmount(ctx, open.ID, outstanding); err != nil {
			return nil, customError.WrapCollaboratorUnavailable("ledger", err)
		}
		open.Amount = outstanding
		open.UpdatedAt = now
		return open, nil
	}

	tx := &domain.Transaction{
		ID:        uuid.New(),
		LoanID:    loan.ID,
		PatronID:  loan.PatronID,
		Type:      domain.TransactionTypeOverdue,
		Status:    domain.TransactionStatusOpen,
		Amount:    outstanding,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return nil, customError.WrapCollaboratorUnavailable("ledger", err)
	}
	return tx, nil
}

// AssessOverdue charges every overdue loan and returns how many carry an
// unpaid fee.
// A failure on one loan is logged and the loan skipped.
func (s *FeeService) AssessOverdue(ctx context.Context, now time.Time) (int, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveFeeAssessment(start)
		}
	}()

	charged := 0
	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return charged, err
		}

		page, err := s.LoanRepo.ListOverdue(ctx, now, afterID, s.pageSize)
		if err != nil {
			log.Printf("[fees] stopping assessment, overdue listing failed: %v", err)
			break
		}

		for _, loan := range page {
			afterID = loan.ID

			tx, err := s.ChargeOverdueFee(ctx, loan, now)
			if err != nil {
				log.Printf("[fees] skipping loan %s: %v", loan.ID, err)
				if s.metrics != nil {
					s.metrics.FeeAssessmentSkipped.Inc()
				}
				continue
			}
			if tx != nil {
				charged++
				if s.metrics != nil {
					s.metrics.FeesCharged.Inc()
				}
			}
		}

		if len(page) < s.pageSize {
			break
		}
	}

	log.Printf("[fees] number_of_loans_charged: %d (took %s)", charged, time.Since(start))
	return charged, nil
}
