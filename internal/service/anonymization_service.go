package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	"github.com/segyhp/circulation-engine/internal/metrics"
	"github.com/segyhp/circulation-engine/internal/repository"
	customError "github.com/segyhp/circulation-engine/pkg/errors"

	"github.com/google/uuid"
)

type AnonymizationService struct {
	LoanRepo  repository.LoanRepository
	retention *RetentionService
	metrics   *metrics.Metrics
}

func NewAnonymizationService(
	loanRepo repository.LoanRepository,
	retention *RetentionService,
	metrics *metrics.Metrics,
) *AnonymizationService {
	return &AnonymizationService{
		LoanRepo:  loanRepo,
		retention: retention,
		metrics:   metrics,
	}
}

// Run anonymizes every loan eligible at now and returns how many this run
// anonymized. Failures on single loans are logged and skipped; the run only
// fails when the service is not configured or ctx is cancelled.
func (s *AnonymizationService) Run(ctx context.Context, now time.Time) (int, error) {
	if s.retention == nil || s.LoanRepo == nil {
		return 0, customError.WrapInvalidConfiguration("anonymization requires a loan store and a retention service")
	}

	start := time.Now()
	runID := uuid.New().String()
	log.Printf("[anonymization %s] starting run at %s", runID, now.Format(time.RFC3339))

	var processed, skipped, conflicts int
	for candidate, err := range s.retention.Candidates(ctx, now) {
		if candidate == nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.finish(runID, start, processed, skipped, conflicts)
				return processed, ctxErr
			}
			log.Printf("[anonymization %s] stopping run, candidate listing failed: %v", runID, err)
			break
		}
		if err != nil {
			log.Printf("[anonymization %s] skipping loan %s: %v", runID, candidate.ID, err)
			skipped++
			s.countSkipped()
			continue
		}

		done, err := s.anonymize(ctx, candidate, now)
		switch {
		case errors.Is(err, customError.ErrConcurrencyConflict):
			log.Printf("[anonymization %s] loan %s changed concurrently, leaving it", runID, candidate.ID)
			conflicts++
			if s.metrics != nil {
				s.metrics.AnonymizationConflict.Inc()
			}
		case err != nil:
			log.Printf("[anonymization %s] skipping loan %s: %v", runID, candidate.ID, err)
			skipped++
			s.countSkipped()
		case done:
			processed++
			if s.metrics != nil {
				s.metrics.LoansAnonymized.Inc()
			}
		}
	}

	s.finish(runID, start, processed, skipped, conflicts)
	return processed, nil
}

// anonymize re-reads the loan, redacts it and writes it back guarded by the
// version read. It returns false without error when the loan no longer
// qualifies.
func (s *AnonymizationService) anonymize(ctx context.Context, candidate *domain.Loan, now time.Time) (bool, error) {
	current, err := s.LoanRepo.GetByID(ctx, candidate.ID)
	if err != nil {
		return false, err
	}
	if current.ToAnonymize {
		return false, nil
	}

	if current.Version != candidate.Version {
		ok, err := s.retention.CanAnonymize(ctx, current, now)
		if err != nil || !ok {
			return false, err
		}
	}

	written, err := s.LoanRepo.MarkAnonymized(ctx, current.Anonymized(), current.Version)
	if err != nil {
		return false, err
	}
	if !written {
		return false, customError.WrapConcurrencyConflict(current.ID)
	}
	return true, nil
}

func (s *AnonymizationService) countSkipped() {
	if s.metrics != nil {
		s.metrics.AnonymizationSkipped.Inc()
	}
}

func (s *AnonymizationService) finish(runID string, start time.Time, processed, skipped, conflicts int) {
	if s.metrics != nil {
		s.metrics.ObserveAnonymization(start)
	}
	log.Printf("[anonymization %s] number_of_loans_anonymized: %d (skipped: %d, conflicts: %d, took %s)",
		runID, processed, skipped, conflicts, time.Since(start))
}
