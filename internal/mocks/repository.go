package mocks

import (
	"context"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) GetByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListConcluded(ctx context.Context, concludedBefore time.Time, afterID string, limit int) ([]*domain.Loan, error) {
	args := m.Called(ctx, concludedBefore, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListOverdue(ctx context.Context, now time.Time, afterID string, limit int) ([]*domain.Loan, error) {
	args := m.Called(ctx, now, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) MarkAnonymized(ctx context.Context, loan *domain.Loan, expectedVersion int) (bool, error) {
	args := m.Called(ctx, loan, expectedVersion)
	return args.Bool(0), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListByLoanID(ctx context.Context, loanID string, status string) ([]*domain.Transaction, error) {
	args := m.Called(ctx, loanID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

type MockPatronRepository struct {
	mock.Mock
}

func (m *MockPatronRepository) GetPreference(ctx context.Context, patronID string) (*domain.PatronPreference, error) {
	args := m.Called(ctx, patronID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatronPreference), args.Error(1)
}

type MockFeePolicyRepository struct {
	mock.Mock
}

func (m *MockFeePolicyRepository) GetSchedule(ctx context.Context, loanID string) (*domain.FeeSchedule, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeSchedule), args.Error(1)
}

type MockLibraryRepository struct {
	mock.Mock
}

func (m *MockLibraryRepository) GetCalendar(ctx context.Context, libraryID string) (*domain.LibraryCalendar, error) {
	args := m.Called(ctx, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LibraryCalendar), args.Error(1)
}

type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) IsOpen(ctx context.Context, libraryID string, t time.Time) (bool, error) {
	args := m.Called(ctx, libraryID, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockCalendar) CountOpenDays(ctx context.Context, libraryID string, from, to time.Time) (int, error) {
	args := m.Called(ctx, libraryID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockCalendar) OverdueDays(ctx context.Context, libraryID string, due, to time.Time) ([]time.Time, error) {
	args := m.Called(ctx, libraryID, due, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}
