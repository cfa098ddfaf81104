package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	customError "github.com/segyhp/circulation-engine/pkg/errors"

	"github.com/jmoiron/sqlx"
)

type feePolicyRepository struct {
	db *sqlx.DB
}

func NewFeePolicyRepository(db *sqlx.DB) FeePolicyRepository {
	return &feePolicyRepository{db: db}
}

// GetSchedule resolves the circulation policy of the loan and returns its
// overdue_fees definition.
func (r *feePolicyRepository) GetSchedule(ctx context.Context, loanID string) (*domain.FeeSchedule, error) {
	query := `
		SELECT cp.overdue_fees
		FROM loans l
		JOIN circulation_policies cp ON cp.id = l.circulation_policy_id
		WHERE l.id = $1
	`

	var raw []byte
	err := r.db.GetContext(ctx, &raw, query, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if raw == nil {
		return nil, nil
	}

	var schedule domain.FeeSchedule
	if err := schedule.Scan(raw); err != nil {
		return nil, err
	}
	return &schedule, nil
}

type libraryRepository struct {
	db *sqlx.DB
}

func NewLibraryRepository(db *sqlx.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

type calendarRow struct {
	LibraryID      string `db:"library_id"`
	Timezone       string `db:"timezone"`
	ClosedWeekdays []byte `db:"closed_weekdays"`
	Exceptions     []byte `db:"exceptions"`
}

func (r *libraryRepository) GetCalendar(ctx context.Context, libraryID string) (*domain.LibraryCalendar, error) {
	query := `
		SELECT library_id, timezone, closed_weekdays, exceptions
		FROM library_calendars
		WHERE library_id = $1
	`

	var row calendarRow
	err := r.db.GetContext(ctx, &row, query, libraryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCalendarNotFound
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	cal := &domain.LibraryCalendar{
		LibraryID: row.LibraryID,
		Timezone:  row.Timezone,
	}
	if len(row.ClosedWeekdays) > 0 {
		var weekdays []time.Weekday
		if err := json.Unmarshal(row.ClosedWeekdays, &weekdays); err != nil {
			return nil, err
		}
		cal.ClosedWeekdays = weekdays
	}
	if len(row.Exceptions) > 0 {
		if err := json.Unmarshal(row.Exceptions, &cal.Exceptions); err != nil {
			return nil, err
		}
	}
	return cal, nil
}
