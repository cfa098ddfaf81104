package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	customError "github.com/segyhp/circulation-engine/pkg/errors"
)

// CountOverdueOpenDays counts the days the library was open after the
// calendar date of due, up to and including the date of to.
//
// A library whose calendar cannot be resolved, or which is never open, has
// no overdue days. Any other calendar failure is returned as a collaborator
// error.
func CountOverdueOpenDays(ctx context.Context, cal Calendar, libraryID string, due, to time.Time) (int, error) {
	days, err := OverdueOpenDays(ctx, cal, libraryID, due, to)
	if err != nil {
		return 0, err
	}
	return len(days), nil
}

// OverdueOpenDays is CountOverdueOpenDays returning the dates themselves.
func OverdueOpenDays(ctx context.Context, cal Calendar, libraryID string, due, to time.Time) ([]time.Time, error) {
	if !to.After(due) {
		return nil, nil
	}

	days, err := cal.OverdueDays(ctx, libraryID, due, to)
	if err != nil {
		if unresolved(err) {
			return nil, nil
		}
		return nil, customError.WrapCollaboratorUnavailable("calendar", err)
	}
	return days, nil
}

func unresolved(err error) bool {
	return errors.Is(err, domain.ErrNoOpenDays) || errors.Is(err, domain.ErrCalendarNotFound)
}
