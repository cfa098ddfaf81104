package calendar

import (
	"context"
	"time"

	"github.com/segyhp/circulation-engine/internal/repository"
)

// Calendar answers opening questions for a library.
type Calendar interface {
	// IsOpen reports whether the library is open on the date of t
	IsOpen(ctx context.Context, libraryID string, t time.Time) (bool, error)

	// CountOpenDays counts the open dates between from and to, both included
	CountOpenDays(ctx context.Context, libraryID string, from, to time.Time) (int, error)

	// OverdueDays lists the open dates after the date of due, up to and
	// including the date of to
	OverdueDays(ctx context.Context, libraryID string, due, to time.Time) ([]time.Time, error)
}

type storeCalendar struct {
	repo repository.LibraryRepository
}

// NewCalendar returns a Calendar reading library calendars from repo.
func NewCalendar(repo repository.LibraryRepository) Calendar {
	return &storeCalendar{repo: repo}
}

func (c *storeCalendar) IsOpen(ctx context.Context, libraryID string, t time.Time) (bool, error) {
	cal, err := c.repo.GetCalendar(ctx, libraryID)
	if err != nil {
		return false, err
	}
	return cal.IsOpen(t)
}

func (c *storeCalendar) CountOpenDays(ctx context.Context, libraryID string, from, to time.Time) (int, error) {
	cal, err := c.repo.GetCalendar(ctx, libraryID)
	if err != nil {
		return 0, err
	}
	days, err := cal.OpenDays(from, to)
	if err != nil {
		return 0, err
	}
	return len(days), nil
}

func (c *storeCalendar) OverdueDays(ctx context.Context, libraryID string, due, to time.Time) ([]time.Time, error) {
	cal, err := c.repo.GetCalendar(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	return cal.OverdueDays(due, to)
}

var _ Calendar = (*storeCalendar)(nil)

