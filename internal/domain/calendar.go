package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/segyhp/circulation-engine/pkg/utils"
)

var (
	// ErrNoOpenDays is returned for a calendar on which the library is never open.
	ErrNoOpenDays = errors.New("library has no open days")
	// ErrCalendarNotFound is returned when no calendar is defined for a library.
	ErrCalendarNotFound = errors.New("library calendar not found")
)

// CalendarException overrides the weekly rule for a single date or, when
// EndDate is set, for every date in [StartDate, EndDate].
type CalendarException struct {
	Title        string     `json:"title"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsOpen       bool       `json:"is_open"`
	RepeatYearly bool       `json:"repeat_yearly"`
}

func (e CalendarException) isRange() bool {
	return e.EndDate != nil
}

func (e CalendarException) covers(day civilDate) bool {
	start := civilDateOf(e.StartDate)
	end := start
	if e.EndDate != nil {
		end = civilDateOf(*e.EndDate)
	}

	if !e.RepeatYearly {
		return start.key() <= day.key() && day.key() <= end.key()
	}

	// Yearly ranges may wrap over new year (e.g. Dec 24 - Jan 2).
	s, en, d := start.monthDay(), end.monthDay(), day.monthDay()
	if day.key() < start.key() {
		return false
	}
	if s <= en {
		return s <= d && d <= en
	}
	return d >= s || d <= en
}

// LibraryCalendar describes when a library is open
type LibraryCalendar struct {
	LibraryID      string              `json:"library_id"`
	Timezone       string              `json:"timezone"`
	ClosedWeekdays []time.Weekday      `json:"closed_weekdays"`
	Exceptions     []CalendarException `json:"exceptions"`
}

// Location returns the library time zone, UTC when none is set.
func (c *LibraryCalendar) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", c.LibraryID, err)
	}
	return loc, nil
}

// HasOpenDays reports whether the library can ever be open.
func (c *LibraryCalendar) HasOpenDays() bool {
	if c.openWeekdays() > 0 {
		return true
	}
	for _, e := range c.Exceptions {
		if e.IsOpen {
			return true
		}
	}
	return false
}

func (c *LibraryCalendar) openWeekdays() int {
	closed := make(map[time.Weekday]struct{}, len(c.ClosedWeekdays))
	for _, wd := range c.ClosedWeekdays {
		closed[wd] = struct{}{}
	}
	return 7 - len(closed)
}

// IsOpen reports whether the library is open on the calendar date of t, in
// the library time zone. Single-date exceptions take precedence over ranged
// ones, which take precedence over the weekly closing days.
func (c *LibraryCalendar) IsOpen(t time.Time) (bool, error) {
	loc, err := c.Location()
	if err != nil {
		return false, err
	}
	return c.isOpenOn(civilDateOf(t.In(loc)), t.In(loc).Weekday()), nil
}

func (c *LibraryCalendar) isOpenOn(day civilDate, weekday time.Weekday) bool {
	var ranged *CalendarException
	for i := range c.Exceptions {
		e := &c.Exceptions[i]
		if !e.covers(day) {
			continue
		}
		if !e.isRange() {
			return e.IsOpen
		}
		if ranged == nil {
			ranged = e
		}
	}
	if ranged != nil {
		return ranged.IsOpen
	}

	for _, wd := range c.ClosedWeekdays {
		if wd == weekday {
			return false
		}
	}
	return true
}

// OpenDays returns the start of every open calendar day from the date of
// from up to and including the date of to. It returns nothing when to is not
// after from, and ErrNoOpenDays when the library is never open.
func (c *LibraryCalendar) OpenDays(from, to time.Time) ([]time.Time, error) {
	if !to.After(from) {
		return nil, nil
	}
	return c.openDaysBetween(from, to, 0)
}

// OverdueDays returns the open days strictly after the calendar date of due,
// up to and including the date of to, both dates taken in the library time
// zone. The time of day of due plays no part: an item due at 10:00 or at
// 23:59 starts accruing on the next open day.
func (c *LibraryCalendar) OverdueDays(due, to time.Time) ([]time.Time, error) {
	if !to.After(due) {
		return nil, nil
	}
	return c.openDaysBetween(due, to, 1)
}

func (c *LibraryCalendar) openDaysBetween(from, to time.Time, skip int) ([]time.Time, error) {
	if !c.HasOpenDays() {
		return nil, ErrNoOpenDays
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	day := utils.StartOfDay(from, loc).AddDate(0, 0, skip)
	last := utils.StartOfDay(to, loc)

	var days []time.Time
	for !day.After(last) {
		if c.isOpenOn(civilDateOf(day), day.Weekday()) {
			days = append(days, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return days, nil
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civilDateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}

func (d civilDate) key() int {
	return d.year*10000 + d.monthDay()
}

func (d civilDate) monthDay() int {
	return int(d.month)*100 + d.day
}
