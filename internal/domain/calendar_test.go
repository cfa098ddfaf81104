package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func weekendClosedCalendar() *LibraryCalendar {
	return &LibraryCalendar{
		LibraryID:      "lib-1",
		ClosedWeekdays: []time.Weekday{time.Saturday, time.Sunday},
		Exceptions: []CalendarException{
			{Title: "Christmas break", StartDate: date(2023, time.December, 24), EndDate: datePtr(2024, time.January, 2), RepeatYearly: true},
			{Title: "Late opening", StartDate: date(2023, time.December, 28), IsOpen: true},
			{Title: "Saturday book fair", StartDate: date(2024, time.March, 9), IsOpen: true},
			{Title: "Inventory", StartDate: date(2024, time.March, 13)},
		},
	}
}

func TestLibraryCalendar_IsOpen(t *testing.T) {
	cal := weekendClosedCalendar()

	tests := []struct {
		name     string
		day      time.Time
		expected bool
	}{
		{name: "regular monday", day: date(2024, time.March, 4), expected: true},
		{name: "weekly closing day", day: date(2024, time.March, 10), expected: false},
		{name: "opening exception on a saturday", day: date(2024, time.March, 9), expected: true},
		{name: "closing exception on a wednesday", day: date(2024, time.March, 13), expected: false},
		{name: "inside the holiday range", day: date(2023, time.December, 27), expected: false},
		{name: "single date wins over range", day: date(2023, time.December, 28), expected: true},
		{name: "holiday range repeats next year across new year", day: date(2025, time.January, 2), expected: false},
		{name: "after the holiday range", day: date(2025, time.January, 3), expected: true},
		{name: "repeat does not apply before the first year", day: date(2022, time.December, 27), expected: true},
		{name: "time of day is ignored", day: time.Date(2024, time.March, 4, 23, 59, 0, 0, time.UTC), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, err := cal.IsOpen(tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, open)
		})
	}
}

func TestLibraryCalendar_IsOpen_Timezone(t *testing.T) {
	cal := &LibraryCalendar{
		LibraryID:      "lib-zurich",
		Timezone:       "Europe/Zurich",
		ClosedWeekdays: []time.Weekday{time.Sunday},
	}

	// Saturday 23:30 UTC is already Sunday in Zurich.
	open, err := cal.IsOpen(time.Date(2024, time.March, 9, 23, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, open)

	cal.Timezone = "Not/AZone"
	_, err = cal.IsOpen(date(2024, time.March, 9))
	assert.Error(t, err)
}

func TestLibraryCalendar_OpenDays(t *testing.T) {
	cal := weekendClosedCalendar()

	days, err := cal.OpenDays(date(2024, time.March, 4), time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	expected := []time.Time{
		date(2024, time.March, 4),
		date(2024, time.March, 5),
		date(2024, time.March, 6),
		date(2024, time.March, 7),
		date(2024, time.March, 8),
		date(2024, time.March, 9),
		date(2024, time.March, 11),
		date(2024, time.March, 12),
		date(2024, time.March, 14),
	}
	assert.Equal(t, expected, days)
}

func TestLibraryCalendar_OpenDays_EmptyRange(t *testing.T) {
	cal := weekendClosedCalendar()
	from := date(2024, time.March, 4)

	days, err := cal.OpenDays(from, from)
	require.NoError(t, err)
	assert.Empty(t, days)

	days, err = cal.OpenDays(from, from.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestLibraryCalendar_OverdueDays(t *testing.T) {
	cal := weekendClosedCalendar()
	zurich := &LibraryCalendar{LibraryID: "lib-zh", Timezone: "Europe/Zurich"}

	tests := []struct {
		name     string
		cal      *LibraryCalendar
		due      time.Time
		to       time.Time
		expected []time.Time
	}{
		{
			name:     "end of day due date stored with microseconds",
			cal:      cal,
			due:      time.Date(2024, time.March, 4, 23, 59, 59, 999999000, time.UTC),
			to:       time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),
			expected: []time.Time{date(2024, time.March, 5)},
		},
		{
			name: "mid-day due date does not accrue the same day",
			cal:  cal,
			due:  time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
			to:   time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC),
		},
		{
			name:     "mid-day due date accrues from the next day",
			cal:      cal,
			due:      time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
			to:       time.Date(2024, time.March, 6, 8, 0, 0, 0, time.UTC),
			expected: []time.Time{date(2024, time.March, 5), date(2024, time.March, 6)},
		},
		{
			name:     "midnight due date",
			cal:      cal,
			due:      date(2024, time.March, 4),
			to:       time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC),
			expected: []time.Time{date(2024, time.March, 5), date(2024, time.March, 6), date(2024, time.March, 7), date(2024, time.March, 8), date(2024, time.March, 9), date(2024, time.March, 11), date(2024, time.March, 12), date(2024, time.March, 14)},
		},
		{
			name: "due date is taken in the library time zone",
			cal:  zurich,
			// 23:30 UTC on 4 March is already 5 March in Zurich
			due: time.Date(2024, time.March, 4, 23, 30, 0, 0, time.UTC),
			to:  time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "not yet due",
			cal:  cal,
			due:  date(2024, time.March, 4),
			to:   date(2024, time.March, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := tt.cal.OverdueDays(tt.due, tt.to)
			require.NoError(t, err)
			if len(tt.expected) == 0 {
				assert.Empty(t, days)
				return
			}
			assert.Equal(t, tt.expected, days)
		})
	}
}

func TestLibraryCalendar_NeverOpen(t *testing.T) {
	cal := &LibraryCalendar{
		LibraryID: "lib-closed",
		ClosedWeekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
			time.Friday, time.Saturday, time.Sunday,
		},
	}
	assert.False(t, cal.HasOpenDays())

	_, err := cal.OpenDays(date(2024, time.March, 1), date(2024, time.April, 1))
	assert.ErrorIs(t, err, ErrNoOpenDays)

	cal.Exceptions = []CalendarException{{Title: "Open day", StartDate: date(2024, time.March, 16), IsOpen: true}}
	assert.True(t, cal.HasOpenDays())

	days, err := cal.OpenDays(date(2024, time.March, 1), date(2024, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, time.March, 16)}, days)
}
