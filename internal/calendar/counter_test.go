package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	"github.com/segyhp/circulation-engine/internal/mocks"
	customError "github.com/segyhp/circulation-engine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// end of Monday 4 March as read back from a TIMESTAMPTZ column
var dueDate = time.Date(2024, time.March, 4, 23, 59, 59, 999999000, time.UTC)

func sundayClosed() *domain.LibraryCalendar {
	return &domain.LibraryCalendar{
		LibraryID:      "lib-1",
		ClosedWeekdays: []time.Weekday{time.Sunday},
	}
}

func TestCountOverdueOpenDays(t *testing.T) {
	tests := []struct {
		name          string
		due           time.Time
		to            time.Time
		setupMocks    func(*mocks.MockLibraryRepository)
		expected      int
		expectedError error
	}{
		{
			name:       "not yet overdue",
			to:         dueDate,
			setupMocks: func(repo *mocks.MockLibraryRepository) {},
			expected:   0,
		},
		{
			name: "first overdue day",
			to:   time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),
			setupMocks: func(repo *mocks.MockLibraryRepository) {
				repo.On("GetCalendar", mock.Anything, "lib-1").Return(sundayClosed(), nil)
			},
			expected: 1,
		},
		{
			name: "mid-day due date, same afternoon",
			due:  time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
			to:   time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC),
			setupMocks: func(repo *mocks.MockLibraryRepository) {
				repo.On("GetCalendar", mock.Anything, "lib-1").Return(sundayClosed(), nil)
			},
			expected: 0,
		},
		{
			name: "mid-day due date, next morning",
			due:  time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
			to:   time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC),
			setupMocks: func(repo *mocks.MockLibraryRepository) {
				repo.On("GetCalendar", mock.Anything, "lib-1").Return(sundayClosed(), nil)
			},
			expected: 1,
		},
		{
			name: "sundays are not counted",
			to:   time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC),
			setupMocks: func(repo *mocks.MockLibraryRepository) {
				repo.On("GetCalendar", mock.Anything, "lib-1").Return(sundayClosed(), nil)
			},
			expected: 9,
		},
		{
			name: "library never open",
			to:   time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC),
			setupMocks: func(repo *mocks.MockLibraryRepository) {
				cal := sundayClosed()
				cal.ClosedWeekdays = []time.Weekday{0, 1, 2, 3, 4, 5, 6}
				repo.On("GetCalendar", mock.Anything, "lib-1").Return(cal, nil)
			},
			expected: 0,
		},
		{
			name: "no calendar defined",
			to:   time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC),
			setupMocks: func(repo *mocks.MockLibraryRepository) {
				repo.On("GetCalendar", mock.Anything, "lib-1").Return(nil, domain.ErrCalendarNotFound)
			},
			expected: 0,
		},
		{
			name: "calendar store unavailable",
			to:   time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC),
			setupMocks: func(repo *mocks.MockLibraryRepository) {
				repo.On("GetCalendar", mock.Anything, "lib-1").Return(nil, errors.New("connection refused"))
			},
			expectedError: customError.ErrCollaboratorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockLibraryRepository{}
			tt.setupMocks(repo)
			cal := NewCalendar(repo)
			due := tt.due
			if due.IsZero() {
				due = dueDate
			}

			count, err := CountOverdueOpenDays(context.Background(), cal, "lib-1", due, tt.to)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.True(t, customError.IsCode(err, customError.ErrCodeCollaboratorUnavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, count)

			days, err := OverdueOpenDays(context.Background(), cal, "lib-1", due, tt.to)
			require.NoError(t, err)
			assert.Len(t, days, tt.expected)

			repo.AssertExpectations(t)
		})
	}
}

func TestCountOverdueOpenDays_CalendarError(t *testing.T) {
	cal := &mocks.MockCalendar{}
	to := dueDate.Add(48 * time.Hour)
	cal.On("OverdueDays", mock.Anything, "lib-1", dueDate, to).Return(nil, domain.ErrNoOpenDays).Once()
	cal.On("OverdueDays", mock.Anything, "lib-1", dueDate, to).Return(nil, errors.New("timeout")).Once()

	count, err := CountOverdueOpenDays(context.Background(), cal, "lib-1", dueDate, to)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = CountOverdueOpenDays(context.Background(), cal, "lib-1", dueDate, to)
	assert.ErrorIs(t, err, customError.ErrCollaboratorUnavailable)
	cal.AssertExpectations(t)
}

func TestStoreCalendar_CountOpenDays(t *testing.T) {
	repo := &mocks.MockLibraryRepository{}
	repo.On("GetCalendar", mock.Anything, "lib-1").Return(sundayClosed(), nil)
	cal := NewCalendar(repo)

	// Monday 4 to Monday 11 March, both included, less Sunday 10
	count, err := cal.CountOpenDays(context.Background(), "lib-1",
		time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestStoreCalendar_IsOpen(t *testing.T) {
	repo := &mocks.MockLibraryRepository{}
	repo.On("GetCalendar", mock.Anything, "lib-1").Return(sundayClosed(), nil)
	cal := NewCalendar(repo)

	open, err := cal.IsOpen(context.Background(), "lib-1", time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, open)

	open, err = cal.IsOpen(context.Background(), "lib-1", time.Date(2024, time.March, 11, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, open)
}
