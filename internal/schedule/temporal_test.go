package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbarone/chronos/internal/models"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "wednesday rolls back to sunday",
			in:   time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local), // Wed
			want: time.Date(2025, 1, 12, 10, 30, 0, 0, time.Local), // Sun
		},
		{
			name: "sunday is a fixed point",
			in:   time.Date(2025, 1, 12, 8, 0, 0, 0, time.Local),
			want: time.Date(2025, 1, 12, 8, 0, 0, 0, time.Local),
		},
		{
			name: "saturday rolls back six days",
			in:   time.Date(2025, 1, 18, 23, 59, 0, 0, time.Local),
			want: time.Date(2025, 1, 12, 23, 59, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StartOfWeek(tt.in)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			// Time-of-day is preserved, not zeroed.
			assert.Equal(t, tt.in.Hour(), got.Hour())
			assert.Equal(t, tt.in.Minute(), got.Minute())
		})
	}
}

func TestAddDaysDoesNotMutate(t *testing.T) {
	in := time.Date(2025, 1, 31, 9, 0, 0, 0, time.Local)
	got := AddDays(in, 1)
	assert.Equal(t, time.Date(2025, 2, 1, 9, 0, 0, 0, time.Local), got)
	assert.Equal(t, 31, in.Day())

	back := AddDays(in, -31)
	assert.Equal(t, time.Date(2024, 12, 31, 9, 0, 0, 0, time.Local), back)
}

func TestIsSameDay(t *testing.T) {
	a := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	b := time.Date(2025, 3, 10, 23, 59, 59, 0, time.Local)
	c := time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local)

	assert.True(t, IsSameDay(a, b))
	assert.False(t, IsSameDay(a, c))
}

func TestMonthGridAlwaysHas42Cells(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
	}{
		{"february non-leap", 2025, time.February},
		{"february leap", 2024, time.February},
		{"month starting on sunday", 2025, time.June},
		{"month starting on saturday", 2025, time.March},
		{"31-day month", 2025, time.January},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := MonthGrid(tt.year, tt.month, nil, time.Now())
			require.Len(t, grid, 42)

			// Cells are consecutive calendar days.
			for i := 1; i < len(grid); i++ {
				assert.True(t, IsSameDay(AddDays(grid[i-1].Date, 1), grid[i].Date))
			}
		})
	}
}

func TestMonthGridFlagsAndEvents(t *testing.T) {
	now := time.Date(2025, 1, 15, 14, 0, 0, 0, time.Local)
	ev := models.Event{
		ID:    "ev-1",
		Title: "Sessão",
		Start: time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local),
		End:   time.Date(2025, 1, 15, 10, 0, 0, 0, time.Local),
	}
	weekly := models.Event{
		ID:         "ev-2",
		Title:      "Supervisão",
		Start:      time.Date(2025, 1, 2, 9, 0, 0, 0, time.Local),
		End:        time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local),
		Recurrence: models.RecurrenceWeekly,
	}

	grid := MonthGrid(2025, time.January, []models.Event{ev, weekly}, now)

	var todayCount, withEvents int
	for _, cell := range grid {
		if cell.IsToday {
			todayCount++
			require.Len(t, cell.Events, 1)
			assert.Equal(t, "ev-1", cell.Events[0].ID)
		}
		if len(cell.Events) > 0 {
			withEvents++
		}
		if cell.InCurrentMonth {
			assert.Equal(t, time.January, cell.Date.Month())
		}
	}

	assert.Equal(t, 1, todayCount)
	// The grid annotates definitions on their stored start only; the weekly
	// series shows up once, on its anchor date.
	assert.Equal(t, 2, withEvents)
}
