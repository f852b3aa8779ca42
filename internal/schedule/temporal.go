package schedule

import (
	"time"

	"github.com/lbarone/chronos/internal/models"
)

// StartOfWeek returns the Sunday at or before t, in local time. The
// time-of-day of t is preserved; callers that need a midnight boundary must
// zero it themselves.
func StartOfWeek(t time.Time) time.Time {
	return AddDays(t, -int(t.Weekday()))
}

// AddDays returns t shifted by n calendar days (n may be negative).
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// IsSameDay reports whether a and b fall on the same calendar date in
// local time.
func IsSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// dateOf strips the time-of-day, keeping the calendar date at local
// midnight.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayCell is one cell of a month grid.
type DayCell struct {
	Date           time.Time      `json:"date"`
	InCurrentMonth bool           `json:"isCurrentMonth"`
	IsToday        bool           `json:"isToday"`
	Events         []models.Event `json:"events"`
}

// MonthGrid builds the 42-cell (six full weeks) grid for the given month,
// padded with trailing days of the previous month and leading days of the
// next one. Each cell is annotated with the event definitions whose stored
// start falls on that date. Recurring definitions therefore show up only on
// their anchor date here; the week expander is the authority for
// occurrences.
func MonthGrid(year int, month time.Month, events []models.Event, now time.Time) []DayCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	leading := int(first.Weekday())

	grid := make([]DayCell, 0, 42)

	appendCell := func(date time.Time, current bool) {
		var cellEvents []models.Event
		for _, e := range events {
			if IsSameDay(e.Start, date) {
				cellEvents = append(cellEvents, e)
			}
		}
		grid = append(grid, DayCell{
			Date:           date,
			InCurrentMonth: current,
			IsToday:        IsSameDay(date, now),
			Events:         cellEvents,
		})
	}

	// Trailing days of the previous month.
	for i := leading; i > 0; i-- {
		appendCell(AddDays(first, -i), false)
	}
	// The month itself.
	for d := 0; d < daysInMonth; d++ {
		appendCell(AddDays(first, d), true)
	}
	// Leading days of the next month, up to exactly 42 cells.
	next := first.AddDate(0, 1, 0)
	for d := 0; len(grid) < 42; d++ {
		appendCell(AddDays(next, d), false)
	}

	return grid
}
