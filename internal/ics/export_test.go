package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lbarone/chronos/internal/models"
)

func TestExportOneOffEvent(t *testing.T) {
	start := time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)
	out, err := Export([]models.Event{{
		ID:         "ev1",
		Title:      "Planning",
		Start:      start,
		End:        start.Add(time.Hour),
		Location:   "Office",
		Recurrence: models.RecurrenceNone,
	}})
	require.NoError(t, err)

	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.Contains(t, out, "END:VCALENDAR")
	require.Contains(t, out, "SUMMARY:Planning")
	require.Contains(t, out, "LOCATION:Office")
	require.NotContains(t, out, "RRULE")
	require.NotContains(t, out, "EXDATE")
}

func TestExportRecurringEventEmitsRuleAndExceptions(t *testing.T) {
	start := time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC)
	out, err := Export([]models.Event{{
		ID:         "ev1",
		Title:      "Session",
		Start:      start,
		End:        start.Add(50 * time.Minute),
		Recurrence: models.RecurrenceWeekly,
		ExDates:    []time.Time{time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)},
	}})
	require.NoError(t, err)

	require.Contains(t, out, "FREQ=WEEKLY")
	require.Contains(t, out, "EXDATE:20250121")
}

func TestExportRecurrenceFrequencies(t *testing.T) {
	cases := map[models.Recurrence]string{
		models.RecurrenceDaily:   "FREQ=DAILY",
		models.RecurrenceWeekly:  "FREQ=WEEKLY",
		models.RecurrenceMonthly: "FREQ=MONTHLY",
	}
	start := time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC)

	for rec, want := range cases {
		out, err := Export([]models.Event{{
			ID:         "ev1",
			Title:      "Session",
			Start:      start,
			End:        start.Add(time.Hour),
			Recurrence: rec,
		}})
		require.NoError(t, err)
		require.Contains(t, out, want)
	}
}

func TestExportRejectsUnknownRecurrence(t *testing.T) {
	start := time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC)
	_, err := Export([]models.Event{{
		ID:         "ev1",
		Title:      "Session",
		Start:      start,
		End:        start.Add(time.Hour),
		Recurrence: models.Recurrence("yearly"),
	}})
	require.Error(t, err)
}
