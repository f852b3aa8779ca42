package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbarone/chronos/internal/models"
)

// week starting Sunday 2025-01-12.
var window = time.Date(2025, 1, 12, 0, 0, 0, 0, time.Local)

func makeEvent(id string, start, end time.Time, rec models.Recurrence) models.Event {
	return models.Event{
		ID:         id,
		Title:      "Sessão " + id,
		Start:      start,
		End:        end,
		Color:      models.ColorBlue,
		Recurrence: rec,
	}
}

func TestExpandWindowNonRecurringPassThrough(t *testing.T) {
	start := time.Date(2025, 1, 14, 9, 0, 0, 0, time.Local)
	ev := makeEvent("single", start, start.Add(50*time.Minute), models.RecurrenceNone)

	instances, err := ExpandWindow([]models.Event{ev}, window)
	require.NoError(t, err)
	require.Len(t, instances, 1)

	inst := instances[0]
	assert.Equal(t, "single", inst.Ref.InstanceID())
	assert.True(t, inst.Ref.Canonical)
	assert.True(t, start.Equal(inst.Start))
	assert.True(t, start.Add(50*time.Minute).Equal(inst.End))
}

func TestExpandWindowNonRecurringOutsideWindow(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
	}{
		{"before window", AddDays(window, -1)},
		{"at window end", AddDays(window, 7)},
		{"far future", AddDays(window, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := makeEvent("x", tt.start, tt.start.Add(time.Hour), models.RecurrenceNone)
			instances, err := ExpandWindow([]models.Event{ev}, window)
			require.NoError(t, err)
			assert.Empty(t, instances)
		})
	}
}

func TestExpandWindowDailyProducesSevenInstances(t *testing.T) {
	anchor := time.Date(2025, 1, 2, 14, 30, 0, 0, time.Local)
	ev := makeEvent("daily", anchor, anchor.Add(45*time.Minute), models.RecurrenceDaily)

	instances, err := ExpandWindow([]models.Event{ev}, window)
	require.NoError(t, err)
	require.Len(t, instances, 7)

	for i, inst := range instances {
		assert.True(t, IsSameDay(AddDays(window, i), inst.Start), "instance %d on wrong day", i)
		assert.Equal(t, 14, inst.Start.Hour())
		assert.Equal(t, 30, inst.Start.Minute())
		assert.Equal(t, 45*time.Minute, inst.Duration())
		assert.False(t, inst.Ref.Canonical)
	}
}

func TestExpandWindowWeeklyOnlyOnAnchorWeekday(t *testing.T) {
	// Anchored on a Wednesday.
	anchor := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)
	require.Equal(t, time.Wednesday, anchor.Weekday())
	ev := makeEvent("weekly", anchor, anchor.Add(time.Hour), models.RecurrenceWeekly)

	instances, err := ExpandWindow([]models.Event{ev}, window)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, time.Wednesday, instances[0].Start.Weekday())
	assert.True(t, IsSameDay(time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local), instances[0].Start))
}

func TestExpandWindowExceptionSuppressesOneOccurrence(t *testing.T) {
	anchor := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)
	ev := makeEvent("weekly", anchor, anchor.Add(time.Hour), models.RecurrenceWeekly)
	ev.ExDates = []time.Time{time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)}

	instances, err := ExpandWindow([]models.Event{ev}, window)
	require.NoError(t, err)
	assert.Empty(t, instances)

	// The next week's occurrence is untouched.
	instances, err = ExpandWindow([]models.Event{ev}, AddDays(window, 7))
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.True(t, IsSameDay(time.Date(2025, 1, 22, 0, 0, 0, 0, time.Local), instances[0].Start))
}

func TestExpandWindowCanonicalIdentity(t *testing.T) {
	// Anchor inside the window: that occurrence must carry the original id.
	anchor := time.Date(2025, 1, 13, 8, 0, 0, 0, time.Local) // Monday in window
	ev := makeEvent("series", anchor, anchor.Add(time.Hour), models.RecurrenceDaily)

	instances, err := ExpandWindow([]models.Event{ev}, window)
	require.NoError(t, err)
	require.Len(t, instances, 6) // Monday through Saturday

	var canonical, synthetic int
	for _, inst := range instances {
		if inst.Ref.Canonical {
			canonical++
			assert.Equal(t, "series", inst.Ref.InstanceID())
		} else {
			synthetic++
			want := fmt.Sprintf("series_instance_%d", inst.Start.UnixMilli())
			assert.Equal(t, want, inst.Ref.InstanceID())
			assert.NotEqual(t, "series", inst.Ref.InstanceID())
		}
	}
	assert.Equal(t, 1, canonical)
	assert.Equal(t, 5, synthetic)
}

func TestExpandWindowRecurrenceNeverBeforeAnchor(t *testing.T) {
	anchor := time.Date(2025, 1, 16, 9, 0, 0, 0, time.Local) // Thursday in window
	ev := makeEvent("future", anchor, anchor.Add(time.Hour), models.RecurrenceDaily)

	instances, err := ExpandWindow([]models.Event{ev}, window)
	require.NoError(t, err)
	require.Len(t, instances, 3) // Thursday through Saturday

	for _, inst := range instances {
		assert.False(t, dateOf(inst.Start).Before(dateOf(anchor)))
	}
}

func TestExpandWindowMonthlyByDayNumber(t *testing.T) {
	anchor := time.Date(2024, 12, 15, 16, 0, 0, 0, time.Local)
	ev := makeEvent("monthly", anchor, anchor.Add(time.Hour), models.RecurrenceMonthly)

	instances, err := ExpandWindow([]models.Event{ev}, window)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, 15, instances[0].Start.Day())
	assert.Equal(t, 16, instances[0].Start.Hour())
}

func TestExpandWindowMonthlyDay31SkipsShortMonths(t *testing.T) {
	anchor := time.Date(2025, 1, 31, 11, 0, 0, 0, time.Local)
	ev := makeEvent("day31", anchor, anchor.Add(time.Hour), models.RecurrenceMonthly)

	// Window covering end of February 2025: no 31st, no occurrence, no
	// clamping to the 28th.
	febWindow := time.Date(2025, 2, 23, 0, 0, 0, 0, time.Local)
	instances, err := ExpandWindow([]models.Event{ev}, febWindow)
	require.NoError(t, err)
	assert.Empty(t, instances)

	// March has a 31st again.
	marWindow := time.Date(2025, 3, 30, 0, 0, 0, 0, time.Local)
	instances, err = ExpandWindow([]models.Event{ev}, marWindow)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, 31, instances[0].Start.Day())
}

func TestExpandWindowSkipsMalformedDefinitions(t *testing.T) {
	good := makeEvent("good", window.Add(9*time.Hour), window.Add(10*time.Hour), models.RecurrenceNone)
	inverted := makeEvent("inverted", window.Add(10*time.Hour), window.Add(9*time.Hour), models.RecurrenceNone)
	zero := models.Event{ID: "zero", Title: "broken"}
	badRule := makeEvent("badrule", window.Add(9*time.Hour), window.Add(10*time.Hour), "fortnightly")

	instances, err := ExpandWindow([]models.Event{inverted, good, zero, badRule}, window)

	// The bad records are reported but never blank the calendar.
	require.Error(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "good", instances[0].ID)
	assert.Contains(t, err.Error(), "inverted")
	assert.Contains(t, err.Error(), "zero")
	assert.Contains(t, err.Error(), "badrule")
}

func TestFilterDay(t *testing.T) {
	anchor := time.Date(2025, 1, 2, 14, 0, 0, 0, time.Local)
	ev := makeEvent("daily", anchor, anchor.Add(time.Hour), models.RecurrenceDaily)

	instances, err := ExpandWindow([]models.Event{ev}, window)
	require.NoError(t, err)

	day := AddDays(window, 3)
	filtered := FilterDay(instances, day)
	require.Len(t, filtered, 1)
	assert.True(t, IsSameDay(day, filtered[0].Start))
}
