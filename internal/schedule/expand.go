package schedule

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lbarone/chronos/internal/models"
)

// WindowDays is the span of one expansion window.
const WindowDays = 7

// OccurrenceRef identifies one concrete occurrence of an event definition.
// The canonical occurrence is the one falling on the definition's own anchor
// date; edits addressed to it update the definition itself. Keeping the
// reference as a tagged value avoids round-tripping identity through
// composite id strings.
type OccurrenceRef struct {
	EventID   string    `json:"eventId"`
	Start     time.Time `json:"start"`
	Canonical bool      `json:"canonical"`
}

// InstanceID returns the wire identifier of the occurrence: the definition's
// own id for the canonical occurrence, otherwise a deterministic composite
// of the definition id and the occurrence start.
func (r OccurrenceRef) InstanceID() string {
	if r.Canonical {
		return r.EventID
	}
	return fmt.Sprintf("%s_instance_%d", r.EventID, r.Start.UnixMilli())
}

// Instance is a concrete, non-persisted projection of an event definition
// onto one calendar date. It carries all fields of its source definition
// with Start/End rewritten to the concrete date, and is recreated on every
// expansion pass.
type Instance struct {
	Ref OccurrenceRef `json:"ref"`
	models.Event
}

// ExpandWindow expands the given definitions into the concrete occurrences
// visible in the 7-day window [windowStart, windowStart+7d).
//
// Non-recurring definitions pass through verbatim when their start lies in
// the window. Recurring definitions are matched against each of the seven
// calendar dates: never before their anchor date, never on an exception
// date, daily on every date, weekly on the anchor's weekday, monthly on the
// anchor's day-of-month (a month without that day simply produces nothing).
//
// Definitions that fail basic shape checks are skipped rather than failing
// the whole expansion; the returned error aggregates the skips and is
// advisory only: the instance slice is always usable.
func ExpandWindow(events []models.Event, windowStart time.Time) ([]Instance, error) {
	windowEnd := AddDays(windowStart, WindowDays)

	var (
		out  []Instance
		merr *multierror.Error
	)

	for _, ev := range events {
		if err := expandable(ev); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("event %s skipped: %w", ev.ID, err))
			continue
		}

		if ev.Recurrence == models.RecurrenceNone || ev.Recurrence == "" {
			if !ev.Start.Before(windowStart) && ev.Start.Before(windowEnd) {
				out = append(out, Instance{
					Ref:   OccurrenceRef{EventID: ev.ID, Start: ev.Start, Canonical: true},
					Event: ev,
				})
			}
			continue
		}

		out = append(out, expandRecurring(ev, windowStart)...)
	}

	return out, merr.ErrorOrNil()
}

// expandable rejects definitions whose shape would corrupt expansion or
// layout. A single bad record must not blank the whole calendar.
func expandable(ev models.Event) error {
	if ev.Start.IsZero() || ev.End.IsZero() {
		return fmt.Errorf("missing start or end")
	}
	if !ev.End.After(ev.Start) {
		return fmt.Errorf("end not after start")
	}
	if ev.Recurrence != "" && !ev.Recurrence.Valid() {
		return fmt.Errorf("unknown recurrence %q", ev.Recurrence)
	}
	return nil
}

func expandRecurring(ev models.Event, windowStart time.Time) []Instance {
	anchorDate := dateOf(ev.Start)
	duration := ev.End.Sub(ev.Start)

	var out []Instance
	for i := 0; i < WindowDays; i++ {
		day := AddDays(windowStart, i)
		dayDate := dateOf(day)

		// Recurrence never occurs before its anchor.
		if dayDate.Before(anchorDate) {
			continue
		}
		if isExceptionDate(ev.ExDates, day) {
			continue
		}

		occurs := false
		switch ev.Recurrence {
		case models.RecurrenceDaily:
			occurs = true
		case models.RecurrenceWeekly:
			occurs = day.Weekday() == ev.Start.Weekday()
		case models.RecurrenceMonthly:
			occurs = day.Day() == ev.Start.Day()
		}
		if !occurs {
			continue
		}

		// The occurrence keeps the anchor's time-of-day and duration;
		// only the calendar date varies.
		start := time.Date(day.Year(), day.Month(), day.Day(),
			ev.Start.Hour(), ev.Start.Minute(), 0, 0, day.Location())

		inst := Instance{
			Ref: OccurrenceRef{
				EventID:   ev.ID,
				Start:     start,
				Canonical: IsSameDay(start, ev.Start),
			},
			Event: ev,
		}
		inst.Event.Start = start
		inst.Event.End = start.Add(duration)
		out = append(out, inst)
	}
	return out
}

func isExceptionDate(exDates []time.Time, day time.Time) bool {
	for _, ex := range exDates {
		if IsSameDay(ex, day) {
			return true
		}
	}
	return false
}

// FilterDay returns the instances of one calendar day, ready for LayoutDay.
func FilterDay(instances []Instance, day time.Time) []Instance {
	var out []Instance
	for _, inst := range instances {
		if IsSameDay(inst.Start, day) {
			out = append(out, inst)
		}
	}
	return out
}
