// Package ics renders stored event definitions as an iCalendar feed so the
// schedule can be subscribed to from external calendar clients.
package ics

import (
	"fmt"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/lbarone/chronos/internal/models"
)

const prodID = "-//chronos//calendar export//EN"

// Export builds an ICS calendar from the given definitions. Recurring
// definitions are emitted with an RRULE and their exception dates as
// EXDATE properties; expansion is left to the consuming client.
func Export(events []models.Event) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetSummary(e.Title)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}

		if e.Recurrence != models.RecurrenceNone && e.Recurrence != "" {
			rule, err := recurrenceRule(e.Recurrence)
			if err != nil {
				return "", fmt.Errorf("event %s: %w", e.ID, err)
			}
			ve.AddRrule(rule)
			for _, ex := range e.ExDates {
				// Date-granularity exceptions suppress the whole day.
				ve.AddExdate(ex.Format("20060102"))
			}
		}
	}

	return cal.Serialize(), nil
}

// recurrenceRule maps the closed recurrence enum onto an RRULE string.
func recurrenceRule(rec models.Recurrence) (string, error) {
	var freq rrule.Frequency
	switch rec {
	case models.RecurrenceDaily:
		freq = rrule.DAILY
	case models.RecurrenceWeekly:
		freq = rrule.WEEKLY
	case models.RecurrenceMonthly:
		freq = rrule.MONTHLY
	default:
		return "", fmt.Errorf("unsupported recurrence %q", rec)
	}
	return (&rrule.ROption{Freq: freq}).RRuleString(), nil
}
