package models

import (
	"fmt"
	"time"
)

// Recurrence describes how often an event repeats.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Valid reports whether r is one of the supported recurrence rules.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Color is the fixed display palette for events. It carries no meaning
// beyond visual grouping.
type Color string

const (
	ColorBlue     Color = "blue"
	ColorGreen    Color = "green"
	ColorRed      Color = "red"
	ColorYellow   Color = "yellow"
	ColorPurple   Color = "purple"
	ColorGray     Color = "gray"
	ColorPink     Color = "pink"
	ColorIndigo   Color = "indigo"
	ColorCyan     Color = "cyan"
	ColorOrange   Color = "orange"
	ColorTeal     Color = "teal"
	ColorLime     Color = "lime"
	ColorLavender Color = "lavender"
	ColorMint     Color = "mint"
	ColorPeach    Color = "peach"
	ColorSky      Color = "sky"
	ColorBlush    Color = "blush"
	ColorCanary   Color = "canary"
)

// Palette lists every valid event color.
var Palette = []Color{
	ColorBlue, ColorGreen, ColorRed, ColorYellow, ColorPurple, ColorGray,
	ColorPink, ColorIndigo, ColorCyan, ColorOrange, ColorTeal, ColorLime,
	ColorLavender, ColorMint, ColorPeach, ColorSky, ColorBlush, ColorCanary,
}

// Valid reports whether c belongs to the palette.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// DefaultSessionDuration is applied when an event is saved without an
// explicit end time (standard therapy session length).
const DefaultSessionDuration = 50 * time.Minute

// Event is the stored, authoritative definition of a schedulable activity,
// possibly recurring. Concrete per-day occurrences are derived from it by
// the schedule package and are never persisted.
type Event struct {
	ID            string      `json:"id" db:"id"`
	Title         string      `json:"title" db:"title"`
	Start         time.Time   `json:"start" db:"start_time"`
	End           time.Time   `json:"end" db:"end_time"`
	Description   string      `json:"description,omitempty" db:"description"`
	Color         Color       `json:"color" db:"color"`
	Location      string      `json:"location,omitempty" db:"location"`
	Recurrence    Recurrence  `json:"recurrence" db:"recurrence"`
	CategoryLabel string      `json:"categoryLabel,omitempty" db:"category_label"`
	ExDates       []time.Time `json:"exDates,omitempty" db:"ex_dates"`
	PatientID     *string     `json:"patientId,omitempty" db:"patient_id"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// IsSession reports whether the event is a clinical session, i.e. it is
// linked to a patient and participates in billing forecasts.
func (e *Event) IsSession() bool {
	return e.PatientID != nil && *e.PatientID != ""
}

// Duration returns the event length.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Normalize fills derivable fields: a zero end time becomes start plus the
// default session duration, an empty recurrence becomes "none", and an
// empty color becomes blue.
func (e *Event) Normalize() {
	if e.End.IsZero() && !e.Start.IsZero() {
		e.End = e.Start.Add(DefaultSessionDuration)
	}
	if e.Recurrence == "" {
		e.Recurrence = RecurrenceNone
	}
	if e.Color == "" {
		e.Color = ColorBlue
	}
}

// Validate checks the invariants required at save time.
func (e *Event) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if e.Start.IsZero() {
		return fmt.Errorf("event start is required")
	}
	if !e.End.After(e.Start) {
		return fmt.Errorf("event end must be after start")
	}
	if !e.Recurrence.Valid() {
		return fmt.Errorf("invalid recurrence %q", e.Recurrence)
	}
	if !e.Color.Valid() {
		return fmt.Errorf("invalid color %q", e.Color)
	}
	return nil
}
