package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lbarone/chronos/internal/config"
	"github.com/lbarone/chronos/internal/models"
	"github.com/lbarone/chronos/internal/repository"
	"github.com/lbarone/chronos/internal/schedule"
)

// Service is the central business logic layer that holds all repositories
// and provides high-level methods for the application.
type Service struct {
	db     *sql.DB
	logger *logrus.Logger
	view   *config.ViewConfig

	Events    repository.EventRepository
	Patients  repository.PatientRepository
	Notes     repository.NoteRepository
	Anamnesis repository.AnamnesisRepository
	Payments  repository.PaymentRepository
	Finance   repository.FinanceRepository
	Health    repository.HealthRepository
	Settings  repository.SettingsRepository
}

// New creates a new Service with all required dependencies.
func New(db *sql.DB, logger *logrus.Logger, view *config.ViewConfig,
	events repository.EventRepository,
	patients repository.PatientRepository,
	notes repository.NoteRepository,
	anamnesis repository.AnamnesisRepository,
	payments repository.PaymentRepository,
	finance repository.FinanceRepository,
	health repository.HealthRepository,
	settings repository.SettingsRepository,
) *Service {
	if view == nil {
		view = config.DefaultViewConfig()
	}
	return &Service{
		db: db, logger: logger, view: view,
		Events: events, Patients: patients, Notes: notes, Anamnesis: anamnesis,
		Payments: payments, Finance: finance, Health: health, Settings: settings,
	}
}

// ViewConfig exposes the calendar display preferences.
func (s *Service) ViewConfig() *config.ViewConfig {
	return s.view
}

// CreateEvent validates and stores a new event definition, deriving the end
// time from the default session duration when absent.
func (s *Service) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	event.Normalize()
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	created, err := s.Events.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Created event %s (%q, recurrence=%s)", created.ID, created.Title, created.Recurrence)
	return created, nil
}

// UpdateEvent validates and stores changes to an existing definition.
func (s *Service) UpdateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	event.Normalize()
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return s.Events.Update(ctx, event)
}

// MoveOccurrence commits a drag/resize result. The edit addresses the
// definition through the occurrence reference: the canonical occurrence is
// the definition itself; a synthetic occurrence still rewrites the series
// anchor (the occurrence-vs-series ambiguity is resolved in favor of the
// series), which is logged so callers can warn.
func (s *Service) MoveOccurrence(ctx context.Context, ref schedule.OccurrenceRef, newStart, newEnd time.Time) error {
	if !newEnd.After(newStart) {
		return fmt.Errorf("invalid time range: end must be after start")
	}

	event, err := s.Events.GetByID(ctx, ref.EventID)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("event %s not found", ref.EventID)
	}

	if !ref.Canonical {
		s.logger.Warnf("Moving synthetic occurrence %s rewrites the series anchor of event %s", ref.InstanceID(), ref.EventID)
	}

	if err := s.Events.UpdateTimes(ctx, ref.EventID, newStart, newEnd); err != nil {
		return err
	}
	s.logger.Infof("Moved event %s to %s - %s", ref.EventID,
		newStart.Format(time.RFC3339), newEnd.Format(time.RFC3339))
	return nil
}

// CancelOccurrence suppresses one date of a recurring event by adding it to
// the exception list. Non-recurring events are deleted outright.
func (s *Service) CancelOccurrence(ctx context.Context, eventID string, date time.Time) error {
	event, err := s.Events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("event %s not found", eventID)
	}

	if event.Recurrence == models.RecurrenceNone {
		return s.Events.Delete(ctx, eventID)
	}
	return s.Events.AddExceptionDate(ctx, eventID, date)
}

// DaySchedule is the laid-out schedule of one calendar day.
type DaySchedule struct {
	Date       time.Time            `json:"date"`
	Placements []schedule.Placement `json:"placements"`
}

// WeekSchedule is the fully expanded and laid-out 7-day window starting at
// WindowStart's week.
type WeekSchedule struct {
	WindowStart time.Time     `json:"windowStart"`
	PxPerMinute float64       `json:"pxPerMinute"`
	Days        []DaySchedule `json:"days"`
}

// WeekScheduleAt loads all definitions, expands them into the 7-day window
// anchored at the Sunday of the given date, and lays out each day. A zero
// pxPerMinute falls back to the configured view scale.
func (s *Service) WeekScheduleAt(ctx context.Context, date time.Time, pxPerMinute float64) (*WeekSchedule, error) {
	if pxPerMinute <= 0 {
		pxPerMinute = s.view.PxPerMinute
	}
	windowStart := dayStart(schedule.StartOfWeek(date))

	events, err := s.Events.List(ctx, repository.EventFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	instances, expandErr := schedule.ExpandWindow(events, windowStart)
	if expandErr != nil {
		// Bad records are skipped, never fatal.
		s.logger.Warnf("Some events were skipped during expansion: %v", expandErr)
	}

	week := &WeekSchedule{WindowStart: windowStart, PxPerMinute: pxPerMinute}
	for i := 0; i < schedule.WindowDays; i++ {
		day := schedule.AddDays(windowStart, i)
		dayInstances := schedule.FilterDay(instances, day)
		week.Days = append(week.Days, DaySchedule{
			Date:       day,
			Placements: schedule.LayoutDay(dayInstances, pxPerMinute),
		})
	}
	return week, nil
}

// MonthGridAt loads all definitions and builds the 42-cell month grid.
func (s *Service) MonthGridAt(ctx context.Context, year int, month time.Month) ([]schedule.DayCell, error) {
	events, err := s.Events.List(ctx, repository.EventFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return schedule.MonthGrid(year, month, events, time.Now()), nil
}

// dayStart zeroes the time-of-day in local time.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
