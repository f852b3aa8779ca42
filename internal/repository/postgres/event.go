package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lbarone/chronos/internal/models"
	"github.com/lbarone/chronos/internal/repository"
)

// exDateFormat is the date-only wire format for exception dates; exceptions
// suppress whole calendar days, never specific times.
const exDateFormat = "2006-01-02"

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func encodeExDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(exDateFormat))
	}
	return out
}

func decodeExDates(raw []string) []time.Time {
	var out []time.Time
	for _, s := range raw {
		d, err := time.ParseInLocation(exDateFormat, s, time.Local)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

const eventColumns = `id, title, description, start_time, end_time, color, location, recurrence, category_label, ex_dates, patient_id, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var (
		event     models.Event
		desc      sql.NullString
		location  sql.NullString
		category  sql.NullString
		patientID sql.NullString
		exDates   []string
	)
	err := row.Scan(
		&event.ID,
		&event.Title,
		&desc,
		&event.Start,
		&event.End,
		&event.Color,
		&location,
		&event.Recurrence,
		&category,
		pq.Array(&exDates),
		&patientID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Description = desc.String
	event.Location = location.String
	event.CategoryLabel = category.String
	if patientID.Valid {
		event.PatientID = &patientID.String
	}
	event.ExDates = decodeExDates(exDates)
	// Timestamps come back in UTC; occurrence arithmetic is local-time.
	event.Start = event.Start.Local()
	event.End = event.End.Local()
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	query := `
		INSERT INTO events (id, title, description, start_time, end_time, color, location, recurrence, category_label, ex_dates, patient_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Title,
		nullable(event.Description),
		event.Start,
		event.End,
		event.Color,
		nullable(event.Location),
		event.Recurrence,
		nullable(event.CategoryLabel),
		pq.Array(encodeExDates(event.ExDates)),
		event.PatientID,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) List(ctx context.Context, filters repository.EventFilters) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	args := []any{}
	argIdx := 1

	// Recurring definitions anchored in the past can still produce visible
	// occurrences, so a From filter only constrains non-recurring events.
	if filters.From != nil {
		query += fmt.Sprintf(" AND (recurrence <> 'none' OR start_time >= $%d)", argIdx)
		args = append(args, *filters.From)
		argIdx++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND start_time <= $%d", argIdx)
		args = append(args, *filters.To)
		argIdx++
	}
	if filters.PatientID != nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argIdx)
		args = append(args, *filters.PatientID)
		argIdx++
	}

	query += " ORDER BY start_time ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		UPDATE events
		SET title = $2, description = $3, start_time = $4, end_time = $5, color = $6, location = $7, recurrence = $8, category_label = $9, ex_dates = $10, patient_id = $11, updated_at = $12
		WHERE id = $1
		RETURNING updated_at`

	event.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		nullable(event.Description),
		event.Start,
		event.End,
		event.Color,
		nullable(event.Location),
		event.Recurrence,
		nullable(event.CategoryLabel),
		pq.Array(encodeExDates(event.ExDates)),
		event.PatientID,
		event.UpdatedAt,
	).Scan(&event.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event %s not found", event.ID)
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) UpdateTimes(ctx context.Context, id string, start, end time.Time) error {
	query := `UPDATE events SET start_time = $2, end_time = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, start, end, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update event times: %w", err)
	}
	return requireOneRow(result, "event", id)
}

func (r *eventRepository) AddExceptionDate(ctx context.Context, id string, date time.Time) error {
	query := `
		UPDATE events
		SET ex_dates = array_append(ex_dates, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(ex_dates))`

	_, err := r.db.ExecContext(ctx, query, id, date.Format(exDateFormat), time.Now())
	if err != nil {
		return fmt.Errorf("failed to add exception date: %w", err)
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireOneRow(result, "event", id)
}

// nullable maps empty strings to NULL so optional text columns stay clean.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// requireOneRow converts a zero-row mutation into a not-found error.
func requireOneRow(result sql.Result, entity, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s with ID %s not found", entity, id)
	}
	return nil
}
