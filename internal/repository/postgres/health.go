package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lbarone/chronos/internal/models"
	"github.com/lbarone/chronos/internal/repository"
)

type healthRepository struct {
	db *sql.DB
}

// NewHealthRepository creates a new health record repository.
func NewHealthRepository(db *sql.DB) repository.HealthRepository {
	return &healthRepository{db: db}
}

func (r *healthRepository) Create(ctx context.Context, record *models.HealthRecord) (*models.HealthRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now()

	query := `
		INSERT INTO health_records (id, metric, value, recorded_at, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.Type, record.Value, record.Date, nullable(record.Note), record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health record: %w", err)
	}
	return record, nil
}

func (r *healthRepository) List(ctx context.Context, filters repository.HealthFilters) ([]models.HealthRecord, error) {
	query := `
		SELECT id, metric, value, recorded_at, note, created_at
		FROM health_records
		WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filters.Metric != nil {
		query += fmt.Sprintf(" AND metric = $%d", argIdx)
		args = append(args, *filters.Metric)
		argIdx++
	}
	if filters.From != nil {
		query += fmt.Sprintf(" AND recorded_at >= $%d", argIdx)
		args = append(args, *filters.From)
		argIdx++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND recorded_at <= $%d", argIdx)
		args = append(args, *filters.To)
	}

	query += " ORDER BY recorded_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query health records: %w", err)
	}
	defer rows.Close()

	var records []models.HealthRecord
	for rows.Next() {
		var (
			record models.HealthRecord
			note   sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.Type, &record.Value, &record.Date, &note, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan health record: %w", err)
		}
		record.Note = note.String
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *healthRepository) Update(ctx context.Context, record *models.HealthRecord) (*models.HealthRecord, error) {
	query := `
		UPDATE health_records
		SET metric = $2, value = $3, recorded_at = $4, note = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, record.ID, record.Type, record.Value, record.Date, nullable(record.Note))
	if err != nil {
		return nil, fmt.Errorf("failed to update health record: %w", err)
	}
	if err := requireOneRow(result, "health record", record.ID); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *healthRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM health_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete health record: %w", err)
	}
	return requireOneRow(result, "health record", id)
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository. Settings are a
// single row keyed by a fixed id.
func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.UserSettings, error) {
	query := `SELECT theme, weight_goal, updated_at FROM user_settings WHERE id = 1`

	var (
		settings models.UserSettings
		goal     sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&settings.Theme, &goal, &settings.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.UserSettings{Theme: "light"}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if goal.Valid {
		settings.WeightGoal = &goal.Float64
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.UserSettings) error {
	settings.UpdatedAt = time.Now()

	query := `
		INSERT INTO user_settings (id, theme, weight_goal, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET theme = EXCLUDED.theme, weight_goal = EXCLUDED.weight_goal, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, settings.Theme, settings.WeightGoal, settings.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
