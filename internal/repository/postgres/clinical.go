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

// ---------------------------------------------------------------------------
// Session notes
// ---------------------------------------------------------------------------

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new session note repository.
func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.SessionNote) (*models.SessionNote, error) {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	query := `
		INSERT INTO session_notes (id, patient_id, note_date, content, event_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		note.ID, note.PatientID, note.Date, note.Content, note.EventID,
		note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session note: %w", err)
	}
	return note, nil
}

func (r *noteRepository) GetByPatientID(ctx context.Context, patientID string) ([]models.SessionNote, error) {
	query := `
		SELECT id, patient_id, note_date, content, event_id, created_at, updated_at
		FROM session_notes
		WHERE patient_id = $1
		ORDER BY note_date DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session notes: %w", err)
	}
	defer rows.Close()

	var notes []models.SessionNote
	for rows.Next() {
		var (
			note    models.SessionNote
			eventID sql.NullString
		)
		if err := rows.Scan(&note.ID, &note.PatientID, &note.Date, &note.Content, &eventID, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session note: %w", err)
		}
		if eventID.Valid {
			note.EventID = &eventID.String
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepository) Update(ctx context.Context, note *models.SessionNote) (*models.SessionNote, error) {
	query := `
		UPDATE session_notes
		SET note_date = $2, content = $3, event_id = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at`

	note.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query, note.ID, note.Date, note.Content, note.EventID, note.UpdatedAt).Scan(&note.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session note %s not found", note.ID)
		}
		return nil, fmt.Errorf("failed to update session note: %w", err)
	}
	return note, nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM session_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session note: %w", err)
	}
	return requireOneRow(result, "session note", id)
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	payment.CreatedAt = time.Now()

	query := `
		INSERT INTO payments (id, patient_id, amount, paid_at, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.PatientID, payment.Amount, payment.Date,
		payment.Status, nullable(payment.Description), payment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filters repository.PaymentFilters) ([]models.Payment, error) {
	query := `
		SELECT id, patient_id, amount, paid_at, status, description, created_at
		FROM payments
		WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filters.PatientID != nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argIdx)
		args = append(args, *filters.PatientID)
		argIdx++
	}
	if filters.From != nil {
		query += fmt.Sprintf(" AND paid_at >= $%d", argIdx)
		args = append(args, *filters.From)
		argIdx++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND paid_at <= $%d", argIdx)
		args = append(args, *filters.To)
		argIdx++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filters.Status)
	}

	query += " ORDER BY paid_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var (
			payment models.Payment
			desc    sql.NullString
		)
		if err := rows.Scan(&payment.ID, &payment.PatientID, &payment.Amount, &payment.Date, &payment.Status, &desc, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payment.Description = desc.String
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireOneRow(result, "payment", id)
}
