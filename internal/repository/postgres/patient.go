package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lbarone/chronos/internal/models"
	"github.com/lbarone/chronos/internal/repository"
)

type patientRepository struct {
	db *sql.DB
}

// NewPatientRepository creates a new patient repository.
func NewPatientRepository(db *sql.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

const patientColumns = `id, name, email, phone, status, notes, consultation_value, created_at, updated_at`

func scanPatient(row interface{ Scan(...any) error }) (*models.Patient, error) {
	var (
		p     models.Patient
		email sql.NullString
		phone sql.NullString
		notes sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &email, &phone, &p.Status, &notes, &p.ConsultationValue, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Email = email.String
	p.Phone = phone.String
	p.Notes = notes.String
	return &p, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	if patient.Status == "" {
		patient.Status = models.PatientActive
	}
	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	query := `
		INSERT INTO patients (id, name, email, phone, status, notes, consultation_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		patient.ID, patient.Name, nullable(patient.Email), nullable(patient.Phone),
		patient.Status, nullable(patient.Notes), patient.ConsultationValue,
		patient.CreatedAt, patient.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (r *patientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (r *patientRepository) List(ctx context.Context, filters repository.PatientFilters) ([]models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filters.Status)
		argIdx++
	}
	if filters.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argIdx)
		args = append(args, "%"+filters.Search+"%")
	}

	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *patient)
	}
	return patients, rows.Err()
}

func (r *patientRepository) Update(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	query := `
		UPDATE patients
		SET name = $2, email = $3, phone = $4, status = $5, notes = $6, consultation_value = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at`

	patient.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		patient.ID, patient.Name, nullable(patient.Email), nullable(patient.Phone),
		patient.Status, nullable(patient.Notes), patient.ConsultationValue, patient.UpdatedAt,
	).Scan(&patient.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patient %s not found", patient.ID)
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

func (r *patientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return requireOneRow(result, "patient", id)
}

// ---------------------------------------------------------------------------
// Anamnesis
// ---------------------------------------------------------------------------

type anamnesisRepository struct {
	db *sql.DB
}

// NewAnamnesisRepository creates a new anamnesis repository.
func NewAnamnesisRepository(db *sql.DB) repository.AnamnesisRepository {
	return &anamnesisRepository{db: db}
}

func (r *anamnesisRepository) Save(ctx context.Context, record *models.AnamnesisRecord) (*models.AnamnesisRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.UpdatedAt = time.Now()

	data, err := json.Marshal(record.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode anamnesis data: %w", err)
	}

	query := `
		INSERT INTO anamnesis_records (id, patient_id, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (patient_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, record.ID, record.PatientID, data, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to save anamnesis record: %w", err)
	}
	return record, nil
}

func (r *anamnesisRepository) GetByPatientID(ctx context.Context, patientID string) (*models.AnamnesisRecord, error) {
	query := `SELECT id, patient_id, data, updated_at FROM anamnesis_records WHERE patient_id = $1`

	var (
		record models.AnamnesisRecord
		raw    []byte
	)
	err := r.db.QueryRowContext(ctx, query, patientID).Scan(&record.ID, &record.PatientID, &raw, &record.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get anamnesis record: %w", err)
	}
	if err := json.Unmarshal(raw, &record.Data); err != nil {
		return nil, fmt.Errorf("failed to decode anamnesis data: %w", err)
	}
	return &record, nil
}
