package repository

import (
	"context"
	"time"

	"github.com/lbarone/chronos/internal/models"
)

// EventRepository defines the interface for calendar event definitions.
// Only definitions are stored; expanded occurrences are derived in memory
// and never persisted.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filters EventFilters) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	// UpdateTimes rewrites only the stored start/end, used by drag commits.
	UpdateTimes(ctx context.Context, id string, start, end time.Time) error
	// AddExceptionDate suppresses one occurrence date of a recurring event.
	AddExceptionDate(ctx context.Context, id string, date time.Time) error
	Delete(ctx context.Context, id string) error
}

// PatientRepository defines the interface for the patient directory.
type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	List(ctx context.Context, filters PatientFilters) ([]models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	Delete(ctx context.Context, id string) error
}

// NoteRepository defines the interface for session notes.
type NoteRepository interface {
	Create(ctx context.Context, note *models.SessionNote) (*models.SessionNote, error)
	GetByPatientID(ctx context.Context, patientID string) ([]models.SessionNote, error)
	Update(ctx context.Context, note *models.SessionNote) (*models.SessionNote, error)
	Delete(ctx context.Context, id string) error
}

// AnamnesisRepository defines the interface for patient intake forms. Each
// patient has at most one record; Save inserts or replaces it.
type AnamnesisRepository interface {
	Save(ctx context.Context, record *models.AnamnesisRecord) (*models.AnamnesisRecord, error)
	GetByPatientID(ctx context.Context, patientID string) (*models.AnamnesisRecord, error)
}

// PaymentRepository defines the interface for patient payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	List(ctx context.Context, filters PaymentFilters) ([]models.Payment, error)
	Delete(ctx context.Context, id string) error
}

// FinanceRepository defines the interface for manual ledger transactions.
type FinanceRepository interface {
	Create(ctx context.Context, tx *models.FinanceTransaction) (*models.FinanceTransaction, error)
	List(ctx context.Context, filters FinanceFilters) ([]models.FinanceTransaction, error)
	Delete(ctx context.Context, id string) error
}

// HealthRepository defines the interface for personal health records.
type HealthRepository interface {
	Create(ctx context.Context, record *models.HealthRecord) (*models.HealthRecord, error)
	List(ctx context.Context, filters HealthFilters) ([]models.HealthRecord, error)
	Update(ctx context.Context, record *models.HealthRecord) (*models.HealthRecord, error)
	Delete(ctx context.Context, id string) error
}

// SettingsRepository defines the interface for user preferences.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.UserSettings, error)
	Save(ctx context.Context, settings *models.UserSettings) error
}

// EventFilters narrows event listing.
type EventFilters struct {
	From      *time.Time
	To        *time.Time
	PatientID *string
	Limit     int
}

// PatientFilters narrows patient listing.
type PatientFilters struct {
	Status *models.PatientStatus
	Search string
}

// PaymentFilters narrows payment listing.
type PaymentFilters struct {
	PatientID *string
	From      *time.Time
	To        *time.Time
	Status    *models.PaymentStatus
}

// FinanceFilters narrows ledger listing.
type FinanceFilters struct {
	From *time.Time
	To   *time.Time
	Type *models.TransactionType
}

// HealthFilters narrows health record listing.
type HealthFilters struct {
	Metric *models.HealthMetric
	From   *time.Time
	To     *time.Time
}
