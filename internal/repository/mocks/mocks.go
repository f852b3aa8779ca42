// Package mocks provides testify mock implementations of the repository
// interfaces for use in service and API tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lbarone/chronos/internal/models"
	"github.com/lbarone/chronos/internal/repository"
)

// EventRepository mocks repository.EventRepository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	args := m.Called(ctx, event)
	if v := args.Get(0); v != nil {
		return v.(*models.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EventRepository) List(ctx context.Context, filters repository.EventFilters) ([]models.Event, error) {
	args := m.Called(ctx, filters)
	if v := args.Get(0); v != nil {
		return v.([]models.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	args := m.Called(ctx, event)
	if v := args.Get(0); v != nil {
		return v.(*models.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EventRepository) UpdateTimes(ctx context.Context, id string, start, end time.Time) error {
	return m.Called(ctx, id, start, end).Error(0)
}

func (m *EventRepository) AddExceptionDate(ctx context.Context, id string, date time.Time) error {
	return m.Called(ctx, id, date).Error(0)
}

func (m *EventRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// PatientRepository mocks repository.PatientRepository.
type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	args := m.Called(ctx, patient)
	if v := args.Get(0); v != nil {
		return v.(*models.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) List(ctx context.Context, filters repository.PatientFilters) ([]models.Patient, error) {
	args := m.Called(ctx, filters)
	if v := args.Get(0); v != nil {
		return v.([]models.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	args := m.Called(ctx, patient)
	if v := args.Get(0); v != nil {
		return v.(*models.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// NoteRepository mocks repository.NoteRepository.
type NoteRepository struct {
	mock.Mock
}

func (m *NoteRepository) Create(ctx context.Context, note *models.SessionNote) (*models.SessionNote, error) {
	args := m.Called(ctx, note)
	if v := args.Get(0); v != nil {
		return v.(*models.SessionNote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NoteRepository) GetByPatientID(ctx context.Context, patientID string) ([]models.SessionNote, error) {
	args := m.Called(ctx, patientID)
	if v := args.Get(0); v != nil {
		return v.([]models.SessionNote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NoteRepository) Update(ctx context.Context, note *models.SessionNote) (*models.SessionNote, error) {
	args := m.Called(ctx, note)
	if v := args.Get(0); v != nil {
		return v.(*models.SessionNote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NoteRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// AnamnesisRepository mocks repository.AnamnesisRepository.
type AnamnesisRepository struct {
	mock.Mock
}

func (m *AnamnesisRepository) Save(ctx context.Context, record *models.AnamnesisRecord) (*models.AnamnesisRecord, error) {
	args := m.Called(ctx, record)
	if v := args.Get(0); v != nil {
		return v.(*models.AnamnesisRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AnamnesisRepository) GetByPatientID(ctx context.Context, patientID string) (*models.AnamnesisRecord, error) {
	args := m.Called(ctx, patientID)
	if v := args.Get(0); v != nil {
		return v.(*models.AnamnesisRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// PaymentRepository mocks repository.PaymentRepository.
type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	args := m.Called(ctx, payment)
	if v := args.Get(0); v != nil {
		return v.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) List(ctx context.Context, filters repository.PaymentFilters) ([]models.Payment, error) {
	args := m.Called(ctx, filters)
	if v := args.Get(0); v != nil {
		return v.([]models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// FinanceRepository mocks repository.FinanceRepository.
type FinanceRepository struct {
	mock.Mock
}

func (m *FinanceRepository) Create(ctx context.Context, tx *models.FinanceTransaction) (*models.FinanceTransaction, error) {
	args := m.Called(ctx, tx)
	if v := args.Get(0); v != nil {
		return v.(*models.FinanceTransaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FinanceRepository) List(ctx context.Context, filters repository.FinanceFilters) ([]models.FinanceTransaction, error) {
	args := m.Called(ctx, filters)
	if v := args.Get(0); v != nil {
		return v.([]models.FinanceTransaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FinanceRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// HealthRepository mocks repository.HealthRepository.
type HealthRepository struct {
	mock.Mock
}

func (m *HealthRepository) Create(ctx context.Context, record *models.HealthRecord) (*models.HealthRecord, error) {
	args := m.Called(ctx, record)
	if v := args.Get(0); v != nil {
		return v.(*models.HealthRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HealthRepository) List(ctx context.Context, filters repository.HealthFilters) ([]models.HealthRecord, error) {
	args := m.Called(ctx, filters)
	if v := args.Get(0); v != nil {
		return v.([]models.HealthRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HealthRepository) Update(ctx context.Context, record *models.HealthRecord) (*models.HealthRecord, error) {
	args := m.Called(ctx, record)
	if v := args.Get(0); v != nil {
		return v.(*models.HealthRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HealthRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// SettingsRepository mocks repository.SettingsRepository.
type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) Get(ctx context.Context) (*models.UserSettings, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*models.UserSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SettingsRepository) Save(ctx context.Context, settings *models.UserSettings) error {
	return m.Called(ctx, settings).Error(0)
}
