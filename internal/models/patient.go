package models

import "time"

// PatientStatus marks whether a patient is currently in treatment.
type PatientStatus string

const (
	PatientActive   PatientStatus = "active"
	PatientInactive PatientStatus = "inactive"
)

// Patient represents a patient record in the clinic directory.
type Patient struct {
	ID                string        `json:"id" db:"id"`
	Name              string        `json:"name" db:"name"`
	Email             string        `json:"email,omitempty" db:"email"`
	Phone             string        `json:"phone,omitempty" db:"phone"`
	Status            PatientStatus `json:"status" db:"status"`
	Notes             string        `json:"notes,omitempty" db:"notes"`
	ConsultationValue float64       `json:"consultationValue" db:"consultation_value"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the patient participates in forecasts.
func (p *Patient) IsActive() bool {
	return p.Status == PatientActive
}

// SessionNote is a free-form clinical note attached to a patient, optionally
// linked to the calendar event of the session it was taken in.
type SessionNote struct {
	ID        string    `json:"id" db:"id"`
	PatientID string    `json:"patientId" db:"patient_id"`
	Date      time.Time `json:"date" db:"note_date"`
	Content   string    `json:"content" db:"content"`
	EventID   *string   `json:"eventId,omitempty" db:"event_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AnamnesisRecord stores the structured intake form of a patient as a flat
// field->answer map.
type AnamnesisRecord struct {
	ID        string            `json:"id" db:"id"`
	PatientID string            `json:"patientId" db:"patient_id"`
	Data      map[string]string `json:"data" db:"data"`
	UpdatedAt time.Time         `json:"updatedAt" db:"updated_at"`
}
