package models

import "time"

// HealthMetric identifies which personal metric a record tracks.
type HealthMetric string

const (
	MetricWeight HealthMetric = "weight"
	MetricWater  HealthMetric = "water"
	MetricSleep  HealthMetric = "sleep"
	MetricMood   HealthMetric = "mood"
)

// HealthRecord is one data point of the practitioner's personal health
// tracker.
type HealthRecord struct {
	ID        string       `json:"id" db:"id"`
	Type      HealthMetric `json:"type" db:"metric"`
	Value     float64      `json:"value" db:"value"`
	Date      time.Time    `json:"date" db:"recorded_at"`
	Note      string       `json:"note,omitempty" db:"note"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// UserSettings holds per-user application preferences persisted alongside
// the entity collections.
type UserSettings struct {
	Theme      string    `json:"theme" db:"theme"`
	WeightGoal *float64  `json:"weightGoal,omitempty" db:"weight_goal"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
