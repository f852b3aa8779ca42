package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ViewConfig holds calendar display preferences shared with interactive
// clients: the vertical scale, snapping and the drag geometry. It lives in
// a YAML file so it can be tuned without rebuilding.
type ViewConfig struct {
	// PxPerMinute is the default vertical scale of the week view.
	PxPerMinute float64 `yaml:"px_per_minute"`

	// SnapMinutes is the granularity drag and resize deltas round to.
	SnapMinutes int `yaml:"snap_minutes"`

	// MinDurationMinutes is the floor enforced when resizing an event.
	MinDurationMinutes int `yaml:"min_duration_minutes"`

	// DayColumnWidth is the pixel width of one day column used to derive
	// cross-day drag offsets.
	DayColumnWidth float64 `yaml:"day_column_width"`

	// ScrollZone/ScrollSpeed control edge auto-scroll while dragging.
	ScrollZone  float64 `yaml:"scroll_zone"`
	ScrollSpeed float64 `yaml:"scroll_speed"`
}

// DefaultViewConfig returns the built-in display preferences.
func DefaultViewConfig() *ViewConfig {
	return &ViewConfig{
		PxPerMinute:        0.8,
		SnapMinutes:        15,
		MinDurationMinutes: 15,
		DayColumnWidth:     140,
		ScrollZone:         60,
		ScrollSpeed:        15,
	}
}

// Normalize fills missing or zero values with defaults so partially-filled
// files still behave.
func (v *ViewConfig) Normalize() {
	def := DefaultViewConfig()
	if v.PxPerMinute <= 0 {
		v.PxPerMinute = def.PxPerMinute
	}
	if v.SnapMinutes <= 0 {
		v.SnapMinutes = def.SnapMinutes
	}
	if v.MinDurationMinutes <= 0 {
		v.MinDurationMinutes = def.MinDurationMinutes
	}
	if v.DayColumnWidth <= 0 {
		v.DayColumnWidth = def.DayColumnWidth
	}
	if v.ScrollZone <= 0 {
		v.ScrollZone = def.ScrollZone
	}
	if v.ScrollSpeed <= 0 {
		v.ScrollSpeed = def.ScrollSpeed
	}
}

// LoadViewConfig reads display preferences from the given YAML path. An
// empty path or a missing file yields the defaults.
func LoadViewConfig(path string) (*ViewConfig, error) {
	if path == "" {
		return DefaultViewConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultViewConfig(), nil
		}
		return nil, err
	}

	var cfg ViewConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}
