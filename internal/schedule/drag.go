package schedule

import (
	"math"
	"time"
)

// DragMode selects what a pointer interaction changes.
type DragMode string

const (
	DragMove   DragMode = "move"
	DragResize DragMode = "resize"
)

const (
	defaultSnapMinutes    = 15
	defaultMinDuration    = 15 * time.Minute
	defaultClickThreshold = 3.0
	defaultScrollZone     = 60.0
	defaultScrollSpeed    = 15.0
)

// ControllerConfig tunes the interaction controller. Zero values fall back
// to the defaults above.
type ControllerConfig struct {
	// PxPerMinute converts vertical pointer movement to time.
	PxPerMinute float64
	// SnapMinutes is the granularity drag deltas are rounded to.
	SnapMinutes int
	// MinDuration is the floor enforced when resizing.
	MinDuration time.Duration
	// DayColumnWidth is the pixel width of one day column; horizontal
	// movement divided by it yields the cross-day offset. Zero disables
	// cross-day moves.
	DayColumnWidth float64
	// ClickThreshold is the cumulative movement (px) below which a
	// pointer-up is a click, not a commit.
	ClickThreshold float64
	// ViewportTop/ViewportBottom bound the scrollable viewport in client
	// coordinates; pointers within ScrollZone of an edge auto-scroll.
	ViewportTop    float64
	ViewportBottom float64
	ScrollZone     float64
	ScrollSpeed    float64
}

func (c *ControllerConfig) normalize() {
	if c.PxPerMinute <= 0 {
		c.PxPerMinute = 0.8
	}
	if c.SnapMinutes <= 0 {
		c.SnapMinutes = defaultSnapMinutes
	}
	if c.MinDuration <= 0 {
		c.MinDuration = defaultMinDuration
	}
	if c.ClickThreshold <= 0 {
		c.ClickThreshold = defaultClickThreshold
	}
	if c.ScrollZone <= 0 {
		c.ScrollZone = defaultScrollZone
	}
	if c.ScrollSpeed <= 0 {
		c.ScrollSpeed = defaultScrollSpeed
	}
}

// CommitFunc receives the occurrence reference and its new times once per
// completed drag that changed them. The reference carries whether the edit
// addresses the canonical occurrence (and therefore the definition itself).
type CommitFunc func(ref OccurrenceRef, newStart, newEnd time.Time)

// ClickFunc receives the occurrence when a pointer interaction never left
// the click threshold.
type ClickFunc func(ref OccurrenceRef)

// DragSession is the ephemeral state of one pointer interaction, created on
// pointer-down and discarded on pointer-up.
type DragSession struct {
	Ref       OccurrenceRef `json:"ref"`
	Mode      DragMode      `json:"mode"`
	NewStart  time.Time     `json:"newStart"`
	NewEnd    time.Time     `json:"newEnd"`
	DayOffset int           `json:"dayOffset"`

	originalStart time.Time
	originalEnd   time.Time
	startX        float64
	startY        float64
	moved         bool
}

// Controller translates pointer movement into tentative schedule changes and
// finalizes them through the commit callback. It is single-threaded and
// holds at most one session at a time.
type Controller struct {
	cfg      ControllerConfig
	onCommit CommitFunc
	onClick  ClickFunc
	session  *DragSession
}

// NewController builds a controller. A nil onCommit renders instances
// informational-only: pointer-downs are ignored.
func NewController(cfg ControllerConfig, onCommit CommitFunc, onClick ClickFunc) *Controller {
	cfg.normalize()
	return &Controller{cfg: cfg, onCommit: onCommit, onClick: onClick}
}

// SetPxPerMinute updates the vertical scale factor (zoom).
func (c *Controller) SetPxPerMinute(v float64) {
	if v > 0 {
		c.cfg.PxPerMinute = v
	}
}

// Session returns the in-flight drag session, or nil when idle.
func (c *Controller) Session() *DragSession {
	return c.session
}

// Dragging reports whether a pointer interaction is in progress.
func (c *Controller) Dragging() bool {
	return c.session != nil
}

// PointerDown starts a drag session over the given instance. It reports
// whether a session was actually opened.
func (c *Controller) PointerDown(inst Instance, mode DragMode, x, y float64) bool {
	if c.onCommit == nil {
		return false
	}
	if mode != DragMove && mode != DragResize {
		return false
	}
	c.session = &DragSession{
		Ref:           inst.Ref,
		Mode:          mode,
		NewStart:      inst.Start,
		NewEnd:        inst.End,
		originalStart: inst.Start,
		originalEnd:   inst.End,
		startX:        x,
		startY:        y,
	}
	return true
}

// PointerMove updates the tentative times from the current pointer position.
// It recomputes from the session origin on every call, so repeated
// invocations with the same coordinates are idempotent.
func (c *Controller) PointerMove(x, y float64) {
	s := c.session
	if s == nil {
		return
	}

	if math.Abs(x-s.startX) > c.cfg.ClickThreshold || math.Abs(y-s.startY) > c.cfg.ClickThreshold {
		s.moved = true
	}

	deltaY := y - s.startY
	deltaMinutes := deltaY / c.cfg.PxPerMinute
	snap := float64(c.cfg.SnapMinutes)
	snapped := time.Duration(math.Round(deltaMinutes/snap)*snap) * time.Minute

	switch s.Mode {
	case DragMove:
		dayOffset := 0
		if c.cfg.DayColumnWidth > 0 {
			dayOffset = int(math.Round((x - s.startX) / c.cfg.DayColumnWidth))
		}
		s.DayOffset = dayOffset
		s.NewStart = AddDays(s.originalStart.Add(snapped), dayOffset)
		s.NewEnd = AddDays(s.originalEnd.Add(snapped), dayOffset)
	case DragResize:
		s.NewStart = s.originalStart
		s.NewEnd = s.originalEnd.Add(snapped)
		if floor := s.NewStart.Add(c.cfg.MinDuration); s.NewEnd.Before(floor) {
			s.NewEnd = floor
		}
	}
}

// ScrollStep returns the auto-scroll delta for the current pointer height:
// negative near the top edge, positive near the bottom, zero elsewhere or
// when idle. The host applies it to the scroll container each frame.
func (c *Controller) ScrollStep(y float64) float64 {
	if c.session == nil || c.cfg.ViewportBottom <= c.cfg.ViewportTop {
		return 0
	}
	if y < c.cfg.ViewportTop+c.cfg.ScrollZone {
		return -c.cfg.ScrollSpeed
	}
	if y > c.cfg.ViewportBottom-c.cfg.ScrollZone {
		return c.cfg.ScrollSpeed
	}
	return 0
}

// PointerUp ends the session. A genuine drag whose times changed fires the
// commit callback exactly once; a dragged-then-reverted interaction is a
// no-op; anything below the click threshold is reported as a click.
func (c *Controller) PointerUp() {
	s := c.session
	c.session = nil
	if s == nil {
		return
	}

	if !s.moved {
		if c.onClick != nil {
			c.onClick(s.Ref)
		}
		return
	}

	if s.NewStart.Equal(s.originalStart) && s.NewEnd.Equal(s.originalEnd) {
		return
	}
	c.onCommit(s.Ref, s.NewStart, s.NewEnd)
}
