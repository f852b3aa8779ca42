package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbarone/chronos/internal/models"
)

type commitRecorder struct {
	calls  int
	ref    OccurrenceRef
	start  time.Time
	end    time.Time
	clicks int
}

func (r *commitRecorder) commit(ref OccurrenceRef, newStart, newEnd time.Time) {
	r.calls++
	r.ref = ref
	r.start = newStart
	r.end = newEnd
}

func (r *commitRecorder) click(OccurrenceRef) {
	r.clicks++
}

func testInstance() Instance {
	start := time.Date(2025, 1, 14, 9, 0, 0, 0, time.Local)
	return Instance{
		Ref: OccurrenceRef{EventID: "ev-1", Start: start, Canonical: true},
		Event: models.Event{
			ID:    "ev-1",
			Title: "Sessão",
			Start: start,
			End:   start.Add(time.Hour),
		},
	}
}

func newTestController(rec *commitRecorder) *Controller {
	return NewController(ControllerConfig{
		PxPerMinute:    1, // 1px == 1 minute keeps the arithmetic readable
		SnapMinutes:    15,
		MinDuration:    15 * time.Minute,
		DayColumnWidth: 100,
		ClickThreshold: 3,
		ViewportTop:    0,
		ViewportBottom: 600,
		ScrollZone:     60,
		ScrollSpeed:    15,
	}, rec.commit, rec.click)
}

func TestPointerDownRequiresCommitCallback(t *testing.T) {
	c := NewController(ControllerConfig{}, nil, nil)
	assert.False(t, c.PointerDown(testInstance(), DragMove, 0, 0))
	assert.False(t, c.Dragging())
}

func TestDragSnapRounding(t *testing.T) {
	tests := []struct {
		name        string
		deltaY      float64
		wantMinutes time.Duration
	}{
		{"22 rounds down to 15", 22, 15 * time.Minute},
		{"23 rounds up to 30", 23, 30 * time.Minute},
		{"-22 rounds up to -15", -22, -15 * time.Minute},
		{"7 rounds to zero", 7, 0},
		{"8 rounds to 15", 8, 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &commitRecorder{}
			c := newTestController(rec)
			inst := testInstance()

			require.True(t, c.PointerDown(inst, DragMove, 50, 100))
			c.PointerMove(50, 100+tt.deltaY)

			s := c.Session()
			require.NotNil(t, s)
			assert.Equal(t, inst.Start.Add(tt.wantMinutes), s.NewStart)
			assert.Equal(t, inst.End.Add(tt.wantMinutes), s.NewEnd)
		})
	}
}

func TestDragMoveAcrossDays(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)
	inst := testInstance()

	require.True(t, c.PointerDown(inst, DragMove, 50, 100))
	// Two day columns to the right, half an hour down.
	c.PointerMove(50+210, 100+30)
	c.PointerUp()

	require.Equal(t, 1, rec.calls)
	want := AddDays(inst.Start.Add(30*time.Minute), 2)
	assert.True(t, want.Equal(rec.start), "got %v", rec.start)
	assert.Equal(t, time.Hour, rec.end.Sub(rec.start))
}

func TestResizeOnlyMovesEnd(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)
	inst := testInstance()

	require.True(t, c.PointerDown(inst, DragResize, 50, 100))
	c.PointerMove(400, 100+30) // large horizontal movement is ignored for resize
	c.PointerUp()

	require.Equal(t, 1, rec.calls)
	assert.True(t, inst.Start.Equal(rec.start))
	assert.True(t, inst.End.Add(30*time.Minute).Equal(rec.end))
}

func TestResizeClampsToMinimumDuration(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)
	inst := testInstance()

	require.True(t, c.PointerDown(inst, DragResize, 50, 100))
	// Drag the end far above the start.
	c.PointerMove(50, 100-300)
	c.PointerUp()

	require.Equal(t, 1, rec.calls)
	assert.True(t, inst.Start.Add(15*time.Minute).Equal(rec.end))
}

func TestDragRevertedToOriginIsNoOp(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)
	inst := testInstance()

	require.True(t, c.PointerDown(inst, DragMove, 50, 100))
	c.PointerMove(50, 160) // move away
	c.PointerMove(50, 100) // and back
	c.PointerUp()

	assert.Equal(t, 0, rec.calls)
	assert.Equal(t, 0, rec.clicks, "a genuine drag is not a click even when reverted")
	assert.False(t, c.Dragging())
}

func TestSubThresholdMovementIsClick(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)
	inst := testInstance()

	require.True(t, c.PointerDown(inst, DragMove, 50, 100))
	c.PointerMove(51, 102)
	c.PointerUp()

	assert.Equal(t, 0, rec.calls)
	assert.Equal(t, 1, rec.clicks)
}

func TestCommitFiresExactlyOnce(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)
	inst := testInstance()

	require.True(t, c.PointerDown(inst, DragMove, 50, 100))
	c.PointerMove(50, 130)
	c.PointerUp()
	c.PointerUp() // stray pointer-up after the session ended

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "ev-1", rec.ref.EventID)
	assert.True(t, rec.ref.Canonical)
}

func TestPointerMoveIsIdempotentPerPosition(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)
	inst := testInstance()

	require.True(t, c.PointerDown(inst, DragMove, 50, 100))
	c.PointerMove(50, 130)
	first := *c.Session()
	c.PointerMove(50, 130)
	second := *c.Session()

	assert.True(t, first.NewStart.Equal(second.NewStart))
	assert.True(t, first.NewEnd.Equal(second.NewEnd))
	assert.Equal(t, first.DayOffset, second.DayOffset)
}

func TestScrollStepNearEdges(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)

	// Idle controller never scrolls.
	assert.Zero(t, c.ScrollStep(10))

	require.True(t, c.PointerDown(testInstance(), DragMove, 50, 300))
	assert.Equal(t, -15.0, c.ScrollStep(30))  // near top
	assert.Equal(t, 15.0, c.ScrollStep(580))  // near bottom
	assert.Zero(t, c.ScrollStep(300))         // middle
	c.PointerUp()
	assert.Zero(t, c.ScrollStep(30))
}

func TestSetPxPerMinuteAffectsSubsequentDrags(t *testing.T) {
	rec := &commitRecorder{}
	c := newTestController(rec)
	c.SetPxPerMinute(2)

	inst := testInstance()
	require.True(t, c.PointerDown(inst, DragMove, 50, 100))
	c.PointerMove(50, 160) // 60px == 30 minutes at 2px/min
	c.PointerUp()

	require.Equal(t, 1, rec.calls)
	assert.True(t, inst.Start.Add(30*time.Minute).Equal(rec.start))
}
