package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbarone/chronos/internal/models"
)

func instanceAt(id string, day time.Time, startHM, endHM string) Instance {
	parse := func(hm string) time.Time {
		tt, _ := time.ParseInLocation("2006-01-02 15:04", day.Format("2006-01-02")+" "+hm, time.Local)
		return tt
	}
	start, end := parse(startHM), parse(endHM)
	return Instance{
		Ref: OccurrenceRef{EventID: id, Start: start, Canonical: true},
		Event: models.Event{
			ID:    id,
			Title: id,
			Start: start,
			End:   end,
		},
	}
}

func placementByID(t *testing.T, placements []Placement, id string) Placement {
	t.Helper()
	for _, p := range placements {
		if p.Instance.ID == id {
			return p
		}
	}
	t.Fatalf("no placement for %s", id)
	return Placement{}
}

func TestLayoutDayColumnPacking(t *testing.T) {
	day := time.Date(2025, 1, 14, 0, 0, 0, 0, time.Local)
	// A(9:00-10:00), B(9:30-10:30), C(10:15-11:00):
	// A and B overlap, C overlaps only B's tail.
	a := instanceAt("A", day, "09:00", "10:00")
	b := instanceAt("B", day, "09:30", "10:30")
	c := instanceAt("C", day, "10:15", "11:00")

	placements := LayoutDay([]Instance{a, b, c}, 1)
	require.Len(t, placements, 3)

	pa := placementByID(t, placements, "A")
	pb := placementByID(t, placements, "B")
	pc := placementByID(t, placements, "C")

	assert.NotEqual(t, pa.Column, pb.Column, "A and B overlap and must not share a column")
	assert.Equal(t, pa.Column, pc.Column, "C reuses A's column, their ranges do not touch")

	// Overlap reflects the true concurrent set, not the global column count.
	assert.Equal(t, 2, pa.Overlap)
	assert.Equal(t, 2, pb.Overlap)
	assert.Equal(t, 2, pc.Overlap) // C's range intersects B's column only plus its own

	assert.InDelta(t, 50.0, pa.Width, 0.01)
	assert.InDelta(t, 0.0, pa.Left, 0.01)
	assert.InDelta(t, 50.0, pb.Left, 0.01)
}

func TestLayoutDayPartialOverlapWidths(t *testing.T) {
	day := time.Date(2025, 1, 14, 0, 0, 0, 0, time.Local)
	// D is alone in the afternoon: full width despite the morning cluster.
	a := instanceAt("A", day, "09:00", "10:00")
	b := instanceAt("B", day, "09:30", "10:30")
	d := instanceAt("D", day, "15:00", "16:00")

	placements := LayoutDay([]Instance{a, b, d}, 1)
	pd := placementByID(t, placements, "D")

	assert.Equal(t, 1, pd.Overlap)
	assert.InDelta(t, 100.0, pd.Width, 0.01)
	assert.InDelta(t, 0.0, pd.Left, 0.01)
}

func TestLayoutDayLongerEventClaimsLeftColumn(t *testing.T) {
	day := time.Date(2025, 1, 14, 0, 0, 0, 0, time.Local)
	short := instanceAt("short", day, "09:00", "09:30")
	long := instanceAt("long", day, "09:00", "11:00")

	placements := LayoutDay([]Instance{short, long}, 1)
	assert.Equal(t, 0, placementByID(t, placements, "long").Column)
	assert.Equal(t, 1, placementByID(t, placements, "short").Column)
}

func TestLayoutDayGeometry(t *testing.T) {
	day := time.Date(2025, 1, 14, 0, 0, 0, 0, time.Local)
	inst := instanceAt("E", day, "08:30", "09:20")

	placements := LayoutDay([]Instance{inst}, 2)
	p := placements[0]

	assert.InDelta(t, 510*2, p.Top, 0.01)   // 8h30 past midnight
	assert.InDelta(t, 50*2, p.Height, 0.01) // 50 minutes
}

func TestLayoutDayMinimumHeightFloor(t *testing.T) {
	day := time.Date(2025, 1, 14, 0, 0, 0, 0, time.Local)
	tiny := instanceAt("tiny", day, "09:00", "09:05")

	placements := LayoutDay([]Instance{tiny}, 0.5)
	assert.InDelta(t, MinEventHeight, placements[0].Height, 0.01)
}

func TestLayoutDayEmpty(t *testing.T) {
	assert.Empty(t, LayoutDay(nil, 1))
}
