package schedule

import "sort"

// MinEventHeight is the floor applied to rendered event heights so that
// zero-length events remain clickable.
const MinEventHeight = 20.0

// Placement is the visual slot computed for one instance within its day.
// Top/Height are pixels under the caller-supplied scale factor; Left/Width
// are percentages of the day column.
type Placement struct {
	Instance Instance `json:"instance"`
	Column   int      `json:"column"`
	Overlap  int      `json:"overlapCount"`
	Top      float64  `json:"top"`
	Height   float64  `json:"height"`
	Left     float64  `json:"left"`
	Width    float64  `json:"width"`
}

// LayoutDay packs the instances of a single calendar day into non-overlapping
// visual columns (greedy interval coloring) and computes their pixel
// geometry. It is a pure function of its inputs and is recomputed on every
// change of the instance set or scale factor.
//
// Instances are placed in order of start time, longer duration first among
// ties, so longer events claim the leftmost columns. Each instance's width
// is derived from the number of columns it genuinely overlaps in time, not
// from the global column count, so staggered events only shrink for their
// true concurrent neighbors.
func LayoutDay(instances []Instance, pxPerMinute float64) []Placement {
	sorted := make([]Instance, len(instances))
	copy(sorted, instances)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].Duration() > sorted[j].Duration()
	})

	var columns [][]Instance
	colOf := make([]int, len(sorted))

	for i, inst := range sorted {
		placed := false
		for c := range columns {
			last := columns[c][len(columns[c])-1]
			if !last.End.After(inst.Start) {
				columns[c] = append(columns[c], inst)
				colOf[i] = c
				placed = true
				break
			}
		}
		if !placed {
			// Structurally always reachable; opening a new column is also
			// the fallback for any degenerate interval that slipped through.
			columns = append(columns, []Instance{inst})
			colOf[i] = len(columns) - 1
		}
	}

	placements := make([]Placement, len(sorted))
	for i, inst := range sorted {
		overlap := 0
		for _, col := range columns {
			if columnIntersects(col, inst) {
				overlap++
			}
		}
		if overlap == 0 {
			overlap = 1
		}

		startMinutes := float64(inst.Start.Hour()*60 + inst.Start.Minute())
		durationMinutes := inst.Duration().Minutes()

		width := 100.0 / float64(overlap)
		placements[i] = Placement{
			Instance: inst,
			Column:   colOf[i],
			Overlap:  overlap,
			Top:      startMinutes * pxPerMinute,
			Height:   max(durationMinutes*pxPerMinute, MinEventHeight),
			Left:     float64(colOf[i]) * width,
			Width:    width,
		}
	}

	return placements
}

// columnIntersects reports whether any instance in the column temporally
// overlaps inst's [start, end) range.
func columnIntersects(col []Instance, inst Instance) bool {
	for _, other := range col {
		if other.Start.Before(inst.End) && other.End.After(inst.Start) {
			return true
		}
	}
	return false
}
