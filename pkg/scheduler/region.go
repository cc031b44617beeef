package scheduler

import (
	"slices"

	"github.com/go-drift/pane/pkg/geometry"
)

// DefaultMaxRects is the number of disjoint rectangles a Region keeps before
// collapsing to its bounding rectangle.
const DefaultMaxRects = 8

// Region is a set of dirty screen rectangles. Overlapping rectangles are
// merged on insert, so the set stays small and pairwise disjoint.
type Region struct {
	maxRects int
	rects    []geometry.Bounds
}

// NewRegion returns an empty region that keeps at most maxRects rectangles.
// Values below 1 mean DefaultMaxRects.
func NewRegion(maxRects int) *Region {
	if maxRects < 1 {
		maxRects = DefaultMaxRects
	}
	return &Region{maxRects: maxRects}
}

// Add merges b into the region. Empty rectangles are ignored.
func (r *Region) Add(b geometry.Bounds) {
	if b.IsEmpty() {
		return
	}
	for _, x := range r.rects {
		if x.Covers(b) {
			return
		}
	}
	// Merging can make the grown rectangle overlap others, so repeat until
	// nothing overlaps it.
	for merged := true; merged; {
		merged = false
		for i, x := range r.rects {
			if x.Intersects(b) {
				b = b.Union(x)
				r.rects = slices.Delete(r.rects, i, i+1)
				merged = true
				break
			}
		}
	}
	r.rects = append(r.rects, b)
	if len(r.rects) > r.maxRects {
		r.rects = []geometry.Bounds{r.Bounds()}
	}
}

// Rects returns a copy of the dirty rectangles.
func (r *Region) Rects() []geometry.Bounds {
	return slices.Clone(r.rects)
}

// Bounds returns the bounding rectangle of the region.
func (r *Region) Bounds() geometry.Bounds {
	var u geometry.Bounds
	for _, x := range r.rects {
		u = u.Union(x)
	}
	return u
}

// IsEmpty reports whether nothing is dirty.
func (r *Region) IsEmpty() bool {
	return len(r.rects) == 0
}

// Clips returns b's non-empty intersections with the region's rectangles.
// The rectangles are disjoint, so the pieces never overlap.
func (r *Region) Clips(b geometry.Bounds) []geometry.Bounds {
	var out []geometry.Bounds
	for _, x := range r.rects {
		if c := x.Intersect(b); !c.IsEmpty() {
			out = append(out, c)
		}
	}
	return out
}

// Clear empties the region.
func (r *Region) Clear() {
	r.rects = r.rects[:0]
}
