// Package scheduler tracks which parts of the screen are out of date and
// redraws only the widgets that intersect them.
//
// Store changes feed the dirty region automatically: both the old and the
// new extent of a moved, resized, restyled, reordered or reparented widget
// are marked, and removal marks the area the widget used to cover. Widgets
// whose internal state changed ask for a redraw through
// widget.RedrawRequester. A pass with nothing dirty draws nothing.
package scheduler

import (
	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

// Stats summarizes one draw pass.
type Stats struct {
	// Draws is the number of widget Draw invocations.
	Draws int
	// Rects is the number of dirty rectangles repainted.
	Rects int
	// Area is the total area of the dirty rectangles.
	Area int
	// Panics is the number of Draw calls that panicked.
	Panics int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithBackground fills every dirty rectangle with c before widgets draw.
func WithBackground(c render.Color) Option {
	return func(s *Scheduler) {
		s.background = c
		s.clearFirst = true
	}
}

// WithDisabledVeil sets the color laid over disabled widgets after they
// and their children draw. ColorTransparent disables the veil.
func WithDisabledVeil(c render.Color) Option {
	return func(s *Scheduler) { s.veil = c }
}

// WithMaxRects sets how many disjoint dirty rectangles are kept before the
// region collapses to its bounding rectangle.
func WithMaxRects(n int) Option {
	return func(s *Scheduler) { s.maxRects = n }
}

// DefaultDisabledVeil is a translucent gray.
const DefaultDisabledVeil = render.Color(0x80C0C0C0)

// Scheduler owns the dirty region and runs draw passes against a backend.
type Scheduler struct {
	store   *store.Store
	backend render.Backend

	maxRects   int
	background render.Color
	clearFirst bool
	veil       render.Color

	region  *Region
	pending map[widget.ID]bool
}

// New returns a scheduler drawing s into backend. It subscribes to s.
func New(s *store.Store, backend render.Backend, opts ...Option) *Scheduler {
	sch := &Scheduler{
		store:    s,
		backend:  backend,
		maxRects: DefaultMaxRects,
		veil:     DefaultDisabledVeil,
		pending:  make(map[widget.ID]bool),
	}
	for _, opt := range opts {
		opt(sch)
	}
	sch.region = NewRegion(sch.maxRects)
	s.Observe(sch)
	return sch
}

// StoreChanged implements store.Observer.
func (s *Scheduler) StoreChanged(c store.Change) {
	switch c.Kind {
	case store.Attached:
		s.region.Add(c.New)
	case store.Removed:
		delete(s.pending, c.ID)
		s.region.Add(c.Old)
	default:
		s.region.Add(c.Old)
		s.region.Add(c.New)
	}
}

// Invalidate marks the screen bounds of id dirty.
func (s *Scheduler) Invalidate(id widget.ID) error {
	b, err := s.store.ScreenBounds(id)
	if err != nil {
		return errors.New("scheduler.Invalidate", errors.KindUnknownWidget, uint64(id))
	}
	s.pending[id] = true
	s.region.Add(b)
	return nil
}

// InvalidateRect marks a screen rectangle dirty.
func (s *Scheduler) InvalidateRect(b geometry.Bounds) {
	s.region.Add(b)
}

// InvalidateAll marks the extent of every root dirty.
func (s *Scheduler) InvalidateAll() {
	for _, id := range s.store.Roots() {
		if ext, err := s.store.Extent(id); err == nil {
			s.region.Add(ext)
		}
	}
}

// Pending reports whether id was invalidated since the last pass.
func (s *Scheduler) Pending(id widget.ID) bool {
	return s.pending[id]
}

// NeedsDraw reports whether the next pass would repaint anything. Widget
// redraw requests are collected first.
func (s *Scheduler) NeedsDraw() bool {
	s.collect()
	return !s.region.IsEmpty()
}

// Dirty returns the current dirty rectangles.
func (s *Scheduler) Dirty() []geometry.Bounds {
	return s.region.Rects()
}

func (s *Scheduler) collect() {
	for id, w := range s.store.All() {
		if rr, ok := w.(widget.RedrawRequester); ok && rr.NeedsRedraw() {
			rr.ClearNeedsRedraw()
			_ = s.Invalidate(id)
		}
	}
}

// DrawPass repaints every visible widget intersecting the dirty region, in
// z-order, and clears the region. A widget draws once per dirty rectangle it
// intersects, clipped to that intersection, so clean area between
// rectangles is never touched.
func (s *Scheduler) DrawPass() Stats {
	s.collect()
	var stats Stats
	if s.region.IsEmpty() {
		clear(s.pending)
		return stats
	}

	rects := s.region.Rects()
	s.region.Clear()
	clear(s.pending)

	stats.Rects = len(rects)
	for _, r := range rects {
		stats.Area += r.Size.Width * r.Size.Height
		if s.clearFirst {
			s.backend.FillRect(r, r, s.background)
		}
	}

	dirty := &Region{maxRects: len(rects), rects: rects}
	for _, id := range s.store.Roots() {
		s.draw(id, geometry.Point{}, dirty, &stats)
	}
	return stats
}

func (s *Scheduler) draw(id widget.ID, parentOrigin geometry.Point, dirty *Region, stats *Stats) {
	w, err := s.store.Get(id)
	if err != nil || !w.Visible() {
		return
	}
	b := w.Bounds().Translate(parentOrigin)
	clips := dirty.Clips(b)

	if w.Capabilities().Has(widget.Drawable) {
		for _, clip := range clips {
			stats.Draws++
			s.drawWidget(id, w, render.NewContext(s.backend, b.Origin, clip), stats)
		}
	}

	children, _ := s.store.ChildrenOf(id)
	for _, c := range children {
		s.draw(c, b.Origin, dirty, stats)
	}

	if !w.Enabled() && s.veil.Alpha8() != 0 {
		for _, clip := range clips {
			s.backend.FillRect(clip, b, s.veil)
		}
	}
}

func (s *Scheduler) drawWidget(id widget.ID, w widget.Widget, ctx *render.Context, stats *Stats) {
	defer errors.RecoverWithCallback("scheduler.Draw", uint64(id), func(any) {
		stats.Panics++
	})
	w.Draw(ctx, ctx.Clip())
}
