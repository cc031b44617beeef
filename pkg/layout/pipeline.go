package layout

import (
	stderrors "errors"
	"slices"

	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

// Stats summarizes one flush.
type Stats struct {
	// Containers is the number of containers laid out.
	Containers int
	// Overflowed lists containers whose fixed children did not fit.
	Overflowed []widget.ID
}

func (s *Stats) add(other Stats) {
	s.Containers += other.Containers
	s.Overflowed = append(s.Overflowed, other.Overflowed...)
}

// Engine tracks layout containers and the ones that need layout.
//
// Containers are scheduled when they are resized, when a child is attached,
// removed or reparented, or on an explicit Relayout. Flush lays scheduled
// containers out parents first; a container laid out as part of its
// parent's pass is not laid out again.
type Engine struct {
	store   *store.Store
	layouts map[widget.ID]Descriptor
	hints   map[widget.ID]Hint

	dirty    []widget.ID
	dirtySet map[widget.ID]bool
	applying bool
}

// NewEngine returns an engine bound to s. It subscribes to s for changes.
func NewEngine(s *store.Store) *Engine {
	e := &Engine{
		store:    s,
		layouts:  make(map[widget.ID]Descriptor),
		hints:    make(map[widget.ID]Hint),
		dirtySet: make(map[widget.ID]bool),
	}
	s.Observe(e)
	return e
}

// SetLayout makes id a container with descriptor d and schedules it.
func (e *Engine) SetLayout(id widget.ID, d Descriptor) error {
	if !e.store.Contains(id) {
		return errors.New("layout.SetLayout", errors.KindUnknownWidget, uint64(id))
	}
	d.Spacing = max(0, d.Spacing)
	e.layouts[id] = d
	e.schedule(id)
	return nil
}

// RemoveLayout turns id back into a plain widget. Children keep their
// current bounds.
func (e *Engine) RemoveLayout(id widget.ID) {
	delete(e.layouts, id)
	delete(e.dirtySet, id)
}

// Layout returns the descriptor of container id.
func (e *Engine) Layout(id widget.ID) (Descriptor, bool) {
	d, ok := e.layouts[id]
	return d, ok
}

// SetHint sets the sizing hint of child and schedules its container.
func (e *Engine) SetHint(child widget.ID, h Hint) error {
	parent, err := e.store.ParentOf(child)
	if err != nil {
		return errors.New("layout.SetHint", errors.KindUnknownWidget, uint64(child))
	}
	e.hints[child] = h
	e.scheduleContainer(parent)
	return nil
}

// HintOf returns the hint of child; the zero Hint when none was set.
func (e *Engine) HintOf(child widget.ID) Hint {
	return e.hints[child]
}

// Relayout schedules container id.
func (e *Engine) Relayout(id widget.ID) error {
	if !e.store.Contains(id) {
		return errors.New("layout.Relayout", errors.KindUnknownWidget, uint64(id))
	}
	e.scheduleContainer(id)
	return nil
}

// NeedsLayout reports whether any container is scheduled.
func (e *Engine) NeedsLayout() bool {
	return len(e.dirtySet) > 0
}

func (e *Engine) schedule(id widget.ID) {
	if e.dirtySet[id] {
		return
	}
	e.dirtySet[id] = true
	e.dirty = append(e.dirty, id)
}

func (e *Engine) scheduleContainer(id widget.ID) {
	if _, ok := e.layouts[id]; ok {
		e.schedule(id)
	}
}

// StoreChanged implements store.Observer.
func (e *Engine) StoreChanged(c store.Change) {
	if c.Kind == store.Removed {
		delete(e.layouts, c.ID)
		delete(e.hints, c.ID)
		delete(e.dirtySet, c.ID)
	}
	if e.applying {
		return
	}
	switch c.Kind {
	case store.Attached:
		e.scheduleContainer(c.Parent)
	case store.Removed:
		e.scheduleContainer(c.Parent)
	case store.Reparented:
		e.scheduleContainer(c.OldParent)
		e.scheduleContainer(c.Parent)
	case store.Moved:
		if c.Resized {
			e.scheduleContainer(c.ID)
		}
	}
}

// Flush lays out every scheduled container, parents first.
func (e *Engine) Flush() Stats {
	var stats Stats
	for len(e.dirty) > 0 {
		batch := e.dirty
		e.dirty = nil
		slices.SortStableFunc(batch, func(a, b widget.ID) int {
			return e.store.Depth(a) - e.store.Depth(b)
		})
		for _, id := range batch {
			// A parent's pass may already have laid this one out.
			if !e.dirtySet[id] {
				continue
			}
			stats.add(e.run(id))
		}
	}
	return stats
}

// Apply lays out container id and its nested containers immediately.
func (e *Engine) Apply(id widget.ID) (Stats, error) {
	if !e.store.Contains(id) {
		return Stats{}, errors.New("layout.Apply", errors.KindUnknownWidget, uint64(id))
	}
	return e.run(id), nil
}

func (e *Engine) run(id widget.ID) Stats {
	var stats Stats
	e.applying = true
	defer func() { e.applying = false }()
	e.apply(id, &stats)
	return stats
}

func (e *Engine) apply(id widget.ID, stats *Stats) {
	delete(e.dirtySet, id)
	d, ok := e.layouts[id]
	if !ok {
		return
	}
	w, err := e.store.Get(id)
	if err != nil {
		return
	}
	children, _ := e.store.ChildrenOf(id)
	stats.Containers++
	if len(children) == 0 {
		return
	}

	content := d.Padding.Content(w.Bounds().Size)
	mainLen, crossLen := content.Size.Width, content.Size.Height
	if d.Orientation == Vertical {
		mainLen, crossLen = crossLen, mainLen
	}

	hints := make([]Hint, len(children))
	for i, c := range children {
		hints[i] = e.hints[c]
	}
	lengths, overflow := Distribute(mainLen, d.Spacing, hints)
	if overflow {
		stats.Overflowed = append(stats.Overflowed, id)
		errors.Report(errors.New("layout.Apply", errors.KindLayoutOverflow, uint64(id)))
	}

	pos := 0
	for i, c := range children {
		cross := crossLen
		if n, ok := hints[i].Cross(); ok {
			cross = n
		}
		var b geometry.Bounds
		if d.Orientation == Vertical {
			b = geometry.XYWH(content.Left(), content.Top()+pos, cross, lengths[i])
		} else {
			b = geometry.XYWH(content.Left()+pos, content.Top(), lengths[i], cross)
		}
		pos += lengths[i] + d.Spacing
		if err := e.store.SetBounds(c, b); err != nil {
			// An observer removed c earlier in this pass.
			var werr *errors.WidgetError
			if !stderrors.As(err, &werr) {
				werr = errors.Wrap("layout.Apply", errors.KindUnknownWidget, uint64(c), err)
			}
			errors.Report(werr)
			continue
		}

		if _, nested := e.layouts[c]; nested {
			e.apply(c, stats)
		}
	}
}
