// Package dispatch routes events from an input source to widgets.
//
// Pointer events are routed by hit testing: the deepest visible widget under
// the pointer receives the event first and it bubbles to the ancestors until
// a handler reports it handled. The dispatcher derives MouseEnter/MouseExit
// from hover changes and Click from a press and release on the same widget.
// Every other event is broadcast to all widgets that accept its category.
package dispatch

import (
	"iter"

	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

// Stats counts what one or more dispatch passes did.
type Stats struct {
	// Events is the number of events dispatched.
	Events int
	// Deliveries is the number of handler invocations, synthesized events
	// included.
	Deliveries int
	// Clicks is the number of synthesized clicks.
	Clicks int
	// Panics is the number of handlers that panicked.
	Panics int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Events += other.Events
	s.Deliveries += other.Deliveries
	s.Clicks += other.Clicks
	s.Panics += other.Panics
}

// Dispatcher holds the pointer state between passes: which widget is
// hovered and which one is pressed.
type Dispatcher struct {
	store *store.Store

	hover       widget.ID
	pressed     widget.ID
	pressButton event.Button
	// pressLost is set when the pressed widget stopped being interactive
	// before the release.
	pressLost bool
}

// New returns a dispatcher bound to s. It subscribes to s for changes.
func New(s *store.Store) *Dispatcher {
	d := &Dispatcher{store: s}
	s.Observe(d)
	return d
}

// Hovered returns the widget under the pointer as of the last pointer event.
func (d *Dispatcher) Hovered() widget.ID { return d.hover }

// Pressed returns the widget that received the outstanding press.
func (d *Dispatcher) Pressed() widget.ID { return d.pressed }

// StoreChanged implements store.Observer.
func (d *Dispatcher) StoreChanged(c store.Change) {
	switch c.Kind {
	case store.Removed:
		if c.ID == d.hover {
			d.hover = widget.NoID
		}
		if c.ID == d.pressed {
			d.pressed = widget.NoID
			d.pressLost = false
		}
	case store.Restyled, store.Reparented:
		if d.pressed != widget.NoID && !d.store.Interactive(d.pressed) {
			d.pressLost = true
		}
	}
}

// HitTest returns the widget that receives pointer events at p (screen
// coordinates), or widget.NoID. Later siblings are above earlier ones.
func (d *Dispatcher) HitTest(p geometry.Point) widget.ID {
	roots := d.store.Roots()
	for i := len(roots) - 1; i >= 0; i-- {
		if id, stop := d.hit(roots[i], p, geometry.Point{}); stop {
			return id
		}
	}
	return widget.NoID
}

// hit searches the subtree of id. stop is true when the search is over,
// either because a target was found or because a disabled widget absorbed
// the point.
func (d *Dispatcher) hit(id widget.ID, p, parentOrigin geometry.Point) (target widget.ID, stop bool) {
	w, err := d.store.Get(id)
	if err != nil || !w.Visible() {
		return widget.NoID, false
	}
	b := w.Bounds().Translate(parentOrigin)
	if !b.Contains(p) {
		return widget.NoID, false
	}
	if !w.Enabled() {
		return widget.NoID, true
	}
	children, _ := d.store.ChildrenOf(id)
	for i := len(children) - 1; i >= 0; i-- {
		if t, stop := d.hit(children[i], p, b.Origin); stop {
			return t, true
		}
	}
	return id, true
}

// path returns target followed by its ancestors.
func (d *Dispatcher) path(target widget.ID) []widget.ID {
	if target == widget.NoID {
		return nil
	}
	ancestors, _ := d.store.AncestorsOf(target)
	out := make([]widget.ID, 0, len(ancestors)+1)
	out = append(out, target)
	for i := len(ancestors) - 1; i >= 0; i-- {
		out = append(out, ancestors[i])
	}
	return out
}

// DispatchAll dispatches every event of seq in order.
func (d *Dispatcher) DispatchAll(seq iter.Seq[event.Event]) Stats {
	var total Stats
	for ev := range seq {
		total.Add(d.Dispatch(ev))
	}
	return total
}

// Dispatch runs one dispatch pass for ev. Widgets that disappear during the
// pass are skipped.
func (d *Dispatcher) Dispatch(ev event.Event) Stats {
	var stats Stats
	switch ev.Type {
	case event.TypeNone, event.MouseEnter, event.MouseExit, event.Click:
		return stats
	case event.MouseMove, event.MouseDown, event.MouseUp, event.MouseScroll:
		stats.Events++
		d.pointer(ev, &stats)
	default:
		stats.Events++
		d.broadcast(ev, &stats)
	}
	return stats
}

func (d *Dispatcher) pointer(ev event.Event, stats *Stats) {
	target := d.HitTest(ev.Position)
	route := d.path(target)
	d.updateHover(target, ev, stats)

	switch ev.Type {
	case event.MouseDown:
		d.bubble(route, ev, stats)
		if d.pressed == widget.NoID && target != widget.NoID && d.store.Contains(target) {
			d.pressed = target
			d.pressButton = ev.Button
			d.pressLost = false
		}
	case event.MouseUp:
		d.bubble(route, ev, stats)
		if d.pressed == widget.NoID || ev.Button != d.pressButton {
			return
		}
		pressed, lost := d.pressed, d.pressLost
		d.pressed, d.pressLost = widget.NoID, false
		if pressed == target && !lost && d.store.Interactive(target) {
			click := ev
			click.Type = event.Click
			stats.Clicks++
			d.bubble(route, click, stats)
		}
	default:
		d.bubble(route, ev, stats)
	}
}

func (d *Dispatcher) updateHover(target widget.ID, ev event.Event, stats *Stats) {
	if target == d.hover {
		return
	}
	prev := d.hover
	d.hover = target
	if prev != widget.NoID {
		exit := ev
		exit.Type = event.MouseExit
		d.deliverTo(prev, exit, stats)
	}
	if target != widget.NoID {
		enter := ev
		enter.Type = event.MouseEnter
		d.deliverTo(target, enter, stats)
	}
}

// bubble delivers ev along route until a handler returns true.
func (d *Dispatcher) bubble(route []widget.ID, ev event.Event, stats *Stats) {
	for _, id := range route {
		if d.deliverTo(id, ev, stats) {
			return
		}
	}
}

func (d *Dispatcher) deliverTo(id widget.ID, ev event.Event, stats *Stats) bool {
	w, err := d.store.Get(id)
	if err != nil || !w.Capabilities().Accepts(event.CategorySystem) {
		return false
	}
	if origin, err := d.store.ScreenOrigin(id); err == nil {
		ev.Local = ev.Position.Sub(origin)
	}
	return d.deliver(id, w, ev, stats)
}

func (d *Dispatcher) broadcast(ev event.Event, stats *Stats) {
	cat := ev.Type.Category()
	for _, id := range d.store.IDs() {
		w, err := d.store.Get(id)
		if err != nil || !w.Capabilities().Accepts(cat) {
			continue
		}
		d.deliver(id, w, ev, stats)
	}
}

func (d *Dispatcher) deliver(id widget.ID, w widget.Widget, ev event.Event, stats *Stats) (handled bool) {
	stats.Deliveries++
	defer errors.RecoverWithCallback("dispatch."+ev.Type.String(), uint64(id), func(any) {
		stats.Panics++
		handled = false
	})
	if ev.Type.Category() == event.CategoryCustom {
		w.HandleCustomEvent(ev)
		return false
	}
	return w.HandleSystemEvent(ev)
}
