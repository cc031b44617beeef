// Package widget defines the capability contracts concrete widgets
// implement, and an embeddable Base with no-op defaults.
//
// A widget is owned by a store and referred to everywhere else by its ID.
// Its bounds are relative to its parent (screen coordinates for roots) and
// are only ever changed through the store, which validates them and
// schedules the redraw.
package widget

import (
	"strings"

	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
)

// ID is a stable handle into a store. IDs are never reused.
type ID uint64

// NoID is the absent ID: the parent of a root widget.
const NoID ID = 0

// Capability is the set of optional behaviors a widget takes part in.
type Capability uint8

const (
	// Drawable widgets are asked to draw during redraw passes.
	Drawable Capability = 1 << iota
	// SystemEvents widgets receive pointer, key, tick and resize events.
	SystemEvents
	// CustomEvents widgets receive application-defined events.
	CustomEvents
)

// Has reports whether c includes every bit of other.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// Accepts reports whether a widget with capabilities c receives events of
// the given category.
func (c Capability) Accepts(cat event.Category) bool {
	if cat == event.CategoryCustom {
		return c.Has(CustomEvents)
	}
	return c.Has(SystemEvents)
}

func (c Capability) String() string {
	var parts []string
	if c.Has(Drawable) {
		parts = append(parts, "drawable")
	}
	if c.Has(SystemEvents) {
		parts = append(parts, "system")
	}
	if c.Has(CustomEvents) {
		parts = append(parts, "custom")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Widget is the capability every element in the store implements.
type Widget interface {
	Bounds() geometry.Bounds
	SetBounds(b geometry.Bounds)
	Visible() bool
	SetVisible(visible bool)
	Enabled() bool
	SetEnabled(enabled bool)
	Capabilities() Capability

	// Draw renders the widget. clip is in local coordinates and is already
	// applied to every command issued through ctx.
	Draw(ctx *render.Context, clip geometry.Bounds)
	// HandleSystemEvent receives system events. Positional events bubble to
	// the parent while this returns false.
	HandleSystemEvent(ev event.Event) bool
	// HandleCustomEvent receives application-defined events.
	HandleCustomEvent(ev event.Event)
}

// RedrawRequester is implemented by widgets that can ask for a redraw after
// an internal visual change that did not touch their bounds.
type RedrawRequester interface {
	NeedsRedraw() bool
	ClearNeedsRedraw()
}

// Base provides the widget bookkeeping and no-op handlers. The zero value
// is visible, enabled, has empty bounds and no capabilities.
type Base struct {
	bounds      geometry.Bounds
	hidden      bool
	disabled    bool
	caps        Capability
	needsRedraw bool
}

// NewBase returns a Base with the given bounds and capabilities.
func NewBase(bounds geometry.Bounds, caps Capability) Base {
	return Base{bounds: bounds, caps: caps}
}

// Bounds returns the parent-relative bounds.
func (b *Base) Bounds() geometry.Bounds { return b.bounds }

// SetBounds stores new bounds. Call it through the store so the change is
// validated and redrawn.
func (b *Base) SetBounds(bounds geometry.Bounds) { b.bounds = bounds }

// Visible reports whether the widget is shown.
func (b *Base) Visible() bool { return !b.hidden }

// SetVisible shows or hides the widget.
func (b *Base) SetVisible(visible bool) { b.hidden = !visible }

// Enabled reports whether the widget takes input.
func (b *Base) Enabled() bool { return !b.disabled }

// SetEnabled enables or disables the widget.
func (b *Base) SetEnabled(enabled bool) { b.disabled = !enabled }

// Capabilities returns the declared capabilities.
func (b *Base) Capabilities() Capability { return b.caps }

// SetCapabilities replaces the declared capabilities.
func (b *Base) SetCapabilities(c Capability) { b.caps = c }

// Draw does nothing.
func (b *Base) Draw(ctx *render.Context, clip geometry.Bounds) {}

// HandleSystemEvent ignores the event.
func (b *Base) HandleSystemEvent(ev event.Event) bool { return false }

// HandleCustomEvent ignores the event.
func (b *Base) HandleCustomEvent(ev event.Event) {}

// MarkNeedsRedraw asks the scheduler to repaint this widget before the next
// present even though its bounds did not change.
func (b *Base) MarkNeedsRedraw() { b.needsRedraw = true }

// NeedsRedraw reports whether MarkNeedsRedraw was called since the last pass.
func (b *Base) NeedsRedraw() bool { return b.needsRedraw }

// ClearNeedsRedraw is called by the scheduler once the request is recorded.
func (b *Base) ClearNeedsRedraw() { b.needsRedraw = false }
