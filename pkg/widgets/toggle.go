package widgets

import (
	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/widget"
)

// Toggle is an on/off switch flipped by a left click.
type Toggle struct {
	widget.Base

	on      bool
	hovered bool

	// OnChanged is called after every flip with the new value.
	OnChanged func(on bool)

	ActiveColor   render.Color
	InactiveColor render.Color
	ThumbColor    render.Color
	// HoverColor outlines the track while the pointer is over it.
	HoverColor render.Color
}

// NewToggle returns a toggle with the default palette.
func NewToggle(on bool, onChanged func(bool)) *Toggle {
	return &Toggle{
		Base:          widget.NewBase(geometry.Bounds{}, widget.Drawable|widget.SystemEvents),
		on:            on,
		OnChanged:     onChanged,
		ActiveColor:   render.RGB(0x34, 0xA8, 0x53),
		InactiveColor: render.RGB(0x9E, 0x9E, 0x9E),
		ThumbColor:    render.ColorWhite,
		HoverColor:    render.RGB(0x42, 0x85, 0xF4),
	}
}

// On reports the current value.
func (t *Toggle) On() bool { return t.on }

// Hovered reports whether the pointer is over the toggle.
func (t *Toggle) Hovered() bool { return t.hovered }

// SetOn sets the value without calling OnChanged.
func (t *Toggle) SetOn(on bool) {
	if t.on != on {
		t.on = on
		t.MarkNeedsRedraw()
	}
}

// PreferredSize is two text lines wide and one high.
func (t *Toggle) PreferredSize(m render.TextMetrics) geometry.Size {
	h := max(m.MeasureText("M").Height, 1)
	return geometry.Size{Width: 2 * h, Height: h}
}

// HandleSystemEvent implements widget.Widget.
func (t *Toggle) HandleSystemEvent(ev event.Event) bool {
	switch ev.Type {
	case event.MouseEnter, event.MouseExit:
		t.hovered = ev.Type == event.MouseEnter
		t.MarkNeedsRedraw()
		return true
	case event.MouseDown, event.MouseUp:
		return ev.Button == event.ButtonLeft
	case event.Click:
		if ev.Button != event.ButtonLeft {
			return false
		}
		t.on = !t.on
		t.MarkNeedsRedraw()
		if t.OnChanged != nil {
			t.OnChanged(t.on)
		}
		return true
	}
	return false
}

// Draw implements widget.Widget.
func (t *Toggle) Draw(ctx *render.Context, clip geometry.Bounds) {
	size := t.Bounds().Size
	track := t.InactiveColor
	if t.on {
		track = t.ActiveColor
	}
	ctx.FillRect(geometry.FromSize(size), track)

	inset := min(size.Width, size.Height) / 8
	side := min(size.Height-2*inset, size.Width/2)
	x := inset
	if t.on {
		x = size.Width - inset - side
	}
	ctx.FillRect(geometry.XYWH(x, inset, side, side), t.ThumbColor)

	if t.hovered {
		ctx.StrokeRect(geometry.FromSize(size), 1, t.HoverColor)
	}
}
