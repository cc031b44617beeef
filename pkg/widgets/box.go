package widgets

import (
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/widget"
)

// Box is a filled rectangle with an optional border. It is the usual
// container for laid-out children.
type Box struct {
	widget.Base

	// Fill is the background color. Zero means no fill.
	Fill render.Color
	// BorderColor is the outline color. Zero means no border.
	BorderColor render.Color
	// BorderWidth is the outline width drawn inside the bounds.
	BorderWidth int
}

// NewBox returns a drawable box.
func NewBox(bounds geometry.Bounds, fill render.Color) *Box {
	return &Box{Base: widget.NewBase(bounds, widget.Drawable), Fill: fill}
}

// SetFill changes the background color.
func (b *Box) SetFill(c render.Color) {
	if b.Fill != c {
		b.Fill = c
		b.MarkNeedsRedraw()
	}
}

// SetBorder changes the outline.
func (b *Box) SetBorder(c render.Color, width int) {
	if b.BorderColor != c || b.BorderWidth != width {
		b.BorderColor, b.BorderWidth = c, width
		b.MarkNeedsRedraw()
	}
}

// Draw implements widget.Widget.
func (b *Box) Draw(ctx *render.Context, clip geometry.Bounds) {
	local := geometry.FromSize(b.Bounds().Size)
	if b.Fill.Alpha8() != 0 {
		ctx.FillRect(local, b.Fill)
	}
	if b.BorderColor.Alpha8() != 0 {
		ctx.StrokeRect(local, b.BorderWidth, b.BorderColor)
	}
}
