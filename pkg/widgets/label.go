package widgets

import (
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/widget"
)

// Align positions text horizontally inside a label.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Label draws a single line of text, vertically centered.
type Label struct {
	widget.Base

	text       string
	Color      render.Color
	Background render.Color
	Align      Align
}

// NewLabel returns a drawable label with empty bounds.
func NewLabel(text string, c render.Color) *Label {
	return &Label{Base: widget.NewBase(geometry.Bounds{}, widget.Drawable), text: text, Color: c}
}

// Text returns the label text.
func (l *Label) Text() string { return l.text }

// SetText replaces the text and requests a redraw when it changed.
func (l *Label) SetText(text string) {
	if l.text == text {
		return
	}
	l.text = text
	l.MarkNeedsRedraw()
}

// PreferredSize returns the size of the text under m.
func (l *Label) PreferredSize(m render.TextMetrics) geometry.Size {
	return m.MeasureText(l.text)
}

// Draw implements widget.Widget.
func (l *Label) Draw(ctx *render.Context, clip geometry.Bounds) {
	size := l.Bounds().Size
	if l.Background.Alpha8() != 0 {
		ctx.FillRect(geometry.FromSize(size), l.Background)
	}
	if l.text == "" || l.Color.Alpha8() == 0 {
		return
	}
	text := ctx.MeasureText(l.text)
	at := geometry.Point{Y: (size.Height - text.Height) / 2}
	switch l.Align {
	case AlignCenter:
		at.X = (size.Width - text.Width) / 2
	case AlignEnd:
		at.X = size.Width - text.Width
	}
	ctx.DrawText(at, l.text, l.Color)
}
