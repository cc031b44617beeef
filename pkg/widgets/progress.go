package widgets

import (
	"math"

	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/widget"
)

// ProgressChannel is the default custom event name a Progress listens on.
const ProgressChannel = "progress"

// Progress is a horizontal bar showing a value in [0, 1]. It also accepts
// custom events named Channel whose payload is a float64, so background
// work can report progress through the event dispatcher.
type Progress struct {
	widget.Base

	value   float64
	Channel string

	TrackColor render.Color
	BarColor   render.Color
}

// NewProgress returns a progress bar listening on ProgressChannel.
func NewProgress(value float64) *Progress {
	p := &Progress{
		Base:       widget.NewBase(geometry.Bounds{}, widget.Drawable|widget.CustomEvents),
		Channel:    ProgressChannel,
		TrackColor: render.RGB(0xE0, 0xE0, 0xE0),
		BarColor:   render.RGB(0x42, 0x85, 0xF4),
	}
	p.SetValue(value)
	return p
}

// Value returns the current value.
func (p *Progress) Value() float64 { return p.value }

// SetValue clamps v to [0, 1]. NaN counts as zero.
func (p *Progress) SetValue(v float64) {
	if math.IsNaN(v) {
		v = 0
	}
	v = min(max(v, 0), 1)
	if v != p.value {
		p.value = v
		p.MarkNeedsRedraw()
	}
}

// HandleCustomEvent implements widget.Widget.
func (p *Progress) HandleCustomEvent(ev event.Event) {
	if ev.Name != p.Channel {
		return
	}
	switch v := ev.Payload.(type) {
	case float64:
		p.SetValue(v)
	case float32:
		p.SetValue(float64(v))
	}
}

// Draw implements widget.Widget.
func (p *Progress) Draw(ctx *render.Context, clip geometry.Bounds) {
	size := p.Bounds().Size
	ctx.FillRect(geometry.FromSize(size), p.TrackColor)
	filled := int(math.Round(p.value * float64(size.Width)))
	if filled > 0 {
		ctx.FillRect(geometry.XYWH(0, 0, filled, size.Height), p.BarColor)
	}
}
