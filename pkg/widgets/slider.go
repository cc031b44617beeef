package widgets

import (
	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/widget"
)

// SliderOrientation is the axis a Slider moves along.
type SliderOrientation int

const (
	SliderHorizontal SliderOrientation = iota
	// SliderVertical has Min at the top.
	SliderVertical
)

// Slider selects an integer in [Min, Max]. A left press jumps the thumb
// under the pointer and dragging moves it; the wheel steps the value.
type Slider struct {
	widget.Base

	Min, Max    int
	Orientation SliderOrientation

	value    int
	dragging bool

	// OnChanged is called with the new value whenever user input changes it.
	OnChanged func(value int)

	Background  render.Color
	TrackColor  render.Color
	ThumbColor  render.Color
	ThumbBorder render.Color
}

// NewSlider returns a slider over [lo, hi] starting at value.
func NewSlider(lo, hi, value int, o SliderOrientation, onChanged func(int)) *Slider {
	if hi < lo {
		lo, hi = hi, lo
	}
	s := &Slider{
		Base:        widget.NewBase(geometry.Bounds{}, widget.Drawable|widget.SystemEvents),
		Min:         lo,
		Max:         hi,
		Orientation: o,
		OnChanged:   onChanged,
		TrackColor:  render.RGB(0xC0, 0xC0, 0xC0),
		ThumbColor:  render.ColorWhite,
		ThumbBorder: render.ColorBlack,
	}
	s.value = s.clamp(value)
	return s
}

// Value returns the current value.
func (s *Slider) Value() int { return s.value }

// Dragging reports whether a left press on the slider is outstanding.
func (s *Slider) Dragging() bool { return s.dragging }

// SetValue clamps v into range and sets it without calling OnChanged.
func (s *Slider) SetValue(v int) {
	if v = s.clamp(v); v != s.value {
		s.value = v
		s.MarkNeedsRedraw()
	}
}

func (s *Slider) clamp(v int) int {
	return min(max(v, s.Min), s.Max)
}

// axis returns the main-axis length and cross-axis length of the slider.
func (s *Slider) axis() (length, cross int) {
	size := s.Bounds().Size
	if s.Orientation == SliderVertical {
		return size.Height, size.Width
	}
	return size.Width, size.Height
}

// valueAt maps a widget-local point to a value; the last pixel is Max.
func (s *Slider) valueAt(p geometry.Point) int {
	length, _ := s.axis()
	pos := p.X
	if s.Orientation == SliderVertical {
		pos = p.Y
	}
	if length <= 1 {
		return s.Min
	}
	return s.clamp(s.Min + pos*(s.Max-s.Min)/(length-1))
}

func (s *Slider) change(v int) {
	if v = s.clamp(v); v == s.value {
		return
	}
	s.value = v
	s.MarkNeedsRedraw()
	if s.OnChanged != nil {
		s.OnChanged(v)
	}
}

// HandleSystemEvent implements widget.Widget.
func (s *Slider) HandleSystemEvent(ev event.Event) bool {
	switch ev.Type {
	case event.MouseDown:
		if ev.Button != event.ButtonLeft {
			return false
		}
		s.dragging = true
		s.change(s.valueAt(ev.Local))
		return true
	case event.MouseMove:
		if !s.dragging {
			return false
		}
		s.change(s.valueAt(ev.Local))
		return true
	case event.MouseUp:
		if ev.Button != event.ButtonLeft {
			return false
		}
		s.dragging = false
		return true
	case event.MouseScroll:
		step := ev.Scroll.X
		if s.Orientation == SliderVertical {
			step = -ev.Scroll.Y
		}
		s.change(s.value + step)
		return step != 0
	}
	return false
}

// thumb returns the widget-local thumb rectangle. The thumb is square with
// the cross-axis size, or the whole length when the slider is shorter.
func (s *Slider) thumb() geometry.Bounds {
	length, cross := s.axis()
	side := min(cross, length)
	start := 0
	if span := s.Max - s.Min; span > 0 {
		center := (s.value - s.Min) * length / span
		start = min(max(center-side/2, 0), length-side)
	}
	if s.Orientation == SliderVertical {
		return geometry.XYWH(0, start, cross, side)
	}
	return geometry.XYWH(start, 0, side, cross)
}

// Draw implements widget.Widget.
func (s *Slider) Draw(ctx *render.Context, clip geometry.Bounds) {
	size := s.Bounds().Size
	if s.Background.Alpha8() != 0 {
		ctx.FillRect(geometry.FromSize(size), s.Background)
	}
	length, cross := s.axis()
	side := min(cross, length)
	thick := min(3, cross)
	if s.Orientation == SliderVertical {
		ctx.FillRect(geometry.XYWH((cross-thick)/2, side/2, thick, length-side), s.TrackColor)
	} else {
		ctx.FillRect(geometry.XYWH(side/2, (cross-thick)/2, length-side, thick), s.TrackColor)
	}
	t := s.thumb()
	ctx.FillRect(t, s.ThumbColor)
	ctx.StrokeRect(t, 1, s.ThumbBorder)
}
