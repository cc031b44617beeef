// Package render defines the rendering backend capability consumed by the
// redraw scheduler and the widget-local drawing context handed to widgets.
//
// All Canvas coordinates are screen coordinates. Every command carries the
// clip rectangle it must not draw outside of; backends are free to ignore
// commands whose clip is empty.
package render

import (
	"image"

	"github.com/go-drift/pane/pkg/geometry"
)

// Canvas executes draw commands against the current frame buffer.
type Canvas interface {
	// FillRect fills rect with c.
	FillRect(clip, rect geometry.Bounds, c Color)
	// Blit draws tex scaled into dst.
	Blit(clip, dst geometry.Bounds, tex image.Image)
	// DrawText draws a single line of text with its top-left corner at origin.
	DrawText(clip geometry.Bounds, origin geometry.Point, text string, c Color)
}

// TextMetrics supplies text measurements for layout sizing.
type TextMetrics interface {
	MeasureText(text string) geometry.Size
}

// Backend is a canvas that can also measure text.
type Backend interface {
	Canvas
	TextMetrics
}

// Presenter makes the finished frame visible. Only the main loop calls it,
// after a draw pass that drew something.
type Presenter interface {
	Present() error
}

// Resizer is implemented by backends that own a frame buffer sized to the
// window. The main loop calls Resize when the window size changes.
type Resizer interface {
	Resize(size geometry.Size)
}

// Context is the drawing surface a widget receives in Draw. Coordinates are
// local to the widget: (0,0) is the widget's top-left corner. Every command
// is clipped to the region the scheduler is repainting.
type Context struct {
	backend Backend
	origin  geometry.Point
	clip    geometry.Bounds
}

// NewContext returns a context translating local coordinates by origin and
// clipping to clip (both in screen coordinates).
func NewContext(backend Backend, origin geometry.Point, clip geometry.Bounds) *Context {
	return &Context{backend: backend, origin: origin, clip: clip}
}

// Origin returns the widget's screen origin.
func (c *Context) Origin() geometry.Point { return c.origin }

// Clip returns the clip rectangle in local coordinates.
func (c *Context) Clip() geometry.Bounds {
	return c.clip.Translate(geometry.Point{}.Sub(c.origin))
}

// FillRect fills a local rectangle.
func (c *Context) FillRect(rect geometry.Bounds, col Color) {
	c.backend.FillRect(c.clip, rect.Translate(c.origin), col)
}

// Blit draws tex scaled into a local rectangle.
func (c *Context) Blit(dst geometry.Bounds, tex image.Image) {
	c.backend.Blit(c.clip, dst.Translate(c.origin), tex)
}

// DrawText draws text with its top-left corner at a local point.
func (c *Context) DrawText(at geometry.Point, text string, col Color) {
	c.backend.DrawText(c.clip, at.Add(c.origin), text, col)
}

// StrokeRect draws a rectangle outline of the given width inside rect.
func (c *Context) StrokeRect(rect geometry.Bounds, width int, col Color) {
	if width <= 0 || rect.IsEmpty() {
		return
	}
	width = min(width, rect.Size.Width, rect.Size.Height)
	x, y, w, h := rect.Left(), rect.Top(), rect.Size.Width, rect.Size.Height
	c.FillRect(geometry.XYWH(x, y, w, width), col)
	c.FillRect(geometry.XYWH(x, y+h-width, w, width), col)
	c.FillRect(geometry.XYWH(x, y+width, width, h-2*width), col)
	c.FillRect(geometry.XYWH(x+w-width, y+width, width, h-2*width), col)
}

// MeasureText measures text with the backend's metrics.
func (c *Context) MeasureText(text string) geometry.Size {
	return c.backend.MeasureText(text)
}
