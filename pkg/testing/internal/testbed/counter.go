// Package testbed provides internal test widgets for the testing framework.
package testbed

import (
	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/widget"
)

// Counter counts the system events and draws it receives. It handles
// clicks and lets every other event bubble.
type Counter struct {
	widget.Base
	Events map[event.Type]int
	Draws  int
	Fill   render.Color
	// Local is the local position of the last positional event.
	Local geometry.Point
}

// NewCounter returns a drawable counter accepting system events.
func NewCounter(fill render.Color) *Counter {
	return &Counter{
		Base:   widget.NewBase(geometry.Bounds{}, widget.Drawable|widget.SystemEvents),
		Events: make(map[event.Type]int),
		Fill:   fill,
	}
}

// HandleSystemEvent implements widget.Widget.
func (c *Counter) HandleSystemEvent(ev event.Event) bool {
	c.Events[ev.Type]++
	if ev.Type.Positional() {
		c.Local = ev.Local
	}
	return ev.Type == event.Click
}

// Clicks returns the number of clicks received.
func (c *Counter) Clicks() int { return c.Events[event.Click] }

// Draw implements widget.Widget.
func (c *Counter) Draw(ctx *render.Context, clip geometry.Bounds) {
	c.Draws++
	ctx.FillRect(geometry.FromSize(c.Bounds().Size), c.Fill)
}
