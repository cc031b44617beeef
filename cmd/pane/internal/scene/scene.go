// Package scene builds the widget tree shown by the demo and snapshot
// commands: two bordered panes side by side, a toggle row and a progress
// bar, laid out by stack containers that follow the window size.
package scene

import (
	"fmt"

	"github.com/go-drift/pane/pkg/engine"
	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/layout"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/widget"
	"github.com/go-drift/pane/pkg/widgets"
)

var (
	background = render.RGB(0xEE, 0xEE, 0xEE)
	paneFill   = render.RGB(0xFF, 0xFF, 0xFF)
	textColor  = render.RGB(0x20, 0x20, 0x20)
)

// Scene holds the widgets the commands interact with.
type Scene struct {
	Root     widget.ID
	Left     widget.ID
	Right    widget.ID
	Status   *widgets.Label
	Toggle   *widgets.Toggle
	Progress *widgets.Progress

	loop    *engine.Loop
	running bool
}

// Build adds the scene to l's store. Sizes are derived from m so the same
// tree works in pixels and in terminal cells.
func Build(l *engine.Loop, m render.TextMetrics) (*Scene, error) {
	s := l.Store()
	lay := l.Layout()
	line := max(m.MeasureText("M").Height, 1)
	gap := max(line/2, 1)
	border := max(line/6, 1)

	sc := &Scene{loop: l, running: true}
	var err error
	add := func(name string, w widget.Widget, parent widget.ID, h layout.Hint) widget.ID {
		if err != nil {
			return widget.NoID
		}
		var id widget.ID
		if id, err = s.AddNamed(name, w, parent); err == nil && parent != widget.NoID {
			err = lay.SetHint(id, h)
		}
		return id
	}

	sc.Root = add("root", widgets.NewBox(geometry.Bounds{}, background), widget.NoID, layout.Hint{})
	panes := add("panes", &widget.Base{}, sc.Root, layout.Stretch(1))
	for i, id := range []*widget.ID{&sc.Left, &sc.Right} {
		box := widgets.NewBox(geometry.Bounds{}, paneFill)
		box.SetBorder(render.ColorBlack, border)
		*id = add(fmt.Sprintf("widget%d", i+1), box, panes, layout.Stretch(1))
	}

	sc.Toggle = widgets.NewToggle(true, sc.setRunning)
	tsize := sc.Toggle.PreferredSize(m)
	caption := widgets.NewLabel("Running", textColor)
	sc.Status = widgets.NewLabel("", textColor)
	sc.Status.Align = widgets.AlignEnd

	controls := add("controls", &widget.Base{}, sc.Root, layout.Fixed(max(tsize.Height, line)))
	add("caption", caption, controls, layout.Fixed(caption.PreferredSize(m).Width))
	add("toggle", sc.Toggle, controls, layout.Fixed(tsize.Width).WithCross(tsize.Height))
	add("status", sc.Status, controls, layout.Stretch(1))

	sc.Progress = widgets.NewProgress(0)
	add("progress", sc.Progress, sc.Root, layout.Fixed(max(line/2, 1)))
	if err != nil {
		return nil, err
	}

	if err := lay.SetLayout(sc.Root, layout.Descriptor{
		Orientation: layout.Vertical,
		Spacing:     gap,
		Padding:     layout.Uniform(gap),
	}); err != nil {
		return nil, err
	}
	if err := lay.SetLayout(panes, layout.Descriptor{Orientation: layout.Horizontal, Spacing: gap}); err != nil {
		return nil, err
	}
	if err := lay.SetLayout(controls, layout.Descriptor{Orientation: layout.Horizontal, Spacing: gap}); err != nil {
		return nil, err
	}
	if err := l.FillWindow(sc.Root); err != nil {
		return nil, err
	}
	sc.updateStatus()
	return sc, nil
}

// Running reports whether the progress bar advances.
func (sc *Scene) Running() bool { return sc.running }

func (sc *Scene) setRunning(on bool) {
	sc.running = on
	sc.updateStatus()
}

func (sc *Scene) updateStatus() {
	state := "paused"
	if sc.running {
		state = "running"
	}
	sc.Status.SetText(fmt.Sprintf("%s %3.0f%%", state, sc.Progress.Value()*100))
}

// Advance moves the progress bar by step, wrapping at 1. It must run on the
// loop goroutine; use Post from elsewhere.
func (sc *Scene) Advance(step float64) {
	if !sc.running {
		return
	}
	next := sc.Progress.Value() + step
	if next > 1 {
		next = 0
	}
	sc.loop.Dispatcher().Dispatch(event.Event{
		Type:    event.Custom,
		Name:    sc.Progress.Channel,
		Payload: next,
	})
	sc.updateStatus()
}
