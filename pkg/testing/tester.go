package testing

import (
	"testing"

	"github.com/go-drift/pane/pkg/engine"
	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

const (
	// DefaultTestWidth is the default window width.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default window height.
	DefaultTestHeight = 600
)

// Tester runs a store through the engine loop with a queued event source,
// a recording backend and a fake clock.
type Tester struct {
	store    *store.Store
	queue    *event.Queue
	recorder *render.Recorder
	clock    *FakeClock
	loop     *engine.Loop
	last     engine.FrameSample
	pointer  geometry.Point

	errs       []*errors.WidgetError
	panics     []*errors.PanicError
	prevErrors errors.ErrorHandler
}

// NewTester creates a tester with an 800x600 window. It installs an error
// handler that collects reports; call Cleanup to restore the previous
// handler, or use NewTesterWithT.
func NewTester(opts ...engine.Options) *Tester {
	var o engine.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	t := &Tester{
		store:    store.New(),
		queue:    &event.Queue{},
		recorder: &render.Recorder{},
		clock:    NewFakeClock(),
	}
	o.Source = t.queue
	o.Backend = t.recorder
	o.Now = t.clock.Now
	if o.WindowSize.IsEmpty() {
		o.WindowSize = geometry.Size{Width: DefaultTestWidth, Height: DefaultTestHeight}
	}
	t.loop = engine.New(t.store, o)
	t.prevErrors = errors.SetHandler(t)
	return t
}

// NewTesterWithT creates a tester that cleans up via t.Cleanup().
func NewTesterWithT(tb testing.TB, opts ...engine.Options) *Tester {
	tester := NewTester(opts...)
	tb.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup restores the error handler that was active before NewTester.
func (t *Tester) Cleanup() {
	errors.SetHandler(t.prevErrors)
}

// HandleError implements errors.ErrorHandler.
func (t *Tester) HandleError(err *errors.WidgetError) { t.errs = append(t.errs, err) }

// HandlePanic implements errors.ErrorHandler.
func (t *Tester) HandlePanic(err *errors.PanicError) { t.panics = append(t.panics, err) }

// Errors returns the errors reported since the tester was created.
func (t *Tester) Errors() []*errors.WidgetError { return t.errs }

// Panics returns the recovered panics reported since the tester was created.
func (t *Tester) Panics() []*errors.PanicError { return t.panics }

// Store returns the widget store.
func (t *Tester) Store() *store.Store { return t.store }

// Loop returns the engine loop.
func (t *Tester) Loop() *engine.Loop { return t.loop }

// Clock returns the fake clock.
func (t *Tester) Clock() *FakeClock { return t.clock }

// Recorder returns the recording backend.
func (t *Tester) Recorder() *render.Recorder { return t.recorder }

// LastFrame returns the sample of the most recent Pump.
func (t *Tester) LastFrame() engine.FrameSample { return t.last }

// Add adds w under parent and sets its bounds.
func (t *Tester) Add(w widget.Widget, parent widget.ID, bounds geometry.Bounds) (widget.ID, error) {
	w.SetBounds(bounds)
	return t.store.Add(w, parent)
}

// MustAdd is Add that panics on error.
func (t *Tester) MustAdd(w widget.Widget, parent widget.ID, bounds geometry.Bounds) widget.ID {
	id, err := t.Add(w, parent, bounds)
	if err != nil {
		panic(err)
	}
	return id
}

// Send queues raw events for the next frame.
func (t *Tester) Send(events ...event.Event) {
	t.queue.Push(events...)
}

// Pump runs one frame and returns its sample. Draw commands from earlier
// frames are discarded first.
func (t *Tester) Pump() (engine.FrameSample, error) {
	t.recorder.Reset()
	sample, err := t.loop.Tick()
	t.last = sample
	return sample, err
}

// PumpFrames runs n frames and returns the last sample.
func (t *Tester) PumpFrames(n int) (engine.FrameSample, error) {
	var (
		sample engine.FrameSample
		err    error
	)
	for range n {
		if sample, err = t.Pump(); err != nil {
			return sample, err
		}
	}
	return sample, nil
}

// Commands returns the draw commands of the last frame.
func (t *Tester) Commands() []render.Command {
	return t.recorder.Commands()
}

// Presents returns how many frames were presented.
func (t *Tester) Presents() int { return t.recorder.Presents() }
