// Package engine drives the frame loop: it drains input, dispatches events,
// flushes layout, runs the draw pass and presents the result.
//
// The core components are single-threaded. A Loop owns the goroutine that
// ticks them; Post is the only entry point that may be called from other
// goroutines.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/go-drift/pane/pkg/config"
	"github.com/go-drift/pane/pkg/dispatch"
	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/layout"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/scheduler"
	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

// DefaultInterval is the tick interval used when Options.Interval is zero.
const DefaultInterval = 16 * time.Millisecond

// Options configures a Loop.
type Options struct {
	// Source supplies platform events. Nil means no input.
	Source event.Source
	// Backend receives draw commands. Required.
	Backend render.Backend
	// Presenter shows finished frames. When nil and Backend implements
	// render.Presenter, the backend is used.
	Presenter render.Presenter
	// WindowSize is the initial window size applied to FillWindow roots.
	WindowSize geometry.Size

	Interval      time.Duration
	TraceSamples  int
	DropThreshold time.Duration
	Scheduler     []scheduler.Option
	// Metrics, when set, receives every frame sample.
	Metrics *Metrics
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Loop ties the store, layout engine, dispatcher and scheduler to an input
// source and a rendering backend.
type Loop struct {
	store      *store.Store
	layout     *layout.Engine
	dispatcher *dispatch.Dispatcher
	scheduler  *scheduler.Scheduler

	source    event.Source
	backend   render.Backend
	presenter render.Presenter
	trace     *FrameTraceBuffer
	metrics   *Metrics
	interval  time.Duration
	now       func() time.Time

	postMu sync.Mutex
	posted []func()
	wake   chan struct{}

	window geometry.Size
	fill   []widget.ID
	closed bool
	frame  uint64
}

// New builds a loop around s.
func New(s *store.Store, opts Options) *Loop {
	l := &Loop{
		store:      s,
		layout:     layout.NewEngine(s),
		dispatcher: dispatch.New(s),
		scheduler:  scheduler.New(s, opts.Backend, opts.Scheduler...),
		source:     opts.Source,
		backend:    opts.Backend,
		presenter:  opts.Presenter,
		trace:      NewFrameTraceBuffer(opts.TraceSamples, opts.DropThreshold),
		metrics:    opts.Metrics,
		interval:   opts.Interval,
		now:        opts.Now,
		wake:       make(chan struct{}, 1),
		window:     opts.WindowSize,
	}
	if l.presenter == nil {
		l.presenter, _ = opts.Backend.(render.Presenter)
	}
	if l.interval <= 0 {
		l.interval = DefaultInterval
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// NewFromConfig builds a loop whose window, frame timing and redraw options
// come from cfg. Fields already set in opts take precedence.
func NewFromConfig(cfg *config.Config, s *store.Store, opts Options) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.WindowSize.IsEmpty() {
		opts.WindowSize = geometry.Size{Width: cfg.Window.Width, Height: cfg.Window.Height}
	}
	if opts.Interval == 0 {
		opts.Interval = cfg.Frame.Interval
	}
	if opts.TraceSamples == 0 {
		opts.TraceSamples = cfg.Frame.TraceSamples
	}
	if opts.DropThreshold == 0 {
		opts.DropThreshold = cfg.Frame.DropThreshold
	}

	sched := []scheduler.Option{scheduler.WithMaxRects(cfg.Redraw.MaxDirtyRects)}
	if bg, ok, _ := cfg.BackgroundColor(); ok {
		sched = append(sched, scheduler.WithBackground(bg))
	}
	veil, _ := cfg.VeilColor()
	sched = append(sched, scheduler.WithDisabledVeil(veil))
	opts.Scheduler = append(sched, opts.Scheduler...)

	if cfg.Errors.Verbose {
		errors.SetHandler(&errors.LogHandler{Verbose: true})
	}
	return New(s, opts), nil
}

// Store returns the widget store.
func (l *Loop) Store() *store.Store { return l.store }

// Layout returns the layout engine.
func (l *Loop) Layout() *layout.Engine { return l.layout }

// Dispatcher returns the event dispatcher.
func (l *Loop) Dispatcher() *dispatch.Dispatcher { return l.dispatcher }

// Scheduler returns the redraw scheduler.
func (l *Loop) Scheduler() *scheduler.Scheduler { return l.scheduler }

// Trace returns the frame trace buffer.
func (l *Loop) Trace() *FrameTraceBuffer { return l.trace }

// Closed reports whether a Close event has been received.
func (l *Loop) Closed() bool { return l.closed }

// WindowSize returns the last known window size.
func (l *Loop) WindowSize() geometry.Size { return l.window }

// Post schedules fn to run on the loop goroutine at the start of the next
// tick. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.postMu.Lock()
	l.posted = append(l.posted, fn)
	l.postMu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) drainPosted() []func() {
	l.postMu.Lock()
	callbacks := l.posted
	l.posted = nil
	l.postMu.Unlock()
	return callbacks
}

// FillWindow makes root id track the window size: its bounds become
// (0,0)+window on every Resize event.
func (l *Loop) FillWindow(id widget.ID) error {
	parent, err := l.store.ParentOf(id)
	if err != nil {
		return err
	}
	if parent != widget.NoID {
		return errors.New("engine.FillWindow", errors.KindInvalidParent, uint64(parent))
	}
	l.fill = append(l.fill, id)
	if !l.window.IsEmpty() {
		return l.store.SetBounds(id, geometry.FromSize(l.window))
	}
	return nil
}

func (l *Loop) resize(size geometry.Size) {
	if !size.Valid() {
		return
	}
	l.window = size
	if r, ok := l.backend.(render.Resizer); ok {
		r.Resize(size)
	}
	live := l.fill[:0]
	for _, id := range l.fill {
		if err := l.store.SetBounds(id, geometry.FromSize(size)); err == nil {
			live = append(live, id)
		}
	}
	l.fill = live
	// A resized frame buffer has lost its previous contents.
	l.scheduler.InvalidateAll()
}

// Tick runs one frame: posted callbacks, input, the Tick event, layout,
// the draw pass, and presentation when something was drawn. The returned
// error comes from the presenter.
func (l *Loop) Tick() (FrameSample, error) {
	start := l.now()
	l.frame++
	sample := FrameSample{Frame: l.frame, Timestamp: start.UnixMilli()}

	phase := start
	posted := l.drainPosted()
	for _, fn := range posted {
		l.runPosted(fn, &sample)
	}
	sample.Counts.Posted = len(posted)
	phase = l.lap(phase, &sample.Phases.PostedMs)

	var ds dispatch.Stats
	if l.source != nil {
		for ev := range l.source.Poll() {
			if ev.Timestamp.IsZero() {
				ev.Timestamp = start
			}
			switch ev.Type {
			case event.Resize:
				l.resize(ev.Size)
			case event.Close:
				l.closed = true
			}
			ds.Add(l.dispatcher.Dispatch(ev))
		}
	}
	ds.Add(l.dispatcher.Dispatch(event.Event{Type: event.Tick, Timestamp: start}))
	sample.Counts.Events = ds.Events
	sample.Counts.Deliveries = ds.Deliveries
	sample.Counts.Clicks = ds.Clicks
	sample.Counts.Panics += ds.Panics
	phase = l.lap(phase, &sample.Phases.DispatchMs)

	ls := l.layout.Flush()
	sample.Counts.Containers = ls.Containers
	sample.Counts.Overflowed = len(ls.Overflowed)
	phase = l.lap(phase, &sample.Phases.LayoutMs)

	ss := l.scheduler.DrawPass()
	sample.Counts.Draws = ss.Draws
	sample.Counts.DirtyRects = ss.Rects
	sample.Counts.DirtyArea = ss.Area
	sample.Counts.Panics += ss.Panics
	phase = l.lap(phase, &sample.Phases.DrawMs)

	var err error
	if ss.Rects > 0 && l.presenter != nil {
		if err = l.presenter.Present(); err == nil {
			sample.Presented = true
		}
	}
	end := l.now()
	sample.Phases.PresentMs = durationToMillis(end.Sub(phase))

	sample.Counts.Widgets = l.store.Len()
	frameDuration := end.Sub(start)
	sample.FrameMs = durationToMillis(frameDuration)
	l.trace.Add(sample, frameDuration)
	l.metrics.observe(sample, frameDuration > l.trace.Threshold())

	if err != nil {
		return sample, errors.Wrap("engine.Present", errors.KindUnknown, 0, err)
	}
	return sample, nil
}

func (l *Loop) lap(since time.Time, into *float64) time.Time {
	now := l.now()
	*into = durationToMillis(now.Sub(since))
	return now
}

func (l *Loop) runPosted(fn func(), sample *FrameSample) {
	defer errors.RecoverWithCallback("engine.Post", 0, func(any) {
		sample.Counts.Panics++
	})
	fn()
}

// Run ticks at the configured interval until ctx is done, a Close event
// arrives, or presentation fails. Post wakes the loop early.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		if _, err := l.Tick(); err != nil {
			return err
		}
		if l.closed {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-l.wake:
		}
	}
}
