package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports frame loop statistics to Prometheus.
type Metrics struct {
	Frames          prometheus.Counter
	FramesPresented prometheus.Counter
	FramesDropped   prometheus.Counter
	Events          prometheus.Counter
	Clicks          prometheus.Counter
	Draws           prometheus.Counter
	Panics          prometheus.Counter
	LayoutOverflows prometheus.Counter
	FrameDuration   prometheus.Histogram
	Widgets         prometheus.Gauge
	DirtyRects      prometheus.Gauge
}

// NewMetrics registers the loop metrics on reg. A nil reg registers on the
// default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace: "pane",
			Subsystem: "loop",
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{
			Namespace: "pane",
			Subsystem: "loop",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		Frames:          counter("frames_total", "Total number of ticks run."),
		FramesPresented: counter("frames_presented_total", "Ticks that presented a new frame."),
		FramesDropped:   counter("frames_dropped_total", "Ticks slower than the drop threshold."),
		Events:          counter("events_total", "Events dispatched, including the per-tick timer event."),
		Clicks:          counter("clicks_total", "Clicks synthesized by the dispatcher."),
		Draws:           counter("draws_total", "Widget draw invocations."),
		Panics:          counter("widget_panics_total", "Widget handlers or draws that panicked."),
		LayoutOverflows: counter("layout_overflows_total", "Containers whose fixed children did not fit."),
		FrameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pane",
			Subsystem: "loop",
			Name:      "frame_duration_seconds",
			Help:      "Time spent in one tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to ~256ms
		}),
		Widgets:    gauge("widgets", "Widgets in the store."),
		DirtyRects: gauge("dirty_rects", "Dirty rectangles repainted by the last draw pass."),
	}
}

func (m *Metrics) observe(s FrameSample, dropped bool) {
	if m == nil {
		return
	}
	m.Frames.Inc()
	if s.Presented {
		m.FramesPresented.Inc()
	}
	if dropped {
		m.FramesDropped.Inc()
	}
	m.Events.Add(float64(s.Counts.Events))
	m.Clicks.Add(float64(s.Counts.Clicks))
	m.Draws.Add(float64(s.Counts.Draws))
	m.Panics.Add(float64(s.Counts.Panics))
	m.LayoutOverflows.Add(float64(s.Counts.Overflowed))
	m.FrameDuration.Observe(s.FrameMs / 1000)
	m.Widgets.Set(float64(s.Counts.Widgets))
	m.DirtyRects.Set(float64(s.Counts.DirtyRects))
}
