package engine

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-drift/pane/pkg/config"
	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/widget"
)

// treeTimeout bounds how long /tree waits for the loop goroutine.
const treeTimeout = 2 * time.Second

// maxTreeDepth limits recursion depth when serializing the forest.
const maxTreeDepth = 500

// DebugServer serves frame traces, the widget forest and Prometheus
// metrics of a Loop over HTTP.
//
// Endpoints:
//
//	/health   liveness
//	/frames   frame trace (query: limit, min_ms, dispatch_ms, layout_ms, draw_ms, presented)
//	/tree     widget forest with screen bounds and layout descriptors
//	/tree/ID  the subtree rooted at one widget
//	/metrics  Prometheus exposition of the gatherer
type DebugServer struct {
	loop     *Loop
	gatherer prometheus.Gatherer

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// WidgetTreeNode is one widget in the /tree response.
type WidgetTreeNode struct {
	ID           uint64           `json:"id"`
	Type         string           `json:"type"`
	Name         string           `json:"name,omitempty"`
	Bounds       [4]int           `json:"bounds"`
	Screen       [4]int           `json:"screen"`
	Visible      bool             `json:"visible"`
	Enabled      bool             `json:"enabled"`
	Capabilities string           `json:"capabilities"`
	Layout       string           `json:"layout,omitempty"`
	Hint         string           `json:"hint,omitempty"`
	Children     []WidgetTreeNode `json:"children,omitempty"`
}

// NewDebugRegistry returns a registry with the Go runtime and process
// collectors installed, suitable for NewMetrics and NewDebugServer.
func NewDebugRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewDebugServer returns a server for l. A nil gatherer disables /metrics.
func NewDebugServer(l *Loop, gatherer prometheus.Gatherer) *DebugServer {
	return &DebugServer{loop: l, gatherer: gatherer}
}

// ServeDebug starts a debug server when cfg.Debug.Addr is set. It returns
// nil and no error when the server is disabled.
func ServeDebug(cfg *config.Config, l *Loop, gatherer prometheus.Gatherer) (*DebugServer, error) {
	if cfg.Debug.Addr == "" {
		return nil, nil
	}
	d := NewDebugServer(l, gatherer)
	if _, err := d.Start(cfg.Debug.Addr); err != nil {
		return nil, err
	}
	return d, nil
}

// Handler returns the HTTP handler serving all endpoints.
func (d *DebugServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", d.handleHealth)
	r.Get("/frames", d.handleFrames)
	r.Get("/tree", d.handleTree)
	r.Get("/tree/{id}", d.handleSubtree)
	if d.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Start listens on addr and serves in the background. It returns the bound
// port, which is useful with ":0". If serving fails later, the error goes to
// errors.Report and the server can be started again.
func (d *DebugServer) Start(addr string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listener != nil {
		return d.listener.Addr().(*net.TCPAddr).Port, nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}
	server := &http.Server{Handler: d.Handler(), ReadHeaderTimeout: 5 * time.Second}
	d.server, d.listener = server, listener

	go func() {
		err := server.Serve(listener)
		if err == nil || stderrors.Is(err, http.ErrServerClosed) {
			return
		}
		d.mu.Lock()
		if d.server == server {
			d.server, d.listener = nil, nil
		}
		d.mu.Unlock()
		errors.Report(errors.Wrap("engine.DebugServer", errors.KindUnknown, 0, err))
	}()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Stop gracefully shuts the server down.
func (d *DebugServer) Stop(ctx context.Context) error {
	d.mu.Lock()
	server := d.server
	d.server, d.listener = nil, nil
	d.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (d *DebugServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (d *DebugServer) handleFrames(w http.ResponseWriter, r *http.Request) {
	resp := d.loop.Trace().Snapshot()
	applyFrameFilters(r, &resp)
	writeJSON(w, resp)
}

// handleTree serializes the forest on the loop goroutine, since the store
// is only safe to read there.
func (d *DebugServer) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, ok := onLoop(r.Context(), d.loop, d.serializeForest)
	if !ok {
		http.Error(w, "loop is not running", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, tree)
}

func (d *DebugServer) handleSubtree(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid widget id", http.StatusBadRequest)
		return
	}
	node, ok := onLoop(r.Context(), d.loop, func() *WidgetTreeNode {
		if n, found := d.serialize(widget.ID(id), 0); found {
			return &n
		}
		return nil
	})
	switch {
	case !ok:
		http.Error(w, "loop is not running", http.StatusServiceUnavailable)
	case node == nil:
		http.Error(w, "unknown widget", http.StatusNotFound)
	default:
		writeJSON(w, node)
	}
}

// onLoop runs fn on the loop goroutine and waits for its result. It
// reports false when the loop does not run it before ctx ends or
// treeTimeout passes.
func onLoop[T any](ctx context.Context, l *Loop, fn func() T) (T, bool) {
	result := make(chan T, 1)
	l.Post(func() { result <- fn() })

	ctx, cancel := context.WithTimeout(ctx, treeTimeout)
	defer cancel()
	select {
	case v := <-result:
		return v, true
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

func (d *DebugServer) serializeForest() []WidgetTreeNode {
	out := []WidgetTreeNode{}
	for _, r := range d.loop.Store().Roots() {
		if node, ok := d.serialize(r, 0); ok {
			out = append(out, node)
		}
	}
	return out
}

func (d *DebugServer) serialize(id widget.ID, depth int) (WidgetTreeNode, bool) {
	s := d.loop.Store()
	w, err := s.Get(id)
	if err != nil || depth > maxTreeDepth {
		return WidgetTreeNode{}, false
	}
	name, _ := s.Name(id)
	screen, _ := s.ScreenBounds(id)
	node := WidgetTreeNode{
		ID:           uint64(id),
		Type:         fmt.Sprintf("%T", w),
		Name:         name,
		Bounds:       bounds4(w.Bounds()),
		Screen:       bounds4(screen),
		Visible:      w.Visible(),
		Enabled:      w.Enabled(),
		Capabilities: w.Capabilities().String(),
	}
	lay := d.loop.Layout()
	if desc, ok := lay.Layout(id); ok {
		node.Layout = fmt.Sprintf("%s spacing=%d", desc.Orientation, desc.Spacing)
	}
	if parent, _ := s.ParentOf(id); parent != widget.NoID {
		if _, ok := lay.Layout(parent); ok {
			node.Hint = lay.HintOf(id).String()
		}
	}
	children, _ := s.ChildrenOf(id)
	for _, c := range children {
		if child, ok := d.serialize(c, depth+1); ok {
			node.Children = append(node.Children, child)
		}
	}
	return node, true
}

func applyFrameFilters(r *http.Request, resp *FrameTimeline) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var filters []func(FrameSample) bool
	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.FrameMs >= v })
	}
	if v := parseFloatQuery(r, "dispatch_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.DispatchMs >= v })
	}
	if v := parseFloatQuery(r, "layout_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.LayoutMs >= v })
	}
	if v := parseFloatQuery(r, "draw_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.DrawMs >= v })
	}
	if value := r.URL.Query().Get("presented"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			filters = append(filters, func(s FrameSample) bool { return s.Presented == parsed })
		}
	}

	if len(filters) > 0 {
		filtered := make([]FrameSample, 0, len(resp.Samples))
	outer:
		for _, sample := range resp.Samples {
			for _, f := range filters {
				if !f(sample) {
					continue outer
				}
			}
			filtered = append(filtered, sample)
		}
		resp.Samples = filtered
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func bounds4(b geometry.Bounds) [4]int {
	return [4]int{b.Left(), b.Top(), b.Size.Width, b.Size.Height}
}
