package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/pane/pkg/config"
	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/layout"
	"github.com/go-drift/pane/pkg/widget"
)

// waitForServer polls the health endpoint until ready or timeout.
func waitForServer(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost:%d/health", port)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

// waitForServerDown polls until the server stops responding or timeout.
func waitForServerDown(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost:%d/health", port)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err != nil {
			return nil
		}
		resp.Body.Close()
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("server still running after %v", timeout)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDebugServer_StartStop(t *testing.T) {
	h := newHarness(t, Options{})
	d := NewDebugServer(h.loop, nil)

	port, err := d.Start("localhost:0")
	if err != nil {
		t.Fatalf("failed to start debug server: %v", err)
	}
	if err := waitForServer(port, 2*time.Second); err != nil {
		t.Fatalf("server not ready: %v", err)
	}

	again, err := d.Start("localhost:0")
	if err != nil || again != port {
		t.Errorf("second Start = %d, %v; want %d", again, err, port)
	}

	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := waitForServerDown(port, 2*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

type serveErrors chan *errors.WidgetError

func (c serveErrors) HandleError(err *errors.WidgetError) { c <- err }
func (c serveErrors) HandlePanic(*errors.PanicError)      {}

func TestDebugServer_ServeFailureIsReported(t *testing.T) {
	reported := make(serveErrors, 1)
	prev := errors.SetHandler(reported)
	t.Cleanup(func() { errors.SetHandler(prev) })

	h := newHarness(t, Options{})
	d := NewDebugServer(h.loop, nil)
	if _, err := d.Start("localhost:0"); err != nil {
		t.Fatal(err)
	}
	d.mu.Lock()
	listener := d.listener
	d.mu.Unlock()
	listener.Close()

	select {
	case err := <-reported:
		if err.Op != "engine.DebugServer" || err.Err == nil {
			t.Errorf("reported %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve failure was not reported")
	}

	port, err := d.Start("localhost:0")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := waitForServer(port, 2*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestDebugServer_Health(t *testing.T) {
	h := newHarness(t, Options{})
	handler := NewDebugServer(h.loop, nil).Handler()

	rec := get(t, handler, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}

	post := httptest.NewRecorder()
	handler.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/health", nil))
	if post.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", post.Code)
	}
}

func TestDebugServer_FramesFilters(t *testing.T) {
	h := newHarness(t, Options{})
	h.add(t, newCounter(geometry.XYWH(0, 0, 5, 5)), widget.NoID)
	for range 4 {
		h.tick(t)
	}
	handler := NewDebugServer(h.loop, nil).Handler()

	decode := func(target string) FrameTimeline {
		t.Helper()
		rec := get(t, handler, target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		var tl FrameTimeline
		if err := json.Unmarshal(rec.Body.Bytes(), &tl); err != nil {
			t.Fatalf("%s: %v", target, err)
		}
		return tl
	}

	if got := len(decode("/frames").Samples); got != 4 {
		t.Errorf("samples = %d, want 4", got)
	}

	limited := decode("/frames?limit=2")
	if len(limited.Samples) != 2 || limited.Samples[1].Frame != 4 {
		t.Errorf("limit kept %+v", limited.Samples)
	}

	presented := decode("/frames?presented=true")
	if len(presented.Samples) != 1 || presented.Samples[0].Frame != 1 {
		t.Errorf("presented kept %+v", presented.Samples)
	}

	if got := len(decode("/frames?min_ms=1000").Samples); got != 0 {
		t.Errorf("min_ms kept %d samples", got)
	}
	if got := len(decode("/frames?min_ms=bogus").Samples); got != 4 {
		t.Errorf("invalid min_ms filtered to %d samples", got)
	}
}

func TestDebugServer_TreeRunsOnLoop(t *testing.T) {
	h := newHarness(t, Options{})
	root := h.add(t, newCounter(geometry.XYWH(10, 10, 100, 20)), widget.NoID)
	child := h.add(t, newCounter(geometry.XYWH(0, 0, 10, 10)), root)
	if _, err := h.store.AddNamed("filler", newCounter(geometry.XYWH(0, 0, 10, 10)), root); err != nil {
		t.Fatal(err)
	}
	if err := h.loop.Layout().SetLayout(root, layout.Descriptor{Orientation: layout.Horizontal, Spacing: 2}); err != nil {
		t.Fatal(err)
	}
	if err := h.loop.Layout().SetHint(child, layout.Fixed(30)); err != nil {
		t.Fatal(err)
	}
	h.tick(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.loop.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	handler := NewDebugServer(h.loop, nil).Handler()
	rec := get(t, handler, "/tree")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var tree []WidgetTreeNode
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatal(err)
	}
	if len(tree) != 1 {
		t.Fatalf("roots = %d, want 1", len(tree))
	}
	r := tree[0]
	if r.ID != uint64(root) || r.Layout != "horizontal spacing=2" {
		t.Errorf("root = %+v", r)
	}
	if len(r.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(r.Children))
	}
	c := r.Children[0]
	if c.Screen != [4]int{10, 10, 30, 20} {
		t.Errorf("child screen = %v", c.Screen)
	}
	if c.Hint == "" {
		t.Error("child hint missing")
	}
	if r.Children[1].Name != "filler" {
		t.Errorf("second child name = %q", r.Children[1].Name)
	}

	rec = get(t, handler, fmt.Sprintf("/tree/%d", child))
	var sub WidgetTreeNode
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("subtree: %v (%s)", err, rec.Body.String())
	}
	if sub.ID != uint64(child) || sub.Screen != c.Screen {
		t.Errorf("subtree = %+v", sub)
	}
	if code := get(t, handler, "/tree/999").Code; code != http.StatusNotFound {
		t.Errorf("unknown widget status = %d, want 404", code)
	}
	if code := get(t, handler, "/tree/abc").Code; code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", code)
	}
}

func TestDebugServer_TreeTimesOutWithoutLoop(t *testing.T) {
	h := newHarness(t, Options{})
	handler := NewDebugServer(h.loop, nil).Handler()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tree", nil).WithContext(ctx))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestDebugServer_Metrics(t *testing.T) {
	reg := NewDebugRegistry()
	h := newHarness(t, Options{Metrics: NewMetrics(reg)})
	h.tick(t)
	handler := NewDebugServer(h.loop, reg).Handler()

	rec := get(t, handler, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"pane_loop_frames_total 1", "go_goroutines"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics missing %q", name)
		}
	}

	if got := get(t, NewDebugServer(h.loop, nil).Handler(), "/metrics").Code; got != http.StatusNotFound {
		t.Errorf("metrics without gatherer status = %d, want 404", got)
	}
}

func TestServeDebugDisabled(t *testing.T) {
	h := newHarness(t, Options{})
	cfg := config.Default()
	d, err := ServeDebug(&cfg, h.loop, nil)
	if err != nil || d != nil {
		t.Errorf("ServeDebug = %v, %v; want nil, nil", d, err)
	}
}
