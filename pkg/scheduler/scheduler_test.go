package scheduler

import (
	"slices"
	"testing"

	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

type painter struct {
	widget.Base
	name   string
	log    *[]string
	clips  []geometry.Bounds
	panics bool
}

func (p *painter) Draw(ctx *render.Context, clip geometry.Bounds) {
	if p.panics {
		panic("paint failure")
	}
	*p.log = append(*p.log, p.name)
	p.clips = append(p.clips, clip)
	ctx.FillRect(geometry.FromSize(p.Bounds().Size), render.ColorBlue)
}

type fixture struct {
	t     *testing.T
	store *store.Store
	rec   *render.Recorder
	sched *Scheduler
	log   []string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	f := &fixture{t: t, store: store.New(), rec: &render.Recorder{}}
	f.sched = New(f.store, f.rec, opts...)
	return f
}

func (f *fixture) add(name string, b geometry.Bounds, parent widget.ID) (widget.ID, *painter) {
	f.t.Helper()
	p := &painter{Base: widget.NewBase(b, widget.Drawable), name: name, log: &f.log}
	id, err := f.store.Add(p, parent)
	if err != nil {
		f.t.Fatalf("Add: %v", err)
	}
	return id, p
}

func (f *fixture) pass() (Stats, []string) {
	f.log = nil
	stats := f.sched.DrawPass()
	return stats, f.log
}

func TestSecondPassDrawsNothing(t *testing.T) {
	f := newFixture(t)
	root, _ := f.add("root", geometry.XYWH(0, 0, 100, 100), widget.NoID)
	f.add("a", geometry.XYWH(0, 0, 50, 50), root)
	f.add("b", geometry.XYWH(50, 0, 50, 50), root)

	stats, order := f.pass()
	if !slices.Equal(order, []string{"root", "a", "b"}) {
		t.Errorf("draw order = %v", order)
	}
	if stats.Draws != 3 {
		t.Errorf("Draws = %d, want 3", stats.Draws)
	}

	f.rec.Reset()
	stats, order = f.pass()
	if stats.Draws != 0 || len(order) != 0 || len(f.rec.Commands()) != 0 {
		t.Errorf("second pass drew %v (%+v)", order, stats)
	}
	if f.sched.NeedsDraw() {
		t.Error("NeedsDraw after a pass")
	}
}

func TestInvalidateDrawsOnlyIntersecting(t *testing.T) {
	f := newFixture(t)
	root, rootP := f.add("root", geometry.XYWH(0, 0, 100, 100), widget.NoID)
	a, _ := f.add("a", geometry.XYWH(0, 0, 50, 50), root)
	f.add("b", geometry.XYWH(50, 0, 50, 50), root)
	f.pass()

	if err := f.sched.Invalidate(a); err != nil {
		t.Fatal(err)
	}
	if !f.sched.Pending(a) {
		t.Error("Pending(a) = false after Invalidate")
	}
	_, order := f.pass()
	if !slices.Equal(order, []string{"root", "a"}) {
		t.Errorf("drew %v, want [root a]", order)
	}
	if got, want := rootP.clips[len(rootP.clips)-1], geometry.XYWH(0, 0, 50, 50); got != want {
		t.Errorf("root clip = %v, want %v", got, want)
	}
	if f.sched.Pending(a) {
		t.Error("Pending(a) still set after pass")
	}
}

func TestBoundsChangeDirtiesOldAndNew(t *testing.T) {
	f := newFixture(t)
	root, _ := f.add("root", geometry.XYWH(0, 0, 100, 100), widget.NoID)
	a, _ := f.add("a", geometry.XYWH(0, 0, 10, 10), root)
	f.pass()

	_ = f.store.SetBounds(a, geometry.XYWH(80, 80, 10, 10))
	dirty := f.sched.Dirty()
	if len(dirty) != 2 {
		t.Fatalf("dirty = %v, want old and new rects", dirty)
	}
	if !slices.Contains(dirty, geometry.XYWH(0, 0, 10, 10)) || !slices.Contains(dirty, geometry.XYWH(80, 80, 10, 10)) {
		t.Errorf("dirty = %v", dirty)
	}
	stats, _ := f.pass()
	if stats.Rects != 2 || stats.Area != 200 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRemovalClearsPendingAndRepaintsBeneath(t *testing.T) {
	f := newFixture(t)
	root, _ := f.add("root", geometry.XYWH(0, 0, 100, 100), widget.NoID)
	f.add("a", geometry.XYWH(0, 0, 50, 50), root)
	b, _ := f.add("b", geometry.XYWH(50, 0, 50, 50), root)
	f.pass()

	_ = f.sched.Invalidate(b)
	if err := f.store.Remove(b); err != nil {
		t.Fatal(err)
	}
	if f.sched.Pending(b) {
		t.Error("removed widget still pending")
	}
	_, order := f.pass()
	if !slices.Equal(order, []string{"root"}) {
		t.Errorf("drew %v, want only what was beneath", order)
	}
	if err := f.sched.Invalidate(b); err == nil {
		t.Error("Invalidate of removed widget succeeded")
	}
}

func TestSeparateDirtyRectsLeaveGapUntouched(t *testing.T) {
	f := newFixture(t)
	_, wide := f.add("wide", geometry.XYWH(0, 0, 100, 10), widget.NoID)
	f.add("middle", geometry.XYWH(40, 0, 20, 10), widget.NoID)
	f.pass()
	wide.clips = nil
	f.rec.Reset()

	f.sched.InvalidateRect(geometry.XYWH(0, 0, 10, 10))
	f.sched.InvalidateRect(geometry.XYWH(80, 0, 10, 10))
	stats, order := f.pass()
	if !slices.Equal(order, []string{"wide", "wide"}) {
		t.Errorf("drew %v, want wide once per dirty rect", order)
	}
	want := []geometry.Bounds{geometry.XYWH(0, 0, 10, 10), geometry.XYWH(80, 0, 10, 10)}
	if !slices.Equal(wide.clips, want) {
		t.Errorf("wide clips = %v, want %v", wide.clips, want)
	}
	if stats.Draws != 2 || stats.Rects != 2 {
		t.Errorf("stats = %+v", stats)
	}
	gap := geometry.XYWH(40, 0, 20, 10)
	for _, c := range f.rec.Commands() {
		if c.Clip.Intersects(gap) {
			t.Errorf("command %v reaches the clean widget at %v", c, gap)
		}
	}
}

func TestVeilFollowsDirtyRects(t *testing.T) {
	veil := render.Color(0x40FFFFFF)
	f := newFixture(t, WithDisabledVeil(veil))
	id, _ := f.add("off", geometry.XYWH(0, 0, 100, 10), widget.NoID)
	_ = f.store.SetEnabled(id, false)
	f.pass()
	f.rec.Reset()

	f.sched.InvalidateRect(geometry.XYWH(0, 0, 10, 10))
	f.sched.InvalidateRect(geometry.XYWH(80, 0, 10, 10))
	f.pass()
	var clips []geometry.Bounds
	for _, c := range f.rec.Commands() {
		if c.Color == veil {
			clips = append(clips, c.Clip)
		}
	}
	want := []geometry.Bounds{geometry.XYWH(0, 0, 10, 10), geometry.XYWH(80, 0, 10, 10)}
	if !slices.Equal(clips, want) {
		t.Errorf("veil clips = %v, want %v", clips, want)
	}
}

func TestHiddenSubtreeSkipped(t *testing.T) {
	f := newFixture(t)
	root, _ := f.add("root", geometry.XYWH(0, 0, 100, 100), widget.NoID)
	panel, _ := f.add("panel", geometry.XYWH(0, 0, 50, 50), root)
	f.add("inner", geometry.XYWH(0, 0, 10, 10), panel)
	_ = f.store.SetVisible(panel, false)

	_, order := f.pass()
	if !slices.Equal(order, []string{"root"}) {
		t.Errorf("drew %v", order)
	}
}

func TestClipIsLocal(t *testing.T) {
	f := newFixture(t)
	root, _ := f.add("root", geometry.XYWH(100, 100, 50, 50), widget.NoID)
	_, child := f.add("child", geometry.XYWH(10, 10, 20, 20), root)
	f.pass()

	f.sched.InvalidateRect(geometry.XYWH(115, 115, 10, 10))
	f.pass()
	if got, want := child.clips[len(child.clips)-1], geometry.XYWH(5, 5, 10, 10); got != want {
		t.Errorf("child clip = %v, want %v", got, want)
	}
}

func TestRedrawRequestCollected(t *testing.T) {
	f := newFixture(t)
	_, p := f.add("solo", geometry.XYWH(0, 0, 10, 10), widget.NoID)
	f.pass()

	p.MarkNeedsRedraw()
	if !f.sched.NeedsDraw() {
		t.Fatal("redraw request not collected")
	}
	_, order := f.pass()
	if !slices.Equal(order, []string{"solo"}) {
		t.Errorf("drew %v", order)
	}
	if p.NeedsRedraw() {
		t.Error("request not cleared")
	}
}

func TestBackgroundAndVeil(t *testing.T) {
	f := newFixture(t, WithBackground(render.ColorBlack), WithDisabledVeil(render.Color(0x40FFFFFF)))
	id, _ := f.add("solo", geometry.XYWH(0, 0, 10, 10), widget.NoID)
	_ = f.store.SetEnabled(id, false)
	f.pass()

	cmds := f.rec.Commands()
	if len(cmds) != 3 {
		t.Fatalf("commands = %v", cmds)
	}
	if cmds[0].Color != render.ColorBlack {
		t.Errorf("first command = %v, want background fill", cmds[0])
	}
	if cmds[2].Color != render.Color(0x40FFFFFF) {
		t.Errorf("last command = %v, want veil", cmds[2])
	}
}

func TestDrawPanicIsIsolated(t *testing.T) {
	var panics []*errors.PanicError
	prev := errors.SetHandler(panicSink(func(p *errors.PanicError) { panics = append(panics, p) }))
	t.Cleanup(func() { errors.SetHandler(prev) })

	f := newFixture(t)
	_, bad := f.add("bad", geometry.XYWH(0, 0, 10, 10), widget.NoID)
	bad.panics = true
	f.add("good", geometry.XYWH(0, 0, 10, 10), widget.NoID)

	stats, order := f.pass()
	if !slices.Equal(order, []string{"good"}) {
		t.Errorf("drew %v", order)
	}
	if stats.Panics != 1 || len(panics) != 1 {
		t.Errorf("panics = %d reported %d", stats.Panics, len(panics))
	}
}

type panicSink func(*errors.PanicError)

func (f panicSink) HandleError(*errors.WidgetError)  {}
func (f panicSink) HandlePanic(p *errors.PanicError) { f(p) }

func TestRegionMerging(t *testing.T) {
	r := NewRegion(0)
	r.Add(geometry.XYWH(0, 0, 10, 10))
	r.Add(geometry.XYWH(5, 5, 10, 10))
	if got := r.Rects(); len(got) != 1 || got[0] != geometry.XYWH(0, 0, 15, 15) {
		t.Errorf("overlap merge = %v", got)
	}
	r.Add(geometry.XYWH(2, 2, 3, 3))
	if len(r.Rects()) != 1 {
		t.Error("covered rect added separately")
	}
	r.Add(geometry.XYWH(15, 0, 5, 5))
	if len(r.Rects()) != 2 {
		t.Errorf("abutting rect merged: %v", r.Rects())
	}
	r.Add(geometry.Bounds{})
	if len(r.Rects()) != 2 {
		t.Error("empty rect added")
	}
	r.Clear()
	if !r.IsEmpty() {
		t.Error("Clear left rects")
	}
}

func TestRegionCascadingMerge(t *testing.T) {
	r := NewRegion(0)
	r.Add(geometry.XYWH(0, 0, 5, 5))
	r.Add(geometry.XYWH(20, 0, 5, 5))
	r.Add(geometry.XYWH(4, 0, 17, 2))
	if got := r.Rects(); len(got) != 1 || got[0] != geometry.XYWH(0, 0, 25, 5) {
		t.Errorf("cascading merge = %v", got)
	}
}

func TestRegionCollapses(t *testing.T) {
	r := NewRegion(2)
	r.Add(geometry.XYWH(0, 0, 1, 1))
	r.Add(geometry.XYWH(10, 0, 1, 1))
	r.Add(geometry.XYWH(20, 0, 1, 1))
	if got := r.Rects(); len(got) != 1 || got[0] != geometry.XYWH(0, 0, 21, 1) {
		t.Errorf("collapsed region = %v", got)
	}
}
