package layout

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

type box struct {
	widget.Base
}

func newBox(w, h int) *box {
	return &box{Base: widget.NewBase(geometry.XYWH(0, 0, w, h), widget.Drawable)}
}

type captureHandler struct {
	errs []*errors.WidgetError
}

func (h *captureHandler) HandleError(err *errors.WidgetError) { h.errs = append(h.errs, err) }
func (h *captureHandler) HandlePanic(err *errors.PanicError)  {}

func captureErrors(t *testing.T) *captureHandler {
	t.Helper()
	h := &captureHandler{}
	prev := errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(prev) })
	return h
}

func add(t *testing.T, s *store.Store, w widget.Widget, parent widget.ID) widget.ID {
	t.Helper()
	id, err := s.Add(w, parent)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return id
}

func bounds(t *testing.T, s *store.Store, id widget.ID) geometry.Bounds {
	t.Helper()
	w, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get(%d): %v", id, err)
	}
	return w.Bounds()
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name      string
		available int
		spacing   int
		hints     []Hint
		want      []int
		overflow  bool
	}{
		{"empty", 100, 10, nil, nil, false},
		{"fixed and stretch", 800, 10, []Hint{Fixed(100), {}, Fixed(150)}, []int{100, 530, 150}, false},
		{"equal weights remainder", 10, 0, []Hint{{}, {}, {}}, []int{4, 3, 3}, false},
		{"weighted remainder", 10, 0, []Hint{Stretch(1), Stretch(2)}, []int{4, 6}, false},
		{"zero weight counts as one", 9, 0, []Hint{Stretch(0), Stretch(-3), Stretch(1)}, []int{3, 3, 3}, false},
		{"fixed only", 50, 5, []Hint{Fixed(10), Fixed(10)}, []int{10, 10}, false},
		{"overflow", 100, 0, []Hint{Fixed(80), Fixed(50), {}}, []int{80, 50, 0}, true},
		{"spacing causes overflow", 20, 25, []Hint{{}, {}}, []int{0, 0}, true},
		{"exact fit", 30, 0, []Hint{Fixed(30), {}}, []int{30, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, overflow := Distribute(tt.available, tt.spacing, tt.hints)
			if !slices.Equal(got, tt.want) || overflow != tt.overflow {
				t.Errorf("Distribute = %v, %v; want %v, %v", got, overflow, tt.want, tt.overflow)
			}
		})
	}
}

func TestHorizontalScenario(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(800, 600), widget.NoID)
	a := add(t, s, newBox(0, 0), root)
	b := add(t, s, newBox(0, 0), root)
	c := add(t, s, newBox(0, 0), root)
	if err := e.SetLayout(root, Descriptor{Orientation: Horizontal, Spacing: 10}); err != nil {
		t.Fatal(err)
	}
	_ = e.SetHint(a, Fixed(100))
	_ = e.SetHint(c, Fixed(150))

	stats := e.Flush()
	if stats.Containers != 1 || len(stats.Overflowed) != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if got, want := bounds(t, s, a), geometry.XYWH(0, 0, 100, 600); got != want {
		t.Errorf("a = %v, want %v", got, want)
	}
	if got, want := bounds(t, s, b), geometry.XYWH(110, 0, 530, 600); got != want {
		t.Errorf("stretch child = %v, want %v", got, want)
	}
	if got, want := bounds(t, s, c), geometry.XYWH(650, 0, 150, 600); got != want {
		t.Errorf("c = %v, want %v", got, want)
	}
	if e.NeedsLayout() {
		t.Error("NeedsLayout after Flush")
	}
}

func TestPositionsIncreaseWithoutOverlap(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(40, 500), widget.NoID)
	var kids []widget.ID
	for i := range 5 {
		id := add(t, s, newBox(0, 0), root)
		if i%2 == 0 {
			_ = e.SetHint(id, Fixed(40+i))
		}
		kids = append(kids, id)
	}
	_ = e.SetLayout(root, Descriptor{Orientation: Vertical, Spacing: 3})
	e.Flush()

	prevEnd := 0
	for _, id := range kids {
		b := bounds(t, s, id)
		if b.Top() < prevEnd {
			t.Errorf("child %d at %v overlaps previous end %d", id, b, prevEnd)
		}
		if b.Size.Width != 40 {
			t.Errorf("cross size = %d, want 40", b.Size.Width)
		}
		prevEnd = b.Bottom()
	}
	if prevEnd != 500 {
		t.Errorf("children end at %d, want 500", prevEnd)
	}
}

func TestPaddingAndCrossHint(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(100, 50), widget.NoID)
	a := add(t, s, newBox(0, 0), root)
	b := add(t, s, newBox(0, 0), root)
	_ = e.SetLayout(root, Descriptor{Padding: Insets{Top: 5, Left: 10, Right: 10, Bottom: 5}})
	_ = e.SetHint(b, Stretch(1).WithCross(20))
	e.Flush()

	if got, want := bounds(t, s, a), geometry.XYWH(10, 5, 40, 40); got != want {
		t.Errorf("a = %v, want %v", got, want)
	}
	if got, want := bounds(t, s, b), geometry.XYWH(50, 5, 40, 20); got != want {
		t.Errorf("b = %v, want %v", got, want)
	}
}

func TestNestedContainersResolveInOnePass(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(200, 100), widget.NoID)
	side := add(t, s, newBox(0, 0), root)
	inner := add(t, s, newBox(0, 0), root)
	top := add(t, s, newBox(0, 0), inner)
	bottom := add(t, s, newBox(0, 0), inner)

	_ = e.SetLayout(inner, Descriptor{Orientation: Vertical})
	_ = e.SetLayout(root, Descriptor{Orientation: Horizontal})
	_ = e.SetHint(side, Fixed(50))

	stats := e.Flush()
	if stats.Containers != 2 {
		t.Errorf("Containers = %d, want 2 (inner laid out once)", stats.Containers)
	}
	if got, want := bounds(t, s, inner), geometry.XYWH(50, 0, 150, 100); got != want {
		t.Errorf("inner = %v, want %v", got, want)
	}
	if got, want := bounds(t, s, top), geometry.XYWH(0, 0, 150, 50); got != want {
		t.Errorf("top = %v, want %v", got, want)
	}
	if got, want := bounds(t, s, bottom), geometry.XYWH(0, 50, 150, 50); got != want {
		t.Errorf("bottom = %v, want %v", got, want)
	}
	sb, _ := s.ScreenBounds(bottom)
	if want := geometry.XYWH(50, 50, 150, 50); sb != want {
		t.Errorf("bottom screen bounds = %v, want %v", sb, want)
	}
}

func TestRecomputationTriggers(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(100, 10), widget.NoID)
	a := add(t, s, newBox(0, 0), root)
	_ = e.SetLayout(root, Descriptor{})
	e.Flush()

	// Resize.
	_ = s.SetBounds(root, geometry.XYWH(0, 0, 60, 10))
	if !e.NeedsLayout() {
		t.Fatal("resize did not schedule layout")
	}
	e.Flush()
	if got := bounds(t, s, a).Size.Width; got != 60 {
		t.Errorf("after resize width = %d, want 60", got)
	}

	// Move without resize does not relayout.
	_ = s.SetBounds(root, geometry.XYWH(5, 5, 60, 10))
	if e.NeedsLayout() {
		t.Error("move without resize scheduled layout")
	}

	// Add.
	b := add(t, s, newBox(0, 0), root)
	if !e.NeedsLayout() {
		t.Fatal("add did not schedule layout")
	}
	e.Flush()
	if bounds(t, s, a).Size.Width != 30 || bounds(t, s, b).Size.Width != 30 {
		t.Errorf("widths after add = %v, %v", bounds(t, s, a), bounds(t, s, b))
	}

	// Remove.
	_ = s.Remove(b)
	if !e.NeedsLayout() {
		t.Fatal("remove did not schedule layout")
	}
	e.Flush()
	if got := bounds(t, s, a).Size.Width; got != 60 {
		t.Errorf("after remove width = %d, want 60", got)
	}

	// Explicit.
	if err := e.Relayout(root); err != nil {
		t.Fatal(err)
	}
	if !e.NeedsLayout() {
		t.Error("Relayout did not schedule")
	}
	e.Flush()
}

func TestHiddenChildKeepsSlot(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(90, 10), widget.NoID)
	a := add(t, s, newBox(0, 0), root)
	b := add(t, s, newBox(0, 0), root)
	_ = s.SetVisible(a, false)
	_ = e.SetLayout(root, Descriptor{})
	e.Flush()
	if got := bounds(t, s, b).Left(); got != 45 {
		t.Errorf("b.Left = %d, want 45", got)
	}
}

func TestOverflowReportedAsWarning(t *testing.T) {
	h := captureErrors(t)
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(100, 10), widget.NoID)
	a := add(t, s, newBox(0, 0), root)
	b := add(t, s, newBox(0, 0), root)
	c := add(t, s, newBox(0, 0), root)
	_ = e.SetLayout(root, Descriptor{})
	_ = e.SetHint(a, Fixed(80))
	_ = e.SetHint(c, Fixed(50))

	stats := e.Flush()
	if !slices.Equal(stats.Overflowed, []widget.ID{root}) {
		t.Errorf("Overflowed = %v", stats.Overflowed)
	}
	if len(h.errs) != 1 || !stderrors.Is(h.errs[0], errors.ErrLayoutOverflow) {
		t.Fatalf("reported = %v", h.errs)
	}
	if got := bounds(t, s, b).Size.Width; got != 0 {
		t.Errorf("stretch width = %d, want 0", got)
	}
	if got, want := bounds(t, s, c), geometry.XYWH(80, 0, 50, 10); got != want {
		t.Errorf("c = %v, want %v (fixed honored past the edge)", got, want)
	}
}

func TestZeroChildrenIsNoop(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(10, 10), widget.NoID)
	_ = e.SetLayout(root, Descriptor{})
	if stats := e.Flush(); stats.Containers != 1 {
		t.Errorf("Containers = %d", stats.Containers)
	}
	if got := bounds(t, s, root); got != geometry.XYWH(0, 0, 10, 10) {
		t.Errorf("container bounds changed: %v", got)
	}
}

func TestUnknownWidgetErrors(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	if err := e.SetLayout(9, Descriptor{}); !stderrors.Is(err, errors.ErrUnknownWidget) {
		t.Errorf("SetLayout err = %v", err)
	}
	if err := e.SetHint(9, Fixed(1)); !stderrors.Is(err, errors.ErrUnknownWidget) {
		t.Errorf("SetHint err = %v", err)
	}
	if _, err := e.Apply(9); !stderrors.Is(err, errors.ErrUnknownWidget) {
		t.Errorf("Apply err = %v", err)
	}
}

func TestRemovedContainerForgotten(t *testing.T) {
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(10, 10), widget.NoID)
	_ = e.SetLayout(root, Descriptor{})
	_ = s.Remove(root)
	if _, ok := e.Layout(root); ok {
		t.Error("layout kept for removed container")
	}
	if e.NeedsLayout() {
		t.Error("removed container still scheduled")
	}
	if stats := e.Flush(); stats.Containers != 0 {
		t.Errorf("flushed removed container: %+v", stats)
	}
}

func TestChildRemovedDuringApplyIsReported(t *testing.T) {
	h := captureErrors(t)
	s := store.New()
	e := NewEngine(s)
	root := add(t, s, newBox(100, 10), widget.NoID)
	first := add(t, s, newBox(0, 0), root)
	second := add(t, s, newBox(0, 0), root)
	inner := add(t, s, newBox(0, 0), second)
	if err := e.SetLayout(root, Descriptor{Orientation: Horizontal}); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLayout(second, Descriptor{}); err != nil {
		t.Fatal(err)
	}
	s.Observe(store.ObserverFunc(func(c store.Change) {
		if c.Kind == store.Moved && c.ID == first && s.Contains(second) {
			_ = s.Remove(second)
		}
	}))

	stats := e.Flush()
	if got, want := bounds(t, s, first), geometry.XYWH(0, 0, 50, 10); got != want {
		t.Errorf("first = %v, want %v", got, want)
	}
	if s.Contains(inner) {
		t.Error("descendant of removed child survived")
	}
	if stats.Containers != 1 {
		t.Errorf("containers = %d, want only root", stats.Containers)
	}
	if len(h.errs) != 1 || h.errs[0].Kind != errors.KindUnknownWidget || h.errs[0].Widget != uint64(second) {
		t.Fatalf("errors = %v, want one unknown-widget report for %d", h.errs, second)
	}
	if _, ok := e.Layout(second); ok {
		t.Error("layout of removed container kept")
	}
	if e.NeedsLayout() {
		t.Error("removed container still scheduled")
	}
}
