// Package store owns every widget of a window in a flat arena indexed by
// stable IDs, together with the parent/child forest.
//
// The store is the single source of truth for which widgets exist. Other
// components keep only IDs and look widgets up on use. Every structural or
// geometric change is announced to observers (layout engine, redraw
// scheduler, dispatcher) so they never have to poll.
//
// A Store is not safe for concurrent use. It is meant to be touched only
// from the goroutine driving the frame loop.
package store

import (
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/widget"
)

var errNilWidget = stderrors.New("nil widget")

type node struct {
	widget   widget.Widget
	name     string
	parent   widget.ID
	children []widget.ID
}

// Store is an arena of widgets plus their parent/child relation.
type Store struct {
	nodes     []*node // index is the ID; nodes[0] is always nil
	roots     []widget.ID
	live      int
	observers []Observer
}

// New returns an empty store.
func New() *Store {
	return &Store{nodes: []*node{nil}}
}

// Observe registers o for change notifications.
func (s *Store) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Store) notify(c Change) {
	for _, o := range s.observers {
		o.StoreChanged(c)
	}
}

func (s *Store) lookup(id widget.ID) (*node, bool) {
	if id == widget.NoID || uint64(id) >= uint64(len(s.nodes)) {
		return nil, false
	}
	n := s.nodes[id]
	return n, n != nil
}

// Contains reports whether id refers to a live widget.
func (s *Store) Contains(id widget.ID) bool {
	_, ok := s.lookup(id)
	return ok
}

// Len returns the number of live widgets.
func (s *Store) Len() int {
	return s.live
}

// Add inserts w as the last (top-most) child of parent, or as a new root
// when parent is widget.NoID.
func (s *Store) Add(w widget.Widget, parent widget.ID) (widget.ID, error) {
	return s.add("store.Add", "", w, parent)
}

// AddNamed is Add with a lookup name. Names need not be unique.
func (s *Store) AddNamed(name string, w widget.Widget, parent widget.ID) (widget.ID, error) {
	return s.add("store.AddNamed", name, w, parent)
}

func (s *Store) add(op, name string, w widget.Widget, parent widget.ID) (widget.ID, error) {
	if w == nil {
		return widget.NoID, errors.Wrap(op, errors.KindUnknown, 0, errNilWidget)
	}
	var p *node
	if parent != widget.NoID {
		var ok bool
		if p, ok = s.lookup(parent); !ok {
			return widget.NoID, errors.New(op, errors.KindInvalidParent, uint64(parent))
		}
	}
	if !w.Bounds().Valid() {
		return widget.NoID, errors.New(op, errors.KindInvalidBounds, 0)
	}

	id := widget.ID(len(s.nodes))
	s.nodes = append(s.nodes, &node{widget: w, name: name, parent: parent})
	s.live++
	if p != nil {
		p.children = append(p.children, id)
	} else {
		s.roots = append(s.roots, id)
	}

	s.notify(Change{Kind: Attached, ID: id, Parent: parent, New: s.extent(id)})
	return id, nil
}

// Remove detaches id from its parent and removes it together with all of
// its descendants. Removed IDs are never handed out again.
func (s *Store) Remove(id widget.ID) error {
	n, ok := s.lookup(id)
	if !ok {
		return errors.New("store.Remove", errors.KindUnknownWidget, uint64(id))
	}

	// Record geometry before anything is detached; descendants first.
	type doomed struct {
		id, parent widget.ID
		screen     geometry.Bounds
	}
	var victims []doomed
	var collect func(x widget.ID)
	collect = func(x widget.ID) {
		xn := s.nodes[x]
		for _, c := range xn.children {
			collect(c)
		}
		sb, _ := s.ScreenBounds(x)
		victims = append(victims, doomed{id: x, parent: xn.parent, screen: sb})
	}
	collect(id)

	s.detach(id, n.parent)
	for _, v := range victims {
		s.nodes[v.id] = nil
		s.live--
	}
	for _, v := range victims {
		s.notify(Change{Kind: Removed, ID: v.id, Parent: v.parent, Old: v.screen})
	}
	return nil
}

func (s *Store) detach(id, parent widget.ID) {
	if parent == widget.NoID {
		s.roots = slices.DeleteFunc(s.roots, func(x widget.ID) bool { return x == id })
		return
	}
	if p, ok := s.lookup(parent); ok {
		p.children = slices.DeleteFunc(p.children, func(x widget.ID) bool { return x == id })
	}
}

// Get returns the widget for id.
func (s *Store) Get(id widget.ID) (widget.Widget, error) {
	n, ok := s.lookup(id)
	if !ok {
		return nil, errors.New("store.Get", errors.KindUnknownWidget, uint64(id))
	}
	return n.widget, nil
}

// Update is the mutable accessor. fn may change the widget's bounds,
// visibility, enabled state or internal state; afterwards the store
// validates the bounds and announces what changed. fn must not keep w.
//
// A negative size set inside fn is rolled back and reported as
// KindInvalidBounds.
func (s *Store) Update(id widget.ID, fn func(w widget.Widget) error) error {
	return s.update("store.Update", id, fn, false)
}

func (s *Store) update(op string, id widget.ID, fn func(w widget.Widget) error, forceMoved bool) error {
	n, ok := s.lookup(id)
	if !ok {
		return errors.New(op, errors.KindUnknownWidget, uint64(id))
	}
	w := n.widget
	oldBounds, oldVisible, oldEnabled := w.Bounds(), w.Visible(), w.Enabled()
	oldExtent := s.extent(id)

	err := fn(w)
	if !s.Contains(id) {
		return err
	}

	newBounds := w.Bounds()
	if !newBounds.Valid() {
		w.SetBounds(oldBounds)
		newBounds = oldBounds
		err = errors.New(op, errors.KindInvalidBounds, uint64(id))
	}

	if forceMoved || newBounds != oldBounds {
		s.notify(Change{
			Kind:    Moved,
			ID:      id,
			Parent:  n.parent,
			Old:     oldExtent,
			New:     s.extent(id),
			Resized: newBounds.Size != oldBounds.Size,
		})
	}
	if w.Visible() != oldVisible || w.Enabled() != oldEnabled {
		ext := s.extent(id)
		s.notify(Change{Kind: Restyled, ID: id, Parent: n.parent, Old: ext, New: ext})
	}
	return err
}

// SetBounds validates and applies new parent-relative bounds. It always
// announces a move, even when the bounds are unchanged, so a relayout
// repaints every child it touched.
func (s *Store) SetBounds(id widget.ID, b geometry.Bounds) error {
	if !b.Valid() {
		if !s.Contains(id) {
			return errors.New("store.SetBounds", errors.KindUnknownWidget, uint64(id))
		}
		return errors.New("store.SetBounds", errors.KindInvalidBounds, uint64(id))
	}
	return s.update("store.SetBounds", id, func(w widget.Widget) error {
		w.SetBounds(b)
		return nil
	}, true)
}

// SetVisible shows or hides id.
func (s *Store) SetVisible(id widget.ID, visible bool) error {
	return s.update("store.SetVisible", id, func(w widget.Widget) error {
		w.SetVisible(visible)
		return nil
	}, false)
}

// SetEnabled enables or disables id. A disabled widget and its whole
// subtree stop receiving pointer events.
func (s *Store) SetEnabled(id widget.ID, enabled bool) error {
	return s.update("store.SetEnabled", id, func(w widget.Widget) error {
		w.SetEnabled(enabled)
		return nil
	}, false)
}

// Name returns the lookup name of id.
func (s *Store) Name(id widget.ID) (string, error) {
	n, ok := s.lookup(id)
	if !ok {
		return "", errors.New("store.Name", errors.KindUnknownWidget, uint64(id))
	}
	return n.name, nil
}

// FindByName returns the first widget, in store iteration order, with the
// given name.
func (s *Store) FindByName(name string) (widget.ID, bool) {
	for i, n := range s.nodes {
		if n != nil && n.name == name {
			return widget.ID(i), true
		}
	}
	return widget.NoID, false
}

// ParentOf returns the parent of id, widget.NoID for roots.
func (s *Store) ParentOf(id widget.ID) (widget.ID, error) {
	n, ok := s.lookup(id)
	if !ok {
		return widget.NoID, errors.New("store.ParentOf", errors.KindUnknownWidget, uint64(id))
	}
	return n.parent, nil
}

// ChildrenOf returns the children of id bottom-most first.
func (s *Store) ChildrenOf(id widget.ID) ([]widget.ID, error) {
	n, ok := s.lookup(id)
	if !ok {
		return nil, errors.New("store.ChildrenOf", errors.KindUnknownWidget, uint64(id))
	}
	return slices.Clone(n.children), nil
}

// AncestorsOf returns the ancestors of id, root first, excluding id.
func (s *Store) AncestorsOf(id widget.ID) ([]widget.ID, error) {
	n, ok := s.lookup(id)
	if !ok {
		return nil, errors.New("store.AncestorsOf", errors.KindUnknownWidget, uint64(id))
	}
	var out []widget.ID
	for p := n.parent; p != widget.NoID; p = s.nodes[p].parent {
		out = append(out, p)
	}
	slices.Reverse(out)
	return out, nil
}

// Depth returns the number of ancestors of id, or -1 if id is unknown.
func (s *Store) Depth(id widget.ID) int {
	n, ok := s.lookup(id)
	if !ok {
		return -1
	}
	depth := 0
	for p := n.parent; p != widget.NoID; p = s.nodes[p].parent {
		depth++
	}
	return depth
}

// Roots returns the top-level widgets bottom-most first.
func (s *Store) Roots() []widget.ID {
	return slices.Clone(s.roots)
}

// IDs returns every live ID in store iteration order (creation order).
func (s *Store) IDs() []widget.ID {
	out := make([]widget.ID, 0, s.live)
	for i, n := range s.nodes {
		if n != nil {
			out = append(out, widget.ID(i))
		}
	}
	return out
}

// All iterates live widgets in store iteration order. Widgets added during
// iteration are not visited; widgets removed during iteration are skipped.
func (s *Store) All() iter.Seq2[widget.ID, widget.Widget] {
	return func(yield func(widget.ID, widget.Widget) bool) {
		end := len(s.nodes)
		for i := 1; i < end; i++ {
			n := s.nodes[i]
			if n == nil {
				continue
			}
			if !yield(widget.ID(i), n.widget) {
				return
			}
		}
	}
}

// BringToFront moves id to the top of its sibling order.
func (s *Store) BringToFront(id widget.ID) error {
	return s.reorder("store.BringToFront", id, true)
}

// SendToBack moves id to the bottom of its sibling order.
func (s *Store) SendToBack(id widget.ID) error {
	return s.reorder("store.SendToBack", id, false)
}

func (s *Store) reorder(op string, id widget.ID, front bool) error {
	n, ok := s.lookup(id)
	if !ok {
		return errors.New(op, errors.KindUnknownWidget, uint64(id))
	}
	siblings := &s.roots
	if n.parent != widget.NoID {
		siblings = &s.nodes[n.parent].children
	}
	idx := slices.Index(*siblings, id)
	last := len(*siblings) - 1
	if (front && idx == last) || (!front && idx == 0) {
		return nil
	}
	*siblings = slices.Delete(*siblings, idx, idx+1)
	if front {
		*siblings = append(*siblings, id)
	} else {
		*siblings = slices.Insert(*siblings, 0, id)
	}
	ext := s.extent(id)
	s.notify(Change{Kind: Reordered, ID: id, Parent: n.parent, Old: ext, New: ext})
	return nil
}

// Reparent moves id, with its subtree, to the top of parent's children
// (or to the roots when parent is widget.NoID). The bounds are kept as
// they are, so they become relative to the new parent.
func (s *Store) Reparent(id, parent widget.ID) error {
	const op = "store.Reparent"
	n, ok := s.lookup(id)
	if !ok {
		return errors.New(op, errors.KindUnknownWidget, uint64(id))
	}
	if parent != widget.NoID {
		if !s.Contains(parent) || parent == id || s.isAncestor(id, parent) {
			return errors.New(op, errors.KindInvalidParent, uint64(parent))
		}
	}
	if n.parent == parent {
		return nil
	}
	old := s.extent(id)
	oldParent := n.parent
	s.detach(id, oldParent)
	n.parent = parent
	if parent == widget.NoID {
		s.roots = append(s.roots, id)
	} else {
		s.nodes[parent].children = append(s.nodes[parent].children, id)
	}
	s.notify(Change{Kind: Reparented, ID: id, Parent: parent, OldParent: oldParent, Old: old, New: s.extent(id)})
	return nil
}

// isAncestor reports whether a is a proper ancestor of b.
func (s *Store) isAncestor(a, b widget.ID) bool {
	for p := s.nodes[b].parent; p != widget.NoID; p = s.nodes[p].parent {
		if p == a {
			return true
		}
	}
	return false
}

// ScreenOrigin returns the screen position of id's top-left corner.
func (s *Store) ScreenOrigin(id widget.ID) (geometry.Point, error) {
	n, ok := s.lookup(id)
	if !ok {
		return geometry.Point{}, errors.New("store.ScreenOrigin", errors.KindUnknownWidget, uint64(id))
	}
	return s.screenOrigin(n), nil
}

func (s *Store) screenOrigin(n *node) geometry.Point {
	origin := n.widget.Bounds().Origin
	for p := n.parent; p != widget.NoID; p = s.nodes[p].parent {
		origin = origin.Add(s.nodes[p].widget.Bounds().Origin)
	}
	return origin
}

// ScreenBounds returns id's bounds in screen coordinates.
func (s *Store) ScreenBounds(id widget.ID) (geometry.Bounds, error) {
	n, ok := s.lookup(id)
	if !ok {
		return geometry.Bounds{}, errors.New("store.ScreenBounds", errors.KindUnknownWidget, uint64(id))
	}
	return geometry.Bounds{Origin: s.screenOrigin(n), Size: n.widget.Bounds().Size}, nil
}

// Extent returns the union of the screen bounds of id and its descendants.
func (s *Store) Extent(id widget.ID) (geometry.Bounds, error) {
	if !s.Contains(id) {
		return geometry.Bounds{}, errors.New("store.Extent", errors.KindUnknownWidget, uint64(id))
	}
	return s.extent(id), nil
}

func (s *Store) extent(id widget.ID) geometry.Bounds {
	n, ok := s.lookup(id)
	if !ok {
		return geometry.Bounds{}
	}
	parentOrigin := s.screenOrigin(n).Sub(n.widget.Bounds().Origin)
	return s.subtreeExtent(n, parentOrigin)
}

func (s *Store) subtreeExtent(n *node, parentOrigin geometry.Point) geometry.Bounds {
	b := n.widget.Bounds().Translate(parentOrigin)
	ext := b
	for _, c := range n.children {
		ext = ext.Union(s.subtreeExtent(s.nodes[c], b.Origin))
	}
	return ext
}

// Interactive reports whether id and all of its ancestors are visible and
// enabled, i.e. whether id can receive pointer events.
func (s *Store) Interactive(id widget.ID) bool {
	for x := id; x != widget.NoID; {
		n, ok := s.lookup(x)
		if !ok || !n.widget.Visible() || !n.widget.Enabled() {
			return false
		}
		x = n.parent
	}
	return true
}

// Shown reports whether id and all of its ancestors are visible.
func (s *Store) Shown(id widget.ID) bool {
	for x := id; x != widget.NoID; {
		n, ok := s.lookup(x)
		if !ok || !n.widget.Visible() {
			return false
		}
		x = n.parent
	}
	return true
}

// Dump writes an indented description of the forest, one widget per line.
func (s *Store) Dump(w io.Writer) error {
	var walk func(id widget.ID, depth int) error
	walk = func(id widget.ID, depth int) error {
		n := s.nodes[id]
		line := fmt.Sprintf("%s#%d %T %v", strings.Repeat("  ", depth), id, n.widget, n.widget.Bounds())
		if n.name != "" {
			line += fmt.Sprintf(" name=%q", n.name)
		}
		if !n.widget.Visible() {
			line += " hidden"
		}
		if !n.widget.Enabled() {
			line += " disabled"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for _, c := range n.children {
			if err := walk(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range s.roots {
		if err := walk(r, 0); err != nil {
			return err
		}
	}
	return nil
}
