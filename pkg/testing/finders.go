package testing

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

// Finder locates widgets in a store.
type Finder interface {
	// Evaluate returns all matching IDs in store iteration order.
	Evaluate(s *store.Store) []widget.ID
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	ids    []widget.ID
	finder Finder
}

// Find evaluates finder against the tester's store.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{ids: finder.Evaluate(t.store), finder: finder}
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() widget.ID {
	if len(r.ids) == 0 {
		desc := "unknown"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic(fmt.Sprintf("Finder found no widgets: %s", desc))
	}
	return r.ids[0]
}

// All returns all matches.
func (r FinderResult) All() []widget.ID { return r.ids }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.ids) }

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool { return len(r.ids) > 0 }

type predicateFinder struct {
	fn   func(widget.ID, widget.Widget) bool
	desc string
}

func (f *predicateFinder) Evaluate(s *store.Store) []widget.ID {
	var out []widget.ID
	for id, w := range s.All() {
		if f.fn(id, w) {
			out = append(out, id)
		}
	}
	return out
}

func (f *predicateFinder) Description() string { return f.desc }

// ByPredicate returns a finder that matches widgets satisfying fn.
func ByPredicate(fn func(widget.ID, widget.Widget) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// ByID matches a single widget while it is in the store.
func ByID(id widget.ID) Finder {
	return &predicateFinder{
		fn:   func(candidate widget.ID, _ widget.Widget) bool { return candidate == id },
		desc: fmt.Sprintf("ByID(%d)", id),
	}
}

// ByName matches widgets added with store.AddNamed.
func ByName(name string) Finder {
	return &nameFinder{name: name}
}

type nameFinder struct{ name string }

func (f *nameFinder) Evaluate(s *store.Store) []widget.ID {
	if id, ok := s.FindByName(f.name); ok {
		return []widget.ID{id}
	}
	return nil
}

func (f *nameFinder) Description() string { return fmt.Sprintf("ByName(%q)", f.name) }

// ByType matches widgets whose dynamic type is T.
func ByType[T widget.Widget]() Finder {
	typ := reflect.TypeFor[T]()
	return &predicateFinder{
		fn:   func(_ widget.ID, w widget.Widget) bool { return reflect.TypeOf(w) == typ },
		desc: fmt.Sprintf("ByType(%s)", typ),
	}
}

type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(s *store.Store) []widget.ID {
	ancestors := f.of.Evaluate(s)
	if len(ancestors) == 0 {
		return nil
	}
	var out []widget.ID
	for _, id := range f.matching.Evaluate(s) {
		chain, err := s.AncestorsOf(id)
		if err != nil {
			continue
		}
		if slices.ContainsFunc(chain, func(a widget.ID) bool { return slices.Contains(ancestors, a) }) {
			out = append(out, id)
		}
	}
	return out
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches widgets satisfying matching
// that are strict descendants of widgets matching of.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}
