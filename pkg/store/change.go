package store

import (
	"fmt"

	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/widget"
)

// ChangeKind identifies what happened to a widget.
type ChangeKind int

const (
	// Attached is sent after a widget is added.
	Attached ChangeKind = iota
	// Removed is sent once per removed widget, descendants first.
	Removed
	// Moved is sent when bounds were set, changed or not.
	Moved
	// Restyled is sent when visibility or enabled state changed.
	Restyled
	// Reordered is sent when a widget moved within its sibling order.
	Reordered
	// Reparented is sent when a widget moved to a different parent.
	Reparented
)

func (k ChangeKind) String() string {
	switch k {
	case Attached:
		return "attached"
	case Removed:
		return "removed"
	case Moved:
		return "moved"
	case Restyled:
		return "restyled"
	case Reordered:
		return "reordered"
	case Reparented:
		return "reparented"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change describes one store mutation. Old and New are screen-space
// extents (the widget plus its descendants) before and after the change;
// Old is empty for Attached and New is empty for Removed.
type Change struct {
	Kind      ChangeKind
	ID        widget.ID
	Parent    widget.ID
	OldParent widget.ID
	Old       geometry.Bounds
	New       geometry.Bounds
	// Resized is set on Moved when the size changed, not just the origin.
	Resized bool
}

// Observer receives store changes synchronously, after the store has been
// updated. Observers must not mutate the store from StoreChanged.
type Observer interface {
	StoreChanged(c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Change)

// StoreChanged calls f(c).
func (f ObserverFunc) StoreChanged(c Change) { f(c) }
