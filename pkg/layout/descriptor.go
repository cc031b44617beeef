// Package layout assigns bounds to the children of layout containers.
//
// A container is any widget with a Descriptor registered on the Engine.
// Children are stacked along the main axis in child order: fixed children
// take their declared length, the rest is shared among stretch children by
// weight. Nested containers are resolved depth-first in the same pass.
package layout

import (
	"fmt"

	"github.com/go-drift/pane/pkg/geometry"
)

// Orientation is the main axis of a stack container.
type Orientation int

const (
	// Horizontal stacks children left to right.
	Horizontal Orientation = iota
	// Vertical stacks children top to bottom.
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Insets are the margins between a container's edges and its content.
type Insets struct {
	Top, Left, Right, Bottom int
}

// Uniform returns insets of n on every side.
func Uniform(n int) Insets {
	return Insets{Top: n, Left: n, Right: n, Bottom: n}
}

// Content returns the content area of a container of the given size, in the
// container's local coordinates. Sizes never go negative.
func (in Insets) Content(size geometry.Size) geometry.Bounds {
	return geometry.XYWH(
		in.Left,
		in.Top,
		max(0, size.Width-in.Left-in.Right),
		max(0, size.Height-in.Top-in.Bottom),
	)
}

// Descriptor configures a stack container.
type Descriptor struct {
	Orientation Orientation
	// Spacing is the gap between consecutive children.
	Spacing int
	Padding Insets
}

// Hint is a child's sizing request along the container's main axis, plus an
// optional fixed cross-axis size. The zero Hint stretches with weight 1.
type Hint struct {
	fixed    bool
	length   int
	weight   int
	cross    int
	hasCross bool
}

// Fixed requests exactly n units along the main axis.
func Fixed(n int) Hint {
	return Hint{fixed: true, length: max(0, n)}
}

// Stretch requests a share of the remaining length proportional to weight.
// Weights below 1 count as 1.
func Stretch(weight int) Hint {
	return Hint{weight: weight}
}

// WithCross returns a copy of h with a fixed cross-axis size.
func (h Hint) WithCross(n int) Hint {
	h.cross = max(0, n)
	h.hasCross = true
	return h
}

// IsFixed reports whether h requests a fixed main-axis length.
func (h Hint) IsFixed() bool { return h.fixed }

// Length returns the fixed main-axis length, 0 for stretch hints.
func (h Hint) Length() int { return h.length }

// Weight returns the stretch weight, 0 for fixed hints.
func (h Hint) Weight() int {
	if h.fixed {
		return 0
	}
	return max(1, h.weight)
}

// Cross returns the fixed cross-axis size if one was declared.
func (h Hint) Cross() (int, bool) { return h.cross, h.hasCross }

func (h Hint) String() string {
	s := fmt.Sprintf("stretch(%d)", h.Weight())
	if h.fixed {
		s = fmt.Sprintf("fixed(%d)", h.length)
	}
	if h.hasCross {
		s += fmt.Sprintf(" cross=%d", h.cross)
	}
	return s
}
