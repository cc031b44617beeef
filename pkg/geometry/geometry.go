// Package geometry provides the integer point, size and bounds types shared
// by every layer of the toolkit.
//
// Units are device pixels for raster backends and cells for terminal
// backends. Bounds are half-open: a Bounds covers the columns
// [Left, Right) and rows [Top, Bottom).
package geometry

import "fmt"

// Point is a position or a displacement.
type Point struct {
	X int
	Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size represents width and height dimensions.
type Size struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are non-negative.
func (s Size) Valid() bool {
	return s.Width >= 0 && s.Height >= 0
}

// IsEmpty reports whether the size covers no area.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Bounds is an origin plus a size.
type Bounds struct {
	Origin Point
	Size   Size
}

// XYWH constructs Bounds from left, top, width, height values.
func XYWH(x, y, width, height int) Bounds {
	return Bounds{Origin: Point{X: x, Y: y}, Size: Size{Width: width, Height: height}}
}

// FromSize returns bounds of the given size at the origin.
func FromSize(s Size) Bounds {
	return Bounds{Size: s}
}

// Left returns the left edge.
func (b Bounds) Left() int { return b.Origin.X }

// Top returns the top edge.
func (b Bounds) Top() int { return b.Origin.Y }

// Right returns the exclusive right edge.
func (b Bounds) Right() int { return b.Origin.X + b.Size.Width }

// Bottom returns the exclusive bottom edge.
func (b Bounds) Bottom() int { return b.Origin.Y + b.Size.Height }

// Valid reports whether the size is non-negative.
func (b Bounds) Valid() bool {
	return b.Size.Valid()
}

// IsEmpty returns true if the bounds have zero or negative area.
func (b Bounds) IsEmpty() bool {
	return b.Size.IsEmpty()
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Left() && p.X < b.Right() && p.Y >= b.Top() && p.Y < b.Bottom()
}

// Translate returns b moved by d.
func (b Bounds) Translate(d Point) Bounds {
	return Bounds{Origin: b.Origin.Add(d), Size: b.Size}
}

// Intersects reports whether b and other share any area.
func (b Bounds) Intersects(other Bounds) bool {
	return !b.Intersect(other).IsEmpty()
}

// Intersect returns the intersection of two bounds.
// Returns empty bounds if they don't overlap.
func (b Bounds) Intersect(other Bounds) Bounds {
	left := max(b.Left(), other.Left())
	top := max(b.Top(), other.Top())
	right := min(b.Right(), other.Right())
	bottom := min(b.Bottom(), other.Bottom())
	if left >= right || top >= bottom {
		return Bounds{}
	}
	return XYWH(left, top, right-left, bottom-top)
}

// Union returns the smallest bounds containing both b and other.
// Empty operands do not contribute.
func (b Bounds) Union(other Bounds) Bounds {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	left := min(b.Left(), other.Left())
	top := min(b.Top(), other.Top())
	right := max(b.Right(), other.Right())
	bottom := max(b.Bottom(), other.Bottom())
	return XYWH(left, top, right-left, bottom-top)
}

// Covers reports whether other lies entirely inside b.
func (b Bounds) Covers(other Bounds) bool {
	if other.IsEmpty() {
		return true
	}
	return other.Left() >= b.Left() && other.Top() >= b.Top() &&
		other.Right() <= b.Right() && other.Bottom() <= b.Bottom()
}

func (b Bounds) String() string {
	return fmt.Sprintf("%v+%v", b.Origin, b.Size)
}
