// Package event defines the event records that flow from an input source
// through the dispatcher to widgets.
//
// Raw platform events (MouseMove, MouseDown, MouseUp, MouseScroll, Key,
// Resize, Close) come from an input Source. The dispatcher derives the
// semantic events (MouseEnter, MouseExit, Click) from them, and the main
// loop synthesizes one Tick per frame. Custom events carry an application
// defined payload and are delivered only to widgets that accept them.
package event

import (
	"fmt"
	"iter"
	"time"

	"github.com/go-drift/pane/pkg/geometry"
)

// Type identifies the kind of an event.
type Type int

const (
	// TypeNone is the zero Type and is never dispatched.
	TypeNone Type = iota
	// MouseMove reports a new pointer position.
	MouseMove
	// MouseDown reports a button press.
	MouseDown
	// MouseUp reports a button release.
	MouseUp
	// MouseScroll reports a wheel movement; Scroll holds the delta.
	MouseScroll
	// MouseEnter is delivered when the pointer starts hovering a widget.
	MouseEnter
	// MouseExit is delivered when the pointer stops hovering a widget.
	MouseExit
	// Click is delivered when a press and release land on the same widget.
	Click
	// Key reports a key press.
	Key
	// Tick is the per-frame timer event.
	Tick
	// Resize reports a new window size in Size.
	Resize
	// Close requests that the main loop stop.
	Close
	// Custom is an application-defined event.
	Custom
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case MouseMove:
		return "mouse_move"
	case MouseDown:
		return "mouse_down"
	case MouseUp:
		return "mouse_up"
	case MouseScroll:
		return "mouse_scroll"
	case MouseEnter:
		return "mouse_enter"
	case MouseExit:
		return "mouse_exit"
	case Click:
		return "click"
	case Key:
		return "key"
	case Tick:
		return "tick"
	case Resize:
		return "resize"
	case Close:
		return "close"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Positional reports whether the event carries a screen position and is
// routed by hit testing rather than broadcast.
func (t Type) Positional() bool {
	switch t {
	case MouseMove, MouseDown, MouseUp, MouseScroll, MouseEnter, MouseExit, Click:
		return true
	default:
		return false
	}
}

// Category is the capability a widget must declare to receive an event.
type Category int

const (
	// CategorySystem covers every platform-originated and semantic event.
	CategorySystem Category = iota
	// CategoryCustom covers application-defined events.
	CategoryCustom
)

// Category returns the category of events of type t.
func (t Type) Category() Category {
	if t == Custom {
		return CategoryCustom
	}
	return CategorySystem
}

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonNone:
		return "none"
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// KeyCode identifies non-printable keys. Printable keys use KeyRune with
// the character in Event.Rune.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Event is a tagged record. Which fields are meaningful depends on Type.
type Event struct {
	Type      Type
	Timestamp time.Time

	// Position is the pointer position in screen coordinates.
	Position geometry.Point
	// Local is Position relative to the receiving widget's origin.
	// Filled in by the dispatcher for positional events.
	Local  geometry.Point
	Button Button
	// Scroll is the wheel delta for MouseScroll.
	Scroll geometry.Point

	Code      KeyCode
	Rune      rune
	Modifiers Modifiers

	// Size is the new window size for Resize.
	Size geometry.Size

	// Name and Payload describe Custom events.
	Name    string
	Payload any
}

func (e Event) String() string {
	switch {
	case e.Type.Positional():
		return fmt.Sprintf("%s@%v", e.Type, e.Position)
	case e.Type == Key:
		return fmt.Sprintf("key(%d,%q)", e.Code, e.Rune)
	case e.Type == Resize:
		return fmt.Sprintf("resize(%v)", e.Size)
	case e.Type == Custom:
		return fmt.Sprintf("custom(%s)", e.Name)
	default:
		return e.Type.String()
	}
}

// Source produces the platform events that arrived since the previous
// call. The returned sequence is finite and is consumed once per tick.
type Source interface {
	Poll() iter.Seq[Event]
}

// Queue is a Source backed by a slice, used by tests and by embeddings that
// already own their own platform event pump. Queue is not safe for
// concurrent use; events must be pushed from the tick goroutine.
type Queue struct {
	pending []Event
}

// Push appends events to the queue.
func (q *Queue) Push(events ...Event) {
	q.pending = append(q.pending, events...)
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Poll drains the queue. Events pushed while the sequence is being
// consumed are delivered on the next Poll.
func (q *Queue) Poll() iter.Seq[Event] {
	batch := q.pending
	q.pending = nil
	return func(yield func(Event) bool) {
		for i, ev := range batch {
			if !yield(ev) {
				q.pending = append(batch[i+1:], q.pending...)
				return
			}
		}
	}
}
