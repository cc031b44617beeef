// Package errors provides structured error handling for the pane toolkit.
//
// Store and layout operations return *WidgetError values that unwrap to one
// of the sentinel errors below, so callers can test them with the standard
// library's errors.Is. Conditions that must not abort a frame (layout
// overflow, a panicking widget handler) are sent to the process-wide
// ErrorHandler instead of being returned.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindUnknownWidget indicates an operation referenced an ID absent from the store.
	KindUnknownWidget
	// KindInvalidParent indicates an add or reparent with an unusable parent.
	KindInvalidParent
	// KindInvalidBounds indicates a bounds mutation with a negative size.
	KindInvalidBounds
	// KindLayoutOverflow indicates fixed-size children exceeded their container.
	KindLayoutOverflow
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownWidget:
		return "unknown_widget"
	case KindInvalidParent:
		return "invalid_parent"
	case KindInvalidBounds:
		return "invalid_bounds"
	case KindLayoutOverflow:
		return "layout_overflow"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// sentinel is a comparable constant error.
type sentinel string

func (s sentinel) Error() string { return string(s) }

const (
	// ErrUnknownWidget is wrapped by errors of kind KindUnknownWidget.
	ErrUnknownWidget = sentinel("unknown widget")
	// ErrInvalidParent is wrapped by errors of kind KindInvalidParent.
	ErrInvalidParent = sentinel("invalid parent")
	// ErrInvalidBounds is wrapped by errors of kind KindInvalidBounds.
	ErrInvalidBounds = sentinel("invalid bounds")
	// ErrLayoutOverflow is wrapped by errors of kind KindLayoutOverflow.
	ErrLayoutOverflow = sentinel("layout overflow")
)

// WidgetError represents a structured error about a single widget.
type WidgetError struct {
	// Op is the operation that failed (e.g., "store.Remove").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Widget is the numeric widget ID involved, 0 if none.
	Widget uint64
	// Err is the underlying error.
	Err error
	// Timestamp is when the error was reported. Zero for returned errors.
	Timestamp time.Time
}

// New returns a WidgetError of the given kind wrapping the kind's sentinel.
func New(op string, kind ErrorKind, widget uint64) *WidgetError {
	return &WidgetError{Op: op, Kind: kind, Widget: widget, Err: sentinelFor(kind)}
}

// Wrap returns a WidgetError of the given kind wrapping err.
func Wrap(op string, kind ErrorKind, widget uint64, err error) *WidgetError {
	return &WidgetError{Op: op, Kind: kind, Widget: widget, Err: err}
}

func (e *WidgetError) Error() string {
	if e.Widget != 0 {
		return fmt.Sprintf("%s [%s] widget=%d: %v", e.Op, e.Kind, e.Widget, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *WidgetError) Unwrap() error {
	return e.Err
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindUnknownWidget:
		return ErrUnknownWidget
	case KindInvalidParent:
		return ErrInvalidParent
	case KindInvalidBounds:
		return ErrInvalidBounds
	case KindLayoutOverflow:
		return ErrLayoutOverflow
	default:
		return sentinel(kind.String())
	}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "dispatch.Click").
	Op string
	// Widget is the widget whose handler panicked, 0 if unknown.
	Widget uint64
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the toolkit.
type ErrorHandler interface {
	// HandleError is called for non-fatal conditions such as layout overflow.
	HandleError(err *WidgetError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
