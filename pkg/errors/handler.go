package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

const maxStackDepth = 32

var (
	handlerMu sync.RWMutex
	handler   ErrorHandler = &LogHandler{}
)

// Handler returns the process-wide error handler.
func Handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// SetHandler installs h as the process-wide error handler and returns the
// previous one. nil restores a LogHandler on stderr.
func SetHandler(h ErrorHandler) (prev ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev, handler = handler, h
	return prev
}

// Report hands a non-fatal widget error to the handler. A zero Timestamp
// is set to now.
func Report(err *WidgetError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic hands a recovered panic to the handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// Recover reports a panic in progress as a PanicError for op on widget.
// It must be deferred directly:
//
//	defer errors.Recover("scheduler.Draw", uint64(id))
func Recover(op string, widget uint64) {
	if r := recover(); r != nil {
		reportRecovered(op, widget, r)
	}
}

// RecoverWithCallback is Recover followed by callback(r), which lets the
// caller count the panic or mark the frame as failed.
func RecoverWithCallback(op string, widget uint64, callback func(r any)) {
	if r := recover(); r != nil {
		reportRecovered(op, widget, r)
		if callback != nil {
			callback(r)
		}
	}
}

func reportRecovered(op string, widget uint64, r any) {
	ReportPanic(&PanicError{
		Op:         op,
		Widget:     widget,
		Value:      r,
		StackTrace: stack(4),
		Timestamp:  time.Now(),
	})
}

// CaptureStack returns the caller's stack, one "function\n\tfile:line"
// entry per frame.
func CaptureStack() string {
	return stack(3)
}

// stack formats the goroutine's stack, skipping skip frames (runtime.Callers
// counts itself as frame 0).
func stack(skip int) string {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			return sb.String()
		}
	}
}
