package errors

import (
	"context"
	"log/slog"
	"os"
)

// LogHandler is an ErrorHandler that writes structured log records.
// Layout overflow is logged at warn level, everything else at error level.
type LogHandler struct {
	// Logger receives the records. Nil means a text logger on stderr.
	Logger *slog.Logger
	// Verbose enables stack traces on panics.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// HandleError logs a WidgetError.
func (h *LogHandler) HandleError(err *WidgetError) {
	if err == nil {
		return
	}
	level := slog.LevelError
	if err.Kind == KindLayoutOverflow {
		level = slog.LevelWarn
	}
	attrs := []any{
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
	}
	if err.Widget != 0 {
		attrs = append(attrs, slog.Uint64("widget", err.Widget))
	}
	if err.Err != nil {
		attrs = append(attrs, slog.String("err", err.Err.Error()))
	}
	h.logger().Log(context.Background(), level, "pane error", attrs...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{
		slog.String("op", err.Op),
		slog.Any("value", err.Value),
	}
	if err.Widget != 0 {
		attrs = append(attrs, slog.Uint64("widget", err.Widget))
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().Error("pane panic", attrs...)
}
