package tderrors

import "log/slog"

// HandleError logs a structured Error via log/slog.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String()}
	if err.Tick != 0 {
		attrs = append(attrs, "tick", err.Tick)
	}
	if err.Err != nil {
		attrs = append(attrs, "err", err.Err)
	}
	slog.Error("tinydisplay error", attrs...)
}

// HandlePanic logs a recovered panic via log/slog.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	slog.Error("tinydisplay panic recovered", attrs...)
}
