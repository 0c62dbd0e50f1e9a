package tderrors

import (
	"runtime"
	"strings"
	"sync"
)

// Handler receives errors and panics reported by the engine.
type Handler interface {
	// HandleError is called for an initialization/registration error.
	HandleError(err *Error)
	// HandlePanic is called when a worker or action callback panics and
	// the panic was recovered.
	HandlePanic(err *PanicError)
}

// LogHandler is a Handler that logs to log/slog at Error level.
type LogHandler struct {
	// Verbose includes the captured stack trace in the log record.
	Verbose bool
}

var (
	defaultHandler Handler = &LogHandler{}
	handlerMu      sync.RWMutex
)

// SetHandler replaces the package-level handler. Passing nil restores the
// default LogHandler.
func SetHandler(h Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		defaultHandler = &LogHandler{}
		return
	}
	defaultHandler = h
}

func currentHandler() Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return defaultHandler
}

// Report sends err to the current handler. Safe to call with a nil err.
func Report(err *Error) {
	if err == nil {
		return
	}
	currentHandler().HandleError(err)
}

// ReportPanic sends a recovered panic to the current handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	currentHandler().HandlePanic(err)
}

// Recover is intended for use with defer around pool workers and
// orchestrator-invoked trigger actions:
//
//	defer tderrors.Recover("framepool.worker")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: captureStack(),
		})
	}
}

func captureStack() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return strings.TrimSpace(string(buf[:n]))
}
