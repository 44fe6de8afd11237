package otel

import "sync/atomic"

var tracing atomic.Bool

// SetTrace turns recording of every TUI message on or off.
func SetTrace(on bool) {
	tracing.Store(on)
}

// TraceEnabled reports whether TUI messages are being recorded.
func TraceEnabled() bool {
	return tracing.Load()
}
