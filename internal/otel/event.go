// Package otel records structured events for minescope.
//
// Events are typed structs written as JSONL lines. The Logger writes them
// asynchronously through a buffered channel drained by one goroutine. An
// optional RingBuffer keeps recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level is event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event as "<subsystem>.<action>".
type EventKind string

const (
	// Remote operations
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"
	KindFetchStale    EventKind = "fetch.stale"

	// Collection mutations
	KindCollectionAdd      EventKind = "collection.add"
	KindCollectionRemove   EventKind = "collection.remove"
	KindCollectionConfirm  EventKind = "collection.confirm"
	KindCollectionRollback EventKind = "collection.rollback"

	// UI
	KindKeyPress EventKind = "ui.key"
	KindTab      EventKind = "ui.tab"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"

	// Message tracing, only while SetTrace(true)
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is one observability record. Everything except Kind and Time is
// optional.
type Event struct {
	Time      time.Time     `json:"t"`
	Level     Level         `json:"level,omitempty"`
	Kind      EventKind     `json:"kind"`
	Comp      string        `json:"comp,omitempty"` // "coord", "ui", "main"
	SessionID string        `json:"session_id,omitempty"`
	Op        string        `json:"op,omitempty"`
	Seq       uint64        `json:"seq,omitempty"`
	Dur       time.Duration `json:"-"`
	DurMs     float64       `json:"dur_ms,omitempty"`
	Count     int           `json:"count,omitempty"`
	Query     string        `json:"query,omitempty"`
	ArticleID string        `json:"article_id,omitempty"`
	Err       string        `json:"err,omitempty"`
	Msg       string        `json:"msg,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

// Failed reports whether e records a failed operation.
func (e Event) Failed() bool {
	return e.Level == LevelError
}

// Summary is a short one-line rendering for the debug overlay.
func (e Event) Summary() string {
	s := string(e.Kind)
	if e.Op != "" {
		s += " " + e.Op
	}
	switch {
	case e.Err != "":
		s += " err=" + e.Err
	case e.Msg != "":
		s += " " + e.Msg
	}
	return s
}
