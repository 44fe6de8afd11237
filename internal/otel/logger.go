package otel

import (
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// queueSize bounds the events waiting for the writer; Emit drops beyond it.
const queueSize = 4096

// Logger appends events to a JSONL event log, one object per line, and
// mirrors each written event into an optional RingBuffer. Emit never
// blocks: a single goroutine owns the writer and the ring pushes.
type Logger struct {
	session string
	queue   chan Event
	enc     *json.Encoder
	ring    atomic.Pointer[RingBuffer]
	dropped atomic.Uint64

	mu     sync.RWMutex // closed and the close of queue
	closed bool
	done   chan struct{}
}

// NewLogger starts a Logger writing to w. Every event it writes carries the
// same random session id, so one dashboard run can be picked out of a
// shared log. Close must be called to flush and stop the writer.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{
		session: uuid.NewString(),
		queue:   make(chan Event, queueSize),
		enc:     json.NewEncoder(w),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// NewNullLogger returns a Logger that only feeds its ring buffer.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

func (l *Logger) run() {
	defer close(l.done)
	for e := range l.queue {
		if err := l.enc.Encode(e); err != nil {
			l.dropped.Add(1)
		}
		if rb := l.ring.Load(); rb != nil {
			rb.Push(e)
		}
	}
}

// Emit stamps e with the session id, and with the current time when Time is
// zero, then queues it. Events emitted after Close or while the queue is
// full are counted as dropped.
func (l *Logger) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.session

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.queue <- e:
	default:
		l.dropped.Add(1)
	}
}

// Info emits an info-level event with a free-form message.
func (l *Logger) Info(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// SetRingBuffer mirrors every event written from now on into rb.
func (l *Logger) SetRingBuffer(rb *RingBuffer) {
	l.ring.Store(rb)
}

// Close writes everything still queued and stops the writer. It returns
// the number of events lost over the logger's lifetime, to a full queue, a
// write error or an Emit after Close. Later calls only report the count.
func (l *Logger) Close() int {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	<-l.done
	return int(l.dropped.Load())
}
