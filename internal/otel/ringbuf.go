package otel

import "sync"

// DefaultRingSize is used when NewRingBuffer is given a non-positive size.
const DefaultRingSize = 1024

// RingBuffer keeps the newest events for the debug overlay, overwriting the
// oldest once full. Safe for concurrent use.
type RingBuffer struct {
	mu     sync.Mutex
	events []Event
	next   int // slot the next Push writes
	full   bool
}

// NewRingBuffer returns a buffer holding at most size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{events: make([]Event, size)}
}

// Push stores e, evicting the oldest event when the buffer is full.
func (r *RingBuffer) Push(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
}

// orderedLocked copies the buffered events, oldest first.
func (r *RingBuffer) orderedLocked() []Event {
	if !r.full {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

func (r *RingBuffer) lenLocked() int {
	if r.full {
		return len(r.events)
	}
	return r.next
}

// Last returns up to n of the newest events, oldest first.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	all := r.orderedLocked()
	r.mu.Unlock()
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// Failures returns up to n of the newest failed operations, oldest first.
func (r *RingBuffer) Failures(n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	all := r.orderedLocked()
	r.mu.Unlock()

	var out []Event
	for _, e := range all {
		if e.Failed() {
			out = append(out, e)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// Len returns how many events are buffered.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lenLocked()
}

// Cap returns the buffer's capacity.
func (r *RingBuffer) Cap() int {
	return len(r.events)
}

// Stats counts the buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[EventKind]int)
	for _, e := range r.events[:r.lenLocked()] {
		counts[e.Kind]++
	}
	return counts
}
