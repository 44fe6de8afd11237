package otel

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerWritesFetchEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Level: LevelDebug, Kind: KindFetchStart, Comp: "coord", Op: "search", Seq: 4, Query: "mineral"})
	l.Emit(Event{Level: LevelInfo, Kind: KindFetchComplete, Comp: "coord", Op: "search", Seq: 4, Dur: 1500 * time.Microsecond, Count: 12})
	if n := l.Close(); n != 0 {
		t.Fatalf("dropped = %d", n)
	}

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	start, done := lines[0], lines[1]
	if start["kind"] != "fetch.start" || start["query"] != "mineral" || start["seq"] != float64(4) {
		t.Errorf("start = %v", start)
	}
	if _, ok := start["dur_ms"]; ok {
		t.Errorf("start has dur_ms: %v", start)
	}
	if done["dur_ms"] != 1.5 || done["count"] != float64(12) {
		t.Errorf("complete = %v", done)
	}
	if start["t"] == nil {
		t.Error("time not stamped")
	}
	if start["session_id"] == "" || start["session_id"] != done["session_id"] {
		t.Errorf("session ids %v and %v", start["session_id"], done["session_id"])
	}
}

func TestLoggerSessionsDiffer(t *testing.T) {
	var a, b bytes.Buffer
	la, lb := NewLogger(&a), NewLogger(&b)
	la.Info(KindStartup, "main", "minescope dev")
	lb.Info(KindStartup, "main", "minescope dev")
	la.Close()
	lb.Close()

	sa := decodeLines(t, a.Bytes())[0]["session_id"]
	sb := decodeLines(t, b.Bytes())[0]["session_id"]
	if sa == sb {
		t.Errorf("two runs share session id %v", sa)
	}
}

func TestCollectionRollbackReachesRing(t *testing.T) {
	ring := NewRingBuffer(16)
	l := NewNullLogger()
	l.SetRingBuffer(ring)

	l.Emit(Event{Level: LevelInfo, Kind: KindCollectionAdd, ArticleID: "42"})
	l.Emit(Event{Level: LevelDebug, Kind: KindFetchStart, Op: "favorite_add", Seq: 1})
	l.Emit(Event{Level: LevelError, Kind: KindFetchError, Op: "favorite_add", Seq: 1, Err: "backend unavailable"})
	l.Emit(Event{Level: LevelWarn, Kind: KindCollectionRollback, Op: "favorite_add", ArticleID: "42"})
	l.Close()

	want := []EventKind{KindCollectionAdd, KindFetchStart, KindFetchError, KindCollectionRollback}
	got := ring.Last(10)
	if len(got) != len(want) {
		t.Fatalf("ring holds %d events, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Kind != want[i] {
			t.Errorf("event %d = %s, want %s", i, e.Kind, want[i])
		}
		if e.SessionID == "" {
			t.Errorf("event %d has no session id", i)
		}
	}

	failures := ring.Failures(5)
	if len(failures) != 1 || failures[0].Op != "favorite_add" || failures[0].Err != "backend unavailable" {
		t.Errorf("failures = %+v", failures)
	}
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	l := NewNullLogger()
	l.Info(KindStartup, "main", "start")
	if n := l.Close(); n != 0 {
		t.Fatalf("dropped = %d before shutdown event", n)
	}
	l.Info(KindShutdown, "main", "exit")
	if n := l.Close(); n != 1 {
		t.Errorf("dropped = %d, want 1", n)
	}
}

type brokenDisk struct{}

func (brokenDisk) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteErrorsStillFeedOverlay(t *testing.T) {
	ring := NewRingBuffer(8)
	l := NewLogger(brokenDisk{})
	l.SetRingBuffer(ring)
	for i := 1; i <= 3; i++ {
		l.Emit(Event{Kind: KindFetchStart, Op: "graph", Seq: uint64(i)})
	}
	if n := l.Close(); n != 3 {
		t.Errorf("dropped = %d, want 3", n)
	}
	if ring.Len() != 3 {
		t.Errorf("ring len = %d, want 3", ring.Len())
	}
}

func TestConcurrentEmitDuringClose(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	const workers, perWorker = 4, 100
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				l.Emit(Event{Kind: KindFetchComplete, Op: "articles"})
			}
		}()
	}
	l.Close()
	wg.Wait()

	dropped := l.Close()
	written := bytes.Count(buf.Bytes(), []byte("\n"))
	if written+dropped != workers*perWorker {
		t.Errorf("written %d + dropped %d != %d", written, dropped, workers*perWorker)
	}
}
