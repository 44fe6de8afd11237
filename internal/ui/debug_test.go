package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/minescope/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	if got := debugOverlay(nil, 100, 40); got != "" {
		t.Errorf("nil ring should render nothing, got %q", got)
	}
}

func TestDebugOverlayStats(t *testing.T) {
	ring := otel.NewRingBuffer(32)
	now := time.Now()
	ring.Push(otel.Event{Time: now, Kind: otel.KindFetchStart, Op: "search", Seq: 1})
	ring.Push(otel.Event{Time: now, Kind: otel.KindFetchStart, Op: "graph", Seq: 1})
	ring.Push(otel.Event{Time: now, Kind: otel.KindFetchComplete, Op: "search", Seq: 1})
	ring.Push(otel.Event{Time: now, Level: otel.LevelError, Kind: otel.KindFetchError, Op: "graph", Seq: 1, Err: "boom"})
	ring.Push(otel.Event{Time: now, Kind: otel.KindCollectionAdd, ArticleID: "7"})
	ring.Push(otel.Event{Time: now, Kind: otel.KindCollectionRollback, ArticleID: "7"})

	out := debugOverlay(ring, 120, 40)

	for _, want := range []string{
		"Operation Stats",
		"2 started, 1 complete, 1 errors, 0 stale",
		"1 added, 0 removed, 0 confirmed, 1 rolled back",
		"6 / 32 events",
		"Recent Failures",
		"boom",
		"Recent Events",
		"#1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("overlay missing %q:\n%s", want, out)
		}
	}
}

func TestDebugOverlayNoFailures(t *testing.T) {
	ring := otel.NewRingBuffer(8)
	ring.Push(otel.Event{Time: time.Now(), Kind: otel.KindStartup})

	out := debugOverlay(ring, 120, 40)
	if strings.Contains(out, "Recent Failures") {
		t.Error("failures section should be hidden when there are none")
	}
}

func TestDebugOverlayClampsHeight(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Time: time.Now(), Kind: otel.KindKeyPress, Msg: "j"})
	}
	out := debugOverlay(ring, 120, 12)
	if n := len(strings.Split(out, "\n")); n > 12 {
		t.Errorf("overlay is %d lines, want at most 12", n)
	}
}

func TestDebugToggle(t *testing.T) {
	ring := otel.NewRingBuffer(8)
	ring.Push(otel.Event{Time: time.Now(), Kind: otel.KindStartup})
	app := sized(t, NewApp(Commands{}, Options{Ring: ring}), 120, 40)

	app, _ = update(t, app, keyRunes("D"))
	if !strings.Contains(app.View(), "Operation Stats") {
		t.Error("D should open the debug overlay")
	}
	app, _ = update(t, app, keyRunes("D"))
	if strings.Contains(app.View(), "Operation Stats") {
		t.Error("D again should close the overlay")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0ms"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{3 * time.Minute, "3m"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 4, "abc…"},
		{"ab", 1, "a"},
		{"héllo wörld", 6, "héllo…"},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestTraceRecordsMessagesButNotTicks(t *testing.T) {
	defer otel.SetTrace(otel.TraceEnabled())

	for _, on := range []bool{true, false} {
		otel.SetTrace(on)
		ring := otel.NewRingBuffer(32)
		events := otel.NewNullLogger()
		events.SetRingBuffer(ring)
		app := NewApp(Commands{}, Options{Events: events, Ring: ring})

		app = sized(t, app, 80, 24)
		app, _ = update(t, app, app.spinner.Tick())
		events.Close()

		want := 0
		if on {
			want = 1
		}
		if n := ring.Stats()[otel.KindMsgReceived]; n != want {
			t.Errorf("trace=%v: %d messages recorded, want %d", on, n, want)
		}
		for _, e := range ring.Last(10) {
			if e.Kind == otel.KindMsgReceived && e.Msg != "tea.WindowSizeMsg" {
				t.Errorf("recorded %q", e.Msg)
			}
		}
	}
}
