package main

import (
	"strings"
	"testing"
)

const sampleLog = `{"t":"2024-06-01T10:00:00Z","level":"debug","kind":"fetch.start","comp":"coord","session_id":"abc123","op":"search","seq":1,"query":"ore"}
{"t":"2024-06-01T10:00:01Z","level":"info","kind":"fetch.complete","comp":"coord","session_id":"abc123","op":"search","seq":1,"dur_ms":12.5,"count":3}
not json
{"t":"2024-06-01T10:00:02Z","level":"error","kind":"fetch.error","comp":"coord","session_id":"abc123","op":"graph","seq":1,"err":"boom"}

{"t":"2024-06-01T10:00:03Z","level":"info","kind":"collection.add","comp":"coord","session_id":"def456","article_id":"7"}
`

func TestReadTailLinesKeepsLastN(t *testing.T) {
	all := func(eventRecord) bool { return true }
	lines := readTailLines(strings.NewReader(sampleLog), 2, all)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Kind != "fetch.error" || lines[1].ev.Kind != "collection.add" {
		t.Errorf("kinds = %q, %q", lines[0].ev.Kind, lines[1].ev.Kind)
	}
	if !strings.Contains(string(lines[1].raw), `"article_id":"7"`) {
		t.Errorf("raw line not preserved: %s", lines[1].raw)
	}
}

func TestReadTailLinesZero(t *testing.T) {
	if got := readTailLines(strings.NewReader(sampleLog), 0, func(eventRecord) bool { return true }); got != nil {
		t.Errorf("n=0 should return nil, got %d lines", len(got))
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   int
	}{
		{"all", eventFilter{}, 4},
		{"kind prefix", eventFilter{kind: "fetch"}, 3},
		{"min level", eventFilter{level: "info"}, 3},
		{"errors only", eventFilter{level: "error"}, 1},
		{"op", eventFilter{op: "search"}, 2},
		{"session prefix", eventFilter{session: "def"}, 1},
		{"comp miss", eventFilter{comp: "ui"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readTailLines(strings.NewReader(sampleLog), 10, tt.filter.match)
			if len(got) != tt.want {
				t.Errorf("matched %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	lines := readTailLines(strings.NewReader(sampleLog), 10, func(eventRecord) bool { return true })

	got := formatEvent(lines[1].ev)
	for _, want := range []string{"10:00:01.000", "INFO", "fetch.complete", "search#1", "(12.5ms)", "n=3"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent missing %q: %s", want, got)
		}
	}
	if got := formatEvent(lines[2].ev); !strings.Contains(got, "err=boom") {
		t.Errorf("error line missing err: %s", got)
	}
}

func TestDurPrecision(t *testing.T) {
	if durPrecision(250) != 0 || durPrecision(12.5) != 1 || durPrecision(0.3) != 2 {
		t.Error("unexpected precision")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("a long title here", 10); got != "a long ..." {
		t.Errorf("got %q", got)
	}
}
