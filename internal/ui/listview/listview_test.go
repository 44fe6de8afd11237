package listview

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/minescope/internal/model"
)

func TestVisibleRows(t *testing.T) {
	tests := []struct {
		viewport, rowHeight, remaining, want int
	}{
		{600, 250, 500, 3},
		{500, 250, 500, 2},
		{600, 250, 2, 2},
		{600, 250, 0, 0},
		{0, 250, 10, 0},
		{24, 4, 100, 6},
		{25, 4, 100, 7},
	}
	for _, tt := range tests {
		got := VisibleRows(tt.viewport, tt.rowHeight, tt.remaining)
		if got != tt.want {
			t.Errorf("VisibleRows(%d, %d, %d) = %d, want %d", tt.viewport, tt.rowHeight, tt.remaining, got, tt.want)
		}
	}
}

func TestViewRendersOnlyVisibleRows(t *testing.T) {
	m := New(250).SetSize(80, 600).SetTotal(500)

	var rendered []int
	m.View(func(i int, selected bool) string {
		rendered = append(rendered, i)
		return fmt.Sprintf("row %d", i)
	})

	if len(rendered) != 3 {
		t.Fatalf("rendered %d rows, want 3: %v", len(rendered), rendered)
	}
	for i, idx := range rendered {
		if idx != i {
			t.Errorf("rendered[%d] = %d", i, idx)
		}
	}
}

func TestViewEmptyListRendersNothing(t *testing.T) {
	m := New(4).SetSize(80, 20).SetTotal(0)
	called := false
	out := m.View(func(int, bool) string {
		called = true
		return "x"
	})
	if out != "" || called {
		t.Errorf("empty list rendered %q (called=%v)", out, called)
	}
}

func TestViewHeightIsClamped(t *testing.T) {
	m := New(4).SetSize(40, 10).SetTotal(100)
	out := m.View(func(i int, _ bool) string { return fmt.Sprintf("row %d\nsecond", i) })
	if n := strings.Count(out, "\n") + 1; n != 10 {
		t.Errorf("view has %d lines, want 10", n)
	}
}

func TestCursorStaysInWindow(t *testing.T) {
	m := New(4).SetSize(80, 12).SetTotal(50) // three full rows

	for i := 0; i < 10; i++ {
		m = m.Down()
	}
	if m.Cursor() != 10 {
		t.Fatalf("cursor = %d, want 10", m.Cursor())
	}
	start, end := m.Window()
	if m.Cursor() < start || m.Cursor() >= end {
		t.Errorf("cursor %d outside window [%d,%d)", m.Cursor(), start, end)
	}
	if m.Offset() != 8 {
		t.Errorf("offset = %d, want 8", m.Offset())
	}

	m = m.Top()
	if m.Offset() != 0 || m.Cursor() != 0 {
		t.Errorf("after Top: cursor=%d offset=%d", m.Cursor(), m.Offset())
	}

	m = m.Bottom()
	if m.Cursor() != 49 {
		t.Errorf("after Bottom: cursor=%d", m.Cursor())
	}
	start, end = m.Window()
	if end != 50 || start > 49 {
		t.Errorf("window after Bottom = [%d,%d)", start, end)
	}

	m = m.Up()
	if m.Cursor() != 48 {
		t.Errorf("after Up: cursor=%d", m.Cursor())
	}
}

func TestSetTotalClampsCursor(t *testing.T) {
	m := New(1).SetSize(80, 5).SetTotal(20).Bottom()
	m = m.SetTotal(3)
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor())
	}
	m = m.SetTotal(0)
	if m.Cursor() != 0 || m.Offset() != 0 {
		t.Errorf("cursor=%d offset=%d after empty", m.Cursor(), m.Offset())
	}
}

func TestSelectedFlag(t *testing.T) {
	m := New(1).SetSize(80, 5).SetTotal(5).Down().Down()
	var selected []int
	m.View(func(i int, sel bool) string {
		if sel {
			selected = append(selected, i)
		}
		return ""
	})
	if len(selected) != 1 || selected[0] != 2 {
		t.Errorf("selected = %v, want [2]", selected)
	}
}

func TestTruncateUsesDisplayWidth(t *testing.T) {
	s := "機械学習による鉱物探査"
	got := Truncate(s, 10)
	if w := runewidth.StringWidth(got); w > 10 {
		t.Errorf("width = %d, want <= 10 (%q)", w, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("missing ellipsis: %q", got)
	}
	if Truncate("short", 10) != "short" {
		t.Error("short string changed")
	}
}

func TestFitPadsAndCuts(t *testing.T) {
	lines := Fit("a\nb", 10, 4)
	if len(lines) != 4 || lines[2] != "" {
		t.Errorf("Fit pad = %q", lines)
	}
	lines = Fit("a\nb\nc", 10, 2)
	if len(lines) != 2 || lines[1] != "b" {
		t.Errorf("Fit cut = %q", lines)
	}
}

func TestArticleRow(t *testing.T) {
	a := model.Article{
		ID:              "1",
		Title:           "Deep Learning in Mining",
		Authors:         []string{"John Doe", "Jane Smith"},
		Abstract:        "This paper explores the application of deep learning techniques in the mining industry.",
		PublicationDate: "2023-01-15",
		Relevance:       0.95,
	}
	row := ArticleRow(a, false, true, 60, 5)
	lines := strings.Split(row, "\n")
	if len(lines) > 5 {
		t.Fatalf("row has %d lines, want <= 5", len(lines))
	}
	for _, want := range []string{"Deep Learning in Mining", "John Doe, Jane Smith", "2023-01-15", "Relevance: 0.95", "★", "deep learning"} {
		if !strings.Contains(row, want) {
			t.Errorf("row missing %q:\n%s", want, row)
		}
	}

	one := ArticleRow(a, true, false, 60, 1)
	if strings.Contains(one, "\n") {
		t.Errorf("one-line row has newlines: %q", one)
	}
}

func TestWrapLimitsLines(t *testing.T) {
	text := strings.Repeat("word ", 100)
	lines := wrap(text, 20, 3)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for _, l := range lines {
		if runewidth.StringWidth(l) > 20 {
			t.Errorf("line too wide: %q", l)
		}
	}
	if !strings.HasSuffix(lines[2], "…") {
		t.Errorf("last line missing ellipsis: %q", lines[2])
	}
}
