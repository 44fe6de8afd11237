// Package listview renders long lists with fixed-height rows, drawing only
// the rows that intersect the viewport.
package listview

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Model is a virtualized list cursor and viewport. The zero value is an
// empty list with one-line rows.
type Model struct {
	rowHeight int
	width     int
	height    int
	total     int
	cursor    int
	offset    int
}

// New returns a list whose rows are rowHeight lines tall.
func New(rowHeight int) Model {
	if rowHeight < 1 {
		rowHeight = 1
	}
	return Model{rowHeight: rowHeight}
}

// RowHeight returns the fixed row height in lines.
func (m Model) RowHeight() int {
	if m.rowHeight < 1 {
		return 1
	}
	return m.rowHeight
}

// SetSize sets the viewport size in columns and lines.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m.clamp()
}

// SetTotal sets the number of rows. The cursor is clamped to the new range.
func (m Model) SetTotal(n int) Model {
	if n < 0 {
		n = 0
	}
	m.total = n
	return m.clamp()
}

// Cursor returns the selected row index.
func (m Model) Cursor() int { return m.cursor }

// Total returns the number of rows.
func (m Model) Total() int { return m.total }

// Offset returns the index of the first visible row.
func (m Model) Offset() int { return m.offset }

// Down moves the cursor one row down.
func (m Model) Down() Model {
	m.cursor++
	return m.clamp()
}

// Up moves the cursor one row up.
func (m Model) Up() Model {
	m.cursor--
	return m.clamp()
}

// Top moves the cursor to the first row.
func (m Model) Top() Model {
	m.cursor = 0
	return m.clamp()
}

// Bottom moves the cursor to the last row.
func (m Model) Bottom() Model {
	m.cursor = m.total - 1
	return m.clamp()
}

// VisibleRows returns how many rows intersect a viewport of the given
// height: ceil(viewport/rowHeight), clamped to remaining.
func VisibleRows(viewport, rowHeight, remaining int) int {
	if viewport <= 0 || rowHeight <= 0 || remaining <= 0 {
		return 0
	}
	n := (viewport + rowHeight - 1) / rowHeight
	if n > remaining {
		n = remaining
	}
	return n
}

// fullRows is the number of rows that fit entirely in the viewport, at
// least one.
func (m Model) fullRows() int {
	n := m.height / m.RowHeight()
	if n < 1 {
		n = 1
	}
	return n
}

func (m Model) clamp() Model {
	if m.total == 0 {
		m.cursor, m.offset = 0, 0
		return m
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= m.total {
		m.cursor = m.total - 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if full := m.fullRows(); m.cursor >= m.offset+full {
		m.offset = m.cursor - full + 1
	}
	if m.offset > m.total-1 {
		m.offset = m.total - 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
	return m
}

// Window returns the half-open range of row indexes to draw.
func (m Model) Window() (start, end int) {
	n := VisibleRows(m.height, m.RowHeight(), m.total-m.offset)
	return m.offset, m.offset + n
}

// RowFunc renders row i. selected is true for the cursor row.
type RowFunc func(i int, selected bool) string

// View renders the visible rows only. Each row is fitted to exactly
// rowHeight lines of at most width columns, and the result is cut to the
// viewport height. An empty list renders as the empty string.
func (m Model) View(row RowFunc) string {
	start, end := m.Window()
	if start == end {
		return ""
	}

	lines := make([]string, 0, (end-start)*m.RowHeight())
	for i := start; i < end; i++ {
		lines = append(lines, Fit(row(i, i == m.cursor), m.width, m.RowHeight())...)
	}
	if len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

// Fit splits s into exactly height lines, padding with blanks or dropping
// extras, and truncates each line to width display columns. A width of 0
// leaves lines untouched.
func Fit(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	if width > 0 {
		for i, l := range lines {
			lines[i] = Truncate(l, width)
		}
	}
	return lines
}

// Truncate cuts s to width display columns, ending with an ellipsis when
// anything was removed. Text containing ANSI escapes is left alone.
func Truncate(s string, width int) string {
	if width <= 0 || strings.ContainsRune(s, '\x1b') {
		return s
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
