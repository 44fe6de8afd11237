package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/minescope/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing operation stats, recent
// failures and recent events. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Operation Stats"))
	lines = append(lines, fmt.Sprintf("  Fetches:     %d started, %d complete, %d errors, %d stale",
		stats[otel.KindFetchStart], stats[otel.KindFetchComplete], stats[otel.KindFetchError], stats[otel.KindFetchStale]))
	lines = append(lines, fmt.Sprintf("  Collection:  %d added, %d removed, %d confirmed, %d rolled back",
		stats[otel.KindCollectionAdd], stats[otel.KindCollectionRemove],
		stats[otel.KindCollectionConfirm], stats[otel.KindCollectionRollback]))
	lines = append(lines, fmt.Sprintf("  Buffer:      %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	if failures := ring.Failures(5); len(failures) > 0 {
		lines = append(lines, DebugHeaderStyle.Render("Recent Failures"))
		for _, e := range failures {
			lines = append(lines, fmt.Sprintf("  %6s  %-16s  %s", formatAge(time.Since(e.Time)), e.Op, truncateRunes(e.Err, 50)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %s", formatAge(time.Since(e.Time)), truncateRunes(e.Summary(), 60))
		if e.Seq > 0 {
			line += fmt.Sprintf("  #%d", e.Seq)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 84
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// truncateRunes shortens s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
