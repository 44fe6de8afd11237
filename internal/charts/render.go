package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// HBar renders pairs as horizontal bars scaled to the largest value, one
// line per pair, labels padded to a common width. width is the total line
// width in columns.
func HBar(pairs []Pair, width int) string {
	if len(pairs) == 0 {
		return ""
	}
	labelW := 0
	maxV := 0.0
	for _, p := range pairs {
		if w := runewidth.StringWidth(p.Label); w > labelW {
			labelW = w
		}
		if finite(p.Value) && p.Value > maxV {
			maxV = p.Value
		}
	}
	if labelW > 24 {
		labelW = 24
	}
	valueW := 8
	barW := width - labelW - valueW - 2
	if barW < 1 {
		barW = 1
	}

	var b strings.Builder
	for i, p := range pairs {
		label := runewidth.FillRight(runewidth.Truncate(p.Label, labelW, "…"), labelW)
		n := 0
		if maxV > 0 && finite(p.Value) && p.Value > 0 {
			n = scale(p.Value/maxV, barW)
			if n == 0 {
				n = 1
			}
		}
		fmt.Fprintf(&b, "%s %s %s", label, strings.Repeat("█", n)+strings.Repeat(" ", barW-n), formatValue(p.Value))
		if i < len(pairs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Spark renders values as a one-line sparkline.
func Spark(pairs []Pair) string {
	if len(pairs) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pairs {
		if !finite(p.Value) {
			continue
		}
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	top := len(sparkLevels) - 1
	out := make([]rune, len(pairs))
	for i, p := range pairs {
		level := 0
		if hi > lo && finite(p.Value) {
			// Halving keeps hi-lo finite near the float64 limits.
			level = int(math.Floor(scaleRatio((p.Value/2-lo/2)/(hi/2-lo/2)) * float64(top)))
		}
		out[i] = sparkLevels[level]
	}
	return string(out)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// scaleRatio clamps r to [0, 1]; NaN maps to 0.
func scaleRatio(r float64) float64 {
	if !(r > 0) {
		return 0
	}
	return math.Min(r, 1)
}

// scale maps ratio onto 0..n columns.
func scale(ratio float64, n int) int {
	return int(math.Round(scaleRatio(ratio) * float64(n)))
}

// Shares renders doughnut segments as "label  42.0%" lines.
func Shares(slices []Slice) string {
	lines := make([]string, len(slices))
	for i, s := range slices {
		lines[i] = fmt.Sprintf("%-20s %5.1f%%", runewidth.Truncate(s.Label, 20, "…"), s.Share*100)
	}
	return strings.Join(lines, "\n")
}

func formatValue(v float64) string {
	if !finite(v) {
		return fmt.Sprint(v)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
