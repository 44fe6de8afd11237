package listview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/minescope/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	abstractStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	starStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// ArticleRow is the standard row for an article: title, authors and date,
// relevance, then as much abstract as the row height allows. Text is cut to
// width before styling.
func ArticleRow(a model.Article, selected, starred bool, width, height int) string {
	if width <= 0 {
		width = 80
	}
	if height < 1 {
		height = 1
	}

	mark := "  "
	if starred {
		mark = starStyle.Render("★ ")
	}
	title := Truncate(a.Title, width-2)
	if selected {
		title = selectedStyle.Render(title)
	} else {
		title = titleStyle.Render(title)
	}
	lines := []string{mark + title}

	if height > 1 {
		meta := strings.Join(a.Authors, ", ")
		if a.PublicationDate != "" {
			meta += " · " + a.PublicationDate
		}
		lines = append(lines, "  "+metaStyle.Render(Truncate(meta, width-2)))
	}
	if height > 2 {
		lines = append(lines, "  "+metaStyle.Render(fmt.Sprintf("Relevance: %.2f", a.Relevance)))
	}
	if height > 3 {
		wrapped := wrap(a.Abstract, width-2, height-3)
		for _, l := range wrapped {
			lines = append(lines, "  "+abstractStyle.Render(l))
		}
	}
	return strings.Join(lines, "\n")
}

// wrap breaks s into at most maxLines lines of width columns, word by word.
// The last line ends with an ellipsis when text was left over.
func wrap(s string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}
	words := strings.Fields(s)
	var lines []string
	var cur string
	for _, w := range words {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if runewidth.StringWidth(next) <= width {
			cur = next
			continue
		}
		if cur != "" {
			lines = append(lines, Truncate(cur, width))
		}
		cur = w
		if len(lines) == maxLines {
			lines[maxLines-1] = runewidth.Truncate(lines[maxLines-1]+" …", width, "…")
			return lines
		}
	}
	if cur != "" {
		lines = append(lines, Truncate(cur, width))
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
