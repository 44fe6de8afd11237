package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/abelbrown/minescope/internal/charts"
	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/state"
	"github.com/abelbrown/minescope/internal/ui/listview"
)

const appTitle = "Mining Research Dashboard"

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var parts []string
	parts = append(parts, TitleStyle.Render(appTitle))
	parts = append(parts, a.renderTabs())
	parts = append(parts, a.renderSearch())
	if a.snap.Error != "" {
		parts = append(parts, ErrorStyle.Width(a.width).Render(listview.Truncate("Error: "+a.snap.Error, a.width-2)))
	}
	if a.snap.Notice != "" {
		parts = append(parts, NoticeStyle.Render(listview.Truncate(a.snap.Notice, a.width-2)))
	}

	h := a.contentHeight()
	var content string
	switch {
	case a.showDebug:
		content = debugOverlay(a.ring, a.width, h)
	case a.showHelp:
		content = a.help.View(keys)
	default:
		content = a.renderTab(h)
	}
	parts = append(parts, strings.Join(listview.Fit(content, 0, h), "\n"))
	parts = append(parts, a.renderStatusBar())
	return strings.Join(parts, "\n")
}

func (a App) renderTabs() string {
	labels := make([]string, len(state.Tabs))
	for i, t := range state.Tabs {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == a.tab {
			labels[i] = ActiveTab.Render(label)
		} else {
			labels[i] = InactiveTab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labels...)
}

func (a App) renderSearch() string {
	if a.searching {
		return a.search.View()
	}
	if a.query != "" {
		return SearchPrompt.Render("/ ") + a.query + MutedStyle.Render(fmt.Sprintf("(%d results)", len(a.snap.Filtered)))
	}
	return MutedStyle.Render("press / to search")
}

func (a App) renderTab(h int) string {
	switch a.tab {
	case state.TabArticles:
		return a.renderArticles(h)
	case state.TabVisualization:
		return a.renderVisualization()
	case state.TabGraph:
		return a.renderGraph()
	case state.TabRecommendations:
		return a.renderRecommendations()
	case state.TabCollection:
		return a.renderCollection()
	case state.TabInsights:
		return a.renderInsights()
	}
	return ""
}

func (a App) renderArticles(h int) string {
	if a.showDetail {
		if art, ok := a.selectedArticle(); ok {
			return a.renderDetail(art)
		}
	}
	if len(a.snap.Filtered) == 0 {
		if a.snap.ListLoading() {
			return MutedStyle.Render("Loading articles...")
		}
		return MutedStyle.Render("No articles found. Press p to add sample data or i to fetch from arXiv.")
	}
	return a.list.View(func(i int, selected bool) string {
		art := a.snap.Filtered[i]
		return listview.ArticleRow(art, selected, a.starred[art.ID], a.width, a.list.RowHeight())
	})
}

// articleMarkdown is the detail pane source.
func articleMarkdown(art model.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", art.Title)
	if len(art.Authors) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(art.Authors, ", "))
	}
	var meta []string
	if art.PublicationDate != "" {
		meta = append(meta, "Published "+art.PublicationDate)
	}
	meta = append(meta, fmt.Sprintf("Relevance %.2f", art.Relevance))
	if art.ArxivID != "" {
		meta = append(meta, fmt.Sprintf("[arXiv:%s](https://arxiv.org/abs/%s)", art.ArxivID, art.ArxivID))
	}
	b.WriteString(strings.Join(meta, " · "))
	b.WriteString("\n\n## Abstract\n\n")
	b.WriteString(art.Abstract)
	b.WriteString("\n")
	return b.String()
}

func (a App) renderDetail(art model.Article) string {
	src := articleMarkdown(art)
	if a.md == nil {
		return src
	}
	out, err := a.md.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}

// newMarkdownRenderer builds a glamour renderer wrapping at width.
func newMarkdownRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil
	}
	return r
}

func (a App) renderVisualization() string {
	v := a.snap.Visualization
	if v == nil {
		return MutedStyle.Render("Loading...")
	}
	w := a.width - 2
	var sections []string
	add := func(title, body string) {
		if body == "" {
			body = MutedStyle.Render("no data")
		}
		sections = append(sections, SectionHeader.Render(title)+"\n"+body)
	}

	add("Publications per month", charts.HBar(charts.Bar(*v), w))
	add("Research topics", charts.Shares(charts.Doughnut(*v)))

	line := charts.Line(*v)
	spark := charts.Spark(line)
	if len(line) > 0 {
		spark = fmt.Sprintf("%s  %s → %s", spark, line[0].Label, line[len(line)-1].Label)
	}
	add("Citations over time", spark)

	scatter := charts.Scatter(*v)
	add("Citations vs publication year", scatterSummary(scatter))
	add("Research impact", fmt.Sprintf("%d bubbles", len(charts.Bubble(*v))))
	if len(v.TopAuthors) > 0 {
		add("Top authors", charts.HBar(charts.Authors(*v), w))
	}
	if v.CollaborationNetwork != nil {
		add("Collaboration network", graphSummary(*v.CollaborationNetwork))
	}
	return strings.Join(sections, "\n\n")
}

func scatterSummary(points []model.Point) string {
	if len(points) == 0 {
		return ""
	}
	lo, hi := points[0].X, points[0].X
	var cites float64
	for _, p := range points {
		lo = min(lo, p.X)
		hi = max(hi, p.X)
		cites += p.Y
	}
	return fmt.Sprintf("%d articles, years %.0f–%.0f, %.0f citations", len(points), lo, hi, cites)
}

func graphSummary(g model.GraphData) string {
	s := charts.Summarize(g, 5)
	lines := []string{
		fmt.Sprintf("%d nodes, %d links, %d components (largest %d)", s.Nodes, s.Links, s.Components, s.Largest),
	}
	if s.Dangling > 0 || s.SelfLoops > 0 {
		lines = append(lines, fmt.Sprintf("%d dangling links, %d self-loops", s.Dangling, s.SelfLoops))
	}
	for _, n := range s.Top {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		lines = append(lines, fmt.Sprintf("  %-32s degree %d", listview.Truncate(label, 32), n.Degree))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderGraph() string {
	net := charts.Network(a.snap.Graph)
	if len(net.Nodes) == 0 {
		if a.snap.Loading(state.OpGraph) {
			return MutedStyle.Render("Loading...")
		}
		return MutedStyle.Render("No graph data.")
	}
	var b strings.Builder
	b.WriteString(SectionHeader.Render("Article graph"))
	b.WriteString("\n")
	b.WriteString(graphSummary(a.snap.Graph))

	shown := 0
	for _, l := range net.Links {
		if shown == 0 {
			b.WriteString("\n\n")
			b.WriteString(SectionHeader.Render("Links"))
		}
		if shown == 10 {
			fmt.Fprintf(&b, "\n  … %d more", len(net.Links)-shown)
			break
		}
		fmt.Fprintf(&b, "\n  %s ─ %s", l.Source, l.Target)
		if l.Label != "" {
			fmt.Fprintf(&b, "  (%s)", l.Label)
		}
		shown++
	}
	return b.String()
}

func (a App) renderRecommendations() string {
	var b strings.Builder
	b.WriteString(SectionHeader.Render("Recommended"))
	if len(a.snap.Recommendations) == 0 {
		b.WriteString("\n")
		if a.snap.Loading(state.OpRecommendations) {
			b.WriteString(MutedStyle.Render("Loading..."))
		} else {
			b.WriteString(MutedStyle.Render("No recommendations."))
		}
	}
	for _, r := range a.snap.Recommendations {
		fmt.Fprintf(&b, "\n  %s", listview.Truncate(r.Title, a.width-4))
	}

	b.WriteString("\n\n")
	b.WriteString(SectionHeader.Render("Similar articles"))
	feed := a.snap.Ops[state.OpRecommendationFeed]
	switch {
	case feed.UpdatedAt.IsZero():
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render("Loading..."))
	case len(a.snap.Feed) == 0:
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render("Not enough articles for recommendations."))
	}
	for _, g := range a.snap.Feed {
		fmt.Fprintf(&b, "\n%s", listview.Truncate(g.Article.Title, a.width-2))
		for _, r := range g.Recommendations {
			fmt.Fprintf(&b, "\n  %3.0f%%  %s", r.Similarity*100, listview.Truncate(r.Title, a.width-10))
		}
	}
	return b.String()
}

func (a App) renderCollection() string {
	header := SectionHeader.Render(fmt.Sprintf("My Collection (%d)", len(a.snap.Collection)))
	if a.snap.PendingChanges > 0 {
		header += " " + PendingStyle.Render(fmt.Sprintf("%d pending", a.snap.PendingChanges))
	}
	if len(a.snap.Collection) == 0 {
		return header + "\n" + MutedStyle.Render("Your collection is empty. Press s on an article to add it.")
	}
	body := a.coll.View(func(i int, selected bool) string {
		return listview.ArticleRow(a.snap.Collection[i], selected, true, a.width, a.coll.RowHeight())
	})
	return header + "\n\n" + body
}

func (a App) renderInsights() string {
	if len(a.snap.Insights) == 0 {
		if a.snap.Ops[state.OpInsights].UpdatedAt.IsZero() {
			return MutedStyle.Render("Loading...")
		}
		return MutedStyle.Render("No insights.")
	}
	lines := []string{SectionHeader.Render("AI Insights")}
	for _, s := range a.snap.Insights {
		lines = append(lines, "  • "+s)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderStatusBar() string {
	var parts []string
	if a.busy() {
		parts = append(parts, a.spinner.View()+" working")
	}
	if a.snap.StatusMessage != "" {
		parts = append(parts, a.snap.StatusMessage)
	}
	parts = append(parts, fmt.Sprintf("%d articles", len(a.snap.Filtered)))
	coll := fmt.Sprintf("%d saved", len(a.snap.Collection))
	if a.snap.PendingChanges > 0 {
		coll += fmt.Sprintf(" (%d pending)", a.snap.PendingChanges)
	}
	parts = append(parts, coll)
	if t := a.lastRefresh(); !t.IsZero() {
		parts = append(parts, "updated "+humanize.RelTime(t, a.now(), "ago", "from now"))
	}

	left := StatusBarText.Render(strings.Join(parts, " · "))
	hints := StatusBarKey.Render("?") + StatusBarText.Render(":help ") +
		StatusBarKey.Render("q") + StatusBarText.Render(":quit")
	return StatusBar.Width(a.width).Render(left + "  " + hints)
}

// lastRefresh is when the article list last changed.
func (a App) lastRefresh() time.Time {
	t := a.snap.Ops[state.OpArticles].UpdatedAt
	if s := a.snap.Ops[state.OpSearch].UpdatedAt; s.After(t) {
		t = s
	}
	return t
}
