package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abelbrown/minescope/internal/charts"
	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/state"
)

func runGraph() {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	conn := addConnFlags(fs)
	top := fs.Int("top", 10, "Number of highest-degree nodes to list")
	fs.Parse(os.Args[1:])

	s := conn.connect()
	s.check(s.coord.RefreshGraph(s.ctx))
	printGraph(s.state.Snapshot().Graph, *top)
}

func printGraph(g model.GraphData, top int) {
	sum := charts.Summarize(g, top)
	fmt.Printf("Nodes:        %d\n", sum.Nodes)
	fmt.Printf("Links:        %d\n", sum.Links)
	fmt.Printf("Components:   %d (largest %d)\n", sum.Components, sum.Largest)
	if sum.Dangling > 0 || sum.SelfLoops > 0 {
		fmt.Printf("Dangling:     %d\n", sum.Dangling)
		fmt.Printf("Self-loops:   %d\n", sum.SelfLoops)
	}
	if len(sum.Top) == 0 {
		return
	}
	fmt.Println("\nMost connected:")
	for _, n := range sum.Top {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		fmt.Printf("  %-40s degree %d\n", truncate(label, 40), n.Degree)
	}
}

func runRecs() {
	fs := flag.NewFlagSet("recs", flag.ExitOnError)
	conn := addConnFlags(fs)
	fs.Parse(os.Args[1:])

	s := conn.connect()
	s.check(s.coord.RefreshRecommendations(s.ctx))
	s.check(s.coord.LoadRecommendationFeed(s.ctx))
	snap := s.state.Snapshot()

	fmt.Println("Recommended:")
	for _, a := range snap.Recommendations {
		fmt.Printf("  %-6s %s\n", a.ID, truncate(a.Title, 80))
	}
	if len(snap.Feed) == 0 {
		fmt.Println("\nNot enough articles for recommendations.")
		return
	}
	for _, g := range snap.Feed {
		fmt.Printf("\n%s\n", truncate(g.Article.Title, 90))
		for _, r := range g.Recommendations {
			fmt.Printf("  %5.1f%%  %s\n", r.Similarity*100, truncate(r.Title, 80))
		}
	}
}

func runViz() {
	fs := flag.NewFlagSet("viz", flag.ExitOnError)
	conn := addConnFlags(fs)
	width := fs.Int("width", 80, "Chart width in columns")
	fs.Parse(os.Args[1:])

	s := conn.connect()
	s.coord.LoadVisualization(s.ctx)
	snap := s.state.Snapshot()
	if snap.Visualization == nil {
		fmt.Fprintln(os.Stderr, "error: "+snap.Ops[state.OpVisualization].Err)
		os.Exit(1)
	}
	v := *snap.Visualization

	section := func(title, body string) {
		if body == "" {
			body = "(no data)"
		}
		fmt.Printf("== %s ==\n%s\n\n", title, body)
	}
	section("Publications per month", charts.HBar(charts.Bar(v), *width))
	section("Research topics", charts.Shares(charts.Doughnut(v)))
	section("Citations over time", charts.HBar(charts.Line(v), *width))
	section("Citations vs year", fmt.Sprintf("%d points", len(charts.Scatter(v))))
	section("Research impact", fmt.Sprintf("%d bubbles", len(charts.Bubble(v))))
	if len(v.TopAuthors) > 0 {
		section("Top authors", charts.HBar(charts.Authors(v), *width))
	}
	if v.CollaborationNetwork != nil {
		fmt.Println("== Collaboration network ==")
		printGraph(*v.CollaborationNetwork, 5)
	}
}

func runInsights() {
	fs := flag.NewFlagSet("insights", flag.ExitOnError)
	conn := addConnFlags(fs)
	fs.Parse(os.Args[1:])

	s := conn.connect()
	s.coord.LoadVisualization(s.ctx)
	snap := s.state.Snapshot()
	if st := snap.Ops[state.OpInsights]; st.Err != "" {
		fmt.Fprintln(os.Stderr, "error: "+st.Err)
		os.Exit(1)
	}
	for _, line := range snap.Insights {
		fmt.Println("• " + line)
	}
}
