package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	conn := addConnFlags(fs)
	limit := fs.Int("n", 0, "Show at most n articles (0 for all)")
	fs.Parse(os.Args[1:])

	s := conn.connect()
	s.check(s.coord.RefreshArticles(s.ctx))
	articles := s.state.Snapshot().Articles
	if *limit > 0 && len(articles) > *limit {
		articles = articles[:*limit]
	}
	printArticles(articles, time.Now())
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	conn := addConnFlags(fs)
	fs.Parse(os.Args[1:])

	query := strings.Join(fs.Args(), " ")
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: msq search [flags] <query>")
		os.Exit(2)
	}

	s := conn.connect()
	start := time.Now()
	s.check(s.coord.Search(s.ctx, query))
	fmt.Printf("Query: %q (%s)\n\n", query, time.Since(start).Round(time.Millisecond))
	printArticles(s.state.Snapshot().Filtered, time.Now())
}
