package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	conn := addConnFlags(fs)
	fs.Parse(os.Args[1:])

	s := conn.connect()
	start := time.Now()
	// CheckStatus cascades into an article and graph refresh when the
	// database is not empty.
	s.check(s.coord.CheckStatus(s.ctx))
	snap := s.state.Snapshot()

	fmt.Println(snap.StatusMessage)
	fmt.Printf("Articles loaded:   %s\n", humanize.Comma(int64(len(snap.Articles))))
	fmt.Printf("Graph:             %d nodes, %d links\n", len(snap.Graph.Nodes), len(snap.Graph.Links))
	fmt.Printf("Took:              %s\n", time.Since(start).Round(time.Millisecond))
	if snap.Error != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", snap.Error)
	}
}

func runPopulate() {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	conn := addConnFlags(fs)
	fs.Parse(os.Args[1:])

	s := conn.connect()
	s.check(s.coord.PopulateSampleData(s.ctx))
	snap := s.state.Snapshot()
	fmt.Println(snap.Notice)
	fmt.Printf("%s articles in the list\n", humanize.Comma(int64(len(snap.Articles))))
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	conn := addConnFlags(fs)
	fs.Parse(os.Args[1:])

	s := conn.connect()
	start := time.Now()
	s.check(s.coord.TriggerIngest(s.ctx))
	snap := s.state.Snapshot()
	fmt.Println(snap.Notice)
	fmt.Printf("Took %s\n", time.Since(start).Round(time.Millisecond))
}

func runStar(add bool) {
	name := "unstar"
	if add {
		name = "star"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	conn := addConnFlags(fs)
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: msq %s [flags] <article-id>\n", name)
		os.Exit(2)
	}
	id := fs.Arg(0)

	s := conn.connect()
	// The collection is client-local, so look the article up first to
	// carry its title into the output.
	s.check(s.coord.RefreshArticles(s.ctx))
	snap := s.state.Snapshot()
	var found bool
	for _, a := range snap.Articles {
		if a.ID.String() != id {
			continue
		}
		found = true
		if add {
			s.check(s.coord.AddToCollection(s.ctx, a))
			fmt.Printf("Added %q to the collection\n", a.Title)
		} else {
			s.check(s.coord.RemoveFromCollection(s.ctx, a.ID))
			fmt.Printf("Removed %q from the collection\n", a.Title)
		}
		break
	}
	if !found {
		fmt.Fprintf(os.Stderr, "error: no article with id %s\n", id)
		os.Exit(1)
	}
}
