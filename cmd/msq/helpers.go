package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/minescope/internal/api"
	"github.com/abelbrown/minescope/internal/config"
	"github.com/abelbrown/minescope/internal/coord"
	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/state"
)

// dateLayout is the backend's publicationDate format.
const dateLayout = "2006-01-02T15:04:05"

// session is a coordinator bound to one backend, plus the state it writes.
type session struct {
	ctx   context.Context
	coord *coord.Coordinator
	state *state.Store
}

// connFlags are the connection flags every network subcommand accepts.
type connFlags struct {
	url      *string
	user     *string
	password *string
	timeout  *time.Duration
}

func addConnFlags(fs *flag.FlagSet) connFlags {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return connFlags{
		url:      fs.String("api", cfg.API.URL, "Backend base URL"),
		user:     fs.String("user", cfg.API.Username, "Username (logs in when set with -password)"),
		password: fs.String("password", cfg.API.Password, "Password"),
		timeout:  fs.Duration("timeout", cfg.API.Timeout.Std(), "Per-request timeout (0 disables)"),
	}
}

// connect builds a session and logs in when credentials are present.
func (f connFlags) connect() *session {
	t := *f.timeout
	if t == 0 {
		t = -1
	}
	client, err := api.New(api.Options{BaseURL: *f.url, Timeout: t, UserAgent: "msq/0.1"})
	if err != nil {
		log.Fatalf("invalid API configuration: %v", err)
	}
	st := state.New()
	s := &session{ctx: context.Background(), coord: coord.New(client, st, coord.Options{}), state: st}
	if *f.user != "" && *f.password != "" {
		if err := s.coord.Login(s.ctx, *f.user, *f.password); err != nil {
			s.fail(err)
		}
	}
	return s
}

// fail prints the user-facing message for the last failure and exits.
func (s *session) fail(err error) {
	msg, _ := s.state.Error()
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintln(os.Stderr, "error: "+msg)
	fmt.Fprintf(os.Stderr, "  %v\n", err)
	os.Exit(1)
}

// check exits through fail when err is set.
func (s *session) check(err error) {
	if err != nil {
		s.fail(err)
	}
}

// printArticles writes one block per article.
func printArticles(articles []model.Article, now time.Time) {
	for _, a := range articles {
		fmt.Printf("%-6s %s\n", a.ID, truncate(a.Title, 90))
		meta := truncate(strings.Join(a.Authors, ", "), 60)
		if t, err := time.Parse(dateLayout, a.PublicationDate); err == nil {
			meta += " · " + humanize.RelTime(t, now, "ago", "from now")
		} else if a.PublicationDate != "" {
			meta += " · " + a.PublicationDate
		}
		fmt.Printf("       %s\n", meta)
	}
	fmt.Printf("\n%s articles\n", humanize.Comma(int64(len(articles))))
}

// eventLogPath returns the path to the dashboard's event log.
func eventLogPath() string {
	return filepath.Join(config.Dir(), "minescope.events.jsonl")
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
