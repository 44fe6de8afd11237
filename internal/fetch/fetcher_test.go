package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

const atomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v2</id>
    <published>2024-01-10T12:00:00Z</published>
    <updated>2024-01-11T12:00:00Z</updated>
    <title>Graph Neural Networks for
      Ore Grade Estimation</title>
    <summary>  We estimate ore grade with graph networks.
      Results improve on kriging. </summary>
    <author><name>Ada Miner</name></author>
    <author><name>Ben Drill</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2312.99999v1</id>
    <published>2023-12-01T09:00:00Z</published>
    <title>Old Paper</title>
    <summary>Older work.</summary>
    <author><name>Cy Old</name></author>
  </entry>
</feed>`

func newTestFetcher(url string) *Fetcher {
	f := NewFetcher(url, 5*time.Second)
	f.limiter = rate.NewLimiter(rate.Inf, 1)
	return f
}

func TestFetchParsesAtom(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		if r.URL.Query().Get("max_results") != "10" {
			t.Errorf("max_results = %q", r.URL.Query().Get("max_results"))
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomFeed))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)
	papers, err := f.Fetch(context.Background(), Query{Search: "all:mining", MaxResults: 10})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotQuery != "all:mining" {
		t.Errorf("search_query = %q", gotQuery)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	p := papers[0]
	if p.Title != "Graph Neural Networks for Ore Grade Estimation" {
		t.Errorf("title = %q", p.Title)
	}
	if p.ArxivID != "2401.00001v2" {
		t.Errorf("arxiv id = %q", p.ArxivID)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ada Miner" {
		t.Errorf("authors = %q", p.Authors)
	}
	if p.Abstract != "We estimate ore grade with graph networks. Results improve on kriging." {
		t.Errorf("abstract = %q", p.Abstract)
	}
	if p.FullText != p.Abstract {
		t.Error("full text should mirror abstract")
	}
	if p.Summary != "We estimate ore grade with graph networks." {
		t.Errorf("summary = %q", p.Summary)
	}
	if !p.Published.Equal(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("published = %v", p.Published)
	}
}

func TestFetchDefaultQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(atomFeed))
	}))
	defer server.Close()

	if _, err := newTestFetcher(server.URL).Fetch(context.Background(), Query{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotQuery != DefaultQuery {
		t.Errorf("search_query = %q", gotQuery)
	}
}

func TestFetchMaxAge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(atomFeed))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)
	f.now = func() time.Time { return time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC) }

	papers, err := f.Fetch(context.Background(), Query{MaxAge: 30 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 1 || papers[0].ArxivID != "2401.00001v2" {
		t.Errorf("papers = %+v", papers)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), Query{})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %v, want HTTP 503", err)
	}
}

func TestFetchBadFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not xml at all"))
	}))
	defer server.Close()

	if _, err := newTestFetcher(server.URL).Fetch(context.Background(), Query{}); err == nil {
		t.Error("expected parse error")
	}
}

func TestFetchRespectsCancelledContext(t *testing.T) {
	f := NewFetcher("http://127.0.0.1:1", time.Second)
	f.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	f.limiter.Allow() // drain the only token

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := f.Fetch(ctx, Query{}); err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > time.Second {
		t.Error("Fetch waited past the context deadline")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo wörld", 8); got != "héllo..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
