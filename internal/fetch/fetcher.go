// Package fetch retrieves research papers from the arXiv Atom API for the
// development backend.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/abelbrown/minescope/internal/store"
)

// DefaultQuery is the arXiv search used when none is configured: machine
// learning papers about mining and mineral processing.
const DefaultQuery = `cat:cs.LG AND (mining OR metallurgy OR "mineral processing")`

// Query selects papers to fetch.
type Query struct {
	Search     string        // arXiv search_query expression
	MaxResults int           // 0 means 100
	MaxAge     time.Duration // drop papers published earlier than this; 0 keeps all
}

// Fetcher retrieves papers from one arXiv API endpoint.
type Fetcher struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	now     func() time.Time
}

// NewFetcher creates a Fetcher for baseURL (normally
// http://export.arxiv.org/api/query) with the given HTTP timeout. Requests
// are spaced at least three seconds apart, as arXiv asks of API clients.
func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
		now:     time.Now,
	}
}

// Fetch runs q and returns matching papers, newest first. Nothing is
// stored; the caller decides what to keep.
func (f *Fetcher) Fetch(ctx context.Context, q Query) ([]store.Article, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL, err := f.requestURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "minescope-devserver/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch arxiv feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var cutoff time.Time
	if q.MaxAge > 0 {
		cutoff = f.now().Add(-q.MaxAge)
	}

	papers := make([]store.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := convertEntry(item)
		if !cutoff.IsZero() && !a.Published.After(cutoff) {
			continue
		}
		papers = append(papers, a)
	}
	return papers, nil
}

func (f *Fetcher) requestURL(q Query) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid arxiv url %q: %w", f.baseURL, err)
	}
	search := q.Search
	if search == "" {
		search = DefaultQuery
	}
	limit := q.MaxResults
	if limit <= 0 {
		limit = 100
	}
	v := u.Query()
	v.Set("search_query", search)
	v.Set("start", "0")
	v.Set("max_results", strconv.Itoa(limit))
	v.Set("sortBy", "submittedDate")
	v.Set("sortOrder", "descending")
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// convertEntry maps one Atom entry to an article. The abstract doubles as
// full text; arXiv's API does not serve paper bodies.
func convertEntry(item *gofeed.Item) store.Article {
	authors := make([]string, 0, len(item.Authors))
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			authors = append(authors, p.Name)
		}
	}

	abstract := collapse(item.Description)
	if abstract == "" {
		abstract = collapse(item.Content)
	}

	var published time.Time
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC()
	}

	return store.Article{
		Title:     collapse(item.Title),
		Authors:   authors,
		Abstract:  abstract,
		FullText:  abstract,
		Summary:   summarize(abstract, 300),
		Published: published,
		ArxivID:   arxivID(item),
	}
}

// arxivID returns the last path segment of the entry id, e.g.
// "2301.12345v1" for http://arxiv.org/abs/2301.12345v1.
func arxivID(item *gofeed.Item) string {
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	id = strings.TrimRight(id, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// collapse joins runs of whitespace, which arXiv titles and abstracts
// contain because of hard line wraps.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// summarize returns the first sentence of s, shortened to maxLen runes.
func summarize(s string, maxLen int) string {
	if i := strings.Index(s, ". "); i >= 0 {
		s = s[:i+1]
	}
	return truncate(s, maxLen)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
