package state

import (
	"testing"
	"time"

	"github.com/abelbrown/minescope/internal/model"
)

func art(id, title string) model.Article {
	return model.Article{ID: model.ArticleID(id), Title: title, Authors: []string{"A. Author"}}
}

func ids(articles []model.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = string(a.ID)
	}
	return out
}

func equalIDs(t *testing.T, got []model.Article, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func TestSetArticlesReplacesBothLists(t *testing.T) {
	s := New()
	seq := s.Begin(OpArticles)
	if !s.SetArticles(seq, []model.Article{art("1", "a"), art("2", "b")}) {
		t.Fatal("SetArticles rejected latest seq")
	}
	snap := s.Snapshot()
	equalIDs(t, snap.Articles, "1", "2")
	equalIDs(t, snap.Filtered, "1", "2")
}

func TestSearchResultsReplaceFilteredOnly(t *testing.T) {
	s := New()
	load := s.Begin(OpArticles)
	s.SetArticles(load, []model.Article{art("1", "a"), art("2", "b"), art("3", "c")})

	search := s.Begin(OpSearch)
	if !s.SetSearchResults(search, []model.Article{art("3", "c"), art("1", "a")}) {
		t.Fatal("SetSearchResults rejected latest seq")
	}
	snap := s.Snapshot()
	equalIDs(t, snap.Filtered, "3", "1")
	equalIDs(t, snap.Articles, "1", "2", "3")
}

func TestStaleSearchDiscarded(t *testing.T) {
	s := New()
	first := s.Begin(OpSearch)
	second := s.Begin(OpSearch)

	if !s.SetSearchResults(second, []model.Article{art("2", "new")}) {
		t.Fatal("newest search rejected")
	}
	if s.SetSearchResults(first, []model.Article{art("1", "old")}) {
		t.Fatal("stale search accepted")
	}
	if s.Finish(OpSearch, first, "", false) {
		t.Fatal("stale Finish accepted")
	}
	equalIDs(t, s.Filtered(), "2")
	if !s.Snapshot().Loading(OpSearch) {
		t.Fatal("stale Finish cleared the newer request's loading flag")
	}
	s.Finish(OpSearch, second, "", false)
	if s.Snapshot().Loading(OpSearch) {
		t.Fatal("loading not cleared")
	}
}

func TestLoadAfterSearchOwnsFilteredList(t *testing.T) {
	s := New()
	search := s.Begin(OpSearch)
	load := s.Begin(OpArticles)

	s.SetArticles(load, []model.Article{art("1", "a"), art("2", "b")})
	if s.SetSearchResults(search, []model.Article{art("9", "z")}) {
		t.Fatal("search overtaken by newer load was accepted")
	}
	equalIDs(t, s.Filtered(), "1", "2")
}

func TestSearchAfterLoadKeepsSearchResults(t *testing.T) {
	s := New()
	load := s.Begin(OpArticles)
	search := s.Begin(OpSearch)

	s.SetSearchResults(search, []model.Article{art("9", "z")})
	if !s.SetArticles(load, []model.Article{art("1", "a")}) {
		t.Fatal("articles for latest load rejected")
	}
	snap := s.Snapshot()
	equalIDs(t, snap.Filtered, "9")
	equalIDs(t, snap.Articles, "1")
}

func TestFinishRaiseSetsBanner(t *testing.T) {
	s := New()
	seq := s.Begin(OpGraph)
	s.Finish(OpGraph, seq, "Failed to fetch graph data. Please try again later.", true)

	msg, op := s.Error()
	if msg != "Failed to fetch graph data. Please try again later." || op != OpGraph {
		t.Fatalf("Error() = %q, %q", msg, op)
	}
	st := s.Status(OpGraph)
	if st.Loading || st.Err == "" {
		t.Fatalf("status = %+v", st)
	}
}

func TestFinishWithoutRaiseLeavesBanner(t *testing.T) {
	s := New()
	seq := s.Begin(OpVisualization)
	s.Finish(OpVisualization, seq, "viz failed", false)
	if msg, _ := s.Error(); msg != "" {
		t.Fatalf("banner = %q, want empty", msg)
	}
	if s.Status(OpVisualization).Err != "viz failed" {
		t.Fatal("op error not recorded")
	}
}

func TestFailIgnoresNewerSeq(t *testing.T) {
	s := New()
	first := s.Begin(OpAddFavorite)
	second := s.Begin(OpAddFavorite)

	s.Fail(OpAddFavorite, first, "add failed")
	if msg, op := s.Error(); msg != "add failed" || op != OpAddFavorite {
		t.Fatalf("Error() = %q, %q", msg, op)
	}
	st := s.Status(OpAddFavorite)
	if st.Err != "add failed" {
		t.Fatalf("op error = %q", st.Err)
	}
	if !st.Loading {
		t.Fatal("newer add still in flight but loading cleared")
	}

	s.Finish(OpAddFavorite, second, "", true)
	if s.Status(OpAddFavorite).Loading {
		t.Fatal("loading after newest add finished")
	}
	if msg, _ := s.Error(); msg != "add failed" {
		t.Fatalf("banner = %q, want earlier failure kept", msg)
	}
}

func TestIndependentFailuresStayVisible(t *testing.T) {
	s := New()
	g := s.Begin(OpGraph)
	r := s.Begin(OpRecommendations)
	a := s.Begin(OpArticles)

	s.Finish(OpGraph, g, "graph failed", true)
	s.Finish(OpRecommendations, r, "recs failed", true)
	s.Finish(OpArticles, a, "", true)

	failures := s.Snapshot().Failures()
	if len(failures) != 2 {
		t.Fatalf("failures = %v", failures)
	}
	if failures[OpGraph] != "graph failed" || failures[OpRecommendations] != "recs failed" {
		t.Fatalf("failures = %v", failures)
	}
	if msg, op := s.Error(); msg != "recs failed" || op != OpRecommendations {
		t.Fatalf("banner = %q (%s), want latest failure", msg, op)
	}
}

func TestSuccessStampsUpdatedAt(t *testing.T) {
	s := New()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	seq := s.Begin(OpStatus)
	s.Finish(OpStatus, seq, "", true)
	if got := s.Status(OpStatus).UpdatedAt; !got.Equal(fixed) {
		t.Fatalf("UpdatedAt = %v, want %v", got, fixed)
	}
}

func TestSetterRejectsUnknownSeq(t *testing.T) {
	s := New()
	if s.SetGraph(1, model.GraphData{}) {
		t.Fatal("SetGraph accepted seq that was never issued")
	}
	if s.SetInsights(1, []string{"x"}) {
		t.Fatal("SetInsights accepted seq that was never issued")
	}
}

func TestClearErrorKeepsOpErrors(t *testing.T) {
	s := New()
	seq := s.Begin(OpSearch)
	s.Finish(OpSearch, seq, "Failed to search articles. Please try again later.", true)
	s.ClearError()
	if msg, _ := s.Error(); msg != "" {
		t.Fatalf("banner = %q after ClearError", msg)
	}
	if s.Status(OpSearch).Err == "" {
		t.Fatal("op error lost")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	seq := s.Begin(OpArticles)
	s.SetArticles(seq, []model.Article{art("1", "a")})

	snap := s.Snapshot()
	snap.Filtered[0].Title = "mutated"
	snap.Filtered[0].Authors[0] = "mutated"

	again := s.Snapshot()
	if again.Filtered[0].Title != "a" || again.Filtered[0].Authors[0] != "A. Author" {
		t.Fatal("snapshot shares memory with the store")
	}
}

func TestTabNames(t *testing.T) {
	if len(Tabs) != 6 {
		t.Fatalf("len(Tabs) = %d", len(Tabs))
	}
	if TabInsights.String() != "AI Insights" {
		t.Fatalf("TabInsights = %q", TabInsights.String())
	}
	s := New()
	s.SetActiveTab(TabGraph)
	if s.ActiveTab() != TabGraph {
		t.Fatal("active tab not stored")
	}
}
