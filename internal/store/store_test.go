package store

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleArticles() []Article {
	return []Article{
		{
			Title:     "Deep Learning in Mining",
			Authors:   []string{"John Doe", "Jane Smith"},
			Abstract:  "This paper explores the applications of deep learning in the mining industry.",
			Published: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			ArxivID:   "2301.12345",
		},
		{
			Title:     "Machine Learning for Mineral Exploration",
			Authors:   []string{"Alice Johnson", "Bob Williams"},
			Abstract:  "We present a novel machine learning approach for mineral exploration.",
			Published: time.Date(2023, 2, 20, 0, 0, 0, 0, time.UTC),
			ArxivID:   "2302.67890",
		},
		{
			Title:     "AI-driven Mining Operations Optimization",
			Authors:   []string{"Charlie Brown", "Diana Clark"},
			Abstract:  "This study demonstrates how AI can optimize mining operations.",
			FullText:  "Full text mentions 100% recall on ore_grade prediction.",
			Published: time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
			ArxivID:   "2303.11111",
		},
	}
}

func TestOpenCreatesTables(t *testing.T) {
	st := openTest(t)
	for _, table := range []string{"articles", "users"} {
		var name string
		err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("%s table not created: %v", table, err)
		}
	}
}

func TestSaveArticlesSkipsKnownArxivIDs(t *testing.T) {
	st := openTest(t)

	n, err := st.SaveArticles(sampleArticles())
	if err != nil {
		t.Fatalf("SaveArticles: %v", err)
	}
	if n != 3 {
		t.Errorf("added = %d, want 3", n)
	}

	again := append(sampleArticles()[:1], Article{Title: "New", Abstract: "x", ArxivID: "2401.00001"})
	n, err = st.SaveArticles(again)
	if err != nil {
		t.Fatalf("SaveArticles again: %v", err)
	}
	if n != 1 {
		t.Errorf("added = %d on second save, want 1", n)
	}

	count, _ := st.Count()
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}

func TestArticlesWithoutArxivIDAlwaysInsert(t *testing.T) {
	st := openTest(t)
	a := Article{Title: "Manual", Abstract: "entered by hand"}
	st.SaveArticles([]Article{a})
	n, _ := st.SaveArticles([]Article{a})
	if n != 1 {
		t.Errorf("added = %d, want 1", n)
	}
}

func TestAllRoundTrip(t *testing.T) {
	st := openTest(t)
	st.SaveArticles(sampleArticles())

	all, err := st.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	a := all[0]
	if a.ID != 1 || a.Title != "Deep Learning in Mining" {
		t.Errorf("first = %+v", a)
	}
	if len(a.Authors) != 2 || a.Authors[1] != "Jane Smith" {
		t.Errorf("authors = %q", a.Authors)
	}
	if !a.Published.Equal(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("published = %v", a.Published)
	}
	if a.ArxivID != "2301.12345" || a.Favorite {
		t.Errorf("arxiv/favorite = %q/%v", a.ArxivID, a.Favorite)
	}
}

func TestSearch(t *testing.T) {
	st := openTest(t)
	st.SaveArticles(sampleArticles())

	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2, 3}},
		{"mining", []int64{1, 3}},
		{"MINERAL", []int64{2}},
		{"100%", []int64{3}},
		{"ore_grade", []int64{3}},
		{"%", []int64{3}},
		{"o_e", nil},
		{"quantum", nil},
	}
	for _, tt := range tests {
		got, err := st.Search(tt.query)
		if err != nil {
			t.Fatalf("Search(%q): %v", tt.query, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q) = %d results, want %d", tt.query, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("Search(%q)[%d] = %d, want %d", tt.query, i, got[i].ID, tt.want[i])
			}
		}
	}
}

func TestListLimit(t *testing.T) {
	st := openTest(t)
	st.SaveArticles(sampleArticles())
	got, err := st.List(2)
	if err != nil || len(got) != 2 {
		t.Fatalf("List(2) = %d, %v", len(got), err)
	}
}

func TestGetNotFound(t *testing.T) {
	st := openTest(t)
	if _, err := st.Get(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSetFavorite(t *testing.T) {
	st := openTest(t)
	st.SaveArticles(sampleArticles())

	if err := st.SetFavorite(2, true); err != nil {
		t.Fatalf("SetFavorite: %v", err)
	}
	favs, _ := st.Favorites()
	if len(favs) != 1 || favs[0].ID != 2 {
		t.Errorf("favorites = %+v", favs)
	}

	if err := st.SetFavorite(2, false); err != nil {
		t.Fatalf("SetFavorite false: %v", err)
	}
	favs, _ = st.Favorites()
	if len(favs) != 0 {
		t.Errorf("favorites after clear = %d", len(favs))
	}

	if err := st.SetFavorite(99, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := openTest(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.SaveArticles([]Article{{Title: "t", Abstract: "a"}})
		}()
		go func() {
			defer wg.Done()
			st.Search("t")
		}()
	}
	wg.Wait()
	if n, _ := st.Count(); n != 10 {
		t.Errorf("count = %d, want 10", n)
	}
}

func TestUsers(t *testing.T) {
	st := openTest(t)

	created, err := st.EnsureUser("default_user", "password123")
	if err != nil || !created {
		t.Fatalf("EnsureUser = %v, %v", created, err)
	}
	created, _ = st.EnsureUser("default_user", "other")
	if created {
		t.Error("second EnsureUser created a duplicate")
	}

	id, err := st.Authenticate("default_user", "password123")
	if err != nil || id == 0 {
		t.Fatalf("Authenticate = %d, %v", id, err)
	}
	if _, err := st.Authenticate("default_user", "other"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := st.Authenticate("nobody", "x"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("unknown user err = %v", err)
	}
}
