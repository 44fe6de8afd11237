// Package state holds the dashboard's in-memory view state.
//
// Every slice has an explicit setter. Results of asynchronous fetches are
// accepted only when they carry the latest sequence number issued for their
// op, so a slow response can never overwrite a newer one. The collection is
// updated in two phases: a tentative change is visible immediately and is
// later confirmed or rolled back.
//
// Store is safe for concurrent use.
package state

import (
	"sync"
	"time"

	"github.com/abelbrown/minescope/internal/model"
)

// collectionEntry is one starred article plus its in-flight mutations.
// An entry can be awaiting confirmation of its addition and of a removal at
// the same time.
type collectionEntry struct {
	article     model.Article
	adding      bool
	addToken    uint64
	removing    bool
	removeToken uint64
}

// Store is the dashboard's view state.
type Store struct {
	mu sync.RWMutex

	articles        []model.Article
	filtered        []model.Article
	graph           model.GraphData
	recommendations []model.Article
	feed            []model.RecommendationGroup
	visualization   *model.VisualizationData
	insights        []string
	collection      []collectionEntry

	activeTab     Tab
	statusMessage string
	notice        string
	lastError     string
	lastErrorOp   Op

	ops          map[Op]*OpState
	seq          uint64 // global counter; every Begin takes the next value
	filteredSeq  uint64 // latest seq issued to an op that writes filtered
	collectionID uint64

	now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		ops: make(map[Op]*OpState),
		now: time.Now,
	}
}

// writesFiltered reports whether op's result replaces filteredArticles.
func writesFiltered(op Op) bool {
	return op == OpArticles || op == OpSearch
}

func (s *Store) status(op Op) *OpState {
	st, ok := s.ops[op]
	if !ok {
		st = &OpState{}
		s.ops[op] = st
	}
	return st
}

// Begin marks op as loading and returns its new sequence number.
func (s *Store) Begin(op Op) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	st := s.status(op)
	st.Seq = s.seq
	st.Loading = true
	if writesFiltered(op) {
		s.filteredSeq = s.seq
	}
	return s.seq
}

// IsLatest reports whether seq is still the newest request for op.
func (s *Store) IsLatest(op Op, seq uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.ops[op]
	return ok && st.Seq == seq
}

// Finish records the outcome of request seq for op. errMsg is the
// user-facing message; empty means success. With raise set, a failure also
// replaces the banner error. Finish returns false and changes nothing when a
// newer request for op has been issued.
func (s *Store) Finish(op Op, seq uint64, errMsg string, raise bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status(op)
	if st.Seq != seq {
		return false
	}
	st.Loading = false
	st.Err = errMsg
	if errMsg == "" {
		st.UpdatedAt = s.now()
		return true
	}
	if raise {
		s.lastError = errMsg
		s.lastErrorOp = op
	}
	return true
}

// Fail records a failure of request seq for op whether or not a newer
// request has been issued since. Collection mutations use it: two overlapping
// adds are separate changes, so the later one must not hide the earlier
// one's failure. op stays loading while its newest request is in flight.
func (s *Store) Fail(op Op, seq uint64, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status(op)
	if st.Seq == seq {
		st.Loading = false
	}
	st.Err = errMsg
	s.lastError = errMsg
	s.lastErrorOp = op
}

// acceptLocked reports whether seq may write op's slice. Caller holds mu.
func (s *Store) acceptLocked(op Op, seq uint64) bool {
	st, ok := s.ops[op]
	return ok && st.Seq == seq
}

// SetArticles stores the result of a "load all" request: both the full list
// and the filtered list are replaced. The filtered list is left alone when a
// newer search or load has been issued since.
func (s *Store) SetArticles(seq uint64, articles []model.Article) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(OpArticles, seq) {
		return false
	}
	s.articles = model.CloneArticles(articles)
	if seq == s.filteredSeq {
		s.filtered = model.CloneArticles(articles)
	}
	return true
}

// SetSearchResults replaces the filtered list with the server's results for
// the newest search. Older searches and searches overtaken by a newer load
// are discarded.
func (s *Store) SetSearchResults(seq uint64, articles []model.Article) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(OpSearch, seq) || seq != s.filteredSeq {
		return false
	}
	s.filtered = model.CloneArticles(articles)
	return true
}

// SetGraph replaces the graph data.
func (s *Store) SetGraph(seq uint64, g model.GraphData) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(OpGraph, seq) {
		return false
	}
	s.graph = g.Clone()
	return true
}

// SetRecommendations replaces the flat recommendation list.
func (s *Store) SetRecommendations(seq uint64, articles []model.Article) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(OpRecommendations, seq) {
		return false
	}
	s.recommendations = model.CloneArticles(articles)
	return true
}

// SetRecommendationFeed replaces the per-article recommendation groups.
func (s *Store) SetRecommendationFeed(seq uint64, groups []model.RecommendationGroup) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(OpRecommendationFeed, seq) {
		return false
	}
	s.feed = append([]model.RecommendationGroup{}, groups...)
	return true
}

// SetVisualization replaces the chart aggregates.
func (s *Store) SetVisualization(seq uint64, v model.VisualizationData) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(OpVisualization, seq) {
		return false
	}
	s.visualization = &v
	return true
}

// SetInsights replaces the insight strings.
func (s *Store) SetInsights(seq uint64, insights []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked(OpInsights, seq) {
		return false
	}
	s.insights = append([]string{}, insights...)
	return true
}

// SetStatusMessage replaces the database status line.
func (s *Store) SetStatusMessage(msg string) {
	s.mu.Lock()
	s.statusMessage = msg
	s.mu.Unlock()
}

// SetNotice replaces the informational message shown after ingest or
// sample-data population.
func (s *Store) SetNotice(msg string) {
	s.mu.Lock()
	s.notice = msg
	s.mu.Unlock()
}

// SetActiveTab switches the current tab.
func (s *Store) SetActiveTab(t Tab) {
	s.mu.Lock()
	s.activeTab = t
	s.mu.Unlock()
}

// ActiveTab returns the current tab.
func (s *Store) ActiveTab() Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTab
}

// SetError replaces the banner error directly.
func (s *Store) SetError(op Op, msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.lastErrorOp = op
	s.mu.Unlock()
}

// ClearError empties the banner. Per-op errors are kept.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	s.lastErrorOp = ""
	s.mu.Unlock()
}

// Error returns the banner error and the op that raised it.
func (s *Store) Error() (string, Op) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError, s.lastErrorOp
}

// Status returns a copy of op's status.
func (s *Store) Status(op Op) OpState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.ops[op]; ok {
		return *st
	}
	return OpState{}
}

// Filtered returns a copy of the filtered article list.
func (s *Store) Filtered() []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneArticles(s.filtered)
}
