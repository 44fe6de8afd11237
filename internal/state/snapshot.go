package state

import "github.com/abelbrown/minescope/internal/model"

// Snapshot is a point-in-time copy of the view state for rendering.
type Snapshot struct {
	Articles        []model.Article
	Filtered        []model.Article
	Graph           model.GraphData
	Recommendations []model.Article
	Feed            []model.RecommendationGroup
	Visualization   *model.VisualizationData
	Insights        []string
	Collection      []model.Article
	PendingChanges  int

	ActiveTab     Tab
	StatusMessage string
	Notice        string
	Error         string
	ErrorOp       Op

	Ops map[Op]OpState
}

// Snapshot copies the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := make(map[Op]OpState, len(s.ops))
	for op, st := range s.ops {
		ops[op] = *st
	}

	var viz *model.VisualizationData
	if s.visualization != nil {
		v := *s.visualization
		viz = &v
	}

	return Snapshot{
		Articles:        model.CloneArticles(s.articles),
		Filtered:        model.CloneArticles(s.filtered),
		Graph:           s.graph.Clone(),
		Recommendations: model.CloneArticles(s.recommendations),
		Feed:            append([]model.RecommendationGroup(nil), s.feed...),
		Visualization:   viz,
		Insights:        append([]string(nil), s.insights...),
		Collection:      s.visibleCollectionLocked(),
		PendingChanges:  s.pendingLocked(),
		ActiveTab:       s.activeTab,
		StatusMessage:   s.statusMessage,
		Notice:          s.notice,
		Error:           s.lastError,
		ErrorOp:         s.lastErrorOp,
		Ops:             ops,
	}
}

// Loading reports whether op is in flight.
func (snap Snapshot) Loading(op Op) bool {
	return snap.Ops[op].Loading
}

// ListLoading reports whether the article list is being (re)loaded.
func (snap Snapshot) ListLoading() bool {
	return snap.Loading(OpArticles) || snap.Loading(OpSearch)
}

// Failures returns every op whose latest request failed, keyed by op.
func (snap Snapshot) Failures() map[Op]string {
	out := make(map[Op]string)
	for op, st := range snap.Ops {
		if st.Err != "" {
			out[op] = st.Err
		}
	}
	return out
}
