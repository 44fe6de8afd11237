package state

import "time"

// Op names one logical fetch or mutation. Each op has its own loading flag,
// error and request sequence.
type Op string

const (
	OpLogin              Op = "login"
	OpArticles           Op = "articles"
	OpSearch             Op = "search"
	OpGraph              Op = "graph"
	OpRecommendations    Op = "recommendations"
	OpRecommendationFeed Op = "recommendation_feed"
	OpVisualization      Op = "visualization"
	OpInsights           Op = "insights"
	OpStatus             Op = "status"
	OpIngest             Op = "ingest"
	OpPopulate           Op = "populate"
	OpAddFavorite        Op = "favorite_add"
	OpRemoveFavorite     Op = "favorite_remove"
)

// OpState is the loading/error state of one op.
type OpState struct {
	Loading   bool
	Err       string
	Seq       uint64    // latest sequence issued for this op
	UpdatedAt time.Time // when the latest accepted result landed; zero if never
}

// Tab identifies a dashboard view.
type Tab int

const (
	TabArticles Tab = iota
	TabVisualization
	TabGraph
	TabRecommendations
	TabCollection
	TabInsights
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabArticles, TabVisualization, TabGraph, TabRecommendations, TabCollection, TabInsights}

func (t Tab) String() string {
	switch t {
	case TabArticles:
		return "Articles"
	case TabVisualization:
		return "Visualization"
	case TabGraph:
		return "Graph"
	case TabRecommendations:
		return "Recommendations"
	case TabCollection:
		return "Collection"
	case TabInsights:
		return "AI Insights"
	default:
		return "Unknown"
	}
}
