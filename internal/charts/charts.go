// Package charts maps backend aggregates into chart inputs. Every function
// here is pure: no I/O, no shared state.
package charts

import "github.com/abelbrown/minescope/internal/model"

// Pair is one category/value pair of a bar, doughnut or line chart.
type Pair struct {
	Label string
	Value float64
}

// Slice is one doughnut segment. Share is Value as a fraction of the total,
// zero when the total is zero.
type Slice struct {
	Label string
	Value float64
	Share float64
}

// Bar maps publications per month into bars, in the order the backend sent
// them.
func Bar(v model.VisualizationData) []Pair {
	return seriesPairs(v.PublicationsPerMonth)
}

// Line maps citations over time into a time series, in backend order.
func Line(v model.VisualizationData) []Pair {
	return seriesPairs(v.CitationsOverTime)
}

func seriesPairs(s model.Series) []Pair {
	out := make([]Pair, len(s))
	for i, b := range s {
		out[i] = Pair{Label: b.Label, Value: b.Value}
	}
	return out
}

// Doughnut maps the topic distribution into segments. Labels without a
// value, and values without a label, are dropped.
func Doughnut(v model.VisualizationData) []Slice {
	t := v.ResearchTopics
	n := len(t.Labels)
	if len(t.Data) < n {
		n = len(t.Data)
	}
	var total float64
	for i := 0; i < n; i++ {
		total += t.Data[i]
	}
	out := make([]Slice, n)
	for i := 0; i < n; i++ {
		s := Slice{Label: t.Labels[i], Value: t.Data[i]}
		if total > 0 {
			s.Share = t.Data[i] / total
		}
		out[i] = s
	}
	return out
}

// Scatter returns the citations-versus-year points.
func Scatter(v model.VisualizationData) []model.Point {
	return append([]model.Point(nil), v.CitationsVsYear...)
}

// Bubble returns the research impact points.
func Bubble(v model.VisualizationData) []model.BubblePoint {
	return append([]model.BubblePoint(nil), v.ResearchImpact...)
}

// Authors maps the top-author counts into bars.
func Authors(v model.VisualizationData) []Pair {
	out := make([]Pair, len(v.TopAuthors))
	for i, a := range v.TopAuthors {
		out[i] = Pair{Label: a.Name, Value: float64(a.Count)}
	}
	return out
}

// NetworkData is graph data ready for drawing: node and link arrays, with
// links kept even when an endpoint is missing.
type NetworkData struct {
	Nodes []model.GraphNode
	Links []model.GraphLink
}

// Network copies g into drawing input.
func Network(g model.GraphData) NetworkData {
	c := g.Clone()
	return NetworkData{Nodes: c.Nodes, Links: c.Links}
}
