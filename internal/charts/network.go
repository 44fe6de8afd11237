package charts

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/abelbrown/minescope/internal/model"
)

// NodeDegree is a node and its number of distinct neighbours.
type NodeDegree struct {
	ID     string
	Label  string
	Degree int
}

// Summary describes the structure of a graph.
type Summary struct {
	Nodes      int
	Links      int
	Components int // connected components, isolated nodes included
	Largest    int // nodes in the largest component
	Dangling   int // links with an endpoint that is not a node
	SelfLoops  int
	Top        []NodeDegree // highest degree first, ties by id
}

// Summarize computes a structural summary of g and returns at most topN
// highest-degree nodes. Links that reference unknown nodes are counted as
// dangling and otherwise ignored; duplicate links count once for degree.
func Summarize(g model.GraphData, topN int) Summary {
	s := Summary{Nodes: len(g.Nodes), Links: len(g.Links)}
	if len(g.Nodes) == 0 {
		s.Dangling = len(g.Links)
		return s
	}

	ug := simple.NewUndirectedGraph()
	index := make(map[string]int64, len(g.Nodes))
	labels := make(map[int64]model.GraphNode, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		id := int64(len(index))
		index[n.ID] = id
		labels[id] = n
		ug.AddNode(simple.Node(id))
	}

	for _, l := range g.Links {
		from, okFrom := index[l.Source]
		to, okTo := index[l.Target]
		if !okFrom || !okTo {
			s.Dangling++
			continue
		}
		if from == to {
			s.SelfLoops++
			continue
		}
		ug.SetEdge(ug.NewEdge(simple.Node(from), simple.Node(to)))
	}

	components := topo.ConnectedComponents(ug)
	s.Components = len(components)
	for _, c := range components {
		if len(c) > s.Largest {
			s.Largest = len(c)
		}
	}

	s.Top = topDegrees(ug, labels, topN)
	return s
}

func topDegrees(g graph.Undirected, nodes map[int64]model.GraphNode, topN int) []NodeDegree {
	if topN <= 0 {
		return nil
	}
	all := make([]NodeDegree, 0, len(nodes))
	it := g.Nodes()
	for it.Next() {
		id := it.Node().ID()
		n := nodes[id]
		label := n.Label
		if label == "" {
			label = n.Title
		}
		all = append(all, NodeDegree{
			ID:     n.ID,
			Label:  label,
			Degree: g.From(id).Len(),
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Degree != all[j].Degree {
			return all[i].Degree > all[j].Degree
		}
		return all[i].ID < all[j].ID
	})
	if len(all) > topN {
		all = all[:topN]
	}
	return all
}
