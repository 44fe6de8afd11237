package model

// GraphNode is a vertex of the collaboration graph.
type GraphNode struct {
	ID    string `json:"id"`
	Group int    `json:"group"`
	Label string `json:"label,omitempty"`
	Title string `json:"title,omitempty"`
}

// GraphLink connects two nodes by id. Nothing guarantees that Source and
// Target name existing nodes.
type GraphLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value,omitempty"`
	Label  string  `json:"label,omitempty"`
}

// GraphData is the node/link structure served by GET /article/graph.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// Clone returns a copy that shares no slices with g.
func (g GraphData) Clone() GraphData {
	return GraphData{
		Nodes: append([]GraphNode(nil), g.Nodes...),
		Links: append([]GraphLink(nil), g.Links...),
	}
}
