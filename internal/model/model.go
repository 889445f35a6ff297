package model

// Node is a point of interest. Nodes are shared by pointer and never
// mutated once a graph is loaded.
type Node struct {
	ID          string    `json:"id"`
	Locations   []int     `json:"locations"`
	Edges       []int     `json:"edges"`
	Coordinates []float64 `json:"coordinates"`
}

// Edge connects two nodes. The pair is unordered.
type Edge struct {
	ID    string    `json:"-"`
	Nodes [2]string `json:"node"`
}

// Other returns the endpoint opposite to id, and false when the edge
// does not touch id.
func (e *Edge) Other(id string) (string, bool) {
	switch id {
	case e.Nodes[0]:
		return e.Nodes[1], true
	case e.Nodes[1]:
		return e.Nodes[0], true
	}
	return "", false
}

type Graph struct {
	Nodes map[string]*Node
	Edges map[string]*Edge
}

func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: make(map[string]*Edge),
	}
}

// Arc is one usable direction of an edge, as seen from its source node.
type Arc struct {
	EdgeID string
	To     string
	Weight float64
}

// PathResult is the ordered path from start to end inclusive. Nodes and
// PathIDs are parallel; both are empty when no path exists.
type PathResult struct {
	Nodes   []*Node
	PathIDs []string
	Total   float64
}

func (p PathResult) Empty() bool { return len(p.PathIDs) == 0 }

type RouteResponse struct {
	Path          []string `json:"path"`
	Total         float64  `json:"total"`
	ExploredNodes int      `json:"explored_nodes"`
	CacheHit      bool     `json:"cache_hit"`
}

type NavigateRequest struct {
	Nodes []string `json:"nodes"`
}

type NavigateResponse struct {
	Path        []string    `json:"path"`
	Coordinates [][]float64 `json:"coordinates"`
	Total       float64     `json:"total"`
}
