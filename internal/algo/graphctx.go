package algo

import (
	"math"
	"sort"

	"github.com/atharv3903/navpath/internal/cache"
	"github.com/atharv3903/navpath/internal/model"
)

// GraphCtx is the read-only view a search runs against. Adjacency is
// derived lazily from the edge map and memoized in Adj.
type GraphCtx struct {
	Graph *model.Graph
	Adj   *cache.AdjCache

	edgeIDs []string
}

// NewGraphCtx indexes g for searching. A nil adj gets a default-sized cache.
func NewGraphCtx(g *model.Graph, adj *cache.AdjCache) GraphCtx {
	if g == nil {
		g = model.NewGraph()
	}
	if adj == nil {
		adj = cache.NewAdjCache()
	}
	return GraphCtx{Graph: g, Adj: adj, edgeIDs: sortedEdgeIDs(g)}
}

func sortedEdgeIDs(g *model.Graph) []string {
	ids := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Node returns the node stored under id.
func (g GraphCtx) Node(id string) (*model.Node, bool) {
	if g.Graph == nil {
		return nil, false
	}
	n, ok := g.Graph.Nodes[id]
	return n, ok && n != nil
}

// Neighbors returns the usable arcs leaving id, ordered by edge ID.
// Edges with an unknown endpoint, self loops and edges between nodes of
// different dimensionality are left out.
func (g GraphCtx) Neighbors(id string) []model.Arc {
	if g.Adj == nil {
		return g.scan(id)
	}
	return g.Adj.GetOrLoad(id, func() []model.Arc { return g.scan(id) })
}

func (g GraphCtx) scan(id string) []model.Arc {
	cur, ok := g.Node(id)
	if !ok {
		return nil
	}

	ids := g.edgeIDs
	if ids == nil && len(g.Graph.Edges) > 0 {
		ids = sortedEdgeIDs(g.Graph)
	}

	var arcs []model.Arc
	for _, eid := range ids {
		e := g.Graph.Edges[eid]
		if e == nil {
			continue
		}
		other, touches := e.Other(id)
		if !touches || other == id {
			continue
		}
		nb, ok := g.Node(other)
		if !ok || len(nb.Coordinates) != len(cur.Coordinates) {
			continue
		}
		arcs = append(arcs, model.Arc{
			EdgeID: eid,
			To:     other,
			Weight: Euclidean(cur.Coordinates, nb.Coordinates),
		})
	}
	return arcs
}

// Euclidean is the L2 distance between two vectors of equal length.
func Euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
