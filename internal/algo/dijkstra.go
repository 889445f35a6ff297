package algo

import (
	"math"

	"github.com/atharv3903/navpath/internal/model"
)

// Search is the outcome of one Dijkstra run.
type Search struct {
	Path     []string
	Total    float64
	Explored int
	Reached  bool
}

// Dijkstra finds the cheapest path from src to dst, edge weight being the
// Euclidean distance between endpoint coordinates. Unknown endpoints and
// unreachable targets give a zero Search with Reached false.
func Dijkstra(g GraphCtx, src, dst string) Search {
	if _, ok := g.Node(src); !ok {
		return Search{}
	}
	if _, ok := g.Node(dst); !ok {
		return Search{}
	}
	if src == dst {
		return Search{Path: []string{src}, Reached: true}
	}

	dist := map[string]float64{src: 0}
	prev := map[string]string{}
	pq := &PriorityQueue[string]{}
	pq.Enqueue(src, 0)
	explored := 0
	reached := false

	for {
		u, d, ok := pq.DequeueWithPriority()
		if !ok {
			break
		}
		if d > distOf(dist, u) {
			// stale duplicate
			continue
		}
		if u == dst {
			reached = true
			break
		}

		explored++

		for _, a := range g.Neighbors(u) {
			nd := dist[u] + a.Weight
			if nd < distOf(dist, a.To) {
				dist[a.To] = nd
				prev[a.To] = u
				pq.Enqueue(a.To, nd)
			}
		}
	}

	if !reached {
		return Search{Explored: explored}
	}

	// reconstruct
	path := []string{}
	for cur := dst; ; cur = prev[cur] {
		path = append(path, cur)
		if cur == src {
			break
		}
	}
	reverse(path)

	return Search{Path: path, Total: dist[dst], Explored: explored, Reached: true}
}

func distOf(dist map[string]float64, id string) float64 {
	if d, ok := dist[id]; ok {
		return d
	}
	return math.Inf(1)
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// FindShortestPath resolves start and end by their IDs and returns the
// shortest path between them. A nil node, a node whose ID is not in the
// graph, or an unreachable end yields an empty result.
func FindShortestPath(g GraphCtx, start, end *model.Node) model.PathResult {
	if start == nil || end == nil {
		return model.PathResult{}
	}
	return PathOf(g, Dijkstra(g, start.ID, end.ID))
}

// PathOf materializes a search into the nodes it passes through.
func PathOf(g GraphCtx, s Search) model.PathResult {
	if !s.Reached || len(s.Path) == 0 {
		return model.PathResult{}
	}
	res := model.PathResult{
		Nodes:   make([]*model.Node, 0, len(s.Path)),
		PathIDs: make([]string, 0, len(s.Path)),
		Total:   s.Total,
	}
	for _, id := range s.Path {
		n, _ := g.Node(id)
		res.Nodes = append(res.Nodes, n)
		res.PathIDs = append(res.PathIDs, id)
	}
	return res
}
