package algo

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharv3903/navpath/internal/cache"
	"github.com/atharv3903/navpath/internal/model"
)

func node(id string, coords ...float64) *model.Node {
	return &model.Node{ID: id, Coordinates: coords}
}

func graphOf(nodes []*model.Node, edges ...[3]string) *model.Graph {
	g := model.NewGraph()
	for _, n := range nodes {
		g.Nodes[n.ID] = n
	}
	for _, e := range edges {
		g.Edges[e[0]] = &model.Edge{ID: e[0], Nodes: [2]string{e[1], e[2]}}
	}
	return g
}

// triangle is A(0,0) B(3,0) C(3,4) with A-B=3, B-C=4, A-C=5, plus an
// isolated D.
func triangle(withAC bool) *model.Graph {
	nodes := []*model.Node{node("A", 0, 0), node("B", 3, 0), node("C", 3, 4), node("D", 10, 10)}
	edges := [][3]string{{"ab", "A", "B"}, {"bc", "B", "C"}}
	if withAC {
		edges = append(edges, [3]string{"ac", "A", "C"})
	}
	return graphOf(nodes, edges...)
}

func TestFindShortestPath_DirectEdgeWins(t *testing.T) {
	g := triangle(true)
	res := FindShortestPath(NewGraphCtx(g, nil), g.Nodes["A"], g.Nodes["C"])

	assert.Equal(t, []string{"A", "C"}, res.PathIDs)
	assert.Equal(t, []*model.Node{g.Nodes["A"], g.Nodes["C"]}, res.Nodes)
	assert.InDelta(t, 5.0, res.Total, 1e-9)
}

func TestFindShortestPath_DetourWhenDirectEdgeMissing(t *testing.T) {
	g := triangle(false)
	res := FindShortestPath(NewGraphCtx(g, nil), g.Nodes["A"], g.Nodes["C"])

	assert.Equal(t, []string{"A", "B", "C"}, res.PathIDs)
	assert.InDelta(t, 7.0, res.Total, 1e-9)
	assert.InDelta(t, 7.0, pathWeight(g, res.PathIDs), 1e-9)
}

func TestFindShortestPath_Unreachable(t *testing.T) {
	g := triangle(true)
	gctx := NewGraphCtx(g, nil)

	var res model.PathResult
	require.NotPanics(t, func() {
		res = FindShortestPath(gctx, g.Nodes["A"], g.Nodes["D"])
	})
	assert.True(t, res.Empty())
	assert.Empty(t, res.Nodes)

	s := Dijkstra(gctx, "A", "D")
	assert.False(t, s.Reached)
	assert.Equal(t, 3, s.Explored)
}

func TestFindShortestPath_SameNode(t *testing.T) {
	g := triangle(true)
	res := FindShortestPath(NewGraphCtx(g, nil), g.Nodes["B"], g.Nodes["B"])

	assert.Equal(t, []string{"B"}, res.PathIDs)
	assert.Equal(t, []*model.Node{g.Nodes["B"]}, res.Nodes)
	assert.Zero(t, res.Total)
}

func TestFindShortestPath_UnresolvableEndpoints(t *testing.T) {
	g := triangle(true)
	gctx := NewGraphCtx(g, nil)

	tests := []struct {
		name       string
		start, end *model.Node
	}{
		{"nil start", nil, g.Nodes["A"]},
		{"nil end", g.Nodes["A"], nil},
		{"foreign start", node("Z", 0, 0), g.Nodes["A"]},
		{"foreign end", g.Nodes["A"], node("Z", 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FindShortestPath(gctx, tt.start, tt.end)
			assert.True(t, res.Empty())
			assert.Len(t, res.Nodes, len(res.PathIDs))
		})
	}
	assert.Zero(t, gctx.Adj.Stats().Gets, "no search should have run")
}

func TestFindShortestPath_ResolvesByID(t *testing.T) {
	g := triangle(true)
	copyOfA := node("A", 0, 0)

	res := FindShortestPath(NewGraphCtx(g, nil), copyOfA, g.Nodes["C"])
	require.Equal(t, []string{"A", "C"}, res.PathIDs)
	assert.Same(t, g.Nodes["A"], res.Nodes[0])
}

func TestFindShortestPath_SkipsMalformedEdges(t *testing.T) {
	g := triangle(false)
	g.Edges["ghost"] = &model.Edge{ID: "ghost", Nodes: [2]string{"A", "missing"}}
	g.Edges["loop"] = &model.Edge{ID: "loop", Nodes: [2]string{"A", "A"}}
	g.Edges["nil"] = nil
	g.Nodes["E"] = node("E", 1, 1, 1)
	g.Edges["dim"] = &model.Edge{ID: "dim", Nodes: [2]string{"A", "E"}}
	g.Edges["dim2"] = &model.Edge{ID: "dim2", Nodes: [2]string{"E", "C"}}

	gctx := NewGraphCtx(g, nil)
	res := FindShortestPath(gctx, g.Nodes["A"], g.Nodes["C"])
	assert.Equal(t, []string{"A", "B", "C"}, res.PathIDs)

	arcs := gctx.Neighbors("A")
	require.Len(t, arcs, 1)
	assert.Equal(t, model.Arc{EdgeID: "ab", To: "B", Weight: 3}, arcs[0])
}

func TestFindShortestPath_ZeroValueGraphCtx(t *testing.T) {
	g := triangle(true)
	gctx := GraphCtx{Graph: g}

	res := FindShortestPath(gctx, g.Nodes["A"], g.Nodes["C"])
	assert.Equal(t, []string{"A", "C"}, res.PathIDs)
}

func TestDijkstra_StaleEntriesDoNotCorrupt(t *testing.T) {
	// S reaches T cheaply only through a long chain, so T is enqueued
	// first with a large priority and then improved several times.
	g := graphOf([]*model.Node{
		node("S", 0, 0), node("T", 10, 0),
		node("m1", 2, 1), node("m2", 4, 1), node("m3", 6, 1), node("m4", 8, 1),
		node("far", 0, 20),
	},
		[3]string{"e1", "S", "m1"}, [3]string{"e2", "m1", "m2"},
		[3]string{"e3", "m2", "m3"}, [3]string{"e4", "m3", "m4"},
		[3]string{"e5", "m4", "T"}, [3]string{"e6", "S", "far"},
		[3]string{"e7", "far", "T"}, [3]string{"e8", "m2", "T"},
	)
	gctx := NewGraphCtx(g, nil)

	s := Dijkstra(gctx, "S", "T")
	require.True(t, s.Reached)
	assert.InDelta(t, bruteForce(g, "S", "T"), s.Total, 1e-9)
	assert.InDelta(t, s.Total, pathWeight(g, s.Path), 1e-9)
}

func TestDijkstra_MatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for round := 0; round < 40; round++ {
		g := randomGraph(rnd, 8, 14, 3)
		gctx := NewGraphCtx(g, cache.NewAdjCacheWithCap(4))

		for i := 0; i < 8; i++ {
			src := fmt.Sprintf("n%d", rnd.Intn(8))
			dst := fmt.Sprintf("n%d", rnd.Intn(8))

			s := Dijkstra(gctx, src, dst)
			best := bruteForce(g, src, dst)

			if math.IsInf(best, 1) {
				assert.False(t, s.Reached, "round %d %s->%s", round, src, dst)
				assert.Empty(t, s.Path)
				continue
			}
			require.True(t, s.Reached, "round %d %s->%s", round, src, dst)
			assert.Equal(t, src, s.Path[0])
			assert.Equal(t, dst, s.Path[len(s.Path)-1])
			assert.InDelta(t, best, s.Total, 1e-9)
			assert.InDelta(t, s.Total, pathWeight(g, s.Path), 1e-9)
		}
	}
}

func TestDijkstra_Deterministic(t *testing.T) {
	// a square where both routes around have equal weight
	g := graphOf([]*model.Node{node("A", 0, 0), node("B", 1, 0), node("C", 1, 1), node("D", 0, 1)},
		[3]string{"ab", "A", "B"}, [3]string{"bc", "B", "C"},
		[3]string{"ad", "A", "D"}, [3]string{"dc", "D", "C"},
	)

	first := Dijkstra(NewGraphCtx(g, nil), "A", "C")
	require.True(t, first.Reached)
	for i := 0; i < 50; i++ {
		s := Dijkstra(NewGraphCtx(g, nil), "A", "C")
		assert.Equal(t, first, s)
	}
}

func TestDijkstra_ConcurrentSearchesShareGraph(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	g := randomGraph(rnd, 40, 120, 2)
	gctx := NewGraphCtx(g, cache.NewAdjCacheWithCap(8))

	want := make(map[string]Search)
	for i := 0; i < 40; i++ {
		src, dst := fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", 39-i)
		want[src+dst] = Dijkstra(NewGraphCtx(g, nil), src, dst)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 40; i++ {
				src, dst := fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", 39-i)
				assert.Equal(t, want[src+dst], Dijkstra(gctx, src, dst))
			}
		}()
	}
	wg.Wait()
}

func TestEuclidean(t *testing.T) {
	assert.InDelta(t, 5.0, Euclidean([]float64{0, 0}, []float64{3, 4}), 1e-12)
	assert.InDelta(t, math.Sqrt(3), Euclidean([]float64{1, 1, 1}, []float64{2, 2, 2}), 1e-12)
	assert.Zero(t, Euclidean(nil, nil))
}

func randomGraph(rnd *rand.Rand, n, m, dim int) *model.Graph {
	g := model.NewGraph()
	for i := 0; i < n; i++ {
		coords := make([]float64, dim)
		for d := range coords {
			coords[d] = math.Round(rnd.Float64()*1000) / 10
		}
		id := fmt.Sprintf("n%d", i)
		g.Nodes[id] = &model.Node{ID: id, Coordinates: coords}
	}
	for i := 0; i < m; i++ {
		id := fmt.Sprintf("e%d", i)
		g.Edges[id] = &model.Edge{ID: id, Nodes: [2]string{
			fmt.Sprintf("n%d", rnd.Intn(n)),
			fmt.Sprintf("n%d", rnd.Intn(n)),
		}}
	}
	return g
}

func pathWeight(g *model.Graph, ids []string) float64 {
	var total float64
	for i := 1; i < len(ids); i++ {
		total += Euclidean(g.Nodes[ids[i-1]].Coordinates, g.Nodes[ids[i]].Coordinates)
	}
	return total
}

// bruteForce enumerates every simple path from src to dst.
func bruteForce(g *model.Graph, src, dst string) float64 {
	if src == dst {
		return 0
	}
	best := math.Inf(1)
	visited := map[string]bool{src: true}
	var walk func(cur string, acc float64)
	walk = func(cur string, acc float64) {
		if cur == dst {
			best = math.Min(best, acc)
			return
		}
		for _, e := range g.Edges {
			other, ok := e.Other(cur)
			if !ok || visited[other] {
				continue
			}
			visited[other] = true
			walk(other, acc+Euclidean(g.Nodes[cur].Coordinates, g.Nodes[other].Coordinates))
			visited[other] = false
		}
	}
	walk(src, 0)
	return best
}
