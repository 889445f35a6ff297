// Package nav turns a pair of picked nodes into a displayable path.
package nav

import (
	"log/slog"

	"github.com/atharv3903/navpath/internal/algo"
	"github.com/atharv3903/navpath/internal/model"
)

// Sink receives the IDs of every path Navigate computes. It must not
// retain or modify ids after returning.
type Sink func(ids []string)

// LogSink reports paths on logger at info level.
func LogSink(logger *slog.Logger) Sink {
	return func(ids []string) {
		logger.Info("shortest path", "path_ids", ids, "hops", max(len(ids)-1, 0))
	}
}

// Navigate searches from nodes[0] to nodes[1]. Fewer than two nodes give
// an empty result and no search. Extra nodes are ignored.
func Navigate(g algo.GraphCtx, nodes []*model.Node, sink Sink) model.PathResult {
	res, _ := NavigateSearch(g, nodes, sink)
	return res
}

// NavigateSearch is Navigate that also returns the underlying search, for
// callers that report how much of the graph was explored. The search is
// zero when nothing was searched.
func NavigateSearch(g algo.GraphCtx, nodes []*model.Node, sink Sink) (model.PathResult, algo.Search) {
	if len(nodes) < 2 || nodes[0] == nil || nodes[1] == nil {
		return model.PathResult{}, algo.Search{}
	}

	s := algo.Dijkstra(g, nodes[0].ID, nodes[1].ID)
	res := algo.PathOf(g, s)
	if sink != nil {
		sink(res.PathIDs)
	}
	return res, s
}

// Resolve maps IDs to the graph's nodes. An unknown ID keeps its slot as
// a detached node, so a search involving it fails softly instead of
// shifting the remaining IDs into its place.
func Resolve(g algo.GraphCtx, ids []string) []*model.Node {
	nodes := make([]*model.Node, 0, len(ids))
	for _, id := range ids {
		n, ok := g.Node(id)
		if !ok {
			n = &model.Node{ID: id}
		}
		nodes = append(nodes, n)
	}
	return nodes
}
