package loader

import (
	"fmt"
	"sort"

	"github.com/atharv3903/navpath/internal/model"
)

type IssueKind string

const (
	IssueMissingEndpoint IssueKind = "missing_endpoint"
	IssueSelfLoop        IssueKind = "self_loop"
	IssueDimension       IssueKind = "dimension_mismatch"
)

// Issue is a defect that makes an edge unusable for routing.
type Issue struct {
	EdgeID string
	Kind   IssueKind
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("edge %s: %s (%s)", i.EdgeID, i.Kind, i.Detail)
}

// Validate lists edges the search will skip, ordered by edge ID.
func Validate(g *model.Graph) []Issue {
	ids := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var issues []Issue
	for _, id := range ids {
		e := g.Edges[id]
		if e == nil {
			issues = append(issues, Issue{EdgeID: id, Kind: IssueMissingEndpoint, Detail: "nil edge"})
			continue
		}

		a, okA := g.Nodes[e.Nodes[0]]
		b, okB := g.Nodes[e.Nodes[1]]
		switch {
		case !okA || a == nil:
			issues = append(issues, Issue{EdgeID: id, Kind: IssueMissingEndpoint, Detail: fmt.Sprintf("unknown node %q", e.Nodes[0])})
		case !okB || b == nil:
			issues = append(issues, Issue{EdgeID: id, Kind: IssueMissingEndpoint, Detail: fmt.Sprintf("unknown node %q", e.Nodes[1])})
		case e.Nodes[0] == e.Nodes[1]:
			issues = append(issues, Issue{EdgeID: id, Kind: IssueSelfLoop, Detail: e.Nodes[0]})
		case len(a.Coordinates) != len(b.Coordinates):
			issues = append(issues, Issue{EdgeID: id, Kind: IssueDimension,
				Detail: fmt.Sprintf("%s has %d, %s has %d", a.ID, len(a.Coordinates), b.ID, len(b.Coordinates))})
		}
	}
	return issues
}
