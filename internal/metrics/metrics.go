// Package metrics exposes search and cache counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeFound       = "found"
	OutcomeUnreachable = "unreachable"
	OutcomeInvalid     = "invalid"
)

type Recorder struct {
	searches   *prometheus.CounterVec
	duration   prometheus.Histogram
	explored   prometheus.Histogram
	cacheHits  prometheus.Counter
	graphNodes prometheus.Gauge
	graphEdges prometheus.Gauge
}

// New registers the navpath collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navpath_searches_total",
			Help: "Shortest-path searches by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "navpath_search_duration_seconds",
			Help:    "Time spent in shortest-path searches",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		explored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "navpath_search_explored_nodes",
			Help:    "Nodes settled per search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navpath_route_cache_hits_total",
			Help: "Route requests answered from the route cache",
		}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "navpath_graph_nodes",
			Help: "Nodes in the loaded graph",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "navpath_graph_edges",
			Help: "Edges in the loaded graph",
		}),
	}

	reg.MustRegister(r.searches, r.duration, r.explored, r.cacheHits, r.graphNodes, r.graphEdges)
	return r
}

// OnSearch records one engine run. A nil Recorder is a no-op.
func (r *Recorder) OnSearch(d time.Duration, outcome string, explored int) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
	r.explored.Observe(float64(explored))
}

func (r *Recorder) OnCacheHit() {
	if r == nil {
		return
	}
	r.cacheHits.Inc()
}

func (r *Recorder) OnGraphLoaded(nodes, edges int) {
	if r == nil {
		return
	}
	r.graphNodes.Set(float64(nodes))
	r.graphEdges.Set(float64(edges))
}
