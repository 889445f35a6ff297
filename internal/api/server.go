package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/atharv3903/navpath/internal/algo"
	"github.com/atharv3903/navpath/internal/cache"
	"github.com/atharv3903/navpath/internal/loader"
	"github.com/atharv3903/navpath/internal/metrics"
	"github.com/atharv3903/navpath/internal/model"
	"github.com/atharv3903/navpath/internal/nav"
)

// ErrNoGraph is returned while no graph has been loaded.
var ErrNoGraph = errors.New("no graph loaded")

// Options collects server dependencies. Only Source is required for
// reloading; everything else has a usable zero value.
type Options struct {
	Source      loader.Source
	AdjCacheCap int
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	Gatherer    prometheus.Gatherer
	Sink        nav.Sink
	// Health is checked by /healthz in addition to the graph.
	Health func(ctx context.Context) error
}

type Server struct {
	Mux     *http.ServeMux
	Handler http.Handler
	RC      *cache.RouteCache

	opts     Options
	logger   *slog.Logger
	snap     atomic.Pointer[snapshot]
	flight   singleflight.Group
	reloadMu sync.Mutex
}

// snapshot pins a graph to the route cache epoch it was installed under.
type snapshot struct {
	g     algo.GraphCtx
	epoch uint64
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AdjCacheCap <= 0 {
		opts.AdjCacheCap = cache.DefaultAdjCapacity
	}
	if opts.Sink == nil {
		opts.Sink = nav.LogSink(opts.Logger)
	}

	s := &Server{
		Mux:    http.NewServeMux(),
		RC:     cache.NewRouteCache(),
		opts:   opts,
		logger: opts.Logger,
	}
	s.routes()
	s.Handler = loggingMiddleware(s.logger, s.Mux)
	return s
}

func (s *Server) routes() {
	s.Mux.HandleFunc("/healthz", s.handleHealth)
	s.Mux.HandleFunc("/route", s.handleRoute)
	s.Mux.HandleFunc("/navigate", s.handleNavigate)
	s.Mux.HandleFunc("/graph/reload", s.handleReload)
	s.Mux.HandleFunc("/graph/nodes", s.handleNodes)

	s.Mux.HandleFunc("/debug/clear_cache", func(w http.ResponseWriter, r *http.Request) {
		s.RC.Reset()
		if snap := s.snap.Load(); snap != nil {
			snap.g.Adj.Clear()
		}
		w.Write([]byte("cleared"))
	})

	s.Mux.HandleFunc("/debug/adjcache_stats", func(w http.ResponseWriter, r *http.Request) {
		var stats cache.AdjStats
		if snap := s.snap.Load(); snap != nil {
			stats = snap.g.Adj.Stats()
		}
		respondJSON(w, http.StatusOK, stats)
	})

	if s.opts.Gatherer != nil {
		s.Mux.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
}

// SetGraph installs g for all subsequent requests. Searches already
// running finish on the graph they started with.
func (s *Server) SetGraph(g *model.Graph) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	s.install(g)
}

// install requires reloadMu.
func (s *Server) install(g *model.Graph) {
	gctx := algo.NewGraphCtx(g, cache.NewAdjCacheWithCap(s.opts.AdjCacheCap))
	epoch := s.RC.BumpEpoch()
	s.snap.Store(&snapshot{g: gctx, epoch: epoch})
	s.opts.Metrics.OnGraphLoaded(len(gctx.Graph.Nodes), len(gctx.Graph.Edges))
}

// Graph returns the installed graph context.
func (s *Server) Graph() (algo.GraphCtx, error) {
	snap := s.snap.Load()
	if snap == nil {
		return algo.GraphCtx{}, ErrNoGraph
	}
	return snap.g, nil
}

// Reload fetches a fresh graph from the configured source and installs it.
func (s *Server) Reload(ctx context.Context) error {
	if s.opts.Source == nil {
		return loader.ErrMissingSource
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	g, err := s.opts.Source.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload graph: %w", err)
	}

	issues := loader.Validate(g)
	for i, is := range issues {
		if i == 10 {
			s.logger.Warn("more unusable edges omitted", "count", len(issues)-i)
			break
		}
		s.logger.Warn("unusable edge", "edge", is.EdgeID, "kind", is.Kind, "detail", is.Detail)
	}

	s.install(g)
	s.logger.Info("graph loaded", "nodes", len(g.Nodes), "edges", len(g.Edges), "unusable_edges", len(issues))
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.snap.Load() == nil {
		http.Error(w, ErrNoGraph.Error(), http.StatusServiceUnavailable)
		return
	}
	if s.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Health(ctx); err != nil {
			s.logger.Error("health check failed", "error", err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("ok"))
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := s.snap.Load()
	if snap == nil {
		http.Error(w, ErrNoGraph.Error(), http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	src, dst := q.Get("src"), q.Get("dst")

	key := cache.RouteKey{
		Src:   src,
		Dst:   dst,
		Algo:  "dijkstra",
		Epoch: snap.epoch,
	}

	if v, ok := s.RC.Get(key); ok {
		s.opts.Metrics.OnCacheHit()
		respondJSON(w, http.StatusOK, model.RouteResponse{Path: v.Path, Total: v.Total, CacheHit: true})
		return
	}

	flightKey := fmt.Sprintf("%d\x00%s\x00%s", key.Epoch, src, dst)
	v, _, _ := s.flight.Do(flightKey, func() (any, error) {
		res := s.search(snap.g, src, dst)
		if res.Reached {
			s.RC.PutIfCurrent(key, cache.Route{Path: res.Path, Total: res.Total})
		}
		return res, nil
	})
	res := v.(algo.Search)

	path := res.Path
	if path == nil {
		path = []string{}
	}
	respondJSON(w, http.StatusOK, model.RouteResponse{
		Path:          path,
		Total:         res.Total,
		ExploredNodes: res.Explored,
	})
}

func (s *Server) search(g algo.GraphCtx, src, dst string) algo.Search {
	start := time.Now()
	res := algo.Dijkstra(g, src, dst)
	s.opts.Metrics.OnSearch(time.Since(start), outcome(g, src, dst, res.Reached), res.Explored)
	return res
}

func outcome(g algo.GraphCtx, src, dst string, reached bool) string {
	if reached {
		return metrics.OutcomeFound
	}
	_, okSrc := g.Node(src)
	_, okDst := g.Node(dst)
	if !okSrc || !okDst {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeUnreachable
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := s.snap.Load()
	if snap == nil {
		http.Error(w, ErrNoGraph.Error(), http.StatusServiceUnavailable)
		return
	}

	var req model.NavigateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, search := nav.NavigateSearch(snap.g, nav.Resolve(snap.g, req.Nodes), s.opts.Sink)
	if len(req.Nodes) >= 2 {
		s.opts.Metrics.OnSearch(time.Since(start), outcome(snap.g, req.Nodes[0], req.Nodes[1], !res.Empty()), search.Explored)
	}

	resp := model.NavigateResponse{
		Path:        []string{},
		Coordinates: [][]float64{},
		Total:       res.Total,
	}
	for i, n := range res.Nodes {
		resp.Path = append(resp.Path, res.PathIDs[i])
		resp.Coordinates = append(resp.Coordinates, n.Coordinates)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.Reload(r.Context()); err != nil {
		s.logger.Error("graph reload failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, loader.ErrMissingSource) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	g, _ := s.Graph()
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"nodes": len(g.Graph.Nodes),
		"edges": len(g.Graph.Edges),
	})
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	g, err := s.Graph()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	ids := make([]string, 0, len(g.Graph.Nodes))
	for id := range g.Graph.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	respondJSON(w, http.StatusOK, ids)
}
