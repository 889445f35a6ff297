package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/atharv3903/navpath/internal/cache"
	"github.com/atharv3903/navpath/internal/config"
	"github.com/atharv3903/navpath/internal/logging"
	"github.com/atharv3903/navpath/internal/model"
)

type stats struct {
	total atomic.Int64
	errs  atomic.Int64
	hits  atomic.Int64
	empty atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (s *stats) record(lat time.Duration, resp *model.RouteResponse, err error) {
	s.total.Add(1)
	if err != nil {
		s.errs.Add(1)
		return
	}
	if resp.CacheHit {
		s.hits.Add(1)
	}
	if len(resp.Path) == 0 {
		s.empty.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, lat)
	s.mu.Unlock()
}

func main() {
	server := flag.String("server", "http://127.0.0.1:8080", "navpath server base URL")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	clients := flag.Int("clients", 0, "closed-loop workers; 0 runs an open loop shaped by -rps")
	rps := flag.Float64("rps", 200, "open-loop request rate")
	inflight := flag.Int("max-inflight", 256, "open-loop cap on outstanding requests")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed for node pairs")
	logLevel := flag.String("log-level", "info", "debug|info|warn|error")
	flag.Parse()

	logger := logging.New(config.LoggingConfig{Level: *logLevel}, os.Stderr)

	transport := &http.Transport{
		MaxIdleConns:        500,
		MaxIdleConnsPerHost: 500,
		IdleConnTimeout:     90 * time.Second,
	}
	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}

	ctx := context.Background()
	var nodes []string
	if err := getJSON(ctx, client, *server+"/graph/nodes", &nodes); err != nil {
		logger.Error("fetch node list", "error", err)
		os.Exit(1)
	}
	if len(nodes) < 2 {
		logger.Error("graph needs at least two nodes", "nodes", len(nodes))
		os.Exit(1)
	}
	logger.Info("loaded nodes", "count", len(nodes))

	// clear cache before test to avoid cumulative stats
	if resp, err := client.Get(*server + "/debug/clear_cache"); err == nil {
		resp.Body.Close()
	} else {
		logger.Warn("failed to clear cache", "error", err)
	}

	picker := newPicker(nodes, *seed)
	st := &stats{}

	runCtx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	start := time.Now()
	if *clients > 0 {
		logger.Info("running closed loop", "clients", *clients, "duration", *duration)
		closedLoop(runCtx, client, *server, *clients, picker, st)
	} else {
		logger.Info("running open loop", "rps", *rps, "duration", *duration)
		openLoop(runCtx, client, *server, *rps, *inflight, picker, st)
	}
	elapsed := time.Since(start)

	var adj cache.AdjStats
	if err := getJSON(ctx, client, *server+"/debug/adjcache_stats", &adj); err != nil {
		logger.Warn("fetch adjacency stats", "error", err)
	}

	printSummary(st, elapsed, adj)
}

// picker draws two distinct random nodes per request.
type picker struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	nodes []string
}

func newPicker(nodes []string, seed int64) *picker {
	return &picker{rnd: rand.New(rand.NewSource(seed)), nodes: nodes}
}

func (p *picker) pair() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.rnd.Intn(len(p.nodes))
	j := p.rnd.Intn(len(p.nodes) - 1)
	if j >= i {
		j++
	}
	return p.nodes[i], p.nodes[j]
}

// closedLoop keeps clients workers busy until ctx ends.
func closedLoop(ctx context.Context, client *http.Client, server string, clients int, p *picker, st *stats) {
	var g errgroup.Group
	for i := 0; i < clients; i++ {
		g.Go(func() error {
			for ctx.Err() == nil {
				oneRoute(ctx, client, server, p, st)
			}
			return nil
		})
	}
	g.Wait()
}

// openLoop issues requests at rps until ctx ends. With burst 1 the limiter
// only fails Wait on cancellation, or when the next token would land past
// the deadline, before ctx.Err() reports anything; both end the run.
func openLoop(ctx context.Context, client *http.Client, server string, rps float64, inflight int, p *picker, st *stats) {
	lim := rate.NewLimiter(rate.Limit(rps), 1)
	var g errgroup.Group
	g.SetLimit(inflight)

	for lim.Wait(ctx) == nil {
		g.Go(func() error {
			oneRoute(ctx, client, server, p, st)
			return nil
		})
	}
	g.Wait()
}

func oneRoute(ctx context.Context, client *http.Client, server string, p *picker, st *stats) {
	src, dst := p.pair()
	q := url.Values{"src": {src}, "dst": {dst}}

	start := time.Now()
	var rr model.RouteResponse
	err := getJSON(ctx, client, server+"/route?"+q.Encode(), &rr)
	if ctx.Err() != nil {
		// requests cut off by the deadline are not counted
		return
	}
	st.record(time.Since(start), &rr, err)
}

func getJSON(ctx context.Context, client *http.Client, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", target, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func printSummary(st *stats, elapsed time.Duration, adj cache.AdjStats) {
	total := st.total.Load()

	fmt.Println("\n========== LOADGEN SUMMARY ==========")
	fmt.Printf("Total Requests: %d\n", total)
	fmt.Printf("Errors: %d\n", st.errs.Load())
	fmt.Printf("Empty Paths: %d\n", st.empty.Load())
	if total > 0 {
		fmt.Printf("RouteCache Hit Rate: %.1f%%\n", float64(st.hits.Load())/float64(total)*100)
		fmt.Printf("Throughput: %.2f rps\n", float64(total)/elapsed.Seconds())
	}

	if adj.Gets > 0 {
		fmt.Printf("AdjCache Hit Rate: %.1f%% (gets=%d, hits=%d, puts=%d, evictions=%d)\n",
			float64(adj.Hits)/float64(adj.Gets)*100, adj.Gets, adj.Hits, adj.Puts, adj.Evictions)
	}

	lat := st.latencies
	if len(lat) > 0 {
		sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
		var sum time.Duration
		for _, l := range lat {
			sum += l
		}
		fmt.Printf("Avg Latency: %v\n", sum/time.Duration(len(lat)))
		fmt.Printf("P50: %v  P95: %v  P99: %v\n", percentile(lat, 50), percentile(lat, 95), percentile(lat, 99))
		fmt.Printf("Fastest: %v\n", lat[0])
		fmt.Printf("Slowest: %v\n", lat[len(lat)-1])
	}

	fmt.Println("=====================================")
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := (len(sorted)*p + 99) / 100
	if idx > 0 {
		idx--
	}
	return sorted[idx]
}
