package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/routes"
	"github.com/MrEthical07/goGuard/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// countingRemote accepts every logout without network I/O.
type countingRemote struct {
	calls atomic.Int64
}

func (r *countingRemote) Logout(context.Context, permission.Role, string) error {
	r.calls.Add(1)
	return nil
}

type clientState struct {
	id   string
	role permission.Role
}

var portalRoles = []permission.Role{permission.RoleAdmin, permission.RoleLecturer, permission.RoleStudent}

func main() {
	var (
		clients     = flag.Int("clients", 50000, "number of client sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (navigate + force-logout)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "pg", "session key prefix")
	)
	flag.Parse()

	if *clients <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	var rdb *redis.Client
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	provider := session.NewRedisProvider(rdb, *prefix, time.Hour, false)
	remote := &countingRemote{}
	g, err := goGuard.New().
		WithRemote(remote).
		WithConfig(awaitConfig()).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build guard: %v\n", err)
		os.Exit(1)
	}
	defer g.Close()

	states := make([]clientState, *clients)
	fmt.Printf("seeding %d sessions...\n", *clients)
	startSeed := time.Now()
	for i := range states {
		st := clientState{id: fmt.Sprintf("client-%d", i), role: portalRoles[i%len(portalRoles)]}
		states[i] = st
		if err := seed(ctx, g, provider.For(st.id), st, i); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	navigateStats := runNavigatePhase(ctx, g, provider, states, *ops, *concurrency)
	logoutStats := runLogoutPhase(ctx, g, provider, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("navigate", navigateStats)
	printStats("force-logout", logoutStats)
	fmt.Printf("remote logouts: %d\n", remote.calls.Load())
	snap := g.MetricsSnapshot()
	fmt.Printf("decisions: proceed=%d redirect=%d force_logout=%d\n",
		snap.Counters[goGuard.MetricDecisionProceed],
		snap.Counters[goGuard.MetricDecisionRedirect],
		snap.Counters[goGuard.MetricDecisionForceLogout],
	)
}

func awaitConfig() goGuard.Config {
	cfg := goGuard.DefaultConfig()
	cfg.Logout.AwaitRemote = true
	cfg.Metrics.Enabled = true
	return cfg
}

func seed(ctx context.Context, g *goGuard.Guard, store session.Store, st clientState, i int) error {
	return g.Establish(ctx, store, session.Session{
		Token: fmt.Sprintf("token-%d", i),
		Role:  st.role,
	}, map[string]string{session.KeyUserID: st.id})
}

// homeOf returns the dashboard of role. Navigating there always proceeds.
func homeOf(g *goGuard.Guard, role permission.Role) routes.Destination {
	name, _ := g.HomeFor(role)
	dest, _ := g.Routes().Lookup(name)
	return dest
}

// foreignOf returns a dashboard role may not open. Navigating there forces a logout.
func foreignOf(g *goGuard.Guard, role permission.Role) routes.Destination {
	for _, r := range portalRoles {
		if r != role {
			return homeOf(g, r)
		}
	}
	return routes.Destination{}
}

func runNavigatePhase(ctx context.Context, g *goGuard.Guard, provider session.Provider, states []clientState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				st := states[r.Intn(len(states))]
				dest := homeOf(g, st.role)
				t0 := time.Now()
				out := g.NavigateWith(ctx, provider.For(st.id), dest)
				d := time.Since(t0)
				if !out.Proceed() || out.Err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

// runLogoutPhase navigates each client to a foreign dashboard. The first hit
// clears the session; later hits on the same client run the no-session path.
func runLogoutPhase(ctx context.Context, g *goGuard.Guard, provider session.Provider, states []clientState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				st := states[r.Intn(len(states))]
				dest := foreignOf(g, st.role)
				t0 := time.Now()
				out := g.NavigateWith(ctx, provider.For(st.id), dest)
				d := time.Since(t0)
				if out.Decision.Kind != goGuard.DecisionForceLogout || !out.Cleared {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
