package goGuard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goGuard/internal/audit"
	"github.com/MrEthical07/goGuard/internal/flows"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/routes"
	"github.com/MrEthical07/goGuard/session"
	"go.uber.org/zap"
)

// Guard decides navigations and performs the session effects they require.
type Guard struct {
	config    Config
	table     *routes.Table
	store     session.Store
	remote    RemoteSession
	validator TokenValidator
	logger    *zap.Logger
	audit     *audit.Dispatcher
	metrics   *Metrics
	flows     flows.Deps

	// mu orders inflight.Add in dispatchRemote before the Wait in Close.
	mu       sync.Mutex
	inflight sync.WaitGroup
	pending  atomic.Int64
	closed   bool
}

// Routes returns the route table the guard was built with.
func (g *Guard) Routes() *routes.Table {
	if g == nil {
		return nil
	}
	return g.table
}

// Keys returns the credential key layout.
func (g *Guard) Keys() session.Keys {
	if g == nil {
		return session.DefaultKeys()
	}
	return g.config.Session.Keys.Clone()
}

// LoginFor returns the login route of role, or the default login.
func (g *Guard) LoginFor(role permission.Role) string {
	if g == nil {
		return routes.AdminLogin
	}
	if name, ok := g.flows.Decide.LoginFor(role); ok {
		return name
	}
	return g.config.Routes.DefaultLogin
}

// HomeFor returns the dashboard route of role.
func (g *Guard) HomeFor(role permission.Role) (string, bool) {
	if g == nil || g.flows.Decide.HomeFor == nil {
		return "", false
	}
	return g.flows.Decide.HomeFor(role)
}

// Decide applies the access rules of dest to sess. It performs no I/O and
// never fails: every input maps to Proceed or a concrete target.
func (g *Guard) Decide(ctx context.Context, dest routes.Destination, sess session.Session) Decision {
	if g == nil {
		return notReadyOutcome().Decision
	}
	start := time.Now()
	d := decisionFromVerdict(flows.RunDecide(dest, sess, g.flows.Decide))
	if g.metrics.LatencyEnabled() {
		g.metrics.Observe(MetricDecideLatency, time.Since(start))
	}

	switch d.Kind {
	case DecisionProceed:
		g.metricInc(MetricDecisionProceed)
	case DecisionRedirect:
		g.metricInc(MetricDecisionRedirect)
	case DecisionForceLogout:
		g.metricInc(MetricDecisionForceLogout)
		g.metricInc(forceLogoutMetric(d.Reason))
	}

	if sess.RawRole != "" && !sess.Role.Valid() {
		g.logger.Warn("stored role not recognized",
			zap.String("client_id", ClientIDFromContext(ctx)),
			zap.String("raw_role", sess.RawRole),
		)
	}
	if ce := g.logger.Check(zap.DebugLevel, "navigation decided"); ce != nil {
		ce.Write(
			zap.String("destination", dest.Name),
			zap.Stringer("kind", d.Kind),
			zap.Stringer("reason", d.Reason),
			zap.Stringer("role", d.Role),
			zap.String("target", d.Target),
		)
	}
	return d
}

// Navigate decides dest against the builder-supplied store and runs the
// resulting effect.
func (g *Guard) Navigate(ctx context.Context, dest routes.Destination) Outcome {
	if g == nil {
		return notReadyOutcome()
	}
	return g.NavigateWith(ctx, g.store, dest)
}

// NavigateWith decides dest against store and runs the resulting effect.
//
// Proceed and Redirect never touch the store beyond the initial read, and
// never reach the network. ForceLogout runs the two-phase logout.
func (g *Guard) NavigateWith(ctx context.Context, store session.Store, dest routes.Destination) Outcome {
	if g == nil {
		return notReadyOutcome()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var sess session.Session
	var loadErr error
	if store == nil {
		loadErr = ErrStoreRequired
	} else if sess, loadErr = session.Load(ctx, store, g.config.Session.Keys); loadErr != nil {
		g.logger.Error("credential read failed",
			zap.String("client_id", ClientIDFromContext(ctx)),
			zap.Error(loadErr),
		)
		sess = session.Session{}
	}

	d := g.Decide(ctx, dest, sess)
	switch d.Kind {
	case DecisionRedirect:
		return Outcome{Decision: d, Target: d.Target, Err: loadErr}
	case DecisionForceLogout:
		if store == nil {
			return Outcome{Decision: d, Target: g.config.Routes.DefaultLogin, Err: loadErr}
		}
		out := g.runLogout(ctx, store, flows.LogoutRequest{Reason: flows.Reason(d.Reason)}, dest.Path)
		out.Decision = d
		out.Err = errors.Join(loadErr, out.Err)
		return out
	default:
		return Outcome{Decision: d, Session: sess, Err: loadErr}
	}
}

// NavigateTo resolves name in the route table and calls NavigateWith.
func (g *Guard) NavigateTo(ctx context.Context, store session.Store, name string) (Outcome, error) {
	if g == nil {
		return notReadyOutcome(), ErrGuardNotReady
	}
	dest, ok := g.table.Lookup(name)
	if !ok {
		return Outcome{}, ErrUnknownDestination
	}
	return g.NavigateWith(ctx, store, dest), nil
}

// Wait blocks until every detached remote logout has returned.
func (g *Guard) Wait() {
	if g == nil {
		return
	}
	g.inflight.Wait()
}

// Close waits for detached remote logouts, then flushes the audit dispatcher.
// Logouts started after Close run their remote call inline.
func (g *Guard) Close() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.inflight.Wait()
	if g.audit != nil {
		g.audit.Close()
	}
}

func (g *Guard) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// AuditDroppedByType breaks AuditDropped down by audit event type.
func (g *Guard) AuditDroppedByType() map[string]uint64 {
	if g == nil {
		return map[string]uint64{}
	}
	return g.audit.DroppedByType()
}

// PendingRemoteLogouts returns the number of detached remote logouts that
// have not returned yet.
func (g *Guard) PendingRemoteLogouts() int64 {
	if g == nil {
		return 0
	}
	return g.pending.Load()
}

func (g *Guard) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return g.metrics.Snapshot()
}

func (g *Guard) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}

func forceLogoutMetric(r Reason) MetricID {
	switch r {
	case ReasonUnauthenticated:
		return MetricForceLogoutUnauthenticated
	case ReasonTokenExpired:
		return MetricForceLogoutTokenExpired
	case ReasonRoleMismatch:
		return MetricForceLogoutRoleMismatch
	default:
		return MetricForceLogoutUnknownRole
	}
}

func notReadyOutcome() Outcome {
	return Outcome{
		Decision: Decision{Kind: DecisionForceLogout, Target: routes.AdminLogin},
		Target:   routes.AdminLogin,
		Err:      ErrGuardNotReady,
	}
}
