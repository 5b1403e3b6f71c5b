package goGuard

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goGuard/internal/flows"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
	"go.uber.org/zap"
)

// ForceLogout invalidates the session held in store.
//
// The token, role and identity keys are claimed and removed in one store call.
// When that claim yields a complete session, its role data key is removed and
// one remote logout is dispatched for it; its failure is logged and never
// returned. Concurrent logouts of one client dispatch at most one remote call.
// The outcome always carries a login route to redirect to.
func (g *Guard) ForceLogout(ctx context.Context, store session.Store, reason Reason) Outcome {
	if g == nil {
		return notReadyOutcome()
	}
	if store == nil {
		return g.storelessOutcome(reason)
	}
	return g.runLogout(ctx, store, flows.LogoutRequest{Reason: flows.Reason(reason)}, "")
}

// Logout is the user-initiated logout.
func (g *Guard) Logout(ctx context.Context, store session.Store) Outcome {
	if g == nil {
		return notReadyOutcome()
	}
	g.metricInc(MetricExplicitLogout)
	return g.ForceLogout(ctx, store, ReasonExplicitLogout)
}

// Reject clears the session after the backend refused an authenticated call.
//
// A call is refused when err reports a transport failure or status is one of
// Config.Session.RejectStatuses. No remote logout is sent. Reject returns
// false and leaves the store untouched when nothing was refused or no token
// is stored.
func (g *Guard) Reject(ctx context.Context, store session.Store, status int, err error) (Outcome, bool) {
	if g == nil || store == nil {
		return Outcome{}, false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	refused := g.config.rejects(status)
	if err != nil && !errors.Is(err, context.Canceled) {
		refused = true
	}
	if !refused {
		return Outcome{}, false
	}

	token, ok, getErr := store.Get(ctx, g.config.Session.Keys.Token)
	if getErr != nil || !ok || token == "" {
		return Outcome{}, false
	}

	g.metricInc(MetricSessionRejected)
	out := g.runLogout(ctx, store, flows.LogoutRequest{Reason: flows.ReasonSessionRejected, LocalOnly: true}, "")
	g.logger.Info("session rejected by backend",
		zap.String("client_id", ClientIDFromContext(ctx)),
		zap.Int("status", status),
		zap.Error(err),
	)
	return out, true
}

// Establish persists the credentials returned by the login flow in one write.
// identity may hold the identity keys and the data key of sess.Role.
func (g *Guard) Establish(ctx context.Context, store session.Store, sess session.Session, identity map[string]string) error {
	if g == nil {
		return ErrGuardNotReady
	}
	if store == nil {
		return ErrStoreRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if sess.Token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidSession)
	}
	if !sess.Role.HasPortal() {
		return fmt.Errorf("%w: role %q has no portal", ErrInvalidSession, sess.RawRole)
	}

	if err := session.Save(ctx, store, g.config.Session.Keys, sess, identity); err != nil {
		if !errors.Is(err, session.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %v", ErrInvalidSession, err)
		}
		g.emitAudit(ctx, auditEventSessionEstablished, false, sess.Role, "", "", "", err, nil)
		return err
	}

	g.metricInc(MetricSessionEstablished)
	g.emitAudit(ctx, auditEventSessionEstablished, true, sess.Role, "", "", "", nil, nil)
	g.logger.Info("session established",
		zap.String("client_id", ClientIDFromContext(ctx)),
		zap.Stringer("role", sess.Role),
	)
	return nil
}

func (g *Guard) runLogout(ctx context.Context, store session.Store, req flows.LogoutRequest, path string) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	clientID := ClientIDFromContext(ctx)

	deps := g.flows.Logout
	deps.OnRemoteResult = func(role permission.Role, err error) {
		if err == nil {
			g.metricInc(MetricRemoteLogoutSuccess)
			return
		}
		g.metricInc(MetricRemoteLogoutFailure)
		g.logger.Warn("remote logout failed",
			zap.String("client_id", clientID),
			zap.Stringer("role", role),
			zap.Error(err),
		)
		g.emitAudit(ctx, auditEventRemoteLogoutFailed, false, role, path, "", "", err, nil)
	}

	res := flows.RunLogout(ctx, store, req, deps)
	reason := Reason(req.Reason)

	if !res.RemoteDispatched {
		g.metricInc(MetricRemoteLogoutSkipped)
	}
	if res.ClearErr != nil {
		g.metricInc(MetricLocalClearFailure)
		g.logger.Error("local session cleanup failed",
			zap.String("client_id", clientID),
			zap.Stringer("role", res.Role),
			zap.Error(res.ClearErr),
		)
	} else {
		g.metricInc(MetricLocalClearSuccess)
	}

	g.logger.Info("session logged out",
		zap.String("client_id", clientID),
		zap.Stringer("role", res.Role),
		zap.Stringer("reason", reason),
		zap.String("target", res.Target),
		zap.Bool("remote", res.RemoteDispatched),
	)
	g.emitAudit(ctx, logoutAuditEvent(reason), res.ClearErr == nil, res.Role, path, res.Target, reason.String(), res.ClearErr, func() map[string]string {
		return map[string]string{
			"had_session":       boolString(res.HadSession),
			"remote_dispatched": boolString(res.RemoteDispatched),
		}
	})

	return Outcome{
		Decision: Decision{
			Kind:   DecisionForceLogout,
			Target: res.Target,
			Reason: reason,
			Role:   res.Role,
		},
		Target:           res.Target,
		Cleared:          res.ClearErr == nil,
		RemoteDispatched: res.RemoteDispatched,
		Err:              res.ClearErr,
	}
}

// dispatchRemote runs call inline when AwaitRemote is set or the guard is
// closed, otherwise on a tracked goroutine detached from ctx cancellation.
// Both variants are bounded by Logout.RemoteTimeout.
func (g *Guard) dispatchRemote(ctx context.Context, call func(context.Context)) {
	timeout := g.config.Logout.RemoteTimeout

	detach := false
	if !g.config.Logout.AwaitRemote {
		g.mu.Lock()
		if !g.closed {
			g.inflight.Add(1)
			g.pending.Add(1)
			detach = true
		}
		g.mu.Unlock()
	}

	if !detach {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		call(callCtx)
		return
	}

	go func() {
		defer g.inflight.Done()
		defer g.pending.Add(-1)
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		call(callCtx)
	}()
}

func (g *Guard) storelessOutcome(reason Reason) Outcome {
	target := g.config.Routes.DefaultLogin
	return Outcome{
		Decision: Decision{Kind: DecisionForceLogout, Target: target, Reason: reason},
		Target:   target,
		Err:      ErrStoreRequired,
	}
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
