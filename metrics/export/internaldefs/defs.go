package internaldefs

import (
	goGuard "github.com/MrEthical07/goGuard"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goGuard.MetricDecisionProceed, Name: "goguard_decision_proceed_total", Help: "Navigations allowed to proceed."},
	{ID: goGuard.MetricDecisionRedirect, Name: "goguard_decision_redirect_total", Help: "Navigations redirected to a role home."},
	{ID: goGuard.MetricDecisionForceLogout, Name: "goguard_decision_force_logout_total", Help: "Navigations that forced a logout."},
	{ID: goGuard.MetricForceLogoutUnauthenticated, Name: "goguard_force_logout_unauthenticated_total", Help: "Forced logouts caused by a missing token."},
	{ID: goGuard.MetricForceLogoutTokenExpired, Name: "goguard_force_logout_token_expired_total", Help: "Forced logouts caused by an expired token."},
	{ID: goGuard.MetricForceLogoutRoleMismatch, Name: "goguard_force_logout_role_mismatch_total", Help: "Forced logouts caused by a role outside the allowed set."},
	{ID: goGuard.MetricForceLogoutUnknownRole, Name: "goguard_force_logout_unknown_role_total", Help: "Forced logouts caused by an unknown stored role."},
	{ID: goGuard.MetricRemoteLogoutSuccess, Name: "goguard_remote_logout_success_total", Help: "Remote logout calls accepted by the backend."},
	{ID: goGuard.MetricRemoteLogoutFailure, Name: "goguard_remote_logout_failure_total", Help: "Remote logout calls that failed or timed out."},
	{ID: goGuard.MetricRemoteLogoutSkipped, Name: "goguard_remote_logout_skipped_total", Help: "Logouts that sent no remote call."},
	{ID: goGuard.MetricLocalClearSuccess, Name: "goguard_local_clear_success_total", Help: "Local credential clears that succeeded."},
	{ID: goGuard.MetricLocalClearFailure, Name: "goguard_local_clear_failure_total", Help: "Local credential clears that failed."},
	{ID: goGuard.MetricExplicitLogout, Name: "goguard_explicit_logout_total", Help: "User-initiated logouts."},
	{ID: goGuard.MetricSessionRejected, Name: "goguard_session_rejected_total", Help: "Sessions cleared after the backend refused a call."},
	{ID: goGuard.MetricSessionEstablished, Name: "goguard_session_established_total", Help: "Sessions persisted after login."},
}

// Audit drops are exported as one counter labelled by audit event type.
const (
	AuditDroppedName = "goguard_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped due to dispatcher backpressure, by event type."
	EventTypeLabel   = "event_type"
)

// PendingLogoutsName is the gauge of detached remote logouts still running.
const (
	PendingLogoutsName = "goguard_remote_logout_pending"
	PendingLogoutsHelp = "Detached remote logout calls that have not returned."
)

var HistogramDefs = []HistogramDef{
	{ID: goGuard.MetricDecideLatency, Name: "goguard_decide_latency_seconds", Help: "Navigation decision latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth
// bucket is +Inf.
var HistogramUpperBounds = []float64{
	0.000001,
	0.000005,
	0.00001,
	0.00005,
	0.0001,
	0.0005,
	0.001,
}

var HistogramBoundSuffix = []string{
	"1us",
	"5us",
	"10us",
	"50us",
	"100us",
	"500us",
	"1ms",
	"inf",
}

func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
