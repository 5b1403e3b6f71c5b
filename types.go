package goGuard

import (
	"context"

	"github.com/MrEthical07/goGuard/internal/flows"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

// DecisionKind classifies a navigation decision.
type DecisionKind uint8

const (
	// DecisionProceed lets the navigation complete unchanged.
	DecisionProceed DecisionKind = iota
	// DecisionRedirect sends the user to Decision.Target without touching state.
	DecisionRedirect
	// DecisionForceLogout invalidates the session before redirecting.
	DecisionForceLogout
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionProceed:
		return "proceed"
	case DecisionRedirect:
		return "redirect"
	case DecisionForceLogout:
		return "force_logout"
	default:
		return "unknown"
	}
}

// Reason explains why a navigation did not simply proceed.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonUnauthenticated
	ReasonTokenExpired
	ReasonRoleMismatch
	ReasonUnknownRole
	ReasonGuestOnly
	ReasonSessionRejected
	ReasonExplicitLogout
)

var reasonNames = [...]string{
	ReasonNone:            "none",
	ReasonUnauthenticated: "unauthenticated",
	ReasonTokenExpired:    "token_expired",
	ReasonRoleMismatch:    "role_mismatch",
	ReasonUnknownRole:     "unknown_role",
	ReasonGuestOnly:       "guest_only",
	ReasonSessionRejected: "session_rejected",
	ReasonExplicitLogout:  "explicit_logout",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Decision is the pure result of Guard.Decide.
//
// For DecisionForceLogout, Target is the login route computed from the role at
// decision time. The route actually used is Outcome.Target.
type Decision struct {
	Kind   DecisionKind
	Target string
	Reason Reason
	Role   permission.Role
}

// Outcome is what the effect layer acts on after a navigation or logout.
type Outcome struct {
	Decision Decision
	// Target is the final route name, empty for DecisionProceed.
	Target string
	// Session is the session the decision was made on, set for DecisionProceed.
	Session          session.Session
	Cleared          bool
	RemoteDispatched bool
	// Err reports a local cleanup failure. The redirect still applies.
	Err error
}

// Proceed reports whether the navigation may complete.
func (o Outcome) Proceed() bool {
	return o.Decision.Kind == DecisionProceed
}

// RemoteSession invalidates an access token on the backend.
type RemoteSession interface {
	Logout(ctx context.Context, role permission.Role, token string) error
}

// TokenValidator reports expired or malformed access tokens.
type TokenValidator interface {
	Check(token string) error
}

func decisionFromVerdict(v flows.Verdict) Decision {
	return Decision{
		Kind:   DecisionKind(v.Kind),
		Target: v.Target,
		Reason: Reason(v.Reason),
		Role:   v.Role,
	}
}
