package flows

import (
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/routes"
	"github.com/MrEthical07/goGuard/session"
)

// Kind is the outcome class of a navigation decision.
type Kind uint8

const (
	KindProceed Kind = iota
	KindRedirect
	KindForceLogout
)

// Reason explains a non-Proceed decision or a logout.
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

// Verdict is the pure result of RunDecide.
type Verdict struct {
	Kind   Kind
	Target string
	Reason Reason
	Role   permission.Role
}

// DecideDeps captures the lookups the decision needs.
type DecideDeps struct {
	DefaultLogin string
	LoginFor     func(permission.Role) (string, bool)
	HomeFor      func(permission.Role) (string, bool)
	// CheckToken reports an expired or malformed token. Nil disables the check.
	CheckToken func(string) error
}

// RunDecide applies the access rules of dest to sess. It performs no I/O.
//
// Precedence: auth requirement, then guest-only requirement, then proceed.
func RunDecide(dest routes.Destination, sess session.Session, deps DecideDeps) Verdict {
	if dest.RequiresAuth {
		if !sess.Authenticated() {
			return Verdict{Kind: KindForceLogout, Target: deps.DefaultLogin, Reason: ReasonUnauthenticated, Role: sess.Role}
		}
		if deps.CheckToken != nil && deps.CheckToken(sess.Token) != nil {
			return Verdict{Kind: KindForceLogout, Target: loginTarget(sess.Role, deps), Reason: ReasonTokenExpired, Role: sess.Role}
		}
		if !dest.Roles.IsEmpty() && !dest.Roles.Has(sess.Role) {
			return Verdict{Kind: KindForceLogout, Target: loginTarget(sess.Role, deps), Reason: ReasonRoleMismatch, Role: sess.Role}
		}
		return Verdict{Kind: KindProceed, Role: sess.Role}
	}

	if dest.RequiresGuest {
		if !sess.Authenticated() {
			return Verdict{Kind: KindProceed, Role: sess.Role}
		}
		if deps.CheckToken != nil && deps.CheckToken(sess.Token) != nil {
			return Verdict{Kind: KindProceed, Role: sess.Role}
		}
		if deps.HomeFor != nil {
			if home, ok := deps.HomeFor(sess.Role); ok {
				return Verdict{Kind: KindRedirect, Target: home, Reason: ReasonGuestOnly, Role: sess.Role}
			}
		}
		return Verdict{Kind: KindForceLogout, Target: deps.DefaultLogin, Reason: ReasonUnknownRole, Role: sess.Role}
	}

	return Verdict{Kind: KindProceed, Role: sess.Role}
}

func loginTarget(role permission.Role, deps DecideDeps) string {
	if deps.LoginFor != nil {
		if name, ok := deps.LoginFor(role); ok {
			return name
		}
	}
	return deps.DefaultLogin
}
