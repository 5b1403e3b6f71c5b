package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

// RemoteLogout invalidates a token server-side.
type RemoteLogout interface {
	Logout(ctx context.Context, role permission.Role, token string) error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Keys         session.Keys
	Remote       RemoteLogout
	DefaultLogin string
	LoginFor     func(permission.Role) (string, bool)
	// Dispatch runs call, either inline or detached from the caller.
	Dispatch func(ctx context.Context, call func(context.Context))
	// OnRemoteResult observes the outcome of every dispatched remote call.
	OnRemoteResult func(role permission.Role, err error)
}

// LogoutRequest selects the variant of logout to run.
type LogoutRequest struct {
	Reason Reason
	// LocalOnly skips the remote call, used when the backend already refused the token.
	LocalOnly bool
}

type LogoutResult struct {
	Role             permission.Role
	Target           string
	HadSession       bool
	RemoteDispatched bool
	ClearErr         error
}

// RunLogout performs the two-phase logout against store.
//
// The token, role and identity keys are claimed in one atomic read-and-remove,
// so of several concurrent logouts of one client exactly one observes the
// session. Only that caller removes the role data key and hands one remote
// call to deps.Dispatch; its failure never reaches the caller. Local keys are
// gone before the remote call starts. Without a session the remote call and
// the role data cleanup are skipped and the default login is targeted.
func RunLogout(ctx context.Context, store session.Store, req LogoutRequest, deps LogoutDeps) LogoutResult {
	sess, takeErr := session.Take(ctx, store, deps.Keys)

	res := LogoutResult{
		Role:       sess.Role,
		Target:     deps.DefaultLogin,
		HadSession: takeErr == nil && sess.Established(),
	}

	var dataErr error
	if res.HadSession {
		if dataKey, ok := deps.Keys.DataKey(sess.Role); ok {
			dataErr = store.Remove(ctx, dataKey)
		}
		if deps.LoginFor != nil {
			if name, ok := deps.LoginFor(sess.Role); ok {
				res.Target = name
			}
		}
	}
	res.ClearErr = errors.Join(takeErr, dataErr)

	if res.HadSession && !req.LocalOnly && deps.Remote != nil {
		token, role := sess.Token, sess.Role
		call := func(callCtx context.Context) {
			err := deps.Remote.Logout(callCtx, role, token)
			if deps.OnRemoteResult != nil {
				deps.OnRemoteResult(role, err)
			}
		}
		if deps.Dispatch != nil {
			deps.Dispatch(ctx, call)
		} else {
			call(ctx)
		}
		res.RemoteDispatched = true
	}
	return res
}
