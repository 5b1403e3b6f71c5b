package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goGuard/permission"
)

// ErrStoreUnavailable wraps backend failures of a credential store.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// Store is a per-client string key/value credential store.
//
// GetMany, SetMany, Remove and Take are atomic with respect to each other: a
// reader observes either all or none of the keys written or removed by one call.
//
// Take returns the present values of keys and removes them in the same step.
// Of two concurrent Take calls over the same keys, only one sees the values.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	Take(ctx context.Context, keys ...string) (map[string]string, error)
}

// Load reads the token and role with one atomic read.
func Load(ctx context.Context, store Store, keys Keys) (Session, error) {
	values, err := store.GetMany(ctx, keys.Token, keys.Role)
	if err != nil {
		return Session{}, err
	}
	return fromValues(values, keys), nil
}

// Take claims the session: the token, the role and the identity keys are read
// and removed in one atomic call. The caller that receives an established
// Session owns its invalidation; every concurrent caller gets an empty one.
// The role data key is left in place.
func Take(ctx context.Context, store Store, keys Keys) (Session, error) {
	values, err := store.Take(ctx, ClearKeys(keys, permission.RoleUnknown, false)...)
	if err != nil {
		return Session{}, err
	}
	return fromValues(values, keys), nil
}

func fromValues(values map[string]string, keys Keys) Session {
	sess := Session{
		Token:   values[keys.Token],
		RawRole: values[keys.Role],
	}
	sess.Role, _ = permission.ParseRole(sess.RawRole)
	return sess
}

// Save writes the token, the role and any extra fields in one atomic write.
// Extra fields are limited to identity keys and the data key of sess.Role.
func Save(ctx context.Context, store Store, keys Keys, sess Session, extra map[string]string) error {
	values := make(map[string]string, 2+len(extra))
	dataKey, hasData := keys.DataKey(sess.Role)
	for k, v := range extra {
		switch {
		case keys.isIdentity(k):
		case hasData && k == dataKey:
		default:
			return fmt.Errorf("session field %q is not part of the key layout", k)
		}
		values[k] = v
	}
	values[keys.Token] = sess.Token
	values[keys.Role] = sess.Role.String()

	return store.SetMany(ctx, values)
}

// Clear removes the token, the role and the identity keys in one atomic
// removal. When withRoleData is set and role has a data key, that single key
// is removed as well.
func Clear(ctx context.Context, store Store, keys Keys, role permission.Role, withRoleData bool) error {
	return store.Remove(ctx, ClearKeys(keys, role, withRoleData)...)
}

// ClearKeys lists the keys Clear removes.
func ClearKeys(keys Keys, role permission.Role, withRoleData bool) []string {
	out := make([]string, 0, 3+len(keys.Identity))
	out = append(out, keys.Token, keys.Role)
	if withRoleData {
		if dataKey, ok := keys.DataKey(role); ok {
			out = append(out, dataKey)
		}
	}
	out = append(out, keys.Identity...)
	return out
}
