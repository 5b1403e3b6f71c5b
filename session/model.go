package session

import (
	"errors"

	"github.com/MrEthical07/goGuard/permission"
)

// Key names used by the portal frontend. They are kept verbatim so an existing
// browser profile stays readable.
const (
	KeyAccessToken  = "accessToken"
	KeyRole         = "role"
	KeyAdminData    = "adminData"
	KeyLecturerData = "lecturerData"
	KeyStudentData  = "studentData"
	KeyUserID       = "user_id"
	KeyName         = "name"
	KeySchoolID     = "school_id"
	KeyIsLogged     = "isLogged"
)

// Keys names the credential store entries that make up a session.
type Keys struct {
	Token    string
	Role     string
	RoleData map[permission.Role]string
	Identity []string
}

// DefaultKeys returns the key layout written by the portal login pages.
func DefaultKeys() Keys {
	return Keys{
		Token: KeyAccessToken,
		Role:  KeyRole,
		RoleData: map[permission.Role]string{
			permission.RoleAdmin:    KeyAdminData,
			permission.RoleLecturer: KeyLecturerData,
			permission.RoleStudent:  KeyStudentData,
		},
		Identity: []string{KeyUserID, KeyName, KeySchoolID, KeyIsLogged},
	}
}

// Validate checks that the token and role keys are set and distinct.
func (k Keys) Validate() error {
	if k.Token == "" {
		return errors.New("session token key must not be empty")
	}
	if k.Role == "" {
		return errors.New("session role key must not be empty")
	}
	if k.Token == k.Role {
		return errors.New("session token and role keys must differ")
	}
	for r, key := range k.RoleData {
		if !r.HasPortal() {
			return errors.New("role data key declared for a role without a portal")
		}
		if key == "" || key == k.Token || key == k.Role {
			return errors.New("role data key must be non-empty and distinct from token and role keys")
		}
	}
	return nil
}

// DataKey returns the role-specific profile key for r.
func (k Keys) DataKey(r permission.Role) (string, bool) {
	key, ok := k.RoleData[r]
	return key, ok && key != ""
}

// Clone returns a deep copy of k.
func (k Keys) Clone() Keys {
	out := k
	if k.RoleData != nil {
		out.RoleData = make(map[permission.Role]string, len(k.RoleData))
		for r, key := range k.RoleData {
			out.RoleData[r] = key
		}
	}
	if k.Identity != nil {
		out.Identity = append([]string(nil), k.Identity...)
	}
	return out
}

func (k Keys) isIdentity(key string) bool {
	for _, id := range k.Identity {
		if id == key {
			return true
		}
	}
	return false
}

// Session is the credential pair read from the store.
//
// Token is empty when absent. Role is RoleUnknown when the stored value is
// missing or unrecognized; RawRole keeps whatever was stored.
type Session struct {
	Token   string
	Role    permission.Role
	RawRole string
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Established reports whether both halves of the session are usable: a token
// and a role that owns a portal.
func (s Session) Established() bool {
	return s.Token != "" && s.Role.HasPortal()
}
