// Package permission defines portal roles and the role bitmask used by route
// access requirements.
//
// # Roles
//
// [Role] enumerates guest, admin, lecturer and student. Only admin, lecturer and
// student own a portal (dashboard, login page, remote logout endpoint). Stored
// role strings that do not parse become [RoleUnknown].
//
// # Architecture boundaries
//
// This package is a pure in-memory value layer with no I/O. Route tables and the
// session model build on it.
//
// # What this package must NOT do
//
//   - Access Redis, the credential store, or the network.
//   - Import goGuard, session, or routes.
package permission
