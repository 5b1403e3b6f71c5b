// Package session provides the credential store that persists a portal login
// between navigations, plus helpers that read and clear it atomically.
//
// # Layout
//
// A session is a set of string entries named by [Keys]: the access token, the
// role, one role-specific profile blob and a few identity fields. [Load],
// [Save] and [Clear] touch the token and the role in a single store call so a
// reader never sees one without the other.
//
// # Backends
//
//   - [MemoryStore]: mutex-guarded map, one per client via [MemoryProvider].
//   - [RedisStore]: one Redis hash per client via [RedisProvider]; multi-key
//     operations map onto HMGET, HSET (MULTI/EXEC with EXPIRE) and HDEL.
//
// # Architecture boundaries
//
// This package owns storage. It does NOT decide when a session is cleared or
// what a missing role means; those decisions belong to the Guard.
//
// # What this package must NOT do
//
//   - Import goGuard, routes, or remote (no upward imports).
//   - Perform network calls other than to the configured Redis client.
//   - Interpret or verify access tokens.
package session
