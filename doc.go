// Package goGuard decides what happens when a portal user navigates to a page.
//
// Every navigation resolves to one of three decisions: proceed, redirect to a
// named route, or force a logout. A forced logout invalidates the access token
// on the backend and clears the local credential store before redirecting to
// the matching login page.
//
// [Guard] methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Guard], [Builder], [Config] and
// the value types [Decision] and [Outcome]. The decision algorithm and the
// two-phase logout live in internal/flows; audit buffering lives in
// internal/audit. Credential storage is behind [session.Store] and the backend
// behind [RemoteSession].
//
// # What this package must NOT do
//
//   - Render pages or write HTTP responses; the middleware package owns effects.
//   - Perform I/O in Decide. Only ForceLogout, Logout, Reject and Establish touch
//     the store or the network.
//   - Import any sub-package that re-imports goGuard (no import cycles).
package goGuard
