// Package flows contains the orchestrators behind every Guard operation.
//
// [RunDecide] is a pure function from a destination and a session snapshot to
// a [Verdict]. [RunLogout] is the two-phase logout: claim and clear the local
// credentials atomically, then dispatch the remote invalidation. Both accept typed
// dependency structs so they can be tested without a Guard.
//
// # Architecture boundaries
//
// Flow functions coordinate the credential store, the remote session API and
// the observer callbacks. They do NOT own any of these resources; ownership
// stays with the Guard.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goGuard (to avoid import cycles).
//   - Perform I/O directly; all I/O goes through dependency interfaces.
package flows
