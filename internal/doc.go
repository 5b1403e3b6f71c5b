// Package internal groups the helpers that are private to goGuard.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: pure navigation decision and the two-phase logout
//   - rate: Redis-backed fixed-window counters for the gateway
//
// # What this package must NOT do
//
//   - Export types that appear in the public goGuard API.
//   - Be imported by any package outside the goGuard module.
package internal
