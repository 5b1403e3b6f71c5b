// Package audit relays guard events to a caller-supplied sink off the request path.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON lines, no-op).
//   - [Dispatcher]: buffered async relay that drops or blocks when full,
//     never drops retained event types, and counts drops per event type.
//   - [Event]: one navigation decision or session transition, keyed by client.
//
// # Architecture boundaries
//
// This package owns buffering and sink delivery. Which events exist and when
// they are emitted is decided by the Guard.
//
// # What this package must NOT do
//
//   - Filter events based on navigation rules.
//   - Import goGuard or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
