// Package rate provides a Redis-backed fixed-window counter used to throttle
// session establishment in the gateway.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - <prefix>:rl:client: per browser client
//   - <prefix>:rl:ip:     per remote IP
//
// # What this package must NOT do
//
//   - Decide navigation or touch credential stores.
//   - Be imported outside the goGuard module.
package rate
