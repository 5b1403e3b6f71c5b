// Package middleware is the navigation effect layer: it turns Guard outcomes
// into HTTP redirects.
//
//   - [Client] resolves the per-browser credential store from a cookie.
//   - [Navigation] decides page requests and answers 302 on redirect or logout.
//   - [RequireSession] answers API requests without a token with 401.
//
// # Architecture boundaries
//
// Decisions are made by goGuard.Guard. This package only maps them to HTTP.
//
// # What this package must NOT do
//
//   - Decide access on its own beyond the presence of a token.
//   - Call the remote session API directly.
package middleware
