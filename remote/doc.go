// Package remote is the HTTP client for the portal's session API: the
// role-specific logout endpoints and bearer-authenticated proxying used by the
// gateway.
//
// Every call is bounded by [Config.Timeout] (10s by default). Transport
// failures wrap [ErrUnavailable]; non-2xx logout responses return
// [*StatusError].
package remote
