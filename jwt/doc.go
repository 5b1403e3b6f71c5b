// Package jwt inspects and issues portal access tokens.
//
// [Inspector] reads the exp claim of backend-issued tokens without a key so the
// guard can treat an expired token as no session. [Manager] signs and verifies
// tokens when the gateway shares a key with the backend, and in tests.
package jwt
