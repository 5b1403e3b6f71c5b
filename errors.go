package goGuard

import "errors"

var (
	// ErrGuardNotReady is returned by methods called on a nil or closed Guard.
	ErrGuardNotReady = errors.New("guard not ready")
	// ErrInvalidSession rejects sessions that cannot be established.
	ErrInvalidSession = errors.New("invalid session")
	// ErrStoreRequired is returned when no credential store is available.
	ErrStoreRequired = errors.New("credential store required")
	// ErrRemoteRequired is returned by Build when no remote session API is set.
	ErrRemoteRequired = errors.New("remote session api required")
	// ErrUnknownDestination is returned for route names missing from the table.
	ErrUnknownDestination = errors.New("unknown destination")
)
