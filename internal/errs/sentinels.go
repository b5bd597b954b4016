// Package errs contains sentinel errors used across layers for stable error mapping.
//
// The sentinels form a flat taxonomy shared by the server, both protocol
// backends and the client. Boundaries wrap them with fmt.Errorf("%w: ...")
// for diagnostics and callers match with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidCredentials indicates a wrong password for an existing user.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyExists indicates a unique constraint violation (username taken).
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidRegistration indicates malformed registration data.
	ErrInvalidRegistration = errors.New("invalid registration data")

	// ErrSessionMissing indicates the client has no cached token. Detected
	// locally; no wire call is made.
	ErrSessionMissing = errors.New("session missing")

	// ErrSessionInvalid indicates the token was absent, unparseable, expired
	// or rejected by the server. The reasons are deliberately not
	// distinguished to the caller.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrNotFound indicates the requested post does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller is authenticated but not the owner.
	ErrForbidden = errors.New("forbidden")

	// ErrTransport indicates a connection-level or timeout failure; the
	// underlying protocol diagnostic is attached by wrapping.
	ErrTransport = errors.New("transport failure")

	// ErrUnexpected is the catch-all for unclassified failures.
	ErrUnexpected = errors.New("unexpected failure")
)
