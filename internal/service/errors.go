package service

import "errors"

// Domain failures surfaced to handlers as values. Handlers map every
// refresh failure to the same unauthenticated response so callers cannot
// probe which precondition failed.
var (
	// ErrInvalidCredentials is returned on unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountLocked is returned when the account is under lockout
	ErrAccountLocked = errors.New("account is temporarily locked")

	// ErrInvalidToken is returned when the access token fails signature or
	// structural checks, or names an unknown user
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenNotFound is returned when no refresh token row matches the
	// presented value for the claimed user
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrTokenExpired is returned when the refresh token is past its expiry
	ErrTokenExpired = errors.New("refresh token expired")

	// ErrTokenRevoked is returned when an already-rotated token is presented
	// again; the replay containment side effect has run by then
	ErrTokenRevoked = errors.New("refresh token revoked")

	// ErrProfileNotFound is returned when an operation requires a candidate
	// profile the user has not created yet
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidFrequency is returned for an unknown job agent frequency
	ErrInvalidFrequency = errors.New("invalid job agent frequency")
)
