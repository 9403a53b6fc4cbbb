package session

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for both a missing account
	// and a wrong password. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRefreshTokenInvalid is returned when a structurally valid refresh
	// token has no live record in the store: already rotated (replay),
	// explicitly revoked, or expired store-side.
	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")

	// ErrUserNotFound is returned when a token's subject no longer exists.
	// Tokens outlive deleted accounts.
	ErrUserNotFound = errors.New("user not found for this token")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")
)
