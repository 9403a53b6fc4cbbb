package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrTokenInvalid is returned for malformed, mis-signed, or
	// wrong-algorithm tokens, and for tokens missing required claims.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned for a well-signed token whose expiry is
	// in the past. Callers may treat it like ErrTokenInvalid, but the two
	// stay distinguishable.
	ErrTokenExpired = errors.New("token expired")

	// ErrSecretMissing is returned by NewCodec for an empty signing secret.
	ErrSecretMissing = errors.New("signing secret missing")

	// ErrUnsupportedAlgorithm is returned by NewCodec for algorithms other
	// than HS256, HS384, and HS512.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)
