// Package token builds and validates the bookstore's signed claim bundles.
//
// Access and refresh tokens are JWTs signed with a single server-held
// secret and one configured HMAC algorithm. They carry the same claims
// ({sub, role, iat, exp}) and differ only in lifetime; refresh tokens are
// additionally hashed and persisted by the session store, access tokens
// are verified statelessly by signature alone.
//
// Decode rejects any token whose header names a different algorithm than
// the configured one, including "none".
package token
