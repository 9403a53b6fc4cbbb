// Package identity owns the bookstore's user accounts: the credential
// records consumed read-only by the auth core, and the closed set of roles
// enforced by the authorization gate.
package identity
