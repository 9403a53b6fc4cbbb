// Package session implements the bookstore's session-token lifecycle:
// login, refresh rotation, and logout.
//
// A session is one refresh-token lineage. Login starts it; every refresh
// revokes the presented token and mints a replacement (rotation, not
// extension), so a leaked refresh token is good for at most one extra use;
// logout revokes with no replacement. Revocation is a one-way transition.
//
// Refresh tokens are stored only as salted bcrypt digests. Because each
// digest carries its own salt, lookup is a scan over the user's live
// records with a constant-time verify per record, not an index hit; see
// Store for the atomicity contract that keeps rotation race-free.
package session
