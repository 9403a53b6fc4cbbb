// Package password provides one-way hashing and verification for the
// bookstore's two kinds of secrets: account passwords and refresh tokens
// at rest.
//
// Both use the same bcrypt primitive with an independently randomized salt
// per digest. Refresh tokens are longer than bcrypt's 72-byte input limit,
// so HashSecret/VerifySecret digest them with SHA-256 first.
//
// Security notes:
//   - Verify never fails for malformed digests; it reports a mismatch.
//   - Comparison cost does not depend on the mismatch position.
package password
