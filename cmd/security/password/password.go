package password

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for every digest.
//
// It is deliberately fixed: tuning it per deployment invites weak settings,
// and bcrypt digests are self-describing, so raising it later only affects
// new records.
const Cost = bcrypt.DefaultCost

// Hash returns a bcrypt digest of plain with a fresh random salt.
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plain matches digest.
//
// A malformed or truncated digest is a mismatch, not an error: the digest
// column is treated as untrusted input and must never crash a login path.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// HashSecret hashes an arbitrarily long secret (refresh tokens).
//
// bcrypt only reads the first 72 bytes of its input, and refresh tokens for
// one user share a long common prefix, so the secret is reduced to a fixed
// 32-byte SHA-256 digest before hashing.
func HashSecret(secret string) (string, error) {
	return Hash(preDigest(secret))
}

// VerifySecret reports whether secret matches a digest produced by HashSecret.
func VerifySecret(secret, digest string) bool {
	return Verify(preDigest(secret), digest)
}

func preDigest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.RawStdEncoding.EncodeToString(sum[:])
}
