package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify_OK(t *testing.T) {
	digest, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(digest, "$2") {
		t.Fatalf("unexpected digest format: %q", digest)
	}
	if !Verify("correct horse battery staple", digest) {
		t.Fatalf("expected match")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	digest, err := Hash("right")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if Verify("wrong", digest) {
		t.Fatalf("expected mismatch")
	}
}

func TestVerify_MalformedDigest(t *testing.T) {
	for _, digest := range []string{
		"",
		"not-a-bcrypt-digest",
		"$2a$backwards",
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
	} {
		if Verify("anything", digest) {
			t.Fatalf("malformed digest %q verified", digest)
		}
	}
}

func TestHash_SaltIsRandomized(t *testing.T) {
	a, err := Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatalf("two digests of the same input must differ")
	}
}

func TestSecret_LongInputsBeyondBcryptLimit(t *testing.T) {
	// Two long secrets sharing a 100-byte prefix must not collide.
	prefix := strings.Repeat("a", 100)
	first := prefix + "one"
	second := prefix + "two"

	digest, err := HashSecret(first)
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	if !VerifySecret(first, digest) {
		t.Fatalf("expected match for original secret")
	}
	if VerifySecret(second, digest) {
		t.Fatalf("secret sharing a 72+ byte prefix must not match")
	}
}
