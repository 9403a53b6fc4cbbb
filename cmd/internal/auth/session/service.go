package session

import (
	"context"
	"errors"
	"time"

	"bookstore/cmd/identity"
	"bookstore/cmd/security/password"
	"bookstore/cmd/security/token"
)

// UserDirectory is the read-only view of user accounts the session core
// needs: credential lookup for login, subject resolution for refresh.
type UserDirectory interface {
	ByEmail(ctx context.Context, email string) (identity.User, error)
	ByID(ctx context.Context, id int64) (identity.User, error)
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Service orchestrates login, refresh rotation, and logout over the token
// codec, the password verifier, and the refresh-token store.
type Service struct {
	codec *token.Codec
	store Store
	users UserDirectory

	// dummyHash is verified on the missing-account login path so that
	// "no such account" and "wrong password" take comparable time.
	dummyHash string
}

// NewService constructs a Service. The store decides atomicity (Postgres
// transactions or the memory store's lock); the service never assumes a
// particular backend.
func NewService(codec *token.Codec, store Store, users UserDirectory) (*Service, error) {
	if codec == nil || store == nil || users == nil {
		return nil, errors.New("session: nil dependency")
	}

	dummy, err := password.Hash("dummy-password-for-timing-only")
	if err != nil {
		return nil, err
	}

	return &Service{codec: codec, store: store, users: users, dummyHash: dummy}, nil
}

// Login verifies credentials and starts a new session.
//
// A missing account and a wrong password both return ErrInvalidCredentials;
// nothing in the error or its timing reveals which check failed.
func (s *Service) Login(ctx context.Context, now time.Time, email, pw string) (TokenPair, error) {
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			password.Verify(pw, s.dummyHash)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	if !password.Verify(pw, u.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}

	return s.issuePair(ctx, now, u)
}

// Refresh rotates the presented refresh token and returns a fresh pair.
//
// The presented record is revoked and replaced in one atomic store
// operation: presenting an already-rotated token fails with
// ErrRefreshTokenInvalid exactly like a forged one (replay defense), and
// of two concurrent calls with the same token only one succeeds.
func (s *Service) Refresh(ctx context.Context, now time.Time, presented string) (TokenPair, error) {
	u, err := s.resolve(ctx, now, presented)
	if err != nil {
		return TokenPair{}, err
	}

	replacement, replacementExp, err := s.codec.IssueRefresh(now, u.ID, string(u.Role))
	if err != nil {
		return TokenPair{}, err
	}

	// If Rotate fails the freshly minted JWT is simply discarded; it has
	// no store record and can never pass a future Rotate.
	if _, _, err := s.store.Rotate(ctx, now, u.ID, presented, replacement, replacementExp); err != nil {
		return TokenPair{}, err
	}

	access, _, err := s.codec.IssueAccess(now, u.ID, string(u.Role))
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: replacement, TokenType: "bearer"}, nil
}

// Logout revokes the presented refresh token with no replacement.
//
// Not idempotent: a second logout with the same token fails with
// ErrRefreshTokenInvalid. Logout means "revoke my active session", not
// "ensure revoked".
func (s *Service) Logout(ctx context.Context, now time.Time, presented string) error {
	u, err := s.resolve(ctx, now, presented)
	if err != nil {
		return err
	}

	_, err = s.store.RevokeMatching(ctx, now, u.ID, presented)
	return err
}

// LogoutAll revokes every live session of the presented token's owner.
// The presented token itself must still be live.
func (s *Service) LogoutAll(ctx context.Context, now time.Time, presented string) error {
	u, err := s.resolve(ctx, now, presented)
	if err != nil {
		return err
	}

	if _, err := s.store.RevokeMatching(ctx, now, u.ID, presented); err != nil {
		return err
	}
	return s.store.RevokeAll(ctx, now, u.ID)
}

// resolve decodes a presented refresh token and loads its subject.
// Decode failures pass through as token.ErrTokenInvalid/ErrTokenExpired.
func (s *Service) resolve(ctx context.Context, now time.Time, presented string) (identity.User, error) {
	claims, err := s.codec.Decode(presented, now)
	if err != nil {
		return identity.User{}, err
	}

	u, err := s.users.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return identity.User{}, ErrUserNotFound
		}
		return identity.User{}, err
	}
	return u, nil
}

func (s *Service) issuePair(ctx context.Context, now time.Time, u identity.User) (TokenPair, error) {
	access, _, err := s.codec.IssueAccess(now, u.ID, string(u.Role))
	if err != nil {
		return TokenPair{}, err
	}

	refresh, refreshExp, err := s.codec.IssueRefresh(now, u.ID, string(u.Role))
	if err != nil {
		return TokenPair{}, err
	}

	if _, err := s.store.Issue(ctx, now, u.ID, refresh, refreshExp); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}
