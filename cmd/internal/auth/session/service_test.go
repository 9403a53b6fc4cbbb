package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookstore/cmd/identity"
	"bookstore/cmd/security/token"
)

const (
	testEmail    = "reader@example.com"
	testPassword = "correct-password"
)

func newTestService(t *testing.T) (*Service, *identity.MemoryStore, *MemoryStore, identity.User) {
	t.Helper()

	codec, err := token.NewCodec("unit-test-secret-32-bytes-or-more!!", "HS256", 30*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	users := identity.NewMemoryStore()
	store := NewMemoryStore()

	u, err := users.Create(t.Context(), identity.CreateUserInput{
		Email:    testEmail,
		Name:     "Reader",
		Password: testPassword,
		Role:     identity.RoleUser,
		Now:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc, err := NewService(codec, store, users)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, users, store, u
}

func TestLogin_Success(t *testing.T) {
	svc, _, store, u := newTestService(t)
	now := time.Now().UTC()

	pair, err := svc.Login(t.Context(), now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.TokenType != "bearer" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatalf("access and refresh tokens must differ")
	}

	live, err := store.LiveByUser(t.Context(), now, u.ID)
	if err != nil {
		t.Fatalf("LiveByUser: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("live records = %d, want 1", len(live))
	}
}

func TestLogin_UniformFailure(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	now := time.Now().UTC()

	_, errMissing := svc.Login(t.Context(), now, "noone@example.com", "whatever")
	_, errWrongPw := svc.Login(t.Context(), now, testEmail, "wrong-password")

	if !errors.Is(errMissing, ErrInvalidCredentials) {
		t.Fatalf("missing account: got %v", errMissing)
	}
	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", errWrongPw)
	}
	// Identical failures: same sentinel, same message, nothing to tell apart.
	if errMissing.Error() != errWrongPw.Error() {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", errMissing, errWrongPw)
	}
}

func TestRefresh_ReplayFails(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	now := time.Now().UTC()
	ctx := t.Context()

	pair, err := svc.Login(ctx, now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.Refresh(ctx, now, pair.RefreshToken); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	// Same token again, same instant: the rotation already revoked it.
	if _, err := svc.Refresh(ctx, now, pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("replay: got %v, want ErrRefreshTokenInvalid", err)
	}
}

func TestRefresh_ConcurrentSameToken_OneWinner(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	now := time.Now().UTC()
	ctx := context.Background()

	pair, err := svc.Login(ctx, now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	const callers = 4
	results := make(chan error, callers)

	var start sync.WaitGroup
	start.Add(1)
	for range callers {
		go func() {
			start.Wait()
			_, err := svc.Refresh(ctx, now, pair.RefreshToken)
			results <- err
		}()
	}
	start.Done()

	var wins, replays int
	for range callers {
		switch err := <-results; {
		case err == nil:
			wins++
		case errors.Is(err, ErrRefreshTokenInvalid):
			replays++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || replays != callers-1 {
		t.Fatalf("wins = %d, replays = %d; want exactly one winner", wins, replays)
	}
}

func TestRefresh_RotationChain(t *testing.T) {
	svc, _, store, u := newTestService(t)
	now := time.Now().UTC()
	ctx := t.Context()

	pair, err := svc.Login(ctx, now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	seen := map[string]bool{pair.RefreshToken: true}
	current := pair.RefreshToken
	for i := range 5 {
		next, err := svc.Refresh(ctx, now, current)
		if err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
		if seen[next.RefreshToken] {
			t.Fatalf("refresh %d minted a previously seen token", i)
		}
		seen[next.RefreshToken] = true
		current = next.RefreshToken
	}

	// Every earlier token is revoked; exactly the newest one is live.
	live, err := store.LiveByUser(ctx, now, u.ID)
	if err != nil {
		t.Fatalf("LiveByUser: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("live records after chain = %d, want 1", len(live))
	}
	if _, err := svc.Refresh(ctx, now, current); err != nil {
		t.Fatalf("newest token must still refresh: %v", err)
	}
}

func TestRefresh_StoreSideExpiry(t *testing.T) {
	svc, _, store, u := newTestService(t)
	now := time.Now().UTC()
	ctx := t.Context()

	// Token is well signed for 7 days, but its store record expires sooner.
	refresh, _, err := svc.codec.IssueRefresh(now, u.ID, string(u.Role))
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := store.Issue(ctx, now, u.ID, refresh, now.Add(time.Minute)); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	later := now.Add(2 * time.Minute)
	if _, err := svc.Refresh(ctx, later, refresh); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("refresh: got %v, want ErrRefreshTokenInvalid", err)
	}
	if err := svc.Logout(ctx, later, refresh); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("logout: got %v, want ErrRefreshTokenInvalid", err)
	}
}

func TestRefresh_SignatureExpiry(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	now := time.Now().UTC()
	ctx := t.Context()

	pair, err := svc.Login(ctx, now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.Refresh(ctx, now.Add(8*24*time.Hour), pair.RefreshToken); !errors.Is(err, token.ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Refresh(t.Context(), time.Now().UTC(), "not-a-token"); !errors.Is(err, token.ErrTokenInvalid) {
		t.Fatalf("got %v, want ErrTokenInvalid", err)
	}
}

func TestRefresh_DeletedAccount(t *testing.T) {
	svc, users, _, u := newTestService(t)
	now := time.Now().UTC()
	ctx := t.Context()

	pair, err := svc.Login(ctx, now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	users.Delete(ctx, u.ID)

	if _, err := svc.Refresh(ctx, now, pair.RefreshToken); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}

func TestLogout_NotIdempotent(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	now := time.Now().UTC()
	ctx := t.Context()

	pair, err := svc.Login(ctx, now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, now, pair.RefreshToken); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := svc.Logout(ctx, now, pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("second logout: got %v, want ErrRefreshTokenInvalid", err)
	}
	// And the revoked token can never refresh.
	if _, err := svc.Refresh(ctx, now, pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("refresh after logout: got %v, want ErrRefreshTokenInvalid", err)
	}
}

func TestLogoutAll_RevokesEveryDevice(t *testing.T) {
	svc, _, store, u := newTestService(t)
	now := time.Now().UTC()
	ctx := t.Context()

	desktop, err := svc.Login(ctx, now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login desktop: %v", err)
	}
	phone, err := svc.Login(ctx, now, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login phone: %v", err)
	}

	live, err := store.LiveByUser(ctx, now, u.ID)
	if err != nil || len(live) != 2 {
		t.Fatalf("live = %d, %v; want 2 sessions", len(live), err)
	}

	if err := svc.LogoutAll(ctx, now, desktop.RefreshToken); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}

	live, err = store.LiveByUser(ctx, now, u.ID)
	if err != nil || len(live) != 0 {
		t.Fatalf("live after LogoutAll = %d, %v; want 0", len(live), err)
	}
	if _, err := svc.Refresh(ctx, now, phone.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("other device refresh: got %v, want ErrRefreshTokenInvalid", err)
	}
}
