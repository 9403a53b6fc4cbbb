// Package gate turns bearer tokens into request principals and enforces
// role requirements on protected routes.
package gate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookstore/cmd/identity"
	"bookstore/cmd/internal/httpx"
	"bookstore/cmd/security/token"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID int64
	Role   identity.Role
}

type ctxKey struct{}

// FromContext returns the Principal stored by RequireAuth.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// Gate authenticates requests against a token codec.
type Gate struct {
	codec *token.Codec
}

func New(codec *token.Codec) *Gate {
	return &Gate{codec: codec}
}

// ResolvePrincipal decodes a bearer token into a Principal.
//
// Tokens carrying an unknown role are rejected outright rather than mapped
// to a least-privilege default: an unrecognized role in a well-signed token
// means configuration skew, and granting it anything would mask the bug.
func (g *Gate) ResolvePrincipal(bearer string) (Principal, error) {
	claims, err := g.codec.Decode(bearer, time.Now())
	if err != nil {
		return Principal{}, err
	}

	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return Principal{}, token.ErrTokenInvalid
	}

	return Principal{UserID: claims.UserID, Role: role}, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved Principal in the request context for downstream handlers.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, ok := httpx.BearerToken(r)
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
			return
		}

		p, err := g.ResolvePrincipal(bearer)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				httpx.WriteError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token has expired")
				return
			}
			httpx.WriteError(w, http.StatusUnauthorized, "TOKEN_INVALID", "token is invalid")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, p)))
	})
}

// RequireRole layers a role check over RequireAuth. A valid token whose role
// does not satisfy required yields 403, distinct from the 401 of a missing
// or bad token.
func (g *Gate) RequireRole(required identity.Role, next http.Handler) http.Handler {
	return g.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok || !p.Role.Satisfies(required) {
			httpx.WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
