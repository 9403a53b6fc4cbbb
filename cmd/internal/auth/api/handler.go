// Package authapi wires the session service to its HTTP endpoints: login,
// refresh, logout, logout-all, and the authenticated profile view.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookstore/cmd/identity"
	"bookstore/cmd/internal/auth/gate"
	"bookstore/cmd/internal/auth/session"
	"bookstore/cmd/internal/httpx"
	"bookstore/cmd/internal/metrics"
	"bookstore/cmd/security/token"
)

// Handler exposes the auth endpoints over a session service.
type Handler struct {
	log *slog.Logger
	cfg Config

	sessions *session.Service
	users    session.UserDirectory
	gate     *gate.Gate
}

// NewHandler constructs the auth Handler.
func NewHandler(log *slog.Logger, cfg Config, sessions *session.Service, users session.UserDirectory, g *gate.Gate) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if sessions == nil || users == nil || g == nil {
		return nil, errors.New("authapi: nil dependency")
	}

	return &Handler{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		users:    users,
		gate:     g,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/v1/auth/login", h.handleLogin)
	mux.HandleFunc("/api/v1/auth/refresh", h.handleRefresh)
	mux.HandleFunc("/api/v1/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/v1/auth/logout_all", h.handleLogoutAll)
	mux.Handle("/api/v1/users/me", h.gate.RequireAuth(http.HandlerFunc(h.handleMe)))
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "email and password are required")
		return
	}

	pair, err := h.sessions.Login(r.Context(), time.Now().UTC(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			metrics.Logins.WithLabelValues("invalid_credentials").Inc()
			httpx.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
			return
		}
		metrics.Logins.WithLabelValues("error").Inc()
		h.log.Error("auth.login.fail", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR", "internal error")
		return
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "refresh_token is required")
		return
	}

	pair, err := h.sessions.Refresh(r.Context(), time.Now().UTC(), req.RefreshToken)
	if err != nil {
		metrics.Refreshes.WithLabelValues(refreshResult(err)).Inc()
		h.writeRefreshError(w, "auth.refresh.fail", err)
		return
	}

	metrics.Refreshes.WithLabelValues("ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req logoutRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "refresh_token is required")
		return
	}

	if err := h.sessions.Logout(r.Context(), time.Now().UTC(), req.RefreshToken); err != nil {
		h.writeRefreshError(w, "auth.logout.fail", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req logoutRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "refresh_token is required")
		return
	}

	if err := h.sessions.LogoutAll(r.Context(), time.Now().UTC(), req.RefreshToken); err != nil {
		h.writeRefreshError(w, "auth.logout_all.fail", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	p, ok := gate.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
		return
	}

	u, err := h.users.ByID(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "user not found")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR", "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// writeRefreshError maps the refresh-token error taxonomy onto the wire.
//
// The distinctions are deliberate: a signature-level failure, an expired
// signature, a token with no live store record, and a vanished subject are
// different operator signals even though all four are 401 to the client.
func (h *Handler) writeRefreshError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		httpx.WriteError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token has expired")
	case errors.Is(err, token.ErrTokenInvalid):
		httpx.WriteError(w, http.StatusUnauthorized, "TOKEN_INVALID", "token is invalid")
	case errors.Is(err, session.ErrRefreshTokenInvalid):
		httpx.WriteError(w, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "invalid or expired refresh token")
	case errors.Is(err, session.ErrUserNotFound):
		httpx.WriteError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "user not found")
	default:
		h.log.Error(op, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR", "internal error")
	}
}

func refreshResult(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, token.ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, session.ErrRefreshTokenInvalid):
		return "refresh_invalid"
	case errors.Is(err, session.ErrUserNotFound):
		return "user_not_found"
	default:
		return "error"
	}
}
