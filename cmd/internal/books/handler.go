package books

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookstore/cmd/identity"
	"bookstore/cmd/internal/auth/gate"
	"bookstore/cmd/internal/httpx"
)

// Handler exposes the catalog over HTTP. Reads are public; writes pass
// through the admin gate.
type Handler struct {
	log     *slog.Logger
	store   Store
	gate    *gate.Gate
	maxBody int64
}

// NewHandler constructs the catalog Handler.
func NewHandler(log *slog.Logger, store Store, g *gate.Gate, maxBodyBytes int64) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil || g == nil {
		return nil, errors.New("books: nil dependency")
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handler{log: log, store: store, gate: g, maxBody: maxBodyBytes}, nil
}

// Register wires catalog routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/v1/books", h.handleCollection)
	mux.HandleFunc("/api/v1/books/", h.handleItem)
}

func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.gate.RequireRole(identity.RoleAdmin, http.HandlerFunc(h.create)).ServeHTTP(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r.URL.Path)
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.gate.RequireRole(identity.RoleAdmin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.update(w, r, id)
		})).ServeHTTP(w, r)
	case http.MethodDelete:
		h.gate.RequireRole(identity.RoleAdmin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.delete(w, r, id)
		})).ServeHTTP(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func itemID(path string) (int64, error) {
	raw := strings.TrimPrefix(path, "/api/v1/books/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, ErrNotFound
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.List(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		h.log.Error("books.list.fail", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id int64) {
	b, err := h.store.ByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, "books.get.fail", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(w, r, h.maxBody, &in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	b, err := h.store.Create(r.Context(), time.Now().UTC(), in)
	if err != nil {
		h.writeStoreError(w, "books.create.fail", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var in Input
	if err := httpx.DecodeJSON(w, r, h.maxBody, &in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	b, err := h.store.Update(r.Context(), time.Now().UTC(), id, in)
	if err != nil {
		h.writeStoreError(w, "books.update.fail", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, "books.delete.fail", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid book fields")
	default:
		h.log.Error(op, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR", "internal error")
	}
}
