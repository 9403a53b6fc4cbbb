package identity

import (
	"context"
	"strings"
	"sync"

	"bookstore/cmd/security/password"
)

// MemoryStore implements Store in process memory.
//
// It backs DB-less development mode and unit tests; semantics match
// PostgresStore, including case-insensitive email uniqueness.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]User
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, byID: make(map[int64]User)}
}

// ByEmail loads a user by email, matched case-insensitively.
func (s *MemoryStore) ByEmail(_ context.Context, email string) (User, error) {
	norm := normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if normalizeEmail(u.Email) == norm {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// ByID loads a user by id.
func (s *MemoryStore) ByID(_ context.Context, id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Create registers a user, hashing the plaintext password.
func (s *MemoryStore) Create(_ context.Context, in CreateUserInput) (User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return User{}, ErrInvalidInput
	}

	role := in.Role
	if role == "" {
		role = RoleUser
	}

	digest, err := password.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	norm := normalizeEmail(email)
	for _, u := range s.byID {
		if normalizeEmail(u.Email) == norm {
			return User{}, ErrConflict
		}
	}

	u := User{
		ID:           s.nextID,
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    in.Now,
	}
	s.nextID++
	s.byID[u.ID] = u

	return u, nil
}

// Delete removes a user. Refresh tokens referencing the id keep working
// until presented; the session layer then reports the missing account.
func (s *MemoryStore) Delete(_ context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
