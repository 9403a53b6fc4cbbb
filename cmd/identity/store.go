package identity

import (
	"context"
	"time"
)

// User is a credential record. PasswordHash is a bcrypt digest and must
// never leave the process.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// CreateUserInput describes a registration or seed request.
// Password is the plaintext; the store hashes it before persisting.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     Role
	Now      time.Time
}

// Store is the user-account persistence boundary.
type Store interface {
	// ByEmail loads a user by email, matched case-insensitively.
	// Returns ErrNotFound when no account exists.
	ByEmail(ctx context.Context, email string) (User, error)

	// ByID loads a user by id. Returns ErrNotFound for deleted accounts;
	// refresh tokens outlive deletions, so callers must expect it.
	ByID(ctx context.Context, id int64) (User, error)

	// Create registers a new user. Returns ErrConflict when the email is
	// already taken.
	Create(ctx context.Context, in CreateUserInput) (User, error)
}
