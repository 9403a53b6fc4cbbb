package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore/cmd/security/password"
)

// PostgresStore implements Store on the users table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed user store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("identity: nil db pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const userColumns = `id, email, name, password_hash, role, created_at`

// ByEmail loads a user by email (case-insensitive; backed by the
// lower(email) unique index).
func (s *PostgresStore) ByEmail(ctx context.Context, email string) (User, error) {
	return s.scanOne(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1)
	`, strings.TrimSpace(email)))
}

// ByID loads a user by id.
func (s *PostgresStore) ByID(ctx context.Context, id int64) (User, error) {
	return s.scanOne(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

// Create registers a user, hashing the plaintext password.
func (s *PostgresStore) Create(ctx context.Context, in CreateUserInput) (User, error) {
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

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+userColumns+`
	`, email, strings.TrimSpace(in.Name), digest, string(role), in.Now)

	u, err := s.scanOne(row)
	if isUniqueViolation(err) {
		return User{}, ErrConflict
	}
	return u, err
}

func (s *PostgresStore) scanOne(row pgx.Row) (User, error) {
	var (
		u       User
		roleRaw string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &roleRaw, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	role, err := ParseRole(roleRaw)
	if err != nil {
		return User{}, err
	}
	u.Role = role

	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
