package books

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on the books table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed catalog store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("books: nil db pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const bookColumns = `id, title, author, price, stock, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context, keyword string) ([]Book, error) {
	keyword = strings.TrimSpace(keyword)

	var (
		rows pgx.Rows
		err  error
	)
	if keyword == "" {
		rows, err = s.pool.Query(ctx, `
			SELECT `+bookColumns+`
			FROM books
			ORDER BY id DESC
		`)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT `+bookColumns+`
			FROM books
			WHERE title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%'
			ORDER BY id DESC
		`, keyword)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ByID(ctx context.Context, id int64) (Book, error) {
	return scanBook(s.pool.QueryRow(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE id = $1
	`, id))
}

func (s *PostgresStore) Create(ctx context.Context, now time.Time, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}

	return scanBook(s.pool.QueryRow(ctx, `
		INSERT INTO books (title, author, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+bookColumns+`
	`, in.Title, in.Author, in.Price, in.Stock, now))
}

func (s *PostgresStore) Update(ctx context.Context, now time.Time, id int64, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}

	return scanBook(s.pool.QueryRow(ctx, `
		UPDATE books
		SET title = $2, author = $3, price = $4, stock = $5, updated_at = $6
		WHERE id = $1
		RETURNING `+bookColumns+`
	`, id, in.Title, in.Author, in.Price, in.Stock, now))
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Stock, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, err
	}
	return b, nil
}
