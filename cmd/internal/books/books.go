// Package books is the catalog resource the security gateway guards.
//
// It is deliberately thin: reads are public, writes are admin-only, and the
// interesting behavior (authentication, authorization, throttling) lives in
// the middleware in front of it.
package books

import (
	"context"
	"errors"
	"time"
)

// Book is a catalog entry. Price is in the store's minor currency unit.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input carries the writable fields for create and full update.
type Input struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Price  int64  `json:"price"`
	Stock  int    `json:"stock"`
}

// Validate reports ErrInvalidInput for unusable field values.
func (in Input) Validate() error {
	if in.Title == "" || in.Author == "" || in.Price < 0 || in.Stock < 0 {
		return ErrInvalidInput
	}
	return nil
}

// Store is the catalog persistence interface.
type Store interface {
	// List returns books ordered newest-first. A non-empty keyword filters
	// by substring match on title or author.
	List(ctx context.Context, keyword string) ([]Book, error)
	ByID(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, now time.Time, in Input) (Book, error)
	Update(ctx context.Context, now time.Time, id int64, in Input) (Book, error)
	Delete(ctx context.Context, id int64) error
}

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")

	// ErrInvalidInput is returned for unusable book fields.
	ErrInvalidInput = errors.New("invalid book input")
)
