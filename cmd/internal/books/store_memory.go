package books

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory, for DB-less development
// mode and tests.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Book
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, byID: make(map[int64]Book)}
}

func (s *MemoryStore) List(_ context.Context, keyword string) ([]Book, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Book{}
	for _, b := range s.byID {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(b.Title), keyword) &&
			!strings.Contains(strings.ToLower(b.Author), keyword) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) ByID(_ context.Context, id int64) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Create(_ context.Context, now time.Time, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := Book{
		ID:        s.nextID,
		Title:     in.Title,
		Author:    in.Author,
		Price:     in.Price,
		Stock:     in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.byID[b.ID] = b
	return b, nil
}

func (s *MemoryStore) Update(_ context.Context, now time.Time, id int64, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	b.Title = in.Title
	b.Author = in.Author
	b.Price = in.Price
	b.Stock = in.Stock
	b.UpdatedAt = now
	s.byID[id] = b
	return b, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
