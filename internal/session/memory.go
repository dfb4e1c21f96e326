package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type MemoryStore[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]T{}}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[id]
	return v, ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = v
	return nil
}

// Update holds the write lock for the duration of fn. The stored value is
// left untouched when fn fails.
func (s *MemoryStore[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[id]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	s.m[id] = next
	return next, nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *MemoryStore[T]) NewID() string {
	return uuid.NewString()
}
