// Package session keeps live battles between requests.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Update when the id is unknown.
var ErrNotFound = errors.New("session not found")

type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	// Update replaces the value under id with fn's result. fn runs while the
	// entry is locked, so concurrent updates to one battle are serialized.
	Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error)
	Delete(ctx context.Context, id string) error
	NewID() string
}
