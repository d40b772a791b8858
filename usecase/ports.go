package usecase

import "context"

// MutationQueue serializes mutations of one shared collection.
type MutationQueue interface {
	Do(ctx context.Context, job func(ctx context.Context) error) error
}
