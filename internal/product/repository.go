package product

import (
	"context"
	"errors"
)

// ErrNotFound indicates the product does not exist or is inactive.
var ErrNotFound = errors.New("product not found")

// Repository persists products.
type Repository interface {
	Create(ctx context.Context, p Product) error
	// ListActive returns products that have not been soft-deleted.
	ListActive(ctx context.Context) ([]Product, error)
	// FindActive returns the product only if it is still active.
	FindActive(ctx context.Context, id string) (Product, error)
	Find(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, p Product) error
}
