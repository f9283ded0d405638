package ports

import (
	"context"

	"github.com/99minutos/product-api/internal/core/domain"
)

// ListProductsFilter carries the optional query parameters of the list endpoint.
// Zero values mean "no filter".
type ListProductsFilter struct {
	Name     string   // case-insensitive substring match
	MinPrice *float64 // price >= MinPrice
	MaxPrice *float64 // price <= MaxPrice
}

// ProductRepository defines persistence operations for products.
// Lookups by id return domain.ErrProductNotFound when nothing matches.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns the matching products ordered by name.
	List(ctx context.Context, filter ListProductsFilter) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}
