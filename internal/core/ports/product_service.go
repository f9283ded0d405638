package ports

import (
	"context"

	"github.com/99minutos/product-api/internal/core/domain"
)

// CreateProductInput carries the data needed to create a product.
type CreateProductInput struct {
	Name  string
	Price float64
}

// UpdateProductInput is a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name  *string
	Price *float64
}

// ProductService defines use-case operations for products.
type ProductService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ListProductsFilter) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
