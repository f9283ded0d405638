package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
	"github.com/99minutos/product-api/internal/pkg/metrics"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger, now: time.Now}
}

func (s *ProductService) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	if err := validateProduct(&input.Name, &input.Price); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := &domain.Product{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Price:     input.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	metrics.ProductsCreatedTotal.Inc()
	s.logger.Info().Str("product_id", product.ID).Msg("product created")
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	id, err := normalizeProductID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ListProducts returns products matching every non-empty filter, ordered by name.
func (s *ProductService) ListProducts(ctx context.Context, filter ports.ListProductsFilter) ([]*domain.Product, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies a partial update: nil fields keep their stored value.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input ports.UpdateProductInput) (*domain.Product, error) {
	id, err := normalizeProductID(id)
	if err != nil {
		return nil, err
	}
	if err := validateProduct(input.Name, input.Price); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	product.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.Info().Str("product_id", product.ID).Msg("product updated")
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	id, err := normalizeProductID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// normalizeProductID accepts any UUID spelling and returns its canonical form.
func normalizeProductID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", domain.ErrInvalidProductID
	}
	return parsed.String(), nil
}

// validateProduct checks the fields that are present. A nil field is skipped.
func validateProduct(name *string, price *float64) error {
	var violations []domain.Violation
	if name != nil && strings.TrimSpace(*name) == "" {
		violations = append(violations, domain.Violation{Field: "name", Message: "The name is required."})
	}
	if price != nil && *price <= 0 {
		violations = append(violations, domain.Violation{Field: "price", Message: "The price must be positive."})
	}
	if len(violations) > 0 {
		return domain.NewValidationError(violations...)
	}
	return nil
}
