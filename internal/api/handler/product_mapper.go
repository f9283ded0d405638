package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
)

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductResponses(products []*domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

// parseListFilter reads the name, minPrice and maxPrice query parameters.
func parseListFilter(c echo.Context) (ports.ListProductsFilter, error) {
	f := ports.ListProductsFilter{Name: strings.TrimSpace(c.QueryParam("name"))}

	var violations []domain.Violation
	for _, q := range []struct {
		name string
		dst  **float64
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		raw := strings.TrimSpace(c.QueryParam(q.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			violations = append(violations, domain.Violation{Field: q.name, Message: "The " + q.name + " must be a number."})
			continue
		}
		*q.dst = &v
	}
	if len(violations) > 0 {
		return f, domain.NewValidationError(violations...)
	}
	return f, nil
}
