package port

import (
	"context"

	"github.com/microshop/orders-service/internal/core/domain"
)

//go:generate mockgen -source=catalog.go -destination=mock/catalog.go -package=mock
type CatalogClient interface {
	// ValidateProducts returns the authoritative subset of products for the
	// given IDs. Always a live call, never cached.
	ValidateProducts(ctx context.Context, ids []string) ([]domain.Product, error)
	// ProductNames resolves display names for read-path enrichment.
	ProductNames(ctx context.Context, ids []string) (map[string]string, error)
}
