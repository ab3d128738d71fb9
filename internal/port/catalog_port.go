package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type CatalogRepository interface {
	ListProducts(ctx context.Context, filter string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	UpsertProduct(ctx context.Context, product domain.Product) error
	SeedProducts(ctx context.Context, products []domain.Product) error
}
