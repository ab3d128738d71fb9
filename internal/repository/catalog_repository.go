package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type catalogRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) port.CatalogRepository {
	return &catalogRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCatalogWithTx(tx pgx.Tx) port.CatalogRepository {
	return &catalogRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *catalogRepository) ListProducts(ctx context.Context, filter string) ([]domain.Product, error) {
	if filter == "" {
		rows, err := r.q.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("q.ListProducts: %w", err)
		}

		products := make([]domain.Product, 0, len(rows))
		for _, row := range rows {
			products = append(products, mapProductToDomain(db.GetProductRow(row)))
		}
		return products, nil
	}

	rows, err := r.q.SearchProducts(ctx, likePattern(filter))
	if err != nil {
		return nil, fmt.Errorf("q.SearchProducts: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, mapProductToDomain(db.GetProductRow(row)))
	}
	return products, nil
}

func (r *catalogRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, domain.NewValidationError("productId", "is required")
	}

	row, err := r.q.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	return mapProductToDomain(row), nil
}

func (r *catalogRepository) UpsertProduct(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return domain.NewValidationError("productId", "is required")
	}

	if err := r.q.UpsertProduct(ctx, mapProductToUpsertParams(product)); err != nil {
		return fmt.Errorf("q.UpsertProduct: %w", err)
	}

	return nil
}

func (r *catalogRepository) SeedProducts(ctx context.Context, products []domain.Product) error {
	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		for _, product := range products {
			if product.ID == "" {
				return struct{}{}, domain.NewValidationError("productId", "is required")
			}
			if err := q.UpsertProduct(ctx, mapProductToUpsertParams(product)); err != nil {
				return struct{}{}, fmt.Errorf("q.UpsertProduct[%s]: %w", product.ID, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

// likePattern turns free text into an ILIKE substring pattern, escaping the
// wildcard characters so they match literally.
func likePattern(filter string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(filter)
	return "%" + escaped + "%"
}

func mapProductToDomain(row db.GetProductRow) domain.Product {
	return domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		Price:       row.Price,
		Description: row.Description,
		Category:    row.Category,
		ImageURL:    row.ImageUrl,
	}
}

func mapProductToUpsertParams(p domain.Product) db.UpsertProductParams {
	return db.UpsertProductParams{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		ImageUrl:    p.ImageURL,
	}
}
