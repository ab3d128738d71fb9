package embedded

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListProducts returns products in insertion order. Filtering happens in
// memory, the whole catalog is already there.
func (s *Store) ListProducts(ctx context.Context, filter string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []productRow
	if err := s.db.WithContext(ctx).Order("rowid").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("db.Find products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		product := mapProductToDomain(row)
		if product.Matches(filter) {
			products = append(products, product)
		}
	}

	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, domain.NewValidationError("productId", "is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var row productRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("db.First product: %w", err)
	}

	return mapProductToDomain(row), nil
}

func (s *Store) UpsertProduct(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return domain.NewValidationError("productId", "is required")
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		return upsertProduct(tx, product)
	})
}

func (s *Store) SeedProducts(ctx context.Context, products []domain.Product) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		for _, product := range products {
			if product.ID == "" {
				return domain.NewValidationError("productId", "is required")
			}
			if err := upsertProduct(tx, product); err != nil {
				return err
			}
		}
		return nil
	})
}

// upsertProduct updates in place, the row keeps its position in the catalog.
func upsertProduct(tx *gorm.DB, product domain.Product) error {
	row := mapProductToRow(product)

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("tx.Create product[%s]: %w", product.ID, err)
	}

	return nil
}

func requireProduct(tx *gorm.DB, productID string) error {
	var count int64
	if err := tx.Model(&productRow{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("tx.Count product: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("productID[%s]: %w", productID, domain.ErrProductNotFound)
	}
	return nil
}
