package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, userEmail string) (domain.Cart, error) {
	if userEmail == "" {
		return domain.Cart{}, domain.NewValidationError("email", "is required")
	}

	rows, err := r.q.GetCart(ctx, userEmail)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	return domain.Cart{
		UserEmail: userEmail,
		Lines:     mapGetCartRowsToDomain(rows),
	}, nil
}

func (r *cartRepository) AddItem(ctx context.Context, userEmail, productID string) error {
	if err := validateLineKey(userEmail, productID); err != nil {
		return err
	}

	_, err := withUserTx(ctx, r.pool, r.q, userEmail, func(q *db.Queries) (struct{}, error) {
		return struct{}{}, addItem(ctx, q, userEmail, productID)
	})
	return err
}

func (r *cartRepository) AddProduct(ctx context.Context, userEmail string, product domain.Product) error {
	if err := validateLineKey(userEmail, product.ID); err != nil {
		return err
	}

	_, err := withUserTx(ctx, r.pool, r.q, userEmail, func(q *db.Queries) (struct{}, error) {
		if err := q.UpsertProduct(ctx, mapProductToUpsertParams(product)); err != nil {
			return struct{}{}, fmt.Errorf("q.UpsertProduct: %w", err)
		}
		return struct{}{}, addItem(ctx, q, userEmail, product.ID)
	})
	return err
}

func (r *cartRepository) SetQuantity(ctx context.Context, userEmail, productID string, quantity int) error {
	if err := validateLineKey(userEmail, productID); err != nil {
		return err
	}
	if err := domain.ValidateQuantity("quantity", quantity); err != nil {
		return err
	}

	_, err := withUserTx(ctx, r.pool, r.q, userEmail, func(q *db.Queries) (struct{}, error) {
		if quantity <= 0 {
			if _, err := q.DeleteItem(ctx, db.DeleteItemParams{UserEmail: userEmail, ProductID: productID}); err != nil {
				return struct{}{}, fmt.Errorf("q.DeleteItem: %w", err)
			}
			return struct{}{}, nil
		}

		_, err := q.SetQuantity(ctx, db.SetQuantityParams{
			UserEmail: userEmail,
			ProductID: productID,
			Quantity:  int32(quantity),
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.SetQuantity: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (r *cartRepository) AdjustQuantity(ctx context.Context, userEmail, productID string, delta int) error {
	if err := validateLineKey(userEmail, productID); err != nil {
		return err
	}
	if err := domain.ValidateQuantity("delta", delta); err != nil {
		return err
	}

	_, err := withUserTx(ctx, r.pool, r.q, userEmail, func(q *db.Queries) (struct{}, error) {
		deleted, err := q.DeleteItemBelowOne(ctx, db.DeleteItemBelowOneParams{
			UserEmail: userEmail,
			ProductID: productID,
			Delta:     int32(delta),
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.DeleteItemBelowOne: %w", err)
		}
		if deleted > 0 {
			return struct{}{}, nil
		}

		_, err = q.AdjustQuantity(ctx, db.AdjustQuantityParams{
			Delta:     int32(delta),
			UserEmail: userEmail,
			ProductID: productID,
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.AdjustQuantity: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (r *cartRepository) DeleteItem(ctx context.Context, userEmail, productID string) (bool, error) {
	if err := validateLineKey(userEmail, productID); err != nil {
		return false, err
	}

	rowsAffected, err := withUserTx(ctx, r.pool, r.q, userEmail, func(q *db.Queries) (int64, error) {
		n, err := q.DeleteItem(ctx, db.DeleteItemParams{
			UserEmail: userEmail,
			ProductID: productID,
		})
		if err != nil {
			return 0, fmt.Errorf("q.DeleteItem: %w", err)
		}
		return n, nil
	})
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) ClearCart(ctx context.Context, userEmail string) error {
	if userEmail == "" {
		return domain.NewValidationError("email", "is required")
	}

	_, err := withUserTx(ctx, r.pool, r.q, userEmail, func(q *db.Queries) (int64, error) {
		n, err := q.ClearCart(ctx, userEmail)
		if err != nil {
			return 0, fmt.Errorf("q.ClearCart: %w", err)
		}
		return n, nil
	})
	return err
}

func (r *cartRepository) ReplaceCart(ctx context.Context, userEmail string, lines []domain.CartLine) error {
	if userEmail == "" {
		return domain.NewValidationError("email", "is required")
	}

	_, err := withUserTx(ctx, r.pool, r.q, userEmail, func(q *db.Queries) (struct{}, error) {
		if _, err := q.ClearCart(ctx, userEmail); err != nil {
			return struct{}{}, fmt.Errorf("q.ClearCart: %w", err)
		}

		for _, line := range lines {
			if line.Product.ID == "" {
				return struct{}{}, domain.NewValidationError("productId", "is required")
			}
			if err := domain.ValidateQuantity("quantity", line.Quantity); err != nil {
				return struct{}{}, err
			}
			if line.Quantity <= 0 {
				continue
			}

			if err := q.UpsertProduct(ctx, mapProductToUpsertParams(line.Product)); err != nil {
				return struct{}{}, fmt.Errorf("q.UpsertProduct[%s]: %w", line.Product.ID, err)
			}

			err := q.InsertItem(ctx, db.InsertItemParams{
				UserEmail: userEmail,
				ProductID: line.Product.ID,
				Quantity:  int32(line.Quantity),
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("q.InsertItem[%s]: %w", line.Product.ID, err)
			}
		}

		return struct{}{}, nil
	})
	return err
}

func addItem(ctx context.Context, q *db.Queries, userEmail, productID string) error {
	err := q.AddItem(ctx, db.AddItemParams{
		UserEmail: userEmail,
		ProductID: productID,
	})
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("productID[%s]: %w", productID, domain.ErrProductNotFound)
		}
		return fmt.Errorf("q.AddItem: %w", err)
	}

	return nil
}

func validateLineKey(userEmail, productID string) error {
	if userEmail == "" {
		return domain.NewValidationError("email", "is required")
	}
	if productID == "" {
		return domain.NewValidationError("productId", "is required")
	}
	return nil
}

func mapGetCartRowToDomain(row db.GetCartRow) domain.CartLine {
	return domain.CartLine{
		Product: domain.Product{
			ID:          row.ID,
			Name:        row.Name,
			Price:       row.Price,
			Description: row.Description,
			Category:    row.Category,
			ImageURL:    row.ImageUrl,
		},
		Quantity: int(row.Quantity),
	}
}

func mapGetCartRowsToDomain(rows []db.GetCartRow) []domain.CartLine {
	var lines []domain.CartLine

	for _, row := range rows {
		lines = append(lines, mapGetCartRowToDomain(row))
	}

	return lines
}
