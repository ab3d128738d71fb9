package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type orderCoordinator struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrderCoordinator(pool *pgxpool.Pool) port.OrderCoordinator {
	return &orderCoordinator{
		q:    db.New(pool),
		pool: pool,
	}
}

// PlaceOrder freezes the user's cart into a new order and empties the cart.
// The advisory lock serializes placements of the same user: a second caller
// waits, then reads an empty cart and gets domain.ErrEmptyCart. Cart rows are
// locked for update and their products for share, so a concurrent catalog
// upsert of a product being frozen waits for the commit.
func (c *orderCoordinator) PlaceOrder(ctx context.Context, userEmail string) (domain.Order, error) {
	if userEmail == "" {
		return domain.Order{}, domain.NewValidationError("email", "is required")
	}

	order, err := withUserTx(ctx, c.pool, c.q, userEmail, func(q *db.Queries) (domain.Order, error) {
		rows, err := q.GetCartForUpdate(ctx, userEmail)
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.GetCartForUpdate: %w", err)
		}

		cart := domain.Cart{
			UserEmail: userEmail,
			Lines:     mapGetCartRowsToDomain(mapForUpdateRows(rows)),
		}
		if cart.IsEmpty() {
			return domain.Order{}, domain.ErrEmptyCart
		}

		orders := &orderRepository{q: q}
		order, err := orders.CreateOrder(ctx, userEmail, cart.Snapshot(), cart.Total())
		if err != nil {
			return domain.Order{}, fmt.Errorf("orders.CreateOrder: %w", err)
		}

		if _, err := q.ClearCart(ctx, userEmail); err != nil {
			return domain.Order{}, fmt.Errorf("q.ClearCart: %w", err)
		}

		return order, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrPlacementFailed, err)
	}

	return order, nil
}

func mapForUpdateRows(rows []db.GetCartForUpdateRow) []db.GetCartRow {
	result := make([]db.GetCartRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, db.GetCartRow(row))
	}
	return result
}
