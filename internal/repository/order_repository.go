package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/snapshot"
)

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *orderRepository) ListOrders(ctx context.Context, userEmail string) ([]domain.Order, error) {
	if userEmail == "" {
		return nil, domain.NewValidationError("email", "is required")
	}

	rows, err := r.q.ListOrders(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrders: %w", err)
	}

	orders, err := mapOrdersToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapOrdersToDomain: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, userEmail string, items []domain.OrderItem, total int64) (domain.Order, error) {
	if userEmail == "" {
		return domain.Order{}, domain.NewValidationError("email", "is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Order{}, fmt.Errorf("uuid.NewV7: %w", err)
	}

	raw, err := snapshot.Encode(items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("snapshot.Encode: %w", err)
	}

	order := domain.Order{
		ID:        id.String(),
		UserEmail: userEmail,
		// postgres keeps microseconds
		Date:   time.Now().UTC().Truncate(time.Microsecond),
		Total:  total,
		Status: domain.OrderStatusProcessing,
		Items:  items,
	}

	err = r.q.CreateOrder(ctx, db.CreateOrderParams{
		ID:        order.ID,
		UserEmail: order.UserEmail,
		Date:      order.Date,
		Total:     order.Total,
		Status:    string(order.Status),
		Items:     raw,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.CreateOrder: %w", err)
	}

	return order, nil
}

func mapOrderToDomain(row db.Order) (domain.Order, error) {
	items, err := snapshot.Decode(row.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order[%s] snapshot.Decode: %w", row.ID, err)
	}

	status := domain.OrderStatus(row.Status)
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("order[%s] status[%s] is not valid", row.ID, row.Status)
	}

	return domain.Order{
		ID:        row.ID,
		UserEmail: row.UserEmail,
		Date:      row.Date.UTC(),
		Total:     row.Total,
		Status:    status,
		Items:     items,
	}, nil
}

func mapOrdersToDomain(rows []db.Order) ([]domain.Order, error) {
	var orders []domain.Order

	for _, row := range rows {
		order, err := mapOrderToDomain(row)
		if err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	return orders, nil
}
