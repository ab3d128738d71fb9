package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderRepository interface {
	ListOrders(ctx context.Context, userEmail string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, userEmail string, items []domain.OrderItem, total int64) (domain.Order, error)
}

// OrderCoordinator turns a cart into an order. Implementations create the
// order and clear the cart in one transaction, or do neither.
type OrderCoordinator interface {
	PlaceOrder(ctx context.Context, userEmail string) (domain.Order, error)
}
