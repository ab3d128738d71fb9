package embedded

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/snapshot"
	"gorm.io/gorm"
)

func (s *Store) ListOrders(ctx context.Context, userEmail string) ([]domain.Order, error) {
	if userEmail == "" {
		return nil, domain.NewValidationError("email", "is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []orderRow
	err := s.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Order("date DESC, rowid DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("db.Find orders: %w", err)
	}

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

func (s *Store) CreateOrder(ctx context.Context, userEmail string, items []domain.OrderItem, total int64) (domain.Order, error) {
	if userEmail == "" {
		return domain.Order{}, domain.NewValidationError("email", "is required")
	}

	var order domain.Order
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = createOrder(tx, userEmail, items, total)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// PlaceOrder freezes the cart into an order and empties it. The write lock
// is held from the cart read to the persisted commit, a concurrent placement
// for the same user reads the emptied cart.
func (s *Store) PlaceOrder(ctx context.Context, userEmail string) (domain.Order, error) {
	if userEmail == "" {
		return domain.Order{}, domain.NewValidationError("email", "is required")
	}

	var order domain.Order
	err := s.write(ctx, func(tx *gorm.DB) error {
		cart, err := getCart(tx, userEmail)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return domain.ErrEmptyCart
		}

		order, err = createOrder(tx, userEmail, cart.Snapshot(), cart.Total())
		if err != nil {
			return err
		}

		return clearCart(tx, userEmail)
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrPlacementFailed, err)
	}

	return order, nil
}

func createOrder(tx *gorm.DB, userEmail string, items []domain.OrderItem, total int64) (domain.Order, error) {
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
		Date:      time.Now().UTC().Truncate(time.Microsecond),
		Total:     total,
		Status:    domain.OrderStatusProcessing,
		Items:     items,
	}

	err = tx.Create(&orderRow{
		ID:        order.ID,
		UserEmail: order.UserEmail,
		Date:      order.Date,
		Total:     order.Total,
		Status:    string(order.Status),
		ItemsJSON: string(raw),
	}).Error
	if err != nil {
		return domain.Order{}, fmt.Errorf("tx.Create order: %w", err)
	}

	return order, nil
}

func mapOrderToDomain(row orderRow) (domain.Order, error) {
	items, err := snapshot.Decode([]byte(row.ItemsJSON))
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
