package embedded

import (
	"context"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/nikolayk812/storefront/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const cartQuery = `
SELECT p.id, p.name, p.price, p.description, p.category, p.image_url, c.quantity
FROM cart c
JOIN products p ON p.id = c.product_id
WHERE c.user_email = ?
ORDER BY c.rowid`

func (s *Store) GetCart(ctx context.Context, userEmail string) (domain.Cart, error) {
	if userEmail == "" {
		return domain.Cart{}, domain.NewValidationError("email", "is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return getCart(s.db.WithContext(ctx), userEmail)
}

func (s *Store) AddItem(ctx context.Context, userEmail, productID string) error {
	if err := validateLineKey(userEmail, productID); err != nil {
		return err
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		return addItem(tx, userEmail, productID)
	})
}

func (s *Store) AddProduct(ctx context.Context, userEmail string, product domain.Product) error {
	if err := validateLineKey(userEmail, product.ID); err != nil {
		return err
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		if err := upsertProduct(tx, product); err != nil {
			return err
		}
		return addItem(tx, userEmail, product.ID)
	})
}

func (s *Store) SetQuantity(ctx context.Context, userEmail, productID string, quantity int) error {
	if err := validateLineKey(userEmail, productID); err != nil {
		return err
	}
	if err := domain.ValidateQuantity("quantity", quantity); err != nil {
		return err
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		if quantity <= 0 {
			_, err := deleteItem(tx, userEmail, productID)
			return err
		}

		err := tx.Model(&cartRow{}).
			Where("user_email = ? AND product_id = ?", userEmail, productID).
			Update("quantity", quantity).Error
		if err != nil {
			return fmt.Errorf("tx.Update quantity: %w", err)
		}
		return nil
	})
}

func (s *Store) AdjustQuantity(ctx context.Context, userEmail, productID string, delta int) error {
	if err := validateLineKey(userEmail, productID); err != nil {
		return err
	}
	if err := domain.ValidateQuantity("delta", delta); err != nil {
		return err
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		var rows []cartRow
		err := tx.Where("user_email = ? AND product_id = ?", userEmail, productID).
			Limit(1).Find(&rows).Error
		if err != nil {
			return fmt.Errorf("tx.Find cart line: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		quantity := rows[0].Quantity + delta
		if quantity <= 0 {
			_, err := deleteItem(tx, userEmail, productID)
			return err
		}

		err = tx.Model(&cartRow{}).
			Where("user_email = ? AND product_id = ?", userEmail, productID).
			Update("quantity", quantity).Error
		if err != nil {
			return fmt.Errorf("tx.Update quantity: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteItem(ctx context.Context, userEmail, productID string) (bool, error) {
	if err := validateLineKey(userEmail, productID); err != nil {
		return false, err
	}

	var deleted bool
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = deleteItem(tx, userEmail, productID)
		return err
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

func (s *Store) ClearCart(ctx context.Context, userEmail string) error {
	if userEmail == "" {
		return domain.NewValidationError("email", "is required")
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		return clearCart(tx, userEmail)
	})
}

func (s *Store) ReplaceCart(ctx context.Context, userEmail string, lines []domain.CartLine) error {
	if userEmail == "" {
		return domain.NewValidationError("email", "is required")
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		if err := clearCart(tx, userEmail); err != nil {
			return err
		}

		for _, line := range lines {
			if line.Product.ID == "" {
				return domain.NewValidationError("productId", "is required")
			}
			if err := domain.ValidateQuantity("quantity", line.Quantity); err != nil {
				return err
			}
			if line.Quantity <= 0 {
				continue
			}

			if err := upsertProduct(tx, line.Product); err != nil {
				return err
			}

			err := tx.Create(&cartRow{
				UserEmail: userEmail,
				ProductID: line.Product.ID,
				Quantity:  line.Quantity,
			}).Error
			if err != nil {
				return fmt.Errorf("tx.Create cart line[%s]: %w", line.Product.ID, err)
			}
		}

		return nil
	})
}

func getCart(tx *gorm.DB, userEmail string) (domain.Cart, error) {
	var rows []cartLineRow
	if err := tx.Raw(cartQuery, userEmail).Scan(&rows).Error; err != nil {
		return domain.Cart{}, fmt.Errorf("tx.Raw cart: %w", err)
	}

	return domain.Cart{
		UserEmail: userEmail,
		Lines:     mapCartLinesToDomain(rows),
	}, nil
}

func addItem(tx *gorm.DB, userEmail, productID string) error {
	if err := requireProduct(tx, productID); err != nil {
		return err
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_email"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("quantity + 1")}),
	}).Create(&cartRow{
		UserEmail: userEmail,
		ProductID: productID,
		Quantity:  1,
	}).Error
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
			return fmt.Errorf("productID[%s]: %w", productID, domain.ErrProductNotFound)
		}
		return fmt.Errorf("tx.Create cart line: %w", err)
	}

	return nil
}

func deleteItem(tx *gorm.DB, userEmail, productID string) (bool, error) {
	res := tx.Where("user_email = ? AND product_id = ?", userEmail, productID).Delete(&cartRow{})
	if res.Error != nil {
		return false, fmt.Errorf("tx.Delete cart line: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func clearCart(tx *gorm.DB, userEmail string) error {
	if err := tx.Where("user_email = ?", userEmail).Delete(&cartRow{}).Error; err != nil {
		return fmt.Errorf("tx.Delete cart: %w", err)
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
