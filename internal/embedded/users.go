package embedded

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/nikolayk812/storefront/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	if user.Email == "" {
		return domain.NewValidationError("email", "is required")
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		err := tx.Create(&userRow{
			Email:    user.Email,
			Name:     user.Name,
			Password: user.Password,
		}).Error
		if err != nil {
			if isConstraint(err, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique) {
				return domain.ErrEmailTaken
			}
			return fmt.Errorf("tx.Create user: %w", err)
		}
		return nil
	})
}

func (s *Store) GetUser(ctx context.Context, email string) (domain.User, error) {
	if email == "" {
		return domain.User{}, domain.NewValidationError("email", "is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return getUser(s.db.WithContext(ctx), email)
}

// SetSession points key at an existing user, replacing any previous one.
func (s *Store) SetSession(ctx context.Context, key, userEmail string) error {
	if key == "" {
		return domain.NewValidationError("key", "is required")
	}
	if userEmail == "" {
		return domain.NewValidationError("email", "is required")
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		if _, err := getUser(tx, userEmail); err != nil {
			return err
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_email"}),
		}).Create(&sessionRow{Key: key, UserEmail: userEmail}).Error
		if err != nil {
			return fmt.Errorf("tx.Create session: %w", err)
		}
		return nil
	})
}

// GetSession returns the user behind key, domain.ErrUserNotFound when there is none.
func (s *Store) GetSession(ctx context.Context, key string) (domain.User, error) {
	if key == "" {
		return domain.User{}, domain.NewValidationError("key", "is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var row userRow
	err := s.db.WithContext(ctx).
		Table("session AS s").
		Select("u.email, u.name, u.password").
		Joins("JOIN users u ON u.email = s.user_email").
		Where("s.key = ?", key).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("db.Take session: %w", err)
	}

	return mapUserToDomain(row), nil
}

func (s *Store) DeleteSession(ctx context.Context, key string) error {
	if key == "" {
		return domain.NewValidationError("key", "is required")
	}

	return s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("key = ?", key).Delete(&sessionRow{}).Error; err != nil {
			return fmt.Errorf("tx.Delete session: %w", err)
		}
		return nil
	})
}

func getUser(tx *gorm.DB, email string) (domain.User, error) {
	var row userRow
	if err := tx.Where("email = ?", email).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("tx.Take user: %w", err)
	}

	return mapUserToDomain(row), nil
}

func mapUserToDomain(row userRow) domain.User {
	return domain.User{
		Email:    row.Email,
		Name:     row.Name,
		Password: row.Password,
	}
}
