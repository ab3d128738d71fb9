package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type userRepository struct {
	q *db.Queries
}

func NewUser(pool *pgxpool.Pool) port.UserRepository {
	return &userRepository{q: db.New(pool)}
}

func (r *userRepository) CreateUser(ctx context.Context, user domain.User) error {
	if user.Email == "" {
		return domain.NewValidationError("email", "is required")
	}

	err := r.q.CreateUser(ctx, db.CreateUserParams{
		Email:    user.Email,
		Name:     user.Name,
		Password: user.Password,
	})
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("q.CreateUser: %w", err)
	}

	return nil
}

func (r *userRepository) GetUser(ctx context.Context, email string) (domain.User, error) {
	if email == "" {
		return domain.User{}, domain.NewValidationError("email", "is required")
	}

	row, err := r.q.GetUser(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("q.GetUser: %w", err)
	}

	return domain.User{
		Email:    row.Email,
		Name:     row.Name,
		Password: row.Password,
	}, nil
}
