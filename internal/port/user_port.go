package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, email string) (domain.User, error)
}

type SessionRepository interface {
	SetSession(ctx context.Context, key, userEmail string) error
	GetSession(ctx context.Context, key string) (domain.User, error)
	DeleteSession(ctx context.Context, key string) error
}
