// Package repository is the PostgreSQL backend of the storefront store. It
// talks to a remote server through a pgx connection pool, every
// multi-statement mutation runs in its own transaction.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/nikolayk812/storefront/internal/port"
)

type Store struct {
	port.CatalogRepository
	port.CartRepository
	port.OrderRepository
	port.UserRepository
	port.OrderCoordinator

	pool *pgxpool.Pool
}

var _ port.Store = (*Store)(nil)

// Open connects to dsn and ensures the schema exists. The returned store owns
// the pool, Close releases it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	s := New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		CatalogRepository: NewCatalog(pool),
		CartRepository:    NewCart(pool),
		OrderRepository:   NewOrder(pool),
		UserRepository:    NewUser(pool),
		OrderCoordinator:  NewOrderCoordinator(pool),
		pool:              pool,
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	scripts, err := migrations.Up()
	if err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}

	for i, script := range scripts {
		if _, err := s.pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("pool.Exec migration[%d]: %w", i, err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
