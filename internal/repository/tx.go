package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
)

func withTx[T any](ctx context.Context, pool *pgxpool.Pool, q *db.Queries, fn func(q *db.Queries) (T, error)) (_ T, txErr error) {
	var zero T

	// If we're already in a transaction (pool is nil), just use the existing queries
	if pool == nil {
		return fn(q)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("pool.Begin: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	qtx := q.WithTx(tx)

	result, err := fn(qtx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("tx.Commit: %w", err)
	}

	return result, nil
}

// withUserTx is withTx that first takes the per-user transaction lock, so
// mutations of one user's cart apply one at a time and in arrival order.
func withUserTx[T any](ctx context.Context, pool *pgxpool.Pool, q *db.Queries, userEmail string, fn func(q *db.Queries) (T, error)) (T, error) {
	return withTx(ctx, pool, q, func(q *db.Queries) (T, error) {
		if err := q.LockUserCart(ctx, userEmail); err != nil {
			var zero T
			return zero, fmt.Errorf("q.LockUserCart: %w", err)
		}
		return fn(q)
	})
}
