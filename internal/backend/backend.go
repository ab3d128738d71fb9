// Package backend opens the store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nikolayk812/storefront/internal/blob"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/embedded"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/seed"
	"github.com/redis/go-redis/v9"
)

// Open returns the configured store with its schema in place. The caller
// owns it and must Close it.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (port.Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		store, err := repository.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("repository.Open: %w", err)
		}
		log.Info("postgres store opened")
		return store, nil

	case config.BackendEmbedded:
		blobs, err := OpenBlobs(ctx, cfg.Embedded.Blob)
		if err != nil {
			return nil, err
		}

		opts := []embedded.Option{
			embedded.WithKey(cfg.Embedded.Key),
			embedded.WithLogger(log),
		}
		if cfg.Embedded.SeedInitial {
			opts = append(opts, embedded.WithInitialProducts(seed.Initial()))
		}

		store, err := embedded.Open(ctx, blobs, opts...)
		if err != nil {
			if closer, ok := blobs.(io.Closer); ok {
				_ = closer.Close()
			}
			return nil, fmt.Errorf("embedded.Open: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("store backend[%s] is not supported", cfg.Backend)
	}
}

func OpenBlobs(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Backend {
	case config.BlobFile:
		store, err := blob.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("blob.NewFileStore: %w", err)
		}
		return store, nil

	case config.BlobRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("client.Ping: %w", err)
		}
		return blob.NewRedisStore(client, cfg.RedisPrefix), nil

	case config.BlobS3:
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:   cfg.S3.Bucket,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
			Key:      cfg.S3.Key,
			Secret:   cfg.S3.Secret,
			Prefix:   cfg.S3.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("blob.NewS3Store: %w", err)
		}
		return store, nil

	case config.BlobMemory:
		return blob.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("blob backend[%s] is not supported", cfg.Backend)
	}
}
