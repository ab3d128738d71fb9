package repository_test

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_storefront.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

var productSeq atomic.Int64

func randomProduct() domain.Product {
	return domain.Product{
		ID:          "p-" + strconv.FormatInt(productSeq.Add(1), 10),
		Name:        gofakeit.ProductName(),
		Price:       int64(gofakeit.Number(1, 50)) * 1000,
		Description: gofakeit.ProductDescription(),
		Category:    gofakeit.ProductCategory(),
		ImageURL:    gofakeit.URL(),
	}
}

func randomEmail() string {
	return gofakeit.Email()
}
