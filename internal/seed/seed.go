// Package seed provides catalog fixtures: the products a fresh embedded store
// starts with and a random catalog generator for demos and load tests.
package seed

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/domain"
)

func Initial() []domain.Product {
	return []domain.Product{
		{
			ID:          "1",
			Name:        "Premium Wireless Headphones",
			Price:       259000,
			Description: "High-fidelity wireless headphones with active noise cancelling.",
			Category:    "Electronics",
			ImageURL:    "https://picsum.photos/400/400?random=101",
		},
		{
			ID:          "2",
			Name:        "Mechanical Keyboard",
			Price:       129000,
			Description: "Mechanical keyboard with smooth linear red switches.",
			Category:    "Computers",
			ImageURL:    "https://picsum.photos/400/400?random=102",
		},
		{
			ID:          "3",
			Name:        "Smart Watch",
			Price:       350000,
			Description: "Latest smart watch with health tracking and notifications.",
			Category:    "Wearables",
			ImageURL:    "https://picsum.photos/400/400?random=103",
		},
		{
			ID:          "4",
			Name:        "Ergonomic Chair",
			Price:       450000,
			Description: "Ergonomic chair that stays comfortable through long workdays.",
			Category:    "Furniture",
			ImageURL:    "https://picsum.photos/400/400?random=104",
		},
	}
}

// Generate returns n random products priced 1,000 to 50,000 in steps of
// 1,000. The same seed yields the same catalog.
func Generate(n int, seed uint64) []domain.Product {
	faker := gofakeit.New(seed)

	products := make([]domain.Product, 0, n)
	for i := range n {
		products = append(products, domain.Product{
			ID:          fmt.Sprintf("g-%03d", i+1),
			Name:        faker.ProductName(),
			Price:       int64(faker.Number(1, 50)) * 1000,
			Description: faker.ProductDescription(),
			Category:    faker.ProductCategory(),
			ImageURL:    fmt.Sprintf("https://picsum.photos/400/400?random=%d", i+500),
		})
	}

	return products
}
