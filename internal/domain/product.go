package domain

import (
	"fmt"
	"strings"
)

// MaxPrice bounds a product price in minor units, MaxPrice * MaxQuantity
// still fits an int64 subtotal.
const MaxPrice = 1_000_000_000_000

type Product struct {
	ID          string
	Name        string
	Price       int64
	Description string
	Category    string
	ImageURL    string
}

// Matches reports whether filter is a case-insensitive substring of the
// product name, description or category. An empty filter matches everything.
func (p Product) Matches(filter string) bool {
	if filter == "" {
		return true
	}

	needle := strings.ToLower(filter)
	for _, field := range []string{p.Name, p.Description, p.Category} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	return false
}

func ValidatePrice(field string, price int64) error {
	if price < 0 || price > MaxPrice {
		return NewValidationError(field, fmt.Sprintf("must be between 0 and %d", int64(MaxPrice)))
	}
	return nil
}
