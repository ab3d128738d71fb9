package domain

import "fmt"

// MaxQuantity bounds a cart line and a single quantity change.
const MaxQuantity = 100_000

type Cart struct {
	UserEmail string
	Lines     []CartLine
}

// CartLine is a cart row joined with the product it references.
type CartLine struct {
	Product  Product
	Quantity int
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Total() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.Subtotal()
	}
	return total
}

func (l CartLine) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Snapshot freezes the cart lines into order items. The result shares
// nothing with the cart, later catalog edits cannot reach it.
func (c Cart) Snapshot() []OrderItem {
	items := make([]OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, OrderItem{
			Product:  line.Product,
			Quantity: line.Quantity,
		})
	}
	return items
}

// ValidateQuantity rejects quantities and deltas outside ±MaxQuantity. Values
// below one are valid for writes that remove the line.
func ValidateQuantity(field string, quantity int) error {
	if quantity > MaxQuantity || quantity < -MaxQuantity {
		return NewValidationError(field, fmt.Sprintf("must be between %d and %d", -MaxQuantity, MaxQuantity))
	}
	return nil
}
