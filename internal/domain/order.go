package domain

import "time"

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	default:
		return false
	}
}

type Order struct {
	ID        string
	UserEmail string
	Date      time.Time
	Total     int64
	Status    OrderStatus
	Items     []OrderItem
}

// OrderItem is a product as it was at order time.
type OrderItem struct {
	Product  Product
	Quantity int
}

func (i OrderItem) Subtotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

func ItemsTotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
