package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, userEmail string) (domain.Cart, error)
	AddItem(ctx context.Context, userEmail, productID string) error
	// AddProduct upserts the product and adds one unit of it in the same atomic unit.
	AddProduct(ctx context.Context, userEmail string, product domain.Product) error
	SetQuantity(ctx context.Context, userEmail, productID string, quantity int) error
	AdjustQuantity(ctx context.Context, userEmail, productID string, delta int) error
	DeleteItem(ctx context.Context, userEmail, productID string) (bool, error)
	ClearCart(ctx context.Context, userEmail string) error
	// ReplaceCart rewrites the whole cart, upserting every referenced product.
	ReplaceCart(ctx context.Context, userEmail string, lines []domain.CartLine) error
}
