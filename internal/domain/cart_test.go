package domain_test

import (
	"errors"
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTotalAndSnapshot(t *testing.T) {
	cart := domain.Cart{
		UserEmail: "a@example.com",
		Lines: []domain.CartLine{
			{Product: domain.Product{ID: "1", Name: "Headphones", Price: 1000}, Quantity: 2},
			{Product: domain.Product{ID: "2", Name: "Keyboard", Price: 500}, Quantity: 1},
		},
	}

	assert.False(t, cart.IsEmpty())
	assert.Equal(t, int64(2500), cart.Total())

	items := cart.Snapshot()
	require.Len(t, items, 2)
	assert.Equal(t, cart.Total(), domain.ItemsTotal(items))

	// the snapshot is a copy
	cart.Lines[0].Product.Price = 9999
	assert.Equal(t, int64(1000), items[0].Product.Price)
}

func TestProductMatches(t *testing.T) {
	p := domain.Product{Name: "Mechanical Keyboard", Description: "Red switches", Category: "Computers"}

	tests := []struct {
		filter string
		want   bool
	}{
		{filter: "", want: true},
		{filter: "keyboard", want: true},
		{filter: "RED", want: true},
		{filter: "comp", want: true},
		{filter: "watch", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Matches(tt.filter))
		})
	}
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, domain.OrderStatusProcessing.Valid())
	assert.True(t, domain.OrderStatusShipped.Valid())
	assert.True(t, domain.OrderStatusDelivered.Valid())
	assert.False(t, domain.OrderStatus("cancelled").Valid())
}

func TestValidationError(t *testing.T) {
	err := domain.NewValidationError("email", "is required")

	assert.EqualError(t, err, "email: is required")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}
