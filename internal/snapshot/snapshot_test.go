package snapshot_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	items := []domain.OrderItem{
		{
			Product: domain.Product{
				ID:          "1",
				Name:        "Premium wireless headphones",
				Price:       259000,
				Description: "Noise cancelling",
				Category:    "Electronics",
				ImageURL:    "https://picsum.photos/400/400?random=101",
			},
			Quantity: 2,
		},
		{
			Product:  domain.Product{ID: "2", Name: "Keyboard", Price: 129000},
			Quantity: 1,
		},
	}

	raw, err := snapshot.Encode(items)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version":1`)

	decoded, err := snapshot.Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(items, decoded))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLen   int
		wantPrice int64
		wantError string
	}{
		{
			name:      "legacy bare array: ok",
			raw:       `[{"id":"1","name":"Watch","price":350000,"description":"","category":"Wearables","imageUrl":"","quantity":3}]`,
			wantLen:   1,
			wantPrice: 350000,
		},
		{
			name:    "empty item list: ok",
			raw:     `{"version":1,"items":[]}`,
			wantLen: 0,
		},
		{
			name:      "unknown version: error",
			raw:       `{"version":7,"items":[]}`,
			wantError: "version[7]: unsupported snapshot version",
		},
		{
			name:      "blank: error",
			raw:       "  ",
			wantError: "snapshot is empty",
		},
		{
			name:      "garbage: error",
			raw:       "hello",
			wantError: `snapshot has unexpected leading byte 'h'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := snapshot.Decode([]byte(tt.raw))
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			require.Len(t, items, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantPrice, items[0].Product.Price)
			}
		})
	}
}
