// Package snapshot encodes the frozen line items of an order into the single
// column they are persisted in.
//
// The encoding is versioned. Version 1 is an envelope
//
//	{"version":1,"items":[{"id":"1","name":"...","price":1000,...,"quantity":2}]}
//
// and version 0 is the bare item array written by earlier releases. Decode
// accepts both so historical orders stay readable after format changes.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
)

const CurrentVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type envelope struct {
	Version int    `json:"version"`
	Items   []item `json:"items"`
}

type item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	Quantity    int    `json:"quantity"`
}

func Encode(items []domain.OrderItem) ([]byte, error) {
	env := envelope{
		Version: CurrentVersion,
		Items:   make([]item, 0, len(items)),
	}
	for _, it := range items {
		env.Items = append(env.Items, fromDomain(it))
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return raw, nil
}

func Decode(raw []byte) ([]domain.OrderItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("snapshot is empty")
	}

	var items []item

	switch trimmed[0] {
	case '[':
		// version 0
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("json.Unmarshal legacy: %w", err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("json.Unmarshal: %w", err)
		}
		if env.Version != CurrentVersion {
			return nil, fmt.Errorf("version[%d]: %w", env.Version, ErrUnsupportedVersion)
		}
		items = env.Items
	default:
		return nil, fmt.Errorf("snapshot has unexpected leading byte %q", trimmed[0])
	}

	result := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		result = append(result, it.toDomain())
	}

	return result, nil
}

func fromDomain(it domain.OrderItem) item {
	return item{
		ID:          it.Product.ID,
		Name:        it.Product.Name,
		Price:       it.Product.Price,
		Description: it.Product.Description,
		Category:    it.Product.Category,
		ImageURL:    it.Product.ImageURL,
		Quantity:    it.Quantity,
	}
}

func (it item) toDomain() domain.OrderItem {
	return domain.OrderItem{
		Product: domain.Product{
			ID:          it.ID,
			Name:        it.Name,
			Price:       it.Price,
			Description: it.Description,
			Category:    it.Category,
			ImageURL:    it.ImageURL,
		},
		Quantity: it.Quantity,
	}
}
