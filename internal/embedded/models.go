package embedded

import (
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/nikolayk812/storefront/internal/domain"
)

type productRow struct {
	ID          string `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name"`
	Price       int64  `gorm:"column:price"`
	Description string `gorm:"column:description"`
	Category    string `gorm:"column:category"`
	ImageURL    string `gorm:"column:image_url"`
}

func (productRow) TableName() string { return "products" }

type userRow struct {
	Email    string `gorm:"column:email;primaryKey"`
	Name     string `gorm:"column:name"`
	Password string `gorm:"column:password"`
}

func (userRow) TableName() string { return "users" }

type cartRow struct {
	UserEmail string `gorm:"column:user_email;primaryKey"`
	ProductID string `gorm:"column:product_id;primaryKey"`
	Quantity  int    `gorm:"column:quantity"`
}

func (cartRow) TableName() string { return "cart" }

type orderRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserEmail string    `gorm:"column:user_email"`
	Date      time.Time `gorm:"column:date"`
	Total     int64     `gorm:"column:total"`
	Status    string    `gorm:"column:status"`
	ItemsJSON string    `gorm:"column:items_json"`
}

func (orderRow) TableName() string { return "orders" }

type sessionRow struct {
	Key       string `gorm:"column:key;primaryKey"`
	UserEmail string `gorm:"column:user_email"`
}

func (sessionRow) TableName() string { return "session" }

// cartLineRow is one row of the cart joined with products.
type cartLineRow struct {
	ID          string `gorm:"column:id"`
	Name        string `gorm:"column:name"`
	Price       int64  `gorm:"column:price"`
	Description string `gorm:"column:description"`
	Category    string `gorm:"column:category"`
	ImageURL    string `gorm:"column:image_url"`
	Quantity    int    `gorm:"column:quantity"`
}

func mapProductToRow(p domain.Product) productRow {
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
}

func mapProductToDomain(row productRow) domain.Product {
	return domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		Price:       row.Price,
		Description: row.Description,
		Category:    row.Category,
		ImageURL:    row.ImageURL,
	}
}

func mapCartLinesToDomain(rows []cartLineRow) []domain.CartLine {
	var lines []domain.CartLine

	for _, row := range rows {
		lines = append(lines, domain.CartLine{
			Product: domain.Product{
				ID:          row.ID,
				Name:        row.Name,
				Price:       row.Price,
				Description: row.Description,
				Category:    row.Category,
				ImageURL:    row.ImageURL,
			},
			Quantity: row.Quantity,
		})
	}

	return lines
}

func isConstraint(err error, codes ...sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	for _, code := range codes {
		if sqliteErr.ExtendedCode == code {
			return true
		}
	}

	return false
}
