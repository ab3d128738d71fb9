package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type ackResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type productJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
}

// cartLineJSON is a product with the quantity alongside its fields.
type cartLineJSON struct {
	productJSON
	Quantity int `json:"quantity"`
}

type orderJSON struct {
	ID        string         `json:"id"`
	UserEmail string         `json:"userEmail"`
	Date      time.Time      `json:"date"`
	Total     int64          `json:"total"`
	Status    string         `json:"status"`
	Items     []cartLineJSON `json:"items"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAck(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, ackResponse{Success: true})
}

// writeError maps domain errors to status codes. Anything unexpected is a
// 500 with a generic message, the cause is already logged by the service.
func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: domain.ErrEmailTaken.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: domain.ErrInvalidCredentials.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrProductNotFound.Error()})
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrUserNotFound.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: domain.ErrEmptyCart.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func mapProductToJSON(p domain.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
}

func mapProductFromJSON(p productJSON) domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
}

func mapCartToJSON(cart domain.Cart) []cartLineJSON {
	lines := make([]cartLineJSON, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, cartLineJSON{
			productJSON: mapProductToJSON(line.Product),
			Quantity:    line.Quantity,
		})
	}
	return lines
}

func mapOrdersToJSON(orders []domain.Order) []orderJSON {
	result := make([]orderJSON, 0, len(orders))
	for _, order := range orders {
		items := make([]cartLineJSON, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, cartLineJSON{
				productJSON: mapProductToJSON(item.Product),
				Quantity:    item.Quantity,
			})
		}

		result = append(result, orderJSON{
			ID:        order.ID,
			UserEmail: order.UserEmail,
			Date:      order.Date,
			Total:     order.Total,
			Status:    string(order.Status),
			Items:     items,
		})
	}
	return result
}
