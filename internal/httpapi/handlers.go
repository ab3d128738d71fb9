package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/domain"
)

const maxBodyBytes = 1 << 20

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// addRequest adds a catalog product by ID, or an external product carried in
// full when Product is set.
type addRequest struct {
	Email     string       `json:"email"`
	ProductID string       `json:"productId"`
	Product   *productJSON `json:"product"`
}

// updateRequest sets an absolute Quantity or moves it by Delta.
type updateRequest struct {
	Email     string `json:"email"`
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Delta     *int   `json:"delta"`
}

type saveCartRequest struct {
	Email string         `json:"email"`
	Items []cartLineJSON `json:"items"`
}

type placeOrderRequest struct {
	Email string `json:"email"`
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	result := make([]productJSON, 0, len(products))
	for _, p := range products {
		result = append(result, mapProductToJSON(p))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{Email: user.Email, Name: user.Name})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Email: user.Email, Name: user.Name})
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.GetCart(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapCartToJSON(cart))
}

func (h *handler) saveCart(w http.ResponseWriter, r *http.Request) {
	var req saveCartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	lines := make([]domain.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, domain.CartLine{
			Product:  mapProductFromJSON(item.productJSON),
			Quantity: item.Quantity,
		})
	}

	if err := h.svc.SaveCart(r.Context(), req.Email, lines); err != nil {
		writeError(w, err)
		return
	}

	writeAck(w)
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var err error
	if req.Product != nil {
		err = h.svc.AddExternalToCart(r.Context(), req.Email, mapProductFromJSON(*req.Product))
	} else {
		err = h.svc.AddToCart(r.Context(), req.Email, req.ProductID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeAck(w)
}

func (h *handler) updateCart(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var err error
	switch {
	case req.Quantity != nil && req.Delta != nil:
		err = domain.NewValidationError("quantity", "cannot be combined with delta")
	case req.Quantity != nil:
		err = h.svc.UpdateQuantity(r.Context(), req.Email, req.ProductID, *req.Quantity)
	case req.Delta != nil:
		err = h.svc.ChangeQuantity(r.Context(), req.Email, req.ProductID, *req.Delta)
	default:
		err = domain.NewValidationError("quantity", "is required")
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeAck(w)
}

func (h *handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		writeError(w, err)
		return
	}
	productID, err := pathParam(r, "productId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.RemoveFromCart(r.Context(), email, productID); err != nil {
		writeError(w, err)
		return
	}

	writeAck(w)
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.ClearCart(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}

	writeAck(w)
}

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrdersToJSON(orders))
}

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ackResponse{Success: true, OrderID: order.ID})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("body", "is not valid JSON")
	}
	return nil
}

// pathParam returns a decoded route parameter. chi routes on RawPath when it
// is set (an escaped slash for example) and on the decoded Path otherwise.
func pathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw, nil
	}

	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", domain.NewValidationError(name, "is not a valid path segment")
	}
	return value, nil
}
