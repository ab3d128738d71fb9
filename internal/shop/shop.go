// Package shop is the in-process access facade of the storefront. It
// validates requests before they reach the store, hashes and checks
// credentials, and logs and counts store failures.
package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikolayk812/storefront/internal/credential"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

// SessionKey is the session slot of the signed-in user.
const SessionKey = "current"

type Service struct {
	store    port.Store
	sessions port.SessionRepository
	verifier credential.Verifier
	log      *slog.Logger
	metrics  *metrics.Metrics
	currency currency.Unit
}

type Option func(*Service)

// WithCurrency sets the currency order totals are logged in.
func WithCurrency(unit currency.Unit) Option {
	return func(s *Service) {
		s.currency = unit
	}
}

// New builds a Service over store. Sessions are available only when store
// also implements port.SessionRepository.
func New(store port.Store, verifier credential.Verifier, log *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:    store,
		verifier: verifier,
		log:      log,
		metrics:  m,
		currency: currency.KRW,
	}
	if sessions, ok := store.(port.SessionRepository); ok {
		s.sessions = sessions
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListProducts(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.store.ListProducts(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, s.fail(ctx, "list_products", err)
	}
	return products, nil
}

// Register creates a user and returns it without the stored credential.
func (s *Service) Register(ctx context.Context, email, name, password string) (domain.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	if name == "" {
		return domain.User{}, domain.NewValidationError("name", "is required")
	}
	if password == "" {
		return domain.User{}, domain.NewValidationError("password", "is required")
	}

	stored, err := s.verifier.Hash(password)
	if err != nil {
		return domain.User{}, s.fail(ctx, "register", err)
	}

	user := domain.User{Email: email, Name: name, Password: stored}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return domain.User{}, s.fail(ctx, "register", err, "email", email)
	}

	logger.WithCtx(ctx, s.log).Info("user registered", "email", email)

	return publicUser(user), nil
}

// Login checks the credentials and, on a session-capable store, records the
// user as the current one. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)

	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	if password == "" {
		return domain.User{}, domain.NewValidationError("password", "is required")
	}

	user, err := s.store.GetUser(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, s.fail(ctx, "login", err, "email", email)
	}

	if !s.verifier.Verify(user.Password, password) {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if s.sessions != nil {
		if err := s.sessions.SetSession(ctx, SessionKey, email); err != nil {
			return domain.User{}, s.fail(ctx, "login", err, "email", email)
		}
	}

	return publicUser(user), nil
}

func (s *Service) Logout(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}

	if err := s.sessions.DeleteSession(ctx, SessionKey); err != nil {
		return s.fail(ctx, "logout", err)
	}
	return nil
}

// CurrentUser returns the signed-in user, domain.ErrUserNotFound when nobody
// is signed in or the store keeps no sessions.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, error) {
	if s.sessions == nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	user, err := s.sessions.GetSession(ctx, SessionKey)
	if err != nil {
		return domain.User{}, s.fail(ctx, "current_user", err)
	}
	return publicUser(user), nil
}

func (s *Service) GetCart(ctx context.Context, email string) (domain.Cart, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.store.GetCart(ctx, email)
	if err != nil {
		return domain.Cart{}, s.fail(ctx, "get_cart", err, "email", email)
	}
	return cart, nil
}

func (s *Service) AddToCart(ctx context.Context, email, productID string) error {
	email, productID, err := lineKey(email, productID)
	if err != nil {
		return err
	}

	if err := s.store.AddItem(ctx, email, productID); err != nil {
		return s.fail(ctx, "add_item", err, "email", email, "product_id", productID)
	}

	s.metrics.CartMutations.WithLabelValues("add").Inc()
	return nil
}

// AddExternalToCart adds a product that may not be in the catalog yet, for
// example a generated recommendation. The product is upserted first.
func (s *Service) AddExternalToCart(ctx context.Context, email string, product domain.Product) error {
	email, productID, err := lineKey(email, product.ID)
	if err != nil {
		return err
	}
	product.ID = productID

	if strings.TrimSpace(product.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if err := domain.ValidatePrice("price", product.Price); err != nil {
		return err
	}

	if err := s.store.AddProduct(ctx, email, product); err != nil {
		return s.fail(ctx, "add_product", err, "email", email, "product_id", productID)
	}

	s.metrics.CartMutations.WithLabelValues("add_external").Inc()
	return nil
}

// UpdateQuantity sets the line to exactly quantity, quantity <= 0 removes it.
func (s *Service) UpdateQuantity(ctx context.Context, email, productID string, quantity int) error {
	email, productID, err := lineKey(email, productID)
	if err != nil {
		return err
	}

	if err := domain.ValidateQuantity("quantity", quantity); err != nil {
		return err
	}

	if err := s.store.SetQuantity(ctx, email, productID, quantity); err != nil {
		return s.fail(ctx, "set_quantity", err, "email", email, "product_id", productID)
	}

	s.metrics.CartMutations.WithLabelValues("set_quantity").Inc()
	return nil
}

// ChangeQuantity moves the line by delta, the line is removed once it drops below one.
func (s *Service) ChangeQuantity(ctx context.Context, email, productID string, delta int) error {
	email, productID, err := lineKey(email, productID)
	if err != nil {
		return err
	}
	if delta == 0 {
		return domain.NewValidationError("delta", "must not be zero")
	}
	if err := domain.ValidateQuantity("delta", delta); err != nil {
		return err
	}

	if err := s.store.AdjustQuantity(ctx, email, productID, delta); err != nil {
		return s.fail(ctx, "adjust_quantity", err, "email", email, "product_id", productID)
	}

	s.metrics.CartMutations.WithLabelValues("adjust_quantity").Inc()
	return nil
}

func (s *Service) RemoveFromCart(ctx context.Context, email, productID string) error {
	email, productID, err := lineKey(email, productID)
	if err != nil {
		return err
	}

	if _, err := s.store.DeleteItem(ctx, email, productID); err != nil {
		return s.fail(ctx, "delete_item", err, "email", email, "product_id", productID)
	}

	s.metrics.CartMutations.WithLabelValues("remove").Inc()
	return nil
}

func (s *Service) ClearCart(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	if err := s.store.ClearCart(ctx, email); err != nil {
		return s.fail(ctx, "clear_cart", err, "email", email)
	}

	s.metrics.CartMutations.WithLabelValues("clear").Inc()
	return nil
}

// SaveCart replaces the whole cart with lines, upserting their products.
func (s *Service) SaveCart(ctx context.Context, email string, lines []domain.CartLine) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	for i, line := range lines {
		if strings.TrimSpace(line.Product.ID) == "" {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].productId", i), "is required")
		}
		if err := domain.ValidatePrice(fmt.Sprintf("lines[%d].price", i), line.Product.Price); err != nil {
			return err
		}
		if err := domain.ValidateQuantity(fmt.Sprintf("lines[%d].quantity", i), line.Quantity); err != nil {
			return err
		}
	}

	if err := s.store.ReplaceCart(ctx, email, lines); err != nil {
		return s.fail(ctx, "replace_cart", err, "email", email)
	}

	s.metrics.CartMutations.WithLabelValues("replace").Inc()
	return nil
}

func (s *Service) ListOrders(ctx context.Context, email string) ([]domain.Order, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	orders, err := s.store.ListOrders(ctx, email)
	if err != nil {
		return nil, s.fail(ctx, "list_orders", err, "email", email)
	}
	return orders, nil
}

// PlaceOrder turns the cart into an order. An empty cart is an expected
// outcome and is returned as domain.ErrEmptyCart. Placement is never retried:
// the caller cannot tell whether a failed attempt left an order behind.
func (s *Service) PlaceOrder(ctx context.Context, email string) (domain.Order, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return domain.Order{}, err
	}

	log := logger.WithCtx(ctx, s.log)

	order, err := s.store.PlaceOrder(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			s.metrics.Placements.WithLabelValues(metrics.OutcomeEmptyCart).Inc()
			return domain.Order{}, err
		}
		s.metrics.Placements.WithLabelValues(metrics.OutcomeFailed).Inc()
		return domain.Order{}, s.fail(ctx, "place_order", err, "email", email)
	}

	s.metrics.Placements.WithLabelValues(metrics.OutcomePlaced).Inc()
	s.metrics.OrderTotal.Observe(float64(order.Total))

	log.Info("order placed",
		"order_id", order.ID,
		"email", email,
		"items", len(order.Items),
		"total", domain.NewMoney(order.Total, s.currency).String(),
	)

	return order, nil
}

// fail logs and counts unexpected store errors. Expected outcomes pass
// through untouched.
func (s *Service) fail(ctx context.Context, op string, err error, attrs ...any) error {
	if isExpected(err) {
		return err
	}

	s.metrics.StoreErrors.WithLabelValues(op).Inc()

	args := append([]any{"op", op, "error", err}, attrs...)
	logger.WithCtx(ctx, s.log).Error("store operation failed", args...)

	return fmt.Errorf("%s: %w", op, err)
}

func isExpected(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrEmailTaken,
		domain.ErrInvalidCredentials,
		domain.ErrUserNotFound,
		domain.ErrProductNotFound,
		domain.ErrEmptyCart,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func publicUser(u domain.User) domain.User {
	u.Password = ""
	return u
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func validateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return domain.NewValidationError("email", "is not an email address")
	}
	return nil
}

func lineKey(email, productID string) (string, string, error) {
	email = normalizeEmail(email)
	productID = strings.TrimSpace(productID)

	if err := validateEmail(email); err != nil {
		return "", "", err
	}
	if productID == "" {
		return "", "", domain.NewValidationError("productId", "is required")
	}
	return email, productID, nil
}
