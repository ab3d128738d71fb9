package embedded_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/storefront/internal/blob"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/embedded"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// flakyBlobs fails every Put while broken is set.
type flakyBlobs struct {
	*blob.MemoryStore
	broken atomic.Bool
}

var errBlobDown = errors.New("blob store is down")

func (b *flakyBlobs) Put(ctx context.Context, key string, data []byte) error {
	if b.broken.Load() {
		return errBlobDown
	}
	return b.MemoryStore.Put(ctx, key, data)
}

type embeddedSuite struct {
	suite.Suite

	blobs *flakyBlobs
	store *embedded.Store
}

func TestEmbeddedSuite(t *testing.T) {
	suite.Run(t, new(embeddedSuite))
}

func (suite *embeddedSuite) SetupTest() {
	suite.blobs = &flakyBlobs{MemoryStore: blob.NewMemoryStore()}
	suite.store = suite.open()
}

func (suite *embeddedSuite) TearDownTest() {
	if suite.store != nil {
		suite.NoError(suite.store.Close())
		suite.store = nil
	}
}

func (suite *embeddedSuite) open(opts ...embedded.Option) *embedded.Store {
	store, err := embedded.Open(suite.T().Context(), suite.blobs, opts...)
	suite.Require().NoError(err)
	return store
}

// reopen closes the current store and loads a new one from the same blobs.
func (suite *embeddedSuite) reopen(opts ...embedded.Option) {
	suite.Require().NoError(suite.store.Close())
	suite.store = suite.open(opts...)
}

func (suite *embeddedSuite) TestOpenFreshPersistsImage() {
	t := suite.T()
	ctx := t.Context()

	encoded, err := suite.blobs.Get(ctx, embedded.DefaultKey)
	require.NoError(t, err)

	image, err := base64.StdEncoding.DecodeString(string(encoded))
	require.NoError(t, err)
	assert.Equal(t, "SQLite format 3\x00", string(image[:16]))

	products, err := suite.store.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func (suite *embeddedSuite) TestInitialProductsOnlyOnFreshDatabase() {
	t := suite.T()
	ctx := t.Context()

	initial := []domain.Product{randomProduct(), randomProduct(), randomProduct()}

	suite.Require().NoError(suite.store.Close())
	suite.blobs = &flakyBlobs{MemoryStore: blob.NewMemoryStore()}
	suite.store = suite.open(embedded.WithInitialProducts(initial))

	products, err := suite.store.ListProducts(ctx, "")
	require.NoError(t, err)
	if diff := cmp.Diff(initial, products); diff != "" {
		t.Errorf("products mismatch (-want +got):\n%s", diff)
	}

	changed := initial[0]
	changed.Price += 100
	require.NoError(t, suite.store.UpsertProduct(ctx, changed))

	suite.reopen(embedded.WithInitialProducts(initial))

	got, err := suite.store.GetProduct(ctx, changed.ID)
	require.NoError(t, err)
	assert.Equal(t, changed, got, "loaded database must not be re-seeded")

	products, err = suite.store.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, len(initial))
	assert.Equal(t, changed.ID, products[0].ID, "upsert keeps catalog position")
}

func (suite *embeddedSuite) TestReopenRestoresState() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	p1, p2 := randomProduct(), randomProduct()

	require.NoError(t, suite.store.CreateUser(ctx, domain.User{Email: email, Name: "Ann", Password: "secret"}))
	require.NoError(t, suite.store.SeedProducts(ctx, []domain.Product{p1, p2}))
	require.NoError(t, suite.store.AddItem(ctx, email, p1.ID))
	order, err := suite.store.PlaceOrder(ctx, email)
	require.NoError(t, err)
	require.NoError(t, suite.store.AddItem(ctx, email, p2.ID))
	require.NoError(t, suite.store.AddItem(ctx, email, p2.ID))

	suite.reopen()

	user, err := suite.store.GetUser(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	orders, err := suite.store.ListOrders(ctx, email)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	if diff := cmp.Diff(order, orders[0]); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	cart, err := suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, p2, cart.Lines[0].Product)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func (suite *embeddedSuite) TestOpenCorruptSnapshot() {
	t := suite.T()
	ctx := t.Context()

	tests := []struct {
		name string
		blob string
	}{
		{name: "not base64", blob: "%%% not base64 %%%"},
		{name: "not a database", blob: base64.StdEncoding.EncodeToString([]byte("definitely not sqlite, but long enough to look like a page header"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := blob.NewMemoryStore()
			require.NoError(t, blobs.Put(ctx, embedded.DefaultKey, []byte(tt.blob)))

			_, err := embedded.Open(ctx, blobs)
			require.ErrorIs(t, err, domain.ErrCorruptSnapshot)

			got, err := blobs.Get(ctx, embedded.DefaultKey)
			require.NoError(t, err)
			assert.Equal(t, tt.blob, string(got), "corrupt blob must be left untouched")
		})
	}
}

func (suite *embeddedSuite) TestCustomKey() {
	t := suite.T()
	ctx := t.Context()

	suite.reopen(embedded.WithKey("other.db"))

	_, err := suite.blobs.Get(ctx, "other.db")
	assert.NoError(t, err)
}

func (suite *embeddedSuite) TestGrowsAfterReopen() {
	t := suite.T()
	ctx := t.Context()

	require.NoError(t, suite.store.UpsertProduct(ctx, randomProduct()))

	suite.reopen()

	suite.growCatalog(200)

	products, err := suite.store.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 201)
}

func (suite *embeddedSuite) TestGrowsAfterPersistFailure() {
	t := suite.T()
	ctx := t.Context()

	require.NoError(t, suite.store.UpsertProduct(ctx, randomProduct()))

	suite.blobs.broken.Store(true)
	err := suite.store.UpsertProduct(ctx, randomProduct())
	require.ErrorIs(t, err, errBlobDown)
	suite.blobs.broken.Store(false)

	suite.growCatalog(200)

	suite.reopen()

	products, err := suite.store.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 201)
}

// growCatalog upserts n products with long names, many times the size of a
// freshly created image.
func (suite *embeddedSuite) growCatalog(n int) {
	t := suite.T()
	ctx := t.Context()

	for i := 0; i < n; i++ {
		product := randomProduct()
		product.Name = gofakeit.LetterN(200)
		product.Description = gofakeit.LetterN(200)
		require.NoError(t, suite.store.UpsertProduct(ctx, product), "upsert %d", i)
	}
}

func (suite *embeddedSuite) TestPersistOnlyCommittedWrites() {
	t := suite.T()
	ctx := t.Context()

	var persisted atomic.Int32
	suite.reopen(embedded.WithPersistHook(func(image []byte) {
		assert.NotEmpty(t, image)
		persisted.Add(1)
	}))
	// schema pass on open
	require.Equal(t, int32(1), persisted.Load())

	email := randomEmail()
	p := randomProduct()
	require.NoError(t, suite.store.UpsertProduct(ctx, p))
	require.NoError(t, suite.store.AddItem(ctx, email, p.ID))
	assert.Equal(t, int32(3), persisted.Load())

	err := suite.store.AddItem(ctx, email, "missing-"+p.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, int32(3), persisted.Load(), "rolled back write must not persist")
}

func (suite *embeddedSuite) TestPersistFailureRestoresLastImage() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	product := randomProduct()
	require.NoError(t, suite.store.UpsertProduct(ctx, product))
	require.NoError(t, suite.store.AddItem(ctx, email, product.ID))

	suite.blobs.broken.Store(true)

	err := suite.store.AddItem(ctx, email, product.ID)
	require.ErrorIs(t, err, errBlobDown)

	other := randomProduct()
	err = suite.store.AddProduct(ctx, email, other)
	require.ErrorIs(t, err, errBlobDown)

	cart, err := suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity, "memory must match the last persisted image")

	_, err = suite.store.GetProduct(ctx, other.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	suite.blobs.broken.Store(false)

	require.NoError(t, suite.store.AddItem(ctx, email, product.ID))

	suite.reopen()

	cart, err = suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func (suite *embeddedSuite) TestPlaceOrderPersistFailure() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	product := randomProduct()
	require.NoError(t, suite.store.AddProduct(ctx, email, product))

	suite.blobs.broken.Store(true)

	_, err := suite.store.PlaceOrder(ctx, email)
	require.ErrorIs(t, err, domain.ErrPlacementFailed)
	require.ErrorIs(t, err, errBlobDown)

	suite.blobs.broken.Store(false)

	orders, err := suite.store.ListOrders(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, orders)

	cart, err := suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1, "failed placement must keep the cart")
}

func (suite *embeddedSuite) TestAddItem() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	product := randomProduct()
	require.NoError(t, suite.store.UpsertProduct(ctx, product))

	for range 3 {
		require.NoError(t, suite.store.AddItem(ctx, email, product.ID))
	}

	cart, err := suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)

	err = suite.store.AddItem(ctx, email, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	err = suite.store.AddItem(ctx, "", product.ID)
	assert.Error(t, err)
}

func (suite *embeddedSuite) TestAddItemConcurrently() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	product := randomProduct()
	require.NoError(t, suite.store.UpsertProduct(ctx, product))

	const callers = 20
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, suite.store.AddItem(ctx, email, product.ID))
		}()
	}
	wg.Wait()

	cart, err := suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, callers, cart.Lines[0].Quantity)
}

func (suite *embeddedSuite) TestQuantityChanges() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	product := randomProduct()
	require.NoError(t, suite.store.AddProduct(ctx, email, product))

	require.NoError(t, suite.store.SetQuantity(ctx, email, product.ID, 5))
	assert.Equal(t, 5, suite.quantity(email, product.ID))

	require.NoError(t, suite.store.AdjustQuantity(ctx, email, product.ID, -2))
	assert.Equal(t, 3, suite.quantity(email, product.ID))

	require.NoError(t, suite.store.AdjustQuantity(ctx, email, product.ID, -3))
	assert.Equal(t, 0, suite.quantity(email, product.ID), "reaching zero deletes the line")

	// adjusting a missing line is a no-op
	require.NoError(t, suite.store.AdjustQuantity(ctx, email, product.ID, 4))
	assert.Equal(t, 0, suite.quantity(email, product.ID))

	require.NoError(t, suite.store.AddItem(ctx, email, product.ID))
	require.NoError(t, suite.store.SetQuantity(ctx, email, product.ID, 0))
	assert.Equal(t, 0, suite.quantity(email, product.ID), "set to zero deletes the line")

	require.NoError(t, suite.store.AddItem(ctx, email, product.ID))
	require.NoError(t, suite.store.SetQuantity(ctx, email, product.ID, -7))
	assert.Equal(t, 0, suite.quantity(email, product.ID))
}

func (suite *embeddedSuite) TestQuantityOutOfRange() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	product := randomProduct()
	require.NoError(t, suite.store.UpsertProduct(ctx, product))
	require.NoError(t, suite.store.AddItem(ctx, email, product.ID))

	require.ErrorIs(t, suite.store.SetQuantity(ctx, email, product.ID, 4294967297), domain.ErrValidation)
	require.ErrorIs(t, suite.store.AdjustQuantity(ctx, email, product.ID, -domain.MaxQuantity-1), domain.ErrValidation)
	err := suite.store.ReplaceCart(ctx, email, []domain.CartLine{{Product: product, Quantity: domain.MaxQuantity + 1}})
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, 1, suite.quantity(email, product.ID))
}

func (suite *embeddedSuite) TestDeleteItemIdempotent() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	product := randomProduct()
	require.NoError(t, suite.store.AddProduct(ctx, email, product))

	deleted, err := suite.store.DeleteItem(ctx, email, product.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = suite.store.DeleteItem(ctx, email, product.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	cart, err := suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func (suite *embeddedSuite) TestReplaceCart() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	stale := randomProduct()
	require.NoError(t, suite.store.AddProduct(ctx, email, stale))

	p1, p2, skipped := randomProduct(), randomProduct(), randomProduct()
	lines := []domain.CartLine{
		{Product: p1, Quantity: 2},
		{Product: skipped, Quantity: 0},
		{Product: p2, Quantity: 1},
	}
	require.NoError(t, suite.store.ReplaceCart(ctx, email, lines))

	cart, err := suite.store.GetCart(ctx, email)
	require.NoError(t, err)

	want := []domain.CartLine{lines[0], lines[2]}
	if diff := cmp.Diff(want, cart.Lines); diff != "" {
		t.Errorf("cart mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, suite.store.ClearCart(ctx, email))

	cart, err = suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func (suite *embeddedSuite) TestListProducts() {
	t := suite.T()
	ctx := t.Context()

	headphones := randomProduct()
	headphones.Name = "Premium Wireless Headphones"
	headphones.Description = "noise cancelling"
	headphones.Category = "Electronics"

	chair := randomProduct()
	chair.Name = "Ergonomic Chair"
	chair.Description = "50%_off comfort"
	chair.Category = "Furniture"

	require.NoError(t, suite.store.SeedProducts(ctx, []domain.Product{headphones, chair}))

	tests := []struct {
		name   string
		filter string
		want   []domain.Product
	}{
		{name: "empty filter returns insertion order", filter: "", want: []domain.Product{headphones, chair}},
		{name: "match name case-insensitively", filter: "WIRELESS", want: []domain.Product{headphones}},
		{name: "match category", filter: "furn", want: []domain.Product{chair}},
		{name: "wildcards are literal", filter: "%_off", want: []domain.Product{chair}},
		{name: "no match", filter: "zzz-no-such-product", want: []domain.Product{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := suite.store.ListProducts(ctx, tt.filter)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("products mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func (suite *embeddedSuite) TestUsers() {
	t := suite.T()
	ctx := t.Context()

	user := domain.User{Email: randomEmail(), Name: gofakeit.Name(), Password: "stored"}
	require.NoError(t, suite.store.CreateUser(ctx, user))

	err := suite.store.CreateUser(ctx, user)
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := suite.store.GetUser(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = suite.store.GetUser(ctx, randomEmail())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func (suite *embeddedSuite) TestSessions() {
	t := suite.T()
	ctx := t.Context()

	ann := domain.User{Email: randomEmail(), Name: "Ann", Password: "a"}
	bob := domain.User{Email: randomEmail(), Name: "Bob", Password: "b"}
	require.NoError(t, suite.store.CreateUser(ctx, ann))
	require.NoError(t, suite.store.CreateUser(ctx, bob))

	_, err := suite.store.GetSession(ctx, "current")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	err = suite.store.SetSession(ctx, "current", randomEmail())
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, suite.store.SetSession(ctx, "current", ann.Email))
	require.NoError(t, suite.store.SetSession(ctx, "current", bob.Email))

	suite.reopen()

	got, err := suite.store.GetSession(ctx, "current")
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	require.NoError(t, suite.store.DeleteSession(ctx, "current"))
	require.NoError(t, suite.store.DeleteSession(ctx, "current"))

	_, err = suite.store.GetSession(ctx, "current")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func (suite *embeddedSuite) TestPlaceOrderScenario() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	headphones := domain.Product{ID: "1", Name: "Headphones", Price: 1000, Category: "Electronics"}
	watch := domain.Product{ID: "2", Name: "Watch", Price: 500, Category: "Electronics"}
	require.NoError(t, suite.store.SeedProducts(ctx, []domain.Product{headphones, watch}))

	require.NoError(t, suite.store.AddItem(ctx, email, headphones.ID))
	require.NoError(t, suite.store.AddItem(ctx, email, headphones.ID))
	require.NoError(t, suite.store.AddItem(ctx, email, watch.ID))

	order, err := suite.store.PlaceOrder(ctx, email)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, email, order.UserEmail)
	assert.Equal(t, int64(2500), order.Total)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	assert.Equal(t, order.Total, domain.ItemsTotal(order.Items))
	want := []domain.OrderItem{
		{Product: headphones, Quantity: 2},
		{Product: watch, Quantity: 1},
	}
	if diff := cmp.Diff(want, order.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	cart, err := suite.store.GetCart(ctx, email)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// snapshot isolation
	headphones.Price = 9999
	require.NoError(t, suite.store.UpsertProduct(ctx, headphones))

	orders, err := suite.store.ListOrders(ctx, email)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(1000), orders[0].Items[0].Product.Price)
	assert.Equal(t, int64(2500), orders[0].Total)
}

func (suite *embeddedSuite) TestPlaceOrderWithoutEmail() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.store.PlaceOrder(ctx, "")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrPlacementFailed)

	_, err = suite.store.GetCart(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func (suite *embeddedSuite) TestPlaceOrderEmptyCart() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()

	_, err := suite.store.PlaceOrder(ctx, email)
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.NotErrorIs(t, err, domain.ErrPlacementFailed)

	orders, err := suite.store.ListOrders(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func (suite *embeddedSuite) TestPlaceOrderConcurrently() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	require.NoError(t, suite.store.AddProduct(ctx, email, randomProduct()))

	const callers = 5
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		empty     atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.store.PlaceOrder(ctx, email)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrEmptyCart):
				empty.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(callers-1), empty.Load())

	orders, err := suite.store.ListOrders(ctx, email)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func (suite *embeddedSuite) TestListOrdersNewestFirst() {
	t := suite.T()
	ctx := t.Context()

	email := randomEmail()
	var ids []string
	for range 3 {
		require.NoError(t, suite.store.AddProduct(ctx, email, randomProduct()))
		order, err := suite.store.PlaceOrder(ctx, email)
		require.NoError(t, err)
		ids = append([]string{order.ID}, ids...)
	}

	orders, err := suite.store.ListOrders(ctx, email)
	require.NoError(t, err)

	var got []string
	for _, order := range orders {
		got = append(got, order.ID)
	}
	assert.Equal(t, ids, got)

	others, err := suite.store.ListOrders(ctx, randomEmail())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func (suite *embeddedSuite) quantity(email, productID string) int {
	cart, err := suite.store.GetCart(suite.T().Context(), email)
	suite.Require().NoError(err)

	for _, line := range cart.Lines {
		if line.Product.ID == productID {
			return line.Quantity
		}
	}
	return 0
}

var productSeq atomic.Int64

func randomProduct() domain.Product {
	return domain.Product{
		ID:          "p-" + strconv.FormatInt(productSeq.Add(1), 10),
		Name:        gofakeit.ProductName(),
		Price:       int64(gofakeit.Number(1, 50)) * 1000,
		Description: gofakeit.ProductDescription(),
		Category:    gofakeit.ProductCategory(),
		ImageURL:    gofakeit.URL(),
	}
}

func randomEmail() string {
	return gofakeit.Email()
}
