package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shukrishariif/grocery-app/internal/catalog"
	"github.com/shukrishariif/grocery-app/internal/domain"
	"github.com/shukrishariif/grocery-app/internal/repository"
)

// memoryOrderRepo implements the transactional checkout contract: the order
// is persisted and the cart deleted only if the cart version still matches.
type memoryOrderRepo struct {
	mu     sync.Mutex
	carts  *memoryCartRepo
	orders map[string][]domain.Order

	// interceptOnce runs once right before the version check, standing in
	// for a concurrent writer sneaking in between derive and commit.
	interceptOnce func()
}

func newMemoryOrderRepo(carts *memoryCartRepo) *memoryOrderRepo {
	return &memoryOrderRepo{carts: carts, orders: make(map[string][]domain.Order)}
}

func (m *memoryOrderRepo) Checkout(_ context.Context, order *domain.Order, cartVersion int64) error {
	if m.interceptOnce != nil {
		hook := m.interceptOnce
		m.interceptOnce = nil
		hook()
	}

	m.carts.mu.Lock()
	defer m.carts.mu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts.carts[order.OwnerID]
	if !ok || cart.Version != cartVersion {
		return repository.ErrVersionMismatch
	}
	delete(m.carts.carts, order.OwnerID)
	m.orders[order.OwnerID] = append(m.orders[order.OwnerID], *order)
	return nil
}

func (m *memoryOrderRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.orders[ownerID]...), nil
}

func (m *memoryOrderRepo) Get(_ context.Context, ownerID, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders[ownerID] {
		if o.ID == orderID {
			order := o
			return &order, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

type orderFixture struct {
	carts   *memoryCartRepo
	orders  *memoryOrderRepo
	catalog *memoryCatalog
	cache   *memoryCache
	sut     *OrderService
}

func newOrderFixture() *orderFixture {
	carts := newMemoryCartRepo()
	orders := newMemoryOrderRepo(carts)
	cat := newMemoryCatalog()
	c := &memoryCache{}
	return &orderFixture{
		carts:   carts,
		orders:  orders,
		catalog: cat,
		cache:   c,
		sut:     NewOrderService(orders, carts, cat, c, zap.NewNop()),
	}
}

func (f *orderFixture) seedCart(t *testing.T, ownerID string, items ...domain.CartItem) {
	t.Helper()
	cart := &domain.Cart{OwnerID: ownerID, Items: items}
	require.NoError(t, f.carts.Insert(context.Background(), cart))
}

func TestCreateOrder_SnapshotsCart(t *testing.T) {
	f := newOrderFixture()
	f.catalog.add("p1", "Apples", "10.00")
	f.catalog.add("p2", "Milk", "5.00")
	f.seedCart(t, "owner-1",
		domain.CartItem{ProductID: "p1", Quantity: 2, AddedAt: time.Now()},
		domain.CartItem{ProductID: "p2", Quantity: 1, AddedAt: time.Now()},
	)

	order, err := f.sut.CreateOrder(context.Background(), "owner-1")
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	assert.Equal(t, "owner-1", order.OwnerID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Apples", order.Items[0].Name)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.00")),
		"got total %s", order.TotalAmount)

	_, err = f.carts.Get(context.Background(), "owner-1")
	assert.ErrorIs(t, err, repository.ErrCartNotFound, "checkout must clear the cart")
}

func TestCreateOrder_SecondCheckoutFindsEmptyCart(t *testing.T) {
	f := newOrderFixture()
	f.catalog.add("p1", "Apples", "10.00")
	f.seedCart(t, "owner-1", domain.CartItem{ProductID: "p1", Quantity: 1})

	_, err := f.sut.CreateOrder(context.Background(), "owner-1")
	require.NoError(t, err)

	_, err = f.sut.CreateOrder(context.Background(), "owner-1")
	assert.ErrorIs(t, err, ErrEmptyCart)

	orders, err := f.sut.ListOrders(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1, "retried checkout must not duplicate the order")
}

func TestCreateOrder_NoCart(t *testing.T) {
	f := newOrderFixture()

	_, err := f.sut.CreateOrder(context.Background(), "owner-1")
	assert.ErrorIs(t, err, ErrEmptyCart)

	orders, err := f.sut.ListOrders(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()
	f.seedCart(t, "owner-1")

	_, err := f.sut.CreateOrder(context.Background(), "owner-1")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrder_DeletedProductAbortsWholeCheckout(t *testing.T) {
	f := newOrderFixture()
	f.catalog.add("p1", "Apples", "10.00")
	f.catalog.add("p2", "Milk", "5.00")
	f.seedCart(t, "owner-1",
		domain.CartItem{ProductID: "p1", Quantity: 1},
		domain.CartItem{ProductID: "p2", Quantity: 1},
	)
	f.catalog.remove("p2")

	_, err := f.sut.CreateOrder(context.Background(), "owner-1")
	require.ErrorIs(t, err, catalog.ErrProductNotFound)

	cart, err := f.carts.Get(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "aborted checkout must leave the cart intact")

	orders, err := f.sut.ListOrders(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_RederivesWhenCartMovesUnderneath(t *testing.T) {
	f := newOrderFixture()
	f.catalog.add("p1", "Apples", "10.00")
	f.catalog.add("p2", "Milk", "5.00")
	f.seedCart(t, "owner-1", domain.CartItem{ProductID: "p1", Quantity: 1})

	// A concurrent add lands between derive and commit.
	f.orders.interceptOnce = func() {
		cart, err := f.carts.Get(context.Background(), "owner-1")
		require.NoError(t, err)
		cart.Items = append(cart.Items, domain.CartItem{ProductID: "p2", Quantity: 2})
		require.NoError(t, f.carts.Update(context.Background(), cart))
	}

	order, err := f.sut.CreateOrder(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, order.Items, 2, "order must be derived from the cart's final state")
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("20.00")),
		"got total %s", order.TotalAmount)
}

func TestCreateOrder_ExactDecimalTotals(t *testing.T) {
	f := newOrderFixture()
	f.catalog.add("p1", "Gum", "0.10")
	f.seedCart(t, "owner-1", domain.CartItem{ProductID: "p1", Quantity: 3})

	order, err := f.sut.CreateOrder(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("0.30")),
		"got total %s", order.TotalAmount)
}

func TestCreateOrder_InvalidatesCartCache(t *testing.T) {
	f := newOrderFixture()
	f.catalog.add("p1", "Apples", "10.00")
	f.seedCart(t, "owner-1", domain.CartItem{ProductID: "p1", Quantity: 1})
	f.cache.cart = &domain.Cart{OwnerID: "owner-1"}

	_, err := f.sut.CreateOrder(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Nil(t, f.cache.getCart())
}

func TestGetOrder_ScopedToOwner(t *testing.T) {
	f := newOrderFixture()
	f.catalog.add("p1", "Apples", "10.00")
	f.seedCart(t, "owner-1", domain.CartItem{ProductID: "p1", Quantity: 1})

	order, err := f.sut.CreateOrder(context.Background(), "owner-1")
	require.NoError(t, err)

	got, err := f.sut.GetOrder(context.Background(), "owner-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.sut.GetOrder(context.Background(), "owner-2", order.ID)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}
