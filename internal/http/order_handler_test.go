package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shukrishariif/grocery-app/internal/domain"
	"github.com/shukrishariif/grocery-app/internal/repository"
	"github.com/shukrishariif/grocery-app/internal/service"
)

type stubOrderService struct {
	createOrderFn func(ctx context.Context, ownerID string) (*domain.Order, error)
	listOrdersFn  func(ctx context.Context, ownerID string) ([]domain.Order, error)
	getOrderFn    func(ctx context.Context, ownerID, orderID string) (*domain.Order, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, ownerID string) (*domain.Order, error) {
	return s.createOrderFn(ctx, ownerID)
}

func (s *stubOrderService) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return s.listOrdersFn(ctx, ownerID)
}

func (s *stubOrderService) GetOrder(ctx context.Context, ownerID, orderID string) (*domain.Order, error) {
	return s.getOrderFn(ctx, ownerID, orderID)
}

func orderTestRouter(svc OrderService) *chi.Mux {
	h := NewOrderHandler(svc, 5*time.Second)
	r := chi.NewRouter()
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{orderID}", h.GetOrder)
	return r
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	svc := &stubOrderService{
		createOrderFn: func(_ context.Context, ownerID string) (*domain.Order, error) {
			assert.Equal(t, "owner-1", ownerID)
			return &domain.Order{
				ID:          "order-1",
				OwnerID:     ownerID,
				Status:      domain.OrderStatusPending,
				TotalAmount: decimal.RequireFromString("25.00"),
				Items: []domain.OrderItem{
					{ProductID: "p1", Name: "Apples", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
					{ProductID: "p2", Name: "Milk", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
				},
			}, nil
		},
	}

	rec := doOwnerRequest(t, orderTestRouter(svc), http.MethodPost, "/orders", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)
}

func TestOrderHandler_CreateOrder_EmptyCart(t *testing.T) {
	svc := &stubOrderService{
		createOrderFn: func(context.Context, string) (*domain.Order, error) {
			return nil, service.ErrEmptyCart
		},
	}

	rec := doOwnerRequest(t, orderTestRouter(svc), http.MethodPost, "/orders", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "empty_cart", body.Code)
}

func TestOrderHandler_CreateOrder_Conflict(t *testing.T) {
	svc := &stubOrderService{
		createOrderFn: func(context.Context, string) (*domain.Order, error) {
			return nil, service.ErrConflict
		},
	}

	rec := doOwnerRequest(t, orderTestRouter(svc), http.MethodPost, "/orders", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrderHandler_CreateOrder_Unauthenticated(t *testing.T) {
	svc := &stubOrderService{
		createOrderFn: func(context.Context, string) (*domain.Order, error) {
			t.Fatal("service must not be called without an owner")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	rec := httptest.NewRecorder()
	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderHandler_ListOrders_EmptyIsJSONArray(t *testing.T) {
	svc := &stubOrderService{
		listOrdersFn: func(context.Context, string) ([]domain.Order, error) {
			return nil, nil
		},
	}

	rec := doOwnerRequest(t, orderTestRouter(svc), http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestOrderHandler_GetOrder(t *testing.T) {
	svc := &stubOrderService{
		getOrderFn: func(_ context.Context, ownerID, orderID string) (*domain.Order, error) {
			assert.Equal(t, "owner-1", ownerID)
			assert.Equal(t, "order-1", orderID)
			return &domain.Order{ID: orderID, OwnerID: ownerID}, nil
		},
	}

	rec := doOwnerRequest(t, orderTestRouter(svc), http.MethodGet, "/orders/order-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderHandler_GetOrder_NotFound(t *testing.T) {
	svc := &stubOrderService{
		getOrderFn: func(context.Context, string, string) (*domain.Order, error) {
			return nil, repository.ErrOrderNotFound
		},
	}

	rec := doOwnerRequest(t, orderTestRouter(svc), http.MethodGet, "/orders/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
