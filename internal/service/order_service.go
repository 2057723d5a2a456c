package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shukrishariif/grocery-app/internal/cache"
	"github.com/shukrishariif/grocery-app/internal/catalog"
	"github.com/shukrishariif/grocery-app/internal/domain"
	"github.com/shukrishariif/grocery-app/internal/repository"
)

// OrderService derives immutable orders from carts.
type OrderService struct {
	orders  repository.OrderRepository
	carts   repository.CartRepository
	catalog catalog.Catalog
	cache   cache.CartCache
	logger  *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, carts repository.CartRepository, cat catalog.Catalog, c cache.CartCache, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:  orders,
		carts:   carts,
		catalog: cat,
		cache:   c,
		logger:  logger,
	}
}

// CreateOrder snapshots the owner's cart into a pending order and clears
// the cart in one transactional step. Prices are captured from the catalog
// at this moment and never recomputed. If any referenced product is gone
// the whole call aborts; nothing is dropped silently. A cart that changed
// under us triggers a full re-derivation, so a checkout retried against an
// already cleared cart ends in ErrEmptyCart rather than a duplicate order.
func (s *OrderService) CreateOrder(ctx context.Context, ownerID string) (*domain.Order, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		cart, err := s.carts.Get(ctx, ownerID)
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrEmptyCart
		}
		if err != nil {
			return nil, err
		}
		if cart.IsEmpty() {
			return nil, ErrEmptyCart
		}

		items := make([]domain.OrderItem, len(cart.Items))
		for i, line := range cart.Items {
			info, err := s.catalog.Resolve(ctx, line.ProductID)
			if err != nil {
				return nil, err
			}
			items[i] = domain.OrderItem{
				ProductID: line.ProductID,
				Name:      info.Name,
				Quantity:  line.Quantity,
				UnitPrice: info.Price,
			}
		}

		order := &domain.Order{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			Items:     items,
			Status:    domain.OrderStatusPending,
			CreatedAt: time.Now(),
		}
		order.TotalAmount = order.ComputeTotal()

		if err := s.orders.Checkout(ctx, order, cart.Version); err != nil {
			if errors.Is(err, repository.ErrVersionMismatch) {
				continue // cart moved, derive again from its new state
			}
			return nil, err
		}

		s.invalidateCartCache(ownerID)
		return order, nil
	}

	s.logger.Warn("checkout retry budget exceeded", zap.String("owner_id", ownerID))
	return nil, ErrConflict
}

func (s *OrderService) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}

func (s *OrderService) GetOrder(ctx context.Context, ownerID, orderID string) (*domain.Order, error) {
	return s.orders.Get(ctx, ownerID, orderID)
}

func (s *OrderService) invalidateCartCache(ownerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		s.logger.Warn("cache invalidate error", zap.Error(err))
	}
}
