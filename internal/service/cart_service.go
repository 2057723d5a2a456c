package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/shukrishariif/grocery-app/internal/cache"
	"github.com/shukrishariif/grocery-app/internal/catalog"
	"github.com/shukrishariif/grocery-app/internal/domain"
	"github.com/shukrishariif/grocery-app/internal/repository"
)

// CartService owns all cart mutations. Every write runs a bounded
// compare-and-swap loop against the cart version, so concurrent requests
// from the same owner serialize instead of losing updates.
type CartService struct {
	repo    repository.CartRepository
	catalog catalog.Catalog
	cache   cache.CartCache
	logger  *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cat catalog.Catalog, c cache.CartCache, logger *zap.Logger) *CartService {
	return &CartService{
		repo:    repo,
		catalog: cat,
		cache:   c,
		logger:  logger,
	}
}

func (s *CartService) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.Error(err)) // log cache error but continue
		}

		cart, err = s.repo.Get(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), ownerID, cart); errSet != nil {
				s.logger.Warn("cache set error", zap.Error(errSet))
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem merges quantity into the owner's line for productID, creating the
// cart and the line as needed. Repeated adds accumulate.
func (s *CartService) AddItem(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if productID == "" {
		return nil, ErrInvalidProductID
	}

	ok, err := s.catalog.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog.ErrProductNotFound
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		cart, err := s.repo.Get(ctx, ownerID)
		if errors.Is(err, repository.ErrCartNotFound) {
			cart = &domain.Cart{
				OwnerID: ownerID,
				Items: []domain.CartItem{
					{ProductID: productID, Quantity: quantity, AddedAt: time.Now()},
				},
			}
			if err := s.repo.Insert(ctx, cart); err != nil {
				if errors.Is(err, repository.ErrCartExists) {
					continue // lost the create race, merge on next attempt
				}
				return nil, err
			}
			s.invalidateCache(ownerID)
			return cart, nil
		}
		if err != nil {
			return nil, err
		}

		if i := cart.FindItem(productID); i >= 0 {
			cart.Items[i].Quantity += quantity
		} else {
			cart.Items = append(cart.Items, domain.CartItem{
				ProductID: productID,
				Quantity:  quantity,
				AddedAt:   time.Now(),
			})
		}

		if err := s.repo.Update(ctx, cart); err != nil {
			if errors.Is(err, repository.ErrVersionMismatch) {
				continue
			}
			return nil, err
		}
		s.invalidateCache(ownerID)
		return cart, nil
	}

	s.logger.Warn("add item retry budget exceeded", zap.String("owner_id", ownerID))
	return nil, ErrConflict
}

// RemoveItem drops the line for productID. A line that is not there is a
// no-op; a missing cart is an error.
func (s *CartService) RemoveItem(ctx context.Context, ownerID, productID string) (*domain.Cart, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		cart, err := s.repo.Get(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		i := cart.FindItem(productID)
		if i < 0 {
			return cart, nil // nothing to remove
		}
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

		if err := s.repo.Update(ctx, cart); err != nil {
			if errors.Is(err, repository.ErrVersionMismatch) {
				continue
			}
			return nil, err
		}
		s.invalidateCache(ownerID)
		return cart, nil
	}

	s.logger.Warn("remove item retry budget exceeded", zap.String("owner_id", ownerID))
	return nil, ErrConflict
}

// ReplaceItems overwrites the whole item list, creating the cart if absent.
// Unlike AddItem there is no merging. Every product is validated first and
// one unknown product rejects the whole call.
func (s *CartService) ReplaceItems(ctx context.Context, ownerID string, items []domain.CartItem) (*domain.Cart, error) {
	now := time.Now()
	for i := range items {
		if items[i].Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if items[i].ProductID == "" {
			return nil, ErrInvalidProductID
		}
		ok, err := s.catalog.Exists(ctx, items[i].ProductID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, catalog.ErrProductNotFound
		}
		if items[i].AddedAt.IsZero() {
			items[i].AddedAt = now
		}
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		cart, err := s.repo.Get(ctx, ownerID)
		if errors.Is(err, repository.ErrCartNotFound) {
			cart = &domain.Cart{OwnerID: ownerID, Items: items}
			if err := s.repo.Insert(ctx, cart); err != nil {
				if errors.Is(err, repository.ErrCartExists) {
					continue
				}
				return nil, err
			}
			s.invalidateCache(ownerID)
			return cart, nil
		}
		if err != nil {
			return nil, err
		}

		cart.Items = items
		if err := s.repo.Update(ctx, cart); err != nil {
			if errors.Is(err, repository.ErrVersionMismatch) {
				continue
			}
			return nil, err
		}
		s.invalidateCache(ownerID)
		return cart, nil
	}

	s.logger.Warn("replace items retry budget exceeded", zap.String("owner_id", ownerID))
	return nil, ErrConflict
}

// ClearCart deletes the owner's cart. Clearing a cart that does not exist
// is a no-op, and so is clearing twice.
func (s *CartService) ClearCart(ctx context.Context, ownerID string) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		cart, err := s.repo.Get(ctx, ownerID)
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, ownerID, cart.Version); err != nil {
			if errors.Is(err, repository.ErrVersionMismatch) {
				continue
			}
			return err
		}
		s.invalidateCache(ownerID)
		return nil
	}

	s.logger.Warn("clear cart retry budget exceeded", zap.String("owner_id", ownerID))
	return ErrConflict
}

func (s *CartService) invalidateCache(ownerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		s.logger.Warn("cache invalidate error", zap.Error(err))
	}
}
