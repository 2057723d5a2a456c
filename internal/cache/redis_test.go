package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shukrishariif/grocery-app/internal/domain"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func testCart(ownerID string) *domain.Cart {
	return &domain.Cart{
		ID:      "cart-1",
		OwnerID: ownerID,
		Items: []domain.CartItem{
			{ProductID: "p1", Quantity: 2, AddedAt: time.Now().UTC().Truncate(time.Second)},
		},
	}
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	cart := testCart("owner-1")
	require.NoError(t, c.Set(ctx, "owner-1", cart))

	got, err := c.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, cart.OwnerID, got.OwnerID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "owner-1", testCart("owner-1")))
	require.NoError(t, c.Delete(ctx, "owner-1"))

	_, err := c.Get(ctx, "owner-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_DeleteMissingKeyIsNoOp(t *testing.T) {
	c, _ := newTestCache(t)
	assert.NoError(t, c.Delete(context.Background(), "nobody"))
}

func TestRedisCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "owner-1", testCart("owner-1")))

	// TTL is base + up to 5 minutes of jitter.
	mr.FastForward(21 * time.Minute)

	_, err := c.Get(ctx, "owner-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("cart:owner-1", "{broken"))

	_, err := c.Get(context.Background(), "owner-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
