package cart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/pricing"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	data    map[string][]byte
	saves   int
	loadErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: map[string][]byte{}}
}

func (m *memoryStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	d, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *memoryStorage) Save(ctx context.Context, key string, data []byte) error {
	m.saves++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func floatPtr(v float64) *float64 { return &v }

var (
	ring     = model.Product{ID: "a", Name: "Anillo", Price: 500}
	necklace = model.Product{
		ID: "b", Name: "Collar", Price: 300, IsOnSale: true,
		OriginalPrice: floatPtr(375), DiscountPrice: floatPtr(300),
	}
)

func setupCartTest(t *testing.T) (*Cart, *memoryStorage) {
	t.Helper()
	storage := newMemoryStorage()
	c, err := New(context.Background(), storage, StorageKey)
	require.NoError(t, err)
	return c, storage
}

func TestCart_AddMergesAndTotals(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCartTest(t)

	require.NoError(t, c.AddItem(ctx, ring, 1))
	require.NoError(t, c.AddItem(ctx, necklace, 1))
	require.NoError(t, c.AddItem(ctx, ring, 1))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 3, c.TotalItems())

	sub, err := c.Subtotal()
	require.NoError(t, err)
	assert.Equal(t, 1300.0, sub)

	total, err := c.Total()
	require.NoError(t, err)
	assert.Equal(t, 1450.0, total)
}

func TestCart_AddRejectsNonPositiveQuantity(t *testing.T) {
	c, storage := setupCartTest(t)

	err := c.AddItem(context.Background(), ring, 0)

	assert.ErrorIs(t, err, pricing.ErrInvalidQuantity)
	assert.Empty(t, c.Items())
	assert.Zero(t, storage.saves)
}

func TestCart_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("sets exact quantity", func(t *testing.T) {
		c, _ := setupCartTest(t)
		require.NoError(t, c.AddItem(ctx, ring, 1))

		require.NoError(t, c.UpdateQuantity(ctx, "a", 4))

		assert.Equal(t, 4, c.TotalItems())
	})

	t.Run("zero removes line", func(t *testing.T) {
		c, _ := setupCartTest(t)
		require.NoError(t, c.AddItem(ctx, ring, 1))
		require.NoError(t, c.AddItem(ctx, necklace, 1))

		require.NoError(t, c.UpdateQuantity(ctx, "a", 0))

		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "b", items[0].Product.ID)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		c, _ := setupCartTest(t)
		require.NoError(t, c.AddItem(ctx, ring, 1))

		require.NoError(t, c.UpdateQuantity(ctx, "zzz", 3))
		require.NoError(t, c.RemoveItem(ctx, "zzz"))

		assert.Equal(t, 1, c.TotalItems())
	})
}

func TestCart_ClearEmptiesAndZeroesTotal(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCartTest(t)
	require.NoError(t, c.AddItem(ctx, ring, 2))

	require.NoError(t, c.Clear(ctx))

	assert.Empty(t, c.Items())
	total, err := c.Total()
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestCart_PersistsAcrossLoads(t *testing.T) {
	ctx := context.Background()
	c, storage := setupCartTest(t)
	require.NoError(t, c.AddItem(ctx, ring, 2))
	require.NoError(t, c.AddItem(ctx, necklace, 1))

	reloaded, err := New(ctx, storage, StorageKey)
	require.NoError(t, err)

	assert.Equal(t, c.Items(), reloaded.Items())
}

func TestNew_DiscardsUnparsableData(t *testing.T) {
	storage := newMemoryStorage()
	storage.data[StorageKey] = []byte("{not json")

	c, err := New(context.Background(), storage, StorageKey)

	require.NoError(t, err)
	assert.Empty(t, c.Items())
}

func TestNew_ReturnsStorageFailure(t *testing.T) {
	storage := newMemoryStorage()
	storage.loadErr = errors.New("disk on fire")

	_, err := New(context.Background(), storage, StorageKey)

	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "amaretto-cart", Key(""))
	assert.Equal(t, "amaretto-cart:abc", Key("abc"))
}

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "carts")
	s := NewFileStorage(dir)

	_, err := s.Load(ctx, Key("x"))
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := New(ctx, s, Key("x"))
	require.NoError(t, err)
	require.NoError(t, c.AddItem(ctx, ring, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	reloaded, err := New(ctx, s, Key("x"))
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.TotalItems())
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	key := Key("test-" + time.Now().Format("150405.000000"))
	t.Cleanup(func() { client.Del(ctx, key) })

	s := NewRedisStorage(client, time.Minute)
	_, err := s.Load(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := New(ctx, s, key)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(ctx, necklace, 2))

	reloaded, err := New(ctx, s, key)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.TotalItems())
}
