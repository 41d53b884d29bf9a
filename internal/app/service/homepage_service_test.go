package service

import (
	"context"
	"testing"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomepageService(t *testing.T) {
	f := setupCatalogServiceTest(t)
	ctx := context.Background()
	ring, err := f.service.CreateProduct(ctx, validInput("Anillo Portada"))
	require.NoError(t, err)

	svc := NewHomepageService(f.prober, repository.NewHomepageFeaturedRepository(f.db), f.service, 0)

	t.Run("first read is empty", func(t *testing.T) {
		v, err := svc.GetFeatured(ctx)
		require.NoError(t, err)
		assert.Empty(t, v.Featured.RingsProductID)
		assert.Empty(t, v.Products)
	})

	t.Run("update resolves picks and skips dangling ids", func(t *testing.T) {
		v, err := svc.UpdateFeatured(ctx, HomepageFeaturedPatch{
			RingsProductID:    strPtr(ring.ID),
			EarringsProductID: strPtr("ya-no-existe"),
		})
		require.NoError(t, err)

		assert.Equal(t, "ya-no-existe", v.Featured.EarringsProductID)
		require.Contains(t, v.Products, model.CategoryRings)
		assert.Equal(t, ring.ID, v.Products[model.CategoryRings].ID)
		assert.NotContains(t, v.Products, model.CategoryEarrings)
	})

	t.Run("primary down", func(t *testing.T) {
		f.prober.err = errPrimaryDown
		t.Cleanup(func() { f.prober.err = nil })

		v, err := svc.GetFeatured(ctx)
		require.NoError(t, err)
		assert.Empty(t, v.Featured.RingsProductID)

		_, err = svc.UpdateFeatured(ctx, HomepageFeaturedPatch{})
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}
