package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

type repoFactory func(t *testing.T) ProductRepository

func backends() map[string]repoFactory {
	return map[string]repoFactory{
		"primary": func(t *testing.T) ProductRepository {
			testDB, err := db.SetupTestDB()
			require.NoError(t, err)
			t.Cleanup(func() { db.CleanupTestDB(testDB) })
			return NewProductRepository(testDB)
		},
		"fallback": func(t *testing.T) ProductRepository {
			return NewFileProductRepository(filepath.Join(t.TempDir(), "data", "products.json"))
		},
	}
}

func newProduct(name, slug string, category model.ProductCategory) *model.Product {
	return &model.Product{
		Name:        name,
		Slug:        slug,
		Description: "Pieza de plata .925",
		Price:       450,
		Category:    category,
		Stock:       3,
		Tags:        []string{},
		Images:      []string{},
	}
}

func TestProductRepository_CreateAndFind(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			p := newProduct("Anillo Luna", "anillo-luna", model.CategoryRings)
			require.NoError(t, repo.Create(ctx, p))
			require.NotEmpty(t, p.ID)
			assert.True(t, repo.IsID(p.ID))
			assert.False(t, repo.IsID(p.Slug))
			assert.False(t, p.CreatedAt.IsZero())

			byID, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "anillo-luna", byID.Slug)

			bySlug, err := repo.FindBySlug(ctx, "anillo-luna")
			require.NoError(t, err)
			assert.Equal(t, p.ID, bySlug.ID)

			_, err = repo.FindBySlug(ctx, "missing")
			assert.ErrorIs(t, err, ErrProductNotFound)
		})
	}
}

func TestProductRepository_DuplicateSlugRejected(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			require.NoError(t, repo.Create(ctx, newProduct("Anillo", "anillo", model.CategoryRings)))
			err := repo.Create(ctx, newProduct("Anillo 2", "anillo", model.CategoryRings))
			assert.ErrorIs(t, err, ErrDuplicateSlug)

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestProductRepository_List(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			minimalRing := newProduct("Anillo Minimal", "anillo-minimal", model.CategoryRings)
			taggedRing := newProduct("Anillo Sol", "anillo-sol", model.CategoryRings)
			taggedRing.Tags = []string{"MINIMALISTA", "oro"}
			plainRing := newProduct("Anillo Grande", "anillo-grande", model.CategoryRings)
			minimalNecklace := newProduct("Collar Minimal", "collar-minimal", model.CategoryNecklaces)

			for _, p := range []*model.Product{minimalRing, taggedRing, plainRing, minimalNecklace} {
				require.NoError(t, repo.Create(ctx, p))
				time.Sleep(2 * time.Millisecond)
			}

			all, err := repo.List(ctx, ProductFilter{Category: model.CategoryAll})
			require.NoError(t, err)
			require.Len(t, all, 4)
			assert.Equal(t, "collar-minimal", all[0].Slug, "newest first")

			rings, err := repo.List(ctx, ProductFilter{Category: model.CategoryRings, Search: "minimal"})
			require.NoError(t, err)
			slugs := []string{}
			for _, p := range rings {
				slugs = append(slugs, p.Slug)
			}
			assert.ElementsMatch(t, []string{"anillo-minimal", "anillo-sol"}, slugs)

			byDescription, err := repo.List(ctx, ProductFilter{Search: "PLATA"})
			require.NoError(t, err)
			assert.Len(t, byDescription, 4)

			none, err := repo.List(ctx, ProductFilter{Search: "100%"})
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestProductRepository_ListSearchMatchesSingleTags(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			mixed := newProduct("Pulsera Dúo", "pulsera-duo", model.CategoryBracelets)
			mixed.Description = "Eslabones"
			mixed.Tags = []string{"Oro & Plata", "<edición>"}
			colors := newProduct("Arete Color", "arete-color", model.CategoryEarrings)
			colors.Description = "Esmalte"
			colors.Tags = []string{"azul", "verde"}
			require.NoError(t, repo.Create(ctx, mixed))
			require.NoError(t, repo.Create(ctx, colors))

			tests := []struct {
				search string
				want   []string
			}{
				{"oro & plata", []string{"pulsera-duo"}},
				{"<EDICIÓN>", []string{"pulsera-duo"}},
				{"verde", []string{"arete-color"}},
				{`l","v`, []string{}},
				{"azulverde", []string{}},
				{`"azul"`, []string{}},
			}
			for _, tt := range tests {
				products, err := repo.List(ctx, ProductFilter{Category: model.CategoryAll, Search: tt.search})
				require.NoError(t, err)
				slugs := []string{}
				for _, p := range products {
					slugs = append(slugs, p.Slug)
				}
				assert.ElementsMatch(t, tt.want, slugs, "search %q", tt.search)
			}
		})
	}
}

func TestProductRepository_Update(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			a := newProduct("Aretes Perla", "aretes-perla", model.CategoryEarrings)
			b := newProduct("Aretes Oro", "aretes-oro", model.CategoryEarrings)
			require.NoError(t, repo.Create(ctx, a))
			require.NoError(t, repo.Create(ctx, b))

			a.Name = "Aretes Perla Grande"
			a.Stock = 0
			a.Featured = true
			require.NoError(t, repo.Update(ctx, a))

			got, err := repo.FindByID(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, "Aretes Perla Grande", got.Name)
			assert.Equal(t, 0, got.Stock)
			assert.True(t, got.Featured)

			a.Slug = "aretes-oro"
			assert.ErrorIs(t, repo.Update(ctx, a), ErrDuplicateSlug)

			missing := newProduct("x", "x", model.CategoryRings)
			missing.ID = "does-not-exist"
			assert.ErrorIs(t, repo.Update(ctx, missing), ErrProductNotFound)
		})
	}
}

func TestProductRepository_NarrowUpdates(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			p := newProduct("Pulsera", "pulsera", model.CategoryBracelets)
			require.NoError(t, repo.Create(ctx, p))

			require.NoError(t, repo.UpdateStock(ctx, p.ID, 10))

			p.Price = 360
			p.IsOnSale = true
			p.OriginalPrice = floatPtr(450)
			p.DiscountPrice = floatPtr(360)
			p.Name = "ignored by sale update"
			require.NoError(t, repo.UpdateSale(ctx, p))

			got, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 10, got.Stock)
			assert.Equal(t, "Pulsera", got.Name)
			assert.True(t, got.IsOnSale)
			assert.Equal(t, 360.0, got.Price)
			require.NotNil(t, got.OriginalPrice)
			assert.Equal(t, 450.0, *got.OriginalPrice)

			got.IsOnSale = false
			got.Price = 450
			got.OriginalPrice = nil
			got.DiscountPrice = nil
			require.NoError(t, repo.UpdateSale(ctx, got))

			again, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Nil(t, again.OriginalPrice)
			assert.Nil(t, again.DiscountPrice)

			assert.ErrorIs(t, repo.UpdateStock(ctx, "nope", 1), ErrProductNotFound)
		})
	}
}

func TestProductRepository_FindByIDsAndDelete(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			a := newProduct("A", "a", model.CategoryRings)
			b := newProduct("B", "b", model.CategoryRings)
			require.NoError(t, repo.Create(ctx, a))
			require.NoError(t, repo.Create(ctx, b))

			found, err := repo.FindByIDs(ctx, []string{a.ID, b.ID, "ghost"})
			require.NoError(t, err)
			assert.Len(t, found, 2)

			require.NoError(t, repo.Delete(ctx, a.ID))
			assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrProductNotFound)

			exists, err := repo.SlugExists(ctx, "a", "")
			require.NoError(t, err)
			assert.False(t, exists)

			exists, err = repo.SlugExists(ctx, "b", b.ID)
			require.NoError(t, err)
			assert.False(t, exists)

			exists, err = repo.SlugExists(ctx, "b", "")
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestFileProductRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	repo := NewFileProductRepository(path)

	_, err := repo.List(context.Background(), ProductFilter{})
	assert.ErrorIs(t, err, ErrFallbackUnreadable)

	err = repo.Create(context.Background(), newProduct("x", "x", model.CategoryRings))
	assert.ErrorIs(t, err, ErrFallbackUnreadable)
}

func TestFileProductRepository_MissingFileIsEmpty(t *testing.T) {
	repo := NewFileProductRepository(filepath.Join(t.TempDir(), "nested", "products.json"))

	products, err := repo.List(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestFileProductRepository_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	ctx := context.Background()

	first := NewFileProductRepository(path)
	p := newProduct("Collar", "collar", model.CategoryNecklaces)
	require.NoError(t, first.Create(ctx, p))

	second := NewFileProductRepository(path)
	got, err := second.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "collar", got.Slug)
}
