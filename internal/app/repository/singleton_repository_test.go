package repository

import (
	"context"
	"testing"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_SaveUpserts(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	repo := NewSettingsRepository(testDB)
	ctx := context.Background()

	_, err = repo.Get(ctx)
	assert.ErrorIs(t, err, ErrSettingsNotFound)

	settings := model.DefaultSettings()
	require.NoError(t, repo.Save(ctx, &settings))

	settings.Phone = "614 555 0101"
	require.NoError(t, repo.Save(ctx, &settings))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SettingsID, stored.ID)
	assert.Equal(t, "614 555 0101", stored.Phone)

	var rows int64
	require.NoError(t, testDB.Model(&model.Settings{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestHomepageFeaturedRepository_GetCreatesEmptyRecord(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	repo := NewHomepageFeaturedRepository(testDB)
	ctx := context.Background()

	featured, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, featured.RingsProductID)

	featured.NecklacesProductID = "collar-id"
	require.NoError(t, repo.Save(ctx, featured))

	again, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "collar-id", again.NecklacesProductID)
	assert.Empty(t, again.BraceletsProductID)
}
