package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPool_PingSucceedsOnTestDB(t *testing.T) {
	pool, err := SetupTestPool()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(pool.DB()) })

	assert.NoError(t, pool.Ping(context.Background()))
}

func TestPool_PingMigratesOnFirstSuccess(t *testing.T) {
	gdb, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(gdb) })
	require.NoError(t, gdb.Migrator().DropTable(Models()...))

	pool := NewPool(gdb)
	require.NoError(t, pool.Ping(context.Background()))

	for _, m := range Models() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
}

func TestPool_PingFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err = NewPool(gdb).Ping(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
