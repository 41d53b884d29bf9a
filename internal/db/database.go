package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/amaretto/amaretto-backend/config"
	appLogger "github.com/amaretto/amaretto-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool owns the primary database handle. It is created once by the composition
// root and closed by it; nothing else keeps a reference to the raw connection.
type Pool struct {
	db *gorm.DB

	migrateMu sync.Mutex
	migrated  bool
}

// Open connects lazily: a database that is down at startup yields a usable Pool
// whose Ping fails until the database comes back.
func Open(cfg *config.DatabaseConfig) (*Pool, error) {
	appLogger.Info("Opening database pool", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)

	appLogger.Info("Database pool ready", map[string]interface{}{
		"max_idle_conns": 10,
		"max_open_conns": 50,
	})
	return NewPool(gdb), nil
}

// NewPool wraps an existing handle (tests, sqlmock)
func NewPool(gdb *gorm.DB) *Pool {
	return &Pool{db: gdb}
}

func (p *Pool) DB() *gorm.DB {
	return p.db
}

// Ping checks connectivity and, the first time it succeeds, brings the schema
// up to date.
func (p *Pool) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	return p.ensureMigrated(ctx)
}

func (p *Pool) ensureMigrated(ctx context.Context) error {
	p.migrateMu.Lock()
	defer p.migrateMu.Unlock()
	if p.migrated {
		return nil
	}
	if err := Migrate(p.db.WithContext(ctx)); err != nil {
		return err
	}
	p.migrated = true
	return nil
}

// MarkMigrated skips the lazy migration, for handles whose schema is already set up
func (p *Pool) MarkMigrated() {
	p.migrateMu.Lock()
	p.migrated = true
	p.migrateMu.Unlock()
}

func (p *Pool) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
