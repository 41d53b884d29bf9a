package db

import (
	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table the primary store owns
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Settings{},
		&model.HomepageFeatured{},
	}
}

// Migrate runs database migrations
func Migrate(gdb *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := gdb.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
