package repository

import (
	"context"
	"errors"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HomepageFeaturedRepository interface {
	// Get returns the singleton, creating an empty one if absent
	Get(ctx context.Context) (*model.HomepageFeatured, error)
	Save(ctx context.Context, featured *model.HomepageFeatured) error
}

type homepageFeaturedRepository struct {
	db *gorm.DB
}

func NewHomepageFeaturedRepository(db *gorm.DB) HomepageFeaturedRepository {
	return &homepageFeaturedRepository{db: db}
}

func (r *homepageFeaturedRepository) Get(ctx context.Context) (*model.HomepageFeatured, error) {
	var featured model.HomepageFeatured
	err := r.db.WithContext(ctx).First(&featured, model.HomepageFeaturedID).Error
	if err == nil {
		return &featured, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to fetch homepage featured", err)
		return nil, err
	}

	featured = model.HomepageFeatured{ID: model.HomepageFeaturedID}
	if err := r.Save(ctx, &featured); err != nil {
		return nil, err
	}
	logger.Info("Homepage featured record created")
	return &featured, nil
}

func (r *homepageFeaturedRepository) Save(ctx context.Context, featured *model.HomepageFeatured) error {
	featured.ID = model.HomepageFeaturedID
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(featured).Error
	if err != nil {
		logger.Error("Failed to save homepage featured", err)
		return err
	}
	return nil
}
