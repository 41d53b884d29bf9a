package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/pkg/logger"
)

type HomepageFeaturedPatch struct {
	RingsProductID     *string `json:"rings_product_id"`
	EarringsProductID  *string `json:"earrings_product_id"`
	NecklacesProductID *string `json:"necklaces_product_id"`
	BraceletsProductID *string `json:"bracelets_product_id"`
}

// FeaturedView is the stored picks plus whatever of them still resolves
type FeaturedView struct {
	Featured *model.HomepageFeatured                   `json:"featured"`
	Products map[model.ProductCategory]*model.Product `json:"products"`
}

type HomepageService interface {
	GetFeatured(ctx context.Context) (*FeaturedView, error)
	UpdateFeatured(ctx context.Context, patch HomepageFeaturedPatch) (*FeaturedView, error)
}

type homepageService struct {
	prober       Prober
	featuredRepo repository.HomepageFeaturedRepository
	catalog      CatalogService
	probeTimeout time.Duration
}

func NewHomepageService(prober Prober, featuredRepo repository.HomepageFeaturedRepository, catalog CatalogService, probeTimeout time.Duration) HomepageService {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &homepageService{
		prober:       prober,
		featuredRepo: featuredRepo,
		catalog:      catalog,
		probeTimeout: probeTimeout,
	}
}

func (s *homepageService) reachable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	return s.prober.Ping(probeCtx) == nil
}

// GetFeatured serves an empty selection while the primary store is down
func (s *homepageService) GetFeatured(ctx context.Context) (*FeaturedView, error) {
	if !s.reachable(ctx) {
		logger.Warn("Primary store unreachable, serving empty homepage selection")
		return s.view(ctx, &model.HomepageFeatured{ID: model.HomepageFeaturedID}), nil
	}

	featured, err := s.featuredRepo.Get(ctx)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	return s.view(ctx, featured), nil
}

func (s *homepageService) UpdateFeatured(ctx context.Context, patch HomepageFeaturedPatch) (*FeaturedView, error) {
	if !s.reachable(ctx) {
		return nil, ErrStoreUnavailable
	}

	featured, err := s.featuredRepo.Get(ctx)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{patch.RingsProductID, &featured.RingsProductID},
		{patch.EarringsProductID, &featured.EarringsProductID},
		{patch.NecklacesProductID, &featured.NecklacesProductID},
		{patch.BraceletsProductID, &featured.BraceletsProductID},
	} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}

	if err := s.featuredRepo.Save(ctx, featured); err != nil {
		return nil, ErrStoreUnavailable
	}
	logger.Info("Homepage featured updated", map[string]interface{}{
		"rings":     featured.RingsProductID,
		"earrings":  featured.EarringsProductID,
		"necklaces": featured.NecklacesProductID,
		"bracelets": featured.BraceletsProductID,
	})
	return s.view(ctx, featured), nil
}

// view resolves each pick through the catalog. Dangling ids are left out.
func (s *homepageService) view(ctx context.Context, featured *model.HomepageFeatured) *FeaturedView {
	v := &FeaturedView{Featured: featured, Products: map[model.ProductCategory]*model.Product{}}
	for category, id := range map[model.ProductCategory]string{
		model.CategoryRings:     featured.RingsProductID,
		model.CategoryEarrings:  featured.EarringsProductID,
		model.CategoryNecklaces: featured.NecklacesProductID,
		model.CategoryBracelets: featured.BraceletsProductID,
	} {
		if id == "" {
			continue
		}
		product, err := s.catalog.GetProduct(ctx, id)
		if err != nil {
			if !errors.Is(err, ErrProductNotFound) {
				logger.Warn("Failed to resolve featured product", map[string]interface{}{
					"category":   category,
					"product_id": id,
					"error":      err.Error(),
				})
			}
			continue
		}
		v.Products[category] = product
	}
	return v
}
