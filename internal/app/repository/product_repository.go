package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	apperrors "github.com/amaretto/amaretto-backend/internal/errors"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSlug   = errors.New("slug already in use")
)

// BackendKind names which store a ProductRepository writes to
type BackendKind string

const (
	BackendPrimary  BackendKind = "primary"
	BackendFallback BackendKind = "fallback"
)

// ProductFilter narrows List. A blank or CategoryAll category matches every
// product; Search matches name, description or any tag, case-insensitively.
type ProductFilter struct {
	Category model.ProductCategory
	Search   string
}

// ProductRepository is the CRUD surface shared by the primary database and the
// file-backed fallback.
type ProductRepository interface {
	Kind() BackendKind
	// IsID reports whether identifier has this backend's id shape
	IsID(identifier string) bool
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	// Update replaces every mutable field of product
	Update(ctx context.Context, product *model.Product) error
	UpdateStock(ctx context.Context, id string, stock int) error
	// UpdateSale writes only price and the sale fields
	UpdateSale(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Kind() BackendKind {
	return BackendPrimary
}

func (r *productRepository) IsID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"slug":     product.Slug,
		"category": product.Category,
	})

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			logger.Warn("Product slug conflict on insert", map[string]interface{}{
				"slug": product.Slug,
			})
			return ErrDuplicateSlug
		}
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *productRepository) findOne(ctx context.Context, query string, arg string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where(query, arg).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product from database", err, map[string]interface{}{
			"lookup": query,
			"value":  arg,
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to fetch products by ids", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		logger.Error("Failed to check slug uniqueness", err, map[string]interface{}{
			"slug": slug,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Listing products from database", map[string]interface{}{
		"category": filter.Category,
		"search":   filter.Search,
	})

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Category != "" && filter.Category != model.CategoryAll {
		q = q.Where("category = ?", filter.Category)
	}

	var products []model.Product
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"category": filter.Category,
		})
		return nil, err
	}

	// tags are a JSON column, so search runs per tag here rather than in SQL
	products = filterSearch(products, filter.Search)

	logger.Debug("Products listed from database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})

	result := r.db.WithContext(ctx).
		Model(&model.Product{ID: product.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(product)
	if result.Error != nil {
		if apperrors.IsUniqueViolation(result.Error) {
			return ErrDuplicateSlug
		}
		logger.Error("Failed to update product", result.Error, map[string]interface{}{
			"product_id": product.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	result := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("stock", stock)
	if result.Error != nil {
		logger.Error("Failed to update product stock", result.Error, map[string]interface{}{
			"product_id": id,
			"stock":      stock,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) UpdateSale(ctx context.Context, product *model.Product) error {
	result := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"price":          product.Price,
		"is_on_sale":     product.IsOnSale,
		"original_price": nullableFloat(product.OriginalPrice),
		"discount_price": nullableFloat(product.DiscountPrice),
	})
	if result.Error != nil {
		logger.Error("Failed to update product sale", result.Error, map[string]interface{}{
			"product_id": product.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if result.Error != nil {
		logger.Error("Failed to delete product", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// filterSearch keeps products whose name, description or any single tag contains
// search, case-insensitively. Both backends list through it.
func filterSearch(products []model.Product, search string) []model.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return products
	}
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if matchesSearch(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

func matchesSearch(p model.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
