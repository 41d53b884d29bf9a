package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/pricing"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/internal/metrics"
	"github.com/amaretto/amaretto-backend/internal/storage"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/amaretto/amaretto-backend/pkg/util"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateSlug    = errors.New("slug already in use")
	ErrStoreUnavailable = errors.New("product store unavailable")
)

// RestockQuantity is what ToggleStock sets on an out-of-stock product
const RestockQuantity = 10

// ValidationError reports every offending field with a user-facing message
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Prober checks that the primary store is reachable. *db.Pool satisfies it.
type Prober interface {
	Ping(ctx context.Context) error
}

// CatalogBackend is the store selected for one request: the primary database
// when it answered the probe, the file fallback otherwise. Writes made to one
// are never copied to the other.
type CatalogBackend struct {
	Kind     repository.BackendKind
	Products repository.ProductRepository
}

// ProductInput is an admin create or update submission. Price accepts a JSON
// number or a numeric string.
type ProductInput struct {
	Name          string      `json:"name"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description"`
	Price         interface{} `json:"price"`
	IsOnSale      bool        `json:"is_on_sale"`
	OriginalPrice *float64    `json:"original_price"`
	DiscountPrice *float64    `json:"discount_price"`
	Category      string      `json:"category"`
	Tags          []string    `json:"tags"`
	Material      string      `json:"material"`
	Measurements  string      `json:"measurements"`
	ClaspType     string      `json:"clasp_type"`
	Stock         *int        `json:"stock"`
	Images        []string    `json:"images"`
	Featured      bool        `json:"featured"`
	IsNew         bool        `json:"is_new"`
}

type CatalogService interface {
	Backend(ctx context.Context) CatalogBackend
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, repository.BackendKind, error)
	GetProduct(ctx context.Context, identifier string) (*model.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, identifier string, input ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, identifier string) error
	ToggleStock(ctx context.Context, identifier string) (*model.Product, error)
	SetSale(ctx context.Context, identifier string, on bool, discount *float64) (*model.Product, error)
}

type catalogService struct {
	prober       Prober
	primary      repository.ProductRepository
	fallback     repository.ProductRepository
	images       storage.ImageURLNormalizer
	probeTimeout time.Duration
}

func NewCatalogService(
	prober Prober,
	primary repository.ProductRepository,
	fallback repository.ProductRepository,
	images storage.ImageURLNormalizer,
	probeTimeout time.Duration,
) CatalogService {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &catalogService{
		prober:       prober,
		primary:      primary,
		fallback:     fallback,
		images:       images,
		probeTimeout: probeTimeout,
	}
}

// Backend probes the primary store and picks the backend for this request
// only. Nothing is cached between calls.
func (s *catalogService) Backend(ctx context.Context) CatalogBackend {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	if err := s.prober.Ping(probeCtx); err != nil {
		logger.Warn("Primary store unreachable, using file fallback", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.RecordCatalogBackend(string(repository.BackendFallback), true)
		return CatalogBackend{Kind: repository.BackendFallback, Products: s.fallback}
	}

	metrics.RecordCatalogBackend(string(repository.BackendPrimary), false)
	return CatalogBackend{Kind: repository.BackendPrimary, Products: s.primary}
}

// storeError maps repository failures onto the service's error kinds
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, repository.ErrDuplicateSlug):
		return ErrDuplicateSlug
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// resolve looks identifier up as an id when it has the backend's id shape, and
// as a slug otherwise or when the id lookup misses.
func resolve(ctx context.Context, repo repository.ProductRepository, identifier string) (*model.Product, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrProductNotFound
	}

	if repo.IsID(identifier) {
		product, err := repo.FindByID(ctx, identifier)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, repository.ErrProductNotFound) {
			return nil, storeError(err)
		}
	}

	product, err := repo.FindBySlug(ctx, identifier)
	if err != nil {
		return nil, storeError(err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, repository.BackendKind, error) {
	backend := s.Backend(ctx)

	logger.Debug("Listing products", map[string]interface{}{
		"backend":  backend.Kind,
		"category": filter.Category,
		"search":   filter.Search,
	})

	products, err := backend.Products.List(ctx, filter)
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"backend": backend.Kind,
		})
		return nil, backend.Kind, storeError(err)
	}
	return products, backend.Kind, nil
}

func (s *catalogService) GetProduct(ctx context.Context, identifier string) (*model.Product, error) {
	backend := s.Backend(ctx)

	product, err := resolve(ctx, backend.Products, identifier)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"identifier": identifier,
				"backend":    backend.Kind,
			})
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	product, err := s.buildProduct(input)
	if err != nil {
		return nil, err
	}

	backend := s.Backend(ctx)
	logger.Info("Creating product", map[string]interface{}{
		"slug":    product.Slug,
		"backend": backend.Kind,
	})

	taken, err := backend.Products.SlugExists(ctx, product.Slug, "")
	if err != nil {
		return nil, storeError(err)
	}
	if taken {
		logger.Warn("Product slug already in use", map[string]interface{}{
			"slug":    product.Slug,
			"backend": backend.Kind,
		})
		return nil, ErrDuplicateSlug
	}

	if err := backend.Products.Create(ctx, product); err != nil {
		return nil, storeError(err)
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
		"backend":    backend.Kind,
	})
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, identifier string, input ProductInput) (*model.Product, error) {
	updated, err := s.buildProduct(input)
	if err != nil {
		return nil, err
	}

	backend := s.Backend(ctx)
	existing, err := resolve(ctx, backend.Products, identifier)
	if err != nil {
		return nil, err
	}

	if updated.Slug != existing.Slug {
		taken, err := backend.Products.SlugExists(ctx, updated.Slug, existing.ID)
		if err != nil {
			return nil, storeError(err)
		}
		if taken {
			logger.Warn("Product slug already in use", map[string]interface{}{
				"slug":       updated.Slug,
				"product_id": existing.ID,
			})
			return nil, ErrDuplicateSlug
		}
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := backend.Products.Update(ctx, updated); err != nil {
		return nil, storeError(err)
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": updated.ID,
		"slug":       updated.Slug,
		"backend":    backend.Kind,
	})
	stored, err := backend.Products.FindByID(ctx, updated.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return stored, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, identifier string) error {
	backend := s.Backend(ctx)
	existing, err := resolve(ctx, backend.Products, identifier)
	if err != nil {
		return err
	}
	if err := backend.Products.Delete(ctx, existing.ID); err != nil {
		return storeError(err)
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": existing.ID,
		"slug":       existing.Slug,
		"backend":    backend.Kind,
	})
	return nil
}

// ToggleStock marks an in-stock product sold out, or restocks a sold-out one
// with RestockQuantity units.
func (s *catalogService) ToggleStock(ctx context.Context, identifier string) (*model.Product, error) {
	backend := s.Backend(ctx)
	product, err := resolve(ctx, backend.Products, identifier)
	if err != nil {
		return nil, err
	}

	stock := 0
	if !product.InStock() {
		stock = RestockQuantity
	}
	if err := backend.Products.UpdateStock(ctx, product.ID, stock); err != nil {
		return nil, storeError(err)
	}
	product.Stock = stock

	logger.Info("Product stock toggled", map[string]interface{}{
		"product_id": product.ID,
		"stock":      stock,
	})
	return product, nil
}

func (s *catalogService) SetSale(ctx context.Context, identifier string, on bool, discount *float64) (*model.Product, error) {
	backend := s.Backend(ctx)
	product, err := resolve(ctx, backend.Products, identifier)
	if err != nil {
		return nil, err
	}

	if on {
		if err := pricing.ApplySale(product, discount); err != nil {
			verr := newValidationError()
			verr.add("discount_price", "El precio de descuento debe ser mayor a cero")
			return nil, verr
		}
	} else {
		pricing.RemoveSale(product)
	}

	if err := backend.Products.UpdateSale(ctx, product); err != nil {
		return nil, storeError(err)
	}

	logger.Info("Product sale updated", map[string]interface{}{
		"product_id": product.ID,
		"on_sale":    product.IsOnSale,
		"price":      product.Price,
	})
	return product, nil
}

// buildProduct validates input and returns the record to store, with slug
// normalized, images normalized and the sale invariant applied.
func (s *catalogService) buildProduct(input ProductInput) (*model.Product, error) {
	verr := newValidationError()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		verr.add("name", "El nombre es obligatorio")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		verr.add("description", "La descripción es obligatoria")
	}

	price, ok, err := parsePrice(input.Price)
	switch {
	case !ok:
		verr.add("price", "El precio es obligatorio")
	case err != nil || math.IsNaN(price) || math.IsInf(price, 0):
		verr.add("price", "El precio debe ser numérico")
	case price < 0:
		verr.add("price", "El precio no puede ser negativo")
	}

	slug := util.NormalizeSlug(input.Slug)
	if slug == "" {
		slug = util.NormalizeSlug(name)
	}
	if slug == "" && name != "" {
		verr.add("slug", "No se pudo generar un slug válido a partir del nombre")
	}

	category := model.ProductCategory(strings.TrimSpace(input.Category))
	if category == "" {
		category = model.CategoryRings
	}
	if !category.Valid() {
		verr.add("category", "Categoría inválida. Usa: "+categoryList())
	}

	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	if stock < 0 {
		verr.add("stock", "El inventario no puede ser negativo")
	}

	images := s.normalizeImages(input.Images)
	if len(images) > model.MaxProductImages {
		verr.add("images", fmt.Sprintf("Máximo %d imágenes por producto", model.MaxProductImages))
	}

	product := &model.Product{
		Name:         name,
		Slug:         slug,
		Description:  description,
		Price:        price,
		Category:     category,
		Tags:         cleanTags(input.Tags),
		Material:     strings.TrimSpace(input.Material),
		Measurements: strings.TrimSpace(input.Measurements),
		ClaspType:    strings.TrimSpace(input.ClaspType),
		Stock:        stock,
		Images:       images,
		Featured:     input.Featured,
		IsNew:        input.IsNew,
	}

	if input.IsOnSale {
		switch {
		case input.DiscountPrice == nil:
			verr.add("discount_price", "El precio de descuento es obligatorio cuando el producto está en oferta")
		case *input.DiscountPrice <= 0:
			verr.add("discount_price", "El precio de descuento debe ser mayor a cero")
		default:
			original := price
			if input.OriginalPrice != nil {
				original = *input.OriginalPrice
			}
			discountPrice := *input.DiscountPrice
			product.IsOnSale = true
			product.OriginalPrice = &original
			product.DiscountPrice = &discountPrice
			product.Price = discountPrice
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) normalizeImages(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		var normalized string
		if s.images != nil {
			normalized = s.images.NormalizeImageURL(ref)
		} else {
			normalized = strings.TrimSpace(ref)
		}
		if normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// parsePrice reports ok=false when no price was supplied at all
func parsePrice(v interface{}) (price float64, ok bool, err error) {
	switch p := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return p, true, nil
	case int:
		return float64(p), true, nil
	case json.Number:
		f, err := p.Float64()
		return f, true, err
	case string:
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		return f, true, err
	default:
		return 0, true, fmt.Errorf("unsupported price type %T", v)
	}
}

func categoryList() string {
	names := make([]string, 0, 4)
	for _, c := range model.ProductCategories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
