package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/google/uuid"
)

// FileIDPrefix marks ids assigned by the fallback store. Primary ids are uuids,
// so the two shapes never collide.
const FileIDPrefix = "file_"

// ErrFallbackUnreadable means the fallback file exists but cannot be used
var ErrFallbackUnreadable = errors.New("fallback product file unreadable")

// fileProductRepository keeps the whole catalog in one JSON document. Every
// operation is a locked read-modify-write of that document; writes go through a
// temp file and rename so a crash never leaves a half-written catalog.
type fileProductRepository struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileProductRepository(path string) ProductRepository {
	return &fileProductRepository{path: path, now: time.Now}
}

func (r *fileProductRepository) Kind() BackendKind {
	return BackendFallback
}

func (r *fileProductRepository) IsID(identifier string) bool {
	return strings.HasPrefix(identifier, FileIDPrefix) && len(identifier) > len(FileIDPrefix)
}

func (r *fileProductRepository) newID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%d_%s", FileIDPrefix, r.now().UnixMilli(), suffix)
}

func (r *fileProductRepository) load() ([]model.Product, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Product{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrFallbackUnreadable, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFallbackUnreadable, err)
	}
	return products, nil
}

func (r *fileProductRepository) save(products []model.Product) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create fallback dir: %w", err)
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fallback products: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".products-*.json")
	if err != nil {
		return fmt.Errorf("create fallback temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write fallback temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close fallback temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace fallback file: %w", err)
	}
	return nil
}

func slugTaken(products []model.Product, slug, excludeID string) bool {
	for _, p := range products {
		if p.Slug == slug && p.ID != excludeID {
			return true
		}
	}
	return false
}

func indexOf(products []model.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *fileProductRepository) Create(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return err
	}
	if slugTaken(products, product.Slug, "") {
		logger.Warn("Product slug conflict in fallback store", map[string]interface{}{
			"slug": product.Slug,
		})
		return ErrDuplicateSlug
	}

	now := r.now()
	product.ID = r.newID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := r.save(append(products, *product)); err != nil {
		logger.Error("Failed to persist product to fallback store", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return err
	}

	logger.Info("Product created in fallback store", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func (r *fileProductRepository) find(match func(model.Product) bool) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if match(p) {
			found := p
			return &found, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *fileProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.find(func(p model.Product) bool { return p.ID == id })
}

func (r *fileProductRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.find(func(p model.Product) bool { return p.Slug == slug })
}

func (r *fileProductRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := []model.Product{}
	for _, p := range products {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fileProductRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return false, err
	}
	return slugTaken(products, slug, excludeID), nil
}

func (r *fileProductRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	r.mu.Lock()
	products, err := r.load()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := []model.Product{}
	for _, p := range products {
		if filter.Category != "" && filter.Category != model.CategoryAll && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	out = filterSearch(out, filter.Search)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// mutate applies fn to the stored record with the given id and saves the file
func (r *fileProductRepository) mutate(id string, fn func(products []model.Product, i int) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(products, id)
	if i < 0 {
		return ErrProductNotFound
	}
	if err := fn(products, i); err != nil {
		return err
	}
	products[i].UpdatedAt = r.now()
	return r.save(products)
}

func (r *fileProductRepository) Update(ctx context.Context, product *model.Product) error {
	return r.mutate(product.ID, func(products []model.Product, i int) error {
		if slugTaken(products, product.Slug, product.ID) {
			return ErrDuplicateSlug
		}
		product.CreatedAt = products[i].CreatedAt
		products[i] = *product
		return nil
	})
}

func (r *fileProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	return r.mutate(id, func(products []model.Product, i int) error {
		products[i].Stock = stock
		return nil
	})
}

func (r *fileProductRepository) UpdateSale(ctx context.Context, product *model.Product) error {
	return r.mutate(product.ID, func(products []model.Product, i int) error {
		products[i].Price = product.Price
		products[i].IsOnSale = product.IsOnSale
		products[i].OriginalPrice = product.OriginalPrice
		products[i].DiscountPrice = product.DiscountPrice
		return nil
	})
}

func (r *fileProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(products, id)
	if i < 0 {
		return ErrProductNotFound
	}
	return r.save(append(products[:i], products[i+1:]...))
}

func (r *fileProductRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(products)), nil
}
