// Package cart is the client-held shopping cart: an ordered list of product
// snapshots and quantities written through to durable Storage on every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/pricing"
	"github.com/amaretto/amaretto-backend/pkg/logger"
)

// StorageKey is the fixed namespace carts are persisted under
const StorageKey = "amaretto-cart"

// Key scopes StorageKey to one client when several share a Storage
func Key(clientID string) string {
	if clientID == "" {
		return StorageKey
	}
	return StorageKey + ":" + clientID
}

type Cart struct {
	mu      sync.Mutex
	items   []model.CartItem
	storage Storage
	key     string
}

// New loads the cart stored under key. Missing or unparsable data yields an
// empty cart; only a storage read failure is returned.
func New(ctx context.Context, storage Storage, key string) (*Cart, error) {
	c := &Cart{storage: storage, key: key, items: []model.CartItem{}}

	data, err := storage.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	var items []model.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Debug("Discarding unparsable stored cart", map[string]interface{}{
			"key": key,
		})
		return c, nil
	}
	for _, item := range items {
		if item.Quantity >= 1 && item.Product.ID != "" {
			c.items = append(c.items, item)
		}
	}
	return c, nil
}

func (c *Cart) persist(ctx context.Context) error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return err
	}
	return c.storage.Save(ctx, c.key, data)
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds quantity units of product, merging with an existing line
func (c *Cart) AddItem(ctx context.Context, product model.Product, quantity int) error {
	if quantity < 1 {
		return pricing.ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(product.ID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, model.CartItem{Product: product, Quantity: quantity})
	}
	return c.persist(ctx)
}

// RemoveItem drops the line for productID; absent ids are a no-op
func (c *Cart) RemoveItem(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(ctx, productID)
}

func (c *Cart) removeLocked(ctx context.Context, productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.persist(ctx)
}

// UpdateQuantity sets a line's quantity exactly; quantity <= 0 removes it
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		return c.removeLocked(ctx, productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity = quantity
	return c.persist(ctx)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []model.CartItem{}
	return c.persist(ctx)
}

// Items returns a copy of the lines in insertion order
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Lines prices every item at its snapshot's effective price
func (c *Cart) Lines() []pricing.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]pricing.Line, 0, len(c.items))
	for _, item := range c.items {
		lines = append(lines, pricing.LineFromItem(item))
	}
	return lines
}

func (c *Cart) Subtotal() (float64, error) {
	return pricing.Subtotal(c.Lines())
}

func (c *Cart) Total() (float64, error) {
	return pricing.Total(c.Lines())
}

func (c *Cart) Summary() (pricing.Summary, error) {
	return pricing.Summarize(c.Lines())
}
