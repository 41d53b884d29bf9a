package service

import (
	"context"

	"github.com/amaretto/amaretto-backend/internal/app/cart"
	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/pricing"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/amaretto/amaretto-backend/pkg/whatsapp"
)

// CartView is a cart with its totals, as returned to the client
type CartView struct {
	ID         string           `json:"id"`
	Items      []model.CartItem `json:"items"`
	TotalItems int              `json:"total_items"`
	pricing.Summary
}

type CheckoutLink struct {
	Message string  `json:"message"`
	URL     string  `json:"url"`
	Total   float64 `json:"total"`
}

// CartService mirrors a client's cart into server-side durable storage for
// clients that cannot keep it themselves. Products are snapshotted from the
// catalog when added.
type CartService interface {
	GetCart(ctx context.Context, cartID string) (*CartView, error)
	AddItem(ctx context.Context, cartID, productIdentifier string, quantity int) (*CartView, error)
	UpdateItem(ctx context.Context, cartID, productID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, cartID, productID string) (*CartView, error)
	ClearCart(ctx context.Context, cartID string) (*CartView, error)
	CheckoutLink(ctx context.Context, cartID string) (*CheckoutLink, error)
}

type cartService struct {
	storage  cart.Storage
	catalog  CatalogService
	settings SettingsService
}

func NewCartService(storage cart.Storage, catalog CatalogService, settings SettingsService) CartService {
	return &cartService{storage: storage, catalog: catalog, settings: settings}
}

func (s *cartService) open(ctx context.Context, cartID string) (*cart.Cart, error) {
	c, err := cart.New(ctx, s.storage, cart.Key(cartID))
	if err != nil {
		logger.Error("Failed to load cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}
	return c, nil
}

func newCartView(cartID string, c *cart.Cart) (*CartView, error) {
	summary, err := c.Summary()
	if err != nil {
		return nil, err
	}
	return &CartView{
		ID:         cartID,
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		Summary:    summary,
	}, nil
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (*CartView, error) {
	c, err := s.open(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return newCartView(cartID, c)
}

func (s *cartService) AddItem(ctx context.Context, cartID, productIdentifier string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, pricing.ErrInvalidQuantity
	}
	product, err := s.catalog.GetProduct(ctx, productIdentifier)
	if err != nil {
		return nil, err
	}

	c, err := s.open(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := c.AddItem(ctx, *product, quantity); err != nil {
		return nil, err
	}

	logger.Debug("Cart item added", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": product.ID,
		"quantity":   quantity,
	})
	return newCartView(cartID, c)
}

func (s *cartService) UpdateItem(ctx context.Context, cartID, productID string, quantity int) (*CartView, error) {
	c, err := s.open(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateQuantity(ctx, productID, quantity); err != nil {
		return nil, err
	}
	return newCartView(cartID, c)
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID string) (*CartView, error) {
	c, err := s.open(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(ctx, productID); err != nil {
		return nil, err
	}
	return newCartView(cartID, c)
}

func (s *cartService) ClearCart(ctx context.Context, cartID string) (*CartView, error) {
	c, err := s.open(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := c.Clear(ctx); err != nil {
		return nil, err
	}
	return newCartView(cartID, c)
}

// CheckoutLink renders the WhatsApp handoff for the cart as it stands, at the
// prices of the stored snapshots
func (s *cartService) CheckoutLink(ctx context.Context, cartID string) (*CheckoutLink, error) {
	c, err := s.open(ctx, cartID)
	if err != nil {
		return nil, err
	}
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	total, err := pricing.Total(lines)
	if err != nil {
		return nil, err
	}

	message := whatsapp.ComposeOrderMessage(lines, total)
	return &CheckoutLink{
		Message: message,
		URL:     whatsapp.Link(s.settings.WhatsAppNumber(ctx), message),
		Total:   total,
	}, nil
}
