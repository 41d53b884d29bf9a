package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/pricing"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/internal/metrics"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/amaretto/amaretto-backend/pkg/whatsapp"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrProductsUnavailable = errors.New("some products are no longer available")
)

// PrimaryStore is the database behind orders. *db.Pool satisfies it.
type PrimaryStore interface {
	Prober
	DB() *gorm.DB
}

// OrderNotifier is told about every order after it is committed
type OrderNotifier interface {
	NotifyOrderCreated(order *model.Order)
}

type OrderLineInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SubmitOrderInput struct {
	Items           []OrderLineInput      `json:"items"`
	Customer        model.Customer        `json:"customer"`
	ShippingAddress model.ShippingAddress `json:"shipping_address"`
	Notes           string                `json:"notes"`
}

// SubmitOrderResult is the stored order plus its checkout handoff
type SubmitOrderResult struct {
	Order           *model.Order `json:"order"`
	WhatsAppMessage string       `json:"whatsapp_message"`
	WhatsAppURL     string       `json:"whatsapp_url"`
}

type OrderService interface {
	SubmitOrder(ctx context.Context, input SubmitOrderInput) (*SubmitOrderResult, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
}

type orderService struct {
	store        PrimaryStore
	settings     SettingsService
	notifier     OrderNotifier
	probeTimeout time.Duration
}

func NewOrderService(store PrimaryStore, settings SettingsService, notifier OrderNotifier, probeTimeout time.Duration) OrderService {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &orderService{
		store:        store,
		settings:     settings,
		notifier:     notifier,
		probeTimeout: probeTimeout,
	}
}

func (s *orderService) requirePrimary(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	if err := s.store.Ping(probeCtx); err != nil {
		logger.Error("Primary store unreachable for orders", err)
		return ErrStoreUnavailable
	}
	return nil
}

// mergeLines validates submitted lines and folds repeated product ids into the
// first occurrence
func mergeLines(items []OrderLineInput) ([]OrderLineInput, error) {
	verr := newValidationError()
	merged := make([]OrderLineInput, 0, len(items))
	index := make(map[string]int, len(items))

	for i, item := range items {
		id := strings.TrimSpace(item.ProductID)
		if id == "" {
			verr.add(fmt.Sprintf("items[%d].product_id", i), "El producto es obligatorio")
			continue
		}
		if item.Quantity < 1 {
			verr.add(fmt.Sprintf("items[%d].quantity", i), "La cantidad debe ser un entero positivo")
			continue
		}
		if j, ok := index[id]; ok {
			merged[j].Quantity += item.Quantity
			continue
		}
		index[id] = len(merged)
		merged = append(merged, OrderLineInput{ProductID: id, Quantity: item.Quantity})
	}
	return merged, verr.orNil()
}

func validateContact(customer model.Customer, address model.ShippingAddress) error {
	verr := newValidationError()
	for _, f := range []struct {
		field, value, message string
	}{
		{"customer.name", customer.Name, "El nombre es obligatorio"},
		{"customer.email", customer.Email, "El correo electrónico es obligatorio"},
		{"customer.phone", customer.Phone, "El teléfono es obligatorio"},
		{"shipping_address.street", address.Street, "La calle es obligatoria"},
		{"shipping_address.city", address.City, "La ciudad es obligatoria"},
		{"shipping_address.state", address.State, "El estado es obligatorio"},
		{"shipping_address.postal_code", address.PostalCode, "El código postal es obligatorio"},
		{"shipping_address.country", address.Country, "El país es obligatorio"},
	} {
		if strings.TrimSpace(f.value) == "" {
			verr.add(f.field, f.message)
		}
	}
	return verr.orNil()
}

// SubmitOrder prices the cart against the live catalog and stores it as one
// pending order. Client-side prices are never trusted.
func (s *orderService) SubmitOrder(ctx context.Context, input SubmitOrderInput) (*SubmitOrderResult, error) {
	if len(input.Items) == 0 {
		logger.Warn("Cannot create order: cart is empty")
		metrics.RecordOrderSubmission("empty_cart", 0)
		return nil, ErrEmptyCart
	}

	lines, lineErr := mergeLines(input.Items)
	contactErr := validateContact(input.Customer, input.ShippingAddress)
	if err := joinValidation(lineErr, contactErr); err != nil {
		metrics.RecordOrderSubmission("invalid", 0)
		return nil, err
	}

	if err := s.requirePrimary(ctx); err != nil {
		metrics.RecordOrderSubmission("store_unavailable", 0)
		return nil, err
	}

	logger.Info("Creating order", map[string]interface{}{
		"customer_email": input.Customer.Email,
		"lines":          len(lines),
	})

	var order *model.Order
	err := s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, len(lines))
		for i, line := range lines {
			ids[i] = line.ProductID
		}

		products, err := repository.NewProductRepository(tx).FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[string]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		if len(byID) != len(ids) {
			missing := []string{}
			for _, id := range ids {
				if _, ok := byID[id]; !ok {
					missing = append(missing, id)
				}
			}
			logger.Warn("Order references unavailable products", map[string]interface{}{
				"missing": missing,
			})
			return ErrProductsUnavailable
		}

		priced := make([]pricing.Line, len(lines))
		items := make([]model.OrderItem, len(lines))
		for i, line := range lines {
			p := byID[line.ProductID]
			priced[i] = pricing.Line{
				ProductID: p.ID,
				Name:      p.Name,
				UnitPrice: pricing.EffectivePrice(p),
				Quantity:  line.Quantity,
			}
			items[i] = model.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     priced[i].UnitPrice,
				Quantity:  line.Quantity,
			}
		}

		summary, err := pricing.Summarize(priced)
		if err != nil {
			return err
		}

		order = &model.Order{
			Customer:        trimCustomer(input.Customer),
			ShippingAddress: trimAddress(input.ShippingAddress),
			Subtotal:        summary.Subtotal,
			ShippingCost:    summary.ShippingCost,
			Total:           summary.Total,
			Status:          model.OrderStatusPending,
			Notes:           strings.TrimSpace(input.Notes),
			Items:           items,
		}
		return repository.NewOrderRepository(tx).Create(ctx, order)
	})
	if err != nil {
		if errors.Is(err, ErrProductsUnavailable) {
			metrics.RecordOrderSubmission("products_unavailable", 0)
			return nil, err
		}
		logger.Error("Failed to create order", err, map[string]interface{}{
			"customer_email": input.Customer.Email,
		})
		metrics.RecordOrderSubmission("store_unavailable", 0)
		return nil, ErrStoreUnavailable
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
		"items":    len(order.Items),
	})
	metrics.RecordOrderSubmission("accepted", order.Total)

	if s.notifier != nil {
		s.notifier.NotifyOrderCreated(order)
	}

	message := whatsapp.ComposeOrderMessage(orderLines(order), order.Total)
	return &SubmitOrderResult{
		Order:           order,
		WhatsAppMessage: message,
		WhatsAppURL:     whatsapp.Link(s.settings.WhatsAppNumber(ctx), message),
	}, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	if err := s.requirePrimary(ctx); err != nil {
		return nil, err
	}
	orders, err := repository.NewOrderRepository(s.store.DB()).FindAll(ctx)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	if err := s.requirePrimary(ctx); err != nil {
		return nil, err
	}
	order, err := repository.NewOrderRepository(s.store.DB()).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"order_id": id,
			})
			return nil, ErrOrderNotFound
		}
		return nil, ErrStoreUnavailable
	}
	return order, nil
}

func orderLines(order *model.Order) []pricing.Line {
	lines := make([]pricing.Line, len(order.Items))
	for i, item := range order.Items {
		lines[i] = pricing.Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		}
	}
	return lines
}

func joinValidation(errs ...error) error {
	joined := newValidationError()
	for _, err := range errs {
		var verr *ValidationError
		if errors.As(err, &verr) {
			for field, msg := range verr.Fields {
				joined.add(field, msg)
			}
		}
	}
	return joined.orNil()
}

func trimCustomer(c model.Customer) model.Customer {
	return model.Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func trimAddress(a model.ShippingAddress) model.ShippingAddress {
	return model.ShippingAddress{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
