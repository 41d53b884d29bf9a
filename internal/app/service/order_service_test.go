package service

import (
	"context"
	"strings"
	"testing"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	orders []*model.Order
}

func (n *recordingNotifier) NotifyOrderCreated(order *model.Order) {
	n.orders = append(n.orders, order)
}

// unreachableStore wraps a real pool but fails every probe
type unreachableStore struct {
	*db.Pool
}

func (s unreachableStore) Ping(ctx context.Context) error {
	return errPrimaryDown
}

type orderFixture struct {
	service  OrderService
	db       *gorm.DB
	notifier *recordingNotifier
	ring     *model.Product
	necklace *model.Product
}

func setupOrderServiceTest(t *testing.T) *orderFixture {
	t.Helper()
	pool, err := db.SetupTestPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(pool.DB())
	})

	ctx := context.Background()
	products := repository.NewProductRepository(pool.DB())

	ring := &model.Product{
		Name: "Anillo", Slug: "anillo", Description: "Plata", Price: 500,
		Category: model.CategoryRings, Stock: 5,
	}
	require.NoError(t, products.Create(ctx, ring))

	original, discount := 375.0, 300.0
	necklace := &model.Product{
		Name: "Collar", Slug: "collar", Description: "Oro", Price: 300,
		IsOnSale: true, OriginalPrice: &original, DiscountPrice: &discount,
		Category: model.CategoryNecklaces, Stock: 2,
	}
	require.NoError(t, products.Create(ctx, necklace))

	settings := NewSettingsService(pool, repository.NewSettingsRepository(pool.DB()), 0, "")
	notifier := &recordingNotifier{}

	return &orderFixture{
		service:  NewOrderService(pool, settings, notifier, 0),
		db:       pool.DB(),
		notifier: notifier,
		ring:     ring,
		necklace: necklace,
	}
}

func validOrderInput(lines ...OrderLineInput) SubmitOrderInput {
	return SubmitOrderInput{
		Items: lines,
		Customer: model.Customer{
			Name:  "María López",
			Email: "maria@example.com",
			Phone: "6141234567",
		},
		ShippingAddress: model.ShippingAddress{
			Street:     "Av. Reforma 100",
			City:       "Chihuahua",
			State:      "Chihuahua",
			PostalCode: "31000",
			Country:    "México",
		},
	}
}

func countOrders(t *testing.T, gdb *gorm.DB) (orders, items int64) {
	t.Helper()
	require.NoError(t, gdb.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, gdb.Model(&model.OrderItem{}).Count(&items).Error)
	return orders, items
}

func TestOrderService_SubmitOrder_Success(t *testing.T) {
	f := setupOrderServiceTest(t)

	result, err := f.service.SubmitOrder(context.Background(), validOrderInput(
		OrderLineInput{ProductID: f.ring.ID, Quantity: 2},
		OrderLineInput{ProductID: f.necklace.ID, Quantity: 1},
	))
	require.NoError(t, err)

	order := result.Order
	assert.NotZero(t, order.ID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 1300.0, order.Subtotal)
	assert.Equal(t, 150.0, order.ShippingCost)
	assert.Equal(t, 1450.0, order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, f.ring.ID, order.Items[0].ProductID)
	assert.Equal(t, 500.0, order.Items[0].Price)
	assert.Equal(t, 300.0, order.Items[1].Price)

	assert.True(t, strings.HasPrefix(result.WhatsAppURL, "https://wa.me/526141920272?text="))
	assert.Contains(t, result.WhatsAppMessage, "• Anillo x2 - $")
	assert.Contains(t, result.WhatsAppMessage, "• Collar x1 - $300 MXN")

	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, order.ID, f.notifier.orders[0].ID)

	stored, err := f.service.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "María López", stored.Customer.Name)
}

func TestOrderService_SubmitOrder_UsesLiveCatalogPrice(t *testing.T) {
	f := setupOrderServiceTest(t)
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", f.ring.ID).Update("price", 650).Error)

	result, err := f.service.SubmitOrder(context.Background(), validOrderInput(
		OrderLineInput{ProductID: f.ring.ID, Quantity: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, 650.0, result.Order.Items[0].Price)
	assert.Equal(t, 800.0, result.Order.Total)
}

func TestOrderService_SubmitOrder_EmptyCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.service.SubmitOrder(context.Background(), validOrderInput())

	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_SubmitOrder_DeletedProduct(t *testing.T) {
	f := setupOrderServiceTest(t)
	require.NoError(t, repository.NewProductRepository(f.db).Delete(context.Background(), f.necklace.ID))

	_, err := f.service.SubmitOrder(context.Background(), validOrderInput(
		OrderLineInput{ProductID: f.ring.ID, Quantity: 1},
		OrderLineInput{ProductID: f.necklace.ID, Quantity: 1},
	))

	assert.ErrorIs(t, err, ErrProductsUnavailable)
	orders, items := countOrders(t, f.db)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	assert.Empty(t, f.notifier.orders)
}

func TestOrderService_SubmitOrder_UnknownID(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.service.SubmitOrder(context.Background(), validOrderInput(
		OrderLineInput{ProductID: "file_1700000000000_abcdef123456", Quantity: 1},
	))

	assert.ErrorIs(t, err, ErrProductsUnavailable)
}

func TestOrderService_SubmitOrder_MergesRepeatedLines(t *testing.T) {
	f := setupOrderServiceTest(t)

	result, err := f.service.SubmitOrder(context.Background(), validOrderInput(
		OrderLineInput{ProductID: f.ring.ID, Quantity: 1},
		OrderLineInput{ProductID: f.ring.ID, Quantity: 2},
	))
	require.NoError(t, err)

	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, 3, result.Order.Items[0].Quantity)
	assert.Equal(t, 1650.0, result.Order.Total)
}

func TestOrderService_SubmitOrder_Validation(t *testing.T) {
	f := setupOrderServiceTest(t)

	tests := []struct {
		name   string
		mutate func(*SubmitOrderInput)
		field  string
	}{
		{"zero quantity", func(in *SubmitOrderInput) { in.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"blank product", func(in *SubmitOrderInput) { in.Items[0].ProductID = " " }, "items[0].product_id"},
		{"missing customer email", func(in *SubmitOrderInput) { in.Customer.Email = "" }, "customer.email"},
		{"missing postal code", func(in *SubmitOrderInput) { in.ShippingAddress.PostalCode = "" }, "shipping_address.postal_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validOrderInput(OrderLineInput{ProductID: f.ring.ID, Quantity: 1})
			tt.mutate(&input)

			_, err := f.service.SubmitOrder(context.Background(), input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	orders, _ := countOrders(t, f.db)
	assert.Zero(t, orders)
}

func TestOrderService_PrimaryUnreachable(t *testing.T) {
	pool, err := db.SetupTestPool()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(pool.DB()) })

	store := unreachableStore{pool}
	svc := NewOrderService(store, NewSettingsService(store, repository.NewSettingsRepository(pool.DB()), 0, ""), nil, 0)

	_, err = svc.SubmitOrder(context.Background(), validOrderInput(OrderLineInput{ProductID: "x", Quantity: 1}))
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.ListOrders(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestOrderService_ListAndGet(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	first, err := f.service.SubmitOrder(ctx, validOrderInput(OrderLineInput{ProductID: f.ring.ID, Quantity: 1}))
	require.NoError(t, err)
	second, err := f.service.SubmitOrder(ctx, validOrderInput(OrderLineInput{ProductID: f.necklace.ID, Quantity: 1}))
	require.NoError(t, err)

	orders, err := f.service.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.Order.ID, orders[0].ID)
	assert.Equal(t, first.Order.ID, orders[1].ID)

	_, err = f.service.GetOrder(ctx, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
