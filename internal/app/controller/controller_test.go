package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amaretto/amaretto-backend/config"
	"github.com/amaretto/amaretto-backend/internal/app/cart"
	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/amaretto/amaretto-backend/internal/db"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/amaretto/amaretto-backend/internal/storage"
	ws "github.com/amaretto/amaretto-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret     = "controller-test-secret"
	testAdminUser     = "admin"
	testAdminPassword = "secreto-amaretto"
	testImageBase     = "https://cdn.amaretto.test"
)

// switchStore is the test primary database; setting down makes every probe fail
type switchStore struct {
	*db.Pool
	down bool
}

func (s *switchStore) Ping(ctx context.Context) error {
	if s.down {
		return errors.New("connection refused")
	}
	return s.Pool.Ping(ctx)
}

type stubImageHost struct {
	storage.BaseURLNormalizer
	presignErr error
	images     []storage.ImageObject
	folders    []string
}

func (h *stubImageHost) GeneratePresignedURLWithFolder(ctx context.Context, filename, contentType, folder string) (*storage.PresignedURLResponse, error) {
	if h.presignErr != nil {
		return nil, h.presignErr
	}
	h.folders = append(h.folders, folder)
	key := fmt.Sprintf("%s/%d-%s", folder, len(h.folders), filename)
	return &storage.PresignedURLResponse{
		UploadURL: "https://upload.test/" + key + "?X-Amz-Signature=abc",
		FileURL:   h.NormalizeImageURL(key),
		Key:       key,
	}, nil
}

func (h *stubImageHost) ListImages(ctx context.Context, folder string, maxResults int) ([]storage.ImageObject, error) {
	h.folders = append(h.folders, folder)
	if len(h.images) > maxResults {
		return h.images[:maxResults], nil
	}
	return h.images, nil
}

type testServer struct {
	router   *gin.Engine
	store    *switchStore
	db       *gorm.DB
	products repository.ProductRepository
	fallback repository.ProductRepository
	images   *stubImageHost
	hub      *ws.Hub
	token    string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	pool, err := db.SetupTestPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(pool.DB())
	})

	store := &switchStore{Pool: pool}
	dir := t.TempDir()
	images := &stubImageHost{BaseURLNormalizer: storage.BaseURLNormalizer(testImageBase)}

	primary := repository.NewProductRepository(pool.DB())
	fallback := repository.NewFileProductRepository(filepath.Join(dir, "products.json"))

	catalog := service.NewCatalogService(store, primary, fallback, images, time.Second)
	settings := service.NewSettingsService(store, repository.NewSettingsRepository(pool.DB()), time.Second, "")
	homepage := service.NewHomepageService(store, repository.NewHomepageFeaturedRepository(pool.DB()), catalog, time.Second)
	hub := ws.NewHub(nil)
	orders := service.NewOrderService(store, settings, hub, time.Second)
	reports := service.NewReportService(orders)
	carts := service.NewCartService(cart.NewFileStorage(filepath.Join(dir, "carts")), catalog, settings)
	diagnostics := service.NewDiagnosticsService(store, primary, fallback, time.Second)
	revocations := service.NewMemoryRevocations()
	auth := service.NewAuthService(config.AdminConfig{
		Username:      testAdminUser,
		Password:      testAdminPassword,
		JWTSecret:     testJWTSecret,
		SessionExpiry: time.Hour,
	}, revocations)

	session, err := auth.Login(testAdminUser, testAdminPassword)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	admin := middleware.NewAuthMiddleware(testJWTSecret, revocations).RequireAdmin()

	authCtl := NewAuthController(auth, false)
	productCtl := NewProductController(catalog)
	orderCtl := NewOrderController(orders, reports)
	cartCtl := NewCartController(carts)
	settingsCtl := NewSettingsController(settings, homepage)
	uploadCtl := NewUploadController(images)
	diagnosticsCtl := NewDiagnosticsController(diagnostics)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", authCtl.Login)
	v1.POST("/auth/logout", authCtl.Logout)
	v1.GET("/auth/me", admin, authCtl.Me)

	v1.GET("/products", productCtl.ListProducts)
	v1.GET("/products/:identifier", productCtl.GetProduct)
	v1.POST("/products", admin, productCtl.CreateProduct)
	v1.PUT("/products/:identifier", admin, productCtl.UpdateProduct)
	v1.DELETE("/products/:identifier", admin, productCtl.DeleteProduct)
	v1.PATCH("/products/:identifier/stock", admin, productCtl.ToggleStock)
	v1.PATCH("/products/:identifier/sale", admin, productCtl.SetSale)

	v1.POST("/orders", orderCtl.SubmitOrder)
	v1.GET("/orders", admin, orderCtl.ListOrders)
	v1.GET("/orders/:id", admin, orderCtl.GetOrder)
	v1.GET("/admin/orders/export", admin, orderCtl.ExportOrders)
	v1.GET("/admin/diagnostics/db", admin, diagnosticsCtl.StoreStatus)

	v1.GET("/settings", settingsCtl.GetSettings)
	v1.PUT("/settings", admin, settingsCtl.UpdateSettings)
	v1.POST("/settings/reset-content", admin, settingsCtl.ResetContent)
	v1.GET("/homepage-featured", settingsCtl.GetHomepageFeatured)
	v1.PUT("/homepage-featured", admin, settingsCtl.UpdateHomepageFeatured)

	v1.GET("/cart", cartCtl.GetCart)
	v1.POST("/cart/items", cartCtl.AddToCart)
	v1.PUT("/cart/items/:productId", cartCtl.UpdateCartItem)
	v1.DELETE("/cart/items/:productId", cartCtl.RemoveFromCart)
	v1.DELETE("/cart", cartCtl.ClearCart)
	v1.POST("/cart/checkout-link", cartCtl.CheckoutLink)

	v1.POST("/upload/presigned-urls", admin, uploadCtl.GeneratePresignedURLs)
	v1.GET("/upload/images", admin, uploadCtl.ListImages)

	return &testServer{
		router:   router,
		store:    store,
		db:       pool.DB(),
		products: primary,
		fallback: fallback,
		images:   images,
		hub:      hub,
		token:    session.Token,
	}
}

type requestOption func(*http.Request)

func asAdmin(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCart(id string) requestOption {
	return func(r *http.Request) {
		r.Header.Set(CartIDHeader, id)
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) seedProduct(t *testing.T, name string, price float64, category model.ProductCategory) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:        name,
		Slug:        fmt.Sprintf("%s-%d", strings.ToLower(name), time.Now().UnixNano()),
		Description: "Pieza de prueba",
		Price:       price,
		Category:    category,
		Stock:       5,
	}
	require.NoError(t, s.products.Create(context.Background(), p))
	return p
}
