package controller

import (
	"net/http"
	"strings"

	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartIDHeader identifies a mirrored guest cart
const CartIDHeader = "X-Cart-ID"

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// cartID returns the caller's cart id, issuing a new one when the header is
// missing or malformed. The id is always echoed back in the response header.
func cartID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(CartIDHeader))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Header(CartIDHeader, id)
	return id
}

// GetCart returns the mirrored cart with its totals
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	view, err := ctrl.cartService.GetCart(c.Request.Context(), cartID(c))
	if err != nil {
		respondServiceError(c, log, err, "Get cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// AddToCart adds a catalog product to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := cartID(c)

	var req AddToCartRequest
	if !bindJSON(c, log, &req) {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := ctrl.cartService.AddItem(c.Request.Context(), id, req.ProductID, quantity)
	if err != nil {
		respondServiceError(c, log, err, "Add to cart")
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"cart_id":    id,
		"product_id": req.ProductID,
		"quantity":   quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// UpdateCartItem sets a line's quantity; zero or less removes it
// PUT /api/v1/cart/items/:productId
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := cartID(c)

	var req UpdateCartItemRequest
	if !bindJSON(c, log, &req) {
		return
	}

	view, err := ctrl.cartService.UpdateItem(c.Request.Context(), id, c.Param("productId"), *req.Quantity)
	if err != nil {
		respondServiceError(c, log, err, "Update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// RemoveFromCart drops a line
// DELETE /api/v1/cart/items/:productId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	view, err := ctrl.cartService.RemoveItem(c.Request.Context(), cartID(c), c.Param("productId"))
	if err != nil {
		respondServiceError(c, log, err, "Remove from cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	view, err := ctrl.cartService.ClearCart(c.Request.Context(), cartID(c))
	if err != nil {
		respondServiceError(c, log, err, "Clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// CheckoutLink renders the WhatsApp handoff for the cart
// POST /api/v1/cart/checkout-link
func (ctrl *CartController) CheckoutLink(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	link, err := ctrl.cartService.CheckoutLink(c.Request.Context(), cartID(c))
	if err != nil {
		respondServiceError(c, log, err, "Checkout link")
		return
	}

	c.JSON(http.StatusOK, link)
}
