package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/internal/app/service"
	apperrors "github.com/amaretto/amaretto-backend/internal/errors"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ProductsPerPage is the storefront grid size
const ProductsPerPage = 24

type ProductController struct {
	catalogService service.CatalogService
}

func NewProductController(catalogService service.CatalogService) *ProductController {
	return &ProductController{
		catalogService: catalogService,
	}
}

type SetSaleRequest struct {
	On            *bool    `json:"on" binding:"required"`
	DiscountPrice *float64 `json:"discount_price"`
}

// paginate slices one page out of products. Pages past the end are empty.
func paginate(products []model.Product, page int) ([]model.Product, int) {
	totalPages := (len(products) + ProductsPerPage - 1) / ProductsPerPage
	start := (page - 1) * ProductsPerPage
	if start >= len(products) {
		return []model.Product{}, totalPages
	}
	end := start + ProductsPerPage
	if end > len(products) {
		end = len(products)
	}
	return products[start:end], totalPages
}

// ListProducts returns one page of the catalog
// GET /api/v1/products?category=&search=&page=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	category := model.ProductCategory(strings.TrimSpace(c.Query("category")))
	if category != "" && category != model.CategoryAll && !category.Valid() {
		log.Warn("Invalid category filter", map[string]interface{}{
			"category": category,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Categoría no válida")
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "La página debe ser un entero positivo")
			return
		}
		page = n
	}

	filter := repository.ProductFilter{
		Category: category,
		Search:   strings.TrimSpace(c.Query("search")),
	}
	products, backend, err := ctrl.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, log, err, "List products")
		return
	}

	pageItems, totalPages := paginate(products, page)

	log.Info("Products fetched successfully", map[string]interface{}{
		"count":   len(products),
		"page":    page,
		"backend": backend,
	})

	c.JSON(http.StatusOK, gin.H{
		"products":    pageItems,
		"count":       len(products),
		"page":        page,
		"page_size":   ProductsPerPage,
		"total_pages": totalPages,
		"backend":     backend,
	})
}

// GetProduct returns a product by id or slug
// GET /api/v1/products/:identifier
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identifier := c.Param("identifier")

	product, err := ctrl.catalogService.GetProduct(c.Request.Context(), identifier)
	if err != nil {
		respondServiceError(c, log, err, "Get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a catalog entry (Admin only)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.ProductInput
	if !bindJSON(c, log, &input) {
		return
	}

	product, err := ctrl.catalogService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, log, err, "Create product")
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Producto creado",
		"product": product,
	})
}

// UpdateProduct replaces a product's mutable fields (Admin only)
// PUT /api/v1/products/:identifier
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identifier := c.Param("identifier")

	var input service.ProductInput
	if !bindJSON(c, log, &input) {
		return
	}

	product, err := ctrl.catalogService.UpdateProduct(c.Request.Context(), identifier, input)
	if err != nil {
		respondServiceError(c, log, err, "Update product")
		return
	}

	log.Info("Product updated successfully", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Producto actualizado",
		"product": product,
	})
}

// DeleteProduct removes a product (Admin only)
// DELETE /api/v1/products/:identifier
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	identifier := c.Param("identifier")

	if err := ctrl.catalogService.DeleteProduct(c.Request.Context(), identifier); err != nil {
		respondServiceError(c, log, err, "Delete product")
		return
	}

	log.Info("Product deleted successfully", map[string]interface{}{
		"identifier": identifier,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Producto eliminado",
	})
}

// ToggleStock flips a product between sold out and restocked (Admin only)
// PATCH /api/v1/products/:identifier/stock
func (ctrl *ProductController) ToggleStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	product, err := ctrl.catalogService.ToggleStock(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		respondServiceError(c, log, err, "Toggle stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// SetSale turns a product's sale on or off (Admin only)
// PATCH /api/v1/products/:identifier/sale
func (ctrl *ProductController) SetSale(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SetSaleRequest
	if !bindJSON(c, log, &req) {
		return
	}

	product, err := ctrl.catalogService.SetSale(c.Request.Context(), c.Param("identifier"), *req.On, req.DiscountPrice)
	if err != nil {
		respondServiceError(c, log, err, "Set sale")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}
