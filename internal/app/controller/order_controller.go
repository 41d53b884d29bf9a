package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/service"
	apperrors "github.com/amaretto/amaretto-backend/internal/errors"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderController struct {
	orderService  service.OrderService
	reportService service.ReportService
}

func NewOrderController(orderService service.OrderService, reportService service.ReportService) *OrderController {
	return &OrderController{
		orderService:  orderService,
		reportService: reportService,
	}
}

// SubmitOrder prices the submitted cart against the catalog and stores it
// POST /api/v1/orders
func (ctrl *OrderController) SubmitOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.SubmitOrderInput
	if !bindJSON(c, log, &input) {
		return
	}

	log.Debug("Submitting order", map[string]interface{}{
		"lines": len(input.Items),
	})

	result, err := ctrl.orderService.SubmitOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, log, err, "Submit order")
		return
	}

	log.Info("Order submitted successfully", map[string]interface{}{
		"order_id": result.Order.ID,
		"total":    result.Order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":          "Pedido recibido",
		"order":            result.Order,
		"whatsapp_message": result.WhatsAppMessage,
		"whatsapp_url":     result.WhatsAppURL,
	})
}

// ListOrders returns every order, newest first (Admin only)
// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "List orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one order (Admin only)
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid order ID format", map[string]interface{}{
			"order_id": idStr,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de pedido no válido")
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, log, err, "Get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// ExportOrders streams every order as an xlsx sheet (Admin only)
// GET /api/v1/admin/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var buf bytes.Buffer
	count, err := ctrl.reportService.ExportOrders(c.Request.Context(), &buf)
	if err != nil {
		respondServiceError(c, log, err, "Export orders")
		return
	}

	log.Info("Orders exported", map[string]interface{}{
		"orders": count,
	})

	filename := fmt.Sprintf("pedidos-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
