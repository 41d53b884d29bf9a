package controller

import (
	"net/http"

	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/gin-gonic/gin"
)

type DiagnosticsController struct {
	diagnosticsService service.DiagnosticsService
}

func NewDiagnosticsController(diagnosticsService service.DiagnosticsService) *DiagnosticsController {
	return &DiagnosticsController{
		diagnosticsService: diagnosticsService,
	}
}

// StoreStatus reports primary reachability and which catalog backend is active (Admin only)
// GET /api/v1/admin/diagnostics/db
func (ctrl *DiagnosticsController) StoreStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.diagnosticsService.Store(c.Request.Context()))
}
