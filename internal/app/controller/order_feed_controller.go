package controller

import (
	"github.com/amaretto/amaretto-backend/internal/middleware"
	ws "github.com/amaretto/amaretto-backend/internal/websocket"
	"github.com/gin-gonic/gin"
)

type OrderFeedController struct {
	hub *ws.Hub
}

func NewOrderFeedController(hub *ws.Hub) *OrderFeedController {
	return &OrderFeedController{
		hub: hub,
	}
}

// Connect attaches an admin console to the live order feed.
// Browsers cannot set headers on websocket requests, so the session may
// arrive as the cookie or the token query parameter; neither is logged.
// GET /api/v1/admin/orders/ws
func (ctrl *OrderFeedController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	subject := c.GetString(middleware.AdminSubjectKey)

	if err := ctrl.hub.ServeWS(c.Writer, c.Request, subject); err != nil {
		// the upgrader has already written the failure response
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	log.Info("Order feed connection established", map[string]interface{}{
		"subject": subject,
	})
}
