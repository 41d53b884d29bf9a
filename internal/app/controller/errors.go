package controller

import (
	"errors"
	"net/http"

	"github.com/amaretto/amaretto-backend/internal/app/pricing"
	"github.com/amaretto/amaretto-backend/internal/app/service"
	apperrors "github.com/amaretto/amaretto-backend/internal/errors"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// respondServiceError writes the response for an error returned by a service.
// Unknown errors are logged and answered with a generic 500.
func respondServiceError(c *gin.Context, log *logger.Logger, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Warn(action+": validation failed", map[string]interface{}{
			"fields": verr.Fields,
		})
		apperrors.RespondWithValidationError(c, verr.Fields)
	case errors.Is(err, service.ErrDuplicateSlug):
		log.Warn(action+": duplicate slug")
		apperrors.Conflict(c, apperrors.CatalogDuplicateSlug, "Ya existe un producto con ese slug. Cambia el slug o el nombre")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Producto no encontrado")
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Pedido no encontrado")
	case errors.Is(err, service.ErrEmptyCart):
		apperrors.BadRequest(c, apperrors.OrderEmptyCart, "Tu carrito está vacío")
	case errors.Is(err, service.ErrProductsUnavailable):
		apperrors.BadRequest(c, apperrors.OrderProductsUnavailable, "Algunos productos ya no están disponibles")
	case errors.Is(err, pricing.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "La cantidad debe ser un entero positivo")
	case errors.Is(err, service.ErrInvalidCredentials):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Usuario o contraseña incorrectos")
	case errors.Is(err, service.ErrStoreUnavailable):
		log.Error(action+": store unavailable", err)
		apperrors.StoreUnavailable(c)
	default:
		log.Error(action+": unexpected error", err)
		info := apperrors.ParseError(err, action)
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
	}
}

// bindJSON decodes the body and answers 400 when it is not valid JSON
func bindJSON(c *gin.Context, log *logger.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "El cuerpo de la solicitud no es válido")
		return false
	}
	return true
}
