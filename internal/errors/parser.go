package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo is a code plus user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a storage-level unique constraint
// failure from gorm, postgres or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}

// ParseError turns a raw storage error into something safe to show. Sensitive
// detail stays in the logs.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Ocurrió un error en el servidor"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	if IsUniqueViolation(err) {
		if strings.Contains(strings.ToLower(err.Error()), "slug") || strings.Contains(context, "product") {
			return ErrorInfo{
				Code:    CatalogDuplicateSlug,
				Message: "Ya existe un producto con ese slug. Cambia el slug o el nombre",
			}
		}
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "El registro ya existe"}
	}

	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "No fue posible conectar con la base de datos. Intenta de nuevo más tarde",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func notFoundMessage(context string) string {
	switch {
	case strings.Contains(context, "product"):
		return "Producto no encontrado"
	case strings.Contains(context, "order"):
		return "Pedido no encontrado"
	default:
		return "No se encontró el recurso solicitado"
	}
}

func defaultMessage(context string) string {
	switch {
	case strings.Contains(context, "create"):
		return "Error al crear el registro. Intenta de nuevo más tarde"
	case strings.Contains(context, "update"):
		return "Error al actualizar el registro. Intenta de nuevo más tarde"
	case strings.Contains(context, "delete"):
		return "Error al eliminar el registro. Intenta de nuevo más tarde"
	default:
		return "Ocurrió un error en el servidor. Intenta de nuevo más tarde"
	}
}
