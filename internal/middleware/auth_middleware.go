package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/amaretto/amaretto-backend/internal/errors"
	"github.com/amaretto/amaretto-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

const (
	// AdminCookieName holds the admin session token
	AdminCookieName = "admin-auth"

	AdminRole = "admin"

	AdminSubjectKey = "admin_subject"
)

// RevocationChecker reports tokens revoked by logout
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret   string
	revocations RevocationChecker
}

// NewAuthMiddleware validates admin sessions signed with jwtSecret. A nil
// revocations skips the logout check.
func NewAuthMiddleware(jwtSecret string, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		revocations: revocations,
	}
}

// SessionToken looks for the token in the session cookie, then the
// Authorization header, then the token query parameter (websocket clients)
func SessionToken(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(AdminCookieName); err == nil && cookie != "" {
		return cookie, true
	}

	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

// RequireAdmin rejects requests without a valid admin session
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := SessionToken(c)
		if !ok {
			log.Warn("Missing admin session", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Admin session validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if errors.Is(err, util.ErrExpiredToken) {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Tu sesión expiró, inicia sesión de nuevo")
			} else {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Sesión inválida")
			}
			c.Abort()
			return
		}

		if claims.Role != AdminRole {
			log.Warn("Insufficient permissions", map[string]interface{}{
				"role": claims.Role,
				"path": c.Request.URL.Path,
			})
			apperrors.Forbidden(c, "")
			c.Abort()
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), token)
			if err != nil {
				log.Error("Failed to check session revocation", err)
				apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalServerError, "No se pudo verificar la sesión")
				c.Abort()
				return
			}
			if revoked {
				log.Warn("Revoked admin session used", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "La sesión fue cerrada, inicia sesión de nuevo")
				c.Abort()
				return
			}
		}

		c.Set(AdminSubjectKey, claims.Subject)
		c.Next()
	}
}

// IsAdmin reports whether RequireAdmin accepted this request
func IsAdmin(c *gin.Context) bool {
	_, ok := c.Get(AdminSubjectKey)
	return ok
}
