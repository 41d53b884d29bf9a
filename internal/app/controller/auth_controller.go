package controller

import (
	"net/http"

	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService  service.AuthService
	secureCookie bool
}

// NewAuthController builds the admin session handlers. secureCookie marks the
// session cookie Secure, which browsers require outside localhost.
func NewAuthController(authService service.AuthService, secureCookie bool) *AuthController {
	return &AuthController{
		authService:  authService,
		secureCookie: secureCookie,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the admin credentials and sets the session cookie
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if !bindJSON(c, log, &req) {
		return
	}

	session, err := ctrl.authService.Login(req.Username, req.Password)
	if err != nil {
		respondServiceError(c, log, err, "Login")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AdminCookieName,
		session.Token,
		int(ctrl.authService.SessionExpiry().Seconds()),
		"/",
		"",
		ctrl.secureCookie,
		true,
	)

	log.Info("Admin logged in", map[string]interface{}{
		"username": session.Username,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":    "Sesión iniciada",
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// Logout revokes the presented session and clears the cookie
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", ctrl.secureCookie, true)

	if token, ok := middleware.SessionToken(c); ok {
		if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
			respondServiceError(c, log, err, "Logout")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sesión cerrada",
	})
}

// Me reports the current admin session (Admin only)
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username": c.GetString(middleware.AdminSubjectKey),
		"role":     middleware.AdminRole,
	})
}
