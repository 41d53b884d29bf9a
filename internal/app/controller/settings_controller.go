package controller

import (
	"net/http"

	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	settingsService service.SettingsService
	homepageService service.HomepageService
}

func NewSettingsController(settingsService service.SettingsService, homepageService service.HomepageService) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
		homepageService: homepageService,
	}
}

// GetSettings returns the site settings
// GET /api/v1/settings
func (ctrl *SettingsController) GetSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	settings, err := ctrl.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "Get settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// UpdateSettings merges the submitted fields (Admin only)
// PUT /api/v1/settings
func (ctrl *SettingsController) UpdateSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var patch service.SettingsPatch
	if !bindJSON(c, log, &patch) {
		return
	}

	settings, err := ctrl.settingsService.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		respondServiceError(c, log, err, "Update settings")
		return
	}

	log.Info("Settings updated successfully")

	c.JSON(http.StatusOK, gin.H{
		"message":  "Configuración guardada",
		"settings": settings,
	})
}

// ResetContent restores the default about, mission, vision and return policy texts (Admin only)
// POST /api/v1/settings/reset-content
func (ctrl *SettingsController) ResetContent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	settings, err := ctrl.settingsService.ResetContent(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "Reset content")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Contenido restablecido",
		"settings": settings,
	})
}

// GetHomepageFeatured returns the per-category homepage picks
// GET /api/v1/homepage-featured
func (ctrl *SettingsController) GetHomepageFeatured(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	view, err := ctrl.homepageService.GetFeatured(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "Get homepage featured")
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateHomepageFeatured sets the homepage picks (Admin only)
// PUT /api/v1/homepage-featured
func (ctrl *SettingsController) UpdateHomepageFeatured(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var patch service.HomepageFeaturedPatch
	if !bindJSON(c, log, &patch) {
		return
	}

	view, err := ctrl.homepageService.UpdateFeatured(c.Request.Context(), patch)
	if err != nil {
		respondServiceError(c, log, err, "Update homepage featured")
		return
	}

	c.JSON(http.StatusOK, view)
}
