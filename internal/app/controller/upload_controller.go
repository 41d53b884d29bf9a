package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/amaretto/amaretto-backend/internal/errors"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/amaretto/amaretto-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	images storage.ImageHost
}

func NewUploadController(images storage.ImageHost) *UploadController {
	return &UploadController{
		images: images,
	}
}

type UploadFile struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
}

type GeneratePresignedURLsRequest struct {
	Files []UploadFile `json:"files" binding:"required,dive"`
}

// GeneratePresignedURLs issues one presigned upload per product photo (Admin only)
// POST /api/v1/upload/presigned-urls
func (ctrl *UploadController) GeneratePresignedURLs(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLsRequest
	if !bindJSON(c, log, &req) {
		return
	}

	if len(req.Files) == 0 {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Selecciona al menos una imagen")
		return
	}
	if len(req.Files) > storage.MaxImagesPerUpload {
		log.Warn("Too many files in upload request", map[string]interface{}{
			"count": len(req.Files),
		})
		apperrors.BadRequest(c, apperrors.UploadTooManyFiles,
			fmt.Sprintf("Puedes subir hasta %d imágenes", storage.MaxImagesPerUpload))
		return
	}

	for _, f := range req.Files {
		if err := storage.ValidateContentType(f.ContentType, storage.AllowedImageTypes); err != nil {
			log.Warn("Invalid content type", map[string]interface{}{
				"filename":     f.Filename,
				"content_type": f.ContentType,
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType,
				fmt.Sprintf("%s no es una imagen válida (JPEG, PNG, GIF, WEBP, AVIF)", f.Filename))
			return
		}
		if err := storage.ValidateFileSize(f.Size, storage.MaxImageSize); err != nil {
			log.Warn("Invalid file size", map[string]interface{}{
				"filename": f.Filename,
				"size":     f.Size,
			})
			apperrors.BadRequest(c, apperrors.UploadFileTooLarge,
				fmt.Sprintf("%s excede el tamaño máximo de 20MB", f.Filename))
			return
		}
	}

	uploads := make([]*storage.PresignedURLResponse, 0, len(req.Files))
	for _, f := range req.Files {
		resp, err := ctrl.images.GeneratePresignedURLWithFolder(c.Request.Context(), f.Filename, f.ContentType, storage.ProductFolder)
		if err != nil {
			log.Error("Failed to generate presigned URL", err, map[string]interface{}{
				"filename": f.Filename,
			})
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "No se pudo preparar la subida de imágenes")
			return
		}
		uploads = append(uploads, resp)
	}

	log.Info("Presigned URLs generated successfully", map[string]interface{}{
		"count": len(uploads),
	})

	c.JSON(http.StatusOK, gin.H{
		"uploads": uploads,
	})
}

// ListImages lists previously uploaded images (Admin only)
// GET /api/v1/upload/images?folder=&max_results=
func (ctrl *UploadController) ListImages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	folder := strings.Trim(c.DefaultQuery("folder", storage.ProductFolder), "/")
	maxResults := storage.DefaultListLimit
	if raw := c.Query("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "max_results debe estar entre 1 y 1000")
			return
		}
		maxResults = n
	}

	images, err := ctrl.images.ListImages(c.Request.Context(), folder, maxResults)
	if err != nil {
		log.Error("Failed to list images", err, map[string]interface{}{
			"folder": folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalExternalAPI, "No se pudieron obtener las imágenes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images": images,
		"count":  len(images),
	})
}
