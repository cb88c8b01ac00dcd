package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planchais/chantiers-backend/internal/ai"
	"github.com/planchais/chantiers-backend/internal/service"
)

// ============================================
// Estimation Handler
// ============================================

type EstimationHandler struct {
	estimationService service.EstimationService
}

// Analyze takes up to ten images plus the site context fields.
func (h *EstimationHandler) Analyze(c *gin.Context) {
	if !parseMultipart(c, maxImages) {
		return
	}

	files := c.Request.MultipartForm.File["images"]
	if len(files) == 0 {
		handleServiceError(c, &service.ValidationError{Fields: map[string]string{"images": "at least one image is required"}})
		return
	}
	if len(files) > maxImages {
		handleServiceError(c, &service.ValidationError{Fields: map[string]string{"images": "at most 10 images"}})
		return
	}

	photos := make([]service.Photo, 0, len(files))
	for _, fh := range files {
		data, mimeType, err := readUpload(fh)
		if err != nil {
			uploadFailed(c, err)
			return
		}
		photos = append(photos, service.Photo{Data: data, MimeType: mimeType})
	}

	estimate, err := h.estimationService.Analyze(c.Request.Context(), photos, ai.EstimateContext{
		Surface:      c.PostForm("surface"),
		Materiaux:    c.PostForm("materiaux"),
		Localisation: c.PostForm("localisation"),
		Delai:        c.PostForm("delai"),
		Metier:       c.PostForm("metier"),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// Visualize requires a site photo, a project type and a style.
func (h *EstimationHandler) Visualize(c *gin.Context) {
	if !parseMultipart(c, 1) {
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		handleServiceError(c, &service.ValidationError{Fields: map[string]string{"image": "required"}})
		return
	}
	if _, _, err := readUpload(fh); err != nil {
		uploadFailed(c, err)
		return
	}

	vis, err := h.estimationService.Visualize(c.Request.Context(), c.PostForm("projectType"), c.PostForm("style"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vis)
}
