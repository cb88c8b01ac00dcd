package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planchais/chantiers-backend/internal/models"
	"github.com/planchais/chantiers-backend/internal/service"
)

// ============================================
// Chantier Handler
// ============================================

type ChantierHandler struct {
	chantierService service.ChantierService
}

func toChantierFields(req models.ChantierRequest) service.ChantierFields {
	f := service.ChantierFields{
		Name:      req.Name,
		ClientID:  req.ClientID,
		StartDate: req.StartDate,
		Duration:  req.Duration,
		Status:    req.Status,
	}
	if req.Images != nil {
		images := []string(*req.Images)
		f.Images = &images
	}
	return f
}

func (h *ChantierHandler) List(c *gin.Context) {
	chantiers, err := h.chantierService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.ChantierResponse, len(chantiers))
	for i, ch := range chantiers {
		response[i] = toChantierResponse(ch)
	}
	c.JSON(http.StatusOK, response)
}

func (h *ChantierHandler) Get(c *gin.Context) {
	chantier, err := h.chantierService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChantierResponse(chantier))
}

func (h *ChantierHandler) Create(c *gin.Context) {
	var req models.ChantierRequest
	if !bindJSON(c, &req) {
		return
	}

	chantier, err := h.chantierService.Create(c.Request.Context(), toChantierFields(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toChantierResponse(chantier))
}

func (h *ChantierHandler) Update(c *gin.Context) {
	var req models.ChantierRequest
	if !bindJSON(c, &req) {
		return
	}

	chantier, err := h.chantierService.Update(c.Request.Context(), c.Param("id"), toChantierFields(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChantierResponse(chantier))
}

func (h *ChantierHandler) Delete(c *gin.Context) {
	if err := h.chantierService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
