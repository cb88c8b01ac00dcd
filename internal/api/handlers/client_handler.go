package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planchais/chantiers-backend/internal/models"
	"github.com/planchais/chantiers-backend/internal/service"
)

// ============================================
// Client Handler
// ============================================

type ClientHandler struct {
	clientService service.ClientService
}

func toClientFields(req models.ClientRequest) service.ClientFields {
	return service.ClientFields{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
}

func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.ClientResponse, len(clients))
	for i, cl := range clients {
		response[i] = toClientResponse(cl)
	}
	c.JSON(http.StatusOK, response)
}

func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clientService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(client))
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req models.ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), toClientFields(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toClientResponse(client))
}

func (h *ClientHandler) Update(c *gin.Context) {
	var req models.ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), c.Param("id"), toClientFields(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(client))
}

func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.clientService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
