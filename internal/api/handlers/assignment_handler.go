package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planchais/chantiers-backend/internal/api/middleware"
	"github.com/planchais/chantiers-backend/internal/models"
	"github.com/planchais/chantiers-backend/internal/service"
)

// ============================================
// Assignment Handler
// ============================================

type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

// ListForChantier returns the members assigned to one chantier.
func (h *AssignmentHandler) ListForChantier(c *gin.Context) {
	assignments, err := h.assignmentService.ListForChantier(c.Request.Context(), c.Param("chantierId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssignmentResponseList(assignments, middleware.IsWriter(c)))
}

// List returns every assignment, optionally filtered by ?teamMemberId=.
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.assignmentService.List(c.Request.Context(), c.Query("teamMemberId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssignmentResponseList(assignments, middleware.IsWriter(c)))
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	var req models.AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.assignmentService.Assign(c.Request.Context(), c.Param("chantierId"), req.TeamMemberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAssignmentResponse(assignment, middleware.IsWriter(c)))
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	err := h.assignmentService.Unassign(c.Request.Context(), c.Param("chantierId"), c.Param("assignmentId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
