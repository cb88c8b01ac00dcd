package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planchais/chantiers-backend/internal/api/middleware"
	"github.com/planchais/chantiers-backend/internal/models"
	"github.com/planchais/chantiers-backend/internal/service"
)

// ============================================
// Team Member Handler
// ============================================

type TeamMemberHandler struct {
	memberService service.TeamMemberService
}

func toTeamMemberFields(req models.TeamMemberRequest) service.TeamMemberFields {
	return service.TeamMemberFields{
		Name:      req.Name,
		Role:      req.Role,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    req.Status,
		LoginCode: req.Code(),
		UserID:    req.UserID,
	}
}

func (h *TeamMemberHandler) List(c *gin.Context) {
	members, err := h.memberService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.TeamMemberResponse, len(members))
	for i, m := range members {
		response[i] = toTeamMemberResponse(m, middleware.IsWriter(c))
	}
	c.JSON(http.StatusOK, response)
}

func (h *TeamMemberHandler) Get(c *gin.Context) {
	member, err := h.memberService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTeamMemberResponse(member, middleware.IsWriter(c)))
}

func (h *TeamMemberHandler) Create(c *gin.Context) {
	var req models.TeamMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.Create(c.Request.Context(), toTeamMemberFields(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTeamMemberResponse(member, middleware.IsWriter(c)))
}

func (h *TeamMemberHandler) Update(c *gin.Context) {
	var req models.TeamMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.Update(c.Request.Context(), c.Param("id"), toTeamMemberFields(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTeamMemberResponse(member, middleware.IsWriter(c)))
}

func (h *TeamMemberHandler) Delete(c *gin.Context) {
	if err := h.memberService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
