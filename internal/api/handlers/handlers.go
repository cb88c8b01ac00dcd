package handlers

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/models"
	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth       *AuthHandler
	Client     *ClientHandler
	Chantier   *ChantierHandler
	TeamMember *TeamMemberHandler
	Assignment *AssignmentHandler
	Planning   *PlanningHandler
	Quote      *QuoteHandler
	Estimation *EstimationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:       &AuthHandler{authService: services.Auth},
		Client:     &ClientHandler{clientService: services.Client},
		Chantier:   &ChantierHandler{chantierService: services.Chantier},
		TeamMember: &TeamMemberHandler{memberService: services.TeamMember},
		Assignment: &AssignmentHandler{assignmentService: services.Assignment},
		Planning:   &PlanningHandler{planningService: services.Planning},
		Quote:      &QuoteHandler{quoteService: services.Quote},
		Estimation: &EstimationHandler{estimationService: services.Estimation},
	}
}

func init() {
	// Report JSON field names in validation errors.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}

// ============================================
// Error Mapping
// ============================================

// handleServiceError maps service errors to HTTP responses
func handleServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflictMessage(err)})
	case errors.Is(err, service.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, try again later"})
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service not configured"})
	default:
		logger.Error("❌ [API] unexpected error", "path", c.Request.URL.Path, "error", err)
		body := gin.H{"error": "Internal server error"}
		if gin.Mode() != gin.ReleaseMode {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// conflictMessage keeps the context a service wrapped around ErrConflict.
func conflictMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "+service.ErrConflict.Error()); i > 0 {
		return msg[:i]
	}
	return "Resource already exists"
}

// bindJSON decodes the body into dst. An empty body decodes as {} so that
// required fields are reported by the service.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
		handleServiceError(c, &service.ValidationError{Fields: fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data: " + err.Error()})
	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

func toClientResponse(cl *repository.Client) models.ClientResponse {
	return models.ClientResponse{
		ID:        cl.ID,
		Name:      cl.Name,
		Email:     cl.Email,
		Phone:     cl.Phone,
		Address:   cl.Address,
		CreatedAt: cl.CreatedAt,
		UpdatedAt: cl.UpdatedAt,
	}
}

func toChantierResponse(ch *repository.Chantier) models.ChantierResponse {
	return models.ChantierResponse{
		ID:         ch.ID,
		Name:       ch.Name,
		ClientID:   ch.ClientID,
		ClientName: ch.ClientName,
		StartDate:  ch.StartDate,
		Duration:   ch.Duration,
		Images:     safeStringSlice(ch.Images),
		Status:     ch.Status,
		CreatedAt:  ch.CreatedAt,
		UpdatedAt:  ch.UpdatedAt,
	}
}

// toTeamMemberResponse leaves the login code out unless withCode is set.
// Login codes are credentials, so only writers get other members' codes.
func toTeamMemberResponse(m *repository.TeamMember, withCode bool) models.TeamMemberResponse {
	resp := models.TeamMemberResponse{
		ID:             m.ID,
		Name:           m.Name,
		Role:           m.Role,
		Email:          m.Email,
		Phone:          m.Phone,
		Status:         m.Status,
		UserID:         m.UserID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if withCode {
		resp.LoginCode = m.LoginCode
		resp.LoginCodeAlias = m.LoginCode
	}
	return resp
}

func toAssignmentResponse(a *repository.Assignment, withCode bool) models.AssignmentResponse {
	resp := models.AssignmentResponse{
		ID:           a.ID,
		ChantierID:   a.ChantierID,
		TeamMemberID: a.TeamMemberID,
		CreatedAt:    a.CreatedAt,
	}
	if a.Member != nil {
		m := toTeamMemberResponse(a.Member, withCode)
		resp.TeamMember = &m
	}
	return resp
}

func toAssignmentResponseList(list []*repository.Assignment, withCode bool) []models.AssignmentResponse {
	response := make([]models.AssignmentResponse, len(list))
	for i, a := range list {
		response[i] = toAssignmentResponse(a, withCode)
	}
	return response
}

// Helper to ensure nil slices become empty slices
func safeStringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
