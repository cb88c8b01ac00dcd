package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planchais/chantiers-backend/internal/api/middleware"
	"github.com/planchais/chantiers-backend/internal/models"
	"github.com/planchais/chantiers-backend/internal/planning"
	"github.com/planchais/chantiers-backend/internal/service"
	"github.com/planchais/chantiers-backend/internal/types"
)

// ============================================
// Planning Handler
// ============================================

type PlanningHandler struct {
	planningService service.PlanningService
	now             func() time.Time
}

// Month serves GET /planning?year=YYYY&month=M[&teamMemberId=ID].
// Team principals default to their own planning.
func (h *PlanningHandler) Month(c *gin.Context) {
	now := time.Now()
	if h.now != nil {
		now = h.now()
	}

	year, month := now.Year(), int(now.Month())
	fields := map[string]string{}
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["year"] = "must be a number"
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["month"] = "must be a number"
		}
		month = n
	}
	if len(fields) > 0 {
		handleServiceError(c, &service.ValidationError{Fields: fields})
		return
	}

	teamMemberID := c.Query("teamMemberId")
	if p := middleware.GetPrincipal(c); p != nil && p.Role == types.RoleTeam && teamMemberID == "" {
		teamMemberID = p.Subject
	}

	m, err := h.planningService.Month(c.Request.Context(), year, time.Month(month), teamMemberID, now)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPlanningResponse(m))
}

const dateLayout = "2006-01-02"

func toPlanningResponse(m *planning.Month) models.PlanningResponse {
	resp := models.PlanningResponse{
		Year:      m.Year,
		Month:     int(m.Month),
		Days:      make([]models.PlanningDay, len(m.Days)),
		Chantiers: make([]models.PlanningChantier, len(m.Chantiers)),
	}
	for i, d := range m.Days {
		resp.Days[i] = models.PlanningDay{
			Date:           d.Date.Format(dateLayout),
			IsCurrentMonth: d.IsCurrentMonth,
			IsToday:        d.IsToday,
			ChantierIDs:    safeStringSlice(d.ChantierIDs),
		}
	}
	for i, s := range m.Chantiers {
		resp.Chantiers[i] = models.PlanningChantier{
			ID:         s.ID,
			Name:       s.Name,
			ClientName: s.ClientName,
			Status:     s.Status,
			StartDate:  s.Start.Format(dateLayout),
			EndDate:    s.End.Format(dateLayout),
			Duration:   s.Duration,
		}
	}
	return resp
}
