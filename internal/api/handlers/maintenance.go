package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/service"
)

type maintenancePayload struct {
	Title         string `json:"title"`
	ScheduledDate string `json:"scheduled_date"`
	Notes         string `json:"notes"`
}

// ScheduleMaintenance handles POST /assets/:id/maintenance.
func (s *Server) ScheduleMaintenance(c *gin.Context) {
	var p maintenancePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, badRequest("malformed request body"))
		return
	}

	scheduled, err := parseOptionalDate("scheduled_date", &p.ScheduledDate)
	if err != nil {
		fail(c, err)
		return
	}
	if scheduled == nil {
		fail(c, apperrors.Validation("scheduled_date is required", apperrors.FieldError{
			Field: "scheduled_date", Code: "REQUIRED", Message: "scheduled date is required",
		}))
		return
	}

	view, err := s.maint.Schedule(c.Request.Context(), actor(c), service.TaskInput{
		AssetID:       c.Param("id"),
		Title:         strings.TrimSpace(p.Title),
		ScheduledDate: *scheduled,
		Notes:         p.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type completePayload struct {
	Notes string `json:"notes"`
}

// CompleteMaintenance handles POST /maintenance/:id/complete.
func (s *Server) CompleteMaintenance(c *gin.Context) {
	var p completePayload
	// Body is optional; completion without notes is fine.
	_ = c.ShouldBindJSON(&p)

	view, err := s.maint.Complete(c.Request.Context(), actor(c), c.Param("id"), p.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListMaintenance handles GET /assets/:id/maintenance.
func (s *Server) ListMaintenance(c *gin.Context) {
	views, err := s.maint.ListForAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}
