package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListSystemEvents handles GET /system-events: the global administrative
// trail, newest first.
func (s *Server) ListSystemEvents(c *gin.Context) {
	events, info, err := s.trail.SystemLog(c.Request.Context(), pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pagedResponse{Items: events, Page: info})
}
