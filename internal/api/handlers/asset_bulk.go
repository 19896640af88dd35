package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom.io/stockroom/internal/domain"
)

type bulkRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
}

// BulkApply handles POST /assets/bulk: one action applied atomically over a
// selection of assets.
func (s *Server) BulkApply(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest("malformed request body"))
		return
	}

	result, err := s.assets.BulkApply(c.Request.Context(), actor(c), req.IDs, domain.BulkAction(req.Action))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
