package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/summary
func (h *Handler) AdminSummary(c *gin.Context) {
	sum, err := h.summary().Summary(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
