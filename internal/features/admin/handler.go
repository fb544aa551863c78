package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/aryanracha/civiclens/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Stats godoc
// @Summary Admin dashboard statistics
// @Description Issue totals, high-risk count, resolution rate, pending audits and a recent-issues feed
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /admin/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, "Failed to compute dashboard stats")
		return
	}
	response.Success(c, stats)
}
