package audits

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/logger"
	"github.com/aryanracha/civiclens/internal/pkg/response"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

type Handler struct {
	svc  *Service
	repo *Repository
}

func NewHandler(svc *Service, repo *Repository) *Handler {
	return &Handler{svc: svc, repo: repo}
}

// Run godoc
// @Summary Audit a report against the official record registry
// @Description Idempotent: re-running returns the existing ledger entry
// @Tags audits
// @Produce json
// @Security BearerAuth
// @Param reportId path string true "Report ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /audits/report/{reportId} [post]
func (h *Handler) Run(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("reportId"))
	if err != nil {
		response.BadRequest(c, "Invalid report id")
		return
	}

	audit, err := h.svc.Run(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Report not found")
			return
		}
		logger.Error("audit failed for report %s: %v", reportID.Hex(), err)
		response.InternalServerError(c, "Audit failed")
		return
	}
	response.Success(c, audit)
}

// GetByReport godoc
// @Summary Get the audit for a report
// @Tags audits
// @Produce json
// @Security BearerAuth
// @Param reportId path string true "Report ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /audits/report/{reportId} [get]
func (h *Handler) GetByReport(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("reportId"))
	if err != nil {
		response.BadRequest(c, "Invalid report id")
		return
	}

	audit, err := h.repo.FindByReportID(c.Request.Context(), reportID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch audit")
		return
	}
	if audit == nil {
		response.NotFound(c, "No audit exists for this report")
		return
	}
	response.Success(c, audit)
}

// ListByIssue godoc
// @Summary List audits recorded against an issue
// @Tags audits
// @Produce json
// @Security BearerAuth
// @Param issueId path string true "Issue ID"
// @Success 200 {object} response.SuccessResponse
// @Router /audits/issue/{issueId} [get]
func (h *Handler) ListByIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("issueId"))
	if err != nil {
		response.BadRequest(c, "Invalid issue id")
		return
	}

	results, err := h.repo.FindByIssueID(c.Request.Context(), issueID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch audits")
		return
	}
	response.Success(c, results)
}

// List godoc
// @Summary List the full audit ledger (admin)
// @Tags audits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /audits [get]
func (h *Handler) List(c *gin.Context) {
	results, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, "Failed to fetch audit ledger")
		return
	}
	response.Success(c, results)
}
