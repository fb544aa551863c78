package reports

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/pagination"
	"github.com/aryanracha/civiclens/internal/pkg/response"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

// Store is the repository surface the handlers use.
type Store interface {
	GetAll(ctx context.Context, skip, limit int) ([]Report, int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Report, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]Report, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*Report, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List godoc
// @Summary List all reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.PaginatedResponse
// @Router /reports [get]
func (h *Handler) List(c *gin.Context) {
	pg := pagination.Parse(c.Query("page"), c.Query("limit"))

	results, total, err := h.store.GetAll(c.Request.Context(), pg.Offset(), pg.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch reports")
		return
	}

	response.Paginated(c, results, total, pg.Limit, pg.Page)
}

// Mine godoc
// @Summary List the authenticated user's reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /reports/mine [get]
func (h *Handler) Mine(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	results, err := h.store.GetByUser(c.Request.Context(), userID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch reports")
		return
	}
	if results == nil {
		results = []Report{}
	}
	response.Success(c, results)
}

// Get godoc
// @Summary Get a report by ID
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /reports/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid report id")
		return
	}

	report, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Report not found")
			return
		}
		response.DatabaseError(c, "Failed to fetch report")
		return
	}
	response.Success(c, report)
}

// Update godoc
// @Summary Edit a report (admin)
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body UpdateReportRequest true "Fields to update"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /reports/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid report id")
		return
	}

	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	updates := bson.M{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["imageUrl"] = *req.ImageURL
	}
	if len(updates) == 0 {
		response.BadRequest(c, "Nothing to update")
		return
	}

	report, err := h.store.Update(c.Request.Context(), id, updates)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Report not found")
			return
		}
		response.DatabaseError(c, "Failed to update report")
		return
	}
	response.Success(c, report)
}

// Delete godoc
// @Summary Delete a report (admin)
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /reports/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid report id")
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Report not found")
			return
		}
		response.DatabaseError(c, "Failed to delete report")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func currentUserID(c *gin.Context) (primitive.ObjectID, error) {
	raw, exists := c.Get("userID")
	if !exists {
		return primitive.NilObjectID, apperrors.ErrUnauthorized
	}
	hex, ok := raw.(string)
	if !ok {
		return primitive.NilObjectID, apperrors.ErrUnauthorized
	}
	return primitive.ObjectIDFromHex(hex)
}
