package records

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/cloudinary"
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

// Upload godoc
// @Summary Upload a government contract document (admin)
// @Description Extracts project fields from the document and creates an official record
// @Tags records
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "Contract document"
// @Param latitude formData number false "Project site latitude"
// @Param longitude formData number false "Project site longitude"
// @Param address formData string false "Project site address"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /records [post]
func (h *Handler) Upload(c *gin.Context) {
	rawUserID, _ := c.Get("userID")
	userID, err := primitive.ObjectIDFromHex(rawUserID.(string))
	if err != nil {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	fh, err := c.FormFile("document")
	if err != nil {
		response.ValidationFailed(c, "Contract document is required")
		return
	}

	src, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read document")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.BadRequest(c, "Failed to read document")
		return
	}

	req := &UploadContractRequest{
		File: cloudinary.File{
			Data:     data,
			MimeType: fh.Header.Get("Content-Type"),
			Filename: fh.Filename,
		},
		Address:    c.PostForm("address"),
		UploadedBy: userID,
	}

	if latStr, lngStr := c.PostForm("latitude"), c.PostForm("longitude"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			response.ValidationFailed(c, "Invalid coordinates")
			return
		}
		req.Latitude = &lat
		req.Longitude = &lng
	}

	record, err := h.svc.UploadContract(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			response.ValidationFailed(c, err.Error())
			return
		}
		logger.Error("contract upload failed: %v", err)
		response.InternalServerError(c, "Failed to process contract document")
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List official records (admin)
// @Tags records
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /records [get]
func (h *Handler) List(c *gin.Context) {
	results, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, "Failed to fetch records")
		return
	}
	response.Success(c, results)
}

// Get godoc
// @Summary Get an official record by ID (admin)
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /records/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid record id")
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Record not found")
			return
		}
		response.DatabaseError(c, "Failed to fetch record")
		return
	}
	response.Success(c, record)
}

// Delete godoc
// @Summary Delete an official record (admin)
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /records/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid record id")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Record not found")
			return
		}
		response.DatabaseError(c, "Failed to delete record")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
