package issues

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/cloudinary"
	"github.com/aryanracha/civiclens/internal/pkg/logger"
	"github.com/aryanracha/civiclens/internal/pkg/response"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

const maxSubmissionImages = 5

type Handler struct {
	svc  *Service
	repo *Repository
}

func NewHandler(svc *Service, repo *Repository) *Handler {
	return &Handler{svc: svc, repo: repo}
}

// Submit godoc
// @Summary Submit a civic issue report
// @Description Attaches to an existing open issue within 50m of the same category, or creates a new one
// @Tags issues
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param category formData string true "Category"
// @Param description formData string true "Description"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param images formData file false "Evidence photos"
// @Success 200 {object} response.SuccessResponse "Attached to existing issue"
// @Success 201 {object} response.SuccessResponse "New issue created"
// @Failure 400 {object} response.ErrorResponse
// @Router /issues [post]
func (h *Handler) Submit(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	lat, err := strconv.ParseFloat(c.PostForm("latitude"), 64)
	if err != nil {
		response.ValidationFailed(c, "Invalid latitude")
		return
	}
	lng, err := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if err != nil {
		response.ValidationFailed(c, "Invalid longitude")
		return
	}

	files, err := readUploadedImages(c)
	if err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	req := &SubmitRequest{
		Title:       c.PostForm("title"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		Latitude:    lat,
		Longitude:   lng,
		Files:       files,
		UserID:      userID,
	}

	result, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			response.ValidationFailed(c, err.Error())
		case errors.Is(err, apperrors.ErrDuplicate):
			response.Conflict(c, "You have already reported this issue")
		default:
			logger.Error("issue submission failed: %v", err)
			response.InternalServerError(c, "Failed to submit report")
		}
		return
	}

	if result.Created {
		response.Created(c, result)
		return
	}
	response.Success(c, result)
}

// List godoc
// @Summary List all issues
// @Tags issues
// @Produce json
// @Success 200 {object} response.SuccessResponse
// @Router /issues [get]
func (h *Handler) List(c *gin.Context) {
	results, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, "Failed to fetch issues")
		return
	}
	response.Success(c, results)
}

// Get godoc
// @Summary Get an issue by ID
// @Tags issues
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /issues/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid issue id")
		return
	}

	issue, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Issue not found")
			return
		}
		response.DatabaseError(c, "Failed to fetch issue")
		return
	}
	response.Success(c, issue)
}

// Mine godoc
// @Summary List issues the current user reported or follows
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /issues/mine [get]
func (h *Handler) Mine(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	results, err := h.repo.FindByUser(c.Request.Context(), userID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch issues")
		return
	}
	response.Success(c, results)
}

// Follow godoc
// @Summary Follow an issue
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /issues/{id}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	h.setFollow(c, true)
}

// Unfollow godoc
// @Summary Unfollow an issue
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 200 {object} response.SuccessResponse
// @Router /issues/{id}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	h.setFollow(c, false)
}

func (h *Handler) setFollow(c *gin.Context, follow bool) {
	userID, err := currentUserID(c)
	if err != nil {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid issue id")
		return
	}

	ctx := c.Request.Context()
	if follow {
		err = h.repo.Follow(ctx, issueID, userID)
	} else {
		err = h.repo.Unfollow(ctx, issueID, userID)
	}
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			response.NotFound(c, "Issue not found")
		case errors.Is(err, apperrors.ErrDuplicate):
			response.Conflict(c, "Already following this issue")
		default:
			response.DatabaseError(c, "Failed to update followers")
		}
		return
	}
	response.Success(c, gin.H{"following": follow})
}

// UpdateStatus godoc
// @Summary Update an issue's status (admin)
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /issues/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid issue id")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateStatus(req.Status); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	issue, err := h.repo.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Issue not found")
			return
		}
		response.DatabaseError(c, "Failed to update status")
		return
	}
	response.Success(c, issue)
}

// Assign godoc
// @Summary Assign an issue to a department (admin)
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Param request body AssignRequest true "Department"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /issues/{id}/assign [patch]
func (h *Handler) Assign(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid issue id")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	deptID, err := primitive.ObjectIDFromHex(req.DepartmentID)
	if err != nil {
		response.BadRequest(c, "Invalid department id")
		return
	}

	issue, err := h.repo.Assign(c.Request.Context(), id, deptID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Issue not found")
			return
		}
		response.DatabaseError(c, "Failed to assign issue")
		return
	}
	response.Success(c, issue)
}

// Delete godoc
// @Summary Delete an issue (admin)
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /issues/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid issue id")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Issue not found")
			return
		}
		response.DatabaseError(c, "Failed to delete issue")
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

func readUploadedImages(c *gin.Context) ([]cloudinary.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all means a submission without images.
		return nil, nil
	}

	headers := form.File["images"]
	if len(headers) > maxSubmissionImages {
		headers = headers[:maxSubmissionImages]
	}

	files := make([]cloudinary.File, 0, len(headers))
	for _, fh := range headers {
		file, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readFileHeader(fh *multipart.FileHeader) (cloudinary.File, error) {
	src, err := fh.Open()
	if err != nil {
		return cloudinary.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return cloudinary.File{}, err
	}

	return cloudinary.File{
		Data:     data,
		MimeType: fh.Header.Get("Content-Type"),
		Filename: fh.Filename,
	}, nil
}
