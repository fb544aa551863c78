package departments

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/response"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create godoc
// @Summary Create a department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDepartmentRequest true "Department data"
// @Success 201 {object} response.SuccessResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /departments [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	adminID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.AuthenticationError(c, "Invalid user identity")
		return
	}

	dept := &Department{
		Name:              req.Name,
		Zone:              req.Zone,
		CategoriesHandled: req.CategoriesHandled,
		AdminID:           adminID,
	}

	if err := h.repo.Create(c.Request.Context(), dept); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			response.Conflict(c, "A department with this name already exists")
			return
		}
		response.DatabaseError(c, "Failed to create department")
		return
	}

	response.Created(c, dept)
}

// List godoc
// @Summary List all departments
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /departments [get]
func (h *Handler) List(c *gin.Context) {
	depts, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, "Failed to fetch departments")
		return
	}
	response.Success(c, depts)
}

// Get godoc
// @Summary Get a department by ID
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /departments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid department id")
		return
	}

	dept, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Department not found")
			return
		}
		response.DatabaseError(c, "Failed to fetch department")
		return
	}
	response.Success(c, dept)
}
