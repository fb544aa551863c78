package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/logger"
	"github.com/aryanracha/civiclens/internal/pkg/response"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

// cookieMaxAge matches the token lifetime configured on the manager.
const cookieName = "jwt"

type Handler struct {
	svc          *Service
	cookieMaxAge int
	secureCookie bool
}

func NewHandler(svc *Service, cookieMaxAge int, secureCookie bool) *Handler {
	return &Handler{svc: svc, cookieMaxAge: cookieMaxAge, secureCookie: secureCookie}
}

// Signup godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration details"
// @Success 201 {object} response.SuccessResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	session, err := h.svc.Signup(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			response.Conflict(c, "An account with this email already exists")
			return
		}
		logger.Error("signup failed: %v", err)
		response.InternalServerError(c, "Failed to create account")
		return
	}

	h.setSessionCookie(c, session.Token)
	response.Created(c, session)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	session, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			response.AuthenticationError(c, "Invalid email or password")
			return
		}
		logger.Error("login failed: %v", err)
		response.InternalServerError(c, "Failed to log in")
		return
	}

	h.setSessionCookie(c, session.Token)
	response.Success(c, session)
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} response.SuccessResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, gin.H{"loggedOut": true})
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	rawUserID, exists := c.Get("userID")
	if !exists {
		response.AuthenticationError(c, "Authentication required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(rawUserID.(string))
	if err != nil {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	user, err := h.svc.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		response.DatabaseError(c, "Failed to fetch profile")
		return
	}
	response.Success(c, user)
}

func (h *Handler) setSessionCookie(c *gin.Context, signed string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, signed, h.cookieMaxAge, "/", "", h.secureCookie, true)
}
