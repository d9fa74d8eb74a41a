package auth

// Swagger API metadata is defined globally in cmd/api/main.go

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/promptshare/internal/pkg/jwt"
	"github.com/xyz-asif/promptshare/internal/pkg/logger"
	"github.com/xyz-asif/promptshare/internal/pkg/response"
)

type Handler struct {
	service  *Service
	verifier TokenVerifier
	jwtCfg   *jwt.Config
}

func NewHandler(service *Service, verifier TokenVerifier, jwtCfg *jwt.Config) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		jwtCfg:   jwtCfg,
	}
}

// GoogleSignIn godoc
// @Summary Sign in with Google
// @Description Verify a Google ID token, provision the user on first sign-in and issue a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleAuthRequest true "Google ID token"
// @Success 200 {object} response.SuccessResponse{data=AuthResponse}
// @Success 201 {object} response.SuccessResponse{data=AuthResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/google [post]
func (h *Handler) GoogleSignIn(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	ctx := c.Request.Context()

	profile, err := h.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		logger.Warn("Rejected identity token from %s: %v", c.ClientIP(), err)
		response.Unauthorized(c, "Invalid identity token", "INVALID_ID_TOKEN")
		return
	}

	user, created, err := h.service.SignIn(ctx, profile)
	if err != nil {
		if errors.Is(err, ErrEmailRequired) {
			response.BadRequest(c, "Identity token carries no email address", "EMAIL_REQUIRED")
			return
		}
		logger.Error("Sign-in denied for %s: %v", profile.Subject, err)
		response.InternalServerError(c, "Sign-in could not be completed", "SIGNIN_DENIED")
		return
	}

	token, err := jwt.GenerateToken(user.ID.Hex(), user.Email, user.Username, h.jwtCfg)
	if err != nil {
		logger.Error("Failed to sign session token for %s: %v", user.ID.Hex(), err)
		response.InternalServerError(c, "Failed to generate token", "TOKEN_ERROR")
		return
	}

	resp := AuthResponse{
		User:        user.Session(),
		AccessToken: token,
		IsNewUser:   created,
	}
	if created {
		response.Created(c, resp)
		return
	}
	response.Success(c, resp)
}

// GetSession godoc
// @Summary Get the session user
// @Description Resolve the bearer token to the stored user id and profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=SessionUser}
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/session [get]
func (h *Handler) GetSession(c *gin.Context) {
	user := c.MustGet("user").(*User)
	response.Success(c, user.Session())
}

// GetUserByUsername godoc
// @Summary Get user profile by username
// @Description Get the public profile of a user by their username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} response.SuccessResponse{data=PublicProfile}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users/{username} [get]
func (h *Handler) GetUserByUsername(c *gin.Context) {
	user, err := h.service.PublicProfile(c.Request.Context(), c.Param("username"))
	switch {
	case err == nil:
		response.Success(c, user.Public())
	case errors.Is(err, ErrInvalidUsername):
		response.BadRequest(c, err.Error(), "INVALID_USERNAME")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
	default:
		logger.Error("Profile lookup failed: %v", err)
		response.InternalServerError(c, "Failed to load profile", "DATABASE_ERROR")
	}
}
