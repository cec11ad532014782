package handlers

import (
	"net/http"

	"centsible/internal/dto"
	"centsible/internal/errors"
	"centsible/internal/models"
	"centsible/internal/repositories"
	"centsible/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication and profile endpoints
type AuthHandler struct {
	authService services.AuthServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account with email, password, and personal information
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.TokenResponse "User created, access token issued"
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Failure 422 {object} errors.ErrorResponse "Email already registered - AUTH_005"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	tokens, err := h.authService.Register(req)
	if err != nil {
		if err == repositories.ErrEmailExists {
			return SendError(c, errors.AuthEmailTaken)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, tokens)
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate with email and password, receive a JWT access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenResponse "Login successful"
// @Failure 401 {object} errors.ErrorResponse "Invalid credentials - AUTH_001"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	tokens, err := h.authService.Login(req)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			return SendError(c, errors.AuthInvalidCredentials)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// GetProfile returns the authenticated user's profile
// @Summary Get current user profile
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Router /users/me [get]
func (h *AuthHandler) GetProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	profile, err := h.authService.GetProfile(userID)
	if err != nil {
		if err == repositories.ErrUserNotFound || err == repositories.ErrProfileNotFound {
			return SendError(c, errors.ProfileNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates mutable profile fields
// @Summary Update current user profile
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} dto.UserProfileResponse
// @Router /users/me [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	profile, err := h.authService.UpdateProfile(userID, req)
	if err != nil {
		if err == models.ErrInvalidCurrency {
			return SendError(c, errors.ProfileInvalidCurrency)
		}
		if err == repositories.ErrProfileNotFound {
			return SendError(c, errors.ProfileNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, profile)
}
