package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/majorossy/phreshfoods.com-sub003/internal/dto"
	"github.com/majorossy/phreshfoods.com-sub003/internal/service"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	if req.Password == "" {
		return Error(c, http.StatusBadRequest, "password is required")
	}

	token, err := h.authService.Login(c.Request().Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return Error(c, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, service.ErrAdminDisabled):
			return Error(c, http.StatusServiceUnavailable, "admin login is disabled")
		default:
			return Error(c, http.StatusInternalServerError, "unable to authenticate")
		}
	}

	return Success(c, http.StatusOK, "login successful", dto.LoginResponse{AccessToken: token})
}
