package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/link-shortener/internal/api/dto"
	"github.com/spec-kit/link-shortener/internal/auth"
	"github.com/spec-kit/link-shortener/internal/domain"
	"github.com/spec-kit/link-shortener/internal/service"
	apperrors "github.com/spec-kit/link-shortener/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and refresh endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewUnprocessable("invalid payload", nil)
	}
	if details, err := dto.ValidateStruct(req); err != nil {
		return apperrors.NewUnprocessable("validation failed", details)
	}

	user, session, err := h.auth.Register(c.Context(), req.Title, req.Email, req.Password)
	if err != nil {
		return err
	}

	auth.SetSessionCookies(c, session)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}

// Login handles POST /auth/login. Unknown email and wrong password share one
// response shape, so accounts cannot be enumerated.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewUnprocessable("invalid payload", nil)
	}
	if details, err := dto.ValidateStruct(req); err != nil {
		return apperrors.NewUnprocessable("validation failed", details)
	}

	user, session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return err
	}

	auth.SetSessionCookies(c, session)
	return c.JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}

// Refresh handles POST /auth/refresh: exchanges the refresh cookie for a new
// access cookie. This is the only place a refresh token is accepted.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refresh := auth.RefreshFromRequest(c)
	if refresh == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	token, expiresAt, err := h.auth.Refresh(refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return err
	}

	auth.SetAccessCookie(c, token, expiresAt)
	return c.JSON(fiber.Map{"data": fiber.Map{"expires_at": expiresAt}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID,
		Title: user.Title,
		Email: user.Email,
		Role:  string(user.Role),
	}
}
