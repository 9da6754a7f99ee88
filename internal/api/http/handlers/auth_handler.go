package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/api/dto"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/service"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// AuthHandler exposes registration, login, logout and identity echo.
type AuthHandler struct {
	auth       *service.AuthService
	cookieName string
	cookieTTL  time.Duration
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieName string, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: authService, cookieName: cookieName, cookieTTL: cookieTTL}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload!")
	}

	if err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created successfully!",
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload!")
	}

	user, session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    session.Token,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Welcome back, %s!", user.Username),
		"user": dto.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
			Email:    user.Email,
		},
	})
}

// Logout handles GET /api/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(h.cookieName)
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully!",
	})
}

// UserInfo handles GET /api/user_info.
func (h *AuthHandler) UserInfo(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	user := principal.User
	return c.JSON(fiber.Map{
		"success": true,
		"user": dto.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
			Email:    user.Email,
		},
	})
}

// ListUsers handles GET /api/users (admin only).
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.UserListItem, 0, len(users))
	for _, user := range users {
		items = append(items, dto.UserListItem{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Phone:     user.Phone,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   items,
	})
}
