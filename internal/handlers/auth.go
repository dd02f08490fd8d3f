package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vendra/internal/services/auth"
	"vendra/internal/utils/response"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		ShopName string `json:"shop_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "email and password are required")
	}

	user, err := h.authService.Register(c.Context(), input.Email, input.Password, input.ShopName)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	return response.Success(c, "account created", fiber.Map{"user": user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	user, token, err := h.authService.Login(c.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Error(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return response.ServerError(c, "login failed")
	}

	return response.Success(c, "logged in", fiber.Map{
		"token": token,
		"user":  user,
	})
}
