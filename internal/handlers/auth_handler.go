package handlers

import (
	"github.com/arzan03/ProfileSeller/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	auth AuthService
	log  zerolog.Logger
}

func NewAuthHandler(auth AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log.With().Str("component", "auth").Logger()}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request services.RegisterInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), request)
	if err != nil {
		return fail(c, err)
	}

	h.log.Info().Str("user_id", user.ID.Hex()).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request services.LoginInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	user, token, err := h.auth.Login(c.UserContext(), request)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Logout is stateless; tokens simply expire.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	token, err := services.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return fail(c, err)
	}

	user, err := h.auth.ProfileFromToken(c.UserContext(), token)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
