package middleware

import (
	"github.com/arzan03/ProfileSeller/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*services.Claims, error)
}

// AuthMiddleware validates the JWT in the Authorization header and stores
// the user id and role in the request locals.
func AuthMiddleware(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, tokens)
		if err != nil {
			return unauthorized(c, err)
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(RoleKey, claims.Role)
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, tokens TokenParser) (*services.Claims, error) {
	token, err := services.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return nil, err
	}
	return tokens.Parse(token)
}

func unauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "Unauthorized",
		"message": services.Message(err),
	})
}
