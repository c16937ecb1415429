package middleware

import (
	"github.com/arzan03/ProfileSeller/internal/models"
	"github.com/gofiber/fiber/v2"
)

// AdminMiddleware ensures that only users with the "admin" role get through.
// It reuses the claims of a preceding AuthMiddleware and otherwise checks
// the token itself.
func AdminMiddleware(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(RoleKey).(string)
		if !ok {
			claims, err := authenticate(c, tokens)
			if err != nil {
				return unauthorized(c, err)
			}
			role = claims.Role
			c.Locals(UserIDKey, claims.UserID)
			c.Locals(RoleKey, claims.Role)
		}

		if role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "Forbidden",
				"message": "Access denied. Admins only.",
			})
		}
		return c.Next()
	}
}
