package handlers

import (
	"github.com/arzan03/ProfileSeller/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	users UserService
	log   zerolog.Logger
}

func NewUserHandler(users UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log.With().Str("component", "users").Logger()}
}

// List supports ?page, ?limit, ?search (name or email) and ?role. limit
// defaults to 10 and is capped at services.MaxLimit; pagination.limit reports
// the value applied.
func (h *UserHandler) List(c *fiber.Ctx) error {
	filter := services.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
	}

	users, pagination, err := h.users.List(c.UserContext(), filter, page(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"users": users, "pagination": pagination})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	var request services.UserUpdate
	if err := parseBody(c, &request); err != nil {
		return err
	}

	user, err := h.users.Update(c.UserContext(), id, request)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully", "user": user})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}

	h.log.Info().Str("user_id", id.Hex()).Msg("user deactivated")
	return c.JSON(fiber.Map{"message": "User deleted successfully (soft delete)"})
}

func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.users.Stats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}
