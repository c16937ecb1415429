package handlers

import (
	"github.com/arzan03/ProfileSeller/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type OrderHandler struct {
	orders OrderService
	log    zerolog.Logger
}

func NewOrderHandler(orders OrderService, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log.With().Str("component", "orders").Logger()}
}

// List supports ?page, ?limit, ?status, ?buyerId and ?sellerId. Every order
// comes with its buyer, seller and listing. limit defaults to 10 and is capped
// at services.MaxLimit; pagination.limit reports the value applied.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	filter := services.OrderFilter{
		Status:   c.Query("status"),
		BuyerID:  c.Query("buyerId"),
		SellerID: c.Query("sellerId"),
	}

	orders, pagination, err := h.orders.List(c.UserContext(), filter, page(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders, "pagination": pagination})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	order, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"order": order})
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var request services.OrderInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	order, err := h.orders.Create(c.UserContext(), request)
	if err != nil {
		return fail(c, err)
	}

	h.log.Info().
		Str("order_id", order.ID.Hex()).
		Str("profile_id", order.ProfileID.Hex()).
		Float64("amount", order.Amount).
		Msg("order placed")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	var request services.OrderUpdate
	if err := parseBody(c, &request); err != nil {
		return err
	}

	order, err := h.orders.Update(c.UserContext(), id, request)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated successfully", "order": order})
}

func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.orders.Stats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}
