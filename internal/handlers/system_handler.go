package handlers

import (
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// SystemInfo is what the health endpoint reports about the process.
type SystemInfo struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
	Production  bool   `json:"-"`
}

// SystemHandler serves the health and database diagnostics.
type SystemHandler struct {
	db   Database
	info SystemInfo
	log  zerolog.Logger
}

func NewSystemHandler(database Database, info SystemInfo, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{db: database, info: info, log: log.With().Str("component", "system").Logger()}
}

func (h *SystemHandler) message(err error) string {
	if h.info.Production {
		return "database unavailable"
	}
	return err.Error()
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	ctx := c.UserContext()

	stats, err := h.db.Stats(ctx)
	if err != nil {
		return h.unhealthy(c, err)
	}
	collections, err := h.db.Collections(ctx)
	if err != nil {
		return h.unhealthy(c, err)
	}

	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": timestamp(),
		"database": fiber.Map{
			"connected":   true,
			"collections": len(collections),
			"stats":       stats,
		},
		"server": h.info,
	})
}

func (h *SystemHandler) unhealthy(c *fiber.Ctx, err error) error {
	h.log.Warn().Err(err).Msg("health check failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":    "ERROR",
		"message":   h.message(err),
		"timestamp": timestamp(),
	})
}

func (h *SystemHandler) Database(c *fiber.Ctx) error {
	ctx := c.UserContext()

	collections, err := h.db.Collections(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": h.message(err)})
	}
	stats, err := h.db.Stats(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": h.message(err)})
	}

	return c.JSON(fiber.Map{
		"connection":  fiber.Map{"database": h.db.Name()},
		"collections": collections,
		"stats":       stats,
		"sizes": fiber.Map{
			"data":    humanize.Bytes(uint64(stats.DataSize)),
			"storage": humanize.Bytes(uint64(stats.StorageSize)),
			"indexes": humanize.Bytes(uint64(stats.IndexSize)),
		},
	})
}

// Test runs a write/read/delete round trip against a scratch collection.
func (h *SystemHandler) Test(c *fiber.Ctx) error {
	res, err := h.db.SmokeTest(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("smoke test failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "MongoDB test failed",
			"message": h.message(err),
		})
	}

	return c.JSON(fiber.Map{
		"message":        "MongoDB test successful!",
		"operation":      "CRUD Test",
		"inserted_id":    res.InsertedID,
		"found_document": res.Found,
		"database": fiber.Map{
			"name":              h.db.Name(),
			"collections_count": res.CollectionsCount,
		},
	})
}
