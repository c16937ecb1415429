package server

import (
	"github.com/arzan03/ProfileSeller/internal/config"
	"github.com/arzan03/ProfileSeller/internal/handlers"
	"github.com/arzan03/ProfileSeller/internal/middleware"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

const bodyLimit = 10 << 20

// Dependencies are the collaborators the routes are served by. Attachments
// may be nil when no object store is configured.
type Dependencies struct {
	Auth        handlers.AuthService
	Users       handlers.UserService
	Profiles    handlers.ProfileService
	Orders      handlers.OrderService
	Attachments handlers.AttachmentStore
	Database    handlers.Database
	Tokens      middleware.TokenParser
}

// New builds the fiber app with its middleware chain and all routes.
func New(cfg config.Config, deps Dependencies, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ProfileSeller",
		BodyLimit:    bodyLimit,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: handlers.ErrorHandler(log, cfg.IsProduction()),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return xid.New().String() },
	}))
	app.Use(logger.New(logger.Config{
		Format: "${locals:requestid} ${status} - ${latency} ${method} ${path}",
		Output: log.With().Str("component", "http").Logger(),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	registerRoutes(app, cfg, deps, log)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}
	app.Use(handlers.NotFound)

	return app
}

func registerRoutes(app *fiber.App, cfg config.Config, deps Dependencies, log zerolog.Logger) {
	authHandler := handlers.NewAuthHandler(deps.Auth, log)
	userHandler := handlers.NewUserHandler(deps.Users, log)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, deps.Attachments, log)
	orderHandler := handlers.NewOrderHandler(deps.Orders, log)
	systemHandler := handlers.NewSystemHandler(deps.Database, handlers.SystemInfo{
		Port:        cfg.Port,
		Environment: cfg.Env,
		Production:  cfg.IsProduction(),
	}, log)

	// User administration is open unless ENFORCE_ADMIN is set.
	adminOnly := func(h fiber.Handler) []fiber.Handler {
		if !cfg.EnforceAdmin {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{
			middleware.AuthMiddleware(deps.Tokens),
			middleware.AdminMiddleware(deps.Tokens),
			h,
		}
	}

	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/profile", authHandler.Profile)

	// User Routes
	users := api.Group("/users")
	users.Get("/", userHandler.List)
	users.Get("/stats/overview", adminOnly(userHandler.Stats)...)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", adminOnly(userHandler.Update)...)
	users.Delete("/:id", adminOnly(userHandler.Delete)...)

	// Profile Routes
	profiles := api.Group("/profiles")
	profiles.Get("/", profileHandler.List)
	profiles.Post("/", profileHandler.Create)
	profiles.Get("/stats/overview", profileHandler.Stats)
	profiles.Get("/:id", profileHandler.Get)
	profiles.Put("/:id", profileHandler.Update)
	profiles.Delete("/:id", profileHandler.Delete)
	profiles.Post("/:id/attachments", profileHandler.UploadAttachment)
	profiles.Get("/:id/attachments/*", profileHandler.AttachmentURL)

	// Order Routes
	orders := api.Group("/orders")
	orders.Get("/", orderHandler.List)
	orders.Post("/", orderHandler.Create)
	orders.Get("/stats/overview", orderHandler.Stats)
	orders.Get("/:id", orderHandler.Get)
	orders.Put("/:id", orderHandler.Update)

	// Diagnostics
	api.Get("/health", systemHandler.Health)
	api.Get("/database", systemHandler.Database)
	api.Get("/test", systemHandler.Test)
}
