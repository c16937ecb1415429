package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/arzan03/ProfileSeller/internal/db"
	"github.com/arzan03/ProfileSeller/internal/models"
	"github.com/arzan03/ProfileSeller/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The handlers depend on these interfaces rather than on the concrete
// services so tests can swap in fakes.

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (models.User, error)
	Login(ctx context.Context, in services.LoginInput) (models.User, string, error)
	ProfileFromToken(ctx context.Context, token string) (models.User, error)
}

type UserService interface {
	List(ctx context.Context, f services.UserFilter, p services.Page) ([]models.User, services.Pagination, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, u services.UserUpdate) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Stats(ctx context.Context) (services.UserStats, error)
}

type ProfileService interface {
	List(ctx context.Context, f services.ProfileFilter, p services.Page) ([]models.Profile, services.Pagination, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Profile, error)
	Create(ctx context.Context, in services.ProfileInput) (models.Profile, error)
	Update(ctx context.Context, id primitive.ObjectID, u services.ProfileUpdate) (models.Profile, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddAttachment(ctx context.Context, id primitive.ObjectID, a models.Attachment) error
	Stats(ctx context.Context) (services.ProfileStats, error)
}

type OrderService interface {
	List(ctx context.Context, f services.OrderFilter, p services.Page) ([]models.OrderView, services.Pagination, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.OrderView, error)
	Create(ctx context.Context, in services.OrderInput) (models.Order, error)
	Update(ctx context.Context, id primitive.ObjectID, u services.OrderUpdate) (models.Order, error)
	Stats(ctx context.Context) (services.OrderStats, error)
}

// AttachmentStore is the object store behind listing attachments.
type AttachmentStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

// Database is the diagnostic side of the data access layer.
type Database interface {
	Name() string
	Collections(ctx context.Context) ([]db.CollectionInfo, error)
	Stats(ctx context.Context) (db.Stats, error)
	SmokeTest(ctx context.Context) (db.SmokeResult, error)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// fail writes the response for a service error. Errors without a client
// facing kind are handed to the app's ErrorHandler as a 500.
func fail(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrAuthentication):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrAuthorization):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	default:
		return err
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   http.StatusText(status),
		"message": services.Message(err),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   http.StatusText(fiber.StatusBadRequest),
		"message": msg,
	})
}

// errInvalidBody is rendered by ErrorHandler as a 400.
var errInvalidBody = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")

// parseBody decodes the JSON body into v. Callers must return its error
// untouched so the request stops there.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return errInvalidBody
	}
	return nil
}

func pathID(c *fiber.Ctx) (primitive.ObjectID, error) {
	return services.ParseID(c.Params("id"))
}

func page(c *fiber.Ctx) services.Page {
	return services.ParsePage(c.Query("page"), c.Query("limit"))
}

// ErrorHandler is the final fallback for errors returned by handlers and for
// recovered panics. In production the message of a 500 is not exposed.
func ErrorHandler(log zerolog.Logger, production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code != fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error":   http.StatusText(fe.Code),
				"message": fe.Message,
			})
		}

		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("request failed")

		message := err.Error()
		if production {
			message = "Something went wrong"
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     "Internal Server Error",
			"message":   message,
			"timestamp": timestamp(),
		})
	}
}

// NotFound answers any request no route matched.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":     "Endpoint not found",
		"path":      c.OriginalURL(),
		"method":    c.Method(),
		"timestamp": timestamp(),
	})
}
