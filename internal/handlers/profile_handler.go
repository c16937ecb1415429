package handlers

import (
	"net/url"
	"time"

	"github.com/arzan03/ProfileSeller/internal/models"
	"github.com/arzan03/ProfileSeller/internal/services"
	"github.com/arzan03/ProfileSeller/internal/storage"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AttachmentURLExpiry is how long a presigned download link stays valid.
const AttachmentURLExpiry = 15 * time.Minute

type ProfileHandler struct {
	profiles ProfileService
	store    AttachmentStore
	log      zerolog.Logger
}

// NewProfileHandler builds the listing handler. store may be nil, in which
// case the attachment routes answer 503.
func NewProfileHandler(profiles ProfileService, store AttachmentStore, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		store:    store,
		log:      log.With().Str("component", "profiles").Logger(),
	}
}

// List supports ?page, ?limit, ?search, ?status and ?category. Content bodies
// are left out of the list view. limit defaults to 10 and is capped at
// services.MaxLimit; pagination.limit reports the value applied.
func (h *ProfileHandler) List(c *fiber.Ctx) error {
	filter := services.ProfileFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}

	profiles, pagination, err := h.profiles.List(c.UserContext(), filter, page(c))
	if err != nil {
		return fail(c, err)
	}

	summaries := make([]models.ProfileSummary, len(profiles))
	for i, p := range profiles {
		summaries[i] = p.Summary()
	}
	return c.JSON(fiber.Map{"profiles": summaries, "pagination": pagination})
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	profile, err := h.profiles.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	var request services.ProfileInput
	if err := parseBody(c, &request); err != nil {
		return err
	}

	profile, err := h.profiles.Create(c.UserContext(), request)
	if err != nil {
		return fail(c, err)
	}

	h.log.Info().Str("profile_id", profile.ID.Hex()).Float64("price", profile.Price).Msg("profile created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Profile created successfully",
		"profile": profile,
	})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	var request services.ProfileUpdate
	if err := parseBody(c, &request); err != nil {
		return err
	}

	profile, err := h.profiles.Update(c.UserContext(), id, request)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "profile": profile})
}

func (h *ProfileHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.profiles.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile deleted successfully (soft delete)"})
}

func (h *ProfileHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.profiles.Stats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

func (h *ProfileHandler) storageUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":   "Service Unavailable",
		"message": "attachment storage not configured",
	})
}

// UploadAttachment stores the multipart "file" field and records it on the
// listing. The object is removed again if the listing can't be updated.
func (h *ProfileHandler) UploadAttachment(c *fiber.Ctx) error {
	if h.store == nil {
		return h.storageUnavailable(c)
	}

	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	if _, err := h.profiles.Get(ctx, id); err != nil {
		return fail(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}

	key := storage.ObjectKey(id.Hex(), fileHeader.Filename)
	if err := h.store.Put(ctx, key, file, fileHeader.Size, contentType); err != nil {
		return err
	}

	attachment := models.Attachment{
		Key:         key,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		UploadedAt:  time.Now().UTC(),
	}

	if err := h.profiles.AddAttachment(ctx, id, attachment); err != nil {
		if rmErr := h.store.Remove(ctx, key); rmErr != nil {
			h.log.Warn().Err(rmErr).Str("key", key).Msg("orphaned attachment left in bucket")
		}
		return fail(c, err)
	}

	h.log.Info().
		Str("profile_id", id.Hex()).
		Str("key", key).
		Str("size", humanize.Bytes(uint64(fileHeader.Size))).
		Msg("attachment uploaded")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Attachment uploaded successfully",
		"attachment": attachment,
	})
}

// AttachmentURL returns a presigned download link for one attachment of the
// listing. The key is everything after /attachments/.
func (h *ProfileHandler) AttachmentURL(c *fiber.Ctx) error {
	if h.store == nil {
		return h.storageUnavailable(c)
	}

	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	key, err := url.PathUnescape(c.Params("*"))
	if err != nil || key == "" {
		return badRequest(c, "invalid attachment key")
	}

	ctx := c.UserContext()
	profile, err := h.profiles.Get(ctx, id)
	if err != nil {
		return fail(c, err)
	}

	if _, ok := profile.Attachment(key); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "attachment not found",
		})
	}

	link, err := h.store.PresignedURL(ctx, key, AttachmentURLExpiry)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"url":       link,
		"expiresIn": int(AttachmentURLExpiry.Seconds()),
	})
}
