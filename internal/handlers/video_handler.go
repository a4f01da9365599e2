package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	models "github.com/satyam-kanaujiya/watchtube/internal/media"
	service "github.com/satyam-kanaujiya/watchtube/internal/services"
	"github.com/satyam-kanaujiya/watchtube/internal/staging"
	utils "github.com/satyam-kanaujiya/watchtube/internal/utis"
)

// TokenVerifier lets tests swap the RS256 verifier for a stub.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

type Handler struct {
	verifier  TokenVerifier
	publish   *service.PublishService
	media     *service.MediaService
	discovery *service.DiscoveryService
	staging   *staging.Store
	log       *zap.SugaredLogger
}

func NewHandler(v TokenVerifier, publish *service.PublishService, media *service.MediaService, discovery *service.DiscoveryService, st *staging.Store, log *zap.SugaredLogger) *Handler {
	return &Handler{verifier: v, publish: publish, media: media, discovery: discovery, staging: st, log: log}
}

// Register mounts the routes. Static paths go first so they are not
// swallowed by /:id.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api/videos")
	api.Get("/trend", h.Trending)
	api.Get("/random", h.Random)
	api.Get("/sub", h.SubscribedFeed)
	api.Get("/tags", h.ByTags)
	api.Get("/search", h.Search)
	api.Put("/view/:id", h.View)
	api.Get("/:id/url", h.SignedURL)
	api.Get("/:id", h.Get)
	api.Put("/:id", h.Update)
	api.Post("/", h.Publish)
}

// POST /api/videos (multipart: video, img, title, description, tags)
func (h *Handler) Publish(c *fiber.Ctx) error {
	userID, err := h.authenticate(c)
	if err != nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, err.Error())
	}

	imgHeader, err := c.FormFile("img")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "img file missing")
	}
	vidHeader, err := c.FormFile("video")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "video file missing")
	}
	if err := utils.ValidateFileHeader(imgHeader, models.AssetKindImage); err != nil {
		return h.fail(c, err)
	}
	if err := utils.ValidateFileHeader(vidHeader, models.AssetKindVideo); err != nil {
		return h.fail(c, err)
	}

	img, err := h.staging.Stage(imgHeader, models.AssetKindImage)
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, "cannot stage image")
	}
	vid, err := h.staging.Stage(vidHeader, models.AssetKindVideo)
	if err != nil {
		_ = img.Release()
		return utils.JSONError(c, fiber.StatusInternalServerError, "cannot stage video")
	}

	in := service.PublishInput{
		OwnerID:     userID,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Tags:        utils.ParseTags(c.FormValue("tags")),
		Image:       img,
		Video:       vid,
		Progress: func(kind models.AssetKind, sent, total int64) {
			h.log.Debugw("upload progress", "kind", kind, "sent", sent, "total", total)
		},
	}
	m, err := h.publish.PublishMedia(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, "video published", m)
}

// GET /api/videos/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	m, err := h.media.GetVideo(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "video fetched", m)
}

// PUT /api/videos/:id
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := h.authenticate(c)
	if err != nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, err.Error())
	}
	var patch models.MediaPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	m, err := h.media.UpdateMedia(c.Context(), c.Params("id"), userID, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "video updated", m)
}

// PUT /api/videos/view/:id
func (h *Handler) View(c *fiber.Ctx) error {
	m, err := h.media.IncrementViews(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "views increased", m)
}

// GET /api/videos/:id/url
func (h *Handler) SignedURL(c *fiber.Ctx) error {
	u, err := h.media.GetSignedURL(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "signed url", fiber.Map{"url": u})
}

// GET /api/videos/trend
func (h *Handler) Trending(c *fiber.Ctx) error {
	vids, err := h.discovery.Trending(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "trending videos", vids)
}

// GET /api/videos/random
func (h *Handler) Random(c *fiber.Ctx) error {
	vids, err := h.discovery.Random(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "random videos", vids)
}

// GET /api/videos/tags?tags=a,b
func (h *Handler) ByTags(c *fiber.Ctx) error {
	tags := utils.ParseTags(c.Query("tags"))
	vids, err := h.discovery.ByTags(c.Context(), tags)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "videos by tags", vids)
}

// GET /api/videos/search?q=...
func (h *Handler) Search(c *fiber.Ctx) error {
	vids, err := h.discovery.Search(c.Context(), c.Query("q"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "search results", vids)
}

// GET /api/videos/sub?channels=a,b — the gateway resolves the caller's
// subscriptions and passes the channel list through.
func (h *Handler) SubscribedFeed(c *fiber.Ctx) error {
	if _, err := h.authenticate(c); err != nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, err.Error())
	}
	channels := utils.ParseTags(c.Query("channels"))
	vids, err := h.discovery.SubscribedFeed(c.Context(), channels)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "subscribed videos", vids)
}

func (h *Handler) authenticate(c *fiber.Ctx) (string, error) {
	token := c.Get("Authorization")
	if token == "" {
		return "", errors.New("missing auth")
	}
	token = strings.TrimPrefix(token, "Bearer ")
	userID, err := h.verifier.VerifyToken(token)
	if err != nil {
		return "", errors.New("invalid token")
	}
	return userID, nil
}

// fail translates the service error taxonomy into HTTP statuses. The
// core never sees status codes; this is the only translation point.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var ve *utils.ValidationError
	var ue *utils.AssetUploadError
	switch {
	case errors.As(err, &ve):
		return utils.JSONError(c, fiber.StatusBadRequest, ve.Error())
	case errors.As(err, &ue):
		return utils.JSONError(c, fiber.StatusBadGateway, ue.Error())
	case errors.Is(err, utils.ErrRecordCreation):
		return utils.JSONError(c, fiber.StatusInternalServerError, "video cannot be added, please try again")
	case errors.Is(err, utils.ErrNotFound):
		return utils.JSONError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, utils.ErrForbidden):
		return utils.JSONError(c, fiber.StatusForbidden, "you cannot modify someone else's video")
	case errors.Is(err, utils.ErrNoContent):
		return c.SendStatus(fiber.StatusNoContent)
	default:
		h.log.Errorw("request failed", "path", c.Path(), "error", err)
		return utils.JSONError(c, fiber.StatusInternalServerError, "internal error")
	}
}
