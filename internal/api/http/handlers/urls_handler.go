package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/link-shortener/internal/api/dto"
	"github.com/spec-kit/link-shortener/internal/auth"
	"github.com/spec-kit/link-shortener/internal/events"
	"github.com/spec-kit/link-shortener/internal/observability"
	"github.com/spec-kit/link-shortener/internal/service"
	apperrors "github.com/spec-kit/link-shortener/pkg/util/errorutil"
)

// URLsHandler manages short URL endpoints.
type URLsHandler struct {
	service *service.URLService
	metrics *observability.Metrics
}

// NewURLsHandler constructs handler.
func NewURLsHandler(urlService *service.URLService, metrics *observability.Metrics) *URLsHandler {
	return &URLsHandler{service: urlService, metrics: metrics}
}

// Create POST /api/private/url/save.
func (h *URLsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	var req dto.CreateURLRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewUnprocessable("invalid payload", nil)
	}
	if details, err := dto.ValidateStruct(req); err != nil {
		return apperrors.NewUnprocessable("validation failed", details)
	}

	short, err := h.service.Create(c.Context(), req.URL, identity.SubjectID, events.SourceHTTP)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTarget) {
			return apperrors.NewUnprocessable("invalid url", nil)
		}
		return err
	}

	h.metrics.IncURLShortened()
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewURLResponse(short)})
}

// List GET /api/url.
func (h *URLsHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	urls, err := h.service.ListAll(c.Context(), limit, offset)
	if err != nil {
		return err
	}

	items := make([]dto.URLResponse, 0, len(urls))
	for i := range urls {
		items = append(items, dto.NewURLResponse(&urls[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Delete DELETE /api/private/url/:id.
func (h *URLsHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	if err := h.service.Delete(c.Context(), c.Params("id"), identity); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Redirect GET /r/:alias.
func (h *URLsHandler) Redirect(c *fiber.Ctx) error {
	target, err := h.service.Resolve(c.Context(), c.Params("alias"))
	if err != nil {
		return apperrors.NewNotFound("url", nil)
	}

	h.metrics.IncURLRedirects()
	return c.Redirect(target, http.StatusFound)
}
