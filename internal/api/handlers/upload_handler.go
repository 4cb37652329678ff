package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/service"
)

type UploadHandler struct {
	s service.UploadService
}

func NewUploadHandler(service service.UploadService) *UploadHandler {
	return &UploadHandler{s: service}
}

func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return fail(c, fiber.StatusBadRequest, "Unable to parse form")
	}

	postID, err := uuid.Parse(c.FormValue("postId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "postId: must be a valid UUID")
	}

	assets, err := h.s.Upload(c.Context(), postID, c.FormValue("type"), form.File["files"])
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusCreated, assets, "Files uploaded successfully")
}

func (h *UploadHandler) DeleteAsset(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid asset id")
	}

	if err := h.s.DeleteAsset(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Asset deleted successfully")
}
