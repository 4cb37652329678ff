package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/listing-api/internal/service"
	"github.com/maheshrc27/listing-api/internal/transfer"
)

type WebhookHandler struct {
	s service.CallbackService
}

func NewWebhookHandler(service service.CallbackService) *WebhookHandler {
	return &WebhookHandler{s: service}
}

func (h *WebhookHandler) AIContent(c *fiber.Ctx) error {
	var in transfer.AIContentCallback
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.s.HandleAIContent(c.Context(), &in)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, result, "AI content processed")
}

func (h *WebhookHandler) FacebookPublished(c *fiber.Ctx) error {
	var in transfer.FacebookPublishedCallback
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.s.HandleFacebookPublished(c.Context(), &in)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, result, "Facebook publish result processed")
}

func (h *WebhookHandler) Update(c *fiber.Ctx) error {
	var in transfer.UpdateCallback
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.s.HandleUpdate(c.Context(), &in)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, result, "Update processed")
}

func (h *WebhookHandler) Health(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, fiber.Map{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, "n8n update webhook is running")
}
