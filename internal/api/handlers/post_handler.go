package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/service"
	"github.com/maheshrc27/listing-api/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	q := transfer.DefaultListPostsQuery()
	if err := c.QueryParser(&q); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid query parameters")
	}

	page, err := h.s.List(c.Context(), q)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, page, "")
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var in transfer.PostCreation
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	post, err := h.s.Create(c.Context(), &in)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusCreated, post, "Post created successfully")
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	post, err := h.s.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, post, "")
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	var in transfer.PostUpdate
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	post, err := h.s.Update(c.Context(), id, &in)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, post, "Post updated successfully")
}

func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	if err := h.s.Delete(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Post deleted successfully")
}

func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	post, err := h.s.Publish(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, post, "Publishing workflow triggered")
}

func (h *PostHandler) RegeneratePost(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	post, err := h.s.Regenerate(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, post, "AI regeneration started")
}

func (h *PostHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.s.Stats(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, counts, "")
}

func (h *PostHandler) ReorderAssets(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	var in transfer.AssetOrder
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := transfer.Validate(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	ids := make([]uuid.UUID, 0, len(in.AssetIDs))
	for _, raw := range in.AssetIDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	assets, err := h.s.ReorderAssets(c.Context(), id, ids)
	if err != nil {
		return serviceError(c, err)
	}
	return respond(c, fiber.StatusOK, assets, "Assets reordered")
}
