package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/listing-api/internal/api/middleware"
)

type Handlers struct {
	Post    *PostHandler
	Upload  *UploadHandler
	Webhook *WebhookHandler
}

func Register(app fiber.Router, h Handlers, webhookAuth *middleware.WebhookMiddleware) {
	posts := app.Group("/posts")
	posts.Get("/", h.Post.ListPosts)
	posts.Post("/", h.Post.CreatePost)
	posts.Get("/stats", h.Post.Stats)
	posts.Get("/:id", h.Post.GetPost)
	posts.Put("/:id", h.Post.UpdatePost)
	posts.Delete("/:id", h.Post.DeletePost)
	posts.Post("/:id/publish", h.Post.PublishPost)
	posts.Post("/:id/regenerate", h.Post.RegeneratePost)
	posts.Put("/:id/assets/order", h.Post.ReorderAssets)

	app.Post("/upload", h.Upload.Upload)
	app.Delete("/assets/:id", h.Upload.DeleteAsset)

	callbacks := app.Group("/webhooks/callback")
	callbacks.Get("/update", h.Webhook.Health)
	callbacks.Post("/ai-content", webhookAuth.RequireAPIKey(), h.Webhook.AIContent)
	callbacks.Post("/facebook-published", webhookAuth.RequireAPIKey(), h.Webhook.FacebookPublished)
	callbacks.Post("/update", webhookAuth.RequireAPIKey(), h.Webhook.Update)
}
