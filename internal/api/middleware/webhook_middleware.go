package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const APIKeyHeader = "X-API-Key"

type WebhookMiddleware struct {
	secret string
}

func NewWebhookMiddleware(secret string) *WebhookMiddleware {
	if secret == "" {
		slog.Warn("N8N_API_KEY is not set, webhook callbacks are not authenticated")
	}
	return &WebhookMiddleware{secret: secret}
}

// RequireAPIKey checks the shared secret sent by the workflow engine.
func (m *WebhookMiddleware) RequireAPIKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.secret == "" {
			return c.Next()
		}

		key := c.Get(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(m.secret)) != 1 {
			slog.Warn("rejected webhook call with invalid api key", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid API key",
			})
		}
		return c.Next()
	}
}
