package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	config "github.com/maheshrc27/listing-api/configs"
	"github.com/maheshrc27/listing-api/internal/transfer"
)

var ErrWebhookNotConfigured = errors.New("N8N_WEBHOOK_URL is not configured")

// N8NService delivers trigger payloads to the workflow webhook. A nil
// error means the engine accepted the request (2xx), nothing more.
type N8NService interface {
	Trigger(ctx context.Context, payload *transfer.TriggerPayload) error
}

type n8nService struct {
	cfg    config.N8N
	client *http.Client
}

func NewN8NService(cfg config.N8N) N8NService {
	return &n8nService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *n8nService) Trigger(ctx context.Context, payload *transfer.TriggerPayload) error {
	if s.cfg.WebhookURL == "" {
		slog.Warn(ErrWebhookNotConfigured.Error(), "post_id", payload.PostID)
		return ErrWebhookNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", s.cfg.APIKey)
	} else {
		slog.Warn("N8N_API_KEY is not configured, sending unauthenticated trigger", "post_id", payload.PostID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("n8n webhook request failed", "post_id", payload.PostID, "error", err)
		return fmt.Errorf("failed to call n8n webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("n8n webhook failed", "post_id", payload.PostID, "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("n8n webhook returned status %d", resp.StatusCode)
	}

	slog.Info("n8n workflow triggered", "post_id", payload.PostID, "frames", len(payload.Frames))
	return nil
}
