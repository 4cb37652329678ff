package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/models"
	"github.com/maheshrc27/listing-api/internal/repository"
	"github.com/maheshrc27/listing-api/internal/transfer"
)

// minVideoOrder keeps AI videos behind the image block.
const minVideoOrder = 100

const facebookFailedNote = "Facebook publishing failed"

type CallbackService interface {
	HandleAIContent(ctx context.Context, in *transfer.AIContentCallback) (*transfer.CallbackResult, error)
	HandleFacebookPublished(ctx context.Context, in *transfer.FacebookPublishedCallback) (*transfer.CallbackResult, error)
	HandleUpdate(ctx context.Context, in *transfer.UpdateCallback) (*transfer.CallbackResult, error)
}

type callbackService struct {
	tr  repository.Transactor
	pr  repository.PostRepository
	ar  repository.AssetRepository
	sr  repository.PlatformSyncRepository
	now func() time.Time
}

func NewCallbackService(
	tr repository.Transactor,
	pr repository.PostRepository,
	ar repository.AssetRepository,
	sr repository.PlatformSyncRepository) CallbackService {
	return &callbackService{
		tr:  tr,
		pr:  pr,
		ar:  ar,
		sr:  sr,
		now: time.Now,
	}
}

func parsePostID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, validationError("postId: must be a valid UUID")
	}
	return id, nil
}

// lockPost reads the post FOR UPDATE; missing and soft-deleted posts are not found.
func (s *callbackService) lockPost(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Post, error) {
	post, err := s.pr.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		return nil, notFoundError("Post")
	}
	return post, nil
}

func (s *callbackService) HandleAIContent(ctx context.Context, in *transfer.AIContentCallback) (*transfer.CallbackResult, error) {
	if err := transfer.Validate(in); err != nil {
		return nil, validationError("%s", err.Error())
	}
	postID, err := parsePostID(in.PostID)
	if err != nil {
		return nil, err
	}

	result := &transfer.CallbackResult{PostID: in.PostID, Errors: in.Errors}

	err = s.tr.WithinTx(ctx, func(tx *sql.Tx) error {
		post, err := s.lockPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		if !post.Status.AwaitingAIContent() {
			return conflictError("Post is not pending AI generation. Current status: %s", post.Status)
		}

		if in.Status == transfer.CallbackStatusFailed {
			result.Status = models.PostStatusFailed
			return s.pr.UpdateStatus(ctx, tx, postID, models.PostStatusFailed)
		}

		content := in.GeneratedContent
		assets := make([]*models.Asset, 0, len(content.Images)+len(content.Videos))
		for i, img := range content.Images {
			assets = append(assets, aiImage(postID, img, i, fmt.Sprintf("ai-generated-image-%d.png", i+1)))
		}
		videoStart := minVideoOrder
		if len(content.Images) > videoStart {
			videoStart = len(content.Images)
		}
		for i, vid := range content.Videos {
			assets = append(assets, aiVideo(postID, vid, videoStart+i, fmt.Sprintf("ai-generated-video-%d.mp4", i+1)))
		}

		if err := s.ar.CreateMany(ctx, tx, assets); err != nil {
			return fmt.Errorf("error creating assets: %w", err)
		}
		if content.Text != nil && *content.Text != "" {
			if err := s.pr.Update(ctx, tx, postID, repository.PostUpdate{Description: content.Text}); err != nil {
				return fmt.Errorf("error updating description: %w", err)
			}
		}

		result.AssetsCreated = len(assets)
		result.Status = models.PostStatusReady
		return s.pr.UpdateStatus(ctx, tx, postID, models.PostStatusReady)
	})
	if err != nil {
		return nil, wrapCallbackError(err)
	}

	if in.Status == transfer.CallbackStatusFailed {
		slog.Error("AI generation failed", "post_id", postID, "errors", in.Errors)
	} else {
		slog.Info("AI content applied", "post_id", postID, "status", in.Status, "assets", result.AssetsCreated)
	}
	return result, nil
}

func (s *callbackService) HandleFacebookPublished(ctx context.Context, in *transfer.FacebookPublishedCallback) (*transfer.CallbackResult, error) {
	if err := transfer.Validate(in); err != nil {
		return nil, validationError("%s", err.Error())
	}
	postID, err := parsePostID(in.PostID)
	if err != nil {
		return nil, err
	}

	succeeded := in.Status == transfer.CallbackStatusSuccess
	status := models.PostStatusFailed
	if succeeded {
		status = models.PostStatusPublished
	}

	err = s.tr.WithinTx(ctx, func(tx *sql.Tx) error {
		post, err := s.lockPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		if !post.Status.AwaitingPublishResult() {
			return conflictError("Post is not in a publishable state. Current status: %s", post.Status)
		}

		if err := s.pr.UpdateStatus(ctx, tx, postID, status); err != nil {
			return fmt.Errorf("error updating post status: %w", err)
		}
		return s.upsertFacebookSync(ctx, tx, postID, in.FacebookPostID, in.PostURL, succeeded)
	})
	if err != nil {
		return nil, wrapCallbackError(err)
	}

	slog.Info("facebook publish result applied", "post_id", postID, "status", status)
	return &transfer.CallbackResult{
		PostID:            in.PostID,
		Status:            status,
		FacebookPublished: succeeded,
	}, nil
}

// HandleUpdate has no entry guard so the engine may re-send it. New assets
// are appended after the post's current highest order.
func (s *callbackService) HandleUpdate(ctx context.Context, in *transfer.UpdateCallback) (*transfer.CallbackResult, error) {
	if err := transfer.Validate(in); err != nil {
		return nil, validationError("%s", err.Error())
	}
	postID, err := parsePostID(in.PostID)
	if err != nil {
		return nil, err
	}

	fbSucceeded := in.FacebookData != nil && in.FacebookData.Status == transfer.CallbackStatusSuccess
	if in.PostStatus != nil && *in.PostStatus == models.PostStatusPublished && !fbSucceeded {
		return nil, validationError("postStatus PUBLISHED requires facebookData with status success")
	}

	result := &transfer.CallbackResult{PostID: in.PostID, FacebookPublished: fbSucceeded, Errors: in.Errors}

	err = s.tr.WithinTx(ctx, func(tx *sql.Tx) error {
		post, err := s.lockPost(ctx, tx, postID)
		if err != nil {
			return err
		}

		maxOrder, err := s.ar.MaxOrder(ctx, tx, postID)
		if err != nil {
			return fmt.Errorf("error reading asset order: %w", err)
		}
		// MaxOrder is -1 for a post without assets, so its first asset gets order 0.
		cursor := maxOrder + 1

		var assets []*models.Asset
		if content := in.GeneratedContent; content != nil {
			for _, img := range content.Images {
				assets = append(assets, aiImage(postID, img, cursor, fmt.Sprintf("ai-generated-image-%d.png", cursor)))
				cursor++
			}
			for _, vid := range content.Videos {
				assets = append(assets, aiVideo(postID, vid, cursor, fmt.Sprintf("ai-generated-video-%d.mp4", cursor)))
				cursor++
			}
		}
		if err := s.ar.CreateMany(ctx, tx, assets); err != nil {
			return fmt.Errorf("error creating assets: %w", err)
		}

		if in.Description != nil && *in.Description != "" {
			if err := s.pr.Update(ctx, tx, postID, repository.PostUpdate{Description: in.Description}); err != nil {
				return fmt.Errorf("error updating description: %w", err)
			}
		}

		next, change := resolveUpdateStatus(in)
		// Only an explicit postStatus moves a post out of PUBLISHED.
		if post.Status == models.PostStatusPublished && in.PostStatus == nil {
			change = false
		}
		result.Status = post.Status
		if change {
			if err := s.pr.UpdateStatus(ctx, tx, postID, next); err != nil {
				return fmt.Errorf("error updating post status: %w", err)
			}
			result.Status = next
		}

		if in.FacebookData != nil {
			if err := s.upsertFacebookSync(ctx, tx, postID, in.FacebookData.PostID, in.FacebookData.PostURL, fbSucceeded); err != nil {
				return err
			}
		}

		result.AssetsCreated = len(assets)
		return nil
	})
	if err != nil {
		return nil, wrapCallbackError(err)
	}

	if len(in.Errors) > 0 {
		slog.Error("n8n update reported errors", "post_id", postID, "errors", in.Errors)
	}
	slog.Info("n8n update processed", "post_id", postID, "status", in.Status, "assets", result.AssetsCreated, "facebook", in.FacebookData != nil)
	return result, nil
}

// resolveUpdateStatus applies the priority: explicit postStatus, then the
// Facebook result, then the overall status. partial changes nothing.
func resolveUpdateStatus(in *transfer.UpdateCallback) (models.PostStatus, bool) {
	if in.PostStatus != nil {
		return *in.PostStatus, true
	}
	if in.FacebookData != nil {
		if in.FacebookData.Status == transfer.CallbackStatusSuccess {
			return models.PostStatusPublished, true
		}
		return models.PostStatusFailed, true
	}
	switch in.Status {
	case transfer.CallbackStatusSuccess:
		return models.PostStatusReady, true
	case transfer.CallbackStatusFailed:
		return models.PostStatusFailed, true
	}
	return "", false
}

func (s *callbackService) upsertFacebookSync(ctx context.Context, tx *sql.Tx, postID uuid.UUID, externalID, externalURL string, succeeded bool) error {
	now := s.now()
	ps := &models.PlatformSync{
		PostID:       postID,
		Platform:     models.PlatformFacebook,
		ExternalID:   &externalID,
		ExternalURL:  &externalURL,
		SyncStatus:   models.SyncStatusSynced,
		LastSyncedAt: &now,
	}
	if !succeeded {
		note := facebookFailedNote
		ps.SyncStatus = models.SyncStatusFailed
		ps.SyncError = &note
	}
	if err := s.sr.Upsert(ctx, tx, ps); err != nil {
		return fmt.Errorf("error saving platform sync: %w", err)
	}
	return nil
}

func aiImage(postID uuid.UUID, img transfer.GeneratedImage, order int, fileName string) *models.Asset {
	return &models.Asset{
		PostID:           postID,
		URL:              img.URL,
		Type:             models.AssetTypeImage,
		Source:           models.AssetSourceAI,
		Order:            order,
		FileName:         &fileName,
		ProcessingStatus: models.ProcessingCompleted,
	}
}

func aiVideo(postID uuid.UUID, vid transfer.GeneratedVideo, order int, fileName string) *models.Asset {
	return &models.Asset{
		PostID:           postID,
		URL:              vid.URL,
		Type:             models.AssetTypeVideo,
		Source:           models.AssetSourceAI,
		Order:            order,
		FileName:         &fileName,
		Duration:         vid.Duration,
		ProcessingStatus: models.ProcessingCompleted,
	}
}

// wrapCallbackError keeps typed errors and hides the rest behind a 500.
func wrapCallbackError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return internalError("Failed to process callback", err)
}
