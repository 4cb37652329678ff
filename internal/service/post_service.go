package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/models"
	"github.com/maheshrc27/listing-api/internal/repository"
	"github.com/maheshrc27/listing-api/internal/transfer"
)

type PostService interface {
	Create(ctx context.Context, in *transfer.PostCreation) (*models.Post, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, q transfer.ListPostsQuery) (*transfer.PostPage, error)
	Update(ctx context.Context, id uuid.UUID, in *transfer.PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Publish(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Regenerate(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Stats(ctx context.Context) (map[models.PostStatus]int, error)
	ReorderAssets(ctx context.Context, id uuid.UUID, assetIDs []uuid.UUID) ([]*models.Asset, error)
}

type postService struct {
	tr repository.Transactor
	pr repository.PostRepository
	ar repository.AssetRepository
	sr repository.PlatformSyncRepository
	qr repository.PublishingQueueRepository
	lr repository.AiGenerationLogRepository
	wf WorkflowService
	d  TriggerDispatcher
}

func NewPostService(
	tr repository.Transactor,
	pr repository.PostRepository,
	ar repository.AssetRepository,
	sr repository.PlatformSyncRepository,
	qr repository.PublishingQueueRepository,
	lr repository.AiGenerationLogRepository,
	wf WorkflowService,
	d TriggerDispatcher) PostService {
	return &postService{
		tr: tr,
		pr: pr,
		ar: ar,
		sr: sr,
		qr: qr,
		lr: lr,
		wf: wf,
		d:  d,
	}
}

func (s *postService) Create(ctx context.Context, in *transfer.PostCreation) (*models.Post, error) {
	if err := transfer.Validate(in); err != nil {
		return nil, validationError("%s", err.Error())
	}

	post := &models.Post{
		Title:            in.Title,
		Description:      in.Description,
		ProjectDetails:   in.ProjectDetails.Model(),
		UseAiImage:       in.UseAiImage,
		UseAiVideo:       in.UseAiVideo,
		UseAiText:        in.UseAiText,
		AiPromptOverride: in.AiPromptOverride,
	}
	post.Status = post.InitialStatus()

	if err := s.pr.Create(ctx, nil, post); err != nil {
		return nil, internalError("error creating post", err)
	}

	if post.Status == models.PostStatusPendingAI {
		s.dispatch(ctx, post, TriggerReasonCreate)
	}

	slog.Info("post created", "post_id", post.ID, "status", post.Status)
	return post, nil
}

// dispatch hands the trigger to the background. If that fails the post is
// compensated right away.
func (s *postService) dispatch(ctx context.Context, post *models.Post, reason string) {
	err := s.d.Dispatch(ctx, TriggerJob{PostID: post.ID, Reason: reason})
	if err == nil {
		return
	}
	slog.Error("failed to dispatch workflow trigger", "post_id", post.ID, "reason", reason, "error", err)
	if s.wf.Compensate(ctx, post.ID, err) {
		post.Status = models.PostStatusFailed
	}
}

func (s *postService) load(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, nil, id)
	if err != nil {
		return nil, internalError("error getting post", err)
	}
	if post == nil {
		return nil, notFoundError("Post")
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.Assets, err = s.ar.ListByPostID(ctx, nil, id); err != nil {
		return nil, internalError("error getting assets", err)
	}
	if post.PlatformSyncs, err = s.sr.ListByPostID(ctx, id); err != nil {
		return nil, internalError("error getting platform syncs", err)
	}
	if post.PublishingQueue, err = s.qr.GetByPostID(ctx, id); err != nil {
		return nil, internalError("error getting publishing queue", err)
	}
	if post.AiGenerationLogs, err = s.lr.ListByPostID(ctx, id); err != nil {
		return nil, internalError("error getting generation logs", err)
	}

	return post, nil
}

func (s *postService) List(ctx context.Context, q transfer.ListPostsQuery) (*transfer.PostPage, error) {
	if err := transfer.Validate(&q); err != nil {
		return nil, validationError("%s", err.Error())
	}

	posts, total, err := s.pr.List(ctx, repository.ListPostsOptions{
		Page:     q.Page,
		Limit:    q.Limit,
		SortBy:   q.SortBy,
		Order:    q.Order,
		Statuses: q.Statuses,
		Search:   q.Search,
	})
	if err != nil {
		return nil, internalError("error listing posts", err)
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	assets, err := s.ar.ListByPostIDs(ctx, ids)
	if err != nil {
		return nil, internalError("error listing assets", err)
	}
	syncs, err := s.sr.ListByPostIDs(ctx, ids)
	if err != nil {
		return nil, internalError("error listing platform syncs", err)
	}
	for _, p := range posts {
		p.Assets = assets[p.ID]
		p.PlatformSyncs = syncs[p.ID]
	}

	return &transfer.PostPage{
		Items:      posts,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}, nil
}

func (s *postService) Update(ctx context.Context, id uuid.UUID, in *transfer.PostUpdate) (*models.Post, error) {
	if err := transfer.Validate(in); err != nil {
		return nil, validationError("%s", err.Error())
	}

	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.Status.Editable() {
		return nil, conflictError("Cannot edit post in %s status", post.Status)
	}

	u := repository.PostUpdate{
		Title:            in.Title,
		Description:      in.Description,
		UseAiImage:       in.UseAiImage,
		UseAiVideo:       in.UseAiVideo,
		UseAiText:        in.UseAiText,
		AiPromptOverride: in.AiPromptOverride,
	}
	if in.ProjectDetails != nil {
		details := in.ProjectDetails.Model()
		u.ProjectDetails = &details
	}

	if err := s.pr.Update(ctx, nil, id, u); err != nil {
		return nil, internalError("error updating post", err)
	}

	return s.load(ctx, id)
}

func (s *postService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.pr.SoftDelete(ctx, id); err != nil {
		return internalError("error removing post", err)
	}
	slog.Info("post deleted", "post_id", id)
	return nil
}

// Publish waits for the trigger delivery; on failure the status is left as is.
func (s *postService) Publish(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.Status.Publishable() {
		return nil, conflictError("Post is already published")
	}

	if err := s.wf.Deliver(ctx, post); err != nil {
		return nil, internalError("Failed to trigger publishing workflow", err)
	}

	// The engine may have reported its result before Deliver returned.
	changed, err := s.pr.CompareAndSetStatus(ctx, nil, id, post.Status, models.PostStatusPendingAI)
	if err != nil {
		return nil, internalError("error updating post status", err)
	}
	if !changed {
		slog.Info("publish result arrived during trigger", "post_id", id)
		return s.load(ctx, id)
	}
	post.Status = models.PostStatusPendingAI

	slog.Info("publish triggered", "post_id", id)
	return post, nil
}

func (s *postService) Regenerate(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.UsesAI() {
		return nil, validationError("At least one AI option must be enabled to regenerate")
	}
	if !post.Status.Regenerable() {
		return nil, conflictError("AI generation is already in progress")
	}

	err = s.tr.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.ar.DeleteBySource(ctx, tx, id, models.AssetSourceAI); err != nil {
			return fmt.Errorf("error removing AI assets: %w", err)
		}
		return s.pr.UpdateStatus(ctx, tx, id, models.PostStatusPendingAI)
	})
	if err != nil {
		return nil, internalError("error resetting post for regeneration", err)
	}
	post.Status = models.PostStatusPendingAI

	s.dispatch(ctx, post, TriggerReasonRegenerate)
	return post, nil
}

func (s *postService) Stats(ctx context.Context) (map[models.PostStatus]int, error) {
	counts, err := s.pr.CountByStatus(ctx)
	if err != nil {
		return nil, internalError("error counting posts", err)
	}
	return counts, nil
}

// ReorderAssets sets each asset's order to its index in assetIDs. Every id
// must belong to the post.
func (s *postService) ReorderAssets(ctx context.Context, id uuid.UUID, assetIDs []uuid.UUID) ([]*models.Asset, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	current, err := s.ar.ListByPostID(ctx, nil, id)
	if err != nil {
		return nil, internalError("error getting assets", err)
	}
	owned := make(map[uuid.UUID]bool, len(current))
	for _, a := range current {
		owned[a.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(assetIDs))
	for _, assetID := range assetIDs {
		if !owned[assetID] {
			return nil, validationError("Asset %s does not belong to this post", assetID)
		}
		if seen[assetID] {
			return nil, validationError("Asset %s is listed more than once", assetID)
		}
		seen[assetID] = true
	}

	err = s.tr.WithinTx(ctx, func(tx *sql.Tx) error {
		for i, assetID := range assetIDs {
			if err := s.ar.UpdateOrder(ctx, tx, assetID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, internalError("error reordering assets", err)
	}

	return s.ar.ListByPostID(ctx, nil, id)
}
