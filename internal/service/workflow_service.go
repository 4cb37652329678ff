package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/models"
	"github.com/maheshrc27/listing-api/internal/repository"
)

const (
	TriggerReasonCreate     = "create"
	TriggerReasonRegenerate = "regenerate"
)

// TriggerJob asks for a background delivery of the workflow trigger for a
// post that is already PENDING_AI.
type TriggerJob struct {
	PostID uuid.UUID `json:"post_id"`
	Reason string    `json:"reason"`
}

type TriggerDispatcher interface {
	Dispatch(ctx context.Context, job TriggerJob) error
}

type WorkflowService interface {
	// Deliver sends the trigger synchronously and never changes post state.
	Deliver(ctx context.Context, post *models.Post) error
	// Run is the background continuation of a TriggerJob. A failed delivery
	// moves the post to FAILED if it is still PENDING_AI.
	Run(ctx context.Context, job TriggerJob) error
	// Compensate reports whether the post was moved from PENDING_AI to FAILED.
	Compensate(ctx context.Context, postID uuid.UUID, cause error) bool
}

type workflowService struct {
	pr        repository.PostRepository
	ar        repository.AssetRepository
	n8n       N8NService
	publicURL string
}

func NewWorkflowService(
	pr repository.PostRepository,
	ar repository.AssetRepository,
	n8n N8NService,
	publicURL string) WorkflowService {
	return &workflowService{
		pr:        pr,
		ar:        ar,
		n8n:       n8n,
		publicURL: publicURL,
	}
}

func (s *workflowService) Deliver(ctx context.Context, post *models.Post) error {
	assets, err := s.ar.ListByPostID(ctx, nil, post.ID)
	if err != nil {
		return fmt.Errorf("error loading assets: %w", err)
	}

	return s.n8n.Trigger(ctx, NewTriggerPayload(post, assets, s.publicURL))
}

func (s *workflowService) Run(ctx context.Context, job TriggerJob) error {
	post, err := s.pr.GetByID(ctx, nil, job.PostID)
	if err != nil {
		s.Compensate(ctx, job.PostID, err)
		return err
	}
	if post == nil {
		slog.Warn("trigger job for missing post", "post_id", job.PostID, "reason", job.Reason)
		return nil
	}
	if !post.Status.AwaitingAIContent() {
		slog.Info("trigger job skipped, post already resolved", "post_id", job.PostID, "status", post.Status)
		return nil
	}

	if err := s.Deliver(ctx, post); err != nil {
		s.Compensate(ctx, job.PostID, err)
		return err
	}
	return nil
}

func (s *workflowService) Compensate(ctx context.Context, postID uuid.UUID, cause error) bool {
	changed, err := s.pr.CompareAndSetStatus(ctx, nil, postID, models.PostStatusPendingAI, models.PostStatusFailed)
	if err != nil {
		slog.Error("failed to mark post as FAILED", "post_id", postID, "cause", cause, "error", err)
		return false
	}
	if changed {
		slog.Warn("workflow trigger failed, post marked FAILED", "post_id", postID, "cause", cause)
	}
	return changed
}

// InlineDispatcher runs trigger jobs in goroutines of this process. It is
// used when no Redis is configured.
type InlineDispatcher struct {
	wf WorkflowService
	wg sync.WaitGroup
}

func NewInlineDispatcher(wf WorkflowService) *InlineDispatcher {
	return &InlineDispatcher{wf: wf}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, job TriggerJob) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.wf.Run(context.Background(), job); err != nil {
			slog.Info(err.Error())
		}
	}()
	return nil
}

// Wait blocks until every dispatched job has finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}
