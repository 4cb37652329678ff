package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/models"
)

type PublishingQueueRepository interface {
	GetByPostID(ctx context.Context, postID uuid.UUID) (*models.PublishingQueue, error)
}

type publishingQueueRepository struct {
	db *sql.DB
}

func NewPublishingQueueRepository(db *sql.DB) PublishingQueueRepository {
	return &publishingQueueRepository{db: db}
}

func (r *publishingQueueRepository) GetByPostID(ctx context.Context, postID uuid.UUID) (*models.PublishingQueue, error) {
	query := `
		SELECT id, post_id, status, scheduled_at, processed_at, error_message, retry_count, max_retries, created_at, updated_at
		FROM publishing_queue
		WHERE post_id = $1
	`

	var q models.PublishingQueue
	err := r.db.QueryRowContext(ctx, query, postID).Scan(
		&q.ID,
		&q.PostID,
		&q.Status,
		&q.ScheduledAt,
		&q.ProcessedAt,
		&q.ErrorMessage,
		&q.RetryCount,
		&q.MaxRetries,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &q, nil
}
