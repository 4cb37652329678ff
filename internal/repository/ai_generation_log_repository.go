package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/models"
)

type AiGenerationLogRepository interface {
	ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.AiGenerationLog, error)
}

type aiGenerationLogRepository struct {
	db *sql.DB
}

func NewAiGenerationLogRepository(db *sql.DB) AiGenerationLogRepository {
	return &aiGenerationLogRepository{db: db}
}

func (r *aiGenerationLogRepository) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.AiGenerationLog, error) {
	query := `
		SELECT id, post_id, generation_type, prompt, result_url, cost, duration, tokens_used, status, error_message, created_at, completed_at
		FROM ai_generation_logs
		WHERE post_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	logs := []*models.AiGenerationLog{}
	for rows.Next() {
		var l models.AiGenerationLog
		err := rows.Scan(
			&l.ID,
			&l.PostID,
			&l.GenerationType,
			&l.Prompt,
			&l.ResultURL,
			&l.Cost,
			&l.Duration,
			&l.TokensUsed,
			&l.Status,
			&l.ErrorMessage,
			&l.CreatedAt,
			&l.CompletedAt,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		logs = append(logs, &l)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return logs, nil
}
