package models

import (
	"time"

	"github.com/google/uuid"
)

type AiGenerationLog struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PostID         uuid.UUID  `db:"post_id" json:"postId"`
	GenerationType string     `db:"generation_type" json:"generationType"` // TEXT, IMAGE, VIDEO
	Prompt         *string    `db:"prompt" json:"prompt"`
	ResultURL      *string    `db:"result_url" json:"resultUrl"`
	Cost           *float64   `db:"cost" json:"cost"`
	Duration       *int       `db:"duration" json:"duration"`
	TokensUsed     *int       `db:"tokens_used" json:"tokensUsed"`
	Status         string     `db:"status" json:"status"`
	ErrorMessage   *string    `db:"error_message" json:"errorMessage"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	CompletedAt    *time.Time `db:"completed_at" json:"completedAt"`
}
