package models

import (
	"time"

	"github.com/google/uuid"
)

type AssetType string

const (
	AssetTypeImage AssetType = "IMG"
	AssetTypeVideo AssetType = "VID"
)

type AssetSource string

const (
	AssetSourceManual AssetSource = "MANUAL"
	AssetSourceAI     AssetSource = "AI"
)

type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "PENDING"
	ProcessingProcessing ProcessingStatus = "PROCESSING"
	ProcessingCompleted  ProcessingStatus = "COMPLETED"
	ProcessingFailed     ProcessingStatus = "FAILED"
)

type Asset struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	PostID           uuid.UUID        `db:"post_id" json:"postId"`
	URL              string           `db:"url" json:"url"`
	Type             AssetType        `db:"type" json:"type"`
	Source           AssetSource      `db:"source" json:"source"`
	Order            int              `db:"sort_order" json:"order"`
	FileName         *string          `db:"file_name" json:"fileName"`
	FileSize         *int64           `db:"file_size" json:"fileSize"`
	MimeType         *string          `db:"mime_type" json:"mimeType"`
	Width            *int             `db:"width" json:"width"`
	Height           *int             `db:"height" json:"height"`
	Duration         *float64         `db:"duration" json:"duration"`
	ProcessingStatus ProcessingStatus `db:"processing_status" json:"processingStatus"`
	ErrorMessage     *string          `db:"error_message" json:"errorMessage"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}
