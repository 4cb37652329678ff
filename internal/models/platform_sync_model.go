package models

import (
	"time"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformFacebook  Platform = "FACEBOOK"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTiktok    Platform = "TIKTOK"
)

type SyncStatus string

const (
	SyncStatusPending SyncStatus = "PENDING"
	SyncStatusSyncing SyncStatus = "SYNCING"
	SyncStatusSynced  SyncStatus = "SYNCED"
	SyncStatusFailed  SyncStatus = "FAILED"
)

// PlatformSync is unique per (PostID, Platform).
type PlatformSync struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PostID       uuid.UUID  `db:"post_id" json:"postId"`
	Platform     Platform   `db:"platform" json:"platform"`
	ExternalID   *string    `db:"external_id" json:"externalId"`
	ExternalURL  *string    `db:"external_url" json:"externalUrl"`
	SyncStatus   SyncStatus `db:"sync_status" json:"syncStatus"`
	Likes        int64      `db:"likes" json:"likes"`
	Comments     int64      `db:"comments" json:"comments"`
	Shares       int64      `db:"shares" json:"shares"`
	Views        int64      `db:"views" json:"views"`
	SyncError    *string    `db:"sync_error" json:"syncError"`
	RetryCount   int        `db:"retry_count" json:"retryCount"`
	LastSyncedAt *time.Time `db:"last_synced_at" json:"lastSyncedAt"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

type PublishingQueue struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PostID       uuid.UUID  `db:"post_id" json:"postId"`
	Status       string     `db:"status" json:"status"` // PENDING, PROCESSING, COMPLETED, FAILED, CANCELLED
	ScheduledAt  time.Time  `db:"scheduled_at" json:"scheduledAt"`
	ProcessedAt  *time.Time `db:"processed_at" json:"processedAt"`
	ErrorMessage *string    `db:"error_message" json:"errorMessage"`
	RetryCount   int        `db:"retry_count" json:"retryCount"`
	MaxRetries   int        `db:"max_retries" json:"maxRetries"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}
