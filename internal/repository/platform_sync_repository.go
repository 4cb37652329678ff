package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maheshrc27/listing-api/internal/models"
)

const platformSyncColumns = `id, post_id, platform, external_id, external_url, sync_status, likes, comments, shares, views, sync_error, retry_count, last_synced_at, created_at, updated_at`

type PlatformSyncRepository interface {
	Upsert(ctx context.Context, tx *sql.Tx, ps *models.PlatformSync) error
	GetByPostAndPlatform(ctx context.Context, postID uuid.UUID, platform models.Platform) (*models.PlatformSync, error)
	ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PlatformSync, error)
	ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*models.PlatformSync, error)
}

type platformSyncRepository struct {
	db *sql.DB
}

func NewPlatformSyncRepository(db *sql.DB) PlatformSyncRepository {
	return &platformSyncRepository{db: db}
}

func scanPlatformSync(row rowScanner) (*models.PlatformSync, error) {
	var ps models.PlatformSync
	err := row.Scan(
		&ps.ID,
		&ps.PostID,
		&ps.Platform,
		&ps.ExternalID,
		&ps.ExternalURL,
		&ps.SyncStatus,
		&ps.Likes,
		&ps.Comments,
		&ps.Shares,
		&ps.Views,
		&ps.SyncError,
		&ps.RetryCount,
		&ps.LastSyncedAt,
		&ps.CreatedAt,
		&ps.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

// Upsert keeps one row per (post, platform). Engagement counters survive the update.
func (r *platformSyncRepository) Upsert(ctx context.Context, tx *sql.Tx, ps *models.PlatformSync) error {
	query := `
		INSERT INTO platform_syncs (id, post_id, platform, external_id, external_url, sync_status, sync_error, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT platform_syncs_post_platform_key DO UPDATE
		SET external_id = EXCLUDED.external_id,
			external_url = EXCLUDED.external_url,
			sync_status = EXCLUDED.sync_status,
			sync_error = EXCLUDED.sync_error,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	if ps.ID == uuid.Nil {
		ps.ID = uuid.New()
	}

	err := pick(r.db, tx).QueryRowContext(ctx, query,
		ps.ID,
		ps.PostID,
		ps.Platform,
		ps.ExternalID,
		ps.ExternalURL,
		ps.SyncStatus,
		ps.SyncError,
		ps.LastSyncedAt,
	).Scan(&ps.ID, &ps.CreatedAt, &ps.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *platformSyncRepository) GetByPostAndPlatform(ctx context.Context, postID uuid.UUID, platform models.Platform) (*models.PlatformSync, error) {
	query := `SELECT ` + platformSyncColumns + ` FROM platform_syncs WHERE post_id = $1 AND platform = $2`

	ps, err := scanPlatformSync(r.db.QueryRowContext(ctx, query, postID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return ps, nil
}

func (r *platformSyncRepository) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PlatformSync, error) {
	byPost, err := r.ListByPostIDs(ctx, []uuid.UUID{postID})
	if err != nil {
		return nil, err
	}
	syncs := byPost[postID]
	if syncs == nil {
		syncs = []*models.PlatformSync{}
	}
	return syncs, nil
}

func (r *platformSyncRepository) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*models.PlatformSync, error) {
	result := make(map[uuid.UUID][]*models.PlatformSync, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + platformSyncColumns + `
		FROM platform_syncs
		WHERE post_id = ANY($1)
		ORDER BY post_id, platform
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(postIDs)))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		ps, err := scanPlatformSync(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		result[ps.PostID] = append(result[ps.PostID], ps)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return result, nil
}
