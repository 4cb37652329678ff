package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maheshrc27/listing-api/internal/models"
)

const assetColumns = `id, post_id, url, type, source, sort_order, file_name, file_size, mime_type, width, height, duration, processing_status, error_message, created_at, updated_at`

type AssetRepository interface {
	Create(ctx context.Context, tx *sql.Tx, a *models.Asset) error
	CreateMany(ctx context.Context, tx *sql.Tx, assets []*models.Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	ListByPostID(ctx context.Context, tx *sql.Tx, postID uuid.UUID) ([]*models.Asset, error)
	ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*models.Asset, error)
	MaxOrder(ctx context.Context, tx *sql.Tx, postID uuid.UUID) (int, error)
	UpdateOrder(ctx context.Context, tx *sql.Tx, id uuid.UUID, order int) error
	DeleteBySource(ctx context.Context, tx *sql.Tx, postID uuid.UUID, source models.AssetSource) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) AssetRepository {
	return &assetRepository{db: db}
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(
		&a.ID,
		&a.PostID,
		&a.URL,
		&a.Type,
		&a.Source,
		&a.Order,
		&a.FileName,
		&a.FileSize,
		&a.MimeType,
		&a.Width,
		&a.Height,
		&a.Duration,
		&a.ProcessingStatus,
		&a.ErrorMessage,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepository) Create(ctx context.Context, tx *sql.Tx, a *models.Asset) error {
	query := `
		INSERT INTO assets (id, post_id, url, type, source, sort_order, file_name, file_size, mime_type, width, height, duration, processing_status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.ProcessingStatus == "" {
		a.ProcessingStatus = models.ProcessingCompleted
	}

	err := pick(r.db, tx).QueryRowContext(ctx, query,
		a.ID,
		a.PostID,
		a.URL,
		a.Type,
		a.Source,
		a.Order,
		a.FileName,
		a.FileSize,
		a.MimeType,
		a.Width,
		a.Height,
		a.Duration,
		a.ProcessingStatus,
		a.ErrorMessage,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *assetRepository) CreateMany(ctx context.Context, tx *sql.Tx, assets []*models.Asset) error {
	for _, a := range assets {
		if err := r.Create(ctx, tx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	a, err := scanAsset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return a, nil
}

func (r *assetRepository) ListByPostID(ctx context.Context, tx *sql.Tx, postID uuid.UUID) ([]*models.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE post_id = $1
		ORDER BY sort_order, created_at
	`

	rows, err := pick(r.db, tx).QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	assets := []*models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		assets = append(assets, a)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return assets, nil
}

func (r *assetRepository) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*models.Asset, error) {
	result := make(map[uuid.UUID][]*models.Asset, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE post_id = ANY($1)
		ORDER BY post_id, sort_order, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(postIDs)))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		result[a.PostID] = append(result[a.PostID], a)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return result, nil
}

// MaxOrder returns -1 when the post has no assets.
func (r *assetRepository) MaxOrder(ctx context.Context, tx *sql.Tx, postID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(sort_order), -1) FROM assets WHERE post_id = $1`

	var max int
	if err := pick(r.db, tx).QueryRowContext(ctx, query, postID).Scan(&max); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return max, nil
}

func (r *assetRepository) UpdateOrder(ctx context.Context, tx *sql.Tx, id uuid.UUID, order int) error {
	query := `
		UPDATE assets
		SET sort_order = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := pick(r.db, tx).ExecContext(ctx, query, order, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *assetRepository) DeleteBySource(ctx context.Context, tx *sql.Tx, postID uuid.UUID, source models.AssetSource) error {
	query := `
		DELETE FROM assets
		WHERE post_id = $1 AND source = $2
	`
	_, err := pick(r.db, tx).ExecContext(ctx, query, postID, source)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *assetRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM assets
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
