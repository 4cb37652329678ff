package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maheshrc27/listing-api/internal/models"
)

const postColumns = `id, title, description, project_details, status, use_ai_image, use_ai_video, use_ai_text, ai_prompt_override, created_at, updated_at, deleted_at`

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
}

type ListPostsOptions struct {
	Page           int
	Limit          int
	SortBy         string // createdAt, updatedAt, title, status
	Order          string // asc, desc
	Statuses       []models.PostStatus
	Search         string
	IncludeDeleted bool
}

// PostUpdate carries the fields to change; nil fields are left untouched.
type PostUpdate struct {
	Title            *string
	Description      *string
	ProjectDetails   *models.ProjectDetails
	UseAiImage       *bool
	UseAiVideo       *bool
	UseAiText        *bool
	AiPromptOverride *string
}

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) error
	GetByID(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Post, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, opts ListPostsOptions) ([]*models.Post, int, error)
	Update(ctx context.Context, tx *sql.Tx, id uuid.UUID, u PostUpdate) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status models.PostStatus) error
	CompareAndSetStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, from, to models.PostStatus) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[models.PostStatus]int, error)
	ExpirePending(ctx context.Context, updatedBefore time.Time) ([]uuid.UUID, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Description,
		&post.ProjectDetails,
		&post.Status,
		&post.UseAiImage,
		&post.UseAiVideo,
		&post.UseAiText,
		&post.AiPromptOverride,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) error {
	query := `
		INSERT INTO posts (id, title, description, project_details, status, use_ai_image, use_ai_video, use_ai_text, ai_prompt_override)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	err := pick(r.db, tx).QueryRowContext(ctx, query,
		post.ID,
		post.Title,
		post.Description,
		post.ProjectDetails,
		post.Status,
		post.UseAiImage,
		post.UseAiVideo,
		post.UseAiText,
		post.AiPromptOverride,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

// GetByID returns nil, nil when the post does not exist or was soft deleted.
func (r *postRepository) GetByID(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, tx, query, id)
}

// GetForUpdate locks the row until tx ends.
func (r *postRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.getOne(ctx, tx, query, id)
}

func (r *postRepository) getOne(ctx context.Context, tx *sql.Tx, query string, id uuid.UUID) (*models.Post, error) {
	post, err := scanPost(pick(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) List(ctx context.Context, opts ListPostsOptions) ([]*models.Post, int, error) {
	var conditions []string
	var args []interface{}

	if !opts.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if len(opts.Statuses) > 0 {
		statuses := make([]string, len(opts.Statuses))
		for i, s := range opts.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+escapeLike(opts.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM posts` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(opts.Order, "asc") {
		direction = "ASC"
	}

	limit := opts.Limit
	page := opts.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	// id breaks ties so pages stay disjoint
	query := fmt.Sprintf(`SELECT %s FROM posts%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		postColumns, where, column, direction, direction, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, tx *sql.Tx, id uuid.UUID, u PostUpdate) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.ProjectDetails != nil {
		add("project_details", *u.ProjectDetails)
	}
	if u.UseAiImage != nil {
		add("use_ai_image", *u.UseAiImage)
	}
	if u.UseAiVideo != nil {
		add("use_ai_video", *u.UseAiVideo)
	}
	if u.UseAiText != nil {
		add("use_ai_text", *u.UseAiText)
	}
	if u.AiPromptOverride != nil {
		add("ai_prompt_override", *u.AiPromptOverride)
	}
	if len(sets) == 0 {
		return nil
	}

	add("updated_at", time.Now())
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	_, err := pick(r.db, tx).ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status models.PostStatus) error {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := pick(r.db, tx).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// CompareAndSetStatus moves the post to `to` only if it is still in `from`.
func (r *postRepository) CompareAndSetStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, from, to models.PostStatus) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := pick(r.db, tx).ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE posts SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CountByStatus(ctx context.Context) (map[models.PostStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM posts WHERE deleted_at IS NULL GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.PostStatus]int, len(models.PostStatuses))
	for _, s := range models.PostStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status models.PostStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return counts, nil
}

// ExpirePending fails every PENDING_AI post not touched since updatedBefore.
func (r *postRepository) ExpirePending(ctx context.Context, updatedBefore time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = NOW()
		WHERE status = $2 AND updated_at < $3 AND deleted_at IS NULL
		RETURNING id
	`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusFailed, models.PostStatusPendingAI, updatedBefore)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return ids, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
