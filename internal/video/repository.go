package video

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mambasports/team-service/internal/database"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, v *model.Video) error
	GetByID(ctx context.Context, id string) (*model.Video, error)
	Update(ctx context.Context, v *model.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	List(ctx context.Context, filter model.VideoFilter) ([]model.Video, int, error)
}

var videoSelect = `SELECT v.id, v.title, v.description, v.video_path, v.duration_seconds, v.author_id,
	v.views, v.created_at, v.updated_at,
	(SELECT COUNT(*) FROM video_likes l WHERE l.video_id = v.id) AS likes_count, ` +
	database.SummaryColumns("u", "author") + `
	FROM videos v JOIN users u ON u.id = v.author_id`

type repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *database.Database) Repository {
	return &repository{db: db.DB, now: time.Now}
}

func (r *repository) Create(ctx context.Context, v *model.Video) error {
	now := r.now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO videos (id, title, description, video_path, duration_seconds, author_id, views, created_at, updated_at)
		VALUES (:id, :title, :description, :video_path, :duration_seconds, :author_id, :views, :created_at, :updated_at)`, v)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	var v model.Video
	if err := r.db.GetContext(ctx, &v, videoSelect+" WHERE v.id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customErrors.ErrRecordNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) Update(ctx context.Context, v *model.Video) error {
	v.UpdatedAt = r.now().UTC()
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE videos SET title = :title, description = :description, video_path = :video_path,
			duration_seconds = :duration_seconds, updated_at = :updated_at
		WHERE id = :id`, v)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
	return err
}

func (r *repository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE videos SET views = views + 1 WHERE id = ?", id)
	return err
}

func (r *repository) List(ctx context.Context, filter model.VideoFilter) ([]model.Video, int, error) {
	var where []string
	var args []interface{}

	if filter.AuthorID != "" {
		where = append(where, "v.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := database.LikePattern(s)
		where = append(where, "(LOWER(v.title) LIKE ?"+database.LikeEscape+
			" OR LOWER(v.description) LIKE ?"+database.LikeEscape+")")
		args = append(args, p, p)
	}
	if filter.From != nil {
		where = append(where, "v.created_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where = append(where, "v.created_at <= ?")
		args = append(args, filter.To.UTC())
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM videos v"+clause, args...); err != nil {
		return nil, 0, err
	}

	videos := []model.Video{}
	query := videoSelect + clause + " ORDER BY v.created_at DESC, v.id LIMIT ? OFFSET ?"
	if err := r.db.SelectContext(ctx, &videos, query, append(args, filter.Page.Limit, filter.Page.Offset())...); err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}
