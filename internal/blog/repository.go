package blog

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
	Create(ctx context.Context, b *model.Blog) error
	GetByID(ctx context.Context, id string) (*model.Blog, error)
	Update(ctx context.Context, b *model.Blog) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	List(ctx context.Context, filter model.BlogFilter) ([]model.Blog, int, error)
}

var blogSelect = `SELECT b.id, b.title, b.content, b.description, b.thumbnail, b.author_id, b.tags, b.status,
	b.views, b.created_at, b.updated_at,
	(SELECT COUNT(*) FROM blog_likes l WHERE l.blog_id = b.id) AS likes_count, ` +
	database.SummaryColumns("u", "author") + `
	FROM blogs b JOIN users u ON u.id = b.author_id`

type repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *database.Database) Repository {
	return &repository{db: db.DB, now: time.Now}
}

func (r *repository) Create(ctx context.Context, b *model.Blog) error {
	now := r.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO blogs (id, title, content, description, thumbnail, author_id, tags, status, views, created_at, updated_at)
		VALUES (:id, :title, :content, :description, :thumbnail, :author_id, :tags, :status, :views, :created_at, :updated_at)`, b)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	var b model.Blog
	if err := r.db.GetContext(ctx, &b, blogSelect+" WHERE b.id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customErrors.ErrRecordNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) Update(ctx context.Context, b *model.Blog) error {
	b.UpdatedAt = r.now().UTC()
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE blogs SET title = :title, content = :content, description = :description, thumbnail = :thumbnail,
			tags = :tags, status = :status, updated_at = :updated_at
		WHERE id = :id`, b)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM blogs WHERE id = ?", id)
	return err
}

func (r *repository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE blogs SET views = views + 1 WHERE id = ?", id)
	return err
}

// List returns the newest blogs first.
func (r *repository) List(ctx context.Context, filter model.BlogFilter) ([]model.Blog, int, error) {
	var where []string
	var args []interface{}

	if filter.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, filter.Status)
	}
	if filter.AuthorID != "" {
		where = append(where, "b.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := database.LikePattern(s)
		where = append(where, "(LOWER(b.title) LIKE ?"+database.LikeEscape+
			" OR LOWER(b.content) LIKE ?"+database.LikeEscape+
			" OR LOWER(b.description) LIKE ?"+database.LikeEscape+")")
		args = append(args, p, p, p)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM blogs b"+clause, args...); err != nil {
		return nil, 0, err
	}

	blogs := []model.Blog{}
	query := blogSelect + clause + " ORDER BY b.created_at DESC, b.id LIMIT ? OFFSET ?"
	if err := r.db.SelectContext(ctx, &blogs, query, append(args, filter.Page.Limit, filter.Page.Offset())...); err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}
