package product

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

type Filter struct {
	UserID string
	Search string
	Page   model.PageQuery
}

type Repository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]model.Product, int, error)
}

const productColumns = "id, name, description, price, user_id, created_at, updated_at"

type repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *database.Database) Repository {
	return &repository{db: db.DB, now: time.Now}
}

func (r *repository) Create(ctx context.Context, p *model.Product) error {
	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :name, :description, :price, :user_id, :created_at, :updated_at)`, p)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.db.GetContext(ctx, &p, "SELECT "+productColumns+" FROM products WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customErrors.ErrRecordNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = r.now().UTC()
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE products SET name = :name, description = :description, price = :price, updated_at = :updated_at
		WHERE id = :id`, p)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	return err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]model.Product, int, error) {
	var where []string
	var args []interface{}

	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := database.LikePattern(s)
		where = append(where, "(LOWER(name) LIKE ?"+database.LikeEscape+" OR LOWER(description) LIKE ?"+database.LikeEscape+")")
		args = append(args, p, p)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"+clause, args...); err != nil {
		return nil, 0, err
	}

	products := []model.Product{}
	query := "SELECT " + productColumns + " FROM products" + clause + " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	if err := r.db.SelectContext(ctx, &products, query, append(args, filter.Page.Limit, filter.Page.Offset())...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
