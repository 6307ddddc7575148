package repository

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

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	CreateNewUser(ctx context.Context, user *model.User) error
	MarkVerified(ctx context.Context, email string) error
	UpdateNewPassword(ctx context.Context, userID, passwordHash string) error
	DeleteUnverifiedByEmail(ctx context.Context, email string) error
	DeleteByID(ctx context.Context, id string) error
	OwnedFiles(ctx context.Context, id string) (*model.UserFiles, error)
	FindAllUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error)
}

const userColumns = `id, username, surname, email, password_hash, user_role, is_verified, is_active,
	country_code, mobile_number, avatar, date_of_birth, gender, created_at, updated_at`

type userRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepository(db *database.Database) UserRepository {
	return &userRepository{db: db.DB, now: time.Now}
}

// NormalizeEmail is the single canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customErrors.ErrRecordNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", NormalizeEmail(email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	query, args, err := sqlx.In("SELECT "+userColumns+" FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CreateNewUser(ctx context.Context, u *model.User) error {
	now := r.now().UTC()
	u.Email = NormalizeEmail(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, username, surname, email, password_hash, user_role, is_verified, is_active,
			country_code, mobile_number, avatar, date_of_birth, gender, created_at, updated_at)
		VALUES (:id, :username, :surname, :email, :password_hash, :user_role, :is_verified, :is_active,
			:country_code, :mobile_number, :avatar, :date_of_birth, :gender, :created_at, :updated_at)`, u)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return customErrors.UserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return customErrors.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) MarkVerified(ctx context.Context, email string) error {
	return r.exec(ctx, "UPDATE users SET is_verified = ?, updated_at = ? WHERE email = ?",
		true, r.now().UTC(), NormalizeEmail(email))
}

func (r *userRepository) UpdateNewPassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx, "UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, r.now().UTC(), userID)
}

// DeleteUnverifiedByEmail is a no-op when the email is free or verified.
func (r *userRepository) DeleteUnverifiedByEmail(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE email = ? AND is_verified = ?",
		NormalizeEmail(email), false)
	return err
}

func (r *userRepository) DeleteByID(ctx context.Context, id string) error {
	return r.exec(ctx, "DELETE FROM users WHERE id = ?", id)
}

// OwnedFiles lists upload paths held by rows that cascade with the user.
func (r *userRepository) OwnedFiles(ctx context.Context, id string) (*model.UserFiles, error) {
	files := &model.UserFiles{BlogThumbnails: []string{}, Videos: []string{}, TeamPhotos: []string{}}
	queries := []struct {
		dst   *[]string
		query string
	}{
		{&files.BlogThumbnails, "SELECT thumbnail FROM blogs WHERE author_id = ? AND thumbnail IS NOT NULL AND thumbnail <> ''"},
		{&files.Videos, "SELECT video_path FROM videos WHERE author_id = ? AND video_path <> ''"},
		{&files.TeamPhotos, "SELECT photo FROM teams WHERE coach_id = ? AND photo IS NOT NULL AND photo <> ''"},
	}
	for _, q := range queries {
		if err := r.db.SelectContext(ctx, q.dst, q.query, id); err != nil {
			return nil, fmt.Errorf("owned files: %w", err)
		}
	}
	return files, nil
}

// FindAllUsers lists users of one role, newest first. Every word of
// SearchText may match username, surname or email.
func (r *userRepository) FindAllUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error) {
	where := []string{"user_role = ?"}
	args := []interface{}{filter.Role}

	if filter.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *filter.IsActive)
	}

	if words := strings.Fields(filter.SearchText); len(words) > 0 {
		var ors []string
		for _, w := range words {
			p := database.LikePattern(w)
			for _, col := range []string{"username", "surname", "email"} {
				ors = append(ors, "LOWER("+col+") LIKE ?"+database.LikeEscape)
				args = append(args, p)
			}
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"+clause, args...); err != nil {
		return nil, 0, err
	}

	users := []*model.User{}
	query := "SELECT " + userColumns + " FROM users" + clause + " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	if err := r.db.SelectContext(ctx, &users, query, append(args, filter.Page.Limit, filter.Page.Offset())...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
