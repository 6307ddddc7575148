package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mambasports/team-service/internal/model"
)

// SummaryColumns selects the UserSummary fields of table alias into the
// nested struct named prefix ("author", "coach", ...).
func SummaryColumns(alias, prefix string) string {
	cols := []string{"id", "username", "surname", "email", "avatar", "user_role"}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf(`%s.%s AS "%s.%s"`, alias, c, prefix, c)
	}
	return strings.Join(parts, ", ")
}

// LikeEscape must follow every LIKE whose operand came from LikePattern.
// '!' is used because backslash escaping differs between MySQL and SQLite.
const LikeEscape = " ESCAPE '!'"

// LikePattern builds a substring LIKE operand for free text, lower-cased
// to be compared against LOWER(column).
func LikePattern(s string) string {
	r := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}

// Engagement stores likes and comments for one content kind. The table
// names come from a fixed set, never from input.
type Engagement struct {
	db       *sqlx.DB
	likes    string
	comments string
	fk       string
	now      func() time.Time
}

func NewBlogEngagement(db *Database) *Engagement {
	return &Engagement{db: db.DB, likes: "blog_likes", comments: "blog_comments", fk: "blog_id", now: time.Now}
}

func NewVideoEngagement(db *Database) *Engagement {
	return &Engagement{db: db.DB, likes: "video_likes", comments: "video_comments", fk: "video_id", now: time.Now}
}

// ToggleLike removes the user's like if present, otherwise adds it, and
// returns the resulting state and count.
func (e *Engagement) ToggleLike(ctx context.Context, resourceID, userID string) (bool, int, error) {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND user_id = ?", e.likes, e.fk), resourceID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("unlike: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	liked := removed == 0
	if liked {
		_, err = tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (%s, user_id, created_at) VALUES (?, ?, ?)", e.likes, e.fk),
			resourceID, userID, e.now().UTC())
		if err != nil && !IsDuplicateKey(err) {
			return false, 0, fmt.Errorf("like: %w", err)
		}
	}

	var count int
	if err := tx.GetContext(ctx, &count,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", e.likes, e.fk), resourceID); err != nil {
		return false, 0, err
	}
	return liked, count, tx.Commit()
}

func (e *Engagement) AddComment(ctx context.Context, resourceID, userID, content string) (*model.Comment, error) {
	id := uuid.NewString()
	_, err := e.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, %s, user_id, content, created_at) VALUES (?, ?, ?, ?, ?)", e.comments, e.fk),
		id, resourceID, userID, content, e.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	var c model.Comment
	err = e.db.GetContext(ctx, &c, fmt.Sprintf(
		`SELECT c.id, c.content, c.created_at, %s FROM %s c JOIN users u ON u.id = c.user_id WHERE c.id = ?`,
		SummaryColumns("u", "user"), e.comments), id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Comments returns comments in insertion order.
func (e *Engagement) Comments(ctx context.Context, resourceID string) ([]model.Comment, error) {
	out := []model.Comment{}
	err := e.db.SelectContext(ctx, &out, fmt.Sprintf(
		`SELECT c.id, c.content, c.created_at, %s FROM %s c JOIN users u ON u.id = c.user_id WHERE c.%s = ? ORDER BY c.seq`,
		SummaryColumns("u", "user"), e.comments, e.fk), resourceID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return out, nil
}

func (e *Engagement) Likes(ctx context.Context, resourceID string) ([]model.Like, error) {
	out := []model.Like{}
	err := e.db.SelectContext(ctx, &out, fmt.Sprintf(
		`SELECT l.created_at, %s FROM %s l JOIN users u ON u.id = l.user_id WHERE l.%s = ? ORDER BY l.created_at`,
		SummaryColumns("u", "user"), e.likes, e.fk), resourceID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return out, nil
}
