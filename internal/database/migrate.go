package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		username VARCHAR(100) NOT NULL,
		surname VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		user_role VARCHAR(16) NOT NULL,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		country_code VARCHAR(8) NOT NULL,
		mobile_number VARCHAR(16) NOT NULL,
		avatar VARCHAR(512) NULL,
		date_of_birth DATE NULL,
		gender VARCHAR(8) NULL,
		created_at %DATETIME% NOT NULL,
		updated_at %DATETIME% NOT NULL,
		CONSTRAINT uq_users_email UNIQUE (email)
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS blogs (
		id CHAR(36) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		description TEXT NOT NULL,
		thumbnail VARCHAR(512) NULL,
		author_id CHAR(36) NOT NULL,
		tags TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		views INT NOT NULL DEFAULT 0,
		created_at %DATETIME% NOT NULL,
		updated_at %DATETIME% NOT NULL,
		CONSTRAINT fk_blogs_author FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS blog_likes (
		blog_id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		created_at %DATETIME% NOT NULL,
		PRIMARY KEY (blog_id, user_id),
		CONSTRAINT fk_blog_likes_blog FOREIGN KEY (blog_id) REFERENCES blogs(id) ON DELETE CASCADE,
		CONSTRAINT fk_blog_likes_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS blog_comments (
		seq %AUTOINCREMENT%,
		id CHAR(36) NOT NULL,
		blog_id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		content TEXT NOT NULL,
		created_at %DATETIME% NOT NULL,
		CONSTRAINT uq_blog_comments_id UNIQUE (id),
		CONSTRAINT fk_blog_comments_blog FOREIGN KEY (blog_id) REFERENCES blogs(id) ON DELETE CASCADE,
		CONSTRAINT fk_blog_comments_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS videos (
		id CHAR(36) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		video_path VARCHAR(512) NOT NULL,
		duration_seconds DOUBLE NOT NULL DEFAULT 0,
		author_id CHAR(36) NOT NULL,
		views INT NOT NULL DEFAULT 0,
		created_at %DATETIME% NOT NULL,
		updated_at %DATETIME% NOT NULL,
		CONSTRAINT fk_videos_author FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS video_likes (
		video_id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		created_at %DATETIME% NOT NULL,
		PRIMARY KEY (video_id, user_id),
		CONSTRAINT fk_video_likes_video FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
		CONSTRAINT fk_video_likes_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS video_comments (
		seq %AUTOINCREMENT%,
		id CHAR(36) NOT NULL,
		video_id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		content TEXT NOT NULL,
		created_at %DATETIME% NOT NULL,
		CONSTRAINT uq_video_comments_id UNIQUE (id),
		CONSTRAINT fk_video_comments_video FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
		CONSTRAINT fk_video_comments_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS products (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price DOUBLE NOT NULL,
		user_id CHAR(36) NOT NULL,
		created_at %DATETIME% NOT NULL,
		updated_at %DATETIME% NOT NULL,
		CONSTRAINT fk_products_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS teams (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		about TEXT NOT NULL,
		photo VARCHAR(512) NULL,
		coach_id CHAR(36) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at %DATETIME% NOT NULL,
		updated_at %DATETIME% NOT NULL,
		CONSTRAINT fk_teams_coach FOREIGN KEY (coach_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,

	`CREATE TABLE IF NOT EXISTS team_members (
		team_id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		PRIMARY KEY (team_id, user_id),
		CONSTRAINT fk_team_members_team FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
		CONSTRAINT fk_team_members_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%ENGINE%`,
}

type index struct {
	name    string
	table   string
	columns string
}

var indexes = []index{
	{"idx_users_role", "users", "user_role, is_active"},
	{"idx_blogs_author", "blogs", "author_id, created_at"},
	{"idx_blogs_status", "blogs", "status"},
	{"idx_blog_comments_blog", "blog_comments", "blog_id, seq"},
	{"idx_videos_author", "videos", "author_id, created_at"},
	{"idx_video_comments_video", "video_comments", "video_id, seq"},
	{"idx_products_user", "products", "user_id"},
	{"idx_teams_coach", "teams", "coach_id, created_at"},
	{"idx_team_members_user", "team_members", "user_id"},
}

func (d *Database) dialect() *strings.Replacer {
	if d.driver == DriverMySQL {
		return strings.NewReplacer(
			"%DATETIME%", "DATETIME(6)",
			"%AUTOINCREMENT%", "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY",
			"%ENGINE%", " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		)
	}
	return strings.NewReplacer(
		"%DATETIME%", "DATETIME",
		"%AUTOINCREMENT%", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"%ENGINE%", "",
	)
}

// Migrate creates every table and index that does not exist yet. It is
// safe to run on each start.
func (d *Database) Migrate(ctx context.Context) error {
	r := d.dialect()
	for _, ddl := range tables {
		if _, err := d.DB.ExecContext(ctx, r.Replace(ddl)); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	for _, idx := range indexes {
		if err := d.createIndex(ctx, idx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

func (d *Database) createIndex(ctx context.Context, idx index) error {
	if d.driver != DriverMySQL {
		_, err := d.DB.ExecContext(ctx, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns))
		return err
	}

	// MySQL has no IF NOT EXISTS for indexes; 1061 is "duplicate key name".
	_, err := d.DB.ExecContext(ctx, fmt.Sprintf(
		"CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns))
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1061 {
		return nil
	}
	return err
}
