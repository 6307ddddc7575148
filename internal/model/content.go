package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("StringList: unsupported source %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// ParseTags accepts "a, b,c" and drops empty entries.
func ParseTags(s string) StringList {
	out := StringList{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
)

func (s BlogStatus) Valid() bool {
	return s == BlogStatusDraft || s == BlogStatusPublished
}

type Like struct {
	User      UserSummary `db:"user" json:"user"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

type Comment struct {
	ID        string      `db:"id" json:"_id"`
	User      UserSummary `db:"user" json:"user"`
	Content   string      `db:"content" json:"content"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

// LikeResult is the state after a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type Blog struct {
	ID          string      `db:"id" json:"_id"`
	Title       string      `db:"title" json:"title"`
	Content     string      `db:"content" json:"content"`
	Description string      `db:"description" json:"description"`
	Thumbnail   *string     `db:"thumbnail" json:"thumbnail"`
	AuthorID    string      `db:"author_id" json:"-"`
	Author      UserSummary `db:"author" json:"author"`
	Tags        StringList  `db:"tags" json:"tags"`
	Status      BlogStatus  `db:"status" json:"status"`
	Views       int         `db:"views" json:"views"`
	LikesCount  int         `db:"likes_count" json:"likesCount"`
	Likes       []Like      `db:"-" json:"likes,omitempty"`
	Comments    []Comment   `db:"-" json:"comments,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

type BlogFilter struct {
	Status   BlogStatus
	AuthorID string
	Search   string
	Page     PageQuery
}

type Video struct {
	ID          string      `db:"id" json:"_id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Video       string      `db:"video_path" json:"video"`
	Duration    float64     `db:"duration_seconds" json:"duration"`
	AuthorID    string      `db:"author_id" json:"-"`
	Author      UserSummary `db:"author" json:"author"`
	Views       int         `db:"views" json:"views"`
	LikesCount  int         `db:"likes_count" json:"likesCount"`
	Likes       []Like      `db:"-" json:"likes,omitempty"`
	Comments    []Comment   `db:"-" json:"comments,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// VideoListItem is the listing shape: the raw duration is replaced by
// human-readable decorations.
type VideoListItem struct {
	ID                string      `json:"_id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Video             string      `json:"video"`
	Author            UserSummary `json:"author"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	Time              string      `json:"time"`
	FormattedDuration string      `json:"formattedDuration"`
}

type VideoFilter struct {
	AuthorID string
	Search   string
	From     *time.Time
	To       *time.Time
	Page     PageQuery
}

type Product struct {
	ID          string    `db:"id" json:"_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	UserID      string    `db:"user_id" json:"user"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
