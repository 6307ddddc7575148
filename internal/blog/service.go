package blog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"go.uber.org/zap"
)

// Engagement is the likes/comments store shared by blogs and videos.
type Engagement interface {
	ToggleLike(ctx context.Context, resourceID, userID string) (bool, int, error)
	AddComment(ctx context.Context, resourceID, userID, content string) (*model.Comment, error)
	Comments(ctx context.Context, resourceID string) ([]model.Comment, error)
	Likes(ctx context.Context, resourceID string) ([]model.Like, error)
}

var ErrBlogNotFound = customErrors.NotFound("Blog not found")

// Tags accepts a JSON array or a comma-separated string.
type Tags []string

func (t *Tags) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = Tags{s}
	return nil
}

func (t Tags) normalize() model.StringList {
	return model.ParseTags(strings.Join(t, ","))
}

type CreateInput struct {
	Title       string `json:"title" form:"title"`
	Content     string `json:"content" form:"content"`
	Description string `json:"description" form:"description"`
	Tags        Tags   `json:"tags" form:"tags"`
	Status      string `json:"status" form:"status"`
}

type UpdateInput struct {
	Title       *string `json:"title" form:"title"`
	Content     *string `json:"content" form:"content"`
	Description *string `json:"description" form:"description"`
	Tags        Tags    `json:"tags" form:"tags"`
	Status      *string `json:"status" form:"status"`
}

type Service struct {
	repo       Repository
	engagement Engagement
	log        *zap.Logger
}

func NewService(repo Repository, engagement Engagement, log *zap.Logger) *Service {
	return &Service{repo: repo, engagement: engagement, log: log}
}

func parseStatus(s string) (model.BlogStatus, error) {
	if s == "" {
		return model.BlogStatusDraft, nil
	}
	status := model.BlogStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", customErrors.Validation("Status must be draft or published")
	}
	return status, nil
}

func (s *Service) Create(ctx context.Context, author *model.User, input CreateInput, thumbnail *string) (*model.Blog, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, customErrors.Validation("Title and content are required")
	}
	status, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	b := &model.Blog{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Content:     input.Content,
		Description: input.Description,
		Thumbnail:   thumbnail,
		AuthorID:    author.ID,
		Author:      author.Summary(),
		Tags:        input.Tags.normalize(),
		Status:      status,
		Likes:       []model.Like{},
		Comments:    []model.Comment{},
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to create blog")
	}
	s.log.Info("blog created", zap.String("blog_id", b.ID), zap.String("author_id", author.ID))
	return b, nil
}

func (s *Service) List(ctx context.Context, filter model.BlogFilter) (model.Page[model.Blog], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return model.Page[model.Blog]{}, customErrors.Validation("Status must be draft or published")
	}
	blogs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return model.Page[model.Blog]{}, customErrors.InternalServerError(err, "failed to list blogs")
	}
	return model.NewPage(blogs, filter.Page, total), nil
}

func (s *Service) load(ctx context.Context, id string) (*model.Blog, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to load blog")
	}
	return b, nil
}

// Get returns the blog with likes and comments and counts the view.
func (s *Service) Get(ctx context.Context, id string) (*model.Blog, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to count view")
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Likes, err = s.engagement.Likes(ctx, id); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to load likes")
	}
	if b.Comments, err = s.engagement.Comments(ctx, id); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to load comments")
	}
	return b, nil
}

// Update applies the provided fields. A nil thumbnail keeps the current one.
// It returns the replaced thumbnail path, if any, so the caller can remove it.
func (s *Service) Update(ctx context.Context, user *model.User, id string, input UpdateInput, thumbnail *string) (*model.Blog, *string, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if b.AuthorID != user.ID {
		return nil, nil, customErrors.Forbidden("Not authorized to update this blog")
	}

	if input.Title != nil {
		b.Title = *input.Title
	}
	if input.Content != nil {
		b.Content = *input.Content
	}
	if input.Description != nil {
		b.Description = *input.Description
	}
	if input.Tags != nil {
		b.Tags = input.Tags.normalize()
	}
	if input.Status != nil {
		if b.Status, err = parseStatus(*input.Status); err != nil {
			return nil, nil, err
		}
	}
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Content) == "" {
		return nil, nil, customErrors.Validation("Title and content are required")
	}

	var replaced *string
	if thumbnail != nil {
		replaced, b.Thumbnail = b.Thumbnail, thumbnail
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, nil, customErrors.InternalServerError(err, "failed to update blog")
	}
	return b, replaced, nil
}

// Delete removes the blog and returns its thumbnail path, if any.
func (s *Service) Delete(ctx context.Context, user *model.User, id string) (*string, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.AuthorID != user.ID {
		return nil, customErrors.Forbidden("Not authorized to delete this blog")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to delete blog")
	}
	return b.Thumbnail, nil
}

func (s *Service) ToggleLike(ctx context.Context, user *model.User, id string) (*model.LikeResult, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	liked, count, err := s.engagement.ToggleLike(ctx, id, user.ID)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to toggle like")
	}
	return &model.LikeResult{Liked: liked, LikesCount: count}, nil
}

func (s *Service) AddComment(ctx context.Context, user *model.User, id, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, customErrors.Validation("Comment content is required")
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	c, err := s.engagement.AddComment(ctx, id, user.ID, content)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to add comment")
	}
	return c, nil
}

func (s *Service) UserBlogs(ctx context.Context, user *model.User, status model.BlogStatus, page model.PageQuery) (model.Page[model.Blog], error) {
	return s.List(ctx, model.BlogFilter{AuthorID: user.ID, Status: status, Page: page})
}
