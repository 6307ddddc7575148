package video

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"go.uber.org/zap"
)

type Engagement interface {
	ToggleLike(ctx context.Context, resourceID, userID string) (bool, int, error)
	AddComment(ctx context.Context, resourceID, userID, content string) (*model.Comment, error)
	Comments(ctx context.Context, resourceID string) ([]model.Comment, error)
	Likes(ctx context.Context, resourceID string) ([]model.Like, error)
}

var ErrVideoNotFound = customErrors.NotFound("Video not found")

const dateLayout = "2006-01-02"

type CreateInput struct {
	Title       string  `json:"title" form:"title"`
	Description string  `json:"description" form:"description"`
	Duration    float64 `json:"duration" form:"duration" validate:"gte=0"`
}

type UpdateInput struct {
	Title       *string  `json:"title" form:"title"`
	Description *string  `json:"description" form:"description"`
	Duration    *float64 `json:"duration" form:"duration" validate:"omitempty,gte=0"`
}

// ListQuery is the raw listing query; dates are YYYY-MM-DD.
type ListQuery struct {
	AuthorID  string
	Search    string
	StartDate string
	EndDate   string
	Page      model.PageQuery
}

type Service struct {
	repo       Repository
	engagement Engagement
	log        *zap.Logger
	now        func() time.Time
}

func NewService(repo Repository, engagement Engagement, log *zap.Logger) *Service {
	return &Service{repo: repo, engagement: engagement, log: log, now: time.Now}
}

func (s *Service) Create(ctx context.Context, author *model.User, input CreateInput, videoPath *string) (*model.Video, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, customErrors.Validation("Title is required")
	}
	if videoPath == nil {
		return nil, customErrors.Validation("Video file is required")
	}

	v := &model.Video{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Video:       *videoPath,
		Duration:    input.Duration,
		AuthorID:    author.ID,
		Author:      author.Summary(),
		Likes:       []model.Like{},
		Comments:    []model.Comment{},
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to create video")
	}
	s.log.Info("video created", zap.String("video_id", v.ID), zap.String("author_id", author.ID))
	return v, nil
}

// dayRange turns startDate[..endDate] into whole UTC days. A lone startDate
// selects that single day; a lone endDate is ignored.
func dayRange(start, end string) (*time.Time, *time.Time, error) {
	if start == "" {
		return nil, nil, nil
	}
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, nil, customErrors.Validation("startDate must be YYYY-MM-DD")
	}
	last := from
	if end != "" {
		if last, err = time.Parse(dateLayout, end); err != nil {
			return nil, nil, customErrors.Validation("endDate must be YYYY-MM-DD")
		}
	}
	to := last.Add(24*time.Hour - time.Nanosecond)
	return &from, &to, nil
}

// List returns the newest videos first, decorated with their age and a
// readable duration.
func (s *Service) List(ctx context.Context, q ListQuery) (model.Page[model.VideoListItem], error) {
	from, to, err := dayRange(strings.TrimSpace(q.StartDate), strings.TrimSpace(q.EndDate))
	if err != nil {
		return model.Page[model.VideoListItem]{}, err
	}

	videos, total, err := s.repo.List(ctx, model.VideoFilter{
		AuthorID: q.AuthorID,
		Search:   q.Search,
		From:     from,
		To:       to,
		Page:     q.Page,
	})
	if err != nil {
		return model.Page[model.VideoListItem]{}, customErrors.InternalServerError(err, "failed to list videos")
	}

	now := s.now()
	items := make([]model.VideoListItem, len(videos))
	for i, v := range videos {
		items[i] = model.VideoListItem{
			ID:                v.ID,
			Title:             v.Title,
			Description:       v.Description,
			Video:             v.Video,
			Author:            v.Author,
			CreatedAt:         v.CreatedAt,
			UpdatedAt:         v.UpdatedAt,
			Time:              TimeAgo(now, v.CreatedAt),
			FormattedDuration: FormatDuration(v.Duration),
		}
	}
	return model.NewPage(items, q.Page, total), nil
}

func (s *Service) load(ctx context.Context, id string) (*model.Video, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to load video")
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Video, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to count view")
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Likes, err = s.engagement.Likes(ctx, id); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to load likes")
	}
	if v.Comments, err = s.engagement.Comments(ctx, id); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to load comments")
	}
	return v, nil
}

// Update returns the replaced video path when a new file was supplied.
func (s *Service) Update(ctx context.Context, user *model.User, id string, input UpdateInput, videoPath *string) (*model.Video, *string, error) {
	v, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if v.AuthorID != user.ID {
		return nil, nil, customErrors.Forbidden("Not authorized to update this video")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, nil, customErrors.Validation("Title is required")
		}
		v.Title = *input.Title
	}
	if input.Description != nil {
		v.Description = *input.Description
	}
	if input.Duration != nil {
		v.Duration = *input.Duration
	}

	var replaced *string
	if videoPath != nil {
		old := v.Video
		replaced, v.Video = &old, *videoPath
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, nil, customErrors.InternalServerError(err, "failed to update video")
	}
	return v, replaced, nil
}

// Delete removes the video and returns its file path.
func (s *Service) Delete(ctx context.Context, user *model.User, id string) (string, error) {
	v, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if v.AuthorID != user.ID {
		return "", customErrors.Forbidden("Not authorized to delete this video")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", customErrors.InternalServerError(err, "failed to delete video")
	}
	return v.Video, nil
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
