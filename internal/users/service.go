package users

import (
	"context"
	"errors"
	"fmt"

	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"github.com/mambasports/team-service/internal/upload"
	"go.uber.org/zap"
)

// Store is the part of the user repository the admin endpoints need.
type Store interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	DeleteByID(ctx context.Context, id string) error
	OwnedFiles(ctx context.Context, id string) (*model.UserFiles, error)
	FindAllUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error)
}

var (
	errInvalidRole  = customErrors.Validation("Invalid or missing role. Must be player, coach or parent")
	errDeleteDenied = customErrors.Forbidden("Access denied. Only coaches and admins can delete users.")
	errDeleteSelf   = customErrors.Validation("You cannot delete your own account")
)

// Deleted is a removed user plus the upload paths that no row references
// any more.
type Deleted struct {
	User  *model.User
	Files []string
}

type ListQuery struct {
	Role       string
	IsActive   *bool
	SearchText string
	Page       model.PageQuery
}

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// List returns users of one listable role. Admins are never listed.
func (s *Service) List(ctx context.Context, q ListQuery) (model.Page[*model.User], error) {
	role, err := model.ParseRole(q.Role)
	if err != nil || role == model.RoleAdmin {
		return model.Page[*model.User]{}, errInvalidRole
	}

	users, total, err := s.store.FindAllUsers(ctx, model.UserFilter{
		Role:       role,
		IsActive:   q.IsActive,
		SearchText: q.SearchText,
		Page:       q.Page,
	})
	if err != nil {
		return model.Page[*model.User]{}, customErrors.InternalServerError(err, "failed to list users")
	}
	for _, u := range users {
		u.Avatar = upload.Normalize(u.Avatar, upload.Avatar)
	}
	return model.NewPage(users, q.Page, total), nil
}

// Delete removes target on behalf of a Coach or Admin. The user's blogs,
// videos and coached teams cascade with it; their files are returned for
// removal.
func (s *Service) Delete(ctx context.Context, actor *model.User, targetID string) (*Deleted, error) {
	if !actor.HasRole(model.RoleCoach, model.RoleAdmin) {
		return nil, errDeleteDenied
	}

	target, err := s.store.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, customErrors.UserNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to load user")
	}
	if target.ID == actor.ID {
		return nil, errDeleteSelf
	}

	owned, err := s.store.OwnedFiles(ctx, target.ID)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to collect user files")
	}

	if err := s.store.DeleteByID(ctx, target.ID); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to delete user")
	}
	s.log.Info("user deleted", zap.String("user_id", target.ID), zap.String("by", actor.ID))
	return &Deleted{User: target, Files: ownedPaths(target, owned)}, nil
}

func ownedPaths(u *model.User, owned *model.UserFiles) []string {
	var out []string
	add := func(kind upload.Kind, raw ...string) {
		for i := range raw {
			if p := upload.Normalize(&raw[i], kind); p != nil {
				out = append(out, *p)
			}
		}
	}
	if u.Avatar != nil {
		add(upload.Avatar, *u.Avatar)
	}
	add(upload.BlogThumbnail, owned.BlogThumbnails...)
	add(upload.Video, owned.Videos...)
	add(upload.TeamPhoto, owned.TeamPhotos...)
	return out
}

func deletedMessage(u *model.User) string {
	return fmt.Sprintf("User %s %s deleted successfully", u.Username, u.Surname)
}
