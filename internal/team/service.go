package team

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"github.com/mambasports/team-service/internal/upload"
	"github.com/mambasports/team-service/internal/utils"
	"go.uber.org/zap"
)

// UserLookup resolves the coach and member ids named in a request.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

var (
	ErrTeamNotFound   = customErrors.NotFound("Team not found")
	errCoachNotFound  = customErrors.NotFound("Coach not found")
	errNotCoach       = customErrors.Validation("Provided user is not a Coach")
	errInvalidMembers = customErrors.Validation("Some member IDs are invalid")
	errNonPlayers     = customErrors.Validation("Only users with role 'Player' can be added as team members")
	errForeignPhoto   = customErrors.Validation("Invalid existing photo path")
)

// MemberIDs accepts a JSON array, a JSON-encoded array inside a string,
// or a single id. Form posts may repeat the field.
type MemberIDs []string

func (m *MemberIDs) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*m = MemberIDs(list)
		if *m == nil {
			*m = MemberIDs{}
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*m = MemberIDs{s}
	return nil
}

// ids flattens and dedupes the raw values. It returns nil when the field
// was absent.
func (m MemberIDs) ids() []string {
	if m == nil {
		return nil
	}
	out := []string{}
	for _, raw := range m {
		raw = strings.TrimSpace(raw)
		if strings.HasPrefix(raw, "[") {
			var nested []string
			if err := json.Unmarshal([]byte(raw), &nested); err == nil {
				for _, id := range nested {
					if id = strings.TrimSpace(id); id != "" {
						out = append(out, id)
					}
				}
				continue
			}
		}
		if raw != "" {
			out = append(out, raw)
		}
	}
	return utils.Unique(out)
}

type CreateInput struct {
	Name    string    `json:"name" form:"name"`
	About   string    `json:"about" form:"about"`
	Coach   string    `json:"coach" form:"coach"`
	Members MemberIDs `json:"members" form:"members"`
}

type UpdateInput struct {
	Name          *string   `json:"name" form:"name"`
	About         *string   `json:"about" form:"about"`
	ExistingPhoto string    `json:"existingPhoto" form:"existingPhoto"`
	Members       MemberIDs `json:"members" form:"members"`
}

type StatusResult struct {
	TeamID   string `json:"teamId"`
	IsActive bool   `json:"isActive"`
}

type Service struct {
	repo  Repository
	users UserLookup
	log   *zap.Logger
}

func NewService(repo Repository, users UserLookup, log *zap.Logger) *Service {
	return &Service{repo: repo, users: users, log: log}
}

// checkMembers requires every id to name an existing Player. Rejections
// list unknown ids and non-Player ids together.
func (s *Service) checkMembers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return customErrors.InternalServerError(err, "failed to load members")
	}

	found := make(map[string]*model.User, len(users))
	for _, u := range users {
		found[u.ID] = u
	}

	var invalid []model.InvalidMember
	missing := false
	for _, id := range ids {
		u, ok := found[id]
		switch {
		case !ok:
			missing = true
			invalid = append(invalid, model.InvalidMember{ID: id, Reason: model.InvalidMemberNotFound})
		case u.UserRole != model.RolePlayer:
			role := u.UserRole
			invalid = append(invalid, model.InvalidMember{ID: id, Role: &role, Reason: model.InvalidMemberNotPlayer})
		}
	}
	if len(invalid) == 0 {
		return nil
	}

	details := map[string][]model.InvalidMember{"invalidMembers": invalid}
	if missing {
		return errInvalidMembers.WithDetails(details)
	}
	return errNonPlayers.WithDetails(details)
}

// present normalizes stored upload paths for the response.
func present(t *model.Team) *model.Team {
	t.Photo = upload.Normalize(t.Photo, upload.TeamPhoto)
	t.Coach.Avatar = upload.Normalize(t.Coach.Avatar, upload.Avatar)
	for i := range t.Members {
		t.Members[i].Avatar = upload.Normalize(t.Members[i].Avatar, upload.Avatar)
	}
	return t
}

func (s *Service) Create(ctx context.Context, user *model.User, input CreateInput, photo *string) (*model.Team, error) {
	name := strings.TrimSpace(input.Name)
	coachID := strings.TrimSpace(input.Coach)
	if name == "" || coachID == "" {
		return nil, customErrors.Validation("Team name and coach are required")
	}
	if !user.HasRole(model.RoleAdmin) && user.ID != coachID {
		return nil, customErrors.Forbidden("Unauthorized: Coach can only select himself")
	}

	coach, err := s.users.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, errCoachNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to load coach")
	}
	if coach.UserRole != model.RoleCoach {
		return nil, errNotCoach
	}

	memberIDs := input.Members.ids()
	if err := s.checkMembers(ctx, memberIDs); err != nil {
		return nil, err
	}

	t := &model.Team{
		ID:       uuid.NewString(),
		Name:     name,
		About:    strings.TrimSpace(input.About),
		Photo:    photo,
		CoachID:  coach.ID,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, t, memberIDs); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to create team")
	}
	s.log.Info("team created", zap.String("team_id", t.ID), zap.String("coach_id", coach.ID), zap.Int("members", len(memberIDs)))

	return s.load(ctx, t.ID)
}

func (s *Service) load(ctx context.Context, id string) (*model.Team, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to load team")
	}
	return present(t), nil
}

// managed loads a team that user may modify: Admin or the team's coach.
func (s *Service) managed(ctx context.Context, user *model.User, id, action string) (*model.Team, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(model.RoleAdmin) && user.ID != t.CoachID {
		return nil, customErrors.Forbidden("Unauthorized: Only Admin or the team's coach can %s", action)
	}
	return t, nil
}

// Update applies the provided fields and returns the replaced photo path
// when a new photo was uploaded.
func (s *Service) Update(ctx context.Context, user *model.User, id string, input UpdateInput, photo *string) (*model.Team, *string, error) {
	t, err := s.managed(ctx, user, id, "update the team")
	if err != nil {
		return nil, nil, err
	}

	memberIDs := input.Members.ids()
	if err := s.checkMembers(ctx, memberIDs); err != nil {
		return nil, nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, nil, customErrors.Validation("Team name and coach are required")
		}
		t.Name = strings.TrimSpace(*input.Name)
	}
	if input.About != nil {
		t.About = strings.TrimSpace(*input.About)
	}

	var replaced *string
	switch {
	case photo != nil:
		replaced, t.Photo = t.Photo, photo
	case input.ExistingPhoto != "":
		// Only the team's own photo may be kept; any other path is refused.
		existing := upload.Normalize(&input.ExistingPhoto, upload.TeamPhoto)
		current := upload.Normalize(t.Photo, upload.TeamPhoto)
		if current == nil || *existing != *current {
			return nil, nil, errForeignPhoto
		}
	}

	if err := s.repo.Update(ctx, t, memberIDs); err != nil {
		return nil, nil, customErrors.InternalServerError(err, "failed to update team")
	}

	updated, err := s.load(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, replaced, nil
}

func (s *Service) ToggleStatus(ctx context.Context, user *model.User, id string) (*StatusResult, error) {
	t, err := s.managed(ctx, user, id, "toggle status")
	if err != nil {
		return nil, err
	}
	active := !t.IsActive
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to toggle team status")
	}
	return &StatusResult{TeamID: id, IsActive: active}, nil
}

// Delete removes the team and returns its photo path, if any.
func (s *Service) Delete(ctx context.Context, user *model.User, id string) (*string, error) {
	t, err := s.managed(ctx, user, id, "delete this team")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to delete team")
	}
	s.log.Info("team deleted", zap.String("team_id", id), zap.String("by", user.ID))
	return t.Photo, nil
}

// List shows Admins every team and Coaches their own. Everyone else gets
// an empty page.
func (s *Service) List(ctx context.Context, user *model.User, filter model.TeamFilter) (model.Page[model.Team], error) {
	switch user.UserRole {
	case model.RoleAdmin:
		filter.CoachID = ""
	case model.RoleCoach:
		filter.CoachID = user.ID
	default:
		return model.NewPage([]model.Team{}, filter.Page, 0), nil
	}

	teams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return model.Page[model.Team]{}, customErrors.InternalServerError(err, "failed to list teams")
	}
	for i := range teams {
		present(&teams[i])
	}
	return model.NewPage(teams, filter.Page, total), nil
}

// Get is visible to Admins, the team's coach and its members.
func (s *Service) Get(ctx context.Context, user *model.User, id string) (*model.Team, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(model.RoleAdmin) && user.ID != t.CoachID && !t.HasMember(user.ID) {
		return nil, customErrors.Forbidden("Unauthorized: You can only view teams you are associated with")
	}
	return t, nil
}
