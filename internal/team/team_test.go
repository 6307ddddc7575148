package team

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	userrepo "github.com/mambasports/team-service/internal/auth/repository"
	"github.com/mambasports/team-service/internal/database"
	"github.com/mambasports/team-service/internal/database/databasetest"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/middleware"
	"github.com/mambasports/team-service/internal/model"
	"github.com/mambasports/team-service/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type roster struct {
	svc     *Service
	db      *database.Database
	admin   *model.User
	coach   *model.User
	coach2  *model.User
	player1 *model.User
	player2 *model.User
	parent  *model.User
}

func newRoster(t *testing.T) *roster {
	t.Helper()
	db := databasetest.NewSQLite(t)
	return &roster{
		svc:     NewService(NewRepository(db), userrepo.NewUserRepository(db), zap.NewNop()),
		db:      db,
		admin:   databasetest.InsertUser(t, db, "admin", model.RoleAdmin),
		coach:   databasetest.InsertUser(t, db, "coach", model.RoleCoach),
		coach2:  databasetest.InsertUser(t, db, "coach2", model.RoleCoach),
		player1: databasetest.InsertUser(t, db, "player1", model.RolePlayer),
		player2: databasetest.InsertUser(t, db, "player2", model.RolePlayer),
		parent:  databasetest.InsertUser(t, db, "parent", model.RoleParent),
	}
}

func TestMemberIDsDecoding(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"array", `{"members":["a","b","a"]}`, []string{"a", "b"}},
		{"json string", `{"members":"[\"a\",\"b\"]"}`, []string{"a", "b"}},
		{"single id", `{"members":"a"}`, []string{"a"}},
		{"empty array", `{"members":[]}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in CreateInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			assert.Equal(t, tt.want, in.Members.ids())
		})
	}

	var in CreateInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &in))
	assert.Nil(t, in.Members.ids())
}

func TestCreateTeamPolicy(t *testing.T) {
	r := newRoster(t)
	ctx := context.Background()

	_, err := r.svc.Create(ctx, r.coach, CreateInput{Name: "Tigers"}, nil)
	require.Error(t, err)
	assert.Equal(t, "Team name and coach are required", err.Error())

	_, err = r.svc.Create(ctx, r.coach, CreateInput{Name: "Tigers", Coach: r.coach2.ID}, nil)
	require.Error(t, err)
	assert.Equal(t, "Unauthorized: Coach can only select himself", err.Error())

	_, err = r.svc.Create(ctx, r.admin, CreateInput{Name: "Tigers", Coach: "nobody"}, nil)
	assert.ErrorIs(t, err, errCoachNotFound)

	_, err = r.svc.Create(ctx, r.admin, CreateInput{Name: "Tigers", Coach: r.parent.ID}, nil)
	assert.ErrorIs(t, err, errNotCoach)
}

func TestCreateTeamRejectsInvalidMembers(t *testing.T) {
	r := newRoster(t)
	ctx := context.Background()

	_, err := r.svc.Create(ctx, r.coach, CreateInput{
		Name: "Tigers", Coach: r.coach.ID,
		Members: MemberIDs{r.player1.ID, r.parent.ID, r.coach2.ID},
	}, nil)
	require.ErrorIs(t, err, errNonPlayers)

	var typed *customErrors.Error
	require.ErrorAs(t, err, &typed)
	details := typed.Details.(map[string][]model.InvalidMember)["invalidMembers"]
	require.Len(t, details, 2)
	assert.Equal(t, r.parent.ID, details[0].ID)
	assert.Equal(t, model.RoleParent, *details[0].Role)
	assert.Equal(t, r.coach2.ID, details[1].ID)
	assert.Equal(t, model.RoleCoach, *details[1].Role)

	_, err = r.svc.Create(ctx, r.coach, CreateInput{
		Name: "Tigers", Coach: r.coach.ID,
		Members: MemberIDs{r.player1.ID, "ghost"},
	}, nil)
	require.ErrorIs(t, err, errInvalidMembers)
	require.ErrorAs(t, err, &typed)
	details = typed.Details.(map[string][]model.InvalidMember)["invalidMembers"]
	require.Len(t, details, 1)
	assert.Equal(t, model.InvalidMember{ID: "ghost", Reason: model.InvalidMemberNotFound}, details[0])
}

func TestCreateAndManageTeam(t *testing.T) {
	r := newRoster(t)
	ctx := context.Background()
	photo := "team-1.png"

	created, err := r.svc.Create(ctx, r.coach, CreateInput{
		Name: " Tigers ", About: "U12", Coach: r.coach.ID,
		Members: MemberIDs{`["` + r.player1.ID + `"]`},
	}, &photo)
	require.NoError(t, err)
	assert.Equal(t, "Tigers", created.Name)
	assert.True(t, created.IsActive)
	assert.Equal(t, r.coach.ID, created.Coach.ID)
	assert.Equal(t, model.RoleCoach, created.Coach.UserRole)
	require.Len(t, created.Members, 1)
	assert.Equal(t, r.player1.ID, created.Members[0].ID)
	require.NotNil(t, created.Photo)
	assert.Equal(t, "/uploads/teamavatars/team-1.png", *created.Photo)

	// visibility
	_, err = r.svc.Get(ctx, r.player1, created.ID)
	assert.NoError(t, err)
	_, err = r.svc.Get(ctx, r.admin, created.ID)
	assert.NoError(t, err)
	_, err = r.svc.Get(ctx, r.player2, created.ID)
	require.Error(t, err)
	assert.Equal(t, "Unauthorized: You can only view teams you are associated with", err.Error())
	_, err = r.svc.Get(ctx, r.admin, "missing")
	assert.ErrorIs(t, err, ErrTeamNotFound)

	// update by another coach is refused
	name := "Lions"
	_, _, err = r.svc.Update(ctx, r.coach2, created.ID, UpdateInput{Name: &name}, nil)
	var typed *customErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, customErrors.ErrorTypeForbidden, typed.Type)

	newPhoto := "/uploads/teamavatars/team-2.png"
	updated, replaced, err := r.svc.Update(ctx, r.coach, created.ID, UpdateInput{
		Name: &name, Members: MemberIDs{r.player2.ID},
	}, &newPhoto)
	require.NoError(t, err)
	assert.Equal(t, "Lions", updated.Name)
	require.Len(t, updated.Members, 1)
	assert.Equal(t, r.player2.ID, updated.Members[0].ID)
	require.NotNil(t, replaced)
	assert.Equal(t, "/uploads/teamavatars/team-1.png", *replaced)

	// absent members keep the roster
	about := "U14"
	updated, _, err = r.svc.Update(ctx, r.admin, created.ID, UpdateInput{About: &about}, nil)
	require.NoError(t, err)
	assert.Len(t, updated.Members, 1)
	assert.Equal(t, "U14", updated.About)

	_, _, err = r.svc.Update(ctx, r.admin, created.ID, UpdateInput{ExistingPhoto: "/etc/passwd"}, nil)
	assert.Error(t, err)

	status, err := r.svc.ToggleStatus(ctx, r.coach, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusResult{TeamID: created.ID, IsActive: false}, *status)
	status, err = r.svc.ToggleStatus(ctx, r.admin, created.ID)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	_, err = r.svc.ToggleStatus(ctx, r.player2, created.ID)
	assert.Error(t, err)

	_, err = r.svc.Delete(ctx, r.coach2, created.ID)
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, customErrors.ErrorTypeForbidden, typed.Type)

	removed, err := r.svc.Delete(ctx, r.coach, created.ID)
	require.NoError(t, err)
	assert.Equal(t, newPhoto, *removed)
	_, err = r.svc.Get(ctx, r.admin, created.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestExistingPhotoMustBeTeamsOwn(t *testing.T) {
	r := newRoster(t)
	ctx := context.Background()
	photoA := "team-a.png"

	teamA, err := r.svc.Create(ctx, r.coach, CreateInput{Name: "Tigers", Coach: r.coach.ID}, &photoA)
	require.NoError(t, err)
	teamB, err := r.svc.Create(ctx, r.coach2, CreateInput{Name: "Sharks", Coach: r.coach2.ID}, nil)
	require.NoError(t, err)

	_, _, err = r.svc.Update(ctx, r.coach2, teamB.ID, UpdateInput{ExistingPhoto: *teamA.Photo}, nil)
	assert.ErrorIs(t, err, errForeignPhoto)

	removed, err := r.svc.Delete(ctx, r.coach2, teamB.ID)
	require.NoError(t, err)
	assert.Nil(t, removed, "deleting team B must not hand back team A's photo")

	updated, replaced, err := r.svc.Update(ctx, r.coach, teamA.ID, UpdateInput{ExistingPhoto: photoA}, nil)
	require.NoError(t, err)
	assert.Nil(t, replaced)
	require.NotNil(t, updated.Photo)
	assert.Equal(t, "/uploads/teamavatars/team-a.png", *updated.Photo)
}

func TestListTeamsByRole(t *testing.T) {
	r := newRoster(t)
	ctx := context.Background()

	_, err := r.svc.Create(ctx, r.coach, CreateInput{Name: "Red Tigers", Coach: r.coach.ID, Members: MemberIDs{r.player1.ID}}, nil)
	require.NoError(t, err)
	second, err := r.svc.Create(ctx, r.coach2, CreateInput{Name: "Blue Sharks", Coach: r.coach2.ID}, nil)
	require.NoError(t, err)
	_, err = r.svc.ToggleStatus(ctx, r.coach2, second.ID)
	require.NoError(t, err)

	q := model.NewPageQuery(1, 10)

	page, err := r.svc.List(ctx, r.admin, model.TeamFilter{Page: q})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.TotalRecords)

	page, err = r.svc.List(ctx, r.coach, model.TeamFilter{Page: q})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Red Tigers", page.Items[0].Name)
	assert.Len(t, page.Items[0].Members, 1)

	inactive := false
	page, err = r.svc.List(ctx, r.admin, model.TeamFilter{IsActive: &inactive, Page: q})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Blue Sharks", page.Items[0].Name)

	page, err = r.svc.List(ctx, r.admin, model.TeamFilter{SearchText: "red tig", Page: q})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = r.svc.List(ctx, r.player1, model.TeamFilter{Page: q})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Zero(t, page.Pagination.TotalRecords)
}

func TestCreateTeamFromMultipartForm(t *testing.T) {
	r := newRoster(t)
	storage, err := upload.NewStorage(t.TempDir())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zap.NewNop())})
	guard := func(c *fiber.Ctx) error {
		auth.Attach(c, r.coach, "token")
		return c.Next()
	}
	NewHandler(r.svc, storage, zap.NewNop()).RegisterRoutes(app.Group("/api"), guard)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "Falcons"))
	require.NoError(t, w.WriteField("coach", r.coach.ID))
	require.NoError(t, w.WriteField("members", `["`+r.player1.ID+`","`+r.player2.ID+`"]`))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/teams/addteam", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var env struct {
		Message string     `json:"message"`
		Data    model.Team `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "Team created successfully", env.Message)
	assert.Equal(t, "Falcons", env.Data.Name)
	assert.Len(t, env.Data.Members, 2)

	req = httptest.NewRequest(fiber.MethodPut, "/api/teams/status/"+env.Data.ID, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status struct {
		Message string       `json:"message"`
		Data    StatusResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "Team deactivated successfully", status.Message)
	assert.False(t, status.Data.IsActive)
}
