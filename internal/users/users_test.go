package users

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	"github.com/mambasports/team-service/internal/auth/repository"
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

func newService(t *testing.T) (*Service, *database.Database) {
	t.Helper()
	db := databasetest.NewSQLite(t)
	return NewService(repository.NewUserRepository(db), zap.NewNop()), db
}

func TestListUsersByRole(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	databasetest.InsertUser(t, db, "messi", model.RolePlayer)
	databasetest.InsertUser(t, db, "ronaldo", model.RolePlayer)
	databasetest.InsertUser(t, db, "guardiola", model.RoleCoach)
	databasetest.InsertUser(t, db, "root", model.RoleAdmin)

	for _, role := range []string{"", "admin", "referee"} {
		_, err := svc.List(ctx, ListQuery{Role: role, Page: model.NewPageQuery(1, 10)})
		assert.ErrorIs(t, err, errInvalidRole, role)
	}

	page, err := svc.List(ctx, ListQuery{Role: "PLAYER", Page: model.NewPageQuery(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.TotalRecords)

	page, err = svc.List(ctx, ListQuery{Role: "player", SearchText: "xyz messi", Page: model.NewPageQuery(1, 10)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "messi", page.Items[0].Username)

	inactive := false
	page, err = svc.List(ctx, ListQuery{Role: "coach", IsActive: &inactive, Page: model.NewPageQuery(1, 10)})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestDeleteUserPolicy(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	coach := databasetest.InsertUser(t, db, "coach", model.RoleCoach)
	player := databasetest.InsertUser(t, db, "player", model.RolePlayer)
	parent := databasetest.InsertUser(t, db, "parent", model.RoleParent)

	_, err := svc.Delete(ctx, parent, player.ID)
	require.Error(t, err)
	assert.Equal(t, "Access denied. Only coaches and admins can delete users.", err.Error())

	_, err = svc.Delete(ctx, coach, "missing")
	assert.ErrorIs(t, err, customErrors.UserNotFound)

	_, err = svc.Delete(ctx, coach, coach.ID)
	assert.ErrorIs(t, err, errDeleteSelf)

	deleted, err := svc.Delete(ctx, coach, player.ID)
	require.NoError(t, err)
	assert.Equal(t, "User player Tester deleted successfully", deletedMessage(deleted.User))

	_, err = svc.Delete(ctx, coach, player.ID)
	assert.ErrorIs(t, err, customErrors.UserNotFound)
}

// seedOwnedRows gives owner an avatar, a blog, a video and a team, each
// carrying an uploaded file.
func seedOwnedRows(t *testing.T, db *database.Database, owner *model.User) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	stmts := []struct {
		query string
		args  []interface{}
	}{
		{"UPDATE users SET avatar = ? WHERE id = ?", []interface{}{"/uploads/avatars/a.png", owner.ID}},
		{`INSERT INTO blogs (id, title, content, description, thumbnail, author_id, tags, status, created_at, updated_at)
			VALUES (?, 'Title', 'Body', 'Desc', 'b.png', ?, '[]', 'published', ?, ?)`, []interface{}{"blog-1", owner.ID, now, now}},
		{`INSERT INTO videos (id, title, description, video_path, author_id, created_at, updated_at)
			VALUES (?, 'Clip', 'Desc', '/uploads/videos/v.mp4', ?, ?, ?)`, []interface{}{"video-1", owner.ID, now, now}},
		{`INSERT INTO teams (id, name, about, photo, coach_id, created_at, updated_at)
			VALUES (?, 'Lakers', 'About', 't.png', ?, ?, ?)`, []interface{}{"team-1", owner.ID, now, now}},
	}
	for _, st := range stmts {
		_, err := db.DB.ExecContext(ctx, st.query, st.args...)
		require.NoError(t, err)
	}
}

var ownedFiles = []string{
	"/uploads/avatars/a.png",
	"/uploads/blogs/b.png",
	"/uploads/videos/v.mp4",
	"/uploads/teamavatars/t.png",
}

func TestDeleteUserReturnsCascadedFiles(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	admin := databasetest.InsertUser(t, db, "root", model.RoleAdmin)
	coach := databasetest.InsertUser(t, db, "coach", model.RoleCoach)
	seedOwnedRows(t, db, coach)

	deleted, err := svc.Delete(ctx, admin, coach.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ownedFiles, deleted.Files)

	player := databasetest.InsertUser(t, db, "player", model.RolePlayer)
	deleted, err = svc.Delete(ctx, admin, player.ID)
	require.NoError(t, err)
	assert.Empty(t, deleted.Files)
}

func TestDeleteRouteRemovesFilesFromDisk(t *testing.T) {
	svc, db := newService(t)
	admin := databasetest.InsertUser(t, db, "root", model.RoleAdmin)
	coach := databasetest.InsertUser(t, db, "coach", model.RoleCoach)
	seedOwnedRows(t, db, coach)

	root := t.TempDir()
	storage, err := upload.NewStorage(root)
	require.NoError(t, err)
	onDisk := make([]string, 0, len(ownedFiles))
	for _, p := range ownedFiles {
		full := filepath.Join(root, filepath.FromSlash(p[len(upload.PublicPrefix)+1:]))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
		onDisk = append(onDisk, full)
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zap.NewNop())})
	guard := func(c *fiber.Ctx) error {
		auth.Attach(c, admin, "token")
		return c.Next()
	}
	NewHandler(svc, storage, zap.NewNop()).RegisterRoutes(app.Group("/api"), guard)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/users/delete/"+coach.ID, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, full := range onDisk {
		assert.NoFileExists(t, full)
	}
}
