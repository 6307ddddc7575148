package video

import (
	"context"
	"testing"
	"time"

	"github.com/mambasports/team-service/internal/database"
	"github.com/mambasports/team-service/internal/database/databasetest"
	"github.com/mambasports/team-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5 Min"},
		{time.Hour, "1 Hour"},
		{3 * time.Hour, "3 Hours"},
		{24 * time.Hour, "1 Day"},
		{6 * 24 * time.Hour, "6 Days"},
		{14 * 24 * time.Hour, "2 Weeks"},
		{45 * 24 * time.Hour, "1 Month"},
		{200 * 24 * time.Hour, "6 Months"},
		{800 * 24 * time.Hour, "2 Years"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeAgo(now, now.Add(-tt.ago)))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 sec", FormatDuration(0))
	assert.Equal(t, "45 sec", FormatDuration(45.2))
	assert.Equal(t, "2 min", FormatDuration(120))
	assert.Equal(t, "2:05 min", FormatDuration(125))
	assert.Equal(t, "2 min", FormatDuration(119.8))
}

type fixture struct {
	svc   *Service
	db    *database.Database
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := databasetest.NewSQLite(t)
	f := &fixture{db: db, clock: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	repo := &repository{db: db.DB, now: func() time.Time { return f.clock }}
	f.svc = NewService(repo, database.NewVideoEngagement(db), zap.NewNop())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func ptr(s string) *string { return &s }

func TestCreateVideoValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := databasetest.InsertUser(t, f.db, "vlogger", model.RoleCoach)

	_, err := f.svc.Create(ctx, author, CreateInput{}, ptr("/uploads/videos/a.mp4"))
	require.Error(t, err)
	assert.Equal(t, "Title is required", err.Error())

	_, err = f.svc.Create(ctx, author, CreateInput{Title: "drills"}, nil)
	require.Error(t, err)
	assert.Equal(t, "Video file is required", err.Error())

	v, err := f.svc.Create(ctx, author, CreateInput{Title: "drills", Duration: 125}, ptr("/uploads/videos/a.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/videos/a.mp4", v.Video)
	assert.Equal(t, "vlogger", v.Author.Username)
}

func TestListVideosDecoratesAndFiltersByDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := databasetest.InsertUser(t, f.db, "vlogger", model.RoleCoach)

	_, err := f.svc.Create(ctx, author, CreateInput{Title: "Early drills", Duration: 45}, ptr("/uploads/videos/a.mp4"))
	require.NoError(t, err)

	f.clock = f.clock.Add(48 * time.Hour)
	_, err = f.svc.Create(ctx, author, CreateInput{Title: "Late match", Description: "final", Duration: 125}, ptr("/uploads/videos/b.mp4"))
	require.NoError(t, err)

	f.clock = f.clock.Add(3 * time.Hour)
	page, err := f.svc.List(ctx, ListQuery{Page: model.NewPageQuery(1, 10)})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Late match", page.Items[0].Title)
	assert.Equal(t, "3 Hours", page.Items[0].Time)
	assert.Equal(t, "2:05 min", page.Items[0].FormattedDuration)
	assert.Equal(t, "2 Days", page.Items[1].Time)
	assert.Equal(t, "45 sec", page.Items[1].FormattedDuration)

	page, err = f.svc.List(ctx, ListQuery{StartDate: "2025-03-10", Page: model.NewPageQuery(1, 10)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Early drills", page.Items[0].Title)

	page, err = f.svc.List(ctx, ListQuery{StartDate: "2025-03-10", EndDate: "2025-03-12", Page: model.NewPageQuery(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.TotalRecords)

	page, err = f.svc.List(ctx, ListQuery{Search: "FINAL", Page: model.NewPageQuery(1, 10)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Late match", page.Items[0].Title)

	_, err = f.svc.List(ctx, ListQuery{StartDate: "10/03/2025", Page: model.NewPageQuery(1, 10)})
	assert.Error(t, err)
}

func TestVideoOwnershipAndEngagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := databasetest.InsertUser(t, f.db, "owner", model.RoleCoach)
	fan := databasetest.InsertUser(t, f.db, "fan", model.RolePlayer)

	v, err := f.svc.Create(ctx, author, CreateInput{Title: "t"}, ptr("/uploads/videos/a.mp4"))
	require.NoError(t, err)

	_, _, err = f.svc.Update(ctx, fan, v.ID, UpdateInput{Title: ptr("x")}, nil)
	require.Error(t, err)
	assert.Equal(t, "Not authorized to update this video", err.Error())

	_, err = f.svc.Delete(ctx, fan, v.ID)
	require.Error(t, err)
	assert.Equal(t, "Not authorized to delete this video", err.Error())

	res, err := f.svc.ToggleLike(ctx, fan, v.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	_, err = f.svc.AddComment(ctx, fan, v.ID, "nice")
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, 1, got.LikesCount)
	assert.Len(t, got.Comments, 1)

	updated, replaced, err := f.svc.Update(ctx, author, v.ID, UpdateInput{Title: ptr("renamed")}, ptr("/uploads/videos/b.mp4"))
	require.NoError(t, err)
	require.NotNil(t, replaced)
	assert.Equal(t, "/uploads/videos/a.mp4", *replaced)
	assert.Equal(t, "renamed", updated.Title)

	removed, err := f.svc.Delete(ctx, author, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/videos/b.mp4", removed)

	_, err = f.svc.Get(ctx, v.ID)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}
