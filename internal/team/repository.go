package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mambasports/team-service/internal/database"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, t *model.Team, memberIDs []string) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	// Update saves t; a nil memberIDs leaves the roster untouched.
	Update(ctx context.Context, t *model.Team, memberIDs []string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter model.TeamFilter) ([]model.Team, int, error)
}

var teamSelect = `SELECT t.id, t.name, t.about, t.photo, t.coach_id, t.is_active, t.created_at, t.updated_at, ` +
	database.SummaryColumns("u", "coach") + `
	FROM teams t JOIN users u ON u.id = t.coach_id`

type repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *database.Database) Repository {
	return &repository{db: db.DB, now: time.Now}
}

func insertMembers(ctx context.Context, tx *sqlx.Tx, teamID string, memberIDs []string) error {
	for _, id := range memberIDs {
		if _, err := tx.ExecContext(ctx, "INSERT INTO team_members (team_id, user_id) VALUES (?, ?)", teamID, id); err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}
	return nil
}

func (r *repository) Create(ctx context.Context, t *model.Team, memberIDs []string) error {
	now := r.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO teams (id, name, about, photo, coach_id, is_active, created_at, updated_at)
		VALUES (:id, :name, :about, :photo, :coach_id, :is_active, :created_at, :updated_at)`, t); err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	if err := insertMembers(ctx, tx, t.ID, memberIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var t model.Team
	if err := r.db.GetContext(ctx, &t, teamSelect+" WHERE t.id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customErrors.ErrRecordNotFound
		}
		return nil, err
	}

	members, err := r.members(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Members = members[t.ID]
	if t.Members == nil {
		t.Members = []model.UserSummary{}
	}
	return &t, nil
}

func (r *repository) Update(ctx context.Context, t *model.Team, memberIDs []string) error {
	t.UpdatedAt = r.now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, `
		UPDATE teams SET name = :name, about = :about, photo = :photo, updated_at = :updated_at
		WHERE id = :id`, t); err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if memberIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM team_members WHERE team_id = ?", t.ID); err != nil {
			return fmt.Errorf("clear members: %w", err)
		}
		if err := insertMembers(ctx, tx, t.ID, memberIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE teams SET is_active = ?, updated_at = ? WHERE id = ?", active, r.now().UTC(), id)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	return err
}

// List returns the newest teams first with their rosters loaded.
func (r *repository) List(ctx context.Context, filter model.TeamFilter) ([]model.Team, int, error) {
	var where []string
	var args []interface{}

	if filter.CoachID != "" {
		where = append(where, "t.coach_id = ?")
		args = append(args, filter.CoachID)
	}
	if s := strings.TrimSpace(filter.SearchText); s != "" {
		where = append(where, "LOWER(t.name) LIKE ?"+database.LikeEscape)
		args = append(args, database.LikePattern(s))
	}
	if filter.IsActive != nil {
		where = append(where, "t.is_active = ?")
		args = append(args, *filter.IsActive)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM teams t"+clause, args...); err != nil {
		return nil, 0, err
	}

	teams := []model.Team{}
	query := teamSelect + clause + " ORDER BY t.created_at DESC, t.id LIMIT ? OFFSET ?"
	if err := r.db.SelectContext(ctx, &teams, query, append(args, filter.Page.Limit, filter.Page.Offset())...); err != nil {
		return nil, 0, err
	}
	if len(teams) == 0 {
		return teams, total, nil
	}

	ids := make([]string, len(teams))
	for i := range teams {
		ids[i] = teams[i].ID
	}
	members, err := r.members(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range teams {
		teams[i].Members = members[teams[i].ID]
		if teams[i].Members == nil {
			teams[i].Members = []model.UserSummary{}
		}
	}
	return teams, total, nil
}

type memberRow struct {
	TeamID string            `db:"team_id"`
	User   model.UserSummary `db:"member"`
}

func (r *repository) members(ctx context.Context, teamIDs []string) (map[string][]model.UserSummary, error) {
	query, args, err := sqlx.In(`SELECT m.team_id, `+database.SummaryColumns("u", "member")+`
		FROM team_members m JOIN users u ON u.id = m.user_id
		WHERE m.team_id IN (?) ORDER BY u.username, u.id`, teamIDs)
	if err != nil {
		return nil, err
	}

	var rows []memberRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	out := make(map[string][]model.UserSummary, len(teamIDs))
	for _, row := range rows {
		out[row.TeamID] = append(out[row.TeamID], row.User)
	}
	return out, nil
}
