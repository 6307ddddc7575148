// Package databasetest provides throwaway stores for tests: a migrated
// in-memory SQLite database and a miniredis-backed cache.
package databasetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/mambasports/team-service/internal/database"
	"github.com/mambasports/team-service/internal/model"
	"github.com/mambasports/team-service/pkg/password"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func NewSQLite(t testing.TB) *database.Database {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := database.Open(context.Background(), database.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func NewRedis(t testing.TB) (*database.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return database.NewCacheService(client), mr
}

// InsertUser writes a verified, active user with password "pw123456".
func InsertUser(t testing.TB, db *database.Database, username string, role model.Role) *model.User {
	t.Helper()
	hash, err := password.HashPassword("pw123456")
	require.NoError(t, err)

	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Surname:      "Tester",
		Email:        username + "@x.com",
		PasswordHash: hash,
		UserRole:     role,
		IsVerified:   true,
		IsActive:     true,
		CountryCode:  "+1",
		MobileNumber: "5551234567",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = db.DB.NamedExecContext(context.Background(), `
		INSERT INTO users (id, username, surname, email, password_hash, user_role, is_verified, is_active,
			country_code, mobile_number, avatar, date_of_birth, gender, created_at, updated_at)
		VALUES (:id, :username, :surname, :email, :password_hash, :user_role, :is_verified, :is_active,
			:country_code, :mobile_number, :avatar, :date_of_birth, :gender, :created_at, :updated_at)`, u)
	require.NoError(t, err)
	return u
}
