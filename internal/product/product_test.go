package product

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	"github.com/mambasports/team-service/internal/database"
	"github.com/mambasports/team-service/internal/database/databasetest"
	"github.com/mambasports/team-service/internal/middleware"
	"github.com/mambasports/team-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*Service, *database.Database) {
	t.Helper()
	db := databasetest.NewSQLite(t)
	return NewService(NewRepository(db), zap.NewNop()), db
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestAddProductValidation(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	owner := databasetest.InsertUser(t, db, "seller", model.RoleCoach)

	tests := []struct {
		name  string
		input Input
		want  string
	}{
		{"missing name", Input{Price: floatPtr(10)}, "Valid product name is required"},
		{"blank name", Input{Name: strPtr("  "), Price: floatPtr(10)}, "Valid product name is required"},
		{"missing price", Input{Name: strPtr("Ball")}, "Valid price is required and must be non-negative"},
		{"negative price", Input{Name: strPtr("Ball"), Price: floatPtr(-1)}, "Valid price is required and must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, owner, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}

	p, err := svc.Add(ctx, owner, Input{Name: strPtr(" Ball "), Description: strPtr(" size 5 "), Price: floatPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Ball", p.Name)
	assert.Equal(t, "size 5", p.Description)
	assert.Equal(t, owner.ID, p.UserID)
}

func TestProductOwnership(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	owner := databasetest.InsertUser(t, db, "seller", model.RoleCoach)
	other := databasetest.InsertUser(t, db, "buyer", model.RoleParent)

	p, err := svc.Add(ctx, owner, Input{Name: strPtr("Bat"), Price: floatPtr(25)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other, p.ID, Input{Price: floatPtr(1)})
	require.Error(t, err)
	assert.Equal(t, "Not authorized to update this product", err.Error())

	err = svc.Delete(ctx, other, p.ID)
	require.Error(t, err)
	assert.Equal(t, "Not authorized to delete this product", err.Error())

	updated, err := svc.Update(ctx, owner, p.ID, Input{Price: floatPtr(30)})
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Price)
	assert.Equal(t, "Bat", updated.Name)

	require.NoError(t, svc.Delete(ctx, owner, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, p.ID), ErrProductNotFound)

	page, err := svc.List(ctx, Filter{Page: model.NewPageQuery(1, 10)})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func newApp(svc *Service, user *model.User) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zap.NewNop())})
	guard := func(c *fiber.Ctx) error {
		auth.Attach(c, user, "token")
		return c.Next()
	}
	NewHandler(svc).RegisterRoutes(app.Group("/api"), guard)
	return app
}

func decode(t *testing.T, body io.Reader) model.Envelope {
	t.Helper()
	var env model.Envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func TestProductRoutes(t *testing.T) {
	svc, db := newService(t)
	owner := databasetest.InsertUser(t, db, "seller", model.RoleCoach)
	app := newApp(svc, owner)

	req := httptest.NewRequest(fiber.MethodPost, "/api/products/addproduct", strings.NewReader(`{"name":"Gloves","price":12.5}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	env := decode(t, resp.Body)
	assert.True(t, env.Success)
	assert.Equal(t, "Product added successfully", env.Message)
	id := env.Data.(map[string]any)["_id"].(string)

	req = httptest.NewRequest(fiber.MethodPost, "/api/products/addproduct", strings.NewReader(`{"name":"Gloves"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	env = decode(t, resp.Body)
	assert.False(t, env.Success)
	assert.Equal(t, "Valid price is required and must be non-negative", env.Message)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/products?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	env = decode(t, resp.Body)
	items := env.Data.(map[string]any)["items"].([]any)
	assert.Len(t, items, 1)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/products/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product deleted successfully", decode(t, resp.Body).Message)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/products/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", decode(t, resp.Body).Message)
}
