package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/model"
)

type contextKey string

var (
	CurrentUserKey = contextKey("currentUser")
	ClientIPKey    = contextKey("clientIP")
	JWTTokenKey    = contextKey("JWTTokenKey")
)

// Locals keys mirror the context keys for handlers that read fiber.Ctx directly.
const (
	localsUser  = "currentUser"
	localsToken = "JWTTokenKey"
)

// Attach stores the resolved identity on both the fiber locals and the
// request's user context.
func Attach(c *fiber.Ctx, user *model.User, token string) {
	c.Locals(localsUser, user)
	c.Locals(localsToken, token)

	ctx := c.UserContext()
	ctx = context.WithValue(ctx, CurrentUserKey, user)
	ctx = context.WithValue(ctx, JWTTokenKey, token)
	ctx = context.WithValue(ctx, ClientIPKey, c.IP())
	c.SetUserContext(ctx)
}

func CurrentUser(c *fiber.Ctx) *model.User {
	if user, ok := c.Locals(localsUser).(*model.User); ok {
		return user
	}
	return nil
}

func CurrentToken(c *fiber.Ctx) string {
	if token, ok := c.Locals(localsToken).(string); ok {
		return token
	}
	return ""
}

func GetCurrentUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(CurrentUserKey).(*model.User); ok {
		return user
	}
	return nil
}

func GetIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPKey).(string); ok {
		return ip
	}
	return ""
}
